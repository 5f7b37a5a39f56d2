package routes

import "github.com/gofiber/fiber/v2"

func authRoutes(router fiber.Router, h Handlers, loginLimit int) {
	auth := router.Group("/auth")

	auth.Post("/register", h.AuthCtl.Register)
	if loginLimit > 0 {
		auth.Post("/login", loginLimiter(loginLimit), h.AuthCtl.Login)
	} else {
		auth.Post("/login", h.AuthCtl.Login)
	}
	auth.Get("/me", h.Auth.Required(), h.AuthCtl.Me)
	auth.Post("/logout", h.Auth.Required(), h.AuthCtl.Logout)
}
