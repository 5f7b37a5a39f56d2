package routes

import (
	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/models"

	"github.com/gofiber/fiber/v2"
)

// userRoutes are reserved to super admins.
func userRoutes(router fiber.Router, h Handlers) {
	users := router.Group("/users", h.Auth.Required(), middleware.RequireRole(models.RoleSuperAdmin))

	users.Get("/", h.Users.GetUsers)
	users.Post("/admin", h.Users.CreateAdmin)
	users.Delete("/:id", h.Users.DeleteUser)
}
