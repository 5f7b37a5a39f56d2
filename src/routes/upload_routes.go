package routes

import "github.com/gofiber/fiber/v2"

func uploadRoutes(router fiber.Router, h Handlers) {
	router.Post("/upload", h.Auth.Required(), h.Uploads.UploadFile)
}
