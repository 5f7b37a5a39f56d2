package routes

import "github.com/gofiber/fiber/v2"

func formRoutes(router fiber.Router, h Handlers) {
	required := h.Auth.Required()

	forms := router.Group("/forms")
	forms.Get("/", required, h.Forms.GetForms)
	forms.Post("/", required, h.Forms.CreateForm)
	forms.Get("/search", required, h.Forms.SearchForms) // before /:id
	forms.Get("/:id", h.Auth.Optional(), h.Forms.GetForm)
	forms.Put("/:id", required, h.Forms.UpdateForm)
	forms.Delete("/:id", required, h.Forms.DeleteForm)
	forms.Post("/:id/publish", required, h.Forms.PublishForm)

	router.Get("/public-forms/:id", h.Forms.GetPublicForm)
	router.Get("/public-forms/:id/qrcode", h.Forms.GetFormQRCode)
}
