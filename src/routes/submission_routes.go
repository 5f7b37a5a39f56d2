package routes

import "github.com/gofiber/fiber/v2"

func submissionRoutes(router fiber.Router, h Handlers) {
	required := h.Auth.Required()

	router.Post("/forms/:id/submit", h.Submissions.SubmitForm) // public
	router.Get("/forms/:id/submissions", required, h.Submissions.GetFormSubmissions)

	submissions := router.Group("/submissions", required)
	submissions.Get("/:id", h.Submissions.GetSubmission)
	submissions.Delete("/:id", h.Submissions.DeleteSubmission)
}
