package controllers

import (
	"FormCraft-Backend/src/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// parseBody decodes and validates a JSON body. On failure the error response
// has already been written and ok is false.
func parseBody[T any](c *fiber.Ctx, out *T) (ok bool, err error) {
	if err := c.BodyParser(out); err != nil {
		return false, utils.HandleError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return false, utils.HandleValidationError(c, err)
	}
	return true, nil
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out"`
}
