// error_utils.go
package utils

import (
	"errors"
	"log"
	"sort"
	"strings"

	"FormCraft-Backend/src/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Errors returned by the service layer. Controllers turn them into status
// codes through HandleServiceError.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrBadRequest   = errors.New("bad request")
)

// kindError pairs a client facing message with one of the sentinels above.
type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }
func (e *kindError) Unwrap() error { return e.kind }

// NewError returns an error that matches kind with errors.Is and reads as message.
func NewError(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

// ValidationError carries one reason per offending field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// NewValidationError builds a ValidationError, copying fields.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &ValidationError{Message: message, Fields: copied}
}

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// HandleValidationError reports validator failures field by field.
func HandleValidationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return HandleError(c, fiber.StatusBadRequest, err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[lowerFirst(fe.Field())] = fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Status:  fiber.StatusBadRequest,
		Message: "Validation failed",
		Errors:  fields,
	})
}

// HandleServiceError maps a service error onto the JSON error shape.
// Unknown errors are logged and reported as 500 without detail.
func HandleServiceError(c *fiber.Ctx, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Status:  fiber.StatusBadRequest,
			Message: verr.Message,
			Errors:  verr.Fields,
		})
	case errors.Is(err, ErrNotFound):
		return HandleError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return HandleError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrUnauthorized):
		return HandleError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrConflict):
		return HandleError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrBadRequest):
		return HandleError(c, fiber.StatusBadRequest, err.Error())
	}
	log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
	return HandleError(c, fiber.StatusInternalServerError, "Internal server error")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
