package controllers

import (
	"encoding/json"
	"mime/multipart"
	"regexp"
	"strings"

	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/services/submission"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
)

// multipart keys look like data[fieldId], files[fieldId] and fileData[fieldId]
var bracketKey = regexp.MustCompile(`^(data|files|fileData)\[([^\]]+)\]`)

type SubmissionController struct {
	service *submission.Service
}

func NewSubmissionController(service *submission.Service) *SubmissionController {
	return &SubmissionController{service: service}
}

// decodeLoose parses a JSON encoded form value and keeps plain strings as is.
func decodeLoose(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func parseMultipartSubmission(form *multipart.Form) submission.SubmitInput {
	in := submission.SubmitInput{
		Data:     map[string]any{},
		Files:    map[string][]*multipart.FileHeader{},
		FileMeta: map[string]map[string]any{},
	}
	for key, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		if key == "data" {
			var whole map[string]any
			if json.Unmarshal([]byte(values[0]), &whole) == nil {
				for k, v := range whole {
					in.Data[k] = v
				}
			}
			continue
		}
		m := bracketKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		switch m[1] {
		case "data":
			in.Data[m[2]] = decodeLoose(values[0])
		case "fileData":
			var meta map[string]any
			if json.Unmarshal([]byte(values[0]), &meta) == nil {
				in.FileMeta[m[2]] = meta
			}
		}
	}
	for key, headers := range form.File {
		if m := bracketKey.FindStringSubmatch(key); m != nil && m[1] == "files" {
			in.Files[m[2]] = append(in.Files[m[2]], headers...)
		}
	}
	return in
}

// SubmitForm godoc
// @Summary      Submit answers to a published form
// @Description  Accepts JSON ({"data": {...}}) or multipart with data[fieldId], files[fieldId] and fileData[fieldId] parts.
// @Tags         submissions
// @Accept       json,mpfd
// @Produce      json
// @Param        id   path string true "Form ID"
// @Param        body body models.SubmitDto false "Answers"
// @Success      201  {object}  models.Submission
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id}/submit [post]
func (ctl *SubmissionController) SubmitForm(c *fiber.Ctx) error {
	var in submission.SubmitInput
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return utils.HandleError(c, fiber.StatusBadRequest, "Invalid multipart body")
		}
		in = parseMultipartSubmission(form)
	} else {
		var dto models.SubmitDto
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&dto); err != nil {
				return utils.HandleError(c, fiber.StatusBadRequest, "Invalid request body")
			}
		}
		in.Data = dto.Data
	}

	sub, err := ctl.service.Submit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetFormSubmissions godoc
// @Summary      List the submissions of a form
// @Description  Pass page (and optionally limit, order) for a paginated envelope.
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Form ID"
// @Param        page  query int    false "Page"
// @Param        limit query int    false "Page size"
// @Param        order query string false "asc or desc"
// @Success      200  {array}   models.Submission
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id}/submissions [get]
func (ctl *SubmissionController) GetFormSubmissions(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if c.Query("page") != "" {
		params := models.DefaultPagination()
		if err := c.QueryParser(&params); err != nil {
			return utils.HandleError(c, fiber.StatusBadRequest, "Invalid pagination parameters")
		}
		page, err := ctl.service.ListPage(c.UserContext(), actor, c.Params("id"), params)
		if err != nil {
			return utils.HandleServiceError(c, err)
		}
		return c.JSON(page)
	}

	list, err := ctl.service.List(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(list)
}

// GetSubmission godoc
// @Summary      Get a submission with its files
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Submission ID"
// @Success      200  {object}  models.SubmissionDetail
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /submissions/{id} [get]
func (ctl *SubmissionController) GetSubmission(c *fiber.Ctx) error {
	detail, err := ctl.service.Get(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(detail)
}

// DeleteSubmission godoc
// @Summary      Delete a submission and its files
// @Tags         submissions
// @Security     BearerAuth
// @Param        id path string true "Submission ID"
// @Success      204
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /submissions/{id} [delete]
func (ctl *SubmissionController) DeleteSubmission(c *fiber.Ctx) error {
	if err := ctl.service.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
