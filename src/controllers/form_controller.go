package controllers

import (
	"strings"

	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/qrcode"
	"FormCraft-Backend/src/services/forms"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
)

type FormController struct {
	service       *forms.Service
	publicBaseURL string
}

// NewFormController takes the origin that public form links are served from.
func NewFormController(service *forms.Service, publicBaseURL string) *FormController {
	return &FormController{service: service, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// GetForms godoc
// @Summary      List forms
// @Description  Super admins see every form, admins their own.
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.Form
// @Failure      401  {object}  models.ErrorResponse
// @Router       /forms [get]
func (ctl *FormController) GetForms(c *fiber.Ctx) error {
	list, err := ctl.service.List(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(list)
}

// SearchForms godoc
// @Summary      Search forms by name or description
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        q query string false "Search text"
// @Success      200  {array}   models.Form
// @Router       /forms/search [get]
func (ctl *FormController) SearchForms(c *fiber.Ctx) error {
	list, err := ctl.service.Search(c.UserContext(), middleware.CurrentUser(c), c.Query("q"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(list)
}

// CreateForm godoc
// @Summary      Create a form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.FormDto true "Form"
// @Success      201  {object}  models.Form
// @Failure      400  {object}  models.ErrorResponse
// @Router       /forms [post]
func (ctl *FormController) CreateForm(c *fiber.Ctx) error {
	var dto models.FormDto
	if ok, err := parseBody(c, &dto); !ok {
		return err
	}
	form, err := ctl.service.Create(c.UserContext(), middleware.CurrentUser(c), dto)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(form)
}

// GetForm godoc
// @Summary      Get a form
// @Description  Without a token only published forms are visible.
// @Tags         forms
// @Produce      json
// @Param        id path string true "Form ID"
// @Success      200  {object}  models.Form
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id} [get]
func (ctl *FormController) GetForm(c *fiber.Ctx) error {
	form, err := ctl.service.Get(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(form)
}

// GetPublicForm godoc
// @Summary      Get a published form
// @Tags         forms
// @Produce      json
// @Param        id path string true "Form ID"
// @Success      200  {object}  models.Form
// @Failure      404  {object}  models.ErrorResponse
// @Router       /public-forms/{id} [get]
func (ctl *FormController) GetPublicForm(c *fiber.Ctx) error {
	form, err := ctl.service.GetPublic(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(form)
}

// UpdateForm godoc
// @Summary      Update a form
// @Description  Send the revision you loaded to detect concurrent edits.
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Form ID"
// @Param        body body models.FormDto true "Changes"
// @Success      200  {object}  models.Form
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /forms/{id} [put]
func (ctl *FormController) UpdateForm(c *fiber.Ctx) error {
	var dto models.FormDto
	if ok, err := parseBody(c, &dto); !ok {
		return err
	}
	form, err := ctl.service.Update(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), dto)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(form)
}

// DeleteForm godoc
// @Summary      Delete a form with its submissions
// @Tags         forms
// @Security     BearerAuth
// @Param        id path string true "Form ID"
// @Success      204
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id} [delete]
func (ctl *FormController) DeleteForm(c *fiber.Ctx) error {
	if err := ctl.service.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PublishForm godoc
// @Summary      Publish a form
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Form ID"
// @Success      200  {object}  models.Form
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /forms/{id}/publish [post]
func (ctl *FormController) PublishForm(c *fiber.Ctx) error {
	form, err := ctl.service.Publish(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(form)
}

// GetFormQRCode godoc
// @Summary      QR code of a published form link
// @Tags         forms
// @Produce      png
// @Param        id   path  string true  "Form ID"
// @Param        size query int    false "Edge length in pixels (64-1024)"
// @Success      200  {file}    binary
// @Failure      404  {object}  models.ErrorResponse
// @Router       /public-forms/{id}/qrcode [get]
func (ctl *FormController) GetFormQRCode(c *fiber.Ctx) error {
	form, err := ctl.service.GetPublic(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	link := models.PublishedURLFor(form.ID)
	if form.PublishedURL != nil {
		link = *form.PublishedURL
	}

	size := min(max(c.QueryInt("size", qrcode.DefaultSize), 64), 1024)
	png, err := qrcode.GeneratePNG(ctl.publicBaseURL+link, size)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(png)
}
