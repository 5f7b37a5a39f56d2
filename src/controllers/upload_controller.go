package controllers

import (
	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/services/uploads"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
)

type UploadController struct {
	service *uploads.Service
}

func NewUploadController(service *uploads.Service) *UploadController {
	return &UploadController{service: service}
}

// UploadFile godoc
// @Summary      Attach a file to a submission
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData file   true "File"
// @Param        submissionId formData string true "Submission ID"
// @Param        fieldId      formData string true "Field ID"
// @Success      201  {object}  models.FileUpload
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /upload [post]
func (ctl *UploadController) UploadFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return utils.HandleServiceError(c, uploads.ErrNoFile)
	}
	created, err := ctl.service.Upload(c.UserContext(), middleware.CurrentUser(c), c.FormValue("submissionId"), c.FormValue("fieldId"), header)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}
