package controllers

import (
	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/services/users"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	service *users.Service
}

func NewUserController(service *users.Service) *UserController {
	return &UserController{service: service}
}

// GetUsers godoc
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.User
// @Failure      403  {object}  models.ErrorResponse
// @Router       /users [get]
func (ctl *UserController) GetUsers(c *fiber.Ctx) error {
	list, err := ctl.service.List(c.UserContext())
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(list)
}

// CreateAdmin godoc
// @Summary      Create an admin account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.RegisterDto true "Account"
// @Success      201  {object}  models.User
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /users/admin [post]
func (ctl *UserController) CreateAdmin(c *fiber.Ctx) error {
	var dto models.RegisterDto
	if ok, err := parseBody(c, &dto); !ok {
		return err
	}
	user, err := ctl.service.CreateAdmin(c.UserContext(), dto)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// DeleteUser godoc
// @Summary      Delete an account
// @Tags         users
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      204
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /users/{id} [delete]
func (ctl *UserController) DeleteUser(c *fiber.Ctx) error {
	if err := ctl.service.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
