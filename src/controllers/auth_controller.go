package controllers

import (
	"FormCraft-Backend/src/middleware"
	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/services/auth"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

// Register godoc
// @Summary      Register an admin account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body models.RegisterDto true "Account"
// @Success      201  {object}  models.AuthResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /auth/register [post]
func (ctl *AuthController) Register(c *fiber.Ctx) error {
	var dto models.RegisterDto
	if ok, err := parseBody(c, &dto); !ok {
		return err
	}
	res, err := ctl.service.Register(c.UserContext(), dto)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body models.LoginDto true "Credentials"
// @Success      200  {object}  models.AuthResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      429  {object}  models.ErrorResponse
// @Router       /auth/login [post]
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var dto models.LoginDto
	if ok, err := parseBody(c, &dto); !ok {
		return err
	}
	res, err := ctl.service.Login(c.UserContext(), dto)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(res)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/me [get]
func (ctl *AuthController) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

// Logout godoc
// @Summary      Revoke the current token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/logout [post]
func (ctl *AuthController) Logout(c *fiber.Ctx) error {
	token, claims := middleware.CurrentToken(c)
	if err := ctl.service.Logout(c.UserContext(), token, claims); err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Logged out"})
}
