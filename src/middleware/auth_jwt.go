package middleware

import (
	"context"
	"errors"
	"strings"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "user"
	localClaims = "claims"
	localToken  = "token"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *utils.JWTClaims, error)
}

type Auth struct {
	authenticator Authenticator
}

func NewAuth(authenticator Authenticator) *Auth {
	return &Auth{authenticator: authenticator}
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func BearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (a *Auth) authenticate(c *fiber.Ctx, token string) error {
	user, claims, err := a.authenticator.Authenticate(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, utils.ErrUnauthorized) {
			return utils.HandleError(c, fiber.StatusUnauthorized, err.Error())
		}
		return utils.HandleServiceError(c, err)
	}
	c.Locals(localUser, user)
	c.Locals(localClaims, claims)
	c.Locals(localToken, token)
	return c.Next()
}

// Required rejects requests without a valid bearer token.
func (a *Auth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Authentication required")
		}
		return a.authenticate(c, token)
	}
}

// Optional lets anonymous requests through. A token that is present must
// still be valid.
func (a *Auth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := BearerToken(c)
		if token == "" {
			return c.Next()
		}
		return a.authenticate(c, token)
	}
}

// RequireRole must run after Required.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.HandleError(c, fiber.StatusUnauthorized, "Authentication required")
		}
		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}
		return utils.HandleError(c, fiber.StatusForbidden, "Insufficient permissions")
	}
}

// CurrentUser is the authenticated caller, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

// CurrentToken returns the raw bearer token with its claims.
func CurrentToken(c *fiber.Ctx) (string, *utils.JWTClaims) {
	token, _ := c.Locals(localToken).(string)
	claims, _ := c.Locals(localClaims).(*utils.JWTClaims)
	return token, claims
}
