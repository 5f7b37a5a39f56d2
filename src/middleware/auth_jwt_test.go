package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator map[string]*models.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, *utils.JWTClaims, error) {
	if token == "boom" {
		return nil, nil, errors.New("redis down")
	}
	u, ok := f[token]
	if !ok {
		return nil, nil, utils.NewError(utils.ErrUnauthorized, "Invalid token")
	}
	return u, &utils.JWTClaims{UserID: u.ID}, nil
}

func newApp() *fiber.App {
	auth := NewAuth(fakeAuthenticator{
		"root-token":  {ID: "root", Role: models.RoleSuperAdmin},
		"admin-token": {ID: "alice", Role: models.RoleAdmin},
	})
	whoami := func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u != nil {
			return c.SendString(u.ID)
		}
		return c.SendString("anonymous")
	}

	app := fiber.New()
	app.Get("/required", auth.Required(), whoami)
	app.Get("/optional", auth.Optional(), whoami)
	app.Get("/root", auth.Required(), RequireRole(models.RoleSuperAdmin), whoami)
	return app
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuth(t *testing.T) {
	app := newApp()

	cases := []struct {
		path, token string
		want        int
	}{
		{"/required", "", fiber.StatusUnauthorized},
		{"/required", "nope", fiber.StatusUnauthorized},
		{"/required", "boom", fiber.StatusInternalServerError},
		{"/required", "admin-token", fiber.StatusOK},
		{"/optional", "", fiber.StatusOK},
		{"/optional", "nope", fiber.StatusUnauthorized},
		{"/optional", "admin-token", fiber.StatusOK},
		{"/root", "admin-token", fiber.StatusForbidden},
		{"/root", "root-token", fiber.StatusOK},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, call(t, app, tc.path, tc.token), "%s with %q", tc.path, tc.token)
	}
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(BearerToken(c)) })

	for header, want := range map[string]string{
		"Bearer abc":  "abc",
		"bearer  abc": "abc",
		"Basic abc":   "",
		"Bearer":      "",
		"":            "",
	} {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(body), header)
	}
}
