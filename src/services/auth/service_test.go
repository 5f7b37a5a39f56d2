package auth

import (
	"context"
	"testing"
	"time"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/services/users"
	"FormCraft-Backend/src/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	return NewService(users.NewService(store), jwt, utils.NewTokenBlacklist(nil)), store
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	res, err := svc.Register(ctx, models.RegisterDto{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.NotEmpty(t, res.Token)

	user, claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := svc.Login(ctx, models.LoginDto{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = svc.Login(ctx, models.LoginDto{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, utils.ErrBadRequest)
}

func TestAuthenticate_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	_, _, err := svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	_, _, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	res, err := svc.Register(ctx, models.RegisterDto{Username: "bob", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = store.DeleteUser(ctx, res.User.ID)
	require.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestLogout_WithoutRedis(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	res, err := svc.Register(ctx, models.RegisterDto{Username: "carol", Email: "carol@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, res.Token, claims))

	// without redis the blacklist is disabled and the token still works
	_, _, err = svc.Authenticate(ctx, res.Token)
	assert.NoError(t, err)
}
