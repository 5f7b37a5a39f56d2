package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/services/users"
	"FormCraft-Backend/src/utils"
)

// Service issues and checks bearer tokens for back-office users.
type Service struct {
	users     *users.Service
	jwt       *utils.JWTManager
	blacklist *utils.TokenBlacklist
	now       func() time.Time
}

func NewService(users *users.Service, jwt *utils.JWTManager, blacklist *utils.TokenBlacklist) *Service {
	return &Service{users: users, jwt: jwt, blacklist: blacklist, now: time.Now}
}

// Register creates an admin account and signs it in. The role is never taken
// from the request.
func (s *Service) Register(ctx context.Context, dto models.RegisterDto) (*models.AuthResponse, error) {
	user, err := s.users.Create(ctx, dto, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, dto models.LoginDto) (*models.AuthResponse, error) {
	user, err := s.users.Authenticate(ctx, dto.Username, dto.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.jwt.GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to its user. Every rejection is
// reported as utils.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *utils.JWTClaims, error) {
	if token == "" {
		return nil, nil, utils.NewError(utils.ErrUnauthorized, "Authentication required")
	}
	claims, err := s.jwt.ParseJWT(token)
	if err != nil {
		return nil, nil, utils.NewError(utils.ErrUnauthorized, "Invalid token")
	}

	revoked, err := s.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		log.Println("❌ Blacklist lookup failed:", err)
		return nil, nil, err
	}
	if revoked {
		return nil, nil, utils.NewError(utils.ErrUnauthorized, "Token has been revoked")
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil, utils.NewError(utils.ErrUnauthorized, "User not found")
	}
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, token string, claims *utils.JWTClaims) error {
	if claims == nil {
		return nil
	}
	return s.blacklist.BlacklistToken(ctx, token, claims.Remaining(s.now()))
}
