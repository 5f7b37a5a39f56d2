package users

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"FormCraft-Backend/src/models"
	"FormCraft-Backend/src/repository"
	"FormCraft-Backend/src/utils"
)

const storeTimeout = 5 * time.Second

// Service manages back-office accounts.
type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// Create registers an account with the given role. The dto is expected to
// have passed struct validation already.
func (s *Service) Create(ctx context.Context, dto models.RegisterDto, role models.Role) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	username := strings.TrimSpace(dto.Username)
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewError(utils.ErrBadRequest, "Username already taken")
	}
	existing, err = s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewError(utils.ErrBadRequest, "Email already registered")
	}

	hash, err := utils.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// lost a race with a concurrent registration
		return nil, utils.NewError(utils.ErrBadRequest, "Username or email already taken")
	}
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Created %s account %q", user.Role, user.Username)
	return user, nil
}

// CreateAdmin always creates an admin, whatever the caller asked for.
func (s *Service) CreateAdmin(ctx context.Context, dto models.RegisterDto) (*models.User, error) {
	return s.Create(ctx, dto, models.RoleAdmin)
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NewError(utils.ErrNotFound, "User not found")
	}
	return user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, utils.NewError(utils.ErrBadRequest, "Invalid username or password")
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// Delete removes an account. Nobody may delete themselves, and the last
// super admin stays.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) error {
	if actor != nil && actor.ID == id {
		return utils.NewError(utils.ErrBadRequest, "You cannot delete your own account")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	target, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return utils.NewError(utils.ErrNotFound, "User not found")
	}
	if target.IsSuperAdmin() {
		n, err := s.store.CountSuperAdmins(ctx)
		if err != nil {
			return err
		}
		if n <= 1 {
			return utils.NewError(utils.ErrBadRequest, "Cannot delete the last super admin")
		}
	}

	deleted, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return utils.NewError(utils.ErrNotFound, "User not found")
	}
	log.Printf("🗑️ Deleted account %q", target.Username)
	return nil
}

// EnsureSuperAdmin seeds the default super admin unless the username exists.
func (s *Service) EnsureSuperAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.store.CreateUser(ctx, &models.User{
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Seeded super admin %q", user.Username)
	return user, nil
}
