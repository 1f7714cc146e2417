package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sporthub-api/internal/models"
	"github.com/sporthub-api/internal/repository"
	"github.com/sporthub-api/internal/validation"
)

// userService is the concrete implementation of UserService
type userService struct {
	users     repository.UserRepository
	validator *validation.Validator
	log       zerolog.Logger
}

func newUserService(users repository.UserRepository, v *validation.Validator, log zerolog.Logger) *userService {
	return &userService{
		users:     users,
		validator: v,
		log:       log.With().Str("service", "user").Logger(),
	}
}

// Login signs a viewer in by email, registering them on first use.
// No credential is checked.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}
	now := time.Now().UTC()
	user, err := s.users.Upsert(ctx, &models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      name,
		LevelTag:  models.DefaultLevelTag,
		Gender:    req.Gender,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("User logged in")
	return user, nil
}

// Get returns a user by id
func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	if !validation.IsValidUUID(id) {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the fields present in update
func (s *userService) UpdateProfile(ctx context.Context, id string, update *models.ProfileUpdate) (*models.User, error) {
	if err := s.validator.ValidateProfile(update); err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.Gender != nil {
		user.Gender = *update.Gender
	}

	if err := s.users.Update(ctx, user); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("Profile updated")
	return user, nil
}

// Count returns the total number of users
func (s *userService) Count(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}
