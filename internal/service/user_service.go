package service

import (
	"context"
	"errors"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

var ErrUserNotFound = errors.New("user not found")

// UserService manages user profiles and their denormalized stat counters.
type UserService interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	// InitializeProfile resets a freshly registered user to the default
	// state: zeroed stats and no student verification.
	InitializeProfile(ctx context.Context, userID string) error
	AdjustStat(ctx context.Context, userID, stat string, delta int) error
	TouchLastLogin(ctx context.Context, userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService with a scoped logger.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if err := s.userRepo.Create(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.UserID).Msg("Failed to create user")
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) InitializeProfile(ctx context.Context, userID string) error {
	if err := s.userRepo.InitializeProfile(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to initialize profile")
		return err
	}
	return nil
}

func (s *userService) AdjustStat(ctx context.Context, userID, stat string, delta int) error {
	next, err := s.userRepo.AdjustStat(ctx, userID, stat, delta)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Str("stat", stat).Msg("Failed to adjust user stat")
		return err
	}
	s.logger.Debug().Str("user_id", userID).Str("stat", stat).Int("value", next).Msg("User stat updated")
	return nil
}

func (s *userService) TouchLastLogin(ctx context.Context, userID string) error {
	if err := s.userRepo.TouchLastLogin(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
