package service

import (
	"context"
	"time"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// Users with no login for this long count as inactive.
const inactivityWindow = 30 * 24 * time.Hour

// StatsService produces the daily aggregate rows.
type StatsService interface {
	// GenerateDailyStats aggregates yesterday's activity and upserts the row
	// for that date. Re-running for the same day overwrites the earlier run.
	GenerateDailyStats(ctx context.Context) (*model.DailyStats, error)
}

type statsService struct {
	statsRepo  repository.StatsRepository
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
	logger     zerolog.Logger
}

// NewStatsService creates a new StatsService with a scoped logger.
func NewStatsService(
	statsRepo repository.StatsRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) StatsService {
	return &statsService{
		statsRepo:  statsRepo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		logger:     logger.With().Str("service", "StatsService").Logger(),
	}
}

func (s *statsService) GenerateDailyStats(ctx context.Context) (*model.DailyStats, error) {
	now := time.Now().UTC()
	end := now.Truncate(24 * time.Hour)
	start := end.Add(-24 * time.Hour)

	coursesCreated, err := s.courseRepo.CountCreatedBetween(ctx, start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count created courses")
		return nil, err
	}
	usersRegistered, err := s.userRepo.CountCreatedBetween(ctx, start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count registered users")
		return nil, err
	}

	stats := &model.DailyStats{
		StatDate:        start,
		CoursesCreated:  coursesCreated,
		UsersRegistered: usersRegistered,
		GeneratedAt:     now,
	}
	if err := s.statsRepo.UpsertDailyStats(ctx, stats); err != nil {
		s.logger.Error().Err(err).Msg("Failed to store daily stats")
		return nil, err
	}

	// Inactive users are only reported, nothing is deactivated automatically.
	inactive, err := s.userRepo.CountInactiveSince(ctx, now.Add(-inactivityWindow))
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to count inactive users")
	} else {
		s.logger.Info().
			Time("stat_date", start).
			Int("courses_created", coursesCreated).
			Int("users_registered", usersRegistered).
			Int("inactive_users", inactive).
			Msg("Daily stats generated")
	}
	return stats, nil
}
