package scheduler

import (
	"context"
	"time"

	"app/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs the periodic maintenance jobs: popularity ranking,
// notification cleanup and daily stats.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func New(
	courses service.CourseService,
	notifications service.NotificationService,
	stats service.StatsService,
	logger zerolog.Logger,
) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		logger: logger.With().Str("component", "Scheduler").Logger(),
	}

	if _, err := s.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if ranked, err := courses.UpdatePopularityRanking(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Popularity ranking job failed")
		} else {
			s.logger.Info().Int("ranked", ranked).Msg("Popularity ranking updated")
		}
	}); err != nil {
		return nil, err
	}

	if _, err := s.cron.AddFunc("0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := notifications.CleanupOld(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Notification cleanup job failed")
		}
	}); err != nil {
		return nil, err
	}

	if _, err := s.cron.AddFunc("30 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := stats.GenerateDailyStats(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Daily stats job failed")
		}
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
