package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"app/internal/model"
)

// StatsRepository stores the daily aggregate rows.
type StatsRepository interface {
	// UpsertDailyStats writes the row for the given day, replacing any
	// earlier run for the same date.
	UpsertDailyStats(ctx context.Context, s *model.DailyStats) error
}

type statsRepo struct {
	pool *pgxpool.Pool
}

// NewStatsRepo creates a new StatsRepository.
func NewStatsRepo(pool *pgxpool.Pool) StatsRepository {
	return &statsRepo{pool: pool}
}

func (r *statsRepo) UpsertDailyStats(ctx context.Context, s *model.DailyStats) error {
	const query = `
		INSERT INTO daily_stats (stat_date, courses_created, users_registered, generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (stat_date)
		DO UPDATE SET courses_created = EXCLUDED.courses_created,
		              users_registered = EXCLUDED.users_registered,
		              generated_at = EXCLUDED.generated_at
	`
	_, err := r.pool.Exec(ctx, query, s.StatDate, s.CoursesCreated, s.UsersRegistered, s.GeneratedAt)
	if err != nil {
		return fmt.Errorf("upserting daily stats for %s: %w", s.StatDate.Format("2006-01-02"), err)
	}
	return nil
}
