package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"app/internal/model"
)

// CourseRepository defines the interface for interacting with course rows.
type CourseRepository interface {
	// GetByID retrieves a course, or (nil, nil) when absent.
	GetByID(ctx context.Context, courseID string) (*model.Course, error)
	// AdjustLikeCount applies a signed delta to the like counter inside a
	// serializable transaction, clamping at zero, and returns the new value.
	// Returns ErrNotFound when the course does not exist.
	AdjustLikeCount(ctx context.Context, courseID string, delta int) (int, error)
	// SetRatingStats overwrites the denormalized rating fields.
	SetRatingStats(ctx context.Context, courseID string, average float64, count int) error
	// ListTopByPopularity returns courses ordered by like count, then rating.
	ListTopByPopularity(ctx context.Context, limit int) ([]model.Course, error)
	// SetPopularityRanks writes 1-based ranks for the given course IDs in order.
	SetPopularityRanks(ctx context.Context, courseIDs []string) error
	// ListByIDs fetches the given courses; missing IDs are silently skipped.
	ListByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error)
	// ListByTagsOverlap returns courses sharing at least one of the tags,
	// best rated first.
	ListByTagsOverlap(ctx context.Context, tags []string, limit int) ([]model.Course, error)
	// CountCreatedBetween counts courses created in [start, end).
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error)
}

type courseRepo struct {
	pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepository.
func NewCourseRepo(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{pool: pool}
}

const courseColumns = `
	id, title, description, tags, hashtags, category, location,
	like_count, average_rating, review_count, popularity_rank,
	created_at, last_updated
`

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Tags,
		&c.Hashtags,
		&c.Category,
		&c.Location,
		&c.LikeCount,
		&c.AverageRating,
		&c.ReviewCount,
		&c.PopularityRank,
		&c.CreatedAt,
		&c.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) GetByID(ctx context.Context, courseID string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	c, err := scanCourse(r.pool.QueryRow(ctx, query, courseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching course %s: %w", courseID, err)
	}
	return c, nil
}

func (r *courseRepo) AdjustLikeCount(ctx context.Context, courseID string, delta int) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, fmt.Errorf("starting transaction for like counter: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current int
	err = tx.QueryRow(ctx, `SELECT like_count FROM courses WHERE id = $1`, courseID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("reading like count for course %s: %w", courseID, err)
	}

	next := model.ClampCounter(current, delta)
	const updateQ = `UPDATE courses SET like_count = $2, last_updated = now() WHERE id = $1`
	if _, err := tx.Exec(ctx, updateQ, courseID, next); err != nil {
		return 0, fmt.Errorf("writing like count for course %s: %w", courseID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing like count for course %s: %w", courseID, err)
	}
	return next, nil
}

func (r *courseRepo) SetRatingStats(ctx context.Context, courseID string, average float64, count int) error {
	const query = `
		UPDATE courses
		SET average_rating = $2, review_count = $3, last_updated = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, courseID, average, count)
	if err != nil {
		return fmt.Errorf("writing rating stats for course %s: %w", courseID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *courseRepo) ListTopByPopularity(ctx context.Context, limit int) ([]model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY like_count DESC, average_rating DESC
		LIMIT $1
	`
	return r.listCourses(ctx, query, limit)
}

func (r *courseRepo) SetPopularityRanks(ctx context.Context, courseIDs []string) error {
	batch := &pgx.Batch{}
	const query = `UPDATE courses SET popularity_rank = $2 WHERE id = $1`
	for i, id := range courseIDs {
		batch.Queue(query, id, i+1)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("writing popularity ranks: %w", err)
	}
	return nil
}

func (r *courseRepo) ListByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ANY($1)`
	return r.listCourses(ctx, query, courseIDs)
}

func (r *courseRepo) ListByTagsOverlap(ctx context.Context, tags []string, limit int) ([]model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE tags && $1
		ORDER BY average_rating DESC
		LIMIT $2
	`
	return r.listCourses(ctx, query, tags, limit)
}

func (r *courseRepo) CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM courses WHERE created_at >= $1 AND created_at < $2`
	if err := r.pool.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting created courses: %w", err)
	}
	return count, nil
}

func (r *courseRepo) listCourses(ctx context.Context, query string, args ...any) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}
