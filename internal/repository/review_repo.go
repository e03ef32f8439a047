package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository reads review rows. Reviews are immutable; this service
// never writes them.
type ReviewRepository interface {
	// ListRatingsByCourseID returns every rating value for the course, in no
	// particular order.
	ListRatingsByCourseID(ctx context.Context, courseID string) ([]int, error)
}

type reviewRepo struct {
	pool *pgxpool.Pool
}

// NewReviewRepo creates a new ReviewRepository.
func NewReviewRepo(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepo{pool: pool}
}

func (r *reviewRepo) ListRatingsByCourseID(ctx context.Context, courseID string) ([]int, error) {
	const query = `SELECT rating FROM reviews WHERE course_id = $1`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing ratings for course %s: %w", courseID, err)
	}
	defer rows.Close()

	ratings := []int{}
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("scanning rating row: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}
