package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LikeRepository reads like rows. Likes are created and deleted by clients;
// this service only consumes them for preference analysis.
type LikeRepository interface {
	ListCourseIDsByUserID(ctx context.Context, userID string) ([]string, error)
}

type likeRepo struct {
	pool *pgxpool.Pool
}

// NewLikeRepo creates a new LikeRepository.
func NewLikeRepo(pool *pgxpool.Pool) LikeRepository {
	return &likeRepo{pool: pool}
}

func (r *likeRepo) ListCourseIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT course_id FROM likes WHERE user_id = $1`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing likes for user %s: %w", userID, err)
	}
	defer rows.Close()

	courseIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning like row: %w", err)
		}
		courseIDs = append(courseIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courseIDs, nil
}
