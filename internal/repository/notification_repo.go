package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"app/internal/model"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// DeleteOldRead removes read notifications created before the cutoff,
	// at most limit rows per call, and returns how many were removed.
	DeleteOldRead(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type notificationRepo struct {
	pool *pgxpool.Pool
}

// NewNotificationRepo creates a new NotificationRepository.
func NewNotificationRepo(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, title, body, data, type, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, n.ID, n.UserID, n.Title, n.Body, n.Data, n.Type).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating notification for user %s: %w", n.UserID, err)
	}
	return nil
}

func (r *notificationRepo) DeleteOldRead(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	const query = `
		DELETE FROM notifications
		WHERE id IN (
			SELECT id FROM notifications
			WHERE is_read AND created_at < $1
			ORDER BY created_at
			LIMIT $2
		)
	`
	tag, err := r.pool.Exec(ctx, query, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("deleting old notifications: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
