package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"app/internal/model"
)

// VerificationRepository stores email verification tokens, one row per user.
type VerificationRepository interface {
	// Upsert writes the verification row, replacing any previous token for
	// the user and resetting the verified flag.
	Upsert(ctx context.Context, v *model.EmailVerification) error
	// GetByUserID retrieves the row, or (nil, nil) when absent.
	GetByUserID(ctx context.Context, userID string) (*model.EmailVerification, error)
	// MarkVerified flags the row as consumed. The row is kept, not deleted.
	MarkVerified(ctx context.Context, userID string) error
}

type verificationRepo struct {
	pool *pgxpool.Pool
}

// NewVerificationRepo creates a new VerificationRepository.
func NewVerificationRepo(pool *pgxpool.Pool) VerificationRepository {
	return &verificationRepo{pool: pool}
}

func (r *verificationRepo) Upsert(ctx context.Context, v *model.EmailVerification) error {
	const query = `
		INSERT INTO email_verifications (user_id, email, token, is_verified, expires_at)
		VALUES ($1, $2, $3, false, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET email = EXCLUDED.email,
		              token = EXCLUDED.token,
		              is_verified = false,
		              created_at = now(),
		              expires_at = EXCLUDED.expires_at
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, v.UserID, v.Email, v.Token, v.ExpiresAt).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting verification for user %s: %w", v.UserID, err)
	}
	return nil
}

func (r *verificationRepo) GetByUserID(ctx context.Context, userID string) (*model.EmailVerification, error) {
	const query = `
		SELECT user_id, email, token, is_verified, created_at, expires_at
		FROM email_verifications
		WHERE user_id = $1
	`
	var v model.EmailVerification
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&v.UserID,
		&v.Email,
		&v.Token,
		&v.IsVerified,
		&v.CreatedAt,
		&v.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching verification for user %s: %w", userID, err)
	}
	return &v, nil
}

func (r *verificationRepo) MarkVerified(ctx context.Context, userID string) error {
	const query = `UPDATE email_verifications SET is_verified = true WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("marking verification consumed for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
