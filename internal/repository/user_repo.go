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

// Maps the public stat names onto their columns. Anything outside this map
// is rejected before it can reach a query string.
var statColumns = map[string]string{
	model.StatProfileViews:   "stats_profile_views",
	model.StatCoursesCreated: "stats_courses_created",
	model.StatCoursesLiked:   "stats_courses_liked",
	model.StatReviewsWritten: "stats_reviews_written",
}

// UserRepository defines the interface for interacting with user profiles.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	// GetByID retrieves a user, or (nil, nil) when absent.
	GetByID(ctx context.Context, userID string) (*model.User, error)
	// InitializeProfile resets the verification flags to their starting
	// state: every user begins as a regular, unverified user.
	InitializeProfile(ctx context.Context, userID string) error
	// AdjustStat applies a signed delta to one of the per-user counters
	// inside a serializable transaction, clamping at zero.
	AdjustStat(ctx context.Context, userID, stat string, delta int) (int, error)
	// SetVerificationPending records the university email and moves the user
	// to the pending verification state.
	SetVerificationPending(ctx context.Context, userID, universityEmail string) error
	// MarkVerified flips the student flags after a successful email verify.
	MarkVerified(ctx context.Context, userID string) error
	// TouchLastLogin refreshes the last login timestamp.
	TouchLastLogin(ctx context.Context, userID string) error
	// CountCreatedBetween counts users registered in [start, end).
	CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error)
	// CountInactiveSince counts active users whose last login is older than
	// the cutoff.
	CountInactiveSince(ctx context.Context, cutoff time.Time) (int, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a new UserRepository.
func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	const query = `
		INSERT INTO user_profiles (user_id, email, display_name)
		VALUES ($1, $2, $3)
		RETURNING is_student, email_verified, student_verification_status,
		          is_active, last_login_at, created_at, last_updated
	`
	err := r.pool.QueryRow(ctx, query, u.UserID, u.Email, u.DisplayName).Scan(
		&u.IsStudent,
		&u.EmailVerified,
		&u.StudentVerificationStatus,
		&u.IsActive,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", u.UserID, err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	const query = `
		SELECT user_id, email, display_name, is_student, email_verified,
		       student_verification_status, university_email,
		       stats_profile_views, stats_courses_created,
		       stats_courses_liked, stats_reviews_written,
		       is_active, last_login_at, created_at, last_updated
		FROM user_profiles
		WHERE user_id = $1
	`
	var u model.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID,
		&u.Email,
		&u.DisplayName,
		&u.IsStudent,
		&u.EmailVerified,
		&u.StudentVerificationStatus,
		&u.UniversityEmail,
		&u.Stats.ProfileViews,
		&u.Stats.CoursesCreated,
		&u.Stats.CoursesLiked,
		&u.Stats.ReviewsWritten,
		&u.IsActive,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	return &u, nil
}

func (r *userRepo) InitializeProfile(ctx context.Context, userID string) error {
	const query = `
		UPDATE user_profiles
		SET is_student = false,
		    email_verified = false,
		    student_verification_status = $2,
		    last_updated = now()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, model.VerificationStatusNone)
	if err != nil {
		return fmt.Errorf("initializing profile for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) AdjustStat(ctx context.Context, userID, stat string, delta int) (int, error) {
	column, ok := statColumns[stat]
	if !ok {
		return 0, fmt.Errorf("unknown user stat %q", stat)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, fmt.Errorf("starting transaction for user stat: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current int
	readQ := fmt.Sprintf(`SELECT %s FROM user_profiles WHERE user_id = $1`, column)
	if err := tx.QueryRow(ctx, readQ, userID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("reading stat %s for user %s: %w", stat, userID, err)
	}

	next := model.ClampCounter(current, delta)
	writeQ := fmt.Sprintf(`UPDATE user_profiles SET %s = $2, last_updated = now() WHERE user_id = $1`, column)
	if _, err := tx.Exec(ctx, writeQ, userID, next); err != nil {
		return 0, fmt.Errorf("writing stat %s for user %s: %w", stat, userID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing stat %s for user %s: %w", stat, userID, err)
	}
	return next, nil
}

func (r *userRepo) SetVerificationPending(ctx context.Context, userID, universityEmail string) error {
	const query = `
		UPDATE user_profiles
		SET university_email = $2,
		    student_verification_status = $3,
		    last_updated = now()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, universityEmail, model.VerificationStatusPending)
	if err != nil {
		return fmt.Errorf("marking verification pending for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) MarkVerified(ctx context.Context, userID string) error {
	const query = `
		UPDATE user_profiles
		SET is_student = true,
		    email_verified = true,
		    student_verification_status = $2,
		    last_updated = now()
		WHERE user_id = $1
	`
	tag, err := r.pool.Exec(ctx, query, userID, model.VerificationStatusVerified)
	if err != nil {
		return fmt.Errorf("marking user %s verified: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, userID string) error {
	const query = `UPDATE user_profiles SET last_login_at = now() WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("touching last login for user %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) CountCreatedBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM user_profiles WHERE created_at >= $1 AND created_at < $2`
	if err := r.pool.QueryRow(ctx, query, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting registered users: %w", err)
	}
	return count, nil
}

func (r *userRepo) CountInactiveSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM user_profiles WHERE is_active AND last_login_at < $1`
	if err := r.pool.QueryRow(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting inactive users: %w", err)
	}
	return count, nil
}
