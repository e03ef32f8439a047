package model

import "time"

// EmailVerification stores the pending token for a student email upgrade.
// One row per user; a new request overwrites the previous token. The row is
// consumed, not deleted, on a successful verify.
type EmailVerification struct {
	UserID     string    `db:"user_id" json:"user_id"`
	Email      string    `db:"email" json:"email"`
	Token      string    `db:"token" json:"-"`
	IsVerified bool      `db:"is_verified" json:"is_verified"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
}
