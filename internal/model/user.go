package model

import "time"

// Student verification lifecycle. There is no transition back to "none" and
// no re-verification path once verified.
const (
	VerificationStatusNone     = "none"
	VerificationStatusPending  = "pending"
	VerificationStatusVerified = "verified"
)

// Stat names accepted by UserRepository.AdjustStat.
const (
	StatProfileViews   = "profileViews"
	StatCoursesCreated = "coursesCreated"
	StatCoursesLiked   = "coursesLiked"
	StatReviewsWritten = "reviewsWritten"
)

// User represents a user profile document.
type User struct {
	UserID                    string    `db:"user_id" json:"user_id"`
	Email                     string    `db:"email" json:"email"`
	DisplayName               string    `db:"display_name" json:"display_name"`
	IsStudent                 bool      `db:"is_student" json:"is_student"`
	EmailVerified             bool      `db:"email_verified" json:"email_verified"`
	StudentVerificationStatus string    `db:"student_verification_status" json:"student_verification_status"`
	UniversityEmail           *string   `db:"university_email" json:"university_email,omitempty"`
	Stats                     UserStats `json:"stats"`
	IsActive                  bool      `db:"is_active" json:"is_active"`
	LastLoginAt               time.Time `db:"last_login_at" json:"last_login_at"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at"`
	LastUpdated               time.Time `db:"last_updated" json:"last_updated"`
}

// UserStats holds the denormalized per-user counters. All values are clamped
// at a floor of zero.
type UserStats struct {
	ProfileViews   int `db:"stats_profile_views" json:"profile_views"`
	CoursesCreated int `db:"stats_courses_created" json:"courses_created"`
	CoursesLiked   int `db:"stats_courses_liked" json:"courses_liked"`
	ReviewsWritten int `db:"stats_reviews_written" json:"reviews_written"`
}

// ClampCounter applies a signed delta to a counter value with a floor of
// zero. Both the real repositories and the in-memory fakes used in tests go
// through this helper so the floor rule has a single home.
func ClampCounter(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}
