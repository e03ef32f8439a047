package model

import "time"

// Notification is an in-app notification row. The push delivery mirror is
// best-effort; the row is the source of truth.
type Notification struct {
	ID        string            `db:"id" json:"id"`
	UserID    string            `db:"user_id" json:"user_id"`
	Title     string            `db:"title" json:"title"`
	Body      string            `db:"body" json:"body"`
	Data      map[string]string `db:"data" json:"data,omitempty"`
	Type      string            `db:"type" json:"type"`
	IsRead    bool              `db:"is_read" json:"is_read"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// DailyStats aggregates per-day signup and course-creation counts, keyed by
// calendar date.
type DailyStats struct {
	StatDate        time.Time `db:"stat_date" json:"stat_date"`
	CoursesCreated  int       `db:"courses_created" json:"courses_created"`
	UsersRegistered int       `db:"users_registered" json:"users_registered"`
	GeneratedAt     time.Time `db:"generated_at" json:"generated_at"`
}
