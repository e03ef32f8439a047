package model

import "time"

// Like links a user to a course. Its creation and deletion are the sole
// triggers for the course like counter.
type Like struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
