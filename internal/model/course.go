package model

import "time"

// Course is a shared course document. The counter and rating fields are
// denormalized: they are maintained by the event-driven recomputations, not
// written by clients.
type Course struct {
	ID             string    `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	Tags           []string  `db:"tags" json:"tags"`
	Hashtags       []string  `db:"hashtags" json:"hashtags"`
	Category       string    `db:"category" json:"category"`
	Location       string    `db:"location" json:"location"`
	LikeCount      int       `db:"like_count" json:"like_count"`
	AverageRating  float64   `db:"average_rating" json:"average_rating"`
	ReviewCount    int       `db:"review_count" json:"review_count"`
	PopularityRank *int      `db:"popularity_rank" json:"popularity_rank,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastUpdated    time.Time `db:"last_updated" json:"last_updated"`
}

// SearchIndexEntry is the derived keyword document for a course. It is always
// recomputed in full from the course, never patched incrementally.
type SearchIndexEntry struct {
	CourseID    string    `db:"course_id" json:"course_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Tags        []string  `db:"tags" json:"tags"`
	Location    string    `db:"location" json:"location"`
	Category    string    `db:"category" json:"category"`
	Keywords    []string  `db:"keywords" json:"keywords"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	LastIndexed time.Time `db:"last_indexed" json:"last_indexed"`
}
