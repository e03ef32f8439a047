package event

import (
	"errors"
	"time"
)

// Kind identifies a data change event, carried in the message's eventType
// attribute.
type Kind string

const (
	LikeCreated   Kind = "like.created"
	LikeDeleted   Kind = "like.deleted"
	ReviewCreated Kind = "review.created"
	UserCreated   Kind = "user.created"
	CourseCreated Kind = "course.created"
)

// ErrUnknownKind is returned for event kinds this service does not handle.
// Unknown kinds are acknowledged, not retried.
var ErrUnknownKind = errors.New("unknown event kind")

// LikePayload describes a like row that was created or deleted.
type LikePayload struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
}

// ReviewPayload describes a freshly written review.
type ReviewPayload struct {
	CourseID string `json:"courseId"`
	UserID   string `json:"userId"`
	Rating   int    `json:"rating"`
}

// UserPayload describes a freshly registered user.
type UserPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// CoursePayload describes a freshly created course.
type CoursePayload struct {
	CourseID    string    `json:"courseId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Hashtags    []string  `json:"hashtags"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"createdAt"`
}
