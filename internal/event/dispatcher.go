package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/model"
	"app/internal/service"

	"github.com/rs/zerolog"
)

// CourseOps is the slice of course behavior the dispatcher needs.
type CourseOps interface {
	AdjustLikeCount(ctx context.Context, courseID string, delta int) error
	RecalculateRating(ctx context.Context, courseID string) error
}

// UserOps is the slice of user behavior the dispatcher needs.
type UserOps interface {
	InitializeProfile(ctx context.Context, userID string) error
	AdjustStat(ctx context.Context, userID, stat string, delta int) error
}

// SearchOps is the slice of search behavior the dispatcher needs.
type SearchOps interface {
	UpdateIndex(ctx context.Context, course *model.Course) error
}

// Dispatcher routes data change events to the services that maintain the
// derived state. A returned error means the message should be redelivered;
// malformed payloads and unknown rows are logged and dropped instead, since
// redelivery cannot fix them.
type Dispatcher struct {
	courses CourseOps
	users   UserOps
	search  SearchOps
	logger  zerolog.Logger
}

// NewDispatcher creates a new Dispatcher with a scoped logger.
func NewDispatcher(courses CourseOps, users UserOps, search SearchOps, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		courses: courses,
		users:   users,
		search:  search,
		logger:  logger.With().Str("component", "Dispatcher").Logger(),
	}
}

// Handle processes one event. The kind comes from the message attributes,
// the payload is the raw message body.
func (d *Dispatcher) Handle(ctx context.Context, kind string, payload []byte) error {
	switch Kind(kind) {
	case LikeCreated:
		return d.handleLike(ctx, payload, 1)
	case LikeDeleted:
		return d.handleLike(ctx, payload, -1)
	case ReviewCreated:
		return d.handleReview(ctx, payload)
	case UserCreated:
		return d.handleUser(ctx, payload)
	case CourseCreated:
		return d.handleCourse(ctx, payload)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (d *Dispatcher) handleLike(ctx context.Context, payload []byte, delta int) error {
	var p LikePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.logger.Warn().Err(err).Msg("Dropping malformed like payload")
		return nil
	}
	if p.CourseID == "" {
		d.logger.Warn().Msg("Dropping like event without course ID")
		return nil
	}

	if err := d.courses.AdjustLikeCount(ctx, p.CourseID, delta); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			d.logger.Warn().Str("course_id", p.CourseID).Msg("Dropping like event for unknown course")
			return nil
		}
		return err
	}

	if p.UserID != "" {
		if err := d.users.AdjustStat(ctx, p.UserID, model.StatCoursesLiked, delta); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				d.logger.Warn().Str("user_id", p.UserID).Msg("Skipping stat update for unknown user")
				return nil
			}
			return err
		}
	}
	return nil
}

func (d *Dispatcher) handleReview(ctx context.Context, payload []byte) error {
	var p ReviewPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.logger.Warn().Err(err).Msg("Dropping malformed review payload")
		return nil
	}
	if p.CourseID == "" {
		d.logger.Warn().Msg("Dropping review event without course ID")
		return nil
	}

	if err := d.courses.RecalculateRating(ctx, p.CourseID); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			d.logger.Warn().Str("course_id", p.CourseID).Msg("Dropping review event for unknown course")
			return nil
		}
		return err
	}

	if p.UserID != "" {
		if err := d.users.AdjustStat(ctx, p.UserID, model.StatReviewsWritten, 1); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				d.logger.Warn().Str("user_id", p.UserID).Msg("Skipping stat update for unknown user")
				return nil
			}
			return err
		}
	}
	return nil
}

func (d *Dispatcher) handleUser(ctx context.Context, payload []byte) error {
	var p UserPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.logger.Warn().Err(err).Msg("Dropping malformed user payload")
		return nil
	}
	if p.UserID == "" {
		d.logger.Warn().Msg("Dropping user event without user ID")
		return nil
	}
	// The profile row may lag behind the event; redelivery picks it up once
	// the row exists.
	return d.users.InitializeProfile(ctx, p.UserID)
}

func (d *Dispatcher) handleCourse(ctx context.Context, payload []byte) error {
	var p CoursePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		d.logger.Warn().Err(err).Msg("Dropping malformed course payload")
		return nil
	}
	if p.CourseID == "" {
		d.logger.Warn().Msg("Dropping course event without course ID")
		return nil
	}

	course := &model.Course{
		ID:          p.CourseID,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Hashtags:    p.Hashtags,
		Category:    p.Category,
		Location:    p.Location,
		CreatedAt:   p.CreatedAt,
	}
	if err := d.search.UpdateIndex(ctx, course); err != nil {
		return err
	}

	if p.UserID != "" {
		if err := d.users.AdjustStat(ctx, p.UserID, model.StatCoursesCreated, 1); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				d.logger.Warn().Str("user_id", p.UserID).Msg("Skipping stat update for unknown user")
				return nil
			}
			return err
		}
	}
	return nil
}
