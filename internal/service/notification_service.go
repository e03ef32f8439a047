package service

import (
	"context"
	"encoding/json"
	"time"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Read notifications older than this are eligible for cleanup.
	notificationRetention = 30 * 24 * time.Hour
	// Cleanup deletes at most this many rows per run.
	notificationCleanupBatch = 100
)

// NotificationService creates in-app notifications and prunes old ones.
type NotificationService interface {
	Notify(ctx context.Context, userID, title, body, notificationType string, data map[string]string) error
	// CleanupOld deletes a batch of old read notifications and returns how
	// many were removed.
	CleanupOld(ctx context.Context) (int, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	publisher        pubsub.Publisher
	topic            string
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService with a scoped
// logger. The publisher is optional; when nil, notifications are stored but
// no push message is emitted.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	publisher pubsub.Publisher,
	topic string,
	logger zerolog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		topic:            topic,
		logger:           logger.With().Str("service", "NotificationService").Logger(),
	}
}

func (s *notificationService) Notify(ctx context.Context, userID, title, body, notificationType string, data map[string]string) error {
	n := &model.Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   data,
		Type:   notificationType,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to store notification")
		return err
	}

	if s.publisher != nil {
		payload, err := json.Marshal(n)
		if err == nil {
			_, err = s.publisher.Publish(ctx, s.topic, payload, map[string]string{
				"eventType": "notification.created",
				"userId":    userID,
			})
		}
		if err != nil {
			// The notification row is committed; push delivery is best effort.
			s.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("Failed to publish notification")
		}
	}
	return nil
}

func (s *notificationService) CleanupOld(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-notificationRetention)
	deleted, err := s.notificationRepo.DeleteOldRead(ctx, cutoff, notificationCleanupBatch)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to clean up notifications")
		return 0, err
	}
	s.logger.Info().Int("deleted", deleted).Msg("Old notifications cleaned up")
	return deleted, nil
}
