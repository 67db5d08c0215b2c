package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crewplanner/internal/domain"
)

type notificationService struct {
	notifications domain.NotificationRepository
	pushSender    domain.PushSender
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService returns the fan-out dispatcher. The in-app write is
// the canonical delivery record and its failure propagates; push is a
// best-effort accelerant dispatched only after the canonical write succeeds.
func NewNotificationService(notifications domain.NotificationRepository, pushSender domain.PushSender, logger *slog.Logger) domain.NotificationService {
	return &notificationService{
		notifications: notifications,
		pushSender:    pushSender,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *notificationService) Dispatch(ctx context.Context, f *domain.Fanout) error {
	if f == nil || len(f.UserIDs) == 0 {
		return nil
	}

	createdAt := s.now()
	rows := make([]*domain.Notification, 0, len(f.UserIDs))
	for _, userID := range f.UserIDs {
		rows = append(rows, &domain.Notification{
			UserID:        userID,
			Type:          f.Type,
			Message:       f.Message,
			ReferenceKind: f.ReferenceKind,
			ReferenceID:   f.ReferenceID,
			ActorID:       f.ActorID,
			Read:          false,
			CreatedAt:     createdAt,
		})
	}
	if err := s.notifications.CreateBatch(ctx, rows); err != nil {
		return fmt.Errorf("create notifications: %w", err)
	}

	if f.Push != nil {
		if err := s.pushSender.SendToUsers(ctx, f.UserIDs, *f.Push); err != nil {
			// Recipients still have the in-app record.
			s.logger.Error("push fan-out failed",
				"type", f.Type,
				"recipients", len(f.UserIDs),
				"error", err,
			)
		}
	}
	return nil
}
