package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

// recentNotificationLimit caps the notification dropdown. Older entries
// age out of view rather than paginate.
const recentNotificationLimit = 30

// NotificationService reads and clears a user's notification feed.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// Recent returns the caller's newest notifications, capped at 30.
func (s *NotificationService) Recent(ctx context.Context, userID string) ([]model.Notification, error) {
	notifications, err := s.notifications.ListRecent(ctx, userID, recentNotificationLimit)
	if err != nil {
		return nil, fmt.Errorf("service/notification: listing for user %s: %w", userID, err)
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

// UnreadCount returns how many notifications the caller hasn't seen —
// the badge number.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service/notification: counting unread for user %s: %w", userID, err)
	}
	return count, nil
}

// MarkAllRead clears the caller's unread state in one write.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("service/notification: marking read for user %s: %w", userID, err)
	}
	return nil
}
