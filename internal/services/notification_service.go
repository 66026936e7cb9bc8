package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/datatypes"
)

// NotificationService keeps the per-user in-app inbox.
type NotificationService interface {
	// SendBulk stores one inbox entry per user.
	SendBulk(ctx context.Context, userIDs []uint, notification *NotificationRequest) error

	// Inbox management
	List(ctx context.Context, userID uint, unread *bool, page, perPage int) (*repositories.Page[*models.Notification], error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type notificationService struct {
	repo   repositories.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ===== BULK NOTIFICATIONS =====

func (s *notificationService) SendBulk(ctx context.Context, userIDs []uint, notification *NotificationRequest) error {
	userIDs = uniqueIDs(userIDs)
	if len(userIDs) == 0 {
		return nil
	}
	s.logger.Info("Sending bulk notification",
		"user_count", len(userIDs),
		"type", notification.Type)

	var data datatypes.JSON
	if len(notification.Data) > 0 {
		raw, err := json.Marshal(notification.Data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data: %w", err)
		}
		data = raw
	}

	now := s.now()
	notifications := make([]*models.Notification, len(userIDs))
	for i, userID := range userIDs {
		notifications[i] = &models.Notification{
			UserID:    userID,
			Type:      notification.Type,
			Title:     notification.Title,
			Message:   notification.Message,
			Data:      data,
			CreatedAt: now,
		}
	}

	if err := s.repo.Notification().CreateBatch(ctx, nil, notifications); err != nil {
		return fmt.Errorf("failed to create bulk notifications: %w", err)
	}
	return nil
}

// ===== NOTIFICATION MANAGEMENT =====

func (s *notificationService) List(ctx context.Context, userID uint, unread *bool, page, perPage int) (*repositories.Page[*models.Notification], error) {
	notifications, err := s.repo.Notification().List(ctx, nil, userID, unread, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to get user notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repo.Notification().CountUnread(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead keeps the first read time when called again.
func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	notification, err := s.getNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, NewPermissionError(userID, notificationID, "notification", "mark_read", "not owned by user")
	}
	if notification.IsRead() {
		return notification, nil
	}

	if err := s.repo.Notification().MarkRead(ctx, nil, notificationID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return s.getNotification(ctx, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	marked, err := s.repo.Notification().MarkAllRead(ctx, nil, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	s.logger.Info("Marked all notifications as read", "user_id", userID, "count", marked)
	return marked, nil
}

func (s *notificationService) getNotification(ctx context.Context, id uint) (*models.Notification, error) {
	notification, err := s.repo.Notification().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}
