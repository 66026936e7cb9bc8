package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type NotificationPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (n *NotificationPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := n.helpers.Conn(ctx, tx).CreateInBatches(notifications, 100).Error; err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

func (n *NotificationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	notification, err := First[models.Notification](n.helpers.Conn(ctx, tx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification %d: %w", id, err)
	}
	return notification, nil
}

// List pages through the inbox newest first; unread filters on read state when set.
func (n *NotificationPostgreSQL) List(ctx context.Context, tx *gorm.DB, userID uint, unread *bool, page, perPage int) (*repositories.Page[*models.Notification], error) {
	query := n.helpers.Conn(ctx, tx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unread != nil {
		if *unread {
			query = query.Where("read_at IS NULL")
		} else {
			query = query.Where("read_at IS NOT NULL")
		}
	}
	query = query.Order("created_at DESC").Order("id DESC")

	result, err := Paginate[*models.Notification](query, page, perPage, repositories.DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return result, nil
}

func (n *NotificationPostgreSQL) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := n.helpers.Conn(ctx, tx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead keeps the first read time.
func (n *NotificationPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	err := n.helpers.Conn(ctx, tx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

func (n *NotificationPostgreSQL) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint, at time.Time) (int64, error) {
	result := n.helpers.Conn(ctx, tx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", at)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
