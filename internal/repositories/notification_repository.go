package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) // nil when missing
	List(ctx context.Context, tx *gorm.DB, userID uint, unread *bool, page, perPage int) (*Page[*models.Notification], error)
	CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint, at time.Time) (int64, error)
}
