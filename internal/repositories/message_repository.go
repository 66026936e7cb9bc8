package repositories

import (
	"context"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

// MessageBox selects which side of a conversation to list.
type MessageBox string

const (
	MessageBoxAll      MessageBox = "all"
	MessageBoxSent     MessageBox = "sent"
	MessageBoxReceived MessageBox = "received"
)

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.Message) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, userID uint, box MessageBox, page, perPage int) (*Page[*models.Message], error)
}
