package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type MessagePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &MessagePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (m *MessagePostgreSQL) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	if message.SentAt.IsZero() {
		message.SentAt = time.Now()
	}
	if message.Status == "" {
		message.Status = models.MessageSent
	}
	if err := m.helpers.Conn(ctx, tx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (m *MessagePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Message, error) {
	message, err := First[models.Message](m.helpers.Conn(ctx, tx).Preload("Sender").Preload("Recipient"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %d: %w", id, err)
	}
	return message, nil
}

func (m *MessagePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := m.helpers.UpdateFields(ctx, tx, &models.Message{}, id, fields); err != nil {
		return fmt.Errorf("failed to update message %d: %w", id, err)
	}
	return nil
}

func (m *MessagePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := m.helpers.Conn(ctx, tx).Delete(&models.Message{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete message %d: %w", id, err)
	}
	return nil
}

func (m *MessagePostgreSQL) List(ctx context.Context, tx *gorm.DB, userID uint, box repositories.MessageBox, page, perPage int) (*repositories.Page[*models.Message], error) {
	query := m.helpers.Conn(ctx, tx).Model(&models.Message{})
	switch box {
	case repositories.MessageBoxSent:
		query = query.Where("sender_id = ?", userID)
	case repositories.MessageBoxReceived:
		query = query.Where("recipient_id = ?", userID)
	default:
		query = query.Where("sender_id = ? OR recipient_id = ?", userID, userID)
	}
	query = query.Order("sent_at DESC").Order("id DESC")

	result, err := Paginate[*models.Message](query, page, perPage, repositories.DefaultPageSize, "Sender", "Recipient")
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return result, nil
}
