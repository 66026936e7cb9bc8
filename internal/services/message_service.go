package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// MessageService is the internal mailbox between users.
type MessageService interface {
	Inbox(ctx context.Context, userID uint, box repositories.MessageBox, page, perPage int) (*repositories.Page[*models.Message], error)
	Send(ctx context.Context, senderID uint, req *SendMessageRequest) (*models.Message, error)
	Show(ctx context.Context, userID, id uint) (*models.Message, error)
	Update(ctx context.Context, userID, id uint, req *UpdateMessageRequest) (*models.Message, error)
	Delete(ctx context.Context, userID, id uint) error
	MarkRead(ctx context.Context, userID, id uint) (*models.Message, error)
}

type messageService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewMessageService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) MessageService {
	return &messageService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

func (s *messageService) Inbox(ctx context.Context, userID uint, box repositories.MessageBox, page, perPage int) (*repositories.Page[*models.Message], error) {
	switch box {
	case repositories.MessageBoxAll, repositories.MessageBoxSent, repositories.MessageBoxReceived:
	case "":
		box = repositories.MessageBoxAll
	default:
		return nil, NewValidationError("bandeja", "no es válida", box)
	}
	messages, err := s.repo.Message().List(ctx, nil, userID, box, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *messageService) Send(ctx context.Context, senderID uint, req *SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	recipient, err := s.repo.User().GetByID(ctx, nil, req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, NewValidationError("destinatario_id", "no existe", req.RecipientID)
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Subject:     req.Subject,
		Body:        req.Body,
		Type:        req.Type,
		Status:      models.MessageSent,
		SentAt:      s.now(),
	}
	if message.Type == "" {
		message.Type = models.MessageGeneral
	}
	if err := s.repo.Message().Create(ctx, nil, message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.Info("Message sent", "message_id", message.ID, "sender_id", senderID, "recipient_id", recipient.ID)
	return s.getMessage(ctx, message.ID)
}

func (s *messageService) Show(ctx context.Context, userID, id uint) (*models.Message, error) {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !message.IsParticipant(userID) {
		return nil, NewPermissionError(userID, id, "message", "read", "not a participant")
	}
	return message, nil
}

func (s *messageService) Update(ctx context.Context, userID, id uint, req *UpdateMessageRequest) (*models.Message, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, NewPermissionError(userID, id, "message", "update", "not the sender")
	}
	if err := s.repo.Message().Update(ctx, nil, id, req.Fields()); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	return s.getMessage(ctx, id)
}

func (s *messageService) Delete(ctx context.Context, userID, id uint) error {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return err
	}
	if message.SenderID != userID {
		return NewPermissionError(userID, id, "message", "delete", "not the sender")
	}
	if err := s.repo.Message().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// MarkRead is idempotent; the first read time is kept.
func (s *messageService) MarkRead(ctx context.Context, userID, id uint) (*models.Message, error) {
	message, err := s.getMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.RecipientID != userID {
		return nil, NewPermissionError(userID, id, "message", "mark_read", "not the recipient")
	}
	if message.ReadAt != nil {
		return message, nil
	}

	fields := map[string]interface{}{
		"status":  models.MessageRead,
		"read_at": s.now(),
	}
	if err := s.repo.Message().Update(ctx, nil, id, fields); err != nil {
		return nil, fmt.Errorf("failed to mark message as read: %w", err)
	}
	return s.getMessage(ctx, id)
}

func (s *messageService) getMessage(ctx context.Context, id uint) (*models.Message, error) {
	message, err := s.repo.Message().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if message == nil {
		return nil, ErrMessageNotFound
	}
	return message, nil
}
