package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/notify"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// ContactService receives the public contact form.
type ContactService interface {
	Submit(ctx context.Context, req *ContactRequest) (*models.Contact, error)
}

type contactService struct {
	repo        repositories.Repository
	mailer      notify.Mailer
	notifier    NotificationEventService
	destination string
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewContactService(
	repo repositories.Repository,
	mailer notify.Mailer,
	notifier NotificationEventService,
	destination string,
	logger *slog.Logger,
	validator *validator.Validator,
) ContactService {
	return &contactService{
		repo:        repo,
		mailer:      mailer,
		notifier:    notifier,
		destination: destination,
		logger:      logger,
		validator:   validator,
	}
}

// Submit stores the entry and sends a single notification mail. A mail failure
// is logged; the entry is already saved.
func (s *contactService) Submit(ctx context.Context, req *ContactRequest) (*models.Contact, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.repo.Contact().Create(ctx, nil, contact); err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}

	msg := notify.ContactMessage(s.destination, contact.Name, contact.Email, contact.Phone, contact.Subject, contact.Message)
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send contact notification", "contact_id", contact.ID, "error", err)
	}

	s.notifier.NotifyContactReceived(ctx, contact)
	s.logger.Info("Contact received", "contact_id", contact.ID)
	return contact, nil
}
