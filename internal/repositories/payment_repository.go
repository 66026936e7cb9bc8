package repositories

import (
	"context"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, transaction *models.Transaction) error
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	HasCompleted(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	// HasActive reports a pending or completed purchase of the course by the user.
	HasActive(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	ReferenceUsed(ctx context.Context, tx *gorm.DB, method models.PaymentMethod, reference string) (bool, error)
	ListCompletedForCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) ([]*models.Transaction, error)
}

type ContactRepository interface {
	Create(ctx context.Context, tx *gorm.DB, contact *models.Contact) error
}
