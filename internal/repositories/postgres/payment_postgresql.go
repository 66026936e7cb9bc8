package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type PaymentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewPaymentPostgreSQL(db *gorm.DB) repositories.PaymentRepository {
	return &PaymentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (p *PaymentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, transaction *models.Transaction) error {
	if err := p.helpers.Conn(ctx, tx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (p *PaymentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	result := p.helpers.Conn(ctx, tx).Model(&models.Transaction{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction %d: %w", id, result.Error)
	}
	return nil
}

func (p *PaymentPostgreSQL) HasActive(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	return p.helpers.Exists(
		p.helpers.Conn(ctx, tx).
			Model(&models.Transaction{}).
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Where("status IN ?", []models.TransactionStatus{models.TransactionPending, models.TransactionCompleted}),
	)
}

func (p *PaymentPostgreSQL) ReferenceUsed(ctx context.Context, tx *gorm.DB, method models.PaymentMethod, reference string) (bool, error) {
	return p.helpers.Exists(
		p.helpers.Conn(ctx, tx).
			Model(&models.Transaction{}).
			Where("method = ? AND reference = ?", method, reference),
	)
}

func (p *PaymentPostgreSQL) HasCompleted(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	return p.helpers.Exists(
		p.helpers.Conn(ctx, tx).
			Model(&models.Transaction{}).
			Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, models.TransactionCompleted),
	)
}

func (p *PaymentPostgreSQL) ListCompletedForCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) ([]*models.Transaction, error) {
	transactions := []*models.Transaction{}
	if len(courseIDs) == 0 {
		return transactions, nil
	}
	err := p.helpers.Conn(ctx, tx).
		Preload("User").
		Preload("Course").
		Where("course_id IN ? AND status = ?", courseIDs, models.TransactionCompleted).
		Order("paid_at DESC").
		Order("id DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

type ContactPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewContactPostgreSQL(db *gorm.DB) repositories.ContactRepository {
	return &ContactPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (c *ContactPostgreSQL) Create(ctx context.Context, tx *gorm.DB, contact *models.Contact) error {
	if err := c.helpers.Conn(ctx, tx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to store contact message: %w", err)
	}
	return nil
}
