package repositories

import (
	"context"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

type GradeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grade, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters GradeFilters) (*Page[*models.Grade], error)
	ListPublishedByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Grade, error)
	ListPublishedByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Grade, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Grade, error)
	StudentAverage(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (*StudentAverage, error)

	// Publish flips every listed grade to publicada in one statement.
	Publish(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Grade, error)
}
