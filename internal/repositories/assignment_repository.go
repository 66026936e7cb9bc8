package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, courseIDs []uint) ([]*models.Assignment, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Assignment, error)
	ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uint) ([]*models.Assignment, error)
	PendingForStudent(ctx context.Context, tx *gorm.DB, studentID uint, courseIDs []uint) ([]*models.Assignment, error)
	DueBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*models.Assignment, error)

	Count(ctx context.Context, tx *gorm.DB, courseID *uint) (int64, error)
	CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
}
