package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

type LessonRepository interface {
	Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, onlyActive bool) ([]*models.Lesson, error)

	// Count filters by courseIDs and status when given; nil courseIDs counts every course.
	Count(ctx context.Context, tx *gorm.DB, courseIDs []uint, status *models.LessonStatus) (int64, error)
	CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
}
