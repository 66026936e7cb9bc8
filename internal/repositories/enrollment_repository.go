package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

// EnrollmentScope restricts enrollment aggregates. Zero value means all rows.
type EnrollmentScope struct {
	CourseID  *uint
	UserID    *uint
	CourseIDs []uint
}

type EnrollmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) // nil when missing
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error)
	Exists(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Enrollment, error)
	CourseIDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error)
	StudentIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error)

	// Aggregates
	Counts(ctx context.Context, tx *gorm.DB, scope EnrollmentScope) (*EnrollmentCounts, error)
	CountSince(ctx context.Context, tx *gorm.DB, scope EnrollmentScope, since time.Time) (int64, error)
	CountDistinctStudents(ctx context.Context, tx *gorm.DB, scope EnrollmentScope) (int64, error)
	CountFullProgress(ctx context.Context, tx *gorm.DB, scope EnrollmentScope) (int64, error)
	AverageProgress(ctx context.Context, tx *gorm.DB, scope EnrollmentScope) (float64, error)
	ProgressBuckets(ctx context.Context, tx *gorm.DB, scope EnrollmentScope) (*ProgressBuckets, error)
	LastActivity(ctx context.Context, tx *gorm.DB, userID uint) (*time.Time, error)
}
