package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

// CourseRepository is the course query layer. The cached implementation
// wraps the database one and shares this interface.
type CourseRepository interface {
	// Catalog reads
	ListWithFilters(ctx context.Context, tx *gorm.DB, filters CourseFilters) (*Page[*models.Course], error)
	GetWithRelations(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) // nil when missing
	GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint, filters CourseFilters) (*Page[*models.Course], error)
	GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Course, error)
	Search(ctx context.Context, tx *gorm.DB, term string, filters CourseFilters) (*Page[*models.Course], error)
	GetStatistics(ctx context.Context, tx *gorm.DB) (*CourseStatistics, error)

	// Writes; Update and Delete report false when the course does not exist
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// Plain lookups, never cached
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) // nil when missing
	ListOwnedWithCounts(ctx context.Context, tx *gorm.DB, instructorID uint) ([]*models.Course, error)
	IDsByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint) ([]uint, error)
	CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
}

// CourseCacheInvalidator drops cached course views after writes made outside
// CourseRepository, such as enrollment changes.
type CourseCacheInvalidator interface {
	InvalidateCourse(ctx context.Context, courseID uint)
	InvalidateLearner(ctx context.Context, userID uint)
}

// CourseStudentRepository manages the curso_usuario access pivot.
type CourseStudentRepository interface {
	Grant(ctx context.Context, tx *gorm.DB, access *models.CourseStudent) error
	Upsert(ctx context.Context, tx *gorm.DB, courseID, userID uint, kind models.AccessKind) error
	Exists(ctx context.Context, tx *gorm.DB, courseID, userID uint) (bool, error)
}
