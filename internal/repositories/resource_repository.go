package repositories

import (
	"context"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

// ResourceFilters narrows resource listings. CourseIDs restricts to a set of
// courses when non-nil; an empty non-nil slice matches nothing.
type ResourceFilters struct {
	CourseID   *uint
	Type       *models.ResourceType
	Status     *models.ResourceStatus
	Term       string
	CourseIDs  []uint
	ActiveOnly bool
	Page       int
	PerPage    int
}

type ResourceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters ResourceFilters) (*Page[*models.Resource], error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, activeOnly bool) ([]*models.Resource, error)
}

type MultimediaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, media *models.Multimedia) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Multimedia, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// List restricts to lessons of courseIDs when non-nil.
	List(ctx context.Context, tx *gorm.DB, courseIDs []uint, activeOnly bool) ([]*models.Multimedia, error)
	ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uint, activeOnly bool) ([]*models.Multimedia, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, activeOnly bool) ([]*models.Multimedia, error)
}
