package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for user operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) // nil when missing
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) (*Page[*models.User], error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID *uint) (bool, error)

	// Aggregates
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByRole(ctx context.Context, tx *gorm.DB) (*RoleCounts, error)
	CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	CountActiveSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error)
	Recent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.User, error)
}
