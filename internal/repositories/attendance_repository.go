package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attendance, error) // nil when missing
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Exists(ctx context.Context, tx *gorm.DB, studentID, courseID uint, date time.Time, excludeID *uint) (bool, error)

	List(ctx context.Context, tx *gorm.DB, filters AttendanceFilters) (*Page[*models.Attendance], error)
	Statistics(ctx context.Context, tx *gorm.DB, courseID uint) (*AttendanceStatistics, error)
}
