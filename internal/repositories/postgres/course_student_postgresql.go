package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseStudentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewCourseStudentPostgreSQL(db *gorm.DB) repositories.CourseStudentRepository {
	return &CourseStudentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Grant inserts a new access row. A duplicate surfaces as gorm.ErrDuplicatedKey.
func (c *CourseStudentPostgreSQL) Grant(ctx context.Context, tx *gorm.DB, access *models.CourseStudent) error {
	if access.AccessedAt.IsZero() {
		access.AccessedAt = time.Now()
	}
	if err := c.helpers.Conn(ctx, tx).Create(access).Error; err != nil {
		return fmt.Errorf("failed to grant course access: %w", err)
	}
	return nil
}

// Upsert grants access or refreshes the access kind of an existing row.
func (c *CourseStudentPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, courseID, userID uint, kind models.AccessKind) error {
	access := &models.CourseStudent{
		CourseID:   courseID,
		UserID:     userID,
		AccessKind: kind,
		AccessedAt: time.Now(),
	}
	err := c.helpers.Conn(ctx, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_kind", "accessed_at", "updated_at"}),
		}).
		Create(access).Error
	if err != nil {
		return fmt.Errorf("failed to upsert course access: %w", err)
	}
	return nil
}

func (c *CourseStudentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, courseID, userID uint) (bool, error) {
	return c.helpers.Exists(
		c.helpers.Conn(ctx, tx).
			Model(&models.CourseStudent{}).
			Where("course_id = ? AND user_id = ?", courseID, userID),
	)
}
