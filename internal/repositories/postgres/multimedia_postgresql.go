package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type MultimediaPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewMultimediaPostgreSQL(db *gorm.DB) repositories.MultimediaRepository {
	return &MultimediaPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (m *MultimediaPostgreSQL) Create(ctx context.Context, tx *gorm.DB, media *models.Multimedia) error {
	if err := m.helpers.Conn(ctx, tx).Create(media).Error; err != nil {
		return fmt.Errorf("failed to create multimedia: %w", err)
	}
	return nil
}

func (m *MultimediaPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Multimedia, error) {
	media, err := First[models.Multimedia](m.helpers.Conn(ctx, tx).Preload("Lesson"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get multimedia %d: %w", id, err)
	}
	return media, nil
}

func (m *MultimediaPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := m.helpers.UpdateFields(ctx, tx, &models.Multimedia{}, id, fields); err != nil {
		return fmt.Errorf("failed to update multimedia %d: %w", id, err)
	}
	return nil
}

func (m *MultimediaPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := m.helpers.Conn(ctx, tx).Delete(&models.Multimedia{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete multimedia %d: %w", id, err)
	}
	return nil
}

func (m *MultimediaPostgreSQL) List(ctx context.Context, tx *gorm.DB, courseIDs []uint, activeOnly bool) ([]*models.Multimedia, error) {
	query := m.helpers.Conn(ctx, tx).Model(&models.Multimedia{})
	if courseIDs != nil {
		lessons := m.helpers.Conn(ctx, tx).Model(&models.Lesson{}).Select("id")
		query = query.Where("lesson_id IN (?)", scopeIDs(lessons, "course_id", courseIDs))
	}
	return m.find(query, activeOnly)
}

func (m *MultimediaPostgreSQL) ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uint, activeOnly bool) ([]*models.Multimedia, error) {
	return m.find(m.helpers.Conn(ctx, tx).Where("lesson_id = ?", lessonID), activeOnly)
}

func (m *MultimediaPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, activeOnly bool) ([]*models.Multimedia, error) {
	lessons := m.helpers.Conn(ctx, tx).Model(&models.Lesson{}).Select("id").Where("course_id = ?", courseID)
	return m.find(m.helpers.Conn(ctx, tx).Where("lesson_id IN (?)", lessons), activeOnly)
}

func (m *MultimediaPostgreSQL) find(query *gorm.DB, activeOnly bool) ([]*models.Multimedia, error) {
	if activeOnly {
		query = query.Where("status = ?", models.MediaActive)
	}
	var media []*models.Multimedia
	if err := query.Order("sort_order ASC").Order("id ASC").Find(&media).Error; err != nil {
		return nil, fmt.Errorf("failed to list multimedia: %w", err)
	}
	return media, nil
}
