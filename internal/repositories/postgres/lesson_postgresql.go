package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type LessonPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewLessonPostgreSQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (l *LessonPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	if err := l.helpers.Conn(ctx, tx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	lesson, err := First[models.Lesson](l.helpers.Conn(ctx, tx).Preload("Course"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson %d: %w", id, err)
	}
	return lesson, nil
}

func (l *LessonPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := l.helpers.UpdateFields(ctx, tx, &models.Lesson{}, id, fields); err != nil {
		return fmt.Errorf("failed to update lesson %d: %w", id, err)
	}
	return nil
}

// Delete detaches assignments from the lesson before removing it.
func (l *LessonPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	err := l.helpers.Conn(ctx, tx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Model(&models.Assignment{}).Where("lesson_id = ?", id).Update("lesson_id", nil).Error; err != nil {
			return err
		}
		if err := inner.Model(&models.Grade{}).Where("lesson_id = ?", id).Update("lesson_id", nil).Error; err != nil {
			return err
		}
		return inner.Delete(&models.Lesson{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete lesson %d: %w", id, err)
	}
	return nil
}

func (l *LessonPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint, onlyActive bool) ([]*models.Lesson, error) {
	query := l.helpers.Conn(ctx, tx).Where("course_id = ?", courseID)
	if onlyActive {
		query = query.Where("status = ?", models.LessonActive)
	}

	var lessons []*models.Lesson
	if err := query.Order("sort_order ASC").Order("id ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons of course %d: %w", courseID, err)
	}
	return lessons, nil
}

func (l *LessonPostgreSQL) Count(ctx context.Context, tx *gorm.DB, courseIDs []uint, status *models.LessonStatus) (int64, error) {
	query := scopeIDs(l.helpers.Conn(ctx, tx).Model(&models.Lesson{}), "course_id", courseIDs)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (l *LessonPostgreSQL) CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := l.helpers.Conn(ctx, tx).Model(&models.Lesson{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
