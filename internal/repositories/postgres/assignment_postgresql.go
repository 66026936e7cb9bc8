package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type AssignmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssignmentPostgreSQL(db *gorm.DB) repositories.AssignmentRepository {
	return &AssignmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AssignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	if assignment.AssignedAt.IsZero() {
		assignment.AssignedAt = time.Now()
	}
	if err := a.helpers.Conn(ctx, tx).Create(assignment).Error; err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	assignment, err := First[models.Assignment](
		a.helpers.Conn(ctx, tx).Preload("Course").Preload("Lesson"),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment %d: %w", id, err)
	}
	return assignment, nil
}

func (a *AssignmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := a.helpers.UpdateFields(ctx, tx, &models.Assignment{}, id, fields); err != nil {
		return fmt.Errorf("failed to update assignment %d: %w", id, err)
	}
	return nil
}

func (a *AssignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := a.helpers.Conn(ctx, tx).Delete(&models.Assignment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete assignment %d: %w", id, err)
	}
	return nil
}

// List returns assignments of the given courses, nil meaning every course.
func (a *AssignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, courseIDs []uint) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := scopeIDs(a.helpers.Conn(ctx, tx), "course_id", courseIDs).
		Preload("Course").
		Order("due_at ASC").
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Assignment, error) {
	return a.List(ctx, tx, []uint{courseID})
}

func (a *AssignmentPostgreSQL) ListByLesson(ctx context.Context, tx *gorm.DB, lessonID uint) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := a.helpers.Conn(ctx, tx).
		Where("lesson_id = ?", lessonID).
		Order("due_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of lesson %d: %w", lessonID, err)
	}
	return assignments, nil
}

// PendingForStudent lists active assignments in the given courses that the
// student has not submitted, soonest due first.
func (a *AssignmentPostgreSQL) PendingForStudent(ctx context.Context, tx *gorm.DB, studentID uint, courseIDs []uint) ([]*models.Assignment, error) {
	if len(courseIDs) == 0 {
		return []*models.Assignment{}, nil
	}

	var assignments []*models.Assignment
	err := a.helpers.Conn(ctx, tx).
		Preload("Course").
		Where("course_id IN ?", courseIDs).
		Where("status = ?", models.AssignmentActive).
		Where("NOT EXISTS (SELECT 1 FROM entregas_tareas WHERE entregas_tareas.assignment_id = tareas.id AND entregas_tareas.student_id = ?)", studentID).
		Order("due_at ASC").
		Order("id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending assignments: %w", err)
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) DueBetween(ctx context.Context, tx *gorm.DB, from, to time.Time) ([]*models.Assignment, error) {
	var assignments []*models.Assignment
	err := a.helpers.Conn(ctx, tx).
		Preload("Course").
		Where("status = ? AND due_at >= ? AND due_at < ?", models.AssignmentActive, from, to).
		Order("due_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments due soon: %w", err)
	}
	return assignments, nil
}

func (a *AssignmentPostgreSQL) Count(ctx context.Context, tx *gorm.DB, courseID *uint) (int64, error) {
	query := a.helpers.Conn(ctx, tx).Model(&models.Assignment{})
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (a *AssignmentPostgreSQL) CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := a.helpers.Conn(ctx, tx).Model(&models.Assignment{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
