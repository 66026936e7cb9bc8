package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"gorm.io/gorm"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts a submission. The unique (assignment_id, student_id) index
// turns a concurrent duplicate into gorm.ErrDuplicatedKey.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionDelivered
	}
	if err := s.helpers.Conn(ctx, tx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	submission, err := First[models.Submission](
		s.helpers.Conn(ctx, tx).Preload("Assignment.Course").Preload("Student"),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %d: %w", id, err)
	}
	return submission, nil
}

func (s *SubmissionPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, assignmentID, studentID uint) (bool, error) {
	return s.helpers.Exists(
		s.helpers.Conn(ctx, tx).
			Model(&models.Submission{}).
			Where("assignment_id = ? AND student_id = ?", assignmentID, studentID),
	)
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := s.helpers.UpdateFields(ctx, tx, &models.Submission{}, id, fields); err != nil {
		return fmt.Errorf("failed to update submission %d: %w", id, err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := s.helpers.Conn(ctx, tx).Delete(&models.Submission{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete submission %d: %w", id, err)
	}
	return nil
}

// scoped restricts a query over entregas_tareas. Course scopes join through
// the assignment.
func (s *SubmissionPostgreSQL) scoped(ctx context.Context, tx *gorm.DB, scope repositories.SubmissionScope) *gorm.DB {
	query := s.helpers.Conn(ctx, tx).Model(&models.Submission{})
	if scope.AssignmentID != nil {
		query = query.Where("entregas_tareas.assignment_id = ?", *scope.AssignmentID)
	}
	if scope.StudentID != nil {
		query = query.Where("entregas_tareas.student_id = ?", *scope.StudentID)
	}
	if scope.CourseID != nil || scope.CourseIDs != nil {
		query = query.Joins("JOIN tareas ON tareas.id = entregas_tareas.assignment_id")
		if scope.CourseID != nil {
			query = query.Where("tareas.course_id = ?", *scope.CourseID)
		}
		query = scopeIDs(query, "tareas.course_id", scope.CourseIDs)
	}
	return query
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, scope repositories.SubmissionScope) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := s.scoped(ctx, tx, scope).
		Preload("Assignment.Course").
		Preload("Student").
		Order("entregas_tareas.submitted_at DESC").
		Order("entregas_tareas.id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) HasSubmissions(ctx context.Context, tx *gorm.DB, assignmentID uint) (bool, error) {
	return s.helpers.Exists(s.scoped(ctx, tx, repositories.SubmissionScope{AssignmentID: &assignmentID}))
}

func (s *SubmissionPostgreSQL) Count(ctx context.Context, tx *gorm.DB, scope repositories.SubmissionScope) (int64, error) {
	var count int64
	err := s.scoped(ctx, tx, scope).Count(&count).Error
	return count, err
}

func (s *SubmissionPostgreSQL) CountSince(ctx context.Context, tx *gorm.DB, scope repositories.SubmissionScope, since time.Time) (int64, error) {
	var count int64
	err := s.scoped(ctx, tx, scope).Where("entregas_tareas.submitted_at >= ?", since).Count(&count).Error
	return count, err
}

// AverageGrade averages graded submissions only, rounded to two decimals.
func (s *SubmissionPostgreSQL) AverageGrade(ctx context.Context, tx *gorm.DB, scope repositories.SubmissionScope) (float64, error) {
	var avg sql.NullFloat64
	err := s.scoped(ctx, tx, scope).
		Where("entregas_tareas.grade IS NOT NULL").
		Select("AVG(entregas_tareas.grade)").
		Row().
		Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to average grades: %w", err)
	}
	return utils.Round2(avg.Float64), nil
}

// GradedAverageByCourse groups a student's graded submissions by course.
func (s *SubmissionPostgreSQL) GradedAverageByCourse(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.SubmissionAverage, error) {
	var rows []repositories.SubmissionAverage
	err := s.helpers.Conn(ctx, tx).
		Model(&models.Submission{}).
		Select("tareas.course_id AS course_id, AVG(entregas_tareas.grade) AS average, COUNT(*) AS count").
		Joins("JOIN tareas ON tareas.id = entregas_tareas.assignment_id").
		Where("entregas_tareas.student_id = ? AND entregas_tareas.grade IS NOT NULL", studentID).
		Group("tareas.course_id").
		Order("tareas.course_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to average grades by course: %w", err)
	}
	for i := range rows {
		rows[i].Average = utils.Round2(rows[i].Average)
	}
	return rows, nil
}
