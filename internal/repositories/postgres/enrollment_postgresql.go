package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type EnrollmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts an enrollment. The unique (user_id, course_id) index turns a
// concurrent duplicate into gorm.ErrDuplicatedKey.
func (e *EnrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentActive
	}
	if err := e.helpers.Conn(ctx, tx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (e *EnrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	enrollment, err := First[models.Enrollment](e.helpers.Conn(ctx, tx).Preload("Course").Preload("User"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment %d: %w", id, err)
	}
	return enrollment, nil
}

func (e *EnrollmentPostgreSQL) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Enrollment, error) {
	enrollment, err := First[models.Enrollment](
		e.helpers.Conn(ctx, tx).Where("user_id = ? AND course_id = ?", userID, courseID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return enrollment, nil
}

func (e *EnrollmentPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, userID, courseID uint) (bool, error) {
	return e.helpers.Exists(
		e.helpers.Conn(ctx, tx).
			Model(&models.Enrollment{}).
			Where("user_id = ? AND course_id = ?", userID, courseID),
	)
}

func (e *EnrollmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := e.helpers.UpdateFields(ctx, tx, &models.Enrollment{}, id, fields); err != nil {
		return fmt.Errorf("failed to update enrollment %d: %w", id, err)
	}
	return nil
}

func (e *EnrollmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := e.helpers.Conn(ctx, tx).Delete(&models.Enrollment{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete enrollment %d: %w", id, err)
	}
	return nil
}

// ListByUser returns the newest enrollments first; limit <= 0 means all.
func (e *EnrollmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, limit int) ([]*models.Enrollment, error) {
	query := e.helpers.Conn(ctx, tx).
		Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var enrollments []*models.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to list enrollments of user %d: %w", userID, err)
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := e.helpers.Conn(ctx, tx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments of course %d: %w", courseID, err)
	}
	return enrollments, nil
}

func (e *EnrollmentPostgreSQL) CourseIDsByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]uint, error) {
	ids := []uint{}
	err := e.helpers.Conn(ctx, tx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Order("course_id ASC").
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses of user %d: %w", userID, err)
	}
	return ids, nil
}

func (e *EnrollmentPostgreSQL) StudentIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error) {
	ids := []uint{}
	err := e.helpers.Conn(ctx, tx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students of course %d: %w", courseID, err)
	}
	return ids, nil
}

// scoped applies an EnrollmentScope to a query over inscripciones.
func (e *EnrollmentPostgreSQL) scoped(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope) *gorm.DB {
	query := e.helpers.Conn(ctx, tx).Model(&models.Enrollment{})
	if scope.CourseID != nil {
		query = query.Where("course_id = ?", *scope.CourseID)
	}
	if scope.UserID != nil {
		query = query.Where("user_id = ?", *scope.UserID)
	}
	return scopeIDs(query, "course_id", scope.CourseIDs)
}

// Counts breaks enrollments down by status. Completed also includes rows at
// full progress.
func (e *EnrollmentPostgreSQL) Counts(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope) (*repositories.EnrollmentCounts, error) {
	counts := &repositories.EnrollmentCounts{}
	err := e.scoped(ctx, tx, scope).
		Select(
			"COUNT(*), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? OR progress >= 100 THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)",
			models.EnrollmentActive, models.EnrollmentCompleted, models.EnrollmentInProgress,
		).
		Row().
		Scan(&counts.Total, &counts.Active, &counts.Completed, &counts.InProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return counts, nil
}

func (e *EnrollmentPostgreSQL) CountSince(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope, since time.Time) (int64, error) {
	var count int64
	err := e.scoped(ctx, tx, scope).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

func (e *EnrollmentPostgreSQL) CountDistinctStudents(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope) (int64, error) {
	var count int64
	err := e.scoped(ctx, tx, scope).Distinct("user_id").Count(&count).Error
	return count, err
}

func (e *EnrollmentPostgreSQL) CountFullProgress(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope) (int64, error) {
	var count int64
	err := e.scoped(ctx, tx, scope).Where("progress >= ?", 100).Count(&count).Error
	return count, err
}

func (e *EnrollmentPostgreSQL) AverageProgress(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope) (float64, error) {
	var avg sql.NullFloat64
	if err := e.scoped(ctx, tx, scope).Select("AVG(progress)").Row().Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average progress: %w", err)
	}
	return avg.Float64, nil
}

func (e *EnrollmentPostgreSQL) ProgressBuckets(ctx context.Context, tx *gorm.DB, scope repositories.EnrollmentScope) (*repositories.ProgressBuckets, error) {
	buckets := &repositories.ProgressBuckets{}
	err := e.scoped(ctx, tx, scope).
		Select(
			"COALESCE(SUM(CASE WHEN progress <= 25 THEN 1 ELSE 0 END), 0), " +
				"COALESCE(SUM(CASE WHEN progress > 25 AND progress <= 50 THEN 1 ELSE 0 END), 0), " +
				"COALESCE(SUM(CASE WHEN progress > 50 AND progress <= 75 THEN 1 ELSE 0 END), 0), " +
				"COALESCE(SUM(CASE WHEN progress > 75 THEN 1 ELSE 0 END), 0)",
		).
		Row().
		Scan(&buckets.Initial, &buckets.Basic, &buckets.Intermediate, &buckets.Advanced)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket progress: %w", err)
	}
	return buckets, nil
}

// LastActivity is the latest enrollment change of the user, nil when none.
func (e *EnrollmentPostgreSQL) LastActivity(ctx context.Context, tx *gorm.DB, userID uint) (*time.Time, error) {
	enrollment, err := First[models.Enrollment](
		e.helpers.Conn(ctx, tx).Where("user_id = ?", userID).Order("updated_at DESC"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get last activity: %w", err)
	}
	if enrollment == nil {
		return nil, nil
	}
	return &enrollment.UpdatedAt, nil
}
