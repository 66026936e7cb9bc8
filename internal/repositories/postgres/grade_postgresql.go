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

type GradePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &GradePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (g *GradePostgreSQL) Create(ctx context.Context, tx *gorm.DB, grade *models.Grade) error {
	if grade.EvaluatedAt.IsZero() {
		grade.EvaluatedAt = time.Now()
	}
	if err := g.helpers.Conn(ctx, tx).Create(grade).Error; err != nil {
		return fmt.Errorf("failed to create grade: %w", err)
	}
	grade.ComputeFinalScore()
	return nil
}

func (g *GradePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Grade, error) {
	grade, err := First[models.Grade](
		g.helpers.Conn(ctx, tx).
			Preload("Student").
			Preload("Course").
			Preload("Lesson").
			Preload("Evaluator"),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get grade %d: %w", id, err)
	}
	if grade != nil {
		grade.ComputeFinalScore()
	}
	return grade, nil
}

func (g *GradePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := g.helpers.UpdateFields(ctx, tx, &models.Grade{}, id, fields); err != nil {
		return fmt.Errorf("failed to update grade %d: %w", id, err)
	}
	return nil
}

func (g *GradePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := g.helpers.Conn(ctx, tx).Delete(&models.Grade{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete grade %d: %w", id, err)
	}
	return nil
}

func (g *GradePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.GradeFilters) (*repositories.Page[*models.Grade], error) {
	query := scopeIDs(g.helpers.Conn(ctx, tx).Model(&models.Grade{}), "course_id", filters.CourseIDs)
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.EvaluationType != nil {
		query = query.Where("evaluation_type = ?", *filters.EvaluationType)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	query = query.Order("evaluated_at DESC").Order("id DESC")

	page, err := Paginate[*models.Grade](query, filters.Page, filters.PerPage, repositories.DefaultPageSize, "Student", "Course", "Lesson", "Evaluator")
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	computeFinalScores(page.Data)
	return page, nil
}

func (g *GradePostgreSQL) listWhere(ctx context.Context, tx *gorm.DB, query string, args ...interface{}) ([]*models.Grade, error) {
	var grades []*models.Grade
	err := g.helpers.Conn(ctx, tx).
		Preload("Student").
		Preload("Course").
		Preload("Lesson").
		Where(query, args...).
		Order("evaluated_at DESC").
		Order("id DESC").
		Find(&grades).Error
	if err != nil {
		return nil, err
	}
	computeFinalScores(grades)
	return grades, nil
}

func (g *GradePostgreSQL) ListPublishedByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Grade, error) {
	grades, err := g.listWhere(ctx, tx, "student_id = ? AND status = ?", studentID, models.GradePublished)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades of student %d: %w", studentID, err)
	}
	return grades, nil
}

func (g *GradePostgreSQL) ListPublishedByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Grade, error) {
	grades, err := g.listWhere(ctx, tx, "course_id = ? AND status = ?", courseID, models.GradePublished)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades of course %d: %w", courseID, err)
	}
	return grades, nil
}

func (g *GradePostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Grade, error) {
	grades, err := g.listWhere(ctx, tx, "course_id = ?", courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades of course %d: %w", courseID, err)
	}
	return grades, nil
}

// StudentAverage averages the published grades of a student in one course.
func (g *GradePostgreSQL) StudentAverage(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (*repositories.StudentAverage, error) {
	var avg sql.NullFloat64
	var total int64
	err := g.helpers.Conn(ctx, tx).
		Model(&models.Grade{}).
		Select("AVG(score), COUNT(*)").
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, models.GradePublished).
		Row().
		Scan(&avg, &total)
	if err != nil {
		return nil, fmt.Errorf("failed to average grades: %w", err)
	}
	return &repositories.StudentAverage{
		Average:     utils.Round2(avg.Float64),
		TotalGrades: total,
	}, nil
}

func (g *GradePostgreSQL) Publish(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := g.helpers.Conn(ctx, tx).
		Model(&models.Grade{}).
		Where("id IN ?", ids).
		Update("status", models.GradePublished)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to publish grades: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (g *GradePostgreSQL) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Grade, error) {
	var grades []*models.Grade
	if len(ids) == 0 {
		return grades, nil
	}
	if err := g.helpers.Conn(ctx, tx).Where("id IN ?", ids).Find(&grades).Error; err != nil {
		return nil, fmt.Errorf("failed to find grades: %w", err)
	}
	return grades, nil
}

func computeFinalScores(grades []*models.Grade) {
	for _, grade := range grades {
		grade.ComputeFinalScore()
	}
}
