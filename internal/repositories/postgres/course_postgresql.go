package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"gorm.io/gorm"
)

type CoursePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// ListWithFilters lists active courses only; a status filter is ignored.
func (c *CoursePostgreSQL) ListWithFilters(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	filters.Status = nil
	query := activeCourses(c.helpers.Conn(ctx, tx).Model(&models.Course{}), "")
	query = c.helpers.ApplyCourseFilters(query, "", filters)
	query = c.helpers.ApplyCourseSort(query, "", filters.SortBy, filters.SortOrder)

	page, err := Paginate[*models.Course](query, filters.Page, filters.PerPage, repositories.DefaultCoursePageSize, "Instructor")
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return page, nil
}

// GetWithRelations loads a course with instructor, ordered lessons,
// enrollments with their student, and assignments.
func (c *CoursePostgreSQL) GetWithRelations(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	course, err := First[models.Course](
		c.helpers.Conn(ctx, tx).
			Preload("Instructor").
			Preload("Lessons", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order ASC").Order("id ASC")
			}).
			Preload("Enrollments.User").
			Preload("Assignments", func(db *gorm.DB) *gorm.DB {
				return db.Order("due_at ASC")
			}),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	if course != nil {
		course.EnrollmentCount = int64(len(course.Enrollments))
		course.LessonCount = int64(len(course.Lessons))
	}
	return course, nil
}

// GetByInstructor applies the catalog filters to one instructor's courses in
// any status.
func (c *CoursePostgreSQL) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	filters.InstructorID = &instructorID
	query := c.helpers.ApplyCourseFilters(c.helpers.Conn(ctx, tx).Model(&models.Course{}), "", filters)
	query = c.helpers.ApplyCourseSort(query, "", filters.SortBy, filters.SortOrder)

	page, err := Paginate[*models.Course](query, filters.Page, filters.PerPage, repositories.DefaultCoursePageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	return page, nil
}

// GetPopular ranks active courses by enrollment count.
func (c *CoursePostgreSQL) GetPopular(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Course, error) {
	if limit <= 0 {
		limit = repositories.PopularCoursesLimit
	}

	var courses []*models.Course
	err := c.helpers.Conn(ctx, tx).
		Model(&models.Course{}).
		Select("cursos.*, COUNT(inscripciones.id) AS enrollment_count").
		Joins("LEFT JOIN inscripciones ON inscripciones.course_id = cursos.id").
		Where("cursos.status = ?", models.CourseActive).
		Group("cursos.id").
		Order("enrollment_count DESC").
		Order("cursos.id ASC").
		Limit(limit).
		Preload("Instructor").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get popular courses: %w", err)
	}
	return courses, nil
}

// Search matches the term case-insensitively against title and description
// of active courses.
func (c *CoursePostgreSQL) Search(ctx context.Context, tx *gorm.DB, term string, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	filters.Status = nil
	pattern := likePattern(term)
	query := activeCourses(c.helpers.Conn(ctx, tx).Model(&models.Course{}), "").
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	query = c.helpers.ApplyCourseFilters(query, "", filters)
	query = c.helpers.ApplyCourseSort(query, "", filters.SortBy, filters.SortOrder)

	page, err := Paginate[*models.Course](query, filters.Page, filters.PerPage, repositories.DefaultCoursePageSize, "Instructor")
	if err != nil {
		return nil, fmt.Errorf("failed to search courses: %w", err)
	}
	return page, nil
}

func (c *CoursePostgreSQL) GetStatistics(ctx context.Context, tx *gorm.DB) (*repositories.CourseStatistics, error) {
	conn := c.helpers.Conn(ctx, tx)
	stats := &repositories.CourseStatistics{}

	// Status breakdown in a single pass
	err := conn.Model(&models.Course{}).
		Select(
			"COUNT(*), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)",
			models.CourseActive, models.CourseInactive, models.CourseDraft,
		).
		Row().
		Scan(&stats.TotalCourses, &stats.ActiveCourses, &stats.InactiveCourses, &stats.DraftCourses)
	if err != nil {
		return nil, fmt.Errorf("failed to count courses by status: %w", err)
	}

	var enrollments int64
	if err := conn.Model(&models.Enrollment{}).Count(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	stats.AverageStudents = utils.Round2(utils.SafeDiv(float64(enrollments), stats.TotalCourses))

	err = conn.Model(&models.Course{}).
		Where("NOT EXISTS (SELECT 1 FROM inscripciones WHERE inscripciones.course_id = cursos.id)").
		Count(&stats.CoursesWithoutStudent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count courses without students: %w", err)
	}

	return stats, nil
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := c.helpers.Conn(ctx, tx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) (bool, error) {
	found, err := c.helpers.UpdateFields(ctx, tx, &models.Course{}, id, fields)
	if err != nil {
		return false, fmt.Errorf("failed to update course %d: %w", id, err)
	}
	return found, nil
}

// Delete removes the course and every row that hangs off it.
func (c *CoursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	found := false
	err := c.helpers.Conn(ctx, tx).Transaction(func(inner *gorm.DB) error {
		var count int64
		if err := inner.Model(&models.Course{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		found = true

		assignmentIDs := inner.Model(&models.Assignment{}).Select("id").Where("course_id = ?", id)
		if err := inner.Where("assignment_id IN (?)", assignmentIDs).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.Assignment{},
			&models.Grade{},
			&models.Attendance{},
			&models.Lesson{},
			&models.Enrollment{},
			&models.CourseStudent{},
			&models.Transaction{},
		} {
			if err := inner.Where("course_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return inner.Delete(&models.Course{}, id).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete course %d: %w", id, err)
	}
	return found, nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	course, err := First[models.Course](c.helpers.Conn(ctx, tx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}
	return course, nil
}

// ListOwnedWithCounts returns an instructor's courses with enrollment and
// lesson counts filled.
func (c *CoursePostgreSQL) ListOwnedWithCounts(ctx context.Context, tx *gorm.DB, instructorID uint) ([]*models.Course, error) {
	var courses []*models.Course
	err := c.helpers.Conn(ctx, tx).
		Model(&models.Course{}).
		Select("cursos.*, " +
			"(SELECT COUNT(*) FROM inscripciones WHERE inscripciones.course_id = cursos.id) AS enrollment_count, " +
			"(SELECT COUNT(*) FROM lecciones WHERE lecciones.course_id = cursos.id) AS lesson_count").
		Where("cursos.instructor_id = ?", instructorID).
		Order("cursos.created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses of instructor %d: %w", instructorID, err)
	}
	return courses, nil
}

func (c *CoursePostgreSQL) IDsByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint) ([]uint, error) {
	ids := []uint{}
	err := c.helpers.Conn(ctx, tx).
		Model(&models.Course{}).
		Where("instructor_id = ?", instructorID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course ids of instructor %d: %w", instructorID, err)
	}
	return ids, nil
}

func (c *CoursePostgreSQL) CountCreatedSince(ctx context.Context, tx *gorm.DB, since time.Time) (int64, error) {
	var count int64
	err := c.helpers.Conn(ctx, tx).Model(&models.Course{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
