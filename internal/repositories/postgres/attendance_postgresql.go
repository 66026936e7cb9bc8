package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttendancePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttendancePostgreSQL(db *gorm.DB) repositories.AttendanceRepository {
	return &AttendancePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AttendancePostgreSQL) Create(ctx context.Context, tx *gorm.DB, attendance *models.Attendance) error {
	if err := a.helpers.Conn(ctx, tx).Create(attendance).Error; err != nil {
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

func (a *AttendancePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attendance, error) {
	attendance, err := First[models.Attendance](
		a.helpers.Conn(ctx, tx).Preload("Student").Preload("Course").Preload("RecordedBy"),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance %d: %w", id, err)
	}
	return attendance, nil
}

func (a *AttendancePostgreSQL) Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error {
	if _, err := a.helpers.UpdateFields(ctx, tx, &models.Attendance{}, id, fields); err != nil {
		return fmt.Errorf("failed to update attendance %d: %w", id, err)
	}
	return nil
}

func (a *AttendancePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := a.helpers.Conn(ctx, tx).Delete(&models.Attendance{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete attendance %d: %w", id, err)
	}
	return nil
}

func (a *AttendancePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, studentID, courseID uint, date time.Time, excludeID *uint) (bool, error) {
	query := a.helpers.Conn(ctx, tx).
		Model(&models.Attendance{}).
		Where("student_id = ? AND course_id = ? AND attendance_date = ?", studentID, courseID, datatypes.Date(date))
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	return a.helpers.Exists(query)
}

func (a *AttendancePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttendanceFilters) (*repositories.Page[*models.Attendance], error) {
	query := scopeIDs(a.helpers.Conn(ctx, tx).Model(&models.Attendance{}), "course_id", filters.CourseIDs)
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("attendance_date >= ?", datatypes.Date(*filters.DateFrom))
	}
	if filters.DateTo != nil {
		query = query.Where("attendance_date <= ?", datatypes.Date(*filters.DateTo))
	}
	query = query.Order("attendance_date DESC").Order("id DESC")

	page, err := Paginate[*models.Attendance](query, filters.Page, filters.PerPage, repositories.DefaultPageSize, "Student", "Course")
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return page, nil
}

// Statistics counts attendance by status. Late arrivals count as present in
// the percentage.
func (a *AttendancePostgreSQL) Statistics(ctx context.Context, tx *gorm.DB, courseID uint) (*repositories.AttendanceStatistics, error) {
	stats := &repositories.AttendanceStatistics{}
	err := a.helpers.Conn(ctx, tx).
		Model(&models.Attendance{}).
		Select(
			"COUNT(*), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)",
			models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceExcused,
		).
		Where("course_id = ?", courseID).
		Row().
		Scan(&stats.Total, &stats.Present, &stats.Absent, &stats.Late, &stats.Excused)
	if err != nil {
		return nil, fmt.Errorf("failed to compute attendance statistics: %w", err)
	}
	stats.Percentage = utils.Percent(stats.Present+stats.Late, stats.Total)
	return stats, nil
}
