package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttendanceService interface {
	Index(ctx context.Context, actor Actor, filters repositories.AttendanceFilters) (*repositories.Page[*models.Attendance], error)
	Record(ctx context.Context, actor Actor, req *RecordAttendanceRequest) (*models.Attendance, error)
	Show(ctx context.Context, actor Actor, id uint) (*models.Attendance, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateAttendanceRequest) (*models.Attendance, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	CourseStatistics(ctx context.Context, actor Actor, courseID uint) (*repositories.AttendanceStatistics, error)
}

type attendanceService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
}

func NewAttendanceService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AttendanceService {
	return &attendanceService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "attendance"),
	}
}

func (s *attendanceService) Index(ctx context.Context, actor Actor, filters repositories.AttendanceFilters) (*repositories.Page[*models.Attendance], error) {
	if errs := s.validator.Business().ValidateDateRange("fecha_desde", "fecha_hasta", filters.DateFrom, filters.DateTo); len(errs) > 0 {
		return nil, errs
	}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		ids, err := teacherScope(ctx, s.repo, actor)
		if err != nil {
			return nil, err
		}
		filters.CourseIDs = ids
	default:
		studentID := actor.ID
		filters.StudentID = &studentID
	}

	page, err := s.repo.Attendance().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return page, nil
}

// Record stores one attendance mark per student, course and day.
func (s *attendanceService) Record(ctx context.Context, actor Actor, req *RecordAttendanceRequest) (*models.Attendance, error) {
	start := time.Now()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, req.CourseID, "record_attendance"); err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, req.StudentID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, NewValidationError("estudiante_id", "no está inscrito en el curso", req.StudentID)
	}

	attendance := &models.Attendance{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		Date:       datatypes.Date(req.Date),
		Status:     req.Status,
		Notes:      req.Notes,
		RecorderID: actor.ID,
	}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.Attendance().Exists(ctx, tx, req.StudentID, req.CourseID, req.Date, nil)
		if err != nil {
			return fmt.Errorf("failed to check attendance: %w", err)
		}
		if exists {
			return ErrAttendanceExists
		}
		return translateWriteError(s.repo.Attendance().Create(ctx, tx, attendance), ErrAttendanceExists)
	})
	s.audit.LogOperation(ctx, "record_attendance", actor.ID, attendance.ID, "attendance", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s.getAttendance(ctx, attendance.ID)
}

func (s *attendanceService) Show(ctx context.Context, actor Actor, id uint) (*models.Attendance, error) {
	attendance, err := s.getAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if attendance.StudentID == actor.ID || s.canManage(actor, attendance) {
		return attendance, nil
	}
	return nil, NewPermissionError(actor.ID, id, "attendance", "read", "not the student or course instructor")
}

func (s *attendanceService) Update(ctx context.Context, actor Actor, id uint, req *UpdateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	attendance, err := s.getAttendance(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, attendance) {
		return nil, NewPermissionError(actor.ID, id, "attendance", "update", "not the course instructor")
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if req.Date != nil {
			if req.Date.After(s.validator.Business().Now()) {
				return NewValidationError("fecha", "no puede ser una fecha futura", *req.Date)
			}
			exists, err := s.repo.Attendance().Exists(ctx, tx, attendance.StudentID, attendance.CourseID, *req.Date, &id)
			if err != nil {
				return fmt.Errorf("failed to check attendance: %w", err)
			}
			if exists {
				return ErrAttendanceExists
			}
			fields["attendance_date"] = datatypes.Date(*req.Date)
		}
		return translateWriteError(s.repo.Attendance().Update(ctx, tx, id, fields), ErrAttendanceExists)
	})
	if err != nil {
		return nil, err
	}
	return s.getAttendance(ctx, id)
}

func (s *attendanceService) Delete(ctx context.Context, actor Actor, id uint) error {
	attendance, err := s.getAttendance(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, attendance) {
		return NewPermissionError(actor.ID, id, "attendance", "delete", "not the course instructor")
	}
	if err := s.repo.Attendance().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "attendance", "delete", nil)
	return nil
}

// CourseStatistics counts marks by status; tardanza counts as attended.
func (s *attendanceService) CourseStatistics(ctx context.Context, actor Actor, courseID uint) (*repositories.AttendanceStatistics, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "attendance_statistics"); err != nil {
		return nil, err
	}
	stats, err := s.repo.Attendance().Statistics(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute attendance statistics: %w", err)
	}
	return stats, nil
}

func (s *attendanceService) getAttendance(ctx context.Context, id uint) (*models.Attendance, error) {
	attendance, err := s.repo.Attendance().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if attendance == nil {
		return nil, ErrAttendanceNotFound
	}
	return attendance, nil
}

func (s *attendanceService) canManage(actor Actor, attendance *models.Attendance) bool {
	if actor.IsAdmin() {
		return true
	}
	return attendance.Course != nil && canManageCourse(actor, attendance.Course)
}
