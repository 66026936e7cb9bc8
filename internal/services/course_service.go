package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// CourseService serves the catalog and course authoring.
type CourseService interface {
	// Catalog
	List(ctx context.Context, filters repositories.CourseFilters, term string) (*repositories.Page[*models.Course], error)
	Popular(ctx context.Context) ([]*models.Course, error)
	Statistics(ctx context.Context) (*repositories.CourseStatistics, error)
	Get(ctx context.Context, id uint) (*models.Course, error)
	Detail(ctx context.Context, viewer *Actor, id uint) (*models.Course, error)
	ByInstructor(ctx context.Context, instructorID uint, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error)

	// Authoring
	Create(ctx context.Context, actor Actor, req *CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "course"),
	}
}

// ===== CATALOG =====

// List searches when term is set and lists with filters otherwise.
func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters, term string) (*repositories.Page[*models.Course], error) {
	courses := s.validator.Course()
	courses.SanitizeFilters(&filters)
	if errs := courses.ValidateFilters(&filters); len(errs) > 0 {
		return nil, errs
	}

	term = strings.TrimSpace(term)
	if term != "" {
		if errs := courses.ValidateSearchTerm(term); len(errs) > 0 {
			return nil, errs
		}
		page, err := s.repo.Course().Search(ctx, nil, term, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to search courses: %w", err)
		}
		return page, nil
	}

	page, err := s.repo.Course().ListWithFilters(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return page, nil
}

func (s *courseService) Popular(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.repo.Course().GetPopular(ctx, nil, repositories.PopularCoursesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) Statistics(ctx context.Context) (*repositories.CourseStatistics, error) {
	stats, err := s.repo.Course().GetStatistics(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get course statistics: %w", err)
	}
	return stats, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetWithRelations(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// Detail returns the full course to its instructor and to admins. Everyone
// else gets the public view without the invitation code or student records.
func (s *courseService) Detail(ctx context.Context, viewer *Actor, id uint) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer != nil && canManageCourse(*viewer, course) {
		return course, nil
	}
	return course.PublicView(), nil
}

func (s *courseService) ByInstructor(ctx context.Context, instructorID uint, filters repositories.CourseFilters) (*repositories.Page[*models.Course], error) {
	courses := s.validator.Course()
	courses.SanitizeFilters(&filters)
	if errs := courses.ValidateFilters(&filters); len(errs) > 0 {
		return nil, errs
	}
	page, err := s.repo.Course().GetByInstructor(ctx, nil, instructorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	return page, nil
}

// ===== AUTHORING =====

func (s *courseService) Create(ctx context.Context, actor Actor, req *CreateCourseRequest) (*models.Course, error) {
	start := time.Now()
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, NewPermissionError(actor.ID, 0, "course", "create", "only teachers and admins create courses")
	}
	req.Normalize()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	instructorID := actor.ID
	if actor.IsAdmin() && req.InstructorID != nil {
		if err := s.ensureTeacher(ctx, *req.InstructorID); err != nil {
			return nil, err
		}
		instructorID = *req.InstructorID
	}

	course := &models.Course{
		Title:             req.Title,
		Description:       req.Description,
		Duration:          req.Duration,
		Level:             req.Level,
		Price:             req.Price,
		Status:            req.Status,
		AccessType:        req.AccessType,
		InstructorID:      instructorID,
		ImageURL:          req.ImageURL,
		IntroVideoURL:     req.IntroVideoURL,
		Prerequisites:     req.Prerequisites,
		LearningGoals:     req.LearningGoals,
		IncludedMaterials: req.IncludedMaterials,
	}
	s.validator.Course().SanitizeCourse(course)

	err := s.repo.Course().Create(ctx, nil, course)
	s.audit.LogOperation(ctx, "create_course", actor.ID, course.ID, "course", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, req *UpdateCourseRequest) (*models.Course, error) {
	req.Normalize()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	course, err := authorizeCourse(ctx, s.repo, actor, id, "update")
	if err != nil {
		return nil, err
	}

	fields := req.Fields()
	if req.InstructorID != nil && *req.InstructorID != course.InstructorID {
		if !actor.IsAdmin() {
			return nil, NewPermissionError(actor.ID, id, "course", "reassign", "only admins change the instructor")
		}
		if err := s.ensureTeacher(ctx, *req.InstructorID); err != nil {
			return nil, err
		}
		fields["instructor_id"] = *req.InstructorID
	}
	accessType := course.AccessType
	if req.AccessType != nil {
		accessType = *req.AccessType
	}
	price := course.Price
	if req.Price != nil {
		price = *req.Price
	}
	if accessType == models.AccessPaid && price <= 0 {
		return nil, NewValidationError("precio", "debe ser mayor a 0 para cursos de pago", price)
	}

	found, err := s.repo.Course().Update(ctx, nil, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	if !found {
		return nil, ErrCourseNotFound
	}

	s.audit.LogAuditEvent(ctx, AuditEventUpdate, actor.ID, id, "course", "update", nil)
	return loadCourse(ctx, s.repo, id)
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := authorizeCourse(ctx, s.repo, actor, id, "delete"); err != nil {
		return err
	}
	found, err := s.repo.Course().Delete(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if !found {
		return ErrCourseNotFound
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "course", "delete", nil)
	return nil
}

func (s *courseService) ensureTeacher(ctx context.Context, userID uint) error {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("failed to get instructor: %w", err)
	}
	if user == nil || !user.IsTeacher() {
		return NewValidationError("instructor_id", "debe ser un profesor existente", userID)
	}
	return nil
}
