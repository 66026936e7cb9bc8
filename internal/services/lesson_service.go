package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

// LessonService manages the ordered lessons of a course.
type LessonService interface {
	Create(ctx context.Context, actor Actor, req *CreateLessonRequest) (*models.Lesson, error)
	Get(ctx context.Context, id uint) (*models.Lesson, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateLessonRequest) (*models.Lesson, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	// ListByCourse returns the active lessons of a course for the catalog.
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Lesson, error)
	// ListForInstructor returns every lesson of a course the actor manages.
	ListForInstructor(ctx context.Context, actor Actor, courseID uint) ([]*models.Lesson, error)
}

type lessonService struct {
	repo        repositories.Repository
	courseCache repositories.CourseCacheInvalidator
	logger      *slog.Logger
	validator   *validator.Validator
}

func NewLessonService(repo repositories.Repository, courseCache repositories.CourseCacheInvalidator, logger *slog.Logger, validator *validator.Validator) LessonService {
	return &lessonService{
		repo:        repo,
		courseCache: courseCache,
		logger:      logger,
		validator:   validator,
	}
}

func (s *lessonService) Create(ctx context.Context, actor Actor, req *CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, req.CourseID, "create_lesson"); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		CourseID:    req.CourseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     req.Content,
		Duration:    req.Duration,
		Order:       req.Order,
		Status:      req.Status,
	}
	if err := s.repo.Lesson().Create(ctx, nil, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	s.courseCache.InvalidateCourse(ctx, lesson.CourseID)
	s.logger.Info("Lesson created", "lesson_id", lesson.ID, "course_id", lesson.CourseID)
	return lesson, nil
}

func (s *lessonService) Get(ctx context.Context, id uint) (*models.Lesson, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

func (s *lessonService) Update(ctx context.Context, actor Actor, id uint, req *UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, lesson.CourseID, "update_lesson"); err != nil {
		return nil, err
	}

	if err := s.repo.Lesson().Update(ctx, nil, id, req.Fields()); err != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", err)
	}
	s.courseCache.InvalidateCourse(ctx, lesson.CourseID)
	return s.Get(ctx, id)
}

func (s *lessonService) Delete(ctx context.Context, actor Actor, id uint) error {
	lesson, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, lesson.CourseID, "delete_lesson"); err != nil {
		return err
	}
	if err := s.repo.Lesson().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	s.courseCache.InvalidateCourse(ctx, lesson.CourseID)
	return nil
}

func (s *lessonService) ListByCourse(ctx context.Context, courseID uint) ([]*models.Lesson, error) {
	if _, err := loadCourse(ctx, s.repo, courseID); err != nil {
		return nil, err
	}
	lessons, err := s.repo.Lesson().ListByCourse(ctx, nil, courseID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *lessonService) ListForInstructor(ctx context.Context, actor Actor, courseID uint) ([]*models.Lesson, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "list_lessons"); err != nil {
		return nil, err
	}
	lessons, err := s.repo.Lesson().ListByCourse(ctx, nil, courseID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}
