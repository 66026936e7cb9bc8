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

// ResourceService manages the additional reading material attached to courses.
type ResourceService interface {
	Create(ctx context.Context, actor Actor, req *CreateResourceRequest) (*models.Resource, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Resource, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateResourceRequest) (*models.Resource, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	List(ctx context.Context, actor Actor, query ResourceQuery) (*repositories.Page[*models.Resource], error)
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Resource, error)
}

type resourceService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
}

func NewResourceService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ResourceService {
	return &resourceService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "resource"),
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *resourceService) Create(ctx context.Context, actor Actor, req *CreateResourceRequest) (*models.Resource, error) {
	req.Normalize()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, req.CourseID, "create_resource"); err != nil {
		return nil, err
	}
	if err := checkLessonInCourse(ctx, s.repo, req.LessonID, req.CourseID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.ResourceActive
	}
	resource := &models.Resource{
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		URL:             req.URL,
		FileURL:         req.FileURL,
		CourseID:        req.CourseID,
		LessonID:        req.LessonID,
		Required:        req.Required,
		Order:           req.Order,
		Author:          req.Author,
		Publisher:       req.Publisher,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Price:           req.Price,
		Status:          status,
		CreatorID:       actor.ID,
	}
	if err := s.repo.Resource().Create(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.audit.LogAuditEvent(ctx, AuditEventCreate, actor.ID, resource.ID, "resource", "create", map[string]interface{}{
		"course_id": resource.CourseID,
		"type":      resource.Type,
	})
	return s.getResource(ctx, resource.ID)
}

// Get hides inactive resources from students.
func (s *resourceService) Get(ctx context.Context, actor Actor, id uint) (*models.Resource, error) {
	resource, err := s.getResource(ctx, id)
	if err != nil {
		return nil, err
	}
	manager, err := courseReadAccess(ctx, s.repo, actor, resource.CourseID, "read_resources")
	if err != nil {
		return nil, err
	}
	if !manager && !resource.IsActive() {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

func (s *resourceService) Update(ctx context.Context, actor Actor, id uint, req *UpdateResourceRequest) (*models.Resource, error) {
	req.Normalize()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	resource, err := s.getResource(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, resource.CourseID, "update_resource"); err != nil {
		return nil, err
	}
	if err := checkLessonInCourse(ctx, s.repo, req.LessonID, resource.CourseID); err != nil {
		return nil, err
	}

	if err := s.repo.Resource().Update(ctx, nil, id, req.Fields()); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	return s.getResource(ctx, id)
}

func (s *resourceService) Delete(ctx context.Context, actor Actor, id uint) error {
	resource, err := s.getResource(ctx, id)
	if err != nil {
		return err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, resource.CourseID, "delete_resource"); err != nil {
		return err
	}
	if err := s.repo.Resource().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "resource", "delete", nil)
	return nil
}

// ===== LISTINGS =====

// List pages through the resources the actor may see: everything for admins,
// the own courses for teachers and the active resources of enrolled courses
// for students.
func (s *resourceService) List(ctx context.Context, actor Actor, query ResourceQuery) (*repositories.Page[*models.Resource], error) {
	filters := repositories.ResourceFilters{
		CourseID: query.CourseID,
		Type:     query.Type,
		Status:   query.Status,
		Term:     strings.TrimSpace(query.Term),
		Page:     query.Page,
		PerPage:  query.PerPage,
	}
	if filters.Type != nil {
		kind := models.ResourceType(normalizeEnum(string(*filters.Type)))
		filters.Type = &kind
	}

	var err error
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		filters.CourseIDs, err = teacherScope(ctx, s.repo, actor)
	default:
		filters.CourseIDs, err = enrolledCourseIDs(ctx, s.repo, actor.ID)
		filters.ActiveOnly = true
	}
	if err != nil {
		return nil, err
	}

	page, err := s.repo.Resource().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return page, nil
}

func (s *resourceService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Resource, error) {
	if _, err := loadCourse(ctx, s.repo, courseID); err != nil {
		return nil, err
	}
	manager, err := courseReadAccess(ctx, s.repo, actor, courseID, "read_resources")
	if err != nil {
		return nil, err
	}
	resources, err := s.repo.Resource().ListByCourse(ctx, nil, courseID, !manager)
	if err != nil {
		return nil, fmt.Errorf("failed to list course resources: %w", err)
	}
	return resources, nil
}

// ===== HELPER METHODS =====

func (s *resourceService) getResource(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	if resource == nil {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}
