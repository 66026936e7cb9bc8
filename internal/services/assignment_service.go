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

const (
	PriorityHigh   = "alta"
	PriorityMedium = "media"
	PriorityLow    = "baja"

	DeliveryOverdue = "vencida"
	DeliveryPending = "pendiente"
)

// AssignmentService manages course assignments.
type AssignmentService interface {
	Create(ctx context.Context, actor Actor, req *CreateAssignmentRequest) (*models.Assignment, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Assignment, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	List(ctx context.Context, actor Actor) ([]*models.Assignment, error)
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Assignment, error)
	ListByLesson(ctx context.Context, actor Actor, lessonID uint) ([]*models.Assignment, error)

	// Student views
	PendingForStudent(ctx context.Context, studentID uint) ([]*PendingAssignment, error)
	StudentView(ctx context.Context, studentID, assignmentID uint) (*StudentAssignmentView, error)
}

// StudentAssignmentView is an assignment with the caller's own submission, if any.
type StudentAssignmentView struct {
	*models.Assignment
	MySubmission *models.Submission `json:"mi_entrega"`
}

type assignmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
	now       func() time.Time
}

func NewAssignmentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AssignmentService {
	return &assignmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "assignment"),
		now:       time.Now,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *assignmentService) Create(ctx context.Context, actor Actor, req *CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, req.CourseID, "create_assignment"); err != nil {
		return nil, err
	}
	if err := checkLessonInCourse(ctx, s.repo, req.LessonID, req.CourseID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		LessonID:    req.LessonID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		AssignedAt:  req.AssignedAt,
		DueAt:       req.DueAt,
		Type:        req.Type,
		MaxPoints:   req.MaxPoints,
		Status:      req.Status,
	}
	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.audit.LogAuditEvent(ctx, AuditEventCreate, actor.ID, assignment.ID, "assignment", "create", map[string]interface{}{
		"course_id": assignment.CourseID,
	})
	return assignment, nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (*models.Assignment, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, actor, assignment.CourseID); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, req *UpdateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, assignment.CourseID, "update_assignment"); err != nil {
		return nil, err
	}
	if err := checkLessonInCourse(ctx, s.repo, req.LessonID, assignment.CourseID); err != nil {
		return nil, err
	}

	assignedAt, dueAt := assignment.AssignedAt, assignment.DueAt
	if req.AssignedAt != nil {
		assignedAt = *req.AssignedAt
	}
	if req.DueAt != nil {
		dueAt = *req.DueAt
	}
	if errs := s.validator.Business().ValidateAssignmentDates(assignedAt, dueAt); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Assignment().Update(ctx, nil, id, req.Fields()); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	return s.getAssignment(ctx, id)
}

// Delete refuses while the assignment has submissions.
func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, assignment.CourseID, "delete_assignment"); err != nil {
		return err
	}

	hasSubmissions, err := s.repo.Submission().HasSubmissions(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check submissions: %w", err)
	}
	if hasSubmissions {
		rule := NewBusinessRuleError("assignment_has_submissions",
			"No se puede eliminar la tarea porque tiene entregas asociadas",
			map[string]interface{}{"assignment_id": id})
		s.audit.LogBusinessRuleViolation(ctx, "delete_assignment", actor.ID, rule)
		return rule
	}

	if err := s.repo.Assignment().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "assignment", "delete", nil)
	return nil
}

// ===== LISTINGS =====

// List returns every assignment for admins, the own courses for teachers and
// the enrolled courses for students.
func (s *assignmentService) List(ctx context.Context, actor Actor) ([]*models.Assignment, error) {
	var courseIDs []uint
	var err error
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		courseIDs, err = teacherScope(ctx, s.repo, actor)
	default:
		courseIDs, err = enrolledCourseIDs(ctx, s.repo, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment().List(ctx, nil, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Assignment, error) {
	if _, err := loadCourse(ctx, s.repo, courseID); err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, actor, courseID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) ListByLesson(ctx context.Context, actor Actor, lessonID uint) ([]*models.Assignment, error) {
	lesson, err := s.repo.Lesson().GetByID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if err := s.checkRead(ctx, actor, lesson.CourseID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment().ListByLesson(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lesson assignments: %w", err)
	}
	return assignments, nil
}

// ===== STUDENT VIEWS =====

func (s *assignmentService) PendingForStudent(ctx context.Context, studentID uint) ([]*PendingAssignment, error) {
	courseIDs, err := enrolledCourseIDs(ctx, s.repo, studentID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment().PendingForStudent(ctx, nil, studentID, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending assignments: %w", err)
	}

	now := s.now()
	pending := make([]*PendingAssignment, 0, len(assignments))
	for _, a := range assignments {
		pending = append(pending, ClassifyPending(a, now))
	}
	return pending, nil
}

func (s *assignmentService) StudentView(ctx context.Context, studentID, assignmentID uint) (*StudentAssignmentView, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, studentID, assignment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionScope{
		AssignmentID: &assignmentID,
		StudentID:    &studentID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	view := &StudentAssignmentView{Assignment: assignment}
	if len(submissions) > 0 {
		view.MySubmission = submissions[0]
	}
	return view, nil
}

// ClassifyPending computes days left, priority and delivery state at now.
func ClassifyPending(a *models.Assignment, now time.Time) *PendingAssignment {
	days := int(a.DueAt.Sub(now).Hours() / 24)

	priority := PriorityLow
	switch {
	case days <= 1:
		priority = PriorityHigh
	case days <= 3:
		priority = PriorityMedium
	}

	state := DeliveryPending
	if a.DueAt.Before(now) {
		state = DeliveryOverdue
	}
	return &PendingAssignment{Assignment: a, DaysLeft: days, Priority: priority, State: state}
}

// ===== HELPER METHODS =====

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}

// checkRead lets admins, the course instructor and enrolled students read course work.
func (s *assignmentService) checkRead(ctx context.Context, actor Actor, courseID uint) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsTeacher() {
		_, err := authorizeCourse(ctx, s.repo, actor, courseID, "read_assignments")
		return err
	}
	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, actor.ID, courseID)
	if err != nil {
		return fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return NewPermissionError(actor.ID, courseID, "course", "read_assignments", "not enrolled in the course")
	}
	return nil
}
