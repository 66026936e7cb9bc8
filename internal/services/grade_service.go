package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
)

type GradeService interface {
	List(ctx context.Context, actor Actor, filters repositories.GradeFilters) (*repositories.Page[*models.Grade], error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Grade, error)
	Create(ctx context.Context, actor Actor, req *CreateGradeRequest) (*models.Grade, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateGradeRequest) (*models.Grade, error)
	Delete(ctx context.Context, actor Actor, id uint) error

	ListPublishedByStudent(ctx context.Context, actor Actor, studentID uint) ([]*models.Grade, error)
	ListPublishedByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Grade, error)
	StudentAverage(ctx context.Context, actor Actor, studentID, courseID uint) (*repositories.StudentAverage, error)
	Publish(ctx context.Context, actor Actor, req *PublishGradesRequest) (int64, error)
}

type gradeService struct {
	repo      repositories.Repository
	notifier  NotificationEventService
	logger    *slog.Logger
	validator *validator.Validator
	audit     *ServiceLogger
	now       func() time.Time
}

func NewGradeService(repo repositories.Repository, notifier NotificationEventService, logger *slog.Logger, validator *validator.Validator) GradeService {
	return &gradeService{
		repo:      repo,
		notifier:  notifier,
		logger:    logger,
		validator: validator,
		audit:     NewServiceLogger(logger, "grade"),
		now:       time.Now,
	}
}

// ===== CORE CRUD OPERATIONS =====

// List pages grades. Teachers are limited to their courses; students only see
// their own published grades.
func (s *gradeService) List(ctx context.Context, actor Actor, filters repositories.GradeFilters) (*repositories.Page[*models.Grade], error) {
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
		published := models.GradePublished
		filters.StudentID = &studentID
		filters.Status = &published
	}

	page, err := s.repo.Grade().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return page, nil
}

func (s *gradeService) Get(ctx context.Context, actor Actor, id uint) (*models.Grade, error) {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.canManage(actor, grade) {
		return grade, nil
	}
	if grade.StudentID == actor.ID && grade.Status == models.GradePublished {
		return grade, nil
	}
	return nil, NewPermissionError(actor.ID, id, "grade", "read", "not the student or course instructor")
}

func (s *gradeService) Create(ctx context.Context, actor Actor, req *CreateGradeRequest) (*models.Grade, error) {
	start := time.Now()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, req.CourseID, "grade"); err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, req.StudentID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, NewValidationError("estudiante_id", "no está inscrito en el curso", req.StudentID)
	}
	if err := s.checkLesson(ctx, req.LessonID, req.CourseID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		LessonID:       req.LessonID,
		EvaluationType: req.EvaluationType,
		Score:          *req.Score,
		Weight:         1,
		Comments:       req.Comments,
		EvaluatedAt:    s.now(),
		EvaluatorID:    actor.ID,
		Status:         req.Status,
	}
	if req.Weight != nil {
		grade.Weight = *req.Weight
	}
	if req.EvaluatedAt != nil {
		grade.EvaluatedAt = *req.EvaluatedAt
	}
	if grade.Status == "" {
		grade.Status = models.GradeDraft
	}

	err = s.repo.Grade().Create(ctx, nil, grade)
	s.audit.LogOperation(ctx, "create_grade", actor.ID, grade.ID, "grade", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to create grade: %w", err)
	}
	return s.getGrade(ctx, grade.ID)
}

func (s *gradeService) Update(ctx context.Context, actor Actor, id uint, req *UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actor, grade) {
		return nil, NewPermissionError(actor.ID, id, "grade", "update", "not the course instructor")
	}
	if err := s.checkLesson(ctx, req.LessonID, grade.CourseID); err != nil {
		return nil, err
	}

	if err := s.repo.Grade().Update(ctx, nil, id, req.Fields()); err != nil {
		return nil, fmt.Errorf("failed to update grade: %w", err)
	}
	s.audit.LogAuditEvent(ctx, AuditEventUpdate, actor.ID, id, "grade", "update", nil)
	return s.getGrade(ctx, id)
}

func (s *gradeService) Delete(ctx context.Context, actor Actor, id uint) error {
	grade, err := s.getGrade(ctx, id)
	if err != nil {
		return err
	}
	if !s.canManage(actor, grade) {
		return NewPermissionError(actor.ID, id, "grade", "delete", "not the course instructor")
	}
	if err := s.repo.Grade().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete grade: %w", err)
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "grade", "delete", nil)
	return nil
}

// ===== STUDENT AND COURSE VIEWS =====

func (s *gradeService) ListPublishedByStudent(ctx context.Context, actor Actor, studentID uint) ([]*models.Grade, error) {
	if actor.ID != studentID && !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, NewPermissionError(actor.ID, studentID, "student", "list_grades", "not the student")
	}
	grades, err := s.repo.Grade().ListPublishedByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student grades: %w", err)
	}
	if actor.IsTeacher() && actor.ID != studentID {
		ids, err := teacherScope(ctx, s.repo, actor)
		if err != nil {
			return nil, err
		}
		visible := grades[:0]
		for _, g := range grades {
			if containsID(ids, g.CourseID) {
				visible = append(visible, g)
			}
		}
		grades = visible
	}
	return grades, nil
}

func (s *gradeService) ListPublishedByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Grade, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "list_grades"); err != nil {
		return nil, err
	}
	grades, err := s.repo.Grade().ListPublishedByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course grades: %w", err)
	}
	return grades, nil
}

// StudentAverage averages published grades, rounded to two decimals.
func (s *gradeService) StudentAverage(ctx context.Context, actor Actor, studentID, courseID uint) (*repositories.StudentAverage, error) {
	course, err := loadCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	if actor.ID != studentID && !canManageCourse(actor, course) {
		return nil, NewPermissionError(actor.ID, courseID, "course", "student_average", "not the student or course instructor")
	}
	avg, err := s.repo.Grade().StudentAverage(ctx, nil, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute student average: %w", err)
	}
	return avg, nil
}

// ===== PUBLICATION =====

// Publish flips every listed grade to publicada in one statement. All ids must
// exist and, for teachers, belong to their courses.
func (s *gradeService) Publish(ctx context.Context, actor Actor, req *PublishGradesRequest) (int64, error) {
	if err := s.validator.Validate(req); err != nil {
		return 0, err
	}
	ids := uniqueIDs(req.GradeIDs)

	grades, err := s.repo.Grade().FindByIDs(ctx, nil, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to load grades: %w", err)
	}
	if len(grades) != len(ids) {
		return 0, NewValidationError("calificaciones", "contiene calificaciones inexistentes", missingIDs(ids, grades))
	}

	if !actor.IsAdmin() {
		owned, err := teacherScope(ctx, s.repo, actor)
		if err != nil {
			return 0, err
		}
		for _, g := range grades {
			if !containsID(owned, g.CourseID) {
				return 0, NewPermissionError(actor.ID, g.ID, "grade", "publish", "not the course instructor")
			}
		}
	}

	count, err := s.repo.Grade().Publish(ctx, nil, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to publish grades: %w", err)
	}
	for _, g := range grades {
		g.Status = models.GradePublished
	}

	s.notifier.NotifyGradesPublished(ctx, grades, actor.ID)
	s.audit.LogAuditEvent(ctx, AuditEventUpdate, actor.ID, 0, "grade", "publish", map[string]interface{}{
		"count": count,
	})
	return count, nil
}

// ===== HELPER METHODS =====

func (s *gradeService) getGrade(ctx context.Context, id uint) (*models.Grade, error) {
	grade, err := s.repo.Grade().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get grade: %w", err)
	}
	if grade == nil {
		return nil, ErrGradeNotFound
	}
	return grade, nil
}

// canManage needs the Course relation, which GetByID preloads.
func (s *gradeService) canManage(actor Actor, grade *models.Grade) bool {
	if actor.IsAdmin() {
		return true
	}
	return grade.Course != nil && canManageCourse(actor, grade.Course)
}

func (s *gradeService) checkLesson(ctx context.Context, lessonID *uint, courseID uint) error {
	if lessonID == nil {
		return nil
	}
	lesson, err := s.repo.Lesson().GetByID(ctx, nil, *lessonID)
	if err != nil {
		return fmt.Errorf("failed to get lesson: %w", err)
	}
	if lesson == nil || lesson.CourseID != courseID {
		return NewValidationError("leccion_id", "no pertenece al curso", *lessonID)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []uint, grades []*models.Grade) []uint {
	found := make(map[uint]struct{}, len(grades))
	for _, g := range grades {
		found[g.ID] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
