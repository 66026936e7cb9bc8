package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/storage"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"gorm.io/gorm"
)

// SubmissionService handles assignment hand-ins and their grading.
type SubmissionService interface {
	Submit(ctx context.Context, studentID, assignmentID uint, file *UploadedFile, comments *string) (*models.Submission, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Submission, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateSubmissionRequest) (*models.Submission, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Grade(ctx context.Context, actor Actor, id uint, req *GradeSubmissionRequest) (*models.Submission, error)

	List(ctx context.Context, actor Actor) ([]*models.Submission, error)
	ListByAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]*models.Submission, error)
	ListByStudent(ctx context.Context, actor Actor, studentID uint) ([]*models.Submission, error)
}

type submissionService struct {
	repo        repositories.Repository
	files       storage.FileStorage
	notifier    NotificationEventService
	logger      *slog.Logger
	validator   *validator.Validator
	audit       *ServiceLogger
	maxFileSize int64
	now         func() time.Time
}

func NewSubmissionService(
	repo repositories.Repository,
	files storage.FileStorage,
	notifier NotificationEventService,
	maxFileSize int64,
	logger *slog.Logger,
	validator *validator.Validator,
) SubmissionService {
	return &submissionService{
		repo:        repo,
		files:       files,
		notifier:    notifier,
		logger:      logger,
		validator:   validator,
		audit:       NewServiceLogger(logger, "submission"),
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

// ===== STUDENT OPERATIONS =====

// Submit stores the file, then records the submission. A second submission for
// the same assignment is a conflict and leaves no stored file behind.
func (s *submissionService) Submit(ctx context.Context, studentID, assignmentID uint, file *UploadedFile, comments *string) (*models.Submission, error) {
	start := time.Now()
	if file == nil || file.Content == nil || file.Name == "" {
		return nil, NewValidationError("archivo", "es obligatorio", nil)
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, NewValidationError("archivo", fmt.Sprintf("no puede ser mayor que %d KB", s.maxFileSize/1024), file.Size)
	}
	if comments != nil && len([]rune(*comments)) > 1000 {
		return nil, NewValidationError("comentarios", "no puede ser mayor que 1000", nil)
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	enrolled, err := s.repo.Enrollment().Exists(ctx, nil, studentID, assignment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	exists, err := s.repo.Submission().Exists(ctx, nil, assignmentID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check submission: %w", err)
	}
	if exists {
		return nil, ErrSubmissionExists
	}

	key := storage.SubmissionKey(assignmentID, studentID, file.Name)
	url, err := s.files.Save(ctx, key, file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store submission file: %w", err)
	}

	submission := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		FileURL:      &url,
		FileKey:      &key,
		Comments:     comments,
		SubmittedAt:  s.now(),
		Status:       models.SubmissionDelivered,
	}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.Submission().Exists(ctx, tx, assignmentID, studentID)
		if err != nil {
			return fmt.Errorf("failed to check submission: %w", err)
		}
		if exists {
			return ErrSubmissionExists
		}
		if err := s.repo.Submission().Create(ctx, tx, submission); err != nil {
			return translateWriteError(err, ErrSubmissionExists)
		}
		return nil
	})
	s.audit.LogOperation(ctx, "submit_assignment", studentID, submission.ID, "submission", time.Since(start), err)
	if err != nil {
		s.removeFile(ctx, key)
		return nil, err
	}
	return s.getSubmission(ctx, submission.ID)
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (*models.Submission, error) {
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.StudentID == actor.ID || s.canGrade(actor, submission) {
		return submission, nil
	}
	return nil, NewPermissionError(actor.ID, id, "submission", "read", "not the author or course instructor")
}

// Update lets graders change every field and the author change comments only.
func (s *submissionService) Update(ctx context.Context, actor Actor, id uint, req *UpdateSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	switch {
	case s.canGrade(actor, submission):
		fields = req.Fields()
		if req.Grade != nil && req.Status == nil {
			fields["status"] = models.SubmissionGraded
		}
	case submission.StudentID == actor.ID:
		if submission.Status == models.SubmissionGraded {
			return nil, NewBusinessRuleError("submission_graded", "No se puede modificar una entrega calificada", nil)
		}
		fields = map[string]interface{}{}
		if req.Comments != nil {
			fields["comments"] = req.Comments
		}
	default:
		return nil, NewPermissionError(actor.ID, id, "submission", "update", "not the author or course instructor")
	}

	if err := s.repo.Submission().Update(ctx, nil, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return s.getSubmission(ctx, id)
}

// Delete removes the row and then the stored file.
func (s *submissionService) Delete(ctx context.Context, actor Actor, id uint) error {
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return err
	}
	if submission.StudentID != actor.ID && !s.canGrade(actor, submission) {
		return NewPermissionError(actor.ID, id, "submission", "delete", "not the author or course instructor")
	}

	if err := s.repo.Submission().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if key := s.fileKey(submission); key != "" {
		s.removeFile(ctx, key)
	}
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "submission", "delete", nil)
	return nil
}

// ===== GRADING =====

func (s *submissionService) Grade(ctx context.Context, actor Actor, id uint, req *GradeSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canGrade(actor, submission) {
		return nil, NewPermissionError(actor.ID, id, "submission", "grade", "not the course instructor")
	}

	fields := map[string]interface{}{
		"grade":            *req.Grade,
		"teacher_comments": req.TeacherComments,
		"status":           models.SubmissionGraded,
	}
	if err := s.repo.Submission().Update(ctx, nil, id, fields); err != nil {
		return nil, fmt.Errorf("failed to grade submission: %w", err)
	}

	graded, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifySubmissionGraded(ctx, graded, actor.ID)
	s.audit.LogAuditEvent(ctx, AuditEventUpdate, actor.ID, id, "submission", "grade", map[string]interface{}{
		"grade": *req.Grade,
	})
	return graded, nil
}

// ===== LISTINGS =====

func (s *submissionService) List(ctx context.Context, actor Actor) ([]*models.Submission, error) {
	var scope repositories.SubmissionScope
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		ids, err := teacherScope(ctx, s.repo, actor)
		if err != nil {
			return nil, err
		}
		scope.CourseIDs = ids
	default:
		studentID := actor.ID
		scope.StudentID = &studentID
	}
	return s.list(ctx, scope)
}

func (s *submissionService) ListByAssignment(ctx context.Context, actor Actor, assignmentID uint) ([]*models.Submission, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, assignment.CourseID, "list_submissions"); err != nil {
		return nil, err
	}
	return s.list(ctx, repositories.SubmissionScope{AssignmentID: &assignmentID})
}

// ListByStudent shows a student their own work, a teacher the work in their courses
// and an admin everything.
func (s *submissionService) ListByStudent(ctx context.Context, actor Actor, studentID uint) ([]*models.Submission, error) {
	scope := repositories.SubmissionScope{StudentID: &studentID}
	switch {
	case actor.IsAdmin(), actor.ID == studentID:
	case actor.IsTeacher():
		ids, err := teacherScope(ctx, s.repo, actor)
		if err != nil {
			return nil, err
		}
		scope.CourseIDs = ids
	default:
		return nil, NewPermissionError(actor.ID, studentID, "student", "list_submissions", "not the student")
	}
	return s.list(ctx, scope)
}

// ===== HELPER METHODS =====

func (s *submissionService) list(ctx context.Context, scope repositories.SubmissionScope) ([]*models.Submission, error) {
	submissions, err := s.repo.Submission().List(ctx, nil, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *submissionService) getSubmission(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// canGrade needs Assignment.Course preloaded, which GetByID does.
func (s *submissionService) canGrade(actor Actor, submission *models.Submission) bool {
	if actor.IsAdmin() {
		return true
	}
	if submission.Assignment == nil || submission.Assignment.Course == nil {
		return false
	}
	return actor.IsTeacher() && submission.Assignment.Course.IsOwnedBy(actor.ID)
}

func (s *submissionService) fileKey(submission *models.Submission) string {
	if submission.FileKey != nil && *submission.FileKey != "" {
		return *submission.FileKey
	}
	if submission.FileURL != nil {
		return s.files.KeyFromURL(*submission.FileURL)
	}
	return ""
}

func (s *submissionService) removeFile(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove submission file", "key", key, "error", err)
	}
}
