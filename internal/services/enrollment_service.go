package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/notify"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrollmentService manages enrollments and the ways a student gains access to a course.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor Actor, req *CreateEnrollmentRequest) (*models.Enrollment, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Enrollment, error)
	Update(ctx context.Context, actor Actor, id uint, req *UpdateEnrollmentRequest) (*models.Enrollment, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	ListMine(ctx context.Context, actor Actor) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Enrollment, error)
	UpdateProgress(ctx context.Context, actor Actor, id uint, req *UpdateProgressRequest) (*models.Enrollment, error)

	// Course access side-channels
	InviteByEmail(ctx context.Context, actor Actor, courseID uint, req *InviteStudentRequest) (*models.Enrollment, error)
	GenerateInvitationCode(ctx context.Context, actor Actor, courseID uint) (string, error)
	AddStudentManually(ctx context.Context, actor Actor, courseID uint, req *InviteStudentRequest) (*models.Enrollment, error)
	EnrollWithCode(ctx context.Context, actor Actor, courseID uint, req *EnrollWithCodeRequest) (*models.Enrollment, error)
}

type enrollmentService struct {
	repo        repositories.Repository
	courseCache repositories.CourseCacheInvalidator
	notifier    NotificationEventService
	mailer      notify.Mailer
	logger      *slog.Logger
	validator   *validator.Validator
	audit       *ServiceLogger
	now         func() time.Time
}

func NewEnrollmentService(
	repo repositories.Repository,
	courseCache repositories.CourseCacheInvalidator,
	notifier NotificationEventService,
	mailer notify.Mailer,
	logger *slog.Logger,
	validator *validator.Validator,
) EnrollmentService {
	return &enrollmentService{
		repo:        repo,
		courseCache: courseCache,
		notifier:    notifier,
		mailer:      mailer,
		logger:      logger,
		validator:   validator,
		audit:       NewServiceLogger(logger, "enrollment"),
		now:         time.Now,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, req *CreateEnrollmentRequest) (*models.Enrollment, error) {
	op := s.audit.WithOperation(ctx, "enroll", actor.ID)
	enrollment, err := s.enroll(ctx, actor, req)
	if err != nil {
		op.LogResult(0, "enrollment", err)
		return nil, err
	}
	op.LogResult(enrollment.ID, "enrollment", nil)
	op.LogAudit(AuditEventCreate, enrollment.ID, "enrollment", map[string]interface{}{
		"curso_id": enrollment.CourseID,
		"user_id":  enrollment.UserID,
	})
	return enrollment, nil
}

func (s *enrollmentService) enroll(ctx context.Context, actor Actor, req *CreateEnrollmentRequest) (*models.Enrollment, error) {
	if actor.IsStudent() {
		req.UserID = actor.ID
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := loadCourse(ctx, s.repo, req.CourseID)
	if err != nil {
		return nil, err
	}
	if actor.IsTeacher() && !course.IsOwnedBy(actor.ID) {
		return nil, NewPermissionError(actor.ID, course.ID, "course", "enroll", "not the course instructor")
	}
	if actor.IsStudent() {
		if err := s.checkSelfEnrollment(ctx, course, actor.ID); err != nil {
			return nil, err
		}
	}

	enrollment := &models.Enrollment{
		UserID:     req.UserID,
		CourseID:   req.CourseID,
		Status:     req.Status,
		EnrolledAt: s.now(),
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentActive
	}
	if req.EnrolledAt != nil {
		enrollment.EnrolledAt = *req.EnrolledAt
	}
	if req.Progress != nil {
		enrollment.Progress = *req.Progress
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.Enrollment().Exists(ctx, tx, enrollment.UserID, enrollment.CourseID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if exists {
			return ErrEnrollmentExists
		}
		if err := s.repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
			return translateWriteError(err, ErrEnrollmentExists)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterEnrollment(ctx, enrollment, course, models.AccessByManual)
	return s.getEnrollment(ctx, enrollment.ID)
}

func (s *enrollmentService) Get(ctx context.Context, actor Actor, id uint) (*models.Enrollment, error) {
	enrollment, err := s.getEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID == actor.ID || actor.IsAdmin() {
		return enrollment, nil
	}
	if actor.IsTeacher() && enrollment.Course != nil && enrollment.Course.IsOwnedBy(actor.ID) {
		return enrollment, nil
	}
	return nil, NewPermissionError(actor.ID, id, "enrollment", "read", "not the enrollment owner")
}

func (s *enrollmentService) Update(ctx context.Context, actor Actor, id uint, req *UpdateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	enrollment, err := s.getOwned(ctx, actor, id, "update")
	if err != nil {
		return nil, err
	}
	fields := req.Fields()
	if progress, ok := fields["progress"].(int); ok && progress >= 100 && req.Status == nil {
		fields["status"] = models.EnrollmentCompleted
	}
	if err := s.repo.Enrollment().Update(ctx, nil, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}
	s.courseCache.InvalidateCourse(ctx, enrollment.CourseID)
	s.courseCache.InvalidateLearner(ctx, enrollment.UserID)
	return s.getEnrollment(ctx, id)
}

func (s *enrollmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	enrollment, err := s.getOwned(ctx, actor, id, "delete")
	if err != nil {
		return err
	}
	if err := s.repo.Enrollment().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	s.courseCache.InvalidateCourse(ctx, enrollment.CourseID)
	s.courseCache.InvalidateLearner(ctx, enrollment.UserID)
	s.audit.LogAuditEvent(ctx, AuditEventDelete, actor.ID, id, "enrollment", "delete", nil)
	return nil
}

func (s *enrollmentService) ListMine(ctx context.Context, actor Actor) ([]*models.Enrollment, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, nil, actor.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]*models.Enrollment, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "list_students"); err != nil {
		return nil, err
	}
	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateProgress is the teacher-side progress update; reaching 100 completes the enrollment.
func (s *enrollmentService) UpdateProgress(ctx context.Context, actor Actor, id uint, req *UpdateProgressRequest) (*models.Enrollment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	enrollment, err := s.getEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := authorizeCourse(ctx, s.repo, actor, enrollment.CourseID, "update_progress"); err != nil {
		return nil, err
	}

	wasCompleted := enrollment.IsCompleted()
	fields := map[string]interface{}{"progress": *req.Progress}
	if *req.Progress >= 100 {
		fields["status"] = models.EnrollmentCompleted
	} else if enrollment.Status == models.EnrollmentActive && *req.Progress > 0 {
		fields["status"] = models.EnrollmentInProgress
	}
	if err := s.repo.Enrollment().Update(ctx, nil, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	if !wasCompleted && *req.Progress >= 100 {
		s.audit.LogAuditEvent(ctx, AuditEventUpdate, actor.ID, id, "enrollment", "complete", nil)
	}
	s.courseCache.InvalidateCourse(ctx, enrollment.CourseID)
	s.courseCache.InvalidateLearner(ctx, enrollment.UserID)
	return s.getEnrollment(ctx, id)
}

// ===== COURSE ACCESS SIDE-CHANNELS =====

func (s *enrollmentService) InviteByEmail(ctx context.Context, actor Actor, courseID uint, req *InviteStudentRequest) (*models.Enrollment, error) {
	course, student, err := s.prepareGrant(ctx, actor, courseID, req, "invite")
	if err != nil {
		return nil, err
	}

	enrollment, err := s.grant(ctx, course, student.ID, models.AccessByInvitation)
	if err != nil {
		return nil, err
	}

	instructorName := ""
	if instructor, err := s.repo.User().GetByID(ctx, nil, course.InstructorID); err == nil && instructor != nil {
		instructorName = instructor.Name
	}
	msg := notify.InvitationMessage(student.Name, student.Email, course.Title, instructorName)
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send invitation email",
			"course_id", course.ID,
			"student_id", student.ID,
			"error", err)
	}
	s.notifier.NotifyCourseInvitation(ctx, course, student, actor.ID)
	return enrollment, nil
}

func (s *enrollmentService) GenerateInvitationCode(ctx context.Context, actor Actor, courseID uint) (string, error) {
	if _, err := authorizeCourse(ctx, s.repo, actor, courseID, "generate_code"); err != nil {
		return "", err
	}

	code := NewInvitationCode()
	found, err := s.repo.Course().Update(ctx, nil, courseID, map[string]interface{}{"invitation_code": code})
	if err != nil {
		return "", fmt.Errorf("failed to store invitation code: %w", err)
	}
	if !found {
		return "", ErrCourseNotFound
	}
	s.audit.LogAuditEvent(ctx, AuditEventUpdate, actor.ID, courseID, "course", "generate_invitation_code", nil)
	return code, nil
}

func (s *enrollmentService) AddStudentManually(ctx context.Context, actor Actor, courseID uint, req *InviteStudentRequest) (*models.Enrollment, error) {
	course, student, err := s.prepareGrant(ctx, actor, courseID, req, "add_student")
	if err != nil {
		return nil, err
	}
	return s.grant(ctx, course, student.ID, models.AccessByManual)
}

func (s *enrollmentService) EnrollWithCode(ctx context.Context, actor Actor, courseID uint, req *EnrollWithCodeRequest) (*models.Enrollment, error) {
	req.Code = strings.TrimSpace(req.Code)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, courseID)
	if err != nil {
		return nil, err
	}
	if course.InvitationCode == nil || *course.InvitationCode == "" || *course.InvitationCode != req.Code {
		return nil, ErrInvalidInvitationCode
	}

	enrollment, err := s.grant(ctx, course, actor.ID, models.AccessByCode)
	if errors.Is(err, ErrAlreadyHasAccess) {
		return nil, ErrEnrollmentExists
	}
	return enrollment, err
}

// NewInvitationCode returns "INV" followed by 13 upper-case hex characters.
func NewInvitationCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "INV" + strings.ToUpper(hex[:13])
}

// ===== HELPER METHODS =====

func (s *enrollmentService) prepareGrant(ctx context.Context, actor Actor, courseID uint, req *InviteStudentRequest, action string) (*models.Course, *models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, nil, err
	}
	course, err := authorizeCourse(ctx, s.repo, actor, courseID, action)
	if err != nil {
		return nil, nil, err
	}
	student, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if student == nil {
		return nil, nil, ErrUserNotFound
	}
	if !student.IsStudent() {
		return nil, nil, ErrNotAStudent
	}
	return course, student, nil
}

// grant records pivot access and the enrollment in one transaction.
func (s *enrollmentService) grant(ctx context.Context, course *models.Course, userID uint, kind models.AccessKind) (*models.Enrollment, error) {
	var enrollment *models.Enrollment
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		hasAccess, err := s.repo.CourseStudent().Exists(ctx, tx, course.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to check access: %w", err)
		}
		enrolled, err := s.repo.Enrollment().Exists(ctx, tx, userID, course.ID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if hasAccess || enrolled {
			return ErrAlreadyHasAccess
		}

		access := &models.CourseStudent{
			CourseID:   course.ID,
			UserID:     userID,
			AccessKind: kind,
			AccessedAt: s.now(),
		}
		if err := s.repo.CourseStudent().Grant(ctx, tx, access); err != nil {
			return translateWriteError(err, ErrAlreadyHasAccess)
		}

		enrollment, err = grantEnrollment(ctx, s.repo, tx, course.ID, userID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterEnrollment(ctx, enrollment, course, kind)
	return enrollment, nil
}

func (s *enrollmentService) afterEnrollment(ctx context.Context, enrollment *models.Enrollment, course *models.Course, kind models.AccessKind) {
	s.courseCache.InvalidateCourse(ctx, course.ID)
	s.courseCache.InvalidateLearner(ctx, enrollment.UserID)
	s.notifier.NotifyEnrollmentCreated(ctx, enrollment, course, kind)
	s.logger.Info("Enrollment created",
		"enrollment_id", enrollment.ID,
		"course_id", course.ID,
		"user_id", enrollment.UserID,
		"access", kind)
}

// checkSelfEnrollment keeps students off drafts and off courses that need payment or a code.
func (s *enrollmentService) checkSelfEnrollment(ctx context.Context, course *models.Course, studentID uint) error {
	if course.Status != models.CourseActive {
		return NewBusinessRuleError("course_not_active", "El curso no está disponible para inscripción", nil)
	}
	switch course.AccessType {
	case models.AccessCode:
		return NewBusinessRuleError("course_requires_code", "Este curso requiere un código de invitación", nil)
	case models.AccessPaid:
		paid, err := s.repo.Payment().HasCompleted(ctx, nil, studentID, course.ID)
		if err != nil {
			return fmt.Errorf("failed to check payment: %w", err)
		}
		if !paid {
			return NewBusinessRuleError("course_requires_payment", "Este curso requiere pago", nil)
		}
	}
	return nil
}

func (s *enrollmentService) getEnrollment(ctx context.Context, id uint) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if enrollment == nil {
		return nil, ErrEnrollmentNotFound
	}
	return enrollment, nil
}

func (s *enrollmentService) getOwned(ctx context.Context, actor Actor, id uint, action string) (*models.Enrollment, error) {
	enrollment, err := s.getEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != actor.ID && !actor.IsAdmin() {
		return nil, NewPermissionError(actor.ID, id, "enrollment", action, "not the enrollment owner")
	}
	return enrollment, nil
}

// grantEnrollment creates an active enrollment inside tx unless one exists.
func grantEnrollment(ctx context.Context, repo repositories.Repository, tx *gorm.DB, courseID, userID uint, now time.Time) (*models.Enrollment, error) {
	existing, err := repo.Enrollment().GetByUserAndCourse(ctx, tx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	enrollment := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     models.EnrollmentActive,
		EnrolledAt: now,
	}
	if err := repo.Enrollment().Create(ctx, tx, enrollment); err != nil {
		return nil, translateWriteError(err, ErrEnrollmentExists)
	}
	return enrollment, nil
}
