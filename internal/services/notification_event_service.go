package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

// NotificationEventService publishes domain events for the notification pipeline
// and drops the matching entries into the recipients' inbox. Both happen after
// the business write committed, so failures are logged and never undo the operation.
type NotificationEventService interface {
	// Enrollment notifications
	NotifyEnrollmentCreated(ctx context.Context, enrollment *models.Enrollment, course *models.Course, kind models.AccessKind)
	NotifyCourseInvitation(ctx context.Context, course *models.Course, student *models.User, invitedBy uint)

	// Coursework notifications
	NotifySubmissionGraded(ctx context.Context, submission *models.Submission, graderID uint)
	NotifyGradesPublished(ctx context.Context, grades []*models.Grade, publishedBy uint)
	NotifyAssignmentsDueSoon(ctx context.Context, within time.Duration) (int, error)

	// Commerce and contact notifications
	NotifyPaymentCompleted(ctx context.Context, transaction *models.Transaction, course *models.Course)
	NotifyContactReceived(ctx context.Context, contact *models.Contact)
}

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	inbox          NotificationService
	logger         *slog.Logger
	now            func() time.Time
}

func NewNotificationEventService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	inbox NotificationService,
	logger *slog.Logger,
) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		inbox:          inbox,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *notificationEventService) publish(ctx context.Context, event *events.NotificationEvent) {
	if err := s.eventPublisher.PublishNotificationEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish notification event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

func (s *notificationEventService) deliver(ctx context.Context, userIDs []uint, notification *NotificationRequest) {
	if err := s.inbox.SendBulk(ctx, userIDs, notification); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store inbox notification",
			"type", notification.Type,
			"error", err)
	}
}

// ===== ENROLLMENT NOTIFICATIONS =====

func (s *notificationEventService) NotifyEnrollmentCreated(ctx context.Context, enrollment *models.Enrollment, course *models.Course, kind models.AccessKind) {
	s.logger.Info("Publishing enrollment created event",
		"enrollment_id", enrollment.ID,
		"course_id", course.ID)

	s.publish(ctx, events.NewEnrollmentCreatedEvent(events.EnrollmentCreatedEvent{
		EnrollmentID: enrollment.ID,
		CourseID:     course.ID,
		CourseTitle:  course.Title,
		StudentID:    enrollment.UserID,
		InstructorID: course.InstructorID,
		AccessKind:   string(kind),
		EnrolledAt:   enrollment.EnrolledAt,
	}))

	s.deliver(ctx, []uint{course.InstructorID}, &NotificationRequest{
		Type:    models.NotificationNewEnrollment,
		Title:   "Nueva inscripción",
		Message: fmt.Sprintf("Nueva inscripción en el curso %s", course.Title),
		Data: map[string]interface{}{
			"curso":  course.ID,
			"alumno": enrollment.UserID,
		},
	})
}

func (s *notificationEventService) NotifyCourseInvitation(ctx context.Context, course *models.Course, student *models.User, invitedBy uint) {
	s.logger.Info("Publishing course invitation event",
		"course_id", course.ID,
		"student_id", student.ID)

	s.publish(ctx, events.NewCourseInvitationEvent(events.CourseInvitationEvent{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		StudentID:   student.ID,
		Email:       student.Email,
		InvitedBy:   invitedBy,
	}))
}

// ===== COURSEWORK NOTIFICATIONS =====

func (s *notificationEventService) NotifySubmissionGraded(ctx context.Context, submission *models.Submission, graderID uint) {
	s.logger.Info("Publishing submission graded event", "submission_id", submission.ID)

	var title string
	if submission.Assignment != nil {
		title = submission.Assignment.Title
	}
	var grade float64
	if submission.Grade != nil {
		grade = *submission.Grade
	}

	s.publish(ctx, events.NewSubmissionGradedEvent(events.SubmissionGradedEvent{
		SubmissionID:    submission.ID,
		AssignmentID:    submission.AssignmentID,
		AssignmentTitle: title,
		StudentID:       submission.StudentID,
		Grade:           grade,
		GraderID:        graderID,
		GradedAt:        s.now(),
	}))

	s.deliver(ctx, []uint{submission.StudentID}, &NotificationRequest{
		Type:    models.NotificationSubmissionGrade,
		Title:   "Entrega calificada",
		Message: fmt.Sprintf("Tu entrega de %s fue calificada con %.2f", title, grade),
		Data: map[string]interface{}{
			"entrega": submission.ID,
			"tarea":   submission.AssignmentID,
			"nota":    grade,
		},
	})
}

func (s *notificationEventService) NotifyGradesPublished(ctx context.Context, grades []*models.Grade, publishedBy uint) {
	if len(grades) == 0 {
		return
	}
	s.logger.Info("Publishing grades published event", "count", len(grades))

	ids := make([]uint, 0, len(grades))
	seen := make(map[uint]bool, len(grades))
	students := make([]uint, 0, len(grades))
	for _, g := range grades {
		ids = append(ids, g.ID)
		if !seen[g.StudentID] {
			seen[g.StudentID] = true
			students = append(students, g.StudentID)
		}
	}

	s.publish(ctx, events.NewGradesPublishedEvent(events.GradesPublishedEvent{
		GradeIDs:    ids,
		StudentIDs:  students,
		PublishedBy: publishedBy,
	}))
}

// NotifyAssignmentsDueSoon publishes one reminder per active assignment due
// within the window, addressed to the enrolled students who have not submitted.
func (s *notificationEventService) NotifyAssignmentsDueSoon(ctx context.Context, within time.Duration) (int, error) {
	now := s.now()
	assignments, err := s.repo.Assignment().DueBetween(ctx, nil, now, now.Add(within))
	if err != nil {
		return 0, fmt.Errorf("failed to list due assignments: %w", err)
	}

	sent := 0
	for _, assignment := range assignments {
		studentIDs, err := s.getStudentsWithoutSubmission(ctx, assignment)
		if err != nil {
			return sent, err
		}
		if len(studentIDs) == 0 {
			continue
		}

		s.publish(ctx, events.NewAssignmentDueSoonEvent(events.AssignmentDueSoonEvent{
			AssignmentID:    assignment.ID,
			AssignmentTitle: assignment.Title,
			CourseID:        assignment.CourseID,
			DueAt:           assignment.DueAt,
			StudentIDs:      studentIDs,
		}))
		s.deliver(ctx, studentIDs, &NotificationRequest{
			Type:    models.NotificationAssignmentDue,
			Title:   "Tarea por vencer",
			Message: fmt.Sprintf("La tarea %s vence el %s", assignment.Title, assignment.DueAt.Format("02/01/2006 15:04")),
			Data: map[string]interface{}{
				"tarea": assignment.ID,
				"curso": assignment.CourseID,
			},
		})
		sent++
	}

	s.logger.Info("Due soon reminders published", "assignments", sent)
	return sent, nil
}

// ===== COMMERCE AND CONTACT NOTIFICATIONS =====

func (s *notificationEventService) NotifyPaymentCompleted(ctx context.Context, transaction *models.Transaction, course *models.Course) {
	s.logger.Info("Publishing payment completed event",
		"transaction", transaction.Number,
		"course_id", course.ID)

	s.publish(ctx, events.NewPaymentCompletedEvent(events.PaymentCompletedEvent{
		TransactionNumber: transaction.Number,
		CourseID:          course.ID,
		CourseTitle:       course.Title,
		StudentID:         transaction.UserID,
		InstructorID:      course.InstructorID,
		Amount:            transaction.Amount,
		Method:            string(transaction.Method),
	}))

	s.deliver(ctx, []uint{transaction.UserID}, &NotificationRequest{
		Type:    models.NotificationPaymentDone,
		Title:   "Pago completado",
		Message: fmt.Sprintf("Tu pago del curso %s fue procesado", course.Title),
		Data: map[string]interface{}{
			"curso":       course.ID,
			"transaccion": transaction.Number,
		},
	})
}

func (s *notificationEventService) NotifyContactReceived(ctx context.Context, contact *models.Contact) {
	var subject string
	if contact.Subject != nil {
		subject = *contact.Subject
	}
	s.publish(ctx, events.NewContactReceivedEvent(events.ContactReceivedEvent{
		ContactID: contact.ID,
		Name:      contact.Name,
		Email:     contact.Email,
		Subject:   subject,
	}))
}

// ===== HELPER METHODS =====

func (s *notificationEventService) getStudentsWithoutSubmission(ctx context.Context, assignment *models.Assignment) ([]uint, error) {
	enrolled, err := s.repo.Enrollment().StudentIDsByCourse(ctx, nil, assignment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrolled students: %w", err)
	}

	assignmentID := assignment.ID
	submissions, err := s.repo.Submission().List(ctx, nil, repositories.SubmissionScope{AssignmentID: &assignmentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	submitted := make(map[uint]bool, len(submissions))
	for _, sub := range submissions {
		submitted[sub.StudentID] = true
	}

	pending := make([]uint, 0, len(enrolled))
	for _, id := range enrolled {
		if !submitted[id] {
			pending = append(pending, id)
		}
	}
	return pending, nil
}
