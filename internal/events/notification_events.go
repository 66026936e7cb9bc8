package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Enrollment events
	EventEnrollmentCreated EventType = "enrollment.created"
	EventCourseInvitation  EventType = "course.invitation"

	// Coursework events
	EventSubmissionGraded  EventType = "submission.graded"
	EventGradesPublished   EventType = "grades.published"
	EventAssignmentDueSoon EventType = "assignment.due_soon"

	// Commerce and contact events
	EventPaymentCompleted EventType = "payment.completed"
	EventContactReceived  EventType = "contact.received"
)

const (
	eventSource  = "lms-service"
	eventVersion = "1.0"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type EnrollmentCreatedEvent struct {
	EnrollmentID uint      `json:"enrollment_id"`
	CourseID     uint      `json:"course_id"`
	CourseTitle  string    `json:"course_title"`
	StudentID    uint      `json:"student_id"`
	InstructorID uint      `json:"instructor_id"`
	AccessKind   string    `json:"access_kind"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

type CourseInvitationEvent struct {
	CourseID    uint   `json:"course_id"`
	CourseTitle string `json:"course_title"`
	StudentID   uint   `json:"student_id"`
	Email       string `json:"email"`
	InvitedBy   uint   `json:"invited_by"`
}

type SubmissionGradedEvent struct {
	SubmissionID    uint      `json:"submission_id"`
	AssignmentID    uint      `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	StudentID       uint      `json:"student_id"`
	Grade           float64   `json:"grade"`
	GraderID        uint      `json:"grader_id"`
	GradedAt        time.Time `json:"graded_at"`
}

type GradesPublishedEvent struct {
	GradeIDs    []uint `json:"grade_ids"`
	StudentIDs  []uint `json:"student_ids"`
	PublishedBy uint   `json:"published_by"`
}

type AssignmentDueSoonEvent struct {
	AssignmentID    uint      `json:"assignment_id"`
	AssignmentTitle string    `json:"assignment_title"`
	CourseID        uint      `json:"course_id"`
	DueAt           time.Time `json:"due_at"`
	StudentIDs      []uint    `json:"student_ids"`
}

type PaymentCompletedEvent struct {
	TransactionNumber string  `json:"transaction_number"`
	CourseID          uint    `json:"course_id"`
	CourseTitle       string  `json:"course_title"`
	StudentID         uint    `json:"student_id"`
	InstructorID      uint    `json:"instructor_id"`
	Amount            float64 `json:"amount"`
	Method            string  `json:"method"`
}

type ContactReceivedEvent struct {
	ContactID uint   `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
}

// NewEvent wraps a payload in the common envelope.
func NewEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewEnrollmentCreatedEvent(data EnrollmentCreatedEvent) *NotificationEvent {
	return NewEvent(EventEnrollmentCreated, data)
}

func NewCourseInvitationEvent(data CourseInvitationEvent) *NotificationEvent {
	return NewEvent(EventCourseInvitation, data)
}

func NewSubmissionGradedEvent(data SubmissionGradedEvent) *NotificationEvent {
	return NewEvent(EventSubmissionGraded, data)
}

func NewGradesPublishedEvent(data GradesPublishedEvent) *NotificationEvent {
	return NewEvent(EventGradesPublished, data)
}

func NewAssignmentDueSoonEvent(data AssignmentDueSoonEvent) *NotificationEvent {
	return NewEvent(EventAssignmentDueSoon, data)
}

func NewPaymentCompletedEvent(data PaymentCompletedEvent) *NotificationEvent {
	return NewEvent(EventPaymentCompleted, data)
}

func NewContactReceivedEvent(data ContactReceivedEvent) *NotificationEvent {
	return NewEvent(EventContactReceived, data)
}

// GenerateEventID returns a random UUID for an event envelope.
func GenerateEventID() string {
	return uuid.NewString()
}
