package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every table-level repository.
//
// All repository methods accept an optional tx. A nil tx runs the query on the
// shared connection pool; a non-nil tx binds it to an open transaction.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	CourseStudent() CourseStudentRepository
	Enrollment() EnrollmentRepository
	Lesson() LessonRepository
	Assignment() AssignmentRepository
	Submission() SubmissionRepository
	Grade() GradeRepository
	Message() MessageRepository
	Attendance() AttendanceRepository
	Payment() PaymentRepository
	Contact() ContactRepository
	Resource() ResourceRepository
	Multimedia() MultimediaRepository
	Notification() NotificationRepository

	// WithTransaction runs fn inside one database transaction.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
