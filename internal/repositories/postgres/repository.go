package postgres

import (
	"context"

	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db            *gorm.DB
	user          repositories.UserRepository
	course        repositories.CourseRepository
	courseStudent repositories.CourseStudentRepository
	enrollment    repositories.EnrollmentRepository
	lesson        repositories.LessonRepository
	assignment    repositories.AssignmentRepository
	submission    repositories.SubmissionRepository
	grade         repositories.GradeRepository
	message       repositories.MessageRepository
	attendance    repositories.AttendanceRepository
	payment       repositories.PaymentRepository
	contact       repositories.ContactRepository
	resource      repositories.ResourceRepository
	multimedia    repositories.MultimediaRepository
	notification  repositories.NotificationRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:            db,
		user:          NewUserPostgreSQL(db),
		course:        NewCoursePostgreSQL(db),
		courseStudent: NewCourseStudentPostgreSQL(db),
		enrollment:    NewEnrollmentPostgreSQL(db),
		lesson:        NewLessonPostgreSQL(db),
		assignment:    NewAssignmentPostgreSQL(db),
		submission:    NewSubmissionPostgreSQL(db),
		grade:         NewGradePostgreSQL(db),
		message:       NewMessagePostgreSQL(db),
		attendance:    NewAttendancePostgreSQL(db),
		payment:       NewPaymentPostgreSQL(db),
		contact:       NewContactPostgreSQL(db),
		resource:      NewResourcePostgreSQL(db),
		multimedia:    NewMultimediaPostgreSQL(db),
		notification:  NewNotificationPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository                   { return r.user }
func (r *Repository) Course() repositories.CourseRepository               { return r.course }
func (r *Repository) CourseStudent() repositories.CourseStudentRepository { return r.courseStudent }
func (r *Repository) Enrollment() repositories.EnrollmentRepository       { return r.enrollment }
func (r *Repository) Lesson() repositories.LessonRepository               { return r.lesson }
func (r *Repository) Assignment() repositories.AssignmentRepository       { return r.assignment }
func (r *Repository) Submission() repositories.SubmissionRepository       { return r.submission }
func (r *Repository) Grade() repositories.GradeRepository                 { return r.grade }
func (r *Repository) Message() repositories.MessageRepository             { return r.message }
func (r *Repository) Attendance() repositories.AttendanceRepository       { return r.attendance }
func (r *Repository) Payment() repositories.PaymentRepository             { return r.payment }
func (r *Repository) Contact() repositories.ContactRepository             { return r.contact }
func (r *Repository) Resource() repositories.ResourceRepository           { return r.resource }
func (r *Repository) Multimedia() repositories.MultimediaRepository       { return r.multimedia }
func (r *Repository) Notification() repositories.NotificationRepository   { return r.notification }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
