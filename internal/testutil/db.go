// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/pkg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, pkg.Migrate(db))
	return db
}

// Fixtures inserts rows with sensible defaults.
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
	n  int
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) User(role models.UserRole) *models.User {
	f.t.Helper()
	f.n++
	user := &models.User{
		Name:     fmt.Sprintf("User %d", f.n),
		Email:    fmt.Sprintf("user%d@example.com", f.n),
		Password: "$2a$10$placeholderplaceholderplaceholderplaceholderpl",
		Role:     role,
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

// Course creates an active beginner course; mutate customizes it before insert.
func (f *Fixtures) Course(instructorID uint, mutate ...func(*models.Course)) *models.Course {
	f.t.Helper()
	f.n++
	course := &models.Course{
		Title:        fmt.Sprintf("Course %d", f.n),
		Description:  "A course",
		Duration:     60,
		Level:        models.LevelBeginner,
		Price:        100,
		Status:       models.CourseActive,
		AccessType:   models.AccessFree,
		InstructorID: instructorID,
	}
	for _, fn := range mutate {
		fn(course)
	}
	require.NoError(f.t, f.db.Create(course).Error)
	return course
}

func (f *Fixtures) Enrollment(userID, courseID uint, progress int) *models.Enrollment {
	f.t.Helper()
	enrollment := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     models.EnrollmentActive,
		Progress:   progress,
		EnrolledAt: time.Now(),
	}
	if progress >= 100 {
		enrollment.Status = models.EnrollmentCompleted
	}
	require.NoError(f.t, f.db.Create(enrollment).Error)
	return enrollment
}

func (f *Fixtures) Lesson(courseID uint, order int, status models.LessonStatus) *models.Lesson {
	f.t.Helper()
	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    fmt.Sprintf("Lesson %d", order),
		Content:  "content",
		Duration: 30,
		Order:    order,
		Status:   status,
	}
	require.NoError(f.t, f.db.Create(lesson).Error)
	return lesson
}

func (f *Fixtures) Assignment(courseID uint, dueAt time.Time) *models.Assignment {
	f.t.Helper()
	f.n++
	assignment := &models.Assignment{
		CourseID:   courseID,
		Title:      fmt.Sprintf("Assignment %d", f.n),
		AssignedAt: time.Now(),
		DueAt:      dueAt,
		Type:       models.AssignmentIndividual,
		MaxPoints:  100,
		Status:     models.AssignmentActive,
	}
	require.NoError(f.t, f.db.Create(assignment).Error)
	return assignment
}

func (f *Fixtures) Submission(assignmentID, studentID uint, grade *float64) *models.Submission {
	f.t.Helper()
	submission := &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionDelivered,
		Grade:        grade,
	}
	if grade != nil {
		submission.Status = models.SubmissionGraded
	}
	require.NoError(f.t, f.db.Create(submission).Error)
	return submission
}

func (f *Fixtures) Grade(studentID, courseID, evaluatorID uint, score float64, status models.GradeStatus) *models.Grade {
	f.t.Helper()
	grade := &models.Grade{
		StudentID:      studentID,
		CourseID:       courseID,
		EvaluationType: models.EvaluationAssignment,
		Score:          score,
		Weight:         1,
		EvaluatedAt:    time.Now(),
		EvaluatorID:    evaluatorID,
		Status:         status,
	}
	require.NoError(f.t, f.db.Create(grade).Error)
	return grade
}

func Float(v float64) *float64 { return &v }
