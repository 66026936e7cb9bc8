package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"gorm.io/gorm"
)

// SubmissionScope restricts submission queries. Zero value means all rows.
type SubmissionScope struct {
	AssignmentID *uint
	CourseID     *uint
	StudentID    *uint
	CourseIDs    []uint
}

type SubmissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) // nil when missing
	Exists(ctx context.Context, tx *gorm.DB, assignmentID, studentID uint) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, scope SubmissionScope) ([]*models.Submission, error)
	HasSubmissions(ctx context.Context, tx *gorm.DB, assignmentID uint) (bool, error)

	// Aggregates
	Count(ctx context.Context, tx *gorm.DB, scope SubmissionScope) (int64, error)
	CountSince(ctx context.Context, tx *gorm.DB, scope SubmissionScope, since time.Time) (int64, error)
	AverageGrade(ctx context.Context, tx *gorm.DB, scope SubmissionScope) (float64, error)
	GradedAverageByCourse(ctx context.Context, tx *gorm.DB, studentID uint) ([]SubmissionAverage, error)
}
