package services

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPending(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dueAt    time.Time
		days     int
		priority string
		state    string
	}{
		{"due in twelve hours", now.Add(12 * time.Hour), 0, PriorityHigh, DeliveryPending},
		{"due in two days", now.Add(50 * time.Hour), 2, PriorityMedium, DeliveryPending},
		{"due next week", now.Add(7 * 24 * time.Hour), 7, PriorityLow, DeliveryPending},
		{"overdue", now.Add(-48 * time.Hour), -2, PriorityHigh, DeliveryOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ClassifyPending(&models.Assignment{DueAt: tt.dueAt}, now)
			assert.Equal(t, tt.days, p.DaysLeft)
			assert.Equal(t, tt.priority, p.Priority)
			assert.Equal(t, tt.state, p.State)
		})
	}
}

func TestAssignmentService_DeleteWithSubmissions(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, course.ID, 0)
	assignment := env.fx.Assignment(course.ID, time.Now().Add(48*time.Hour))
	env.fx.Submission(assignment.ID, student.ID, nil)

	err := env.services.Assignment().Delete(env.ctx, actorOf(teacher), assignment.ID)
	require.Error(t, err)
	assert.True(t, IsBusinessRule(err))

	still, err := env.repo.Assignment().GetByID(env.ctx, nil, assignment.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestAssignmentService_DeleteWithoutSubmissions(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	assignment := env.fx.Assignment(course.ID, time.Now().Add(48*time.Hour))

	require.NoError(t, env.services.Assignment().Delete(env.ctx, actorOf(teacher), assignment.ID))

	_, err := env.services.Assignment().Get(env.ctx, actorOf(teacher), assignment.ID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestAssignmentService_CreateRejectsDueBeforeAssigned(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)

	now := time.Now()
	_, err := env.services.Assignment().Create(env.ctx, actorOf(teacher), &CreateAssignmentRequest{
		CourseID:    course.ID,
		Title:       "Ensayo",
		Description: "Escribir un ensayo",
		AssignedAt:  now,
		DueAt:       now.Add(-time.Hour),
		Type:        models.AssignmentIndividual,
		MaxPoints:   10,
		Status:      models.AssignmentActive,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAssignmentService_CreateOnForeignCourseForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(owner.ID)

	now := time.Now()
	_, err := env.services.Assignment().Create(env.ctx, actorOf(other), &CreateAssignmentRequest{
		CourseID:    course.ID,
		Title:       "Ensayo",
		Description: "Escribir un ensayo",
		AssignedAt:  now,
		DueAt:       now.Add(24 * time.Hour),
		Type:        models.AssignmentIndividual,
		MaxPoints:   10,
		Status:      models.AssignmentActive,
	})
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
}

func TestAssignmentService_PendingForStudent(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	other := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, course.ID, 10)

	open := env.fx.Assignment(course.ID, time.Now().Add(12*time.Hour))
	done := env.fx.Assignment(course.ID, time.Now().Add(72*time.Hour))
	env.fx.Submission(done.ID, student.ID, nil)
	env.fx.Assignment(other.ID, time.Now().Add(12*time.Hour))

	pending, err := env.services.Assignment().PendingForStudent(env.ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)
	assert.Equal(t, PriorityHigh, pending[0].Priority)
	assert.Equal(t, DeliveryPending, pending[0].State)
}

func TestAssignmentService_StudentView(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	outsider := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, course.ID, 0)
	assignment := env.fx.Assignment(course.ID, time.Now().Add(24*time.Hour))
	env.fx.Submission(assignment.ID, student.ID, testutil.Float(90))

	view, err := env.services.Assignment().StudentView(env.ctx, student.ID, assignment.ID)
	require.NoError(t, err)
	require.NotNil(t, view.MySubmission)
	assert.Equal(t, 90.0, *view.MySubmission.Grade)

	_, err = env.services.Assignment().StudentView(env.ctx, outsider.ID, assignment.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}
