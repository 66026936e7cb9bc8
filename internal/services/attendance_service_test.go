package services

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceService_OnePerDay(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, course.ID, 0)

	yesterday := time.Now().Add(-24 * time.Hour)
	req := &RecordAttendanceRequest{
		StudentID: student.ID,
		CourseID:  course.ID,
		Date:      yesterday,
		Status:    models.AttendancePresent,
	}

	first, err := env.services.Attendance().Record(env.ctx, actorOf(teacher), req)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, first.RecorderID)

	_, err = env.services.Attendance().Record(env.ctx, actorOf(teacher), req)
	assert.ErrorIs(t, err, ErrAttendanceExists)
	assert.True(t, IsConflict(err))
}

func TestAttendanceService_RecordRules(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)

	req := &RecordAttendanceRequest{
		StudentID: student.ID,
		CourseID:  course.ID,
		Date:      time.Now().Add(-time.Hour),
		Status:    models.AttendanceAbsent,
	}

	_, err := env.services.Attendance().Record(env.ctx, actorOf(other), req)
	assert.True(t, IsForbidden(err))

	_, err = env.services.Attendance().Record(env.ctx, actorOf(teacher), req)
	assert.True(t, IsValidation(err), "student is not enrolled")

	env.fx.Enrollment(student.ID, course.ID, 0)
	future := *req
	future.Date = time.Now().Add(72 * time.Hour)
	_, err = env.services.Attendance().Record(env.ctx, actorOf(teacher), &future)
	assert.True(t, IsValidation(err), "future dates are rejected")
}

func TestAttendanceService_StatisticsAndScope(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	classmate := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, course.ID, 0)
	env.fx.Enrollment(classmate.ID, course.ID, 0)

	marks := []struct {
		studentID uint
		daysAgo   int
		status    models.AttendanceStatus
	}{
		{student.ID, 1, models.AttendancePresent},
		{student.ID, 2, models.AttendanceLate},
		{student.ID, 3, models.AttendanceAbsent},
		{classmate.ID, 1, models.AttendancePresent},
	}
	for _, m := range marks {
		_, err := env.services.Attendance().Record(env.ctx, actorOf(teacher), &RecordAttendanceRequest{
			StudentID: m.studentID,
			CourseID:  course.ID,
			Date:      time.Now().AddDate(0, 0, -m.daysAgo),
			Status:    m.status,
		})
		require.NoError(t, err)
	}

	stats, err := env.services.Attendance().CourseStatistics(env.ctx, actorOf(teacher), course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Present)
	assert.Equal(t, int64(1), stats.Late)
	assert.Equal(t, int64(1), stats.Absent)
	assert.InDelta(t, 75.0, stats.Percentage, 0.01)

	page, err := env.services.Attendance().Index(env.ctx, actorOf(student), repositories.AttendanceFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	for _, a := range page.Data {
		assert.Equal(t, student.ID, a.StudentID)
	}

	_, err = env.services.Attendance().Show(env.ctx, actorOf(classmate), page.Data[0].ID)
	assert.True(t, IsForbidden(err))
}
