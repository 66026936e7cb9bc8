package services

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_DashboardIsCached(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, course.ID, 100)

	first, err := env.services.Analytics().Dashboard(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.Users.Total)
	assert.Equal(t, int64(1), first.Courses.Total)
	assert.Equal(t, int64(1), first.Enrollments.Completed)
	assert.InDelta(t, 100.0, first.Enrollments.CompletionRate, 0.01)
	assert.Contains(t, env.cache.Keys(), cache.AnalyticsDashboardKey())

	env.fx.User(models.RoleStudent)

	cached, err := env.services.Analytics().Dashboard(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.Users.Total, "served from cache")

	refreshed, err := env.services.Analytics().RefreshDashboard(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), refreshed.Users.Total)

	after, err := env.services.Analytics().Dashboard(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), after.Users.Total)
}

func TestAnalyticsService_CourseAnalyticsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Analytics().CourseAnalytics(env.ctx, 404)
	assert.True(t, IsNotFound(err))

	_, err = env.services.Analytics().UserAnalytics(env.ctx, 404)
	assert.True(t, IsNotFound(err))
}

func TestAnalyticsService_CourseAnalytics(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	for _, progress := range []int{10, 40, 60, 100} {
		student := env.fx.User(models.RoleStudent)
		env.fx.Enrollment(student.ID, course.ID, progress)
	}

	analytics, err := env.services.Analytics().CourseAnalytics(env.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, analytics.Course.ID)
	assert.Equal(t, int64(4), analytics.Course.Enrolled)
}

func TestAnalyticsService_ProgressDistribution(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	for _, progress := range []int{10, 30, 60, 90} {
		student := env.fx.User(models.RoleStudent)
		env.fx.Enrollment(student.ID, course.ID, progress)
	}

	analytics, err := env.services.Analytics().CourseAnalytics(env.ctx, course.ID)
	require.NoError(t, err)
	buckets := analytics.Progress.Distribution
	assert.Equal(t, int64(1), buckets.Initial)
	assert.Equal(t, int64(1), buckets.Basic)
	assert.Equal(t, int64(1), buckets.Intermediate)
	assert.Equal(t, int64(1), buckets.Advanced)
	assert.InDelta(t, 47.5, analytics.Progress.AverageProgress, 0.01)
	assert.Equal(t, int64(0), analytics.Students.Completed)
}

func TestAnalyticsService_CourseAnalyticsCachedUntilEnrollmentWrite(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	student := env.fx.User(models.RoleStudent)
	enrollment := env.fx.Enrollment(student.ID, course.ID, 20)
	key := cache.AnalyticsCourseKey(course.ID)

	first, err := env.services.Analytics().CourseAnalytics(env.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Course.Enrolled)
	assert.Contains(t, env.cache.Keys(), key)

	// rows written behind the service do not show until the entry is dropped
	env.fx.Enrollment(env.fx.User(models.RoleStudent).ID, course.ID, 0)
	cached, err := env.services.Analytics().CourseAnalytics(env.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Course.Enrolled)

	progress := 100
	_, err = env.services.Enrollment().UpdateProgress(env.ctx, actorOf(teacher), enrollment.ID, &UpdateProgressRequest{Progress: &progress})
	require.NoError(t, err)
	assert.NotContains(t, env.cache.Keys(), key)

	fresh, err := env.services.Analytics().CourseAnalytics(env.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Course.Enrolled)
	assert.Equal(t, int64(1), fresh.Course.Completed)
	assert.InDelta(t, 50.0, fresh.Course.CompletionRate, 0.01)

	newcomer := env.fx.User(models.RoleStudent)
	_, err = env.services.Enrollment().Enroll(env.ctx, actorOf(newcomer), &CreateEnrollmentRequest{CourseID: course.ID})
	require.NoError(t, err)
	assert.NotContains(t, env.cache.Keys(), key)

	fresh, err = env.services.Analytics().CourseAnalytics(env.ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.Course.Enrolled)
}

func TestAnalyticsService_UserAnalytics(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	done := env.fx.Course(teacher.ID)
	ongoing := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, done.ID, 100)
	enrollment := env.fx.Enrollment(student.ID, ongoing.ID, 50)
	assignment := env.fx.Assignment(ongoing.ID, time.Now().Add(24*time.Hour))
	grade := 80.0
	env.fx.Submission(assignment.ID, student.ID, &grade)

	analytics, err := env.services.Analytics().UserAnalytics(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, analytics.User.ID)
	assert.Equal(t, student.Email, analytics.User.Email)
	assert.Equal(t, []string{"student"}, analytics.User.Roles)
	assert.Equal(t, int64(2), analytics.Activity.EnrolledCourses)
	assert.Equal(t, int64(1), analytics.Activity.CompletedCourses)
	assert.Equal(t, int64(1), analytics.Activity.Submissions)
	assert.InDelta(t, 80.0, analytics.Activity.AverageGrade, 0.01)
	require.NotNil(t, analytics.Activity.LastActivity)
	assert.InDelta(t, 75.0, analytics.Progress.AverageProgress, 0.01)
	assert.Equal(t, int64(1), analytics.Progress.CompletedCourses)

	key := cache.AnalyticsUserKey(student.ID)
	assert.Contains(t, env.cache.Keys(), key)

	progress := 100
	_, err = env.services.Enrollment().UpdateProgress(env.ctx, actorOf(teacher), enrollment.ID, &UpdateProgressRequest{Progress: &progress})
	require.NoError(t, err)
	assert.NotContains(t, env.cache.Keys(), key)

	analytics, err = env.services.Analytics().UserAnalytics(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), analytics.Activity.CompletedCourses)
	assert.InDelta(t, 100.0, analytics.Progress.AverageProgress, 0.01)
}

func TestNotificationService_DueSoonReminders(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	done := env.fx.User(models.RoleStudent)
	late := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	env.fx.Enrollment(done.ID, course.ID, 0)
	env.fx.Enrollment(late.ID, course.ID, 0)

	soon := env.fx.Assignment(course.ID, time.Now().Add(2*time.Hour))
	env.fx.Submission(soon.ID, done.ID, nil)
	env.fx.Assignment(course.ID, time.Now().Add(72*time.Hour))

	sent, err := env.services.NotificationEvents().NotifyAssignmentsDueSoon(env.ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	reminders := env.publisher.EventsOfType(events.EventAssignmentDueSoon)
	require.Len(t, reminders, 1)
	payload := reminders[0].Data.(events.AssignmentDueSoonEvent)
	assert.Equal(t, soon.ID, payload.AssignmentID)
	assert.Equal(t, []uint{late.ID}, payload.StudentIDs)
}
