package services

import (
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLessonRequest(courseID uint, order int) *CreateLessonRequest {
	return &CreateLessonRequest{
		CourseID:    courseID,
		Title:       " Variables y tipos ",
		Description: "Tipos básicos de Go",
		Content:     "var x int",
		Duration:    25,
		Order:       order,
		Status:      models.LessonActive,
	}
}

func TestLessonService_CreateRequiresInstructor(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(owner.ID)

	_, err := env.services.Lesson().Create(env.ctx, actorOf(other), newLessonRequest(course.ID, 1))
	assert.True(t, IsForbidden(err))

	_, err = env.services.Lesson().Create(env.ctx, actorOf(owner), newLessonRequest(9999, 1))
	assert.True(t, IsNotFound(err))

	_, err = env.services.Course().Get(env.ctx, course.ID)
	require.NoError(t, err)
	require.Contains(t, env.cache.Keys(), cache.CourseDetailKey(course.ID))

	lesson, err := env.services.Lesson().Create(env.ctx, actorOf(owner), newLessonRequest(course.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, "Variables y tipos", lesson.Title)
	assert.NotContains(t, env.cache.Keys(), cache.CourseDetailKey(course.ID))
}

func TestLessonService_ListsAreOrdered(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	env.fx.Lesson(course.ID, 3, models.LessonActive)
	env.fx.Lesson(course.ID, 1, models.LessonActive)
	env.fx.Lesson(course.ID, 2, models.LessonDraft)

	public, err := env.services.Lesson().ListByCourse(env.ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, 1, public[0].Order)
	assert.Equal(t, 3, public[1].Order)

	all, err := env.services.Lesson().ListForInstructor(env.ctx, actorOf(teacher), course.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].Order, all[1].Order, all[2].Order})

	_, err = env.services.Lesson().ListByCourse(env.ctx, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestLessonService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	admin := env.fx.User(models.RoleAdmin)
	course := env.fx.Course(owner.ID)
	lesson := env.fx.Lesson(course.ID, 1, models.LessonDraft)

	title := "Punteros"
	_, err := env.services.Lesson().Update(env.ctx, actorOf(other), lesson.ID, &UpdateLessonRequest{Title: &title})
	assert.True(t, IsForbidden(err))

	updated, err := env.services.Lesson().Update(env.ctx, actorOf(owner), lesson.ID, &UpdateLessonRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	require.NoError(t, env.services.Lesson().Delete(env.ctx, actorOf(admin), lesson.ID))
	_, err = env.services.Lesson().Get(env.ctx, lesson.ID)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}
