package services

import (
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseRequest() *CreateCourseRequest {
	return &CreateCourseRequest{
		Title:       "  Go para principiantes ",
		Description: "Aprende Go desde cero con ejemplos",
		Duration:    40,
		Level:       models.LevelBeginner,
		Price:       0,
		Status:      models.CourseActive,
		AccessType:  models.AccessFree,
	}
}

func TestCourseService_CreateAssignsInstructor(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)

	course, err := env.services.Course().Create(env.ctx, actorOf(teacher), newCourseRequest())
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, course.InstructorID)
	assert.Equal(t, "Go para principiantes", course.Title)

	_, err = env.services.Course().Create(env.ctx, actorOf(student), newCourseRequest())
	assert.True(t, IsForbidden(err))
}

func TestCourseService_PaidCourseNeedsPrice(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)

	req := newCourseRequest()
	req.AccessType = models.AccessPaid
	_, err := env.services.Course().Create(env.ctx, actorOf(teacher), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	course := env.fx.Course(teacher.ID)
	paid := models.AccessPaid
	zero := 0.0
	_, err = env.services.Course().Update(env.ctx, actorOf(teacher), course.ID, &UpdateCourseRequest{AccessType: &paid, Price: &zero})
	assert.True(t, IsValidation(err))
}

func TestCourseService_AdminAssignsTeacher(t *testing.T) {
	env := newTestEnv(t)
	admin := env.fx.User(models.RoleAdmin)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)

	req := newCourseRequest()
	req.InstructorID = &student.ID
	_, err := env.services.Course().Create(env.ctx, actorOf(admin), req)
	assert.True(t, IsValidation(err), "instructor must be a teacher")

	req = newCourseRequest()
	req.InstructorID = &teacher.ID
	course, err := env.services.Course().Create(env.ctx, actorOf(admin), req)
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, course.InstructorID)
}

func TestCourseService_UpdateOwnership(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(owner.ID)

	title := "Nuevo título"
	_, err := env.services.Course().Update(env.ctx, actorOf(other), course.ID, &UpdateCourseRequest{Title: &title})
	assert.True(t, IsForbidden(err))

	_, err = env.services.Course().Update(env.ctx, actorOf(owner), course.ID, &UpdateCourseRequest{InstructorID: &other.ID})
	assert.True(t, IsForbidden(err), "only admins reassign courses")

	updated, err := env.services.Course().Update(env.ctx, actorOf(owner), course.ID, &UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	_, err = env.services.Course().Update(env.ctx, actorOf(owner), 9999, &UpdateCourseRequest{Title: &title})
	assert.True(t, IsNotFound(err))
}

func TestCourseService_ListInvalidatedOnWrite(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	env.fx.Course(teacher.ID)

	page, err := env.services.Course().List(env.ctx, repositories.CourseFilters{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.NotEmpty(t, env.cache.Keys())

	_, err = env.services.Course().Create(env.ctx, actorOf(teacher), newCourseRequest())
	require.NoError(t, err)

	page, err = env.services.Course().List(env.ctx, repositories.CourseFilters{}, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestCourseService_DeleteEvictsDetail(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)

	_, err := env.services.Course().Get(env.ctx, course.ID)
	require.NoError(t, err)

	require.NoError(t, env.services.Course().Delete(env.ctx, actorOf(teacher), course.ID))
	assert.NotContains(t, env.cache.Keys(), cache.CourseDetailKey(course.ID))

	_, err = env.services.Course().Get(env.ctx, course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_SearchTermValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.services.Course().List(env.ctx, repositories.CourseFilters{}, "a")
	assert.True(t, IsValidation(err))
}

func TestCourseService_EnumCaseIsNormalizedBeforeValidation(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)

	req := newCourseRequest()
	req.Level = "Principiante"
	req.Status = " Activo "
	req.AccessType = "GRATIS"
	course, err := env.services.Course().Create(env.ctx, actorOf(teacher), req)
	require.NoError(t, err)
	assert.Equal(t, models.LevelBeginner, course.Level)
	assert.Equal(t, models.CourseActive, course.Status)
	assert.Equal(t, models.AccessFree, course.AccessType)

	level := models.CourseLevel(" Avanzado")
	updated, err := env.services.Course().Update(env.ctx, actorOf(teacher), course.ID, &UpdateCourseRequest{Level: &level})
	require.NoError(t, err)
	assert.Equal(t, models.LevelAdvanced, updated.Level)

	bogus := models.CourseLevel("Experto")
	_, err = env.services.Course().Update(env.ctx, actorOf(teacher), course.ID, &UpdateCourseRequest{Level: &bogus})
	assert.True(t, IsValidation(err))
}

func TestCourseService_DetailByViewer(t *testing.T) {
	env := newTestEnv(t)
	owner := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	course := env.fx.Course(owner.ID)
	env.fx.Enrollment(student.ID, course.ID, 0)

	public, err := env.services.Course().Detail(env.ctx, nil, course.ID)
	require.NoError(t, err)
	require.Len(t, public.Enrollments, 1)
	assert.Nil(t, public.Enrollments[0].User)
	require.NotNil(t, public.Instructor)
	assert.Empty(t, public.Instructor.Email)

	viewer := actorOf(student)
	public, err = env.services.Course().Detail(env.ctx, &viewer, course.ID)
	require.NoError(t, err)
	assert.Nil(t, public.Enrollments[0].User)

	manager := actorOf(owner)
	full, err := env.services.Course().Detail(env.ctx, &manager, course.ID)
	require.NoError(t, err)
	require.NotNil(t, full.Enrollments[0].User)
	assert.Equal(t, student.Email, full.Enrollments[0].User.Email)
}
