package services

import (
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookRequest(courseID uint, title string) *CreateResourceRequest {
	url := "https://biblioteca.example.com/" + title
	return &CreateResourceRequest{
		Title:       title,
		Description: "Lectura complementaria",
		Type:        models.ResourceBook,
		URL:         &url,
		CourseID:    courseID,
	}
}

func TestResourceService_CreateByCourseOwner(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	lesson := env.fx.Lesson(course.ID, 1, models.LessonActive)

	req := bookRequest(course.ID, "algebra")
	req.Title = "  Álgebra lineal "
	req.Type = "LIBRO"
	req.LessonID = &lesson.ID
	resource, err := env.services.Resource().Create(env.ctx, actorOf(teacher), req)
	require.NoError(t, err)
	assert.Equal(t, "Álgebra lineal", resource.Title)
	assert.Equal(t, models.ResourceBook, resource.Type)
	assert.Equal(t, models.ResourceActive, resource.Status)
	assert.Equal(t, teacher.ID, resource.CreatorID)

	_, err = env.services.Resource().Create(env.ctx, actorOf(other), bookRequest(course.ID, "ajeno"))
	assert.True(t, IsForbidden(err))

	otherCourse := env.fx.Course(teacher.ID)
	foreign := env.fx.Lesson(otherCourse.ID, 1, models.LessonActive)
	req = bookRequest(course.ID, "mal-enlazado")
	req.LessonID = &foreign.ID
	_, err = env.services.Resource().Create(env.ctx, actorOf(teacher), req)
	assert.True(t, IsValidation(err))

	req = bookRequest(course.ID, "tipo")
	req.Type = "podcast"
	_, err = env.services.Resource().Create(env.ctx, actorOf(teacher), req)
	assert.True(t, IsValidation(err))
}

func TestResourceService_StudentSeesActiveResourcesOfEnrolledCourses(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	enrolled := env.fx.Course(teacher.ID)
	foreign := env.fx.Course(teacher.ID)
	env.fx.Enrollment(student.ID, enrolled.ID, 0)

	visible, err := env.services.Resource().Create(env.ctx, actorOf(teacher), bookRequest(enrolled.ID, "visible"))
	require.NoError(t, err)
	draftReq := bookRequest(enrolled.ID, "borrador")
	draftReq.Status = models.ResourceDraft
	draft, err := env.services.Resource().Create(env.ctx, actorOf(teacher), draftReq)
	require.NoError(t, err)
	_, err = env.services.Resource().Create(env.ctx, actorOf(teacher), bookRequest(foreign.ID, "ajeno"))
	require.NoError(t, err)

	page, err := env.services.Resource().List(env.ctx, actorOf(student), ResourceQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, visible.ID, page.Data[0].ID)

	_, err = env.services.Resource().Get(env.ctx, actorOf(student), draft.ID)
	assert.ErrorIs(t, err, ErrResourceNotFound)

	byCourse, err := env.services.Resource().ListByCourse(env.ctx, actorOf(student), enrolled.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	_, err = env.services.Resource().ListByCourse(env.ctx, actorOf(student), foreign.ID)
	assert.True(t, IsForbidden(err))

	all, err := env.services.Resource().ListByCourse(env.ctx, actorOf(teacher), enrolled.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResourceService_SearchAndTypeFilters(t *testing.T) {
	env := newTestEnv(t)
	admin := env.fx.User(models.RoleAdmin)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)

	_, err := env.services.Resource().Create(env.ctx, actorOf(teacher), bookRequest(course.ID, "Cálculo diferencial"))
	require.NoError(t, err)
	video := bookRequest(course.ID, "Derivadas en video")
	video.Type = models.ResourceVideo
	_, err = env.services.Resource().Create(env.ctx, actorOf(teacher), video)
	require.NoError(t, err)

	found, err := env.services.Resource().List(env.ctx, actorOf(admin), ResourceQuery{Term: "derivadas"})
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	assert.Equal(t, models.ResourceVideo, found.Data[0].Type)

	kind := models.ResourceType("Libro")
	books, err := env.services.Resource().List(env.ctx, actorOf(teacher), ResourceQuery{Type: &kind})
	require.NoError(t, err)
	require.Len(t, books.Data, 1)
	assert.Equal(t, "Cálculo diferencial", books.Data[0].Title)

	outsider := env.fx.User(models.RoleTeacher)
	none, err := env.services.Resource().List(env.ctx, actorOf(outsider), ResourceQuery{})
	require.NoError(t, err)
	assert.Empty(t, none.Data)
}

func TestResourceService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)

	resource, err := env.services.Resource().Create(env.ctx, actorOf(teacher), bookRequest(course.ID, "original"))
	require.NoError(t, err)

	title := " Renombrado "
	status := models.ResourceStatus("INACTIVO")
	updated, err := env.services.Resource().Update(env.ctx, actorOf(teacher), resource.ID, &UpdateResourceRequest{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", updated.Title)
	assert.Equal(t, models.ResourceInactive, updated.Status)

	err = env.services.Resource().Delete(env.ctx, actorOf(other), resource.ID)
	assert.True(t, IsForbidden(err))

	require.NoError(t, env.services.Resource().Delete(env.ctx, actorOf(teacher), resource.ID))
	_, err = env.services.Resource().Get(env.ctx, actorOf(teacher), resource.ID)
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.True(t, IsNotFound(err))
}
