package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mediaRequest(lessonID uint, kind models.MultimediaType, order int) *CreateMultimediaRequest {
	return &CreateMultimediaRequest{
		Title:       "Clase grabada",
		Description: "Material de apoyo",
		Type:        kind,
		LessonID:    lessonID,
		Order:       order,
	}
}

func TestMultimediaService_UploadStoresFile(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	lesson := env.fx.Lesson(course.ID, 1, models.LessonActive)

	file := &UploadedFile{Name: "Clase1.MP4", Size: 5, Content: strings.NewReader("video")}
	media, err := env.services.Multimedia().Create(env.ctx, actorOf(teacher), mediaRequest(lesson.ID, "Video", 1), file)
	require.NoError(t, err)
	assert.Equal(t, models.MediaVideo, media.Type)
	assert.Equal(t, models.MediaActive, media.Status)
	require.NotNil(t, media.FileKey)
	assert.True(t, strings.HasPrefix(media.URL, "/storage/multimedia/"))
	assert.True(t, strings.HasSuffix(media.URL, ".mp4"))

	stored := filepath.Join(env.filesDir, filepath.FromSlash(*media.FileKey))
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "video", string(content))

	require.NoError(t, env.services.Multimedia().Delete(env.ctx, actorOf(teacher), media.ID))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
	_, err = env.services.Multimedia().Get(env.ctx, actorOf(teacher), media.ID)
	assert.ErrorIs(t, err, ErrMultimediaNotFound)
}

func TestMultimediaService_CreateRules(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	lesson := env.fx.Lesson(course.ID, 1, models.LessonActive)

	// neither file nor url
	_, err := env.services.Multimedia().Create(env.ctx, actorOf(teacher), mediaRequest(lesson.ID, models.MediaVideo, 1), nil)
	assert.True(t, IsValidation(err))

	wrongExt := &UploadedFile{Name: "notas.pdf", Size: 3, Content: strings.NewReader("pdf")}
	_, err = env.services.Multimedia().Create(env.ctx, actorOf(teacher), mediaRequest(lesson.ID, models.MediaVideo, 1), wrongExt)
	assert.True(t, IsValidation(err))

	tooBig := &UploadedFile{Name: "larga.mp4", Size: 5 << 20, Content: strings.NewReader("x")}
	_, err = env.services.Multimedia().Create(env.ctx, actorOf(teacher), mediaRequest(lesson.ID, models.MediaVideo, 1), tooBig)
	assert.True(t, IsValidation(err))

	_, err = env.services.Multimedia().Create(env.ctx, actorOf(teacher), mediaRequest(lesson.ID, models.MediaVideo, 0), nil)
	assert.True(t, IsValidation(err))

	external := mediaRequest(lesson.ID, models.MediaVideo, 1)
	external.URL = "https://videos.example.com/clase-1"
	_, err = env.services.Multimedia().Create(env.ctx, actorOf(other), external, nil)
	assert.True(t, IsForbidden(err))

	external.LessonID = 9999
	_, err = env.services.Multimedia().Create(env.ctx, actorOf(teacher), external, nil)
	assert.ErrorIs(t, err, ErrLessonNotFound)

	external.LessonID = lesson.ID
	media, err := env.services.Multimedia().Create(env.ctx, actorOf(teacher), external, nil)
	require.NoError(t, err)
	assert.Nil(t, media.FileKey)
	assert.Equal(t, "https://videos.example.com/clase-1", media.URL)
}

func TestMultimediaService_VisibilityByViewer(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	student := env.fx.User(models.RoleStudent)
	outsider := env.fx.User(models.RoleStudent)
	course := env.fx.Course(teacher.ID)
	lesson := env.fx.Lesson(course.ID, 1, models.LessonActive)
	env.fx.Enrollment(student.ID, course.ID, 0)

	active := mediaRequest(lesson.ID, models.MediaAudio, 2)
	active.URL = "https://audio.example.com/podcast.mp3"
	_, err := env.services.Multimedia().Create(env.ctx, actorOf(teacher), active, nil)
	require.NoError(t, err)
	hidden := mediaRequest(lesson.ID, models.MediaImage, 1)
	hidden.URL = "https://img.example.com/diagrama.png"
	hidden.Status = models.MediaInactive
	hiddenMedia, err := env.services.Multimedia().Create(env.ctx, actorOf(teacher), hidden, nil)
	require.NoError(t, err)

	public, err := env.services.Multimedia().ListByCourse(env.ctx, nil, course.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, models.MediaAudio, public[0].Type)

	owner := actorOf(teacher)
	managed, err := env.services.Multimedia().ListByCourse(env.ctx, &owner, course.ID)
	require.NoError(t, err)
	require.Len(t, managed, 2)
	assert.Equal(t, hiddenMedia.ID, managed[0].ID, "ordered by orden")

	byLesson, err := env.services.Multimedia().ListByLesson(env.ctx, actorOf(student), lesson.ID)
	require.NoError(t, err)
	assert.Len(t, byLesson, 1)

	_, err = env.services.Multimedia().Get(env.ctx, actorOf(student), hiddenMedia.ID)
	assert.ErrorIs(t, err, ErrMultimediaNotFound)

	_, err = env.services.Multimedia().ListByLesson(env.ctx, actorOf(outsider), lesson.ID)
	assert.True(t, IsForbidden(err))

	mine, err := env.services.Multimedia().List(env.ctx, actorOf(outsider))
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, err = env.services.Multimedia().ListByCourse(env.ctx, nil, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestMultimediaService_UpdateMovesOnlyWithinManagedCourses(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.fx.User(models.RoleTeacher)
	other := env.fx.User(models.RoleTeacher)
	course := env.fx.Course(teacher.ID)
	lesson := env.fx.Lesson(course.ID, 1, models.LessonActive)
	second := env.fx.Lesson(course.ID, 2, models.LessonActive)
	foreign := env.fx.Lesson(env.fx.Course(other.ID).ID, 1, models.LessonActive)

	req := mediaRequest(lesson.ID, models.MediaDocument, 1)
	req.URL = "https://docs.example.com/guia.pdf"
	media, err := env.services.Multimedia().Create(env.ctx, actorOf(teacher), req, nil)
	require.NoError(t, err)

	_, err = env.services.Multimedia().Update(env.ctx, actorOf(teacher), media.ID, &UpdateMultimediaRequest{LessonID: &foreign.ID})
	assert.True(t, IsForbidden(err))

	title := "Guía revisada"
	updated, err := env.services.Multimedia().Update(env.ctx, actorOf(teacher), media.ID, &UpdateMultimediaRequest{LessonID: &second.ID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.LessonID)
	assert.Equal(t, title, updated.Title)
}
