package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *apiEnv) upload(t *testing.T, path, token string, fields map[string]string, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	part, err := form.CreateFormFile("archivo", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestRouter_ResourcesByRole(t *testing.T) {
	api := newAPIEnv(t)
	teacher := api.fx.User(models.RoleTeacher)
	student := api.fx.User(models.RoleStudent)
	course := api.fx.Course(teacher.ID)
	api.fx.Enrollment(student.ID, course.ID, 0)
	teacherToken, studentToken := api.token(t, teacher), api.token(t, student)

	payload := map[string]interface{}{
		"titulo":      "Manual de redes",
		"descripcion": "Capítulos 1 a 3",
		"tipo":        "Libro",
		"curso_id":    course.ID,
		"url":         "https://biblioteca.example.com/redes",
	}
	w := api.doJSON(t, http.MethodPost, "/api/recursos", studentToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.doJSON(t, http.MethodPost, "/api/recursos", teacherToken, payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Resource
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, models.ResourceBook, created.Type)

	w = api.do(http.MethodGet, "/api/recursos/tipo/libro", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Manual de redes")

	w = api.do(http.MethodGet, "/api/recursos/tipo/podcast", studentToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, "/api/recursos/buscar?q=redes", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Manual de redes")

	w = api.do(http.MethodGet, "/api/recursos/buscar", studentToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/cursos/%d/recursos", course.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/recursos/%d", created.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodDelete, fmt.Sprintf("/api/recursos/%d", created.ID), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, fmt.Sprintf("/api/recursos/%d", created.ID), teacherToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MultimediaUploadAndPublicListing(t *testing.T) {
	api := newAPIEnv(t)
	teacher := api.fx.User(models.RoleTeacher)
	course := api.fx.Course(teacher.ID)
	lesson := api.fx.Lesson(course.ID, 1, models.LessonActive)
	token := api.token(t, teacher)

	fields := map[string]string{
		"titulo":      "Introducción",
		"descripcion": "Video de bienvenida",
		"tipo":        "video",
		"leccion_id":  fmt.Sprint(lesson.ID),
		"orden":       "1",
	}
	w := api.upload(t, "/api/multimedia", token, fields, "intro.mp4", []byte("mp4-bytes"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "/storage/multimedia/")

	w = api.upload(t, "/api/multimedia", token, fields, "intro.exe", []byte("nope"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/cursos/%d/multimedia", course.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Multimedia
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Introducción", listed[0].Title)
}

func TestRouter_NotificationInbox(t *testing.T) {
	api := newAPIEnv(t)
	teacher := api.fx.User(models.RoleTeacher)
	student := api.fx.User(models.RoleStudent)
	course := api.fx.Course(teacher.ID)
	teacherToken := api.token(t, teacher)

	w := api.doJSON(t, http.MethodPost, "/api/inscripciones", api.token(t, student), map[string]interface{}{
		"user_id":  student.ID,
		"curso_id": course.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/notificaciones?no_leidas=true", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox struct {
		Notifications struct {
			Data []models.Notification `json:"data"`
		} `json:"notificaciones"`
		Unread int64 `json:"no_leidas"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &inbox))
	require.Len(t, inbox.Notifications.Data, 1)
	assert.EqualValues(t, 1, inbox.Unread)
	id := inbox.Notifications.Data[0].ID

	w = api.do(http.MethodPut, fmt.Sprintf("/api/notificaciones/%d/leer", id), api.token(t, student), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, fmt.Sprintf("/api/notificaciones/%d/leer", id), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fecha_lectura")

	w = api.do(http.MethodPut, "/api/notificaciones/leer-todas", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/notificaciones?no_leidas=quizas", teacherToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
