package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/cache"
	"github.com/SAP-F-2025/lms-service/internal/events"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/notify"
	"github.com/SAP-F-2025/lms-service/internal/payment"
	"github.com/SAP-F-2025/lms-service/internal/repositories/cached"
	"github.com/SAP-F-2025/lms-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/storage"
	"github.com/SAP-F-2025/lms-service/internal/testutil"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/SAP-F-2025/lms-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type approveAll struct{}

func (approveAll) Charge(_ context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	return &payment.Charge{ID: "ch_http", Status: "succeeded", Amount: payment.ToCents(req.Amount), Currency: "mxn"}, nil
}

type apiEnv struct {
	router *gin.Engine
	fx     *testutil.Fixtures
	tokens *auth.JWTManager
	mailer *notify.RecordingMailer
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger := utils.NewSlogLogger(slogger)

	db := testutil.NewDB(t)
	memCache := cache.NewMemoryCache()
	repo := cached.NewRepository(postgres.NewRepository(db), memCache, logger)
	files, err := storage.NewLocalStorage(t.TempDir(), "/storage")
	require.NoError(t, err)

	tokens := auth.NewJWTManager("http-test-secret", time.Hour, memCache)
	mailer := notify.NewRecordingMailer()
	collector := metrics.NewCollector()

	sm := services.NewServiceManager(services.Dependencies{
		Repo:               repo,
		CourseCache:        repo.CourseCache(),
		Cache:              memCache,
		Tokens:             tokens,
		Publisher:          events.NewMockEventPublisher(slogger),
		Mailer:             mailer,
		Gateway:            approveAll{},
		Files:              files,
		Collector:          collector,
		Validator:          validator.New(),
		Logger:             slogger,
		ContactDestination: "info@mindschool.com",
		Currency:           "MXN",
		MaxUploadBytes:     1 << 20,
		MaxMediaBytes:      4 << 20,
	})

	router := NewRouter(NewHandlerManager(sm, logger), RouterOptions{
		Auth:        middleware.NewAuthMiddleware(tokens, logger),
		CORSOrigins: []string{"http://localhost:3000"},
		Collector:   collector,
	}, logger)

	return &apiEnv{router: router, fx: testutil.NewFixtures(t, db), tokens: tokens, mailer: mailer}
}

func (e *apiEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return e.do(method, path, token, body)
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestRouter_HealthAndNoRoute(t *testing.T) {
	api := newAPIEnv(t)

	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = api.do(http.MethodGet, "/api/no-existe", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestRouter_ContactCreated(t *testing.T) {
	api := newAPIEnv(t)

	w := api.doJSON(t, http.MethodPost, "/api/contacto", "", map[string]string{
		"nombre":  "Ana",
		"email":   "ana@example.com",
		"mensaje": "Hola, quiero informes",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.True(t, body.Success)
	assert.Len(t, api.mailer.Messages(), 1)
}

func TestRouter_MalformedJSON(t *testing.T) {
	api := newAPIEnv(t)

	w := api.do(http.MethodPost, "/api/contacto", "", []byte(`{"nombre": `))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)
	assert.Empty(t, api.mailer.Messages())
}

func TestRouter_ValidationErrorsByField(t *testing.T) {
	api := newAPIEnv(t)

	w := api.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Ana",
		"email":    "no-es-correo",
		"password": "corta",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "password")
}

func TestRouter_RegisterLoginLogout(t *testing.T) {
	api := newAPIEnv(t)

	w := api.doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":                  "Ana",
		"email":                 "ana@example.com",
		"password":              "Secreto123",
		"password_confirmation": "Secreto123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "Mala12345",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "Secreto123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &login))
	require.NotEmpty(t, login.Token)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/user", login.Token, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/logout", login.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/user", login.Token, nil).Code)
}

func TestRouter_RoleEnforcement(t *testing.T) {
	api := newAPIEnv(t)
	admin := api.fx.User(models.RoleAdmin)
	owner := api.fx.User(models.RoleTeacher)
	other := api.fx.User(models.RoleTeacher)
	student := api.fx.User(models.RoleStudent)
	course := api.fx.Course(owner.ID)
	api.fx.Enrollment(student.ID, course.ID, 0)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/admin/dashboard", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/admin/dashboard", api.token(t, student), nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/analytics/dashboard", api.token(t, owner), nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/admin/dashboard", api.token(t, admin), nil).Code)

	grade := map[string]interface{}{
		"estudiante_id":   student.ID,
		"curso_id":        course.ID,
		"tipo_evaluacion": "examen",
		"calificacion":    88,
	}
	w := api.doJSON(t, http.MethodPost, "/api/calificaciones", api.token(t, student), grade)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.doJSON(t, http.MethodPost, "/api/calificaciones", api.token(t, other), grade)
	assert.Equal(t, http.StatusForbidden, w.Code, "teachers cannot grade foreign courses")

	w = api.doJSON(t, http.MethodPost, "/api/calificaciones", api.token(t, owner), grade)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/estudiante/dashboard", api.token(t, owner), nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/estudiante/dashboard", api.token(t, student), nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/profesor/dashboard", api.token(t, owner), nil).Code)
}

func TestRouter_CatalogAndNotFound(t *testing.T) {
	api := newAPIEnv(t)
	teacher := api.fx.User(models.RoleTeacher)
	course := api.fx.Course(teacher.ID)

	w := api.do(http.MethodGet, "/api/cursos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, int64(1), page.Total)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, fmt.Sprintf("/api/cursos/%d", course.ID), "", nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/cursos/9999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/cursos/abc", "", nil).Code)

	w = api.do(http.MethodGet, "/api/cursos?precio_minimo=barato", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouter_PayCourse(t *testing.T) {
	api := newAPIEnv(t)
	teacher := api.fx.User(models.RoleTeacher)
	student := api.fx.User(models.RoleStudent)
	paid := api.fx.Course(teacher.ID, func(c *models.Course) {
		c.AccessType = models.AccessPaid
		c.Price = 300
	})
	path := fmt.Sprintf("/api/cursos/%d/pagar", paid.ID)
	req := map[string]string{"metodo_pago": "tarjeta", "token": "tok_visa"}

	w := api.doJSON(t, http.MethodPost, path, api.token(t, student), req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.doJSON(t, http.MethodPost, path, api.token(t, student), req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_CourseDetailHidesPrivateFields(t *testing.T) {
	api := newAPIEnv(t)
	owner := api.fx.User(models.RoleTeacher)
	enrolled := api.fx.User(models.RoleStudent)
	outsider := api.fx.User(models.RoleStudent)
	code := "INVSECRET0000001"
	course := api.fx.Course(owner.ID, func(c *models.Course) {
		c.AccessType = models.AccessCode
		c.InvitationCode = &code
	})
	api.fx.Enrollment(enrolled.ID, course.ID, 10)
	path := fmt.Sprintf("/api/cursos/%d", course.ID)

	for name, token := range map[string]string{
		"anonymous": "",
		"student":   api.token(t, outsider),
	} {
		w := api.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, w.Code, name)
		body := w.Body.String()
		assert.NotContains(t, body, "codigo_invitacion", name)
		assert.NotContains(t, body, code, name)
		assert.NotContains(t, body, enrolled.Email, name)
		assert.NotContains(t, body, owner.Email, name)
	}

	// the code still has to be known to enroll
	w := api.doJSON(t, http.MethodPost, path+"/inscribirse", api.token(t, outsider), map[string]string{"codigo_invitacion": "INV0000000000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = api.do(http.MethodGet, path, api.token(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), enrolled.Email)
	assert.NotContains(t, w.Body.String(), code)

	w = api.do(http.MethodGet, "/api/cursos", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), owner.Email)
}
