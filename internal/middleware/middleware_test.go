package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/auth"
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	identities map[string]*auth.Identity
}

func (s stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if identity, ok := s.identities[token]; ok {
		return identity, nil
	}
	return nil, auth.ErrInvalidToken
}

type failingLimiter struct{}

func (failingLimiter) Hit(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis down")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter() *gin.Engine {
	verifier := stubVerifier{identities: map[string]*auth.Identity{
		"student": {UserID: 1, Role: models.RoleStudent},
		"admin":   {UserID: 2, Role: models.RoleAdmin},
	}}
	am := NewAuthMiddleware(verifier, utils.NewDiscardLogger())

	r := gin.New()
	admin := r.Group("/admin", am.RequireAuth(), RequireRoles(models.RoleAdmin))
	admin.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c)})
	})
	return r
}

func doRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_RoleEnforcement(t *testing.T) {
	r := newAuthRouter()

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/admin/dashboard", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/admin/dashboard", "bogus").Code)

	w := doRequest(r, http.MethodGet, "/admin/dashboard", "student")
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Acceso denegado", body["message"])

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/admin/dashboard", "admin").Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewMemoryLimiter(), 2, time.Minute, utils.NewDiscardLogger()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := doRequest(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ping", "").Code)

	blocked := doRequest(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(blocked.Body.Bytes(), &body))
	assert.Greater(t, body["retry_after"].(float64), 0.0)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(failingLimiter{}, 1, time.Minute, utils.NewDiscardLogger()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ping", "").Code)
	}
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }

	count, _, _ := l.Hit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(1), count)
	count, resetIn, _ := l.Hit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, time.Minute, resetIn)

	now = now.Add(time.Minute)
	count, _, _ = l.Hit(context.Background(), "k", time.Minute)
	assert.Equal(t, int64(1), count)
}

func TestMemoryLimiter_SweepsExpiredWindows(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		_, _, err := l.Hit(context.Background(), fmt.Sprintf("caller-%d", i), time.Second)
		require.NoError(t, err)
	}
	assert.Equal(t, 50, l.Len())

	now = now.Add(2 * time.Minute)
	_, _, err := l.Hit(context.Background(), "fresh", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
}

func TestRateLimit_KeysSignedInCallersByUser(t *testing.T) {
	verifier := stubVerifier{identities: map[string]*auth.Identity{
		"student": {UserID: 1, Role: models.RoleStudent},
		"admin":   {UserID: 2, Role: models.RoleAdmin},
	}}
	am := NewAuthMiddleware(verifier, utils.NewDiscardLogger())

	r := gin.New()
	api := r.Group("", am.Identify(), RateLimit(NewMemoryLimiter(), 1, time.Minute, utils.NewDiscardLogger()))
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, RateLimitKey(c)) })

	student := doRequest(r, http.MethodGet, "/ping", "student")
	require.Equal(t, http.StatusOK, student.Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodGet, "/ping", "student").Code)

	// same IP and user agent, different user: separate bucket
	admin := doRequest(r, http.MethodGet, "/ping", "admin")
	require.Equal(t, http.StatusOK, admin.Code)
	assert.NotEqual(t, student.Body.String(), admin.Body.String())

	// invalid tokens fall back to the anonymous key
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ping", "bogus").Code)
}

func TestAuth_IdentifyIsOptional(t *testing.T) {
	verifier := stubVerifier{identities: map[string]*auth.Identity{
		"student": {UserID: 1, Role: models.RoleStudent},
	}}
	am := NewAuthMiddleware(verifier, utils.NewDiscardLogger())

	r := gin.New()
	r.GET("/who", am.Identify(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUserID(c)})
	})

	var body map[string]any
	w := doRequest(r, http.MethodGet, "/who", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0.0, body["user"])

	w = doRequest(r, http.MethodGet, "/who", "student")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1.0, body["user"])
}

func TestRequestIDAndMetrics(t *testing.T) {
	collector := metrics.NewCollector()
	r := gin.New()
	r.Use(RequestID(), Metrics(collector), RequestLogging(utils.NewDiscardLogger()))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := doRequest(r, http.MethodGet, "/boom", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	snap := collector.Snapshot()
	assert.Equal(t, int64(1), snap.Errors24h)
	assert.Equal(t, int64(0), snap.InFlight)
}
