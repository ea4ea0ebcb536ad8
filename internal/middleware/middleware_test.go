package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signedToken(t *testing.T, secret, subject, issuer string, expires time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(StructuredLoggingMiddleware(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	r.Use(mw...)
	r.GET("/api/v1/sessions/:session_id", func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user": userID})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret, "identity"))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + signedToken(t, testSecret, "user-1", "identity", time.Now().Add(time.Hour)), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signedToken(t, "other", "user-1", "identity", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + signedToken(t, testSecret, "user-1", "someone-else", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + signedToken(t, testSecret, "user-1", "identity", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"no subject", "Bearer " + signedToken(t, testSecret, "", "identity", time.Now().Add(time.Hour)), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user":"user-1"}`, w.Body.String())
			}
		})
	}
}

func TestStructuredLoggingMiddleware_RequestID(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil)
	req.Header.Set(requestIDHeader, "6f1c2a4e-8b1d-4c55-9a57-0b3f0f1f9d11")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2a4e-8b1d-4c55-9a57-0b3f0f1f9d11", w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid\nforged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid\nforged", w.Header().Get(requestIDHeader))
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), GetLoggerFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

func TestRateLimit(t *testing.T) {
	lim, err := NewRateLimiter("2-M")
	require.NoError(t, err)
	r := newRouter(RateLimit(lim))

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	_, err = NewRateLimiter("lots")
	assert.Error(t, err)
}

type recordingTracker struct {
	users  []string
	events []string
}

func (r *recordingTracker) Track(userID, event string, _ map[string]any) {
	r.users = append(r.users, userID)
	r.events = append(r.events, event)
}

func TestPosthogMiddleware(t *testing.T) {
	tracker := &recordingTracker{}
	r := newRouter(AuthMiddleware(testSecret, ""), PosthogMiddleware(tracker))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, "user-9", "", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"user-9"}, tracker.users)
	assert.Equal(t, []string{"api_v1_sessions_session_id"}, tracker.events)

	// rejected requests are not tracked
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil))
	assert.Len(t, tracker.events, 1)
}
