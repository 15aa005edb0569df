package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-workspace/internal/api/middleware"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/repository/redis"
	"github.com/Rrens/chat-workspace/internal/security"
)

func echoName() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, _ := middleware.GetProfileName(r.Context())
		_, _ = w.Write([]byte(name))
	})
}

func TestAuthenticate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", time.Hour)
	token, err := manager.GenerateAccessToken("Ada", "Developer")
	require.NoError(t, err)

	h := middleware.NewAuthMiddleware(manager, false).Authenticate(echoName())

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"bearer header", "/", "Bearer " + token, http.StatusOK},
		{"query token", "/?token=" + token, "", http.StatusOK},
		{"missing", "/", "", http.StatusUnauthorized},
		{"wrong scheme", "/", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "/", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "Ada", rec.Body.String())
			}
		})
	}
}

func TestAuthenticate_Disabled(t *testing.T) {
	h := middleware.NewAuthMiddleware(nil, true).Authenticate(echoName())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireProfile(t *testing.T) {
	ready := false
	h := middleware.RequireProfile(func() bool { return ready })(echoName())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrProfileNotReady.Error())

	ready = true
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeLimiter struct {
	decision redis.Decision
	err      error
	keys     []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (redis.Decision, error) {
	f.keys = append(f.keys, key)
	return f.decision, f.err
}

func TestRateLimit(t *testing.T) {
	reset := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("allowed", func(t *testing.T) {
		limiter := &fakeLimiter{decision: redis.Decision{Allowed: true, Remaining: 4, ResetAt: reset}}
		rec := httptest.NewRecorder()
		middleware.NewRateLimitMiddleware(limiter).Limit(echoName()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "2024-05-01T10:00:00Z", rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("denied", func(t *testing.T) {
		limiter := &fakeLimiter{decision: redis.Decision{Allowed: false, ResetAt: reset}}
		rec := httptest.NewRecorder()
		middleware.NewRateLimitMiddleware(limiter).Limit(echoName()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("limiter error fails open", func(t *testing.T) {
		limiter := &fakeLimiter{err: errors.New("redis down")}
		rec := httptest.NewRecorder()
		middleware.NewRateLimitMiddleware(limiter).Limit(echoName()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
