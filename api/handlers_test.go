package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/taskman-go/auth"
	"github.com/user/taskman-go/session"
	"github.com/user/taskman-go/tasks"
)

func newTestHandlers(t *testing.T) (*Handlers, *auth.Service, *tasks.Service) {
	t.Helper()
	authService := auth.NewService(auth.NewMemoryCredentialStore())
	taskService := tasks.NewService(tasks.NewMemoryRepository())
	h := NewHandlers(authService, taskService, "test", "memory", zap.NewNop())
	return h, authService, taskService
}

func authenticatedRequest(path string, principal *session.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(auth.WithPrincipal(req.Context(), principal))
}

func TestHandleUser(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandlers(t)

	t.Run("authenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleUser().ServeHTTP(rec, authenticatedRequest("/api/user", &session.Principal{
			UserID: "u1", Username: "alice", Email: "a@x.com",
		}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"success":true,"user":{"id":"u1","username":"alice","email":"a@x.com"}}`,
			rec.Body.String())
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleUser().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})
}

func TestHandleInfo(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.HandleInfo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var info infoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "Task Manager Application", info.App)
	assert.Equal(t, "test", info.Environment)
	assert.Equal(t, "memory", info.Database)
	assert.Contains(t, info.Features, "Task Management")
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	h, authService, taskService := newTestHandlers(t)

	principal, err := authService.Register(context.Background(), auth.RegisterForm{
		Username: "alice", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)

	task, err := taskService.Create(context.Background(), principal.UserID, "T1", "", "")
	require.NoError(t, err)
	_, err = taskService.Create(context.Background(), principal.UserID, "T2", "", "")
	require.NoError(t, err)
	require.NoError(t, taskService.UpdateStatus(context.Background(), principal.UserID, task.ID, "completed"))

	// A second user's tasks stay out of the caller's counts.
	other, err := authService.Register(context.Background(), auth.RegisterForm{
		Username: "bob", Email: "b@x.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	_, err = taskService.Create(context.Background(), other.UserID, "bob's", "", "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleStats().ServeHTTP(rec, authenticatedRequest("/api/stats", principal))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"stats": {
			"totalUsers": 2,
			"totalTasks": 2,
			"completedTasks": 1,
			"pendingTasks": 1,
			"inProgressTasks": 0
		}
	}`, rec.Body.String())
}

func TestHandleStats_Anonymous(t *testing.T) {
	t.Parallel()

	h, _, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	h.HandleStats().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
