package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/taskman-go/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser_RedirectsAnonymousPageRequests(t *testing.T) {
	t.Parallel()

	guard := RequireUser(RedirectToLogin)
	rec := httptest.NewRecorder()
	guard(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestRequireUser_RejectsAnonymousAPIRequests(t *testing.T) {
	t.Parallel()

	guard := RequireUser(UnauthorizedJSON)
	rec := httptest.NewRecorder()
	guard(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestRequireUser_PassesAuthenticatedRequests(t *testing.T) {
	t.Parallel()

	guard := RequireUser(UnauthorizedJSON)
	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &session.Principal{UserID: "u1"}))

	rec := httptest.NewRecorder()
	guard(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoadSession_AttachesPrincipal(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	token, err := store.Create(context.Background(), &session.Principal{
		UserID: "u1", Username: "alice", Email: "a@x.com",
	})
	require.NoError(t, err)

	var got *session.Principal
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	LoadSession(store, zap.NewNop())(next).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestLoadSession_IgnoresUnknownToken(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	called := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := PrincipalFromContext(r.Context())
		assert.False(t, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "bogus"})
	LoadSession(store, zap.NewNop())(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestLoadSession_NoCookie(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	defer store.Close()

	called := false
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := PrincipalFromContext(r.Context())
		assert.False(t, ok)
	})

	LoadSession(store, zap.NewNop())(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}
