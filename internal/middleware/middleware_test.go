package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"chrona/internal/models"
)

type stubTokens map[string]string

func (s stubTokens) ValidateToken(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type stubUsers map[string]bool

func (s stubUsers) Get(_ context.Context, id string) (*models.User, error) {
	if s[id] {
		return &models.User{ID: id}, nil
	}
	return nil, errors.New("not found")
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(UserIDFromContext(r.Context())))
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(
		stubTokens{"good": "u1", "orphan": "ghost"},
		stubUsers{"u1": true},
		zap.NewNop(),
	)
	h := m.RequireAuth(http.HandlerFunc(echoUser))

	cases := []struct {
		name    string
		prepare func(*http.Request)
		status  int
		body    string
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized, "no token"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"}) }, http.StatusOK, "u1"},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "u1"},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, "token failed"},
		{"deleted user", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "orphan"}) }, http.StatusUnauthorized, "user not found"},
		{"cookie wins", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: TokenCookie, Value: "good"})
			r.Header.Set("Authorization", "Bearer nope")
		}, http.StatusOK, "u1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tc.prepare(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
			if tc.status == http.StatusUnauthorized {
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestUserIDFromContextEmpty(t *testing.T) {
	assert.Equal(t, "", UserIDFromContext(context.Background()))
	assert.Equal(t, "u9", UserIDFromContext(WithUserID(context.Background(), "u9")))
}

func TestZapRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(ZapRequestLogger(zap.New(core)))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.EqualValues(t, 200, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
