package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shopping-list/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.FromEnv(func(k string) string {
		return map[string]string{
			"DB_PATH":      ":memory:",
			"TEMPLATE_DIR": filepath.Join("..", "..", "web", "templates"),
			"STATIC_DIR":   filepath.Join("..", "..", "web", "static"),
		}[k]
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method, path string
		body         string
		want         int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/static/app.js", "", http.StatusOK},
		{http.MethodGet, "/api/shopping-items", "", http.StatusOK},
		{http.MethodPost, "/api/shopping-items", `{"name":"Milk","quantity":"1","category":"dairy"}`, http.StatusOK},
		{http.MethodPatch, "/api/shopping-items/reset", "", http.StatusOK},
		{http.MethodPatch, "/api/shopping-items/1/toggle", "", http.StatusOK},
		{http.MethodDelete, "/api/shopping-items/1", "", http.StatusOK},
		{http.MethodDelete, "/api/shopping-items/1", "", http.StatusNotFound},
		{http.MethodGet, "/api/nothing-here", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, req)
		assert.Equal(t, tt.want, rr.Code, "%s %s", tt.method, tt.path)
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/shopping-items", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_SeedsDefaultUser(t *testing.T) {
	s := newTestServer(t)

	u, err := s.store.GetUserByUsername(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", u.Username)
}
