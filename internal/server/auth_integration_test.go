// ABOUTME: Tests for the API behind the auth middleware
// ABOUTME: Verifies bearer tokens gate every /api route but not /health

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmdre39/mission-control-dashboard/internal/auth"
	"github.com/hmdre39/mission-control-dashboard/internal/config"
	"github.com/hmdre39/mission-control-dashboard/internal/llm"
	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

func newAuthedServer(t *testing.T) (*Server, *auth.JWTVerifier) {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	chain := llm.NewChain(config.LLMConfig{Primary: "claude-opus-4-1"}, testLogger())
	srv := New(Config{Addr: "localhost:0", Verifier: verifier}, st, chain, nil, testLogger())
	return srv, verifier
}

func TestAuth_RejectsMissingToken(t *testing.T) {
	srv, _ := newAuthedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	srv, verifier := newAuthedServer(t)

	token, err := verifier.Generate("dashboard", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_HealthStaysOpen(t *testing.T) {
	srv, _ := newAuthedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
