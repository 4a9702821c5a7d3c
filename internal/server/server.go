// ABOUTME: HTTP JSON API server exposing the dashboard data layer
// ABOUTME: Wires routes, auth middleware, error mapping, and graceful shutdown

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hmdre39/mission-control-dashboard/internal/auth"
	"github.com/hmdre39/mission-control-dashboard/internal/llm"
	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

// Config carries the pieces the server needs beyond the store itself.
type Config struct {
	Addr string

	// Verifier validates bearer tokens; nil disables JWT auth.
	Verifier auth.TokenVerifier

	// APIKeyHash is the bcrypt hash checked against X-API-Key; empty
	// disables API-key auth.
	APIKeyHash string
}

// Server is the HTTP API over a Store. It holds no request state; all
// persistence goes through the store selected at startup.
type Server struct {
	store      store.Store
	llm        *llm.Chain
	fixtures   *store.Fixtures
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server with all routes registered. fixtures supplies the
// seed data used by POST /api/seed; nil means the built-in fixtures.
func New(cfg Config, st store.Store, chain *llm.Chain, fixtures *store.Fixtures, logger *slog.Logger) *Server {
	if fixtures == nil {
		fixtures = store.DefaultFixtures()
	}
	s := &Server{
		store:    st,
		llm:      chain,
		fixtures: fixtures,
		logger:   logger.With("component", "server"),
	}

	mux := http.NewServeMux()

	// Health endpoint - no auth required
	mux.HandleFunc("/health", s.handleHealth)

	protect := auth.Middleware(cfg.Verifier, cfg.APIKeyHash)
	for pattern, handler := range s.apiRoutes() {
		mux.Handle(pattern, protect(handler))
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// apiRoutes maps URL patterns to their handlers. Patterns ending in "/"
// cover the routes carrying a path parameter.
func (s *Server) apiRoutes() map[string]http.Handler {
	return map[string]http.Handler{
		"/api/system-status":    http.HandlerFunc(s.handleSystemStatus),
		"/api/agents":           http.HandlerFunc(s.handleAgents),
		"/api/agents/":          http.HandlerFunc(s.handleAgentByID),
		"/api/cron-jobs":        http.HandlerFunc(s.handleCronJobs),
		"/api/tasks":            http.HandlerFunc(s.handleTasks),
		"/api/tasks/":           http.HandlerFunc(s.handleTaskStatus),
		"/api/content-drafts":   http.HandlerFunc(s.handleContentDrafts),
		"/api/content-drafts/":  http.HandlerFunc(s.handleContentDraftByID),
		"/api/calendar-events":  http.HandlerFunc(s.handleCalendarEvents),
		"/api/calendar-events/": http.HandlerFunc(s.handleCalendarEventByID),
		"/api/chat/sessions":    http.HandlerFunc(s.handleChatSessions),
		"/api/chat/messages":    http.HandlerFunc(s.handleChatMessages),
		"/api/clients":          http.HandlerFunc(s.handleClients),
		"/api/clients/":         http.HandlerFunc(s.handleClientByID),
		"/api/products":         http.HandlerFunc(s.handleProducts),
		"/api/products/":        http.HandlerFunc(s.handleProductBySlug),
		"/api/activities":       http.HandlerFunc(s.handleActivities),
		"/api/seed":             http.HandlerFunc(s.handleSeed),
		"/api/llm/config":       http.HandlerFunc(s.handleLLMConfig),
	}
}

// Handler exposes the full route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP listener and blocks until the context is
// canceled or the server fails. Returns nil on graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// writeJSON encodes v with the standard content type.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeStoreError maps store errors onto HTTP statuses: invalid input
// is the caller's fault, a missing id is 404, everything else is
// logged and hidden behind a generic 500.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		s.sendJSONError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		s.sendJSONError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error("store operation failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

// epochMillis converts a time to the dashboard's numeric timestamp
// representation.
func epochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// epochMillisPtr converts an optional time, keeping nil as nil.
func epochMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// parseEpochMillis converts the dashboard's numeric timestamps back to
// time.Time.
func parseEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
