// ABOUTME: HTTP handlers for the ops board: system status, agents, cron jobs
// ABOUTME: Read-only list endpoints plus the agent external-key point lookup

package server

import (
	"net/http"
	"strings"

	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

// SystemStatusResponse is the JSON shape for one monitored service.
type SystemStatusResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Port         *int   `json:"port,omitempty"`
	LastCheck    int64  `json:"lastCheck"`
	ResponseTime *int   `json:"responseTime,omitempty"`
	Details      string `json:"details,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// AgentResponse is the JSON shape for one agent on the roster.
type AgentResponse struct {
	ID           string            `json:"id"`
	AgentID      string            `json:"agentId"`
	Name         string            `json:"name"`
	Role         string            `json:"role"`
	Model        string            `json:"model"`
	Level        string            `json:"level"`
	Status       string            `json:"status"`
	Healthy      bool              `json:"healthy"`
	LastActive   int64             `json:"lastActive"`
	Personality  store.Personality `json:"personality"`
	Capabilities []string          `json:"capabilities"`
	Rules        []string          `json:"rules"`
	CreatedAt    int64             `json:"createdAt"`
}

// CronJobResponse is the JSON shape for one scheduled job.
type CronJobResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Schedule          string `json:"schedule"`
	Status            string `json:"status"`
	LastRun           *int64 `json:"lastRun,omitempty"`
	LastStatus        string `json:"lastStatus"`
	ConsecutiveErrors int    `json:"consecutiveErrors"`
	NextRun           *int64 `json:"nextRun,omitempty"`
	CreatedAt         int64  `json:"createdAt"`
}

func systemStatusResponse(st *store.SystemStatus) SystemStatusResponse {
	return SystemStatusResponse{
		ID:           st.ID,
		Name:         st.Name,
		Status:       string(st.Status),
		Port:         st.Port,
		LastCheck:    epochMillis(st.LastCheck),
		ResponseTime: st.ResponseTime,
		Details:      st.Details,
		CreatedAt:    epochMillis(st.CreatedAt),
	}
}

func agentResponse(a *store.Agent) AgentResponse {
	return AgentResponse{
		ID:           a.ID,
		AgentID:      a.AgentID,
		Name:         a.Name,
		Role:         a.Role,
		Model:        a.Model,
		Level:        string(a.Level),
		Status:       string(a.Status),
		Healthy:      a.Healthy,
		LastActive:   epochMillis(a.LastActive),
		Personality:  a.Personality,
		Capabilities: a.Capabilities,
		Rules:        a.Rules,
		CreatedAt:    epochMillis(a.CreatedAt),
	}
}

func cronJobResponse(j *store.CronJob) CronJobResponse {
	return CronJobResponse{
		ID:                j.ID,
		Name:              j.Name,
		Schedule:          j.Schedule,
		Status:            string(j.Status),
		LastRun:           epochMillisPtr(j.LastRun),
		LastStatus:        string(j.LastStatus),
		ConsecutiveErrors: j.ConsecutiveErrors,
		NextRun:           epochMillisPtr(j.NextRun),
		CreatedAt:         epochMillis(j.CreatedAt),
	}
}

// handleSystemStatus handles GET /api/system-status.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	statuses, err := s.store.ListSystemStatus(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]SystemStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		response = append(response, systemStatusResponse(st))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleAgents handles GET /api/agents.
func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	agents, err := s.store.ListAgents(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		response = append(response, agentResponse(a))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleAgentByID handles GET /api/agents/{agentId}, looking up by the
// external agent key rather than the generated id.
func (s *Server) handleAgentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	agentID := strings.TrimPrefix(r.URL.Path, "/api/agents/")
	if agentID == "" || strings.Contains(agentID, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	agent, err := s.store.GetAgentByAgentID(r.Context(), agentID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if agent == nil {
		s.sendJSONError(w, http.StatusNotFound, "agent not found")
		return
	}
	s.writeJSON(w, http.StatusOK, agentResponse(agent))
}

// handleCronJobs handles GET /api/cron-jobs.
func (s *Server) handleCronJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	jobs, err := s.store.ListCronJobs(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]CronJobResponse, 0, len(jobs))
	for _, j := range jobs {
		response = append(response, cronJobResponse(j))
	}
	s.writeJSON(w, http.StatusOK, response)
}
