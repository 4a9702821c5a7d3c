// ABOUTME: HTTP handlers for tasks, content drafts, and calendar events
// ABOUTME: Covers the approval workflow, draft pipeline with markdown preview, and calendar CRUD

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

// TaskResponse is the JSON shape for one task.
type TaskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Effort      string `json:"effort"`
	Reasoning   string `json:"reasoning,omitempty"`
	NextAction  string `json:"nextAction,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	ApprovedAt  *int64 `json:"approvedAt,omitempty"`
}

// CreateTaskRequest is the JSON request body for POST /api/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority"`
	Effort      string `json:"effort"`
	Reasoning   string `json:"reasoning,omitempty"`
	NextAction  string `json:"nextAction,omitempty"`
}

// UpdateTaskStatusRequest is the body for PATCH /api/tasks/{id}/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// ContentDraftResponse is the JSON shape for one content draft.
type ContentDraftResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Platform     string `json:"platform"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
	ScheduledFor *int64 `json:"scheduledFor,omitempty"`
}

// CreateContentDraftRequest is the body for POST /api/content-drafts.
type CreateContentDraftRequest struct {
	Title        string `json:"title"`
	Platform     string `json:"platform"`
	Content      string `json:"content"`
	Status       string `json:"status,omitempty"`
	ScheduledFor *int64 `json:"scheduledFor,omitempty"`
}

// UpdateContentDraftRequest is the body for PATCH /api/content-drafts/{id}.
// Absent fields are left unchanged.
type UpdateContentDraftRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// CalendarEventResponse is the JSON shape for one calendar event.
type CalendarEventResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	StartTime   int64    `json:"startTime"`
	EndTime     int64    `json:"endTime"`
	Color       string   `json:"color,omitempty"`
	Attendees   []string `json:"attendees"`
	Recurring   bool     `json:"recurring"`
	CreatedAt   int64    `json:"createdAt"`
}

// CreateCalendarEventRequest is the body for POST /api/calendar-events.
type CreateCalendarEventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	StartTime   int64    `json:"startTime"`
	EndTime     int64    `json:"endTime"`
	Color       string   `json:"color,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	Recurring   bool     `json:"recurring,omitempty"`
}

// UpdateCalendarEventRequest is the body for PATCH /api/calendar-events/{id}.
type UpdateCalendarEventRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Type        *string   `json:"type,omitempty"`
	StartTime   *int64    `json:"startTime,omitempty"`
	EndTime     *int64    `json:"endTime,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Attendees   *[]string `json:"attendees,omitempty"`
	Recurring   *bool     `json:"recurring,omitempty"`
}

func taskResponse(t *store.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Effort:      string(t.Effort),
		Reasoning:   t.Reasoning,
		NextAction:  t.NextAction,
		CreatedAt:   epochMillis(t.CreatedAt),
		ApprovedAt:  epochMillisPtr(t.ApprovedAt),
	}
}

func contentDraftResponse(d *store.ContentDraft) ContentDraftResponse {
	return ContentDraftResponse{
		ID:           d.ID,
		Title:        d.Title,
		Platform:     string(d.Platform),
		Content:      d.Content,
		Status:       string(d.Status),
		CreatedAt:    epochMillis(d.CreatedAt),
		UpdatedAt:    epochMillis(d.UpdatedAt),
		ScheduledFor: epochMillisPtr(d.ScheduledFor),
	}
}

func calendarEventResponse(e *store.CalendarEvent) CalendarEventResponse {
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return CalendarEventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Type:        string(e.Type),
		StartTime:   epochMillis(e.StartTime),
		EndTime:     epochMillis(e.EndTime),
		Color:       e.Color,
		Attendees:   attendees,
		Recurring:   e.Recurring,
		CreatedAt:   epochMillis(e.CreatedAt),
	}
}

// handleTasks handles GET and POST /api/tasks.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTasks(w, r)
	case http.MethodPost:
		s.handleCreateTask(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListTasks handles GET /api/tasks?category=X&status=Y. Both
// filters are optional and combine with AND.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var filter store.TaskFilter
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := store.TaskStatus(statusStr)
		if err := store.ValidateTaskStatus(status); err != nil {
			s.writeStoreError(w, err)
			return
		}
		filter.Status = &status
	}

	tasks, err := s.store.ListTasks(r.Context(), filter)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		response = append(response, taskResponse(t))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleCreateTask handles POST /api/tasks.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task := &store.Task{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Status:      store.TaskStatus(req.Status),
		Priority:    store.TaskPriority(req.Priority),
		Effort:      store.TaskEffort(req.Effort),
		Reasoning:   req.Reasoning,
		NextAction:  req.NextAction,
	}

	id, err := s.store.CreateTask(r.Context(), task)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	task.ID = id
	s.writeJSON(w, http.StatusCreated, taskResponse(task))
}

// handleTaskStatus handles PATCH /api/tasks/{id}/status.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Path
	prefix := "/api/tasks/"
	suffix := "/status"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	taskID := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if taskID == "" || strings.Contains(taskID, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "task id is required")
		return
	}

	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.store.UpdateTaskStatus(r.Context(), taskID, store.TaskStatus(req.Status)); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleContentDrafts handles GET and POST /api/content-drafts.
func (s *Server) handleContentDrafts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListContentDrafts(w, r)
	case http.MethodPost:
		s.handleCreateContentDraft(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListContentDrafts handles GET /api/content-drafts?status=X.
func (s *Server) handleListContentDrafts(w http.ResponseWriter, r *http.Request) {
	var status *store.DraftStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		ds := store.DraftStatus(statusStr)
		status = &ds
	}

	drafts, err := s.store.ListContentDrafts(r.Context(), status)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]ContentDraftResponse, 0, len(drafts))
	for _, d := range drafts {
		response = append(response, contentDraftResponse(d))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleCreateContentDraft handles POST /api/content-drafts.
func (s *Server) handleCreateContentDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateContentDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	draft := &store.ContentDraft{
		Title:    req.Title,
		Platform: store.ContentPlatform(req.Platform),
		Content:  req.Content,
		Status:   store.DraftStatus(req.Status),
	}
	if req.ScheduledFor != nil {
		t := parseEpochMillis(*req.ScheduledFor)
		draft.ScheduledFor = &t
	}

	id, err := s.store.CreateContentDraft(r.Context(), draft)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	draft.ID = id
	s.writeJSON(w, http.StatusCreated, contentDraftResponse(draft))
}

// handleContentDraftByID routes /api/content-drafts/{id} and
// /api/content-drafts/{id}/preview.
func (s *Server) handleContentDraftByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/content-drafts/")

	if strings.HasSuffix(rest, "/preview") {
		draftID := strings.TrimSuffix(rest, "/preview")
		if r.Method != http.MethodGet || draftID == "" || strings.Contains(draftID, "/") {
			s.sendJSONError(w, http.StatusBadRequest, "invalid path")
			return
		}
		s.handleContentDraftPreview(w, r, draftID)
		return
	}

	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "draft id is required")
		return
	}

	var req UpdateContentDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := store.ContentDraftPatch{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Status != nil {
		status := store.DraftStatus(*req.Status)
		patch.Status = &status
	}

	if err := s.store.UpdateContentDraft(r.Context(), rest, patch); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleContentDraftPreview renders a draft's markdown body as HTML.
func (s *Server) handleContentDraftPreview(w http.ResponseWriter, r *http.Request, draftID string) {
	draft, err := s.store.GetContentDraft(r.Context(), draftID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(draft.Content), &htmlBuf); err != nil {
		s.logger.Error("failed to convert markdown", "draft_id", draftID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(htmlBuf.Bytes())
}

// handleCalendarEvents handles GET and POST /api/calendar-events.
func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListCalendarEvents(w, r)
	case http.MethodPost:
		s.handleCreateCalendarEvent(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListCalendarEvents handles GET /api/calendar-events?from=X&to=Y
// with inclusive epoch-millis bounds on event start time.
func (s *Server) handleListCalendarEvents(w http.ResponseWriter, r *http.Request) {
	from, err := parseMillisParam(r, "from")
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "from must be epoch milliseconds")
		return
	}
	to, err := parseMillisParam(r, "to")
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "to must be epoch milliseconds")
		return
	}

	events, err := s.store.ListCalendarEvents(r.Context(), from, to)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]CalendarEventResponse, 0, len(events))
	for _, e := range events {
		response = append(response, calendarEventResponse(e))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// parseMillisParam reads a required epoch-millis query parameter.
func parseMillisParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return parseEpochMillis(ms), nil
}

// handleCreateCalendarEvent handles POST /api/calendar-events.
func (s *Server) handleCreateCalendarEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateCalendarEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	event := &store.CalendarEvent{
		Title:       req.Title,
		Description: req.Description,
		Type:        store.EventType(req.Type),
		StartTime:   parseEpochMillis(req.StartTime),
		EndTime:     parseEpochMillis(req.EndTime),
		Color:       req.Color,
		Attendees:   req.Attendees,
		Recurring:   req.Recurring,
	}

	id, err := s.store.CreateCalendarEvent(r.Context(), event)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	event.ID = id
	s.writeJSON(w, http.StatusCreated, calendarEventResponse(event))
}

// handleCalendarEventByID handles PATCH and DELETE /api/calendar-events/{id}.
func (s *Server) handleCalendarEventByID(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimPrefix(r.URL.Path, "/api/calendar-events/")
	if eventID == "" || strings.Contains(eventID, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "event id is required")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		s.handleUpdateCalendarEvent(w, r, eventID)
	case http.MethodDelete:
		if err := s.store.DeleteCalendarEvent(r.Context(), eventID); err != nil {
			s.writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUpdateCalendarEvent applies a sparse patch to one event.
func (s *Server) handleUpdateCalendarEvent(w http.ResponseWriter, r *http.Request, eventID string) {
	var req UpdateCalendarEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := store.CalendarEventPatch{
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Attendees:   req.Attendees,
		Recurring:   req.Recurring,
	}
	if req.Type != nil {
		et := store.EventType(*req.Type)
		patch.Type = &et
	}
	if req.StartTime != nil {
		t := parseEpochMillis(*req.StartTime)
		patch.StartTime = &t
	}
	if req.EndTime != nil {
		t := parseEpochMillis(*req.EndTime)
		patch.EndTime = &t
	}

	if err := s.store.UpdateCalendarEvent(r.Context(), eventID, patch); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
