// ABOUTME: HTTP handlers for CRM clients, ecosystem products, and the activity feed
// ABOUTME: Also hosts the seed trigger and the read-only llm config endpoint

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hmdre39/mission-control-dashboard/internal/store"
)

// ClientResponse is the JSON shape for one CRM client.
type ClientResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	Contacts        []store.Contact `json:"contacts"`
	LastInteraction *int64          `json:"lastInteraction,omitempty"`
	NextAction      string          `json:"nextAction,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       int64           `json:"createdAt"`
}

// CreateClientRequest is the body for POST /api/clients.
type CreateClientRequest struct {
	Name       string          `json:"name"`
	Status     string          `json:"status"`
	Contacts   []store.Contact `json:"contacts,omitempty"`
	NextAction string          `json:"nextAction,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// UpdateClientRequest is the body for PATCH /api/clients/{id}.
type UpdateClientRequest struct {
	Name       *string          `json:"name,omitempty"`
	Status     *string          `json:"status,omitempty"`
	Contacts   *[]store.Contact `json:"contacts,omitempty"`
	NextAction *string          `json:"nextAction,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
}

// ProductResponse is the JSON shape for one ecosystem product,
// including the opaque presentation-owned sections.
type ProductResponse struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	Description string         `json:"description,omitempty"`
	Website     string         `json:"website,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	Brand       map[string]any `json:"brand,omitempty"`
	Community   map[string]any `json:"community,omitempty"`
	Content     map[string]any `json:"content,omitempty"`
	Legal       map[string]any `json:"legal,omitempty"`
	Product     map[string]any `json:"product,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
}

// ActivityResponse is the JSON shape for one activity feed entry.
type ActivityResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Timestamp   int64          `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   int64          `json:"createdAt"`
}

// AddActivityRequest is the body for POST /api/activities.
type AddActivityRequest struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// SeedResponse is the JSON response for POST /api/seed.
type SeedResponse struct {
	Inserted int `json:"inserted"`
}

func clientResponse(c *store.Client) ClientResponse {
	contacts := c.Contacts
	if contacts == nil {
		contacts = []store.Contact{}
	}
	return ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		Status:          string(c.Status),
		Contacts:        contacts,
		LastInteraction: epochMillisPtr(c.LastInteraction),
		NextAction:      c.NextAction,
		Notes:           c.Notes,
		CreatedAt:       epochMillis(c.CreatedAt),
	}
}

func productResponse(p *store.EcosystemProduct) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Status:      string(p.Status),
		Description: p.Description,
		Website:     p.Website,
		Metrics:     p.Metrics,
		Brand:       p.Brand,
		Community:   p.Community,
		Content:     p.Content,
		Legal:       p.Legal,
		Product:     p.Product,
		CreatedAt:   epochMillis(p.CreatedAt),
	}
}

func activityResponse(a *store.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		Type:        a.Type,
		Description: a.Description,
		Timestamp:   epochMillis(a.Timestamp),
		Metadata:    a.Metadata,
		CreatedAt:   epochMillis(a.CreatedAt),
	}
}

// handleClients handles GET and POST /api/clients.
func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListClients(w, r)
	case http.MethodPost:
		s.handleCreateClient(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListClients handles GET /api/clients?status=X.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	var status *store.ClientStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		cs := store.ClientStatus(statusStr)
		status = &cs
	}

	clients, err := s.store.ListClients(r.Context(), status)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		response = append(response, clientResponse(c))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleCreateClient handles POST /api/clients.
func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	client := &store.Client{
		Name:       req.Name,
		Status:     store.ClientStatus(req.Status),
		Contacts:   req.Contacts,
		NextAction: req.NextAction,
		Notes:      req.Notes,
	}

	id, err := s.store.CreateClient(r.Context(), client)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	client.ID = id
	s.writeJSON(w, http.StatusCreated, clientResponse(client))
}

// handleClientByID handles PATCH /api/clients/{id}.
func (s *Server) handleClientByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	clientID := strings.TrimPrefix(r.URL.Path, "/api/clients/")
	if clientID == "" || strings.Contains(clientID, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "client id is required")
		return
	}

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := store.ClientPatch{
		Name:       req.Name,
		Contacts:   req.Contacts,
		NextAction: req.NextAction,
		Notes:      req.Notes,
	}
	if req.Status != nil {
		cs := store.ClientStatus(*req.Status)
		patch.Status = &cs
	}

	if err := s.store.UpdateClient(r.Context(), clientID, patch); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProducts handles GET /api/products.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	products, err := s.store.ListEcosystemProducts(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, productResponse(p))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleProductBySlug handles GET /api/products/{slug}.
func (s *Server) handleProductBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if slug == "" || strings.Contains(slug, "/") {
		s.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	product, err := s.store.GetEcosystemProductBySlug(r.Context(), slug)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if product == nil {
		s.sendJSONError(w, http.StatusNotFound, "product not found")
		return
	}
	s.writeJSON(w, http.StatusOK, productResponse(product))
}

// handleActivities handles GET and POST /api/activities.
func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListActivities(w, r)
	case http.MethodPost:
		s.handleAddActivity(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListActivities handles GET /api/activities?limit=N.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			s.sendJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	activities, err := s.store.ListActivities(r.Context(), limit)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	response := make([]ActivityResponse, 0, len(activities))
	for _, a := range activities {
		response = append(response, activityResponse(a))
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleAddActivity handles POST /api/activities.
func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var req AddActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	activity := &store.Activity{
		Type:        req.Type,
		Description: req.Description,
		Metadata:    req.Metadata,
	}

	id, err := s.store.AddActivity(r.Context(), activity)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	activity.ID = id
	s.writeJSON(w, http.StatusCreated, activityResponse(activity))
}

// handleSeed handles POST /api/seed, loading the sample fixtures into
// the backing store. Seeding is idempotent per collection.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	inserted, err := store.Seed(r.Context(), s.store, s.fixtures)
	if err != nil {
		s.logger.Error("seeding failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "seeding failed")
		return
	}

	s.logger.Info("seeded store", "inserted", inserted)
	s.writeJSON(w, http.StatusOK, SeedResponse{Inserted: inserted})
}

// handleLLMConfig handles GET /api/llm/config.
func (s *Server) handleLLMConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.llm.Snapshot())
}
