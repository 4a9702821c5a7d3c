// ABOUTME: In-memory Store implementation used as the fallback when no database is configured
// ABOUTME: Applies the same validation and ordering as SQLiteStore but persists nothing

package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation. It backs the
// dashboard when no SQLite path is configured and the test suite. All
// mutations succeed but nothing survives a restart.
type MemoryStore struct {
	mu            sync.RWMutex
	logger        *slog.Logger
	statuses      map[string]*SystemStatus // keyed by id
	statusByName  map[string]string        // service name -> id
	agents        map[string]*Agent        // keyed by id
	cronJobs      map[string]*CronJob      // keyed by id
	tasks         map[string]*Task         // keyed by id
	drafts        map[string]*ContentDraft // keyed by id
	events        map[string]*CalendarEvent
	messages      map[string][]*ChatMessage // keyed by session key
	sessions      map[string]*ChatSession   // keyed by session key
	clients       map[string]*Client
	products      map[string]*EcosystemProduct
	productBySlug map[string]string // slug -> id
	activities    []*Activity
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logger:        slog.Default().With("component", "store"),
		statuses:      make(map[string]*SystemStatus),
		statusByName:  make(map[string]string),
		agents:        make(map[string]*Agent),
		cronJobs:      make(map[string]*CronJob),
		tasks:         make(map[string]*Task),
		drafts:        make(map[string]*ContentDraft),
		events:        make(map[string]*CalendarEvent),
		messages:      make(map[string][]*ChatMessage),
		sessions:      make(map[string]*ChatSession),
		clients:       make(map[string]*Client),
		products:      make(map[string]*EcosystemProduct),
		productBySlug: make(map[string]string),
	}
}

// sortByCreatedDesc mirrors the SQLite ordering: created_at DESC with
// the id as a tie-breaker for records created in the same instant.
func sortByCreatedDesc[T any](items []T, createdAt func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ti, tj := createdAt(items[i]), createdAt(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return id(items[i]) > id(items[j])
	})
}

// ListSystemStatus returns all monitored services, newest first.
func (m *MemoryStore) ListSystemStatus(ctx context.Context) ([]*SystemStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*SystemStatus, 0, len(m.statuses))
	for _, st := range m.statuses {
		stCopy := *st
		result = append(result, &stCopy)
	}
	sortByCreatedDesc(result, func(s *SystemStatus) time.Time { return s.CreatedAt },
		func(s *SystemStatus) string { return s.ID })
	return result, nil
}

// UpsertSystemStatus inserts or replaces the row for a service by name.
func (m *MemoryStore) UpsertSystemStatus(ctx context.Context, st *SystemStatus) error {
	if err := ValidateSystemStatus(st); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stCopy := *st
	if existingID, ok := m.statusByName[st.Name]; ok {
		// Keep the original identity and creation time.
		existing := m.statuses[existingID]
		stCopy.ID = existing.ID
		stCopy.CreatedAt = existing.CreatedAt
	} else {
		if stCopy.ID == "" {
			stCopy.ID = newID()
		}
		if stCopy.CreatedAt.IsZero() {
			stCopy.CreatedAt = time.Now()
		}
	}
	m.statuses[stCopy.ID] = &stCopy
	m.statusByName[stCopy.Name] = stCopy.ID
	st.ID = stCopy.ID
	return nil
}

// ListAgents returns all agents, newest first.
func (m *MemoryStore) ListAgents(ctx context.Context) ([]*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Agent, 0, len(m.agents))
	for _, a := range m.agents {
		aCopy := *a
		result = append(result, &aCopy)
	}
	sortByCreatedDesc(result, func(a *Agent) time.Time { return a.CreatedAt },
		func(a *Agent) string { return a.ID })
	return result, nil
}

// GetAgentByAgentID looks up an agent by its external key.
// Returns (nil, nil) when no agent matches - not an error.
func (m *MemoryStore) GetAgentByAgentID(ctx context.Context, agentID string) (*Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.agents {
		if a.AgentID == agentID {
			aCopy := *a
			return &aCopy, nil
		}
	}
	return nil, nil
}

// CreateAgent stores a new agent and returns its generated identifier.
func (m *MemoryStore) CreateAgent(ctx context.Context, a *Agent) (string, error) {
	if err := ValidateAgent(a); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if a.LastActive.IsZero() {
		a.LastActive = time.Now()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	aCopy := *a
	aCopy.ID = newID()
	m.agents[aCopy.ID] = &aCopy
	return aCopy.ID, nil
}

// ListCronJobs returns all scheduled jobs, newest first.
func (m *MemoryStore) ListCronJobs(ctx context.Context) ([]*CronJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*CronJob, 0, len(m.cronJobs))
	for _, j := range m.cronJobs {
		jCopy := *j
		result = append(result, &jCopy)
	}
	sortByCreatedDesc(result, func(j *CronJob) time.Time { return j.CreatedAt },
		func(j *CronJob) string { return j.ID })
	return result, nil
}

// CreateCronJob stores a new scheduled job and returns its identifier.
func (m *MemoryStore) CreateCronJob(ctx context.Context, j *CronJob) (string, error) {
	if err := ValidateCronJob(j); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	jCopy := *j
	jCopy.ID = newID()
	m.cronJobs[jCopy.ID] = &jCopy
	return jCopy.ID, nil
}

// ListTasks returns tasks matching the filter, newest first.
func (m *MemoryStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Task
	for _, t := range m.tasks {
		if filter.Category != nil && t.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		tCopy := *t
		result = append(result, &tCopy)
	}
	sortByCreatedDesc(result, func(t *Task) time.Time { return t.CreatedAt },
		func(t *Task) string { return t.ID })
	return result, nil
}

// CreateTask stores a new task and returns its identifier. Status
// defaults to pending when unset.
func (m *MemoryStore) CreateTask(ctx context.Context, t *Task) (string, error) {
	if t.Status == "" {
		t.Status = TaskPending
	}
	if err := ValidateTask(t); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	tCopy := *t
	tCopy.ID = newID()
	m.tasks[tCopy.ID] = &tCopy
	return tCopy.ID, nil
}

// UpdateTaskStatus moves a task to a new workflow state. Moving to
// approved stamps ApprovedAt. Returns ErrNotFound for unknown ids.
func (m *MemoryStore) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus) error {
	if err := ValidateTaskStatus(status); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	if status == TaskApproved {
		now := time.Now()
		t.ApprovedAt = &now
	}
	return nil
}

// ListContentDrafts returns drafts ordered by updated time descending,
// optionally filtered to one pipeline status.
func (m *MemoryStore) ListContentDrafts(ctx context.Context, status *DraftStatus) ([]*ContentDraft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*ContentDraft
	for _, d := range m.drafts {
		if status != nil && d.Status != *status {
			continue
		}
		dCopy := *d
		result = append(result, &dCopy)
	}
	sortByCreatedDesc(result, func(d *ContentDraft) time.Time { return d.UpdatedAt },
		func(d *ContentDraft) string { return d.ID })
	return result, nil
}

// GetContentDraft retrieves a draft by identifier.
func (m *MemoryStore) GetContentDraft(ctx context.Context, draftID string) (*ContentDraft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return nil, ErrNotFound
	}
	dCopy := *d
	return &dCopy, nil
}

// CreateContentDraft stores a new draft with both timestamps set to now.
func (m *MemoryStore) CreateContentDraft(ctx context.Context, d *ContentDraft) (string, error) {
	if d.Status == "" {
		d.Status = DraftDraft
	}
	if err := ValidateContentDraft(d); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	dCopy := *d
	dCopy.ID = newID()
	m.drafts[dCopy.ID] = &dCopy
	return dCopy.ID, nil
}

// UpdateContentDraft applies a sparse patch and refreshes UpdatedAt.
// Returns ErrNotFound for unknown ids.
func (m *MemoryStore) UpdateContentDraft(ctx context.Context, draftID string, patch ContentDraftPatch) error {
	if err := ValidateContentDraftPatch(patch); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		d.Title = *patch.Title
	}
	if patch.Content != nil {
		d.Content = *patch.Content
	}
	if patch.Status != nil {
		d.Status = *patch.Status
	}
	d.UpdatedAt = time.Now()
	return nil
}

// ListCalendarEvents returns events whose start time falls within the
// inclusive [from, to] range, ordered by start time ascending.
func (m *MemoryStore) ListCalendarEvents(ctx context.Context, from, to time.Time) ([]*CalendarEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*CalendarEvent
	for _, e := range m.events {
		if e.StartTime.Before(from) || e.StartTime.After(to) {
			continue
		}
		eCopy := *e
		result = append(result, &eCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CreateCalendarEvent stores a new event and returns its identifier.
func (m *MemoryStore) CreateCalendarEvent(ctx context.Context, e *CalendarEvent) (string, error) {
	if err := ValidateCalendarEvent(e); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	eCopy := *e
	eCopy.ID = newID()
	m.events[eCopy.ID] = &eCopy
	return eCopy.ID, nil
}

// UpdateCalendarEvent applies a sparse patch to an event.
// Returns ErrNotFound for unknown ids.
func (m *MemoryStore) UpdateCalendarEvent(ctx context.Context, eventID string, patch CalendarEventPatch) error {
	if err := ValidateCalendarEventPatch(patch); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Type != nil {
		e.Type = *patch.Type
	}
	if patch.StartTime != nil {
		e.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		e.EndTime = *patch.EndTime
	}
	if patch.Color != nil {
		e.Color = *patch.Color
	}
	if patch.Attendees != nil {
		e.Attendees = append([]string(nil), *patch.Attendees...)
	}
	if patch.Recurring != nil {
		e.Recurring = *patch.Recurring
	}
	return nil
}

// DeleteCalendarEvent removes an event. Returns ErrNotFound for unknown ids.
func (m *MemoryStore) DeleteCalendarEvent(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[eventID]; !ok {
		return ErrNotFound
	}
	delete(m.events, eventID)
	return nil
}

// ListChatSessions returns all sessions, most recently created first.
func (m *MemoryStore) ListChatSessions(ctx context.Context) ([]*ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*ChatSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessCopy := *sess
		result = append(result, &sessCopy)
	}
	sortByCreatedDesc(result, func(s *ChatSession) time.Time { return s.CreatedAt },
		func(s *ChatSession) string { return s.ID })
	return result, nil
}

// ListChatMessages returns the most recent messages for a session in
// chronological order. A limit of zero applies DefaultChatMessageLimit.
func (m *MemoryStore) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = normalizeLimit(limit, DefaultChatMessageLimit)

	msgs := m.messages[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	result := make([]*ChatMessage, len(msgs))
	for i, msg := range msgs {
		msgCopy := *msg
		result[i] = &msgCopy
	}
	return result, nil
}

// AppendChatMessage records a message and updates its session rollup.
// The write lock spans both steps so concurrent appends to one session
// never lose a count increment.
func (m *MemoryStore) AppendChatMessage(ctx context.Context, msg *ChatMessage) (time.Time, error) {
	if err := ValidateChatMessage(msg); err != nil {
		return time.Time{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	msgCopy := *msg
	msgCopy.ID = newID()
	msgCopy.Timestamp = now
	msgCopy.CreatedAt = now
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], &msgCopy)

	sess, ok := m.sessions[msg.SessionID]
	if !ok {
		sess = &ChatSession{
			ID:         newID(),
			SessionKey: msg.SessionID,
			Channel:    string(msg.Channel),
			CreatedAt:  now,
		}
		m.sessions[msg.SessionID] = sess
	}
	sess.LastMessage = msg.Content
	lastTime := now
	sess.LastMessageTime = &lastTime
	sess.MessageCount++

	msg.ID = msgCopy.ID
	msg.Timestamp = now
	msg.CreatedAt = now
	return now, nil
}

// ListClients returns clients newest first, optionally filtered to one
// pipeline status.
func (m *MemoryStore) ListClients(ctx context.Context, status *ClientStatus) ([]*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Client
	for _, c := range m.clients {
		if status != nil && c.Status != *status {
			continue
		}
		cCopy := *c
		result = append(result, &cCopy)
	}
	sortByCreatedDesc(result, func(c *Client) time.Time { return c.CreatedAt },
		func(c *Client) string { return c.ID })
	return result, nil
}

// CreateClient stores a new CRM entry and returns its identifier.
func (m *MemoryStore) CreateClient(ctx context.Context, c *Client) (string, error) {
	if err := ValidateClient(c); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	cCopy := *c
	cCopy.ID = newID()
	cCopy.Contacts = append([]Contact(nil), c.Contacts...)
	m.clients[cCopy.ID] = &cCopy
	return cCopy.ID, nil
}

// UpdateClient applies a sparse patch and refreshes LastInteraction.
// Returns ErrNotFound for unknown ids.
func (m *MemoryStore) UpdateClient(ctx context.Context, clientID string, patch ClientPatch) error {
	if err := ValidateClientPatch(patch); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[clientID]
	if !ok {
		return ErrNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Contacts != nil {
		c.Contacts = append([]Contact(nil), *patch.Contacts...)
	}
	if patch.NextAction != nil {
		c.NextAction = *patch.NextAction
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	now := time.Now()
	c.LastInteraction = &now
	return nil
}

// ListEcosystemProducts returns the full product catalog, newest first.
func (m *MemoryStore) ListEcosystemProducts(ctx context.Context) ([]*EcosystemProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*EcosystemProduct, 0, len(m.products))
	for _, p := range m.products {
		pCopy := *p
		result = append(result, &pCopy)
	}
	sortByCreatedDesc(result, func(p *EcosystemProduct) time.Time { return p.CreatedAt },
		func(p *EcosystemProduct) string { return p.ID })
	return result, nil
}

// GetEcosystemProductBySlug looks up one product by its URL slug.
// Returns (nil, nil) when no product matches - not an error.
func (m *MemoryStore) GetEcosystemProductBySlug(ctx context.Context, slug string) (*EcosystemProduct, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.productBySlug[slug]
	if !ok {
		return nil, nil
	}
	pCopy := *m.products[id]
	return &pCopy, nil
}

// CreateEcosystemProduct stores a new catalog entry and returns its identifier.
func (m *MemoryStore) CreateEcosystemProduct(ctx context.Context, p *EcosystemProduct) (string, error) {
	if err := ValidateEcosystemProduct(p); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	pCopy := *p
	pCopy.ID = newID()
	m.products[pCopy.ID] = &pCopy
	m.productBySlug[pCopy.Slug] = pCopy.ID
	return pCopy.ID, nil
}

// ListActivities returns the most recent feed entries, newest first.
// A limit of zero applies DefaultActivityLimit.
func (m *MemoryStore) ListActivities(ctx context.Context, limit int) ([]*Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = normalizeLimit(limit, DefaultActivityLimit)

	result := make([]*Activity, 0, len(m.activities))
	for _, a := range m.activities {
		aCopy := *a
		result = append(result, &aCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID > result[j].ID
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// AddActivity records a feed entry and returns its identifier.
func (m *MemoryStore) AddActivity(ctx context.Context, a *Activity) (string, error) {
	if err := ValidateActivity(a); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	aCopy := *a
	aCopy.ID = newID()
	m.activities = append(m.activities, &aCopy)
	a.ID = aCopy.ID
	return aCopy.ID, nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error {
	return nil
}

// Verify MemoryStore implements Store interface at compile time.
var _ Store = (*MemoryStore)(nil)
