package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// eachStore runs a subtest against both implementations. The dashboard
// must behave identically whichever backing is configured.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		fn(t, setupTestStore(t))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
}

func TestStore_UpsertSystemStatus(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		port := 8080
		rt := 45
		st := &SystemStatus{
			Name:         "Gateway API",
			Status:       ServiceUp,
			Port:         &port,
			LastCheck:    time.Now(),
			ResponseTime: &rt,
		}
		require.NoError(t, s.UpsertSystemStatus(ctx, st))

		// Reporting again for the same service replaces, not appends.
		st2 := &SystemStatus{
			Name:      "Gateway API",
			Status:    ServiceDegraded,
			LastCheck: time.Now(),
		}
		require.NoError(t, s.UpsertSystemStatus(ctx, st2))

		statuses, err := s.ListSystemStatus(ctx)
		require.NoError(t, err)
		require.Len(t, statuses, 1)
		assert.Equal(t, ServiceDegraded, statuses[0].Status)
	})
}

func TestStore_UpsertSystemStatus_BadVariant(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		err := s.UpsertSystemStatus(context.Background(), &SystemStatus{
			Name:      "Gateway API",
			Status:    "flapping",
			LastCheck: time.Now(),
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "status", verr.Field)
	})
}

func testAgent(agentID string) *Agent {
	return &Agent{
		AgentID:    agentID,
		Name:       "Test Agent",
		Role:       "tester",
		Model:      "claude-opus-4-1",
		Level:      AgentLevelL2,
		Status:     AgentActive,
		Healthy:    true,
		LastActive: time.Now(),
		Personality: Personality{
			Traits: []string{"careful"},
			Tone:   "neutral",
		},
		Capabilities: []string{"testing"},
		Rules:        []string{"no side effects"},
	}
}

func TestStore_GetAgentByAgentID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.CreateAgent(ctx, testAgent("agent-001"))
		require.NoError(t, err)

		got, err := s.GetAgentByAgentID(ctx, "agent-001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Test Agent", got.Name)
		assert.Equal(t, []string{"careful"}, got.Personality.Traits)

		// A missing agent id is not an error.
		got, err = s.GetAgentByAgentID(ctx, "agent-999")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_CreateCronJob(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		lastRun := time.Now().Add(-time.Hour)
		id, err := s.CreateCronJob(ctx, &CronJob{
			Name:       "Daily digest",
			Schedule:   "0 9 * * *",
			Status:     CronEnabled,
			LastRun:    &lastRun,
			LastStatus: CronRunSuccess,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		jobs, err := s.ListCronJobs(ctx)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, "Daily digest", jobs[0].Name)
		require.NotNil(t, jobs[0].LastRun)
	})
}

func testTask(title, category string, priority TaskPriority) *Task {
	return &Task{
		Title:    title,
		Category: category,
		Priority: priority,
		Effort:   Effort1Hour,
		Status:   TaskPending,
	}
}

func TestStore_ListTasks_Filters(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.CreateTask(ctx, testTask("a", "Product", PriorityHigh))
		require.NoError(t, err)
		_, err = s.CreateTask(ctx, testTask("b", "Revenue", PriorityUrgent))
		require.NoError(t, err)
		id, err := s.CreateTask(ctx, testTask("c", "Revenue", PriorityLow))
		require.NoError(t, err)
		require.NoError(t, s.UpdateTaskStatus(ctx, id, TaskCompleted))

		all, err := s.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		category := "Revenue"
		revenue, err := s.ListTasks(ctx, TaskFilter{Category: &category})
		require.NoError(t, err)
		assert.Len(t, revenue, 2)

		// Filters combine with AND.
		status := TaskCompleted
		both, err := s.ListTasks(ctx, TaskFilter{Category: &category, Status: &status})
		require.NoError(t, err)
		require.Len(t, both, 1)
		assert.Equal(t, "c", both[0].Title)
	})
}

func TestStore_UpdateTaskStatus(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		id, err := s.CreateTask(ctx, testTask("approve me", "Product", PriorityHigh))
		require.NoError(t, err)

		require.NoError(t, s.UpdateTaskStatus(ctx, id, TaskApproved))

		tasks, err := s.ListTasks(ctx, TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, TaskApproved, tasks[0].Status)
		assert.NotNil(t, tasks[0].ApprovedAt, "approval should stamp ApprovedAt")

		err = s.UpdateTaskStatus(ctx, "nonexistent", TaskRejected)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_ContentDraftLifecycle(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		id, err := s.CreateContentDraft(ctx, &ContentDraft{
			Title:    "The Future of AI Agents",
			Platform: PlatformBlog,
			Content:  "Autonomous AI agents are reshaping how we work...",
		})
		require.NoError(t, err)

		d, err := s.GetContentDraft(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, DraftDraft, d.Status, "status defaults to draft")
		assert.Equal(t, d.CreatedAt, d.UpdatedAt)

		newStatus := DraftReview
		require.NoError(t, s.UpdateContentDraft(ctx, id, ContentDraftPatch{Status: &newStatus}))

		d, err = s.GetContentDraft(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, DraftReview, d.Status)
		assert.Equal(t, "The Future of AI Agents", d.Title, "unpatched fields survive")
		assert.True(t, d.UpdatedAt.After(d.CreatedAt) || d.UpdatedAt.Equal(d.CreatedAt))

		_, err = s.GetContentDraft(ctx, "nonexistent")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_ListContentDrafts_OrderedByUpdate(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		first, err := s.CreateContentDraft(ctx, &ContentDraft{
			Title: "first", Platform: PlatformBlog, Content: "x",
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
		_, err = s.CreateContentDraft(ctx, &ContentDraft{
			Title: "second", Platform: PlatformEmail, Content: "y",
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)

		// Touching the older draft moves it to the front.
		content := "x, revised"
		require.NoError(t, s.UpdateContentDraft(ctx, first, ContentDraftPatch{Content: &content}))

		drafts, err := s.ListContentDrafts(ctx, nil)
		require.NoError(t, err)
		require.Len(t, drafts, 2)
		assert.Equal(t, "first", drafts[0].Title)
	})
}

func TestStore_CalendarEvents_Range(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		for i, title := range []string{"early", "inside", "late"} {
			_, err := s.CreateCalendarEvent(ctx, &CalendarEvent{
				Title:     title,
				Type:      EventMeeting,
				StartTime: base.AddDate(0, 0, i*10),
				EndTime:   base.AddDate(0, 0, i*10).Add(time.Hour),
			})
			require.NoError(t, err)
		}

		// Range bounds are inclusive of the start time.
		events, err := s.ListCalendarEvents(ctx, base.AddDate(0, 0, 10), base.AddDate(0, 0, 20))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "inside", events[0].Title)
		assert.Equal(t, "late", events[1].Title)
	})
}

func TestStore_CalendarEvents_SubSecondStartInWholeSecondRange(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		// Dashboard range bounds arrive as epoch millis, so whole-second
		// bounds like midnight are the norm while event times carry
		// fractional seconds.
		_, err := s.CreateCalendarEvent(ctx, &CalendarEvent{
			Title:     "fractional",
			Type:      EventMeeting,
			StartTime: base.Add(500 * time.Millisecond),
			EndTime:   base.Add(time.Hour),
		})
		require.NoError(t, err)
		_, err = s.CreateCalendarEvent(ctx, &CalendarEvent{
			Title:     "on the bound",
			Type:      EventMeeting,
			StartTime: base,
			EndTime:   base.Add(time.Hour),
		})
		require.NoError(t, err)

		events, err := s.ListCalendarEvents(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "on the bound", events[0].Title)
		assert.Equal(t, "fractional", events[1].Title)
	})
}

func TestStore_CalendarEvent_UpdateAndDelete(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

		id, err := s.CreateCalendarEvent(ctx, &CalendarEvent{
			Title:     "Standup",
			Type:      EventMeeting,
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Attendees: []string{"sam"},
		})
		require.NoError(t, err)

		title := "Standup (moved)"
		newStart := start.Add(time.Hour)
		require.NoError(t, s.UpdateCalendarEvent(ctx, id, CalendarEventPatch{
			Title:     &title,
			StartTime: &newStart,
		}))

		events, err := s.ListCalendarEvents(ctx, start, start.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Standup (moved)", events[0].Title)
		assert.Equal(t, []string{"sam"}, events[0].Attendees, "unpatched fields survive")

		require.NoError(t, s.DeleteCalendarEvent(ctx, id))
		assert.ErrorIs(t, s.DeleteCalendarEvent(ctx, id), ErrNotFound)
	})
}

func TestStore_Clients(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		id, err := s.CreateClient(ctx, &Client{
			Name:     "Acme Corp",
			Status:   ClientProspect,
			Contacts: []Contact{{Name: "Sarah Chen", Role: "CTO", Email: "sarah@acme.com"}},
		})
		require.NoError(t, err)
		_, err = s.CreateClient(ctx, &Client{Name: "Startup Labs", Status: ClientProposal})
		require.NoError(t, err)

		active := ClientStatus(ClientProspect)
		prospects, err := s.ListClients(ctx, &active)
		require.NoError(t, err)
		require.Len(t, prospects, 1)
		assert.Equal(t, "Acme Corp", prospects[0].Name)

		newStatus := ClientContacted
		require.NoError(t, s.UpdateClient(ctx, id, ClientPatch{Status: &newStatus}))

		all, err := s.ListClients(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, c := range all {
			if c.ID == id {
				assert.Equal(t, ClientContacted, c.Status)
				assert.NotNil(t, c.LastInteraction, "patch refreshes LastInteraction")
				assert.Len(t, c.Contacts, 1)
			}
		}

		err = s.UpdateClient(ctx, "nonexistent", ClientPatch{Status: &newStatus})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_CreateClient_ContactNeedsName(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.CreateClient(context.Background(), &Client{
			Name:     "Acme Corp",
			Status:   ClientProspect,
			Contacts: []Contact{{Email: "nobody@acme.com"}},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "contacts[0].name", verr.Field)
	})
}

func TestStore_EcosystemProducts(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.CreateEcosystemProduct(ctx, &EcosystemProduct{
			Slug:   "mission-control",
			Name:   "Mission Control",
			Status: ProductActive,
			Metrics: map[string]any{
				"users": float64(120),
			},
		})
		require.NoError(t, err)

		p, err := s.GetEcosystemProductBySlug(ctx, "mission-control")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Mission Control", p.Name)
		assert.Equal(t, float64(120), p.Metrics["users"])

		// A missing slug is not an error.
		p, err = s.GetEcosystemProductBySlug(ctx, "vaporware")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestStore_Activities_Limit(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)

		for i := 0; i < 25; i++ {
			_, err := s.AddActivity(ctx, &Activity{
				Type:        "task",
				Description: fmt.Sprintf("activity %d", i),
				Timestamp:   base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
		}

		// Zero limit applies the default of 20, newest first.
		activities, err := s.ListActivities(ctx, 0)
		require.NoError(t, err)
		require.Len(t, activities, DefaultActivityLimit)
		assert.Equal(t, "activity 24", activities[0].Description)

		five, err := s.ListActivities(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, five, 5)
	})
}
