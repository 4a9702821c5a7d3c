// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers database creation, persistence across reopen, and JSON column round-trips

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	id, err := store.CreateTask(ctx, &Task{
		Title:    "survive a restart",
		Category: "Ops",
		Priority: PriorityHigh,
		Effort:   Effort1Hour,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopening store failed: %v", err)
	}
	defer reopened.Close()

	tasks, err := reopened.ListTasks(ctx, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task after reopen, got %d", len(tasks))
	}
	if tasks[0].ID != id {
		t.Errorf("ID mismatch: got %q, want %q", tasks[0].ID, id)
	}
	if tasks[0].Title != "survive a restart" {
		t.Errorf("Title mismatch: got %q", tasks[0].Title)
	}
}

func TestSQLiteStore_AgentJSONRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	agent := testAgent("agent-042")
	agent.Personality = Personality{
		Traits: []string{"analytical", "direct"},
		Tone:   "professional",
	}
	agent.Capabilities = []string{"task_planning", "code_review"}
	agent.Rules = []string{"always verify before executing"}

	if _, err := store.CreateAgent(ctx, agent); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}

	got, err := store.GetAgentByAgentID(ctx, "agent-042")
	if err != nil {
		t.Fatalf("GetAgentByAgentID failed: %v", err)
	}
	if got == nil {
		t.Fatal("agent not found after create")
	}
	if len(got.Personality.Traits) != 2 || got.Personality.Traits[0] != "analytical" {
		t.Errorf("Personality traits mismatch: got %v", got.Personality.Traits)
	}
	if got.Personality.Tone != "professional" {
		t.Errorf("Personality tone mismatch: got %q", got.Personality.Tone)
	}
	if len(got.Capabilities) != 2 {
		t.Errorf("Capabilities mismatch: got %v", got.Capabilities)
	}
	if len(got.Rules) != 1 {
		t.Errorf("Rules mismatch: got %v", got.Rules)
	}
}

func TestSQLiteStore_TimestampPrecision(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// Records created within the same millisecond must still come back
	// newest-first deterministically.
	for i := 0; i < 5; i++ {
		if _, err := store.CreateTask(ctx, &Task{
			Title:    "burst",
			Category: "Ops",
			Priority: PriorityLow,
			Effort:   Effort1Hour,
		}); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}

	first, err := store.ListTasks(ctx, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	second, err := store.ListTasks(ctx, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("ordering not stable at index %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}

	if len(first) > 0 {
		later := time.Now()
		if first[0].CreatedAt.After(later) {
			t.Errorf("CreatedAt in the future: %v", first[0].CreatedAt)
		}
	}
}

func TestFormatTime_LexicalOrderMatchesChronological(t *testing.T) {
	// Stored timestamps are compared as strings by SQL range predicates
	// and ORDER BY clauses, so the encoding must sort lexicographically
	// the way the times sort chronologically. Same-second times with
	// different fractional widths are the trap: RFC3339Nano would render
	// ".5Z" and "Z" and misorder them.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(500 * time.Millisecond),
		base.Add(999 * time.Millisecond),
		base.Add(time.Second),
		base.Add(time.Second + time.Nanosecond),
	}

	width := len(formatTime(base))
	for i := 1; i < len(times); i++ {
		prev, cur := formatTime(times[i-1]), formatTime(times[i])
		if len(cur) != width {
			t.Errorf("variable-width encoding: %q (%d) vs %q (%d)", prev, width, cur, len(cur))
		}
		if !(prev < cur) {
			t.Errorf("lexical order diverges from chronological: %q >= %q", prev, cur)
		}
		if got := parseTime(cur); !got.Equal(times[i]) {
			t.Errorf("round trip lost precision: %v != %v", got, times[i])
		}
	}
}
