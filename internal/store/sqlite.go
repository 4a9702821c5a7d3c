// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Handles schema creation plus system status, agent, and cron job persistence

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Serialized writes: the session upsert relies on transactions being
	// applied one at a time
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// Indexes document the expected query patterns; reads filtering on
// non-indexed fields still return correct results.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS system_status (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			port INTEGER,
			last_check TEXT NOT NULL,
			response_time INTEGER,
			details TEXT,
			created_at TEXT NOT NULL,

			CHECK (status IN ('up', 'down', 'degraded'))
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_system_status_name ON system_status(name);
		CREATE INDEX IF NOT EXISTS idx_system_status_status ON system_status(status);

		CREATE TABLE IF NOT EXISTS agents (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			model TEXT NOT NULL,
			level TEXT NOT NULL,
			status TEXT NOT NULL,
			healthy INTEGER NOT NULL,
			last_active TEXT NOT NULL,
			personality TEXT NOT NULL,
			capabilities TEXT NOT NULL,
			rules TEXT NOT NULL,
			created_at TEXT NOT NULL,

			CHECK (level IN ('L1', 'L2', 'L3', 'L4')),
			CHECK (status IN ('active', 'idle', 'error'))
		);

		CREATE INDEX IF NOT EXISTS idx_agents_agent_id ON agents(agent_id);
		CREATE INDEX IF NOT EXISTS idx_agents_status ON agents(status);

		CREATE TABLE IF NOT EXISTS cron_jobs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			schedule TEXT NOT NULL,
			status TEXT NOT NULL,
			last_run TEXT,
			last_status TEXT NOT NULL,
			consecutive_errors INTEGER NOT NULL DEFAULT 0,
			next_run TEXT,
			created_at TEXT NOT NULL,

			CHECK (status IN ('enabled', 'disabled', 'error')),
			CHECK (last_status IN ('success', 'error', 'pending'))
		);

		CREATE INDEX IF NOT EXISTS idx_cron_jobs_name ON cron_jobs(name);
		CREATE INDEX IF NOT EXISTS idx_cron_jobs_status ON cron_jobs(status);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			effort TEXT NOT NULL,
			reasoning TEXT,
			next_action TEXT,
			created_at TEXT NOT NULL,
			approved_at TEXT,

			CHECK (status IN ('pending', 'approved', 'rejected', 'completed')),
			CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
			CHECK (effort IN ('1h', '4h', '1d', '3d', '1w'))
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
		CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);

		CREATE TABLE IF NOT EXISTS content_drafts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			platform TEXT NOT NULL,
			content TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			scheduled_for TEXT,

			CHECK (platform IN ('twitter', 'blog', 'email', 'discord', 'other')),
			CHECK (status IN ('draft', 'review', 'approved', 'published'))
		);

		CREATE INDEX IF NOT EXISTS idx_content_drafts_status ON content_drafts(status);
		CREATE INDEX IF NOT EXISTS idx_content_drafts_platform ON content_drafts(platform);

		CREATE TABLE IF NOT EXISTS calendar_events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			type TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			color TEXT,
			attendees TEXT,
			recurring INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,

			CHECK (type IN ('meeting', 'deadline', 'task', 'reminder', 'event'))
		);

		CREATE INDEX IF NOT EXISTS idx_calendar_events_start ON calendar_events(start_time);
		CREATE INDEX IF NOT EXISTS idx_calendar_events_type ON calendar_events(type);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			thread_id TEXT,
			created_at TEXT NOT NULL,

			CHECK (channel IN ('telegram', 'discord', 'webchat')),
			CHECK (role IN ('user', 'assistant'))
		);

		CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, timestamp);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_channel ON chat_messages(channel);

		CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			session_key TEXT NOT NULL UNIQUE,
			channel TEXT NOT NULL,
			last_message TEXT,
			last_message_time TEXT,
			message_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_sessions_channel ON chat_sessions(channel);

		CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			contacts TEXT NOT NULL,
			last_interaction TEXT,
			next_action TEXT,
			notes TEXT,
			created_at TEXT NOT NULL,

			CHECK (status IN ('prospect', 'contacted', 'meeting', 'proposal', 'active'))
		);

		CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status);

		CREATE TABLE IF NOT EXISTS ecosystem_products (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			description TEXT,
			website TEXT,
			sections TEXT,
			created_at TEXT NOT NULL,

			CHECK (status IN ('active', 'development', 'concept'))
		);

		CREATE INDEX IF NOT EXISTS idx_ecosystem_products_slug ON ecosystem_products(slug);
		CREATE INDEX IF NOT EXISTS idx_ecosystem_products_status ON ecosystem_products(status);

		CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			metadata TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activities_timestamp ON activities(timestamp);
		CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// newID returns a generated identifier for a record.
func newID() string {
	return uuid.New().String()
}

// timeLayout is the fixed-width encoding every table stores timestamps
// in. The zero-padded fraction keeps lexicographic order identical to
// chronological order, which the range predicates and ORDER BY clauses
// rely on; RFC3339Nano would drop trailing zeros and break that.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders a timestamp the way every table stores it.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime is the inverse of formatTime. Parse errors leave the zero
// time; stored values are always written by formatTime.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// formatTimePtr renders an optional timestamp, nil for absent.
func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseTimePtr converts a nullable column back to an optional timestamp.
func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// marshalJSON encodes a value for a JSON text column, nil for empty maps.
func marshalJSON(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		if len(x) == 0 {
			return nil, nil
		}
	case []string:
		if x == nil {
			v = []string{}
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON column: %w", err)
	}
	return string(b), nil
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullInt returns nil for a nil pointer, otherwise the value.
func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// ListSystemStatus returns all monitored services ordered by creation
// time descending.
func (s *SQLiteStore) ListSystemStatus(ctx context.Context) ([]*SystemStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, port, last_check, response_time, details, created_at
		FROM system_status
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying system status: %w", err)
	}
	defer rows.Close()

	var statuses []*SystemStatus
	for rows.Next() {
		var st SystemStatus
		var port, responseTime sql.NullInt64
		var details sql.NullString
		var lastCheck, createdAt string

		if err := rows.Scan(&st.ID, &st.Name, &st.Status, &port, &lastCheck, &responseTime, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning system status row: %w", err)
		}
		if port.Valid {
			p := int(port.Int64)
			st.Port = &p
		}
		if responseTime.Valid {
			rt := int(responseTime.Int64)
			st.ResponseTime = &rt
		}
		st.Details = details.String
		st.LastCheck = parseTime(lastCheck)
		st.CreatedAt = parseTime(createdAt)
		statuses = append(statuses, &st)
	}
	return statuses, rows.Err()
}

// UpsertSystemStatus inserts or replaces the row for a service by name.
// Health checks report repeatedly, so the service name is the stable key.
func (s *SQLiteStore) UpsertSystemStatus(ctx context.Context, st *SystemStatus) error {
	if err := ValidateSystemStatus(st); err != nil {
		return err
	}
	if st.ID == "" {
		st.ID = newID()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO system_status (id, name, status, port, last_check, response_time, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			status = excluded.status,
			port = excluded.port,
			last_check = excluded.last_check,
			response_time = excluded.response_time,
			details = excluded.details
	`, st.ID, st.Name, st.Status, nullInt(st.Port), formatTime(st.LastCheck),
		nullInt(st.ResponseTime), nullString(st.Details), formatTime(st.CreatedAt))
	if err != nil {
		return fmt.Errorf("upserting system status: %w", err)
	}

	s.logger.Debug("upserted system status", "name", st.Name, "status", st.Status)
	return nil
}

// ListAgents returns all agents ordered by creation time descending.
func (s *SQLiteStore) ListAgents(ctx context.Context) ([]*Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, name, role, model, level, status, healthy,
		       last_active, personality, capabilities, rules, created_at
		FROM agents
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying agents: %w", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// GetAgentByAgentID looks up an agent by its external key.
// Returns (nil, nil) when no agent matches - not an error.
func (s *SQLiteStore) GetAgentByAgentID(ctx context.Context, agentID string) (*Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, name, role, model, level, status, healthy,
		       last_active, personality, capabilities, rules, created_at
		FROM agents
		WHERE agent_id = ?
		LIMIT 1
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("querying agent by agent_id: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanAgent(rows)
}

// scanAgent reads one agent row. The personality, capabilities, and
// rules columns are JSON text.
func scanAgent(rows *sql.Rows) (*Agent, error) {
	var a Agent
	var healthy int
	var lastActive, personality, capabilities, rules, createdAt string

	if err := rows.Scan(&a.ID, &a.AgentID, &a.Name, &a.Role, &a.Model, &a.Level, &a.Status,
		&healthy, &lastActive, &personality, &capabilities, &rules, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning agent row: %w", err)
	}

	a.Healthy = healthy != 0
	a.LastActive = parseTime(lastActive)
	a.CreatedAt = parseTime(createdAt)
	if err := json.Unmarshal([]byte(personality), &a.Personality); err != nil {
		return nil, fmt.Errorf("parsing agent personality: %w", err)
	}
	if err := json.Unmarshal([]byte(capabilities), &a.Capabilities); err != nil {
		return nil, fmt.Errorf("parsing agent capabilities: %w", err)
	}
	if err := json.Unmarshal([]byte(rules), &a.Rules); err != nil {
		return nil, fmt.Errorf("parsing agent rules: %w", err)
	}
	return &a, nil
}

// CreateAgent inserts a new agent and returns its generated identifier.
func (s *SQLiteStore) CreateAgent(ctx context.Context, a *Agent) (string, error) {
	if err := ValidateAgent(a); err != nil {
		return "", err
	}

	id := newID()
	now := time.Now()
	if a.LastActive.IsZero() {
		a.LastActive = now
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	personality, err := marshalJSON(a.Personality)
	if err != nil {
		return "", err
	}
	capabilities, err := marshalJSON(a.Capabilities)
	if err != nil {
		return "", err
	}
	rules, err := marshalJSON(a.Rules)
	if err != nil {
		return "", err
	}

	healthy := 0
	if a.Healthy {
		healthy = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agents (id, agent_id, name, role, model, level, status, healthy,
		                    last_active, personality, capabilities, rules, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, a.AgentID, a.Name, a.Role, a.Model, a.Level, a.Status, healthy,
		formatTime(a.LastActive), personality, capabilities, rules, formatTime(a.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting agent: %w", err)
	}

	s.logger.Debug("created agent", "id", id, "agent_id", a.AgentID)
	return id, nil
}

// ListCronJobs returns all scheduled jobs ordered by creation time descending.
func (s *SQLiteStore) ListCronJobs(ctx context.Context) ([]*CronJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, schedule, status, last_run, last_status, consecutive_errors, next_run, created_at
		FROM cron_jobs
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cron jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*CronJob
	for rows.Next() {
		var j CronJob
		var lastRun, nextRun sql.NullString
		var createdAt string

		if err := rows.Scan(&j.ID, &j.Name, &j.Schedule, &j.Status, &lastRun, &j.LastStatus,
			&j.ConsecutiveErrors, &nextRun, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning cron job row: %w", err)
		}
		j.LastRun = parseTimePtr(lastRun)
		j.NextRun = parseTimePtr(nextRun)
		j.CreatedAt = parseTime(createdAt)
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

// CreateCronJob inserts a new scheduled job and returns its identifier.
func (s *SQLiteStore) CreateCronJob(ctx context.Context, j *CronJob) (string, error) {
	if err := ValidateCronJob(j); err != nil {
		return "", err
	}

	id := newID()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cron_jobs (id, name, schedule, status, last_run, last_status, consecutive_errors, next_run, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, j.Name, j.Schedule, j.Status, formatTimePtr(j.LastRun), j.LastStatus,
		j.ConsecutiveErrors, formatTimePtr(j.NextRun), formatTime(j.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting cron job: %w", err)
	}

	s.logger.Debug("created cron job", "id", id, "name", j.Name)
	return id, nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
