// ABOUTME: Store interface and entity types for mission-control persistence
// ABOUTME: Defines the dashboard entities and the query/mutation surface over them

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a patch, delete, or point lookup by
// generated identifier targets a record that does not exist.
var ErrNotFound = errors.New("not found")

// ServiceStatus is the health state of a monitored service.
type ServiceStatus string

const (
	ServiceUp       ServiceStatus = "up"
	ServiceDown     ServiceStatus = "down"
	ServiceDegraded ServiceStatus = "degraded"
)

// SystemStatus is one row per monitored service on the ops board.
type SystemStatus struct {
	ID           string
	Name         string
	Status       ServiceStatus
	Port         *int
	LastCheck    time.Time
	ResponseTime *int // milliseconds
	Details      string
	CreatedAt    time.Time
}

// AgentLevel is the autonomy tier of an agent (L1 lowest, L4 highest).
type AgentLevel string

const (
	AgentLevelL1 AgentLevel = "L1"
	AgentLevelL2 AgentLevel = "L2"
	AgentLevelL3 AgentLevel = "L3"
	AgentLevelL4 AgentLevel = "L4"
)

// AgentStatus is the runtime state of an agent.
type AgentStatus string

const (
	AgentActive AgentStatus = "active"
	AgentIdle   AgentStatus = "idle"
	AgentError  AgentStatus = "error"
)

// Personality describes an agent's configured voice.
type Personality struct {
	Traits []string `json:"traits"`
	Tone   string   `json:"tone,omitempty"`
}

// Agent represents a configured AI agent on the roster.
// AgentID is the human-assigned external key (e.g. "agent-001"),
// distinct from the generated ID.
type Agent struct {
	ID           string
	AgentID      string
	Name         string
	Role         string
	Model        string
	Level        AgentLevel
	Status       AgentStatus
	Healthy      bool
	LastActive   time.Time
	Personality  Personality
	Capabilities []string
	Rules        []string
	CreatedAt    time.Time
}

// CronJobStatus is whether a scheduled job is currently enabled.
type CronJobStatus string

const (
	CronEnabled  CronJobStatus = "enabled"
	CronDisabled CronJobStatus = "disabled"
	CronJobError CronJobStatus = "error"
)

// CronRunStatus is the outcome of a job's most recent run.
type CronRunStatus string

const (
	CronRunSuccess CronRunStatus = "success"
	CronRunError   CronRunStatus = "error"
	CronRunPending CronRunStatus = "pending"
)

// CronJob is a scheduled background job displayed on the ops board.
type CronJob struct {
	ID                string
	Name              string
	Schedule          string // cron expression
	Status            CronJobStatus
	LastRun           *time.Time
	LastStatus        CronRunStatus
	ConsecutiveErrors int
	NextRun           *time.Time
	CreatedAt         time.Time
}

// TaskStatus tracks a task through the approval workflow.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskApproved  TaskStatus = "approved"
	TaskRejected  TaskStatus = "rejected"
	TaskCompleted TaskStatus = "completed"
)

// TaskPriority is the urgency bucket of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskEffort is the estimated effort bucket of a task.
type TaskEffort string

const (
	Effort1Hour  TaskEffort = "1h"
	Effort4Hours TaskEffort = "4h"
	Effort1Day   TaskEffort = "1d"
	Effort3Days  TaskEffort = "3d"
	Effort1Week  TaskEffort = "1w"
)

// Task is a unit of work proposed by an agent and approved by a human.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    string
	Status      TaskStatus
	Priority    TaskPriority
	Effort      TaskEffort
	Reasoning   string
	NextAction  string
	CreatedAt   time.Time
	ApprovedAt  *time.Time
}

// TaskFilter narrows ListTasks results. Nil fields match everything;
// supplied fields combine with AND.
type TaskFilter struct {
	Category *string
	Status   *TaskStatus
}

// ContentPlatform is the publishing destination of a draft.
type ContentPlatform string

const (
	PlatformTwitter ContentPlatform = "twitter"
	PlatformBlog    ContentPlatform = "blog"
	PlatformEmail   ContentPlatform = "email"
	PlatformDiscord ContentPlatform = "discord"
	PlatformOther   ContentPlatform = "other"
)

// DraftStatus tracks a content draft through the review pipeline.
type DraftStatus string

const (
	DraftDraft     DraftStatus = "draft"
	DraftReview    DraftStatus = "review"
	DraftApproved  DraftStatus = "approved"
	DraftPublished DraftStatus = "published"
)

// ContentDraft is a piece of content moving through the pipeline.
type ContentDraft struct {
	ID           string
	Title        string
	Platform     ContentPlatform
	Content      string
	Status       DraftStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ScheduledFor *time.Time
}

// ContentDraftPatch is a sparse update to a draft. Nil fields are left
// unchanged; UpdatedAt is always refreshed.
type ContentDraftPatch struct {
	Title   *string
	Content *string
	Status  *DraftStatus
}

// EventType categorizes a calendar event.
type EventType string

const (
	EventMeeting  EventType = "meeting"
	EventDeadline EventType = "deadline"
	EventTask     EventType = "task"
	EventReminder EventType = "reminder"
	EventGeneric  EventType = "event"
)

// CalendarEvent is a scheduled entry on the dashboard calendar.
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	Type        EventType
	StartTime   time.Time
	EndTime     time.Time
	Color       string
	Attendees   []string
	Recurring   bool
	CreatedAt   time.Time
}

// CalendarEventPatch is a sparse update to a calendar event.
type CalendarEventPatch struct {
	Title       *string
	Description *string
	Type        *EventType
	StartTime   *time.Time
	EndTime     *time.Time
	Color       *string
	Attendees   *[]string
	Recurring   *bool
}

// ChatChannel is the transport a chat message arrived on.
type ChatChannel string

const (
	ChannelTelegram ChatChannel = "telegram"
	ChannelDiscord  ChatChannel = "discord"
	ChannelWebchat  ChatChannel = "webchat"
)

// ChatRole identifies the author side of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single message within a chat session.
type ChatMessage struct {
	ID        string
	SessionID string
	Channel   ChatChannel
	Role      ChatRole
	Content   string
	Timestamp time.Time
	ThreadID  string
	CreatedAt time.Time
}

// ChatSession is a derived rollup over the messages of one session key.
// It is upserted as a side effect of AppendChatMessage and never
// written directly by callers.
type ChatSession struct {
	ID              string
	SessionKey      string
	Channel         string
	LastMessage     string
	LastMessageTime *time.Time
	MessageCount    int
	CreatedAt       time.Time
}

// ClientStatus tracks a CRM client through the sales funnel.
type ClientStatus string

const (
	ClientProspect  ClientStatus = "prospect"
	ClientContacted ClientStatus = "contacted"
	ClientMeeting   ClientStatus = "meeting"
	ClientProposal  ClientStatus = "proposal"
	ClientActive    ClientStatus = "active"
)

// Contact is a person attached to a CRM client.
type Contact struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// Client is a CRM entry.
type Client struct {
	ID              string
	Name            string
	Status          ClientStatus
	Contacts        []Contact
	LastInteraction *time.Time
	NextAction      string
	Notes           string
	CreatedAt       time.Time
}

// ClientPatch is a sparse update to a client. LastInteraction is
// refreshed on every patch regardless of which fields changed.
type ClientPatch struct {
	Name       *string
	Status     *ClientStatus
	Contacts   *[]Contact
	NextAction *string
	Notes      *string
}

// ProductStatus is the lifecycle stage of an ecosystem product.
type ProductStatus string

const (
	ProductActive      ProductStatus = "active"
	ProductDevelopment ProductStatus = "development"
	ProductConcept     ProductStatus = "concept"
)

// EcosystemProduct is a product tracked on the ecosystem board.
// Slug is the external lookup key. The free-form sections (Metrics,
// Brand, ...) are opaque JSON objects owned by the presentation layer.
type EcosystemProduct struct {
	ID          string
	Slug        string
	Name        string
	Status      ProductStatus
	Description string
	Website     string
	Metrics     map[string]any
	Brand       map[string]any
	Community   map[string]any
	Content     map[string]any
	Legal       map[string]any
	Product     map[string]any
	CreatedAt   time.Time
}

// Activity is an append-only audit/log entry. Type is free-form.
type Activity struct {
	ID          string
	Type        string
	Description string
	Timestamp   time.Time
	Metadata    map[string]any
	CreatedAt   time.Time
}

// Default and maximum bounds for the bounded collection reads.
const (
	DefaultChatMessageLimit = 50
	DefaultActivityLimit    = 20
	maxListLimit            = 500
)

// Store is the query/mutation surface consumed by the dashboard API.
// Two implementations exist: SQLiteStore (durable) and MemoryStore
// (the fallback used when no database is configured). Callers pick one
// at startup and never branch per call.
type Store interface {
	// System status
	ListSystemStatus(ctx context.Context) ([]*SystemStatus, error)
	UpsertSystemStatus(ctx context.Context, s *SystemStatus) error

	// Agents. GetAgentByAgentID looks up by the external agent key and
	// returns (nil, nil) when no agent matches - callers distinguish
	// "no record" from a failed lookup.
	ListAgents(ctx context.Context) ([]*Agent, error)
	GetAgentByAgentID(ctx context.Context, agentID string) (*Agent, error)
	CreateAgent(ctx context.Context, a *Agent) (string, error)

	// Cron jobs
	ListCronJobs(ctx context.Context) ([]*CronJob, error)
	CreateCronJob(ctx context.Context, j *CronJob) (string, error)

	// Tasks
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	CreateTask(ctx context.Context, t *Task) (string, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus) error

	// Content drafts
	ListContentDrafts(ctx context.Context, status *DraftStatus) ([]*ContentDraft, error)
	GetContentDraft(ctx context.Context, draftID string) (*ContentDraft, error)
	CreateContentDraft(ctx context.Context, d *ContentDraft) (string, error)
	UpdateContentDraft(ctx context.Context, draftID string, patch ContentDraftPatch) error

	// Calendar events
	ListCalendarEvents(ctx context.Context, from, to time.Time) ([]*CalendarEvent, error)
	CreateCalendarEvent(ctx context.Context, e *CalendarEvent) (string, error)
	UpdateCalendarEvent(ctx context.Context, eventID string, patch CalendarEventPatch) error
	DeleteCalendarEvent(ctx context.Context, eventID string) error

	// Chat. AppendChatMessage writes the message and atomically upserts
	// the session rollup for its session key (creating it with count 1,
	// or incrementing a freshly-read count). It returns the message
	// timestamp. Concurrent appends to one session must not lose
	// increments.
	ListChatSessions(ctx context.Context) ([]*ChatSession, error)
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*ChatMessage, error)
	AppendChatMessage(ctx context.Context, m *ChatMessage) (time.Time, error)

	// Clients
	ListClients(ctx context.Context, status *ClientStatus) ([]*Client, error)
	CreateClient(ctx context.Context, c *Client) (string, error)
	UpdateClient(ctx context.Context, clientID string, patch ClientPatch) error

	// Ecosystem products. GetEcosystemProductBySlug returns (nil, nil)
	// when no product has the slug, mirroring GetAgentByAgentID.
	ListEcosystemProducts(ctx context.Context) ([]*EcosystemProduct, error)
	GetEcosystemProductBySlug(ctx context.Context, slug string) (*EcosystemProduct, error)
	CreateEcosystemProduct(ctx context.Context, p *EcosystemProduct) (string, error)

	// Activities
	ListActivities(ctx context.Context, limit int) ([]*Activity, error)
	AddActivity(ctx context.Context, a *Activity) (string, error)

	// Close releases any resources held by the store
	Close() error
}

// normalizeLimit applies a default and hard cap to a caller-supplied
// list limit. Zero or negative selects the default.
func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
