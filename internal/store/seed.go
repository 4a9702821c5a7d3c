// ABOUTME: Development seed data for the dashboard store
// ABOUTME: Ships built-in fixtures and optionally loads overrides from a TOML file

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/toml"
)

// Fixtures is the seed data set applied by Seed. The zero value seeds
// nothing; DefaultFixtures returns the built-in development set.
type Fixtures struct {
	SystemStatus  []SystemStatus     `toml:"system_status"`
	Agents        []Agent            `toml:"agents"`
	CronJobs      []CronJob          `toml:"cron_jobs"`
	Tasks         []Task             `toml:"tasks"`
	ContentDrafts []ContentDraft     `toml:"content_drafts"`
	Events        []CalendarEvent    `toml:"calendar_events"`
	Clients       []Client           `toml:"clients"`
	Products      []EcosystemProduct `toml:"products"`
	Activities    []Activity         `toml:"activities"`
}

// DefaultFixtures returns the built-in development data set. Timestamps
// are computed relative to now so the dashboard always shows plausible
// recent activity.
func DefaultFixtures() *Fixtures {
	now := time.Now()
	hourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	return &Fixtures{
		SystemStatus: []SystemStatus{
			{Name: "Gateway API", Status: ServiceUp, Port: intPtr(18789), LastCheck: now, ResponseTime: intPtr(45)},
			{Name: "Postgres", Status: ServiceUp, Port: intPtr(5432), LastCheck: now, ResponseTime: intPtr(12)},
			{Name: "Redis Cache", Status: ServiceUp, Port: intPtr(6379), LastCheck: now, ResponseTime: intPtr(8)},
		},
		Agents: []Agent{
			{
				AgentID: "agent-001", Name: "Claude Prime", Role: "Main strategist",
				Model: "claude-opus-4-1", Level: AgentLevelL4, Status: AgentActive, Healthy: true,
				LastActive: now,
				Personality: Personality{
					Traits: []string{"analytical", "direct", "strategic"},
					Tone:   "professional",
				},
				Capabilities: []string{"task_planning", "content_generation", "code_review"},
				Rules:        []string{"always verify before executing"},
			},
			{
				AgentID: "agent-002", Name: "Content Muse", Role: "Content specialist",
				Model: "claude-haiku-4-5", Level: AgentLevelL2, Status: AgentActive, Healthy: true,
				LastActive: now.Add(-5 * time.Minute),
				Personality: Personality{
					Traits: []string{"creative", "engaging", "clear"},
					Tone:   "conversational",
				},
				Capabilities: []string{"content_generation", "editing", "social_media"},
				Rules:        []string{"maintain brand voice"},
			},
		},
		CronJobs: []CronJob{
			{
				Name: "Daily digest", Schedule: "0 9 * * *", Status: CronEnabled,
				LastRun: &hourAgo, LastStatus: CronRunSuccess,
				NextRun: timePtr(now.Add(24 * time.Hour)),
			},
			{
				Name: "Weekly report", Schedule: "0 0 * * 1", Status: CronEnabled,
				LastRun: &weekAgo, LastStatus: CronRunSuccess,
				NextRun: timePtr(now.Add(7 * 24 * time.Hour)),
			},
		},
		Tasks: []Task{
			{
				Title: "Launch new feature roadmap", Category: "Product",
				Priority: PriorityHigh, Effort: Effort1Day, Status: TaskPending,
				Description: "Plan and announce Q1 roadmap",
			},
			{
				Title: "Reach out to 5 new prospects", Category: "Revenue",
				Priority: PriorityUrgent, Effort: Effort1Hour, Status: TaskPending,
				Description: "Sales outreach campaign",
			},
		},
		ContentDrafts: []ContentDraft{
			{
				Title: "The Future of AI Agents", Platform: PlatformBlog,
				Content: "Autonomous AI agents are reshaping how we work...",
				Status:  DraftReview,
			},
			{
				Title: "Weekly product update", Platform: PlatformEmail,
				Content: "Hi community, this week we shipped...",
				Status:  DraftApproved,
			},
		},
		Clients: []Client{
			{
				Name: "Acme Corp", Status: ClientActive,
				Contacts:        []Contact{{Name: "Sarah Chen", Role: "CTO", Email: "sarah@acme.com"}},
				LastInteraction: &dayAgo,
				NextAction:      "Schedule Q1 review",
			},
			{
				Name: "Startup Labs", Status: ClientProposal,
				Contacts:        []Contact{{Name: "Alex Park", Role: "Founder", Email: "alex@startup.io"}},
				LastInteraction: &weekAgo,
				NextAction:      "Follow up on proposal",
			},
		},
		Products: []EcosystemProduct{
			{
				Slug: "mission-control", Name: "Mission Control", Status: ProductActive,
				Description: "Operations dashboard for the agent fleet",
				Metrics:     map[string]any{"users": float64(120), "mrr": float64(2400)},
			},
			{
				Slug: "content-pipeline", Name: "Content Pipeline", Status: ProductDevelopment,
				Description: "Automated drafting and review workflow",
			},
		},
		Activities: []Activity{
			{
				Type: "deployment", Description: "Deployed v2.1.0 to production",
				Timestamp: hourAgo, Metadata: map[string]any{"version": "2.1.0"},
			},
			{
				Type: "task", Description: "Task approved by user",
				Timestamp: now.Add(-2 * time.Hour),
			},
		},
	}
}

// LoadFixtures reads a fixture set from a TOML file. Used to override
// the built-in development data.
func LoadFixtures(path string) (*Fixtures, error) {
	var f Fixtures
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("loading fixtures from %s: %w", path, err)
	}
	return &f, nil
}

// Seed applies a fixture set to the store. Seeding is idempotent per
// collection: service statuses upsert by name, agents are skipped when
// their agent id already exists, and every other collection is only
// seeded while empty. Returns the number of records written.
func Seed(ctx context.Context, s Store, f *Fixtures) (int, error) {
	logger := slog.Default().With("component", "seed")
	written := 0

	for i := range f.SystemStatus {
		if err := s.UpsertSystemStatus(ctx, &f.SystemStatus[i]); err != nil {
			return written, fmt.Errorf("seeding system status %q: %w", f.SystemStatus[i].Name, err)
		}
		written++
	}

	for i := range f.Agents {
		existing, err := s.GetAgentByAgentID(ctx, f.Agents[i].AgentID)
		if err != nil {
			return written, fmt.Errorf("checking agent %q: %w", f.Agents[i].AgentID, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.CreateAgent(ctx, &f.Agents[i]); err != nil {
			return written, fmt.Errorf("seeding agent %q: %w", f.Agents[i].AgentID, err)
		}
		written++
	}

	n, err := seedIfEmpty(ctx, f.CronJobs,
		func() (int, error) { jobs, err := s.ListCronJobs(ctx); return len(jobs), err },
		func(j *CronJob) error { _, err := s.CreateCronJob(ctx, j); return err })
	written += n
	if err != nil {
		return written, fmt.Errorf("seeding cron jobs: %w", err)
	}

	n, err = seedIfEmpty(ctx, f.Tasks,
		func() (int, error) { tasks, err := s.ListTasks(ctx, TaskFilter{}); return len(tasks), err },
		func(t *Task) error { _, err := s.CreateTask(ctx, t); return err })
	written += n
	if err != nil {
		return written, fmt.Errorf("seeding tasks: %w", err)
	}

	n, err = seedIfEmpty(ctx, f.ContentDrafts,
		func() (int, error) { drafts, err := s.ListContentDrafts(ctx, nil); return len(drafts), err },
		func(d *ContentDraft) error { _, err := s.CreateContentDraft(ctx, d); return err })
	written += n
	if err != nil {
		return written, fmt.Errorf("seeding content drafts: %w", err)
	}

	n, err = seedIfEmpty(ctx, f.Events,
		func() (int, error) {
			events, err := s.ListCalendarEvents(ctx, time.Time{}, time.Now().Add(365*24*time.Hour))
			return len(events), err
		},
		func(e *CalendarEvent) error { _, err := s.CreateCalendarEvent(ctx, e); return err })
	written += n
	if err != nil {
		return written, fmt.Errorf("seeding calendar events: %w", err)
	}

	n, err = seedIfEmpty(ctx, f.Clients,
		func() (int, error) { clients, err := s.ListClients(ctx, nil); return len(clients), err },
		func(c *Client) error { _, err := s.CreateClient(ctx, c); return err })
	written += n
	if err != nil {
		return written, fmt.Errorf("seeding clients: %w", err)
	}

	for i := range f.Products {
		existing, err := s.GetEcosystemProductBySlug(ctx, f.Products[i].Slug)
		if err != nil {
			return written, fmt.Errorf("checking product %q: %w", f.Products[i].Slug, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.CreateEcosystemProduct(ctx, &f.Products[i]); err != nil {
			return written, fmt.Errorf("seeding product %q: %w", f.Products[i].Slug, err)
		}
		written++
	}

	n, err = seedIfEmpty(ctx, f.Activities,
		func() (int, error) { acts, err := s.ListActivities(ctx, 1); return len(acts), err },
		func(a *Activity) error { _, err := s.AddActivity(ctx, a); return err })
	written += n
	if err != nil {
		return written, fmt.Errorf("seeding activities: %w", err)
	}

	logger.Info("seed complete", "records", written)
	return written, nil
}

// seedIfEmpty inserts fixtures only when the collection has no records.
func seedIfEmpty[T any](ctx context.Context, fixtures []T, count func() (int, error), insert func(*T) error) (int, error) {
	if len(fixtures) == 0 {
		return 0, nil
	}
	existing, err := count()
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}
	written := 0
	for i := range fixtures {
		if err := insert(&fixtures[i]); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
