// ABOUTME: SQLite persistence for tasks, content drafts, and calendar events
// ABOUTME: Implements the filtered list, create, sparse patch, and delete operations

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ListTasks returns tasks matching the filter, ordered by creation time
// descending. Omitted filter fields match all tasks; supplied fields are
// combined with AND.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	query := `
		SELECT id, title, description, category, status, priority, effort,
		       reasoning, next_action, created_at, approved_at
		FROM tasks WHERE 1=1`
	var args []any

	if filter.Category != nil {
		query += ` AND category = ?`
		args = append(args, *filter.Category)
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		var t Task
		var description, reasoning, nextAction, approvedAt sql.NullString
		var createdAt string

		if err := rows.Scan(&t.ID, &t.Title, &description, &t.Category, &t.Status, &t.Priority,
			&t.Effort, &reasoning, &nextAction, &createdAt, &approvedAt); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		t.Description = description.String
		t.Reasoning = reasoning.String
		t.NextAction = nextAction.String
		t.CreatedAt = parseTime(createdAt)
		t.ApprovedAt = parseTimePtr(approvedAt)
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a new task and returns its generated identifier.
// Status defaults to pending when unset.
func (s *SQLiteStore) CreateTask(ctx context.Context, t *Task) (string, error) {
	if t.Status == "" {
		t.Status = TaskPending
	}
	if err := ValidateTask(t); err != nil {
		return "", err
	}

	id := newID()
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, category, status, priority, effort,
		                   reasoning, next_action, created_at, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, t.Title, nullString(t.Description), t.Category, t.Status, t.Priority, t.Effort,
		nullString(t.Reasoning), nullString(t.NextAction), formatTime(t.CreatedAt),
		formatTimePtr(t.ApprovedAt))
	if err != nil {
		return "", fmt.Errorf("inserting task: %w", err)
	}

	s.logger.Debug("created task", "id", id, "category", t.Category, "priority", t.Priority)
	return id, nil
}

// UpdateTaskStatus moves a task to a new workflow state. Moving to
// approved stamps approved_at. Returns ErrNotFound for unknown ids.
func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus) error {
	if err := ValidateTaskStatus(status); err != nil {
		return err
	}

	var approvedAt any
	if status == TaskApproved {
		approvedAt = formatTime(time.Now())
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, approved_at = COALESCE(?, approved_at)
		WHERE id = ?
	`, status, approvedAt, taskID)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated task status", "id", taskID, "status", status)
	return nil
}

// ListContentDrafts returns drafts ordered by updated time descending,
// optionally filtered to one pipeline status.
func (s *SQLiteStore) ListContentDrafts(ctx context.Context, status *DraftStatus) ([]*ContentDraft, error) {
	query := `
		SELECT id, title, platform, content, status, created_at, updated_at, scheduled_for
		FROM content_drafts`
	var args []any

	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY updated_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying content drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*ContentDraft
	for rows.Next() {
		d, err := scanContentDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// GetContentDraft retrieves a draft by generated identifier.
// Returns ErrNotFound if the draft doesn't exist.
func (s *SQLiteStore) GetContentDraft(ctx context.Context, draftID string) (*ContentDraft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, platform, content, status, created_at, updated_at, scheduled_for
		FROM content_drafts
		WHERE id = ?
	`, draftID)
	if err != nil {
		return nil, fmt.Errorf("querying content draft: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanContentDraft(rows)
}

func scanContentDraft(rows *sql.Rows) (*ContentDraft, error) {
	var d ContentDraft
	var scheduledFor sql.NullString
	var createdAt, updatedAt string

	if err := rows.Scan(&d.ID, &d.Title, &d.Platform, &d.Content, &d.Status,
		&createdAt, &updatedAt, &scheduledFor); err != nil {
		return nil, fmt.Errorf("scanning content draft row: %w", err)
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	d.ScheduledFor = parseTimePtr(scheduledFor)
	return &d, nil
}

// CreateContentDraft inserts a new draft with both timestamps set to
// now. Status defaults to draft when unset.
func (s *SQLiteStore) CreateContentDraft(ctx context.Context, d *ContentDraft) (string, error) {
	if d.Status == "" {
		d.Status = DraftDraft
	}
	if err := ValidateContentDraft(d); err != nil {
		return "", err
	}

	id := newID()
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_drafts (id, title, platform, content, status, created_at, updated_at, scheduled_for)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, d.Title, d.Platform, d.Content, d.Status,
		formatTime(now), formatTime(now), formatTimePtr(d.ScheduledFor))
	if err != nil {
		return "", fmt.Errorf("inserting content draft: %w", err)
	}

	s.logger.Debug("created content draft", "id", id, "platform", d.Platform)
	return id, nil
}

// UpdateContentDraft applies a sparse patch. Omitted fields keep their
// prior value; updated_at is refreshed regardless of what changed.
// Returns ErrNotFound for unknown ids.
func (s *SQLiteStore) UpdateContentDraft(ctx context.Context, draftID string, patch ContentDraftPatch) error {
	if err := ValidateContentDraftPatch(patch); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE content_drafts
		SET title = COALESCE(?, title),
		    content = COALESCE(?, content),
		    status = COALESCE(?, status),
		    updated_at = ?
		WHERE id = ?
	`, patch.Title, patch.Content, (*string)(patch.Status), formatTime(time.Now()), draftID)
	if err != nil {
		return fmt.Errorf("updating content draft: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated content draft", "id", draftID)
	return nil
}

// ListCalendarEvents returns events whose start time falls within the
// inclusive [from, to] range, ordered by start time ascending.
func (s *SQLiteStore) ListCalendarEvents(ctx context.Context, from, to time.Time) ([]*CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, type, start_time, end_time, color, attendees, recurring, created_at
		FROM calendar_events
		WHERE start_time >= ? AND start_time <= ?
		ORDER BY start_time ASC, id ASC
	`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("querying calendar events: %w", err)
	}
	defer rows.Close()

	var events []*CalendarEvent
	for rows.Next() {
		var e CalendarEvent
		var description, color, attendees sql.NullString
		var recurring int
		var startTime, endTime, createdAt string

		if err := rows.Scan(&e.ID, &e.Title, &description, &e.Type, &startTime, &endTime,
			&color, &attendees, &recurring, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning calendar event row: %w", err)
		}
		e.Description = description.String
		e.Color = color.String
		e.Recurring = recurring != 0
		e.StartTime = parseTime(startTime)
		e.EndTime = parseTime(endTime)
		e.CreatedAt = parseTime(createdAt)
		if attendees.Valid {
			if err := json.Unmarshal([]byte(attendees.String), &e.Attendees); err != nil {
				return nil, fmt.Errorf("parsing event attendees: %w", err)
			}
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// CreateCalendarEvent inserts a new event and returns its identifier.
func (s *SQLiteStore) CreateCalendarEvent(ctx context.Context, e *CalendarEvent) (string, error) {
	if err := ValidateCalendarEvent(e); err != nil {
		return "", err
	}

	id := newID()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	var attendees any
	if e.Attendees != nil {
		var err error
		attendees, err = marshalJSON(e.Attendees)
		if err != nil {
			return "", err
		}
	}

	recurring := 0
	if e.Recurring {
		recurring = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, title, description, type, start_time, end_time, color, attendees, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, e.Title, nullString(e.Description), e.Type, formatTime(e.StartTime), formatTime(e.EndTime),
		nullString(e.Color), attendees, recurring, formatTime(e.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting calendar event: %w", err)
	}

	s.logger.Debug("created calendar event", "id", id, "type", e.Type)
	return id, nil
}

// UpdateCalendarEvent applies a sparse patch to an event.
// Returns ErrNotFound for unknown ids.
func (s *SQLiteStore) UpdateCalendarEvent(ctx context.Context, eventID string, patch CalendarEventPatch) error {
	if err := ValidateCalendarEventPatch(patch); err != nil {
		return err
	}

	var attendees any
	if patch.Attendees != nil {
		var err error
		attendees, err = marshalJSON(*patch.Attendees)
		if err != nil {
			return err
		}
	}

	var startTime, endTime any
	if patch.StartTime != nil {
		startTime = formatTime(*patch.StartTime)
	}
	if patch.EndTime != nil {
		endTime = formatTime(*patch.EndTime)
	}

	var recurring any
	if patch.Recurring != nil {
		r := 0
		if *patch.Recurring {
			r = 1
		}
		recurring = r
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE calendar_events
		SET title = COALESCE(?, title),
		    description = COALESCE(?, description),
		    type = COALESCE(?, type),
		    start_time = COALESCE(?, start_time),
		    end_time = COALESCE(?, end_time),
		    color = COALESCE(?, color),
		    attendees = COALESCE(?, attendees),
		    recurring = COALESCE(?, recurring)
		WHERE id = ?
	`, patch.Title, patch.Description, (*string)(patch.Type), startTime, endTime,
		patch.Color, attendees, recurring, eventID)
	if err != nil {
		return fmt.Errorf("updating calendar event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated calendar event", "id", eventID)
	return nil
}

// DeleteCalendarEvent removes an event by identifier.
// Returns ErrNotFound rather than a silent no-op so caller mistakes surface.
func (s *SQLiteStore) DeleteCalendarEvent(ctx context.Context, eventID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("deleting calendar event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted calendar event", "id", eventID)
	return nil
}
