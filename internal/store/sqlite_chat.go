// ABOUTME: SQLite persistence for chat sessions and messages
// ABOUTME: AppendChatMessage runs the message insert and session upsert in one transaction

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ListChatSessions returns all sessions, most recently created first.
func (s *SQLiteStore) ListChatSessions(ctx context.Context) ([]*ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_key, channel, last_message, last_message_time, message_count, created_at
		FROM chat_sessions
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chat sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*ChatSession
	for rows.Next() {
		var sess ChatSession
		var lastMessage, lastMessageTime sql.NullString
		var createdAt string

		if err := rows.Scan(&sess.ID, &sess.SessionKey, &sess.Channel, &lastMessage,
			&lastMessageTime, &sess.MessageCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat session row: %w", err)
		}
		sess.LastMessage = lastMessage.String
		sess.LastMessageTime = parseTimePtr(lastMessageTime)
		sess.CreatedAt = parseTime(createdAt)
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// ListChatMessages returns the most recent messages for a session in
// chronological order. A limit of zero applies DefaultChatMessageLimit.
func (s *SQLiteStore) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]*ChatMessage, error) {
	limit = normalizeLimit(limit, DefaultChatMessageLimit)

	// Grab the latest N, then flip back to oldest-first for display.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, channel, role, content, timestamp, thread_id, created_at
		FROM (
			SELECT id, session_id, channel, role, content, timestamp, thread_id, created_at
			FROM chat_messages
			WHERE session_id = ?
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		)
		ORDER BY timestamp ASC, id ASC
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		var m ChatMessage
		var threadID sql.NullString
		var timestamp, createdAt string

		if err := rows.Scan(&m.ID, &m.SessionID, &m.Channel, &m.Role, &m.Content,
			&timestamp, &threadID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning chat message row: %w", err)
		}
		m.ThreadID = threadID.String
		m.Timestamp = parseTime(timestamp)
		m.CreatedAt = parseTime(createdAt)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// AppendChatMessage records a message and updates its session rollup in
// a single transaction. A session row is created on first append;
// subsequent appends increment the message count and refresh the
// last-message preview. Returns the timestamp assigned to the message.
func (s *SQLiteStore) AppendChatMessage(ctx context.Context, m *ChatMessage) (time.Time, error) {
	if err := ValidateChatMessage(m); err != nil {
		return time.Time{}, err
	}

	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	messageID := newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_messages (id, session_id, channel, role, content, timestamp, thread_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, messageID, m.SessionID, m.Channel, m.Role, m.Content, formatTime(now),
		nullString(m.ThreadID), formatTime(now))
	if err != nil {
		return time.Time{}, fmt.Errorf("inserting chat message: %w", err)
	}

	// Upsert keyed on session_key keeps concurrent first-appends from
	// racing into duplicate session rows.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, session_key, channel, last_message, last_message_time, message_count, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(session_key) DO UPDATE SET
			last_message = excluded.last_message,
			last_message_time = excluded.last_message_time,
			message_count = message_count + 1
	`, newID(), m.SessionID, string(m.Channel), m.Content, formatTime(now), formatTime(now))
	if err != nil {
		return time.Time{}, fmt.Errorf("upserting chat session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("committing chat append: %w", err)
	}

	m.ID = messageID
	m.Timestamp = now
	m.CreatedAt = now
	s.logger.Debug("appended chat message", "session", m.SessionID, "role", m.Role)
	return now, nil
}
