// ABOUTME: SQLite persistence for clients, ecosystem products, and the activity feed
// ABOUTME: Covers the CRM pipeline, product catalog lookups, and bounded activity reads

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ListClients returns clients ordered by creation time descending,
// optionally filtered to one pipeline status.
func (s *SQLiteStore) ListClients(ctx context.Context, status *ClientStatus) ([]*Client, error) {
	query := `
		SELECT id, name, status, contacts, last_interaction, next_action, notes, created_at
		FROM clients`
	var args []any

	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		var c Client
		var contacts string
		var lastInteraction, nextAction, notes sql.NullString
		var createdAt string

		if err := rows.Scan(&c.ID, &c.Name, &c.Status, &contacts, &lastInteraction,
			&nextAction, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning client row: %w", err)
		}
		c.NextAction = nextAction.String
		c.Notes = notes.String
		c.LastInteraction = parseTimePtr(lastInteraction)
		c.CreatedAt = parseTime(createdAt)
		if err := json.Unmarshal([]byte(contacts), &c.Contacts); err != nil {
			return nil, fmt.Errorf("parsing client contacts: %w", err)
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

// CreateClient inserts a new CRM entry and returns its identifier.
func (s *SQLiteStore) CreateClient(ctx context.Context, c *Client) (string, error) {
	if err := ValidateClient(c); err != nil {
		return "", err
	}

	id := newID()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	contacts, err := marshalJSON(c.Contacts)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, status, contacts, last_interaction, next_action, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, c.Name, c.Status, contacts, formatTimePtr(c.LastInteraction),
		nullString(c.NextAction), nullString(c.Notes), formatTime(c.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting client: %w", err)
	}

	s.logger.Debug("created client", "id", id, "status", c.Status)
	return id, nil
}

// UpdateClient applies a sparse patch. Omitted fields keep their prior
// value; last_interaction is refreshed on every patch. Returns
// ErrNotFound for unknown ids.
func (s *SQLiteStore) UpdateClient(ctx context.Context, clientID string, patch ClientPatch) error {
	if err := ValidateClientPatch(patch); err != nil {
		return err
	}

	var contacts any
	if patch.Contacts != nil {
		var err error
		contacts, err = marshalJSON(*patch.Contacts)
		if err != nil {
			return err
		}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name = COALESCE(?, name),
		    status = COALESCE(?, status),
		    contacts = COALESCE(?, contacts),
		    next_action = COALESCE(?, next_action),
		    notes = COALESCE(?, notes),
		    last_interaction = ?
		WHERE id = ?
	`, patch.Name, (*string)(patch.Status), contacts, patch.NextAction, patch.Notes,
		formatTime(time.Now()), clientID)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated client", "id", clientID)
	return nil
}

// productSections is the JSON shape of the sections column. Each
// section is an opaque object owned by the presentation layer.
type productSections struct {
	Metrics   map[string]any `json:"metrics,omitempty"`
	Brand     map[string]any `json:"brand,omitempty"`
	Community map[string]any `json:"community,omitempty"`
	Content   map[string]any `json:"content,omitempty"`
	Legal     map[string]any `json:"legal,omitempty"`
	Product   map[string]any `json:"product,omitempty"`
}

func marshalSections(p *EcosystemProduct) (any, error) {
	sec := productSections{
		Metrics:   p.Metrics,
		Brand:     p.Brand,
		Community: p.Community,
		Content:   p.Content,
		Legal:     p.Legal,
		Product:   p.Product,
	}
	if len(sec.Metrics) == 0 && len(sec.Brand) == 0 && len(sec.Community) == 0 &&
		len(sec.Content) == 0 && len(sec.Legal) == 0 && len(sec.Product) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(sec)
	if err != nil {
		return nil, fmt.Errorf("marshaling product sections: %w", err)
	}
	return string(b), nil
}

// ListEcosystemProducts returns the full product catalog, newest first.
func (s *SQLiteStore) ListEcosystemProducts(ctx context.Context) ([]*EcosystemProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, status, description, website, sections, created_at
		FROM ecosystem_products
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying ecosystem products: %w", err)
	}
	defer rows.Close()

	var products []*EcosystemProduct
	for rows.Next() {
		p, err := scanEcosystemProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetEcosystemProductBySlug looks up one product by its URL slug.
// Returns (nil, nil) when no product matches - not an error.
func (s *SQLiteStore) GetEcosystemProductBySlug(ctx context.Context, slug string) (*EcosystemProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, status, description, website, sections, created_at
		FROM ecosystem_products
		WHERE slug = ?
		LIMIT 1
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("querying ecosystem product by slug: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanEcosystemProduct(rows)
}

func scanEcosystemProduct(rows *sql.Rows) (*EcosystemProduct, error) {
	var p EcosystemProduct
	var description, website, sections sql.NullString
	var createdAt string

	if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Status, &description,
		&website, &sections, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning ecosystem product row: %w", err)
	}
	p.Description = description.String
	p.Website = website.String
	p.CreatedAt = parseTime(createdAt)

	if sections.Valid {
		var sec productSections
		if err := json.Unmarshal([]byte(sections.String), &sec); err != nil {
			return nil, fmt.Errorf("parsing product sections: %w", err)
		}
		p.Metrics = sec.Metrics
		p.Brand = sec.Brand
		p.Community = sec.Community
		p.Content = sec.Content
		p.Legal = sec.Legal
		p.Product = sec.Product
	}
	return &p, nil
}

// CreateEcosystemProduct inserts a new catalog entry and returns its identifier.
func (s *SQLiteStore) CreateEcosystemProduct(ctx context.Context, p *EcosystemProduct) (string, error) {
	if err := ValidateEcosystemProduct(p); err != nil {
		return "", err
	}

	id := newID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	sections, err := marshalSections(p)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ecosystem_products (id, slug, name, status, description, website, sections, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Slug, p.Name, p.Status, nullString(p.Description), nullString(p.Website),
		sections, formatTime(p.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting ecosystem product: %w", err)
	}

	s.logger.Debug("created ecosystem product", "id", id, "slug", p.Slug)
	return id, nil
}

// ListActivities returns the most recent feed entries, newest first.
// A limit of zero applies DefaultActivityLimit.
func (s *SQLiteStore) ListActivities(ctx context.Context, limit int) ([]*Activity, error) {
	limit = normalizeLimit(limit, DefaultActivityLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, description, timestamp, metadata, created_at
		FROM activities
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var activities []*Activity
	for rows.Next() {
		var a Activity
		var metadata sql.NullString
		var timestamp, createdAt string

		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &timestamp, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		a.Timestamp = parseTime(timestamp)
		a.CreatedAt = parseTime(createdAt)
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &a.Metadata); err != nil {
				return nil, fmt.Errorf("parsing activity metadata: %w", err)
			}
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}

// AddActivity records a feed entry and returns its identifier.
func (s *SQLiteStore) AddActivity(ctx context.Context, a *Activity) (string, error) {
	if err := ValidateActivity(a); err != nil {
		return "", err
	}

	id := newID()
	now := time.Now()
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}

	var metadata any
	if len(a.Metadata) > 0 {
		var err error
		metadata, err = marshalJSON(a.Metadata)
		if err != nil {
			return "", err
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, type, description, timestamp, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, a.Type, a.Description, formatTime(a.Timestamp), metadata, formatTime(a.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("inserting activity: %w", err)
	}
	return id, nil
}
