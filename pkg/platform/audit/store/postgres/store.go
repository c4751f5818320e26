package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "roster/pkg/domain"
	audit "roster/pkg/platform/audit"
)

// Schema creates the audit_events table.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	category   TEXT        NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL,
	org_id     UUID,
	subject    TEXT        NOT NULL DEFAULT '',
	action     TEXT        NOT NULL,
	decision   TEXT        NOT NULL DEFAULT '',
	reason     TEXT        NOT NULL DEFAULT '',
	count      INTEGER     NOT NULL DEFAULT 0,
	request_id TEXT        NOT NULL DEFAULT '',
	actor_id   TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_org_idx ON audit_events (org_id, timestamp);
`

// Store persists audit events in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema applies Schema. Safe to call repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append inserts an audit event. The category is always derived from the action.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()

	var orgID *uuid.UUID
	if !event.OrgID.IsNil() {
		oid := uuid.UUID(event.OrgID)
		orgID = &oid
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, org_id, subject, action,
			decision, reason, count, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		orgID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.Count,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByOrg returns an organization's events, oldest first.
func (s *Store) ListByOrg(ctx context.Context, orgID id.OrgID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, org_id, subject, action,
			   decision, reason, count, request_id, actor_id
		FROM audit_events
		WHERE org_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(orgID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	events := []audit.Event{}
	for rows.Next() {
		var (
			e        audit.Event
			category string
			orgID    uuid.NullUUID
		)
		if err := rows.Scan(&category, &e.Timestamp, &orgID, &e.Subject, &e.Action,
			&e.Decision, &e.Reason, &e.Count, &e.RequestID, &e.ActorID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		if orgID.Valid {
			e.OrgID = id.OrgID(orgID.UUID)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
