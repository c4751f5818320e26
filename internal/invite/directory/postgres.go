package directory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/sentinel"
	"roster/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// Schema creates the tables PostgresDirectory reads.
const Schema = `
CREATE TABLE IF NOT EXISTS org_learners (
	org_id     UUID        NOT NULL,
	email      TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (org_id, email)
);
CREATE TABLE IF NOT EXISTS learner_groups (
	id     UUID PRIMARY KEY,
	org_id UUID NOT NULL
);
CREATE TABLE IF NOT EXISTS learner_group_members (
	group_id UUID NOT NULL REFERENCES learner_groups (id) ON DELETE CASCADE,
	email    TEXT NOT NULL,
	PRIMARY KEY (group_id, email)
);
`

// PostgresDirectory reads learners and group members from PostgreSQL.
// Writes join the transaction carried by ctx when there is one.
type PostgresDirectory struct {
	db        *sql.DB
	txTimeout time.Duration
}

func NewPostgres(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db, txTimeout: defaultTxTimeout}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (d *PostgresDirectory) execer(ctx context.Context) execer {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return d.db
}

// RunInTx runs fn inside one transaction; writes made through ctx commit or
// roll back together.
func (d *PostgresDirectory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.txTimeout)
		defer cancel()
	}

	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin directory transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit directory transaction: %w", err)
	}
	return nil
}

// EnsureSchema applies Schema. Safe to call repeatedly.
func (d *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure directory schema: %w", err)
	}
	return nil
}

func (d *PostgresDirectory) ListLearnerEmails(ctx context.Context, orgID id.OrgID) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT email FROM org_learners WHERE org_id = $1 ORDER BY created_at, email`,
		orgID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list org learners: %w", err)
	}
	return scanEmails(rows)
}

func (d *PostgresDirectory) ListMemberEmails(ctx context.Context, orgID id.OrgID, groupID id.GroupID) ([]string, error) {
	var exists bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM learner_groups WHERE id = $1 AND org_id = $2)`,
		groupID.String(), orgID.String(),
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check learner group: %w", err)
	}
	if !exists {
		return nil, sentinel.ErrNotFound
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT email FROM learner_group_members WHERE group_id = $1 ORDER BY email`,
		groupID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return scanEmails(rows)
}

// ImportLearners registers emails with an organization in one round trip.
func (d *PostgresDirectory) ImportLearners(ctx context.Context, orgID id.OrgID, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	query := `
		INSERT INTO org_learners (org_id, email)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (org_id, email) DO NOTHING
	`
	if _, err := d.execer(ctx).ExecContext(ctx, query, orgID.String(), pq.Array(emails)); err != nil {
		return fmt.Errorf("import org learners: %w", err)
	}
	return nil
}

// AddGroupMembers creates the group if needed and adds members to it.
func (d *PostgresDirectory) AddGroupMembers(ctx context.Context, orgID id.OrgID, groupID id.GroupID, emails []string) error {
	if _, ok := tx.From(ctx); !ok {
		return d.RunInTx(ctx, func(ctx context.Context) error {
			return d.AddGroupMembers(ctx, orgID, groupID, emails)
		})
	}

	exec := d.execer(ctx)
	if _, err := exec.ExecContext(ctx,
		`INSERT INTO learner_groups (id, org_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		groupID.String(), orgID.String(),
	); err != nil {
		return fmt.Errorf("create learner group: %w", err)
	}
	if len(emails) == 0 {
		return nil
	}
	if _, err := exec.ExecContext(ctx, `
		INSERT INTO learner_group_members (group_id, email)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (group_id, email) DO NOTHING
	`, groupID.String(), pq.Array(emails)); err != nil {
		return fmt.Errorf("add group members: %w", err)
	}
	return nil
}

func scanEmails(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emails: %w", err)
	}
	return out, nil
}
