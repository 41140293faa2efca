package draft

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists drafts in ai_drafts.
//
// The table carries visible_to_client BOOLEAN NOT NULL DEFAULT FALSE with
// CHECK (visible_to_client = FALSE). The insert below writes the literal
// FALSE and no UPDATE statement for that column exists anywhere in the
// codebase; client visibility cannot be flipped from Go or from SQL issued
// by this service.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, d Draft) error {
	const q = `
INSERT INTO ai_drafts (id, session_id, model, content, visible_to_client, generated_at)
VALUES ($1, $2, $3, $4, FALSE, $5)
`
	_, err := r.db.ExecContext(ctx, q, d.ID, d.SessionID, d.Model, d.Content, d.GeneratedAt)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Draft, error) {
	const q = `
SELECT id, session_id, model, content, generated_at
FROM ai_drafts WHERE id = $1
`
	var d Draft
	err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.SessionID, &d.Model, &d.Content, &d.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	return d, nil
}

func (r *PostgresRepo) ListBySession(ctx context.Context, sessionID string) ([]Draft, error) {
	const q = `
SELECT id, session_id, model, content, generated_at
FROM ai_drafts WHERE session_id = $1
ORDER BY generated_at
`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.SessionID, &d.Model, &d.Content, &d.GeneratedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
