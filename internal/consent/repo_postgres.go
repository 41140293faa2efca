package consent

import (
	"context"
	"database/sql"
)

// PostgresRepo persists consent entries in consent_log. Insert and select
// only; the table has no update or delete issued from this codebase and
// rows fall under the permanent retention class.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO consent_log (id, call_session_id, party_id, origin_addr, outcome, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.CallSessionID, e.PartyID, e.OriginAddr, e.Outcome, e.CreatedAt)
	return err
}

func (r *PostgresRepo) ListByCall(ctx context.Context, callSessionID string) ([]Entry, error) {
	const q = `
SELECT id, call_session_id, party_id, origin_addr, outcome, created_at
FROM consent_log WHERE call_session_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, callSessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CallSessionID, &e.PartyID, &e.OriginAddr, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
