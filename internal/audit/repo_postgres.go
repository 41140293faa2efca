package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists audit events.
//
// NOTE: This repository assumes the audit_log table exists with an
// INSERT-only policy. The retention column lets external cleanup jobs skip
// permanent rows without knowing the event taxonomy.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_log (
  id, type, actor_user_id, actor_role, ip_address,
  session_id, call_id, draft_id, booking_id, extension_id,
  position, message, metadata, retention, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Type,
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		e.SessionID,
		e.CallID,
		e.DraftID,
		e.BookingID,
		e.ExtensionID,
		e.Position,
		e.Message,
		e.Metadata,
		Retention(e.Type),
		e.CreatedAt,
	)
	return err
}
