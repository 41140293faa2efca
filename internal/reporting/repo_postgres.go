package reporting

import (
	"context"
	"database/sql"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/call"
)

// PostgresRepo reads report sources. SELECT only.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListByTypeBetween(ctx context.Context, t audit.EventType, from, to time.Time) ([]audit.Event, error) {
	const q = `
SELECT id, type, actor_user_id, actor_role, ip_address,
       session_id, call_id, draft_id, booking_id, extension_id,
       position, message, metadata, created_at
FROM audit_log
WHERE type = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, t, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(
			&e.ID, &e.Type, &e.ActorUserID, &e.ActorRole, &e.IPAddress,
			&e.SessionID, &e.CallID, &e.DraftID, &e.BookingID, &e.ExtensionID,
			&e.Position, &e.Message, &e.Metadata, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListEndedBetween(ctx context.Context, from, to time.Time) ([]call.Session, error) {
	const q = `
SELECT id, booking_id, reader_id, client_id, scheduled_minutes, status,
       provider_call_id, recording_ref, recording_permanent,
       started_at, ended_at, created_at, updated_at
FROM call_sessions
WHERE status = 'ended' AND ended_at >= $1 AND ended_at < $2
ORDER BY ended_at
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []call.Session
	for rows.Next() {
		var c call.Session
		var started, ended sql.NullTime
		if err := rows.Scan(
			&c.ID, &c.BookingID, &c.ReaderID, &c.ClientID, &c.ScheduledMinutes, &c.Status,
			&c.ProviderCallID, &c.RecordingRef, &c.RecordingPermanent,
			&started, &ended, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if started.Valid {
			c.StartedAt = started.Time
		}
		if ended.Valid {
			c.EndedAt = ended.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
