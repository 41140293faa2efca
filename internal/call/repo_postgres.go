package call

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const sessionColumns = `
id, booking_id, reader_id, client_id, scheduled_minutes, status,
provider_call_id, recording_ref, recording_permanent,
started_at, ended_at, created_at, updated_at
`

func (r *PostgresRepo) Insert(ctx context.Context, s Session) error {
	const q = `
INSERT INTO call_sessions (` + sessionColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.BookingID, s.ReaderID, s.ClientID, s.ScheduledMinutes, s.Status,
		s.ProviderCallID, s.RecordingRef, s.RecordingPermanent,
		nullTime(s.StartedAt), nullTime(s.EndedAt), s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM call_sessions WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByBooking(ctx context.Context, bookingID string) (Session, error) {
	const q = `
SELECT ` + sessionColumns + ` FROM call_sessions
WHERE booking_id = $1
ORDER BY created_at DESC
LIMIT 1
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, bookingID))
}

func (r *PostgresRepo) Update(ctx context.Context, s Session) error {
	const q = `
UPDATE call_sessions SET
  status = $2,
  provider_call_id = $3,
  recording_ref = $4,
  recording_permanent = $5,
  started_at = $6,
  ended_at = $7,
  updated_at = $8
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		s.ID, s.Status, s.ProviderCallID, s.RecordingRef, s.RecordingPermanent,
		nullTime(s.StartedAt), nullTime(s.EndedAt), s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]Session, error) {
	const q = `
SELECT ` + sessionColumns + ` FROM call_sessions
WHERE status = 'active' AND started_at IS NOT NULL AND started_at < $1
`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepo) scanOne(row *sql.Row) (Session, error) {
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

func scanSession(row rowScanner) (Session, error) {
	var s Session
	var started, ended sql.NullTime
	err := row.Scan(
		&s.ID, &s.BookingID, &s.ReaderID, &s.ClientID, &s.ScheduledMinutes, &s.Status,
		&s.ProviderCallID, &s.RecordingRef, &s.RecordingPermanent,
		&started, &ended, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return Session{}, err
	}
	if started.Valid {
		s.StartedAt = started.Time
	}
	if ended.Valid {
		s.EndedAt = ended.Time
	}
	return s, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
