package reading

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"consultation-platform/pkg/utils"
)

// PostgresRepo persists sessions and reveals.
//
// NOTE: This repository assumes the following tables exist:
// - reading_sessions (id, booking_id, deck_id, reader_id, client_id,
//   spread_size, reveal_count, draw_order JSONB, completed, created_at, updated_at)
// - session_reveals (session_id, position, card_ref, created_at)
//   with UNIQUE (session_id, position)
//
// The ordering invariant is enforced here, not just in the service: the
// cursor bump is a conditional UPDATE keyed on the previous reveal_count, and
// the reveal insert rides in the same transaction. A concurrent writer that
// lost the race gets zero rows affected and ErrInvalidSequence.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) InsertSession(ctx context.Context, s Session) error {
	order, err := json.Marshal(s.DrawOrder)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO reading_sessions (
  id, booking_id, deck_id, reader_id, client_id,
  spread_size, reveal_count, draw_order, completed, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err = r.db.ExecContext(ctx, q,
		s.ID,
		s.BookingID,
		s.DeckID,
		s.ReaderID,
		s.ClientID,
		s.SpreadSize,
		s.RevealCount,
		string(order),
		s.Completed,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetSession(ctx context.Context, id string) (Session, error) {
	const q = `
SELECT id, booking_id, deck_id, reader_id, client_id,
       spread_size, reveal_count, draw_order, completed, created_at, updated_at
FROM reading_sessions
WHERE id = $1
`
	var s Session
	var order string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID,
		&s.BookingID,
		&s.DeckID,
		&s.ReaderID,
		&s.ClientID,
		&s.SpreadSize,
		&s.RevealCount,
		&order,
		&s.Completed,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(order), &s.DrawOrder); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *PostgresRepo) AppendReveal(ctx context.Context, sessionID string, position int, cardRef string, at time.Time) (Session, Reveal, error) {
	var outSession Session
	var outReveal Reveal

	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const bump = `
UPDATE reading_sessions
SET reveal_count = reveal_count + 1,
    completed = (reveal_count + 1 >= spread_size),
    updated_at = $3
WHERE id = $1 AND reveal_count = $2 AND NOT completed
RETURNING id, booking_id, deck_id, reader_id, client_id,
          spread_size, reveal_count, draw_order, completed, created_at, updated_at
`
		var order string
		if err := tx.QueryRowContext(ctx, bump, sessionID, position-1, at).Scan(
			&outSession.ID,
			&outSession.BookingID,
			&outSession.DeckID,
			&outSession.ReaderID,
			&outSession.ClientID,
			&outSession.SpreadSize,
			&outSession.RevealCount,
			&order,
			&outSession.Completed,
			&outSession.CreatedAt,
			&outSession.UpdatedAt,
		); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Cursor moved (or session missing): distinguish for the caller.
				var exists bool
				if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reading_sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
					return err
				}
				if !exists {
					return ErrNotFound
				}
				return ErrInvalidSequence
			}
			return err
		}
		if err := json.Unmarshal([]byte(order), &outSession.DrawOrder); err != nil {
			return err
		}

		const ins = `
INSERT INTO session_reveals (session_id, position, card_ref, created_at)
VALUES ($1,$2,$3,$4)
`
		if _, err := tx.ExecContext(ctx, ins, sessionID, position, cardRef, at); err != nil {
			return err
		}

		outReveal = Reveal{SessionID: sessionID, Position: position, CardRef: cardRef, CreatedAt: at}
		return nil
	})
	if err != nil {
		return Session{}, Reveal{}, err
	}
	return outSession, outReveal, nil
}

func (r *PostgresRepo) GetReveal(ctx context.Context, sessionID string, position int) (Reveal, bool, error) {
	const q = `
SELECT session_id, position, card_ref, created_at
FROM session_reveals
WHERE session_id = $1 AND position = $2
`
	var rev Reveal
	err := r.db.QueryRowContext(ctx, q, sessionID, position).Scan(
		&rev.SessionID,
		&rev.Position,
		&rev.CardRef,
		&rev.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reveal{}, false, nil
		}
		return Reveal{}, false, err
	}
	return rev, true, nil
}

func (r *PostgresRepo) ListReveals(ctx context.Context, sessionID string) ([]Reveal, error) {
	const q = `
SELECT session_id, position, card_ref, created_at
FROM session_reveals
WHERE session_id = $1
ORDER BY position ASC
`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reveal
	for rows.Next() {
		var rev Reveal
		if err := rows.Scan(&rev.SessionID, &rev.Position, &rev.CardRef, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
