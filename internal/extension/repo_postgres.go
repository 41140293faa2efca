package extension

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, e Extension) error {
	const q = `
INSERT INTO extensions (id, original_booking_id, new_booking_id, new_call_session_id, minutes, price_minor, currency, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.OriginalBookingID, e.NewBookingID, e.NewCallSessionID,
		e.Minutes, e.PriceMinor, e.Currency, e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Extension, error) {
	const q = `
SELECT id, original_booking_id, new_booking_id, new_call_session_id, minutes, price_minor, currency, created_at
FROM extensions WHERE id = $1
`
	var e Extension
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.OriginalBookingID, &e.NewBookingID, &e.NewCallSessionID,
		&e.Minutes, &e.PriceMinor, &e.Currency, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Extension{}, ErrNotFound
	}
	if err != nil {
		return Extension{}, err
	}
	return e, nil
}

func (r *PostgresRepo) ListByOriginalBooking(ctx context.Context, originalBookingID string) ([]Extension, error) {
	const q = `
SELECT id, original_booking_id, new_booking_id, new_call_session_id, minutes, price_minor, currency, created_at
FROM extensions WHERE original_booking_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, originalBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Extension
	for rows.Next() {
		var e Extension
		if err := rows.Scan(
			&e.ID, &e.OriginalBookingID, &e.NewBookingID, &e.NewCallSessionID,
			&e.Minutes, &e.PriceMinor, &e.Currency, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
