package deck

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo persists decks and deck_cards.
//
// NOTE: This repository assumes the following tables exist:
// - decks (id, name, status, created_at, published_at)
// - deck_cards (deck_id, position, is_back, asset_ref, title)
//   with UNIQUE (deck_id, position, is_back)
//
// InsertCard refuses rows for published decks at the SQL level so catalog
// immutability does not depend on service-layer checks alone.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) InsertDeck(ctx context.Context, d Deck) error {
	const q = `
INSERT INTO decks (id, name, status, created_at)
VALUES ($1,$2,$3,$4)
`
	_, err := r.db.ExecContext(ctx, q, d.ID, d.Name, d.Status, d.CreatedAt)
	return err
}

func (r *PostgresRepo) GetDeck(ctx context.Context, id string) (Deck, error) {
	const q = `
SELECT id, name, status, created_at, COALESCE(published_at, 'epoch'::timestamptz)
FROM decks
WHERE id = $1
`
	var d Deck
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID,
		&d.Name,
		&d.Status,
		&d.CreatedAt,
		&d.PublishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Deck{}, ErrNotFound
		}
		return Deck{}, err
	}
	return d, nil
}

func (r *PostgresRepo) InsertCard(ctx context.Context, c Card) error {
	const q = `
INSERT INTO deck_cards (deck_id, position, is_back, asset_ref, title)
SELECT $1,$2,$3,$4,$5
WHERE EXISTS (
  SELECT 1 FROM decks WHERE id = $1 AND status <> 'published'
)
`
	res, err := r.db.ExecContext(ctx, q, c.DeckID, c.Position, c.IsBack, c.AssetRef, c.Title)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDeckPublished
	}
	return nil
}

func (r *PostgresRepo) ListCards(ctx context.Context, deckID string) ([]Card, error) {
	const q = `
SELECT deck_id, position, is_back, asset_ref, title
FROM deck_cards
WHERE deck_id = $1
ORDER BY position ASC
`
	rows, err := r.db.QueryContext(ctx, q, deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var c Card
		if err := rows.Scan(&c.DeckID, &c.Position, &c.IsBack, &c.AssetRef, &c.Title); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	const q = `
UPDATE decks
SET status = 'published', published_at = $2
WHERE id = $1 AND status = 'draft'
`
	res, err := r.db.ExecContext(ctx, q, id, at)
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
