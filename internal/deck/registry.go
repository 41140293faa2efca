package deck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository abstracts deck persistence.
//
// Implementations must treat published decks as read-only: InsertCard and
// MarkPublished are the only mutators, and InsertCard must refuse rows for a
// published deck at the write boundary.

type Repository interface {
	InsertDeck(ctx context.Context, d Deck) error
	GetDeck(ctx context.Context, id string) (Deck, error)
	InsertCard(ctx context.Context, c Card) error
	ListCards(ctx context.Context, deckID string) ([]Card, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
}

var (
	ErrNotFound       = errors.New("deck: not found")
	ErrDeckPublished  = errors.New("deck: deck is published and immutable")
	ErrDeckIncomplete = errors.New("deck: deck is incomplete")
	ErrDeckNotReady   = errors.New("deck: deck is not published")
	ErrInvalidCard    = errors.New("deck: invalid card")
)

// Registry owns the immutable card catalogs consumed by the reveal engine.
type Registry struct {
	repo  Repository
	clock func() time.Time
}

func NewRegistry(repo Repository) *Registry {
	return &Registry{repo: repo, clock: time.Now}
}

func (r *Registry) CreateDeck(ctx context.Context, name string) (Deck, error) {
	if name == "" {
		return Deck{}, errors.New("deck: name is required")
	}
	d := Deck{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    DeckStatusDraft,
		CreatedAt: r.clock().UTC(),
	}
	if err := r.repo.InsertDeck(ctx, d); err != nil {
		return Deck{}, err
	}
	return d, nil
}

// AddCard appends a card to a draft deck. Back cards use position 0.
func (r *Registry) AddCard(ctx context.Context, deckID string, position int, isBack bool, assetRef, title string) error {
	if assetRef == "" {
		return ErrInvalidCard
	}
	if isBack && position != backPosition {
		return ErrInvalidCard
	}
	if !isBack && (position < 1 || position > FaceCardCount) {
		return ErrInvalidCard
	}

	d, err := r.repo.GetDeck(ctx, deckID)
	if err != nil {
		return err
	}
	if d.Status == DeckStatusPublished {
		return ErrDeckPublished
	}

	return r.repo.InsertCard(ctx, Card{
		DeckID:   deckID,
		Position: position,
		IsBack:   isBack,
		AssetRef: assetRef,
		Title:    title,
	})
}

// Publish freezes a deck. Incomplete decks (anything but 78 face + 1 back)
// are refused outright.
func (r *Registry) Publish(ctx context.Context, deckID string) (Deck, error) {
	d, err := r.repo.GetDeck(ctx, deckID)
	if err != nil {
		return Deck{}, err
	}
	if d.Status == DeckStatusPublished {
		return d, nil // already frozen; publishing is idempotent
	}

	cards, err := r.repo.ListCards(ctx, deckID)
	if err != nil {
		return Deck{}, err
	}
	if !IsComplete(cards) {
		return Deck{}, ErrDeckIncomplete
	}

	now := r.clock().UTC()
	if err := r.repo.MarkPublished(ctx, deckID, now); err != nil {
		return Deck{}, err
	}
	d.Status = DeckStatusPublished
	d.PublishedAt = now
	return d, nil
}

// GetPublished returns a deck only if it has been published.
// Reading sessions must never be created against draft decks.
func (r *Registry) GetPublished(ctx context.Context, deckID string) (Deck, error) {
	d, err := r.repo.GetDeck(ctx, deckID)
	if err != nil {
		return Deck{}, err
	}
	if d.Status != DeckStatusPublished {
		return Deck{}, ErrDeckNotReady
	}
	return d, nil
}

// FaceCards returns the 78 face cards of a published deck ordered by position.
func (r *Registry) FaceCards(ctx context.Context, deckID string) ([]Card, error) {
	if _, err := r.GetPublished(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := r.repo.ListCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	faces := make([]Card, 0, FaceCardCount)
	for _, c := range cards {
		if !c.IsBack {
			faces = append(faces, c)
		}
	}
	return faces, nil
}

// CardsAt returns the face cards of a published deck at the given deck
// positions, in request order.
func (r *Registry) CardsAt(ctx context.Context, deckID string, positions []int) ([]Card, error) {
	faces, err := r.FaceCards(ctx, deckID)
	if err != nil {
		return nil, err
	}
	byPos := make(map[int]Card, len(faces))
	for _, c := range faces {
		byPos[c.Position] = c
	}

	out := make([]Card, 0, len(positions))
	for _, p := range positions {
		c, ok := byPos[p]
		if !ok {
			return nil, fmt.Errorf("%w: no face card at position %d", ErrInvalidCard, p)
		}
		out = append(out, c)
	}
	return out, nil
}
