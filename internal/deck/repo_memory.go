package deck

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests and local wiring.

type MemoryRepo struct {
	mu    sync.RWMutex
	decks map[string]Deck
	cards map[string][]Card
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		decks: make(map[string]Deck),
		cards: make(map[string][]Card),
	}
}

func (r *MemoryRepo) InsertDeck(ctx context.Context, d Deck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decks[d.ID] = d
	return nil
}

func (r *MemoryRepo) GetDeck(ctx context.Context, id string) (Deck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decks[id]
	if !ok {
		return Deck{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryRepo) InsertCard(ctx context.Context, c Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.decks[c.DeckID]
	if !ok {
		return ErrNotFound
	}
	// Write-boundary guard: published decks take no new rows.
	if d.Status == DeckStatusPublished {
		return ErrDeckPublished
	}
	for _, existing := range r.cards[c.DeckID] {
		if existing.Position == c.Position && existing.IsBack == c.IsBack {
			return ErrInvalidCard
		}
	}
	r.cards[c.DeckID] = append(r.cards[c.DeckID], c)
	return nil
}

func (r *MemoryRepo) ListCards(ctx context.Context, deckID string) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Card, len(r.cards[deckID]))
	copy(out, r.cards[deckID])
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *MemoryRepo) MarkPublished(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.decks[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = DeckStatusPublished
	d.PublishedAt = at
	r.decks[id] = d
	return nil
}
