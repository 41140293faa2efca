package reading

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests.
// It enforces the same write-boundary ordering rule as the Postgres
// implementation: reveals commit only at position = revealCount+1.

type MemoryRepo struct {
	mu       sync.Mutex
	sessions map[string]Session
	reveals  map[string][]Reveal
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		sessions: make(map[string]Session),
		reveals:  make(map[string][]Reveal),
	}
}

func (r *MemoryRepo) InsertSession(ctx context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *MemoryRepo) GetSession(ctx context.Context, id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepo) AppendReveal(ctx context.Context, sessionID string, position int, cardRef string, at time.Time) (Session, Reveal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, Reveal{}, ErrNotFound
	}
	// Compare-and-append: the cursor must still sit just below position.
	if position != s.RevealCount+1 || s.Completed {
		return Session{}, Reveal{}, ErrInvalidSequence
	}

	rev := Reveal{SessionID: sessionID, Position: position, CardRef: cardRef, CreatedAt: at}
	r.reveals[sessionID] = append(r.reveals[sessionID], rev)

	s.RevealCount = position
	s.Completed = s.RevealCount >= s.SpreadSize
	s.UpdatedAt = at
	r.sessions[sessionID] = s

	return s, rev, nil
}

func (r *MemoryRepo) GetReveal(ctx context.Context, sessionID string, position int) (Reveal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reveals[sessionID] {
		if rev.Position == position {
			return rev, true, nil
		}
	}
	return Reveal{}, false, nil
}

func (r *MemoryRepo) ListReveals(ctx context.Context, sessionID string) ([]Reveal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Reveal, len(r.reveals[sessionID]))
	copy(out, r.reveals[sessionID])
	return out, nil
}
