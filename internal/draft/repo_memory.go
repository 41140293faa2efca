package draft

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory draft store for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{drafts: make(map[string]Draft)}
}

func (r *MemoryRepo) Insert(ctx context.Context, d Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = d
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryRepo) ListBySession(ctx context.Context, sessionID string) ([]Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Draft
	for _, d := range r.drafts {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.Before(out[j].GeneratedAt) })
	return out, nil
}
