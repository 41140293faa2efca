package extension

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("extension: not found")

type MemoryRepo struct {
	mu         sync.Mutex
	extensions map[string]Extension
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{extensions: make(map[string]Extension)}
}

func (r *MemoryRepo) Insert(ctx context.Context, e Extension) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extensions[e.ID] = e
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Extension, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.extensions[id]
	if !ok {
		return Extension{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) ListByOriginalBooking(ctx context.Context, originalBookingID string) ([]Extension, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Extension
	for _, e := range r.extensions {
		if e.OriginalBookingID == originalBookingID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
