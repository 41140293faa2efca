package reporting

import (
	"context"
	"sync"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/call"
)

// MemoryRepo implements AuditSource and CallSource for tests.
type MemoryRepo struct {
	mu     sync.Mutex
	events []audit.Event
	calls  []call.Session
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) AddEvent(e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *MemoryRepo) AddCall(c call.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *MemoryRepo) ListByTypeBetween(ctx context.Context, t audit.EventType, from, to time.Time) ([]audit.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Type == t && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListEndedBetween(ctx context.Context, from, to time.Time) ([]call.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []call.Session
	for _, c := range r.calls {
		if c.Status == call.StatusEnded && !c.EndedAt.Before(from) && c.EndedAt.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}
