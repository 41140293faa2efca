package reading

import (
	"context"
	"errors"
	"sync"
	"time"

	"consultation-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// ErrSessionBusy means the per-session lock could not be acquired in time.
// Unlike the protocol errors, this is retryable: callers should retry the
// same request, never drop it.
var ErrSessionBusy = errors.New("reading: session busy")

// SessionLocker serializes writers for one session without blocking other
// sessions. Lock returns an unlock func; holders must not keep the lock
// across external calls (AI generation, transport).
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (func(context.Context) error, error)
}

// RedisSessionLocker backs SessionLocker with a keyed Redis lock so the
// single-writer discipline holds across API instances.
type RedisSessionLocker struct {
	RDB  *redis.Client
	TTL  time.Duration
	Wait time.Duration
}

func (l *RedisSessionLocker) Lock(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	lock, err := utils.AcquireKeyedLock(ctx, l.RDB, "session_lock:"+sessionID, l.TTL, l.Wait)
	if err != nil {
		if errors.Is(err, utils.ErrLockNotAcquired) {
			return nil, ErrSessionBusy
		}
		return nil, err
	}
	return lock.Release, nil
}

// MemorySessionLocker is a process-local locker for tests and single-instance runs.
type MemorySessionLocker struct {
	Wait time.Duration

	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMemorySessionLocker(wait time.Duration) *MemorySessionLocker {
	return &MemorySessionLocker{Wait: wait, locks: make(map[string]chan struct{})}
}

func (l *MemorySessionLocker) Lock(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	l.mu.Lock()
	ch, ok := l.locks[sessionID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[sessionID] = ch
	}
	l.mu.Unlock()

	wait := l.Wait
	if wait <= 0 {
		wait = 2 * time.Second
	}

	select {
	case ch <- struct{}{}:
		return func(context.Context) error {
			<-ch
			return nil
		}, nil
	case <-time.After(wait):
		return nil, ErrSessionBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
