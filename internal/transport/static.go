package transport

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StaticProvider is an in-process provider for tests and local runs. It
// mints deterministic recording refs and tracks captures in memory.
type StaticProvider struct {
	// FailStart, when set, is returned from StartCapture.
	FailStart error

	mu     sync.Mutex
	serial int
	active map[string]string // call session id -> recording ref
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{active: make(map[string]string)}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) HealthCheck(ctx context.Context) error { return nil }

func (p *StaticProvider) StartCapture(ctx context.Context, req StartCaptureRequest) (StartCaptureResult, error) {
	if p.FailStart != nil {
		return StartCaptureResult{}, p.FailStart
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.serial++
	ref := fmt.Sprintf("rec-%04d", p.serial)
	p.active[req.CallSessionID] = ref
	return StartCaptureResult{RecordingRef: ref, StartedAt: time.Now().UTC()}, nil
}

func (p *StaticProvider) StopCapture(ctx context.Context, req StopCaptureRequest) (StopCaptureResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, req.CallSessionID)
	return StopCaptureResult{StoppedAt: time.Now().UTC()}, nil
}

// Captured reports the recording ref started for a call session, if any.
func (p *StaticProvider) Captured(callSessionID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ref, ok := p.active[callSessionID]
	return ref, ok
}
