package transport

import (
	"context"
	"time"
)

// Provider defines the provider-agnostic media transport interface used by
// business logic.
//
// Rules:
// - No provider SDK or HTTP calls outside transport adapters.
// - Request/response types stay provider-agnostic; raw provider payloads go
//   in metadata if needed.
// - Adapters never decide whether capture is allowed; the consent gate does.
type Provider interface {
	Name() string
	HealthCheck(ctx context.Context) error

	StartCapture(ctx context.Context, req StartCaptureRequest) (StartCaptureResult, error)
	StopCapture(ctx context.Context, req StopCaptureRequest) (StopCaptureResult, error)
}

// StartCaptureRequest asks the provider to begin recording a live call.
type StartCaptureRequest struct {
	CallSessionID string `json:"call_session_id"`

	// ProviderCallID is the provider's identifier for the live call leg.
	ProviderCallID string `json:"provider_call_id"`
}

type StartCaptureResult struct {
	// RecordingRef is the provider reference for the media object. Stored on
	// the call session and treated as permanent once the call ends.
	RecordingRef string    `json:"recording_ref"`
	StartedAt    time.Time `json:"started_at"`
}

type StopCaptureRequest struct {
	CallSessionID  string `json:"call_session_id"`
	ProviderCallID string `json:"provider_call_id"`
	RecordingRef   string `json:"recording_ref"`
}

type StopCaptureResult struct {
	StoppedAt time.Time `json:"stopped_at"`
}
