package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records compliance-relevant events.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to clients.
// - Unlike ordinary ops logging, audit writes here are NOT best-effort:
//   callers of the compliance paths treat an append failure as a failure of
//   the operation itself.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.SessionID == "" && e.CallID == "" && e.BookingID == "" && e.DraftID == "" {
		// Every event must point at the entity it describes.
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogCardRevealed records one successful reveal at a position.
func (s *Service) LogCardRevealed(ctx context.Context, sessionID, actorUserID, actorRole string, position int, cardRef string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCardRevealed,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		SessionID:   sessionID,
		Position:    position,
		Message:     "card revealed",
		Metadata:    cardRef,
	})
}

// LogDraftAccessed records a successful reader access to an AI draft.
// This is the primary compliance signal that draft isolation is intact.
func (s *Service) LogDraftAccessed(ctx context.Context, draftID, sessionID, readerID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeDraftAccessed,
		ActorUserID: readerID,
		ActorRole:   "reader",
		SessionID:   sessionID,
		DraftID:     draftID,
		Message:     "ai draft accessed",
	})
}

// LogConsent records a consent outcome (granted or declined) for a call.
func (s *Service) LogConsent(ctx context.Context, callID, partyID, ip string, granted bool) error {
	t := EventTypeConsentGranted
	msg := "consent granted"
	if !granted {
		t = EventTypeConsentDeclined
		msg = "consent declined"
	}
	return s.Append(ctx, Event{
		Type:        t,
		ActorUserID: partyID,
		IPAddress:   ip,
		CallID:      callID,
		Message:     msg,
	})
}

// LogConsentRejected records a consent attempt refused for a missing or
// unparseable origin address. Compliance failures are logged, not just returned.
func (s *Service) LogConsentRejected(ctx context.Context, callID, partyID, rawOrigin string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeConsentRejected,
		ActorUserID: partyID,
		CallID:      callID,
		Message:     "consent rejected: missing origin",
		Metadata:    rawOrigin,
	})
}

// LogCaptureBlocked records a capture attempt refused by the consent gate.
func (s *Service) LogCaptureBlocked(ctx context.Context, callID, actorUserID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCaptureBlocked,
		ActorUserID: actorUserID,
		CallID:      callID,
		Message:     "capture blocked: consent required",
	})
}

// LogCaptureStarted records the start of recording/data capture on a call.
func (s *Service) LogCaptureStarted(ctx context.Context, callID, actorUserID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeCaptureStarted,
		ActorUserID: actorUserID,
		CallID:      callID,
		Message:     "capture started",
	})
}

// LogCallEnded records a call ending; unconsented marks the grace-window path.
func (s *Service) LogCallEnded(ctx context.Context, callID string, unconsented bool) error {
	t := EventTypeCallEnded
	msg := "call ended"
	if unconsented {
		t = EventTypeCallEndedNoConsent
		msg = "call ended without consent; no recording"
	}
	return s.Append(ctx, Event{
		Type:    t,
		CallID:  callID,
		Message: msg,
	})
}

// LogExtensionCreated records the creation of an emergency-extension booking.
func (s *Service) LogExtensionCreated(ctx context.Context, extensionID, originalBookingID, newBookingID, actorUserID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeExtensionCreated,
		ActorUserID: actorUserID,
		BookingID:   originalBookingID,
		ExtensionID: extensionID,
		Message:     "emergency extension created",
		Metadata:    newBookingID,
	})
}
