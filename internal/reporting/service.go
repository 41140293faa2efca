package reporting

import (
	"context"
	"errors"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/call"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Sources for reports are immutable by construction: the append-only audit
// log and ended call sessions. Reporting never writes.

type AuditSource interface {
	ListByTypeBetween(ctx context.Context, t audit.EventType, from, to time.Time) ([]audit.Event, error)
}

type CallSource interface {
	ListEndedBetween(ctx context.Context, from, to time.Time) ([]call.Session, error)
}

type Service struct {
	audits AuditSource
	calls  CallSource
}

func NewService(audits AuditSource, calls CallSource) *Service {
	return &Service{audits: audits, calls: calls}
}

func (s *Service) validate(w Window) error {
	if w.From.IsZero() || w.To.IsZero() || !w.From.Before(w.To) {
		return ErrInvalidRequest
	}
	return nil
}

// ConsentCoverage reports ended calls against recorded consent decisions.
func (s *Service) ConsentCoverage(ctx context.Context, w Window) (ConsentCoverage, error) {
	if err := s.validate(w); err != nil {
		return ConsentCoverage{}, err
	}

	ended, err := s.calls.ListEndedBetween(ctx, w.From, w.To)
	if err != nil {
		return ConsentCoverage{}, err
	}

	out := ConsentCoverage{Window: w, CallsEnded: len(ended)}
	for _, c := range ended {
		if c.RecordingRef != "" {
			out.CallsCaptured++
		}
	}

	unconsented, err := s.audits.ListByTypeBetween(ctx, audit.EventTypeCallEndedNoConsent, w.From, w.To)
	if err != nil {
		return ConsentCoverage{}, err
	}
	out.CallsUnconsented = len(unconsented)

	for _, q := range []struct {
		t   audit.EventType
		dst *int
	}{
		{audit.EventTypeConsentGranted, &out.ConsentsGranted},
		{audit.EventTypeConsentDeclined, &out.ConsentsDeclined},
		{audit.EventTypeConsentRejected, &out.ConsentsRejected},
	} {
		evs, err := s.audits.ListByTypeBetween(ctx, q.t, w.From, w.To)
		if err != nil {
			return ConsentCoverage{}, err
		}
		*q.dst = len(evs)
	}
	return out, nil
}

// DraftAccessByReader counts audited draft reads per reader in the window.
func (s *Service) DraftAccessByReader(ctx context.Context, w Window) ([]DraftAccess, error) {
	if err := s.validate(w); err != nil {
		return nil, err
	}

	evs, err := s.audits.ListByTypeBetween(ctx, audit.EventTypeDraftAccessed, w.From, w.To)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	var order []string
	for _, e := range evs {
		if _, seen := counts[e.ActorUserID]; !seen {
			order = append(order, e.ActorUserID)
		}
		counts[e.ActorUserID]++
	}

	out := make([]DraftAccess, 0, len(order))
	for _, reader := range order {
		out = append(out, DraftAccess{ReaderID: reader, Accesses: counts[reader]})
	}
	return out, nil
}

// RevealVolume summarizes reveal activity in the window.
func (s *Service) RevealVolume(ctx context.Context, w Window) (RevealVolume, error) {
	if err := s.validate(w); err != nil {
		return RevealVolume{}, err
	}

	evs, err := s.audits.ListByTypeBetween(ctx, audit.EventTypeCardRevealed, w.From, w.To)
	if err != nil {
		return RevealVolume{}, err
	}

	sessions := map[string]struct{}{}
	for _, e := range evs {
		sessions[e.SessionID] = struct{}{}
	}
	return RevealVolume{Window: w, Reveals: len(evs), Sessions: len(sessions)}, nil
}
