package consent

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"time"

	"consultation-platform/internal/audit"

	"github.com/google/uuid"
)

var (
	// ErrMissingOrigin means the consent request carried no parseable source
	// address. Such a decision is unattributable and is never stored.
	ErrMissingOrigin = errors.New("consent: missing or invalid origin address")

	// ErrConsentRequired means capture was requested without a granted
	// consent entry on record.
	ErrConsentRequired = errors.New("consent: no granted consent on record")

	ErrInvalidRequest = errors.New("consent: invalid request")
)

// Repository persists consent entries. Append and read only.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	ListByCall(ctx context.Context, callSessionID string) ([]Entry, error)
}

type Service struct {
	repo    Repository
	auditor *audit.Service
	clock   func() time.Time
}

func NewService(repo Repository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor, clock: time.Now}
}

// Record stores a party's consent decision. The origin must parse as an IP
// address; a request without one fails with ErrMissingOrigin and the failed
// attempt itself is audit-logged.
func (s *Service) Record(ctx context.Context, callSessionID, partyID, rawOrigin string, granted bool) (Entry, error) {
	if callSessionID == "" || partyID == "" {
		return Entry{}, ErrInvalidRequest
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(rawOrigin))
	if err != nil {
		if aerr := s.auditor.LogConsentRejected(ctx, callSessionID, partyID, rawOrigin); aerr != nil {
			return Entry{}, aerr
		}
		return Entry{}, ErrMissingOrigin
	}

	e := Entry{
		ID:            uuid.NewString(),
		CallSessionID: callSessionID,
		PartyID:       partyID,
		OriginAddr:    addr.String(),
		Outcome:       OutcomeDeclined,
		CreatedAt:     s.clock().UTC(),
	}
	if granted {
		e.Outcome = OutcomeGranted
	}

	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	if err := s.auditor.LogConsent(ctx, callSessionID, partyID, e.OriginAddr, granted); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// RequireGranted passes only when a granted entry with a non-empty origin
// exists for the call. There is no parameter that skips the check; a blocked
// attempt is audit-logged before the error returns.
func (s *Service) RequireGranted(ctx context.Context, callSessionID, actorUserID string) error {
	entries, err := s.repo.ListByCall(ctx, callSessionID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Outcome == OutcomeGranted && e.OriginAddr != "" {
			return nil
		}
	}
	if err := s.auditor.LogCaptureBlocked(ctx, callSessionID, actorUserID); err != nil {
		return err
	}
	return ErrConsentRequired
}

// Granted reports whether any granted entry exists, without audit side
// effects. Used by the unconsented-call sweeper.
func (s *Service) Granted(ctx context.Context, callSessionID string) (bool, error) {
	entries, err := s.repo.ListByCall(ctx, callSessionID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Outcome == OutcomeGranted && e.OriginAddr != "" {
			return true, nil
		}
	}
	return false, nil
}
