package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/consent"
	"consultation-platform/internal/transport"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("call: session not found")

	// ErrInvalidTransition marks a lifecycle move the state machine does not
	// allow (starting an ended call, capturing on a scheduled one, ...).
	ErrInvalidTransition = errors.New("call: invalid status transition")
)

// Repository persists call sessions.
type Repository interface {
	Insert(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, s Session) error
	GetByBooking(ctx context.Context, bookingID string) (Session, error)
	ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]Session, error)
}

// Service coordinates the Scheduled -> Active -> Ended call lifecycle and
// gates media capture behind recorded consent.
type Service struct {
	repo     Repository
	billing  booking.Provider
	consents *consent.Service
	media    transport.Provider
	auditor  *audit.Service

	graceWindow time.Duration
	clock       func() time.Time
}

func NewService(repo Repository, billing booking.Provider, consents *consent.Service, media transport.Provider, auditor *audit.Service, graceWindow time.Duration) *Service {
	if graceWindow <= 0 {
		graceWindow = 3 * time.Minute
	}
	return &Service{
		repo:        repo,
		billing:     billing,
		consents:    consents,
		media:       media,
		auditor:     auditor,
		graceWindow: graceWindow,
		clock:       time.Now,
	}
}

// Schedule creates a Scheduled session for a confirmed booking. The slot
// length is copied from the booking here and never touched again.
func (s *Service) Schedule(ctx context.Context, bookingID string) (Session, error) {
	b, err := s.billing.ConfirmedBooking(ctx, bookingID)
	if err != nil {
		return Session{}, err
	}

	now := s.clock().UTC()
	sess := Session{
		ID:               uuid.NewString(),
		BookingID:        b.ID,
		ReaderID:         b.ReaderID,
		ClientID:         b.ClientID,
		ScheduledMinutes: b.Minutes,
		Status:           StatusScheduled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Start moves a Scheduled session to Active.
func (s *Service) Start(ctx context.Context, id, providerCallID string) (Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Status != StatusScheduled {
		return Session{}, fmt.Errorf("%w: start from %s", ErrInvalidTransition, sess.Status)
	}

	now := s.clock().UTC()
	sess.Status = StatusActive
	sess.ProviderCallID = providerCallID
	sess.StartedAt = now
	sess.UpdatedAt = now
	if err := s.repo.Update(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// BeginCapture starts media capture on an Active call. The consent gate runs
// first and there is no way around it: a missing granted consent surfaces
// consent.ErrConsentRequired and the transport is never touched.
func (s *Service) BeginCapture(ctx context.Context, id, actorUserID string) (Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Status != StatusActive {
		return Session{}, fmt.Errorf("%w: capture on %s call", ErrInvalidTransition, sess.Status)
	}
	if sess.RecordingRef != "" {
		return sess, nil
	}

	if err := s.consents.RequireGranted(ctx, sess.ID, actorUserID); err != nil {
		return Session{}, err
	}

	res, err := s.media.StartCapture(ctx, transport.StartCaptureRequest{
		CallSessionID:  sess.ID,
		ProviderCallID: sess.ProviderCallID,
	})
	if err != nil {
		return Session{}, err
	}

	sess.RecordingRef = res.RecordingRef
	sess.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, sess); err != nil {
		return Session{}, err
	}

	if err := s.auditor.LogCaptureStarted(ctx, sess.ID, actorUserID); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// End moves an Active session to Ended. A captured recording becomes
// permanent here; no operation in the package clears the ref afterwards.
func (s *Service) End(ctx context.Context, id string) (Session, error) {
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Status != StatusActive {
		return Session{}, fmt.Errorf("%w: end from %s", ErrInvalidTransition, sess.Status)
	}

	if sess.RecordingRef != "" {
		if _, err := s.media.StopCapture(ctx, transport.StopCaptureRequest{
			CallSessionID:  sess.ID,
			ProviderCallID: sess.ProviderCallID,
			RecordingRef:   sess.RecordingRef,
		}); err != nil {
			return Session{}, err
		}
		sess.RecordingPermanent = true
	}

	now := s.clock().UTC()
	sess.Status = StatusEnded
	sess.EndedAt = now
	sess.UpdatedAt = now
	if err := s.repo.Update(ctx, sess); err != nil {
		return Session{}, err
	}

	if err := s.auditor.LogCallEnded(ctx, sess.ID, false); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SweepUnconsented ends Active calls that ran past the grace window with no
// capture and no granted consent on record. Run periodically from cmd/api.
func (s *Service) SweepUnconsented(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.graceWindow)
	stale, err := s.repo.ListActiveStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	ended := 0
	for _, sess := range stale {
		if sess.RecordingRef != "" {
			continue
		}
		granted, err := s.consents.Granted(ctx, sess.ID)
		if err != nil {
			return ended, err
		}
		if granted {
			continue
		}

		sess.Status = StatusEnded
		sess.EndedAt = now.UTC()
		sess.UpdatedAt = now.UTC()
		if err := s.repo.Update(ctx, sess); err != nil {
			return ended, err
		}
		if err := s.auditor.LogCallEnded(ctx, sess.ID, true); err != nil {
			return ended, err
		}
		ended++
	}
	return ended, nil
}

func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.repo.Get(ctx, id)
}

// GetByBooking returns the call session tied to a booking. Used by the
// extension flow to check the original call is still live.
func (s *Service) GetByBooking(ctx context.Context, bookingID string) (Session, error) {
	return s.repo.GetByBooking(ctx, bookingID)
}
