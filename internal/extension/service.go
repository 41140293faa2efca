package extension

import (
	"context"
	"errors"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/call"
	"consultation-platform/internal/pricing"

	"github.com/google/uuid"
)

var (
	// ErrOriginalSessionNotActive means the call being extended is not live.
	// Extensions exist for running over a live slot; anything else goes
	// through normal booking.
	ErrOriginalSessionNotActive = errors.New("extension: original call session not active")

	ErrInvalidRequest = errors.New("extension: invalid request")
)

// Repository persists extension rows. Insert and read only.
type Repository interface {
	Insert(ctx context.Context, e Extension) error
	Get(ctx context.Context, id string) (Extension, error)
	ListByOriginalBooking(ctx context.Context, originalBookingID string) ([]Extension, error)
}

// Service handles emergency extensions.
//
// The billing provider interface this package consumes exposes no update
// operation, so there is no code path from here that could change the
// original booking's price or minutes. Extending always means: quote, new
// booking, new scheduled call session, extension row, audit entry.
type Service struct {
	repo    Repository
	billing booking.Provider
	rates   *pricing.Service
	calls   *call.Service
	auditor *audit.Service
	clock   func() time.Time
}

func NewService(repo Repository, billing booking.Provider, rates *pricing.Service, calls *call.Service, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		billing: billing,
		rates:   rates,
		calls:   calls,
		auditor: auditor,
		clock:   time.Now,
	}
}

// Request extends a live call by minting a new booking and call slot.
func (s *Service) Request(ctx context.Context, originalBookingID string, minutes int, actorUserID string) (Extension, error) {
	if originalBookingID == "" || minutes <= 0 {
		return Extension{}, ErrInvalidRequest
	}

	orig, err := s.billing.ConfirmedBooking(ctx, originalBookingID)
	if err != nil {
		return Extension{}, err
	}

	sess, err := s.calls.GetByBooking(ctx, originalBookingID)
	if err != nil {
		if errors.Is(err, call.ErrNotFound) {
			return Extension{}, ErrOriginalSessionNotActive
		}
		return Extension{}, err
	}
	if !sess.Active() {
		return Extension{}, ErrOriginalSessionNotActive
	}

	quote, err := s.rates.QuoteExtension(ctx, pricing.ExtensionQuoteRequest{
		ServiceCode:      orig.ServiceCode,
		RequestedMinutes: minutes,
	})
	if err != nil {
		return Extension{}, err
	}

	newBooking, err := s.billing.CreateExtensionBooking(ctx, booking.ExtensionBookingRequest{
		OriginalBookingID: orig.ID,
		ClientID:          orig.ClientID,
		ReaderID:          orig.ReaderID,
		ServiceCode:       orig.ServiceCode,
		Minutes:           quote.BillableMinutes,
		PriceMinor:        quote.TotalMinor,
		Currency:          quote.Currency,
	})
	if err != nil {
		return Extension{}, err
	}

	newSess, err := s.calls.Schedule(ctx, newBooking.ID)
	if err != nil {
		return Extension{}, err
	}

	e := Extension{
		ID:                uuid.NewString(),
		OriginalBookingID: orig.ID,
		NewBookingID:      newBooking.ID,
		NewCallSessionID:  newSess.ID,
		Minutes:           quote.BillableMinutes,
		PriceMinor:        quote.TotalMinor,
		Currency:          quote.Currency,
		CreatedAt:         s.clock().UTC(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return Extension{}, err
	}

	if err := s.auditor.LogExtensionCreated(ctx, e.ID, e.OriginalBookingID, e.NewBookingID, actorUserID); err != nil {
		return Extension{}, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (Extension, error) {
	return s.repo.Get(ctx, id)
}

// ListForBooking returns the extension chain hanging off a booking.
func (s *Service) ListForBooking(ctx context.Context, originalBookingID string) ([]Extension, error) {
	return s.repo.ListByOriginalBooking(ctx, originalBookingID)
}
