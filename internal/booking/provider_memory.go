package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryProvider is an in-memory billing collaborator for tests and local runs.

type MemoryProvider struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	clock    func() time.Time
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		bookings: make(map[string]Booking),
		clock:    time.Now,
	}
}

// Put seeds a booking; test fixture helper.
func (p *MemoryProvider) Put(b Booking) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bookings[b.ID] = b
}

func (p *MemoryProvider) GetBooking(ctx context.Context, id string) (Booking, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	b, ok := p.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (p *MemoryProvider) ConfirmedBooking(ctx context.Context, id string) (Booking, error) {
	b, err := p.GetBooking(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if !b.Confirmed() {
		return Booking{}, ErrNotConfirmed
	}
	return b, nil
}

func (p *MemoryProvider) CreateExtensionBooking(ctx context.Context, req ExtensionBookingRequest) (Booking, error) {
	if _, err := p.ConfirmedBooking(ctx, req.OriginalBookingID); err != nil {
		return Booking{}, err
	}

	now := p.clock().UTC()
	b := Booking{
		ID:                uuid.NewString(),
		ClientID:          req.ClientID,
		ReaderID:          req.ReaderID,
		ServiceCode:       req.ServiceCode,
		Minutes:           req.Minutes,
		PriceMinor:        req.PriceMinor,
		Currency:          req.Currency,
		Status:            BookingStatusConfirmed,
		OriginalBookingID: req.OriginalBookingID,
		CreatedAt:         now,
		ConfirmedAt:       now,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.bookings[b.ID] = b
	return b, nil
}
