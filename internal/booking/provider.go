package booking

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("booking: not found")
	ErrNotConfirmed = errors.New("booking: not confirmed")
)

// Provider is the contract this core requires from the billing collaborator.
//
// Deliberately absent: any method that updates an existing booking. The
// emergency-extension path depends on that absence; do not add one.

type Provider interface {
	GetBooking(ctx context.Context, id string) (Booking, error)

	// ConfirmedBooking returns the booking only if it is confirmed,
	// ErrNotConfirmed otherwise.
	ConfirmedBooking(ctx context.Context, id string) (Booking, error)

	// CreateExtensionBooking mints a brand-new confirmed booking chained to
	// the original via OriginalBookingID. The original row is not touched.
	CreateExtensionBooking(ctx context.Context, req ExtensionBookingRequest) (Booking, error)
}

type ExtensionBookingRequest struct {
	OriginalBookingID string
	ClientID          string
	ReaderID          string
	ServiceCode       string
	Minutes           int
	PriceMinor        int64
	Currency          string
}
