package booking

import "time"

// Booking is the billing collaborator's record of a purchased consultation.
//
// This core treats confirmed bookings as read-only: the Provider contract
// below has no update method, so no operation here can reach the original
// booking's price or duration fields. Extensions are always new rows.

type Booking struct {
	ID       string `json:"id" db:"id"`
	ClientID string `json:"client_id" db:"client_id"`
	ReaderID string `json:"reader_id" db:"reader_id"`

	// ServiceCode selects the priced offering (e.g., "video_reading_standard").
	ServiceCode string `json:"service_code" db:"service_code"`

	Minutes    int    `json:"minutes" db:"minutes"`
	PriceMinor int64  `json:"price_minor" db:"price_minor"`
	Currency   string `json:"currency" db:"currency"`

	Status BookingStatus `json:"status" db:"status"`

	// OriginalBookingID links an extension booking back to the booking it
	// extends. Empty for first bookings. Lookup only, not ownership.
	OriginalBookingID string `json:"original_booking_id,omitempty" db:"original_booking_id"`

	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ConfirmedAt time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
}

type BookingStatus string

const (
	BookingStatusCreated   BookingStatus = "created"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
)

// Confirmed reports whether the billing collaborator considers the booking
// paid-for and schedulable. A merely created booking is not sufficient to
// mint a session.
func (b Booking) Confirmed() bool {
	return (b.Status == BookingStatusConfirmed || b.Status == BookingStatusCompleted) && !b.ConfirmedAt.IsZero()
}
