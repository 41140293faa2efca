package call

import "time"

// Status is a call session's lifecycle state.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
)

// Session is one live consultation call tied to a booking.
//
// ScheduledMinutes is fixed when the booking is confirmed and never changes
// afterwards; running over the slot is handled by a new booking through the
// extension flow, never by stretching this one.
type Session struct {
	ID        string `json:"id" db:"id"`
	BookingID string `json:"booking_id" db:"booking_id"`

	ReaderID string `json:"reader_id" db:"reader_id"`
	ClientID string `json:"client_id" db:"client_id"`

	ScheduledMinutes int    `json:"scheduled_minutes" db:"scheduled_minutes"`
	Status           Status `json:"status" db:"status"`

	// ProviderCallID identifies the live call leg at the transport provider.
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`

	// RecordingRef points at the captured media, when capture ran. Once the
	// call ends with a recording, RecordingPermanent is set and nothing in
	// this codebase deletes or clears the ref.
	RecordingRef       string `json:"recording_ref,omitempty" db:"recording_ref"`
	RecordingPermanent bool   `json:"recording_permanent" db:"recording_permanent"`

	StartedAt time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty" db:"ended_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (s Session) Active() bool { return s.Status == StatusActive }
