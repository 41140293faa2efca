package extension

import "time"

// Extension records one emergency mid-call extension: a brand-new booking
// and call slot chained to the original. The original booking's price and
// duration are never touched.
type Extension struct {
	ID                string `json:"id" db:"id"`
	OriginalBookingID string `json:"original_booking_id" db:"original_booking_id"`
	NewBookingID      string `json:"new_booking_id" db:"new_booking_id"`
	NewCallSessionID  string `json:"new_call_session_id" db:"new_call_session_id"`

	Minutes    int    `json:"minutes" db:"minutes"`
	PriceMinor int64  `json:"price_minor" db:"price_minor"`
	Currency   string `json:"currency" db:"currency"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
