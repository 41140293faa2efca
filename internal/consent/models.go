package consent

import "time"

// Outcome is a party's recorded decision about call capture.
type Outcome string

const (
	OutcomeGranted  Outcome = "granted"
	OutcomeDeclined Outcome = "declined"
)

// Entry is one party's consent decision for one call session.
// Rows are append-only and retained permanently; a later decision is a new
// row, never an update.
type Entry struct {
	ID            string `json:"id" db:"id"`
	CallSessionID string `json:"call_session_id" db:"call_session_id"`
	PartyID       string `json:"party_id" db:"party_id"`

	// OriginAddr is the validated IP the decision arrived from. Never empty
	// on a stored entry; entries without a parseable origin are rejected.
	OriginAddr string  `json:"origin_addr" db:"origin_addr"`
	Outcome    Outcome `json:"outcome" db:"outcome"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
