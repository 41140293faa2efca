package reading

import "time"

// Session is one reading: a fixed card draw revealed strictly in order.
//
// Ordering invariant: revealed positions always form the contiguous prefix
// 1..RevealCount. The only mutable cursor is RevealCount; reveals are
// append-only and never addressed at arbitrary positions. Enforcement lives
// at the repository write boundary, not only here.

type Session struct {
	ID        string `json:"id" db:"id"`
	BookingID string `json:"booking_id" db:"booking_id"`
	DeckID    string `json:"deck_id" db:"deck_id"`

	// ReaderID is the assigned human reader; the only identity allowed to
	// see AI drafts derived from this session.
	ReaderID string `json:"reader_id" db:"reader_id"`
	ClientID string `json:"client_id" db:"client_id"`

	SpreadSize  int `json:"spread_size" db:"spread_size"`
	RevealCount int `json:"reveal_count" db:"reveal_count"`

	// DrawOrder is the pre-shuffled deck positions for this session, fixed at
	// creation. Index i holds the deck position revealed at spread position i+1.
	// Retries never re-randomize.
	DrawOrder []int `json:"draw_order" db:"draw_order"`

	// Completed is the terminal flag; set when RevealCount reaches SpreadSize.
	Completed bool `json:"completed" db:"completed"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// State is the reveal state machine's current state.
type State string

const (
	StateNotStarted State = "not_started"
	StateRevealing  State = "revealing"
	StateComplete   State = "complete"
)

func (s Session) State() State {
	switch {
	case s.Completed || s.RevealCount >= s.SpreadSize:
		return StateComplete
	case s.RevealCount == 0:
		return StateNotStarted
	default:
		return StateRevealing
	}
}

// Reveal is one exposed card at an ordinal position within a session.
// Rows are append-only; a card once revealed is never un-revealed or replaced.
type Reveal struct {
	SessionID string    `json:"session_id" db:"session_id"`
	Position  int       `json:"position" db:"position"`
	CardRef   string    `json:"card_ref" db:"card_ref"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Actor identifies who performed an operation, for audit emission.
type Actor struct {
	UserID string
	Role   string
	IP     string
}
