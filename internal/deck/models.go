package deck

import "time"

// Deck is a card catalog: one back face plus FaceCardCount front faces.
//
// Immutability invariant: once Status is published, no card row belonging to
// the deck may be inserted, changed, or removed. The registry enforces this on
// every mutating path; readers therefore need no locking at runtime.

type Deck struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Status      DeckStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	PublishedAt time.Time  `json:"published_at,omitempty" db:"published_at"`
}

type DeckStatus string

const (
	DeckStatusDraft     DeckStatus = "draft"
	DeckStatusPublished DeckStatus = "published"
)

// Card is one face of a deck.
// The back card sits at position 0 with IsBack set; face cards occupy
// positions 1..FaceCardCount.
type Card struct {
	DeckID   string `json:"deck_id" db:"deck_id"`
	Position int    `json:"position" db:"position"`
	IsBack   bool   `json:"is_back" db:"is_back"`
	AssetRef string `json:"asset_ref" db:"asset_ref"`
	Title    string `json:"title,omitempty" db:"title"`
}

const (
	// FaceCardCount is the required number of face cards in a complete deck.
	FaceCardCount = 78
	// TotalCardCount includes the single back card.
	TotalCardCount = FaceCardCount + 1

	backPosition = 0
)

// IsComplete reports whether the card set forms a complete deck:
// exactly 78 distinct face positions 1..78 and exactly one back card.
func IsComplete(cards []Card) bool {
	if len(cards) != TotalCardCount {
		return false
	}
	backs := 0
	seen := make(map[int]bool, FaceCardCount)
	for _, c := range cards {
		if c.IsBack {
			backs++
			continue
		}
		if c.Position < 1 || c.Position > FaceCardCount || seen[c.Position] {
			return false
		}
		seen[c.Position] = true
	}
	return backs == 1 && len(seen) == FaceCardCount
}
