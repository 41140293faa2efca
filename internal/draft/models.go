package draft

import "time"

// Visibility is the audience a draft may be shown to. There is exactly one
// member: drafts are reader-only, structurally. Adding a client-visible
// variant would require touching this type, the repository insert, and the
// ai_drafts CHECK constraint at once.
type Visibility string

const VisibilityReaderOnly Visibility = "reader_only"

// Draft is an AI-produced interpretation of a session's revealed cards.
// The type intentionally carries no visibility field; there is nothing to
// flip at runtime.
type Draft struct {
	ID        string `json:"id" db:"id"`
	SessionID string `json:"session_id" db:"session_id"`

	// Model is the generator model that produced Content, kept for audit.
	Model   string `json:"model" db:"model"`
	Content string `json:"content" db:"content"`

	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
}

func (Draft) Visibility() Visibility { return VisibilityReaderOnly }
