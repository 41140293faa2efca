package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - Draft-access and consent/capture categories are retained forever; they are
//   the proof that isolation and consent guarantees were honored.
// - Events are written synchronously with the action they record; an action is
//   not observably done before its audit entry exists.
//
// Storage recommendation (Postgres):
// - Table audit_log with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
// - Optional: partition by time for the standard-retention categories only.

type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event (if applicable).
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	// Prefer X-Forwarded-For processing at the edge; store the resolved client IP here.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Subject identifiers (optional, depending on the event type).
	SessionID   string `json:"session_id,omitempty" db:"session_id"`
	CallID      string `json:"call_id,omitempty" db:"call_id"`
	DraftID     string `json:"draft_id,omitempty" db:"draft_id"`
	BookingID   string `json:"booking_id,omitempty" db:"booking_id"`
	ExtensionID string `json:"extension_id,omitempty" db:"extension_id"`

	// Position is the card position for reveal events; zero otherwise.
	Position int `json:"position,omitempty" db:"position"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCardRevealed        EventType = "card_revealed"
	EventTypeDraftAccessed       EventType = "ai_draft_accessed"
	EventTypeConsentGranted      EventType = "consent_granted"
	EventTypeConsentDeclined     EventType = "consent_declined"
	EventTypeConsentRejected     EventType = "consent_rejected"
	EventTypeCaptureStarted      EventType = "capture_started"
	EventTypeCaptureBlocked      EventType = "capture_blocked"
	EventTypeCallEnded           EventType = "call_ended"
	EventTypeCallEndedNoConsent  EventType = "call_ended_unconsented"
	EventTypeExtensionCreated    EventType = "extension_created"
)

// RetentionClass describes how long a category must be kept.
type RetentionClass string

const (
	// RetentionPermanent rows are never eligible for cleanup jobs.
	RetentionPermanent RetentionClass = "permanent"
	// RetentionStandard rows follow the externally configured retention policy.
	RetentionStandard RetentionClass = "standard"
)

// Retention returns the retention class for an event type.
// Draft-access and every consent/capture category are kept indefinitely.
func Retention(t EventType) RetentionClass {
	switch t {
	case EventTypeDraftAccessed,
		EventTypeConsentGranted,
		EventTypeConsentDeclined,
		EventTypeConsentRejected,
		EventTypeCaptureStarted,
		EventTypeCaptureBlocked,
		EventTypeCallEndedNoConsent:
		return RetentionPermanent
	default:
		return RetentionStandard
	}
}
