package reporting

import "time"

// Window bounds a report period. From inclusive, To exclusive.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ConsentCoverage summarizes how ended calls relate to recorded consent.
type ConsentCoverage struct {
	Window Window `json:"window"`

	CallsEnded       int `json:"calls_ended"`
	CallsCaptured    int `json:"calls_captured"`
	CallsUnconsented int `json:"calls_unconsented"`

	ConsentsGranted  int `json:"consents_granted"`
	ConsentsDeclined int `json:"consents_declined"`
	ConsentsRejected int `json:"consents_rejected"`
}

// DraftAccess counts audited AI draft reads per reader.
type DraftAccess struct {
	ReaderID string `json:"reader_id"`
	Accesses int    `json:"accesses"`
}

// RevealVolume summarizes card reveal activity.
type RevealVolume struct {
	Window Window `json:"window"`

	Reveals  int `json:"reveals"`
	Sessions int `json:"sessions"`
}
