package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/call"
)

func window() Window {
	return Window{
		From: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func at(day int) time.Time {
	return time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
}

func TestConsentCoverage(t *testing.T) {
	repo := NewMemoryRepo()
	repo.AddCall(call.Session{ID: "c1", Status: call.StatusEnded, RecordingRef: "rec-1", EndedAt: at(3)})
	repo.AddCall(call.Session{ID: "c2", Status: call.StatusEnded, EndedAt: at(4)})
	repo.AddCall(call.Session{ID: "c3", Status: call.StatusActive, StartedAt: at(5)})
	// Outside window.
	repo.AddCall(call.Session{ID: "c4", Status: call.StatusEnded, EndedAt: at(3).AddDate(0, -2, 0)})

	repo.AddEvent(audit.Event{Type: audit.EventTypeConsentGranted, CallID: "c1", CreatedAt: at(3)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeConsentRejected, CallID: "c2", CreatedAt: at(4)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeCallEndedNoConsent, CallID: "c2", CreatedAt: at(4)})

	svc := NewService(repo, repo)
	got, err := svc.ConsentCoverage(context.Background(), window())
	if err != nil {
		t.Fatalf("consent coverage: %v", err)
	}
	if got.CallsEnded != 2 || got.CallsCaptured != 1 || got.CallsUnconsented != 1 {
		t.Fatalf("unexpected coverage: %+v", got)
	}
	if got.ConsentsGranted != 1 || got.ConsentsRejected != 1 || got.ConsentsDeclined != 0 {
		t.Fatalf("unexpected consent counts: %+v", got)
	}
}

func TestDraftAccessByReader(t *testing.T) {
	repo := NewMemoryRepo()
	repo.AddEvent(audit.Event{Type: audit.EventTypeDraftAccessed, ActorUserID: "reader-1", CreatedAt: at(2)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeDraftAccessed, ActorUserID: "reader-2", CreatedAt: at(3)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeDraftAccessed, ActorUserID: "reader-1", CreatedAt: at(4)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeCardRevealed, ActorUserID: "reader-1", CreatedAt: at(4)})

	svc := NewService(repo, repo)
	got, err := svc.DraftAccessByReader(context.Background(), window())
	if err != nil {
		t.Fatalf("draft access: %v", err)
	}
	if len(got) != 2 || got[0].ReaderID != "reader-1" || got[0].Accesses != 2 || got[1].Accesses != 1 {
		t.Fatalf("unexpected report: %+v", got)
	}
}

func TestRevealVolume(t *testing.T) {
	repo := NewMemoryRepo()
	repo.AddEvent(audit.Event{Type: audit.EventTypeCardRevealed, SessionID: "s1", CreatedAt: at(2)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeCardRevealed, SessionID: "s1", CreatedAt: at(2)})
	repo.AddEvent(audit.Event{Type: audit.EventTypeCardRevealed, SessionID: "s2", CreatedAt: at(3)})

	svc := NewService(repo, repo)
	got, err := svc.RevealVolume(context.Background(), window())
	if err != nil {
		t.Fatalf("reveal volume: %v", err)
	}
	if got.Reveals != 3 || got.Sessions != 2 {
		t.Fatalf("unexpected volume: %+v", got)
	}
}

func TestValidateWindow(t *testing.T) {
	svc := NewService(NewMemoryRepo(), NewMemoryRepo())
	w := window()
	w.To = w.From
	if _, err := svc.RevealVolume(context.Background(), w); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
