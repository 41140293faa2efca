package reading

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/deck"
)

type fixture struct {
	svc      *Service
	repo     *MemoryRepo
	auditLog *audit.MemoryRepo
	billing  *booking.MemoryProvider
	deckID   string
	locker   *MemorySessionLocker
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	decks := deck.NewRegistry(deck.NewMemoryRepo())
	d, err := decks.CreateDeck(ctx, "rider-waite")
	if err != nil {
		t.Fatalf("create deck: %v", err)
	}
	if err := decks.AddCard(ctx, d.ID, 0, true, "assets/back.png", ""); err != nil {
		t.Fatalf("add back: %v", err)
	}
	for i := 1; i <= deck.FaceCardCount; i++ {
		if err := decks.AddCard(ctx, d.ID, i, false, fmt.Sprintf("assets/card-%d.png", i), ""); err != nil {
			t.Fatalf("add card: %v", err)
		}
	}
	if _, err := decks.Publish(ctx, d.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	billing := booking.NewMemoryProvider()
	billing.Put(booking.Booking{
		ID:          "bk-1",
		ClientID:    "client-1",
		ReaderID:    "reader-1",
		ServiceCode: "video_reading_standard",
		Minutes:     30,
		PriceMinor:  4500,
		Currency:    "USD",
		Status:      booking.BookingStatusConfirmed,
		CreatedAt:   time.Now(),
		ConfirmedAt: time.Now(),
	})
	billing.Put(booking.Booking{ID: "bk-unpaid", Status: booking.BookingStatusCreated})

	auditLog := audit.NewMemoryRepo()
	repo := NewMemoryRepo()
	locker := NewMemorySessionLocker(100 * time.Millisecond)

	svc := NewService(repo, decks, billing, audit.NewService(auditLog), locker, 12, rand.New(rand.NewSource(1)))
	return fixture{svc: svc, repo: repo, auditLog: auditLog, billing: billing, deckID: d.ID, locker: locker}
}

func (f fixture) newSession(t *testing.T, spread int) Session {
	t.Helper()
	s, err := f.svc.CreateSession(context.Background(), CreateSessionRequest{
		BookingID:  "bk-1",
		DeckID:     f.deckID,
		SpreadSize: spread,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

var actor = Actor{UserID: "reader-1", Role: "reader", IP: "203.0.113.5"}

func TestCreateSession_RequiresConfirmedBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateSession(context.Background(), CreateSessionRequest{
		BookingID:  "bk-unpaid",
		DeckID:     f.deckID,
		SpreadSize: 3,
	})
	if !errors.Is(err, booking.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
}

func TestCreateSession_FixesDrawOrderOnce(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 5)
	if len(s.DrawOrder) != 5 {
		t.Fatalf("expected 5 draw positions, got %d", len(s.DrawOrder))
	}
	seen := map[int]bool{}
	for _, p := range s.DrawOrder {
		if p < 1 || p > deck.FaceCardCount || seen[p] {
			t.Fatalf("invalid draw order %v", s.DrawOrder)
		}
		seen[p] = true
	}

	stored, err := f.svc.Get(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := range s.DrawOrder {
		if stored.DrawOrder[i] != s.DrawOrder[i] {
			t.Fatalf("draw order changed after creation")
		}
	}
}

func TestReveal_StrictOrderThenComplete(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 3)
	ctx := context.Background()

	if got := s.State(); got != StateNotStarted {
		t.Fatalf("expected not_started, got %s", got)
	}

	for i := 1; i <= 3; i++ {
		rev, err := f.svc.Reveal(ctx, s.ID, i, actor)
		if err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
		if rev.Position != i || rev.CardRef == "" {
			t.Fatalf("unexpected reveal: %+v", rev)
		}
	}

	cur, _ := f.svc.Get(ctx, s.ID)
	if cur.State() != StateComplete || cur.RevealCount != 3 {
		t.Fatalf("expected complete with 3 reveals, got %+v", cur)
	}

	// A 4th reveal fails.
	if _, err := f.svc.Reveal(ctx, s.ID, 4, actor); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence, got %v", err)
	}
	if _, err := f.svc.RevealNext(ctx, s.ID, actor); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence on RevealNext, got %v", err)
	}
}

func TestReveal_ReplayOfLastStepOnly(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 3)
	ctx := context.Background()

	first, err := f.svc.Reveal(ctx, s.ID, 1, actor)
	if err != nil {
		t.Fatalf("reveal 1: %v", err)
	}

	// Replaying position 1 is a safe no-op returning the same card.
	replay, err := f.svc.Reveal(ctx, s.ID, 1, actor)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if replay.CardRef != first.CardRef {
		t.Fatalf("replay returned different card")
	}

	// Skipping ahead fails.
	if _, err := f.svc.Reveal(ctx, s.ID, 3, actor); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence for gap, got %v", err)
	}

	// Replaying an older position after moving on fails.
	if _, err := f.svc.Reveal(ctx, s.ID, 2, actor); err != nil {
		t.Fatalf("reveal 2: %v", err)
	}
	if _, err := f.svc.Reveal(ctx, s.ID, 1, actor); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence for stale replay, got %v", err)
	}
}

func TestReveal_PositionsFormContiguousPrefix(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 6)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := f.svc.RevealNext(ctx, s.ID, actor); err != nil {
			t.Fatalf("reveal: %v", err)
		}
	}

	cur, revs, err := f.svc.Snapshot(ctx, s.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(revs) != cur.RevealCount {
		t.Fatalf("expected %d reveals, got %d", cur.RevealCount, len(revs))
	}
	for i, rev := range revs {
		if rev.Position != i+1 {
			t.Fatalf("gap in reveal positions: %+v", revs)
		}
	}
}

func TestReveal_EmitsOneAuditEntryPerSuccess(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 3)
	ctx := context.Background()

	if _, err := f.svc.Reveal(ctx, s.ID, 1, actor); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	if _, err := f.svc.Reveal(ctx, s.ID, 1, actor); err != nil { // replay
		t.Fatalf("replay: %v", err)
	}
	if _, err := f.svc.Reveal(ctx, s.ID, 2, actor); err != nil {
		t.Fatalf("reveal 2: %v", err)
	}

	evs := f.auditLog.EventsOfType(audit.EventTypeCardRevealed)
	if len(evs) != 2 {
		t.Fatalf("expected 2 reveal audit entries, got %d", len(evs))
	}
	if evs[0].SessionID != s.ID || evs[0].Position != 1 || evs[1].Position != 2 {
		t.Fatalf("unexpected audit entries: %+v", evs)
	}
	if evs[0].ActorUserID != actor.UserID {
		t.Fatalf("expected actor identity captured")
	}
}

func TestReveal_BusyLockSurfacesRetryableError(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 3)
	ctx := context.Background()

	unlock, err := f.locker.Lock(ctx, s.ID)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer func() { _ = unlock(ctx) }()

	if _, err := f.svc.Reveal(ctx, s.ID, 1, actor); !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
}

func TestRepo_AppendRevealRejectsCursorRace(t *testing.T) {
	f := newFixture(t)
	s := f.newSession(t, 3)
	ctx := context.Background()

	// Direct repo write at a stale position must fail even without the lock.
	if _, _, err := f.repo.AppendReveal(ctx, s.ID, 2, "x", time.Now()); !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("expected ErrInvalidSequence at write boundary, got %v", err)
	}
}
