package call

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/consent"
	"consultation-platform/internal/transport"
)

type fixture struct {
	svc      *Service
	consents *consent.Service
	media    *transport.StaticProvider
	auditLog *audit.MemoryRepo
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	billing := booking.NewMemoryProvider()
	billing.Put(booking.Booking{
		ID:          "bk-1",
		ClientID:    "client-1",
		ReaderID:    "reader-1",
		ServiceCode: "video_reading_standard",
		Minutes:     30,
		Status:      booking.BookingStatusConfirmed,
		ConfirmedAt: time.Now(),
	})

	auditLog := audit.NewMemoryRepo()
	auditor := audit.NewService(auditLog)
	consents := consent.NewService(consent.NewMemoryRepo(), auditor)
	media := transport.NewStaticProvider()

	f := &fixture{
		consents: consents,
		media:    media,
		auditLog: auditLog,
		now:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(NewMemoryRepo(), billing, consents, media, auditor, 3*time.Minute)
	f.svc.clock = func() time.Time { return f.now }
	return f
}

func (f *fixture) activeSession(t *testing.T) Session {
	t.Helper()
	ctx := context.Background()
	sess, err := f.svc.Schedule(ctx, "bk-1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	sess, err = f.svc.Start(ctx, sess.ID, "CA777")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return sess
}

func (f *fixture) grantConsent(t *testing.T, callID string) {
	t.Helper()
	if _, err := f.consents.Record(context.Background(), callID, "client-1", "203.0.113.4", true); err != nil {
		t.Fatalf("record consent: %v", err)
	}
}

func TestLifecycle_ScheduleStartEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Schedule(ctx, "bk-1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if sess.Status != StatusScheduled || sess.ScheduledMinutes != 30 {
		t.Fatalf("unexpected session: %+v", sess)
	}

	// Ending a scheduled call is not a legal transition.
	if _, err := f.svc.End(ctx, sess.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	sess, err = f.svc.Start(ctx, sess.ID, "CA777")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !sess.Active() || sess.StartedAt.IsZero() {
		t.Fatalf("expected active session: %+v", sess)
	}
	if _, err := f.svc.Start(ctx, sess.ID, "CA777"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double start must fail, got %v", err)
	}

	sess, err = f.svc.End(ctx, sess.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if sess.Status != StatusEnded || sess.EndedAt.IsZero() {
		t.Fatalf("expected ended session: %+v", sess)
	}
	if got := len(f.auditLog.EventsOfType(audit.EventTypeCallEnded)); got != 1 {
		t.Fatalf("expected call_ended entry, got %d", got)
	}
}

func TestBeginCapture_RequiresConsent(t *testing.T) {
	f := newFixture(t)
	sess := f.activeSession(t)
	ctx := context.Background()

	if _, err := f.svc.BeginCapture(ctx, sess.ID, "reader-1"); !errors.Is(err, consent.ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired, got %v", err)
	}
	if _, ok := f.media.Captured(sess.ID); ok {
		t.Fatalf("transport must not be touched without consent")
	}
	if got := len(f.auditLog.EventsOfType(audit.EventTypeCaptureBlocked)); got != 1 {
		t.Fatalf("expected capture_blocked entry, got %d", got)
	}

	f.grantConsent(t, sess.ID)

	sess, err := f.svc.BeginCapture(ctx, sess.ID, "reader-1")
	if err != nil {
		t.Fatalf("begin capture: %v", err)
	}
	if sess.RecordingRef == "" {
		t.Fatalf("expected recording ref")
	}
	if got := len(f.auditLog.EventsOfType(audit.EventTypeCaptureStarted)); got != 1 {
		t.Fatalf("expected capture_started entry, got %d", got)
	}

	// Idempotent: a second call keeps the existing recording.
	again, err := f.svc.BeginCapture(ctx, sess.ID, "reader-1")
	if err != nil {
		t.Fatalf("repeat capture: %v", err)
	}
	if again.RecordingRef != sess.RecordingRef {
		t.Fatalf("recording ref changed on repeat capture")
	}
}

func TestEnd_MarksRecordingPermanent(t *testing.T) {
	f := newFixture(t)
	sess := f.activeSession(t)
	ctx := context.Background()

	f.grantConsent(t, sess.ID)
	if _, err := f.svc.BeginCapture(ctx, sess.ID, "reader-1"); err != nil {
		t.Fatalf("begin capture: %v", err)
	}

	sess, err := f.svc.End(ctx, sess.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !sess.RecordingPermanent || sess.RecordingRef == "" {
		t.Fatalf("recording must survive call end: %+v", sess)
	}
}

func TestSweepUnconsented(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.activeSession(t)

	// A consented-but-uncaptured call and a captured call both survive.
	consented := f.activeSession(t)
	f.grantConsent(t, consented.ID)
	captured := f.activeSession(t)
	f.grantConsent(t, captured.ID)
	if _, err := f.svc.BeginCapture(ctx, captured.ID, "reader-1"); err != nil {
		t.Fatalf("begin capture: %v", err)
	}

	// Inside the grace window nothing happens.
	n, err := f.svc.SweepUnconsented(ctx, f.now.Add(time.Minute))
	if err != nil || n != 0 {
		t.Fatalf("sweep inside grace = %d, %v", n, err)
	}

	n, err = f.svc.SweepUnconsented(ctx, f.now.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}

	got, _ := f.svc.Get(ctx, stale.ID)
	if got.Status != StatusEnded || got.RecordingRef != "" {
		t.Fatalf("stale session should end without recording: %+v", got)
	}
	if got := len(f.auditLog.EventsOfType(audit.EventTypeCallEndedNoConsent)); got != 1 {
		t.Fatalf("expected call_ended_unconsented entry, got %d", got)
	}

	for _, id := range []string{consented.ID, captured.ID} {
		s, _ := f.svc.Get(ctx, id)
		if s.Status != StatusActive {
			t.Fatalf("session %s should remain active", id)
		}
	}
}
