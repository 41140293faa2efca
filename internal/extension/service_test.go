package extension

import (
	"context"
	"errors"
	"testing"
	"time"

	"consultation-platform/internal/audit"
	"consultation-platform/internal/booking"
	"consultation-platform/internal/call"
	"consultation-platform/internal/consent"
	"consultation-platform/internal/pricing"
	"consultation-platform/internal/transport"
)

type fixture struct {
	svc      *Service
	billing  *booking.MemoryProvider
	calls    *call.Service
	auditLog *audit.MemoryRepo
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
		PriceMinor:  8970,
		Currency:    "USD",
		Status:      booking.BookingStatusConfirmed,
		ConfirmedAt: time.Now(),
	})

	auditLog := audit.NewMemoryRepo()
	auditor := audit.NewService(auditLog)
	consents := consent.NewService(consent.NewMemoryRepo(), auditor)
	calls := call.NewService(call.NewMemoryRepo(), billing, consents, transport.NewStaticProvider(), auditor, 3*time.Minute)

	rates := pricing.NewService(&pricing.MemoryRepo{Rates: []pricing.ServiceRate{{
		ID:                      "rate-1",
		ServiceCode:             "video_reading_standard",
		Currency:                "USD",
		RatePerMinuteMinor:      299,
		BillingIncrementSeconds: 60,
		MinimumBillableSeconds:  300,
		EffectiveFrom:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:                  pricing.RateStatusActive,
	}}})

	svc := NewService(NewMemoryRepo(), billing, rates, calls, auditor)
	return &fixture{svc: svc, billing: billing, calls: calls, auditLog: auditLog}
}

func (f *fixture) activateCall(t *testing.T) call.Session {
	t.Helper()
	ctx := context.Background()
	sess, err := f.calls.Schedule(ctx, "bk-1")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	sess, err = f.calls.Start(ctx, sess.ID, "CA1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return sess
}

func TestRequest_RefusedWithoutActiveCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No call session at all.
	if _, err := f.svc.Request(ctx, "bk-1", 15, "reader-1"); !errors.Is(err, ErrOriginalSessionNotActive) {
		t.Fatalf("expected ErrOriginalSessionNotActive, got %v", err)
	}

	// Scheduled but not started.
	if _, err := f.calls.Schedule(ctx, "bk-1"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := f.svc.Request(ctx, "bk-1", 15, "reader-1"); !errors.Is(err, ErrOriginalSessionNotActive) {
		t.Fatalf("expected ErrOriginalSessionNotActive for scheduled call, got %v", err)
	}
}

func TestRequest_MintsNewBookingAndSlot(t *testing.T) {
	f := newFixture(t)
	f.activateCall(t)
	ctx := context.Background()

	e, err := f.svc.Request(ctx, "bk-1", 15, "reader-1")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if e.Minutes != 15 || e.PriceMinor != 15*299 || e.Currency != "USD" {
		t.Fatalf("unexpected quote: %+v", e)
	}
	if e.NewBookingID == "" || e.NewBookingID == "bk-1" {
		t.Fatalf("extension must mint a new booking: %+v", e)
	}

	// The new booking is a confirmed chained booking of the quoted shape.
	nb, err := f.billing.ConfirmedBooking(ctx, e.NewBookingID)
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	if nb.OriginalBookingID != "bk-1" || nb.Minutes != 15 || nb.PriceMinor != e.PriceMinor {
		t.Fatalf("unexpected new booking: %+v", nb)
	}

	// The original booking is left exactly as it was.
	orig, _ := f.billing.GetBooking(ctx, "bk-1")
	if orig.Minutes != 30 || orig.PriceMinor != 8970 {
		t.Fatalf("original booking changed: %+v", orig)
	}

	// A fresh Scheduled call session exists for the new booking.
	ns, err := f.calls.GetByBooking(ctx, e.NewBookingID)
	if err != nil {
		t.Fatalf("new call session: %v", err)
	}
	if ns.ID != e.NewCallSessionID || ns.Status != call.StatusScheduled || ns.ScheduledMinutes != 15 {
		t.Fatalf("unexpected new call session: %+v", ns)
	}

	evs := f.auditLog.EventsOfType(audit.EventTypeExtensionCreated)
	if len(evs) != 1 || evs[0].ExtensionID != e.ID || evs[0].BookingID != "bk-1" {
		t.Fatalf("unexpected audit entries: %+v", evs)
	}
}

func TestRequest_ShortExtensionHitsMinimumCharge(t *testing.T) {
	f := newFixture(t)
	f.activateCall(t)

	// 2 requested minutes round up to the 5 minute minimum.
	e, err := f.svc.Request(context.Background(), "bk-1", 2, "reader-1")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if e.Minutes != 5 || e.PriceMinor != 5*299 {
		t.Fatalf("expected minimum charge, got %+v", e)
	}

	list, err := f.svc.ListForBooking(context.Background(), "bk-1")
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
}
