package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConfirmedBooking(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	p.Put(Booking{ID: "bk-created", Status: BookingStatusCreated})
	p.Put(Booking{ID: "bk-stamped", Status: BookingStatusConfirmed}) // no ConfirmedAt
	p.Put(Booking{ID: "bk-ok", Status: BookingStatusConfirmed, ConfirmedAt: time.Now()})

	if _, err := p.ConfirmedBooking(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for _, id := range []string{"bk-created", "bk-stamped"} {
		if _, err := p.ConfirmedBooking(ctx, id); !errors.Is(err, ErrNotConfirmed) {
			t.Fatalf("%s: expected ErrNotConfirmed, got %v", id, err)
		}
	}
	if _, err := p.ConfirmedBooking(ctx, "bk-ok"); err != nil {
		t.Fatalf("confirmed booking: %v", err)
	}
}

func TestCreateExtensionBooking_ChainsWithoutTouchingOriginal(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	p.Put(Booking{
		ID:          "bk-1",
		ClientID:    "client-1",
		ReaderID:    "reader-1",
		ServiceCode: "video_reading_standard",
		Minutes:     30,
		PriceMinor:  8970,
		Currency:    "USD",
		Status:      BookingStatusConfirmed,
		ConfirmedAt: time.Now(),
	})

	nb, err := p.CreateExtensionBooking(ctx, ExtensionBookingRequest{
		OriginalBookingID: "bk-1",
		ClientID:          "client-1",
		ReaderID:          "reader-1",
		ServiceCode:       "video_reading_standard",
		Minutes:           15,
		PriceMinor:        4485,
		Currency:          "USD",
	})
	if err != nil {
		t.Fatalf("create extension booking: %v", err)
	}
	if nb.OriginalBookingID != "bk-1" || !nb.Confirmed() || nb.Minutes != 15 {
		t.Fatalf("unexpected new booking: %+v", nb)
	}

	orig, _ := p.GetBooking(ctx, "bk-1")
	if orig.Minutes != 30 || orig.PriceMinor != 8970 {
		t.Fatalf("original booking mutated: %+v", orig)
	}

	// Extending an unconfirmed original is refused.
	p.Put(Booking{ID: "bk-2", Status: BookingStatusCreated})
	if _, err := p.CreateExtensionBooking(ctx, ExtensionBookingRequest{OriginalBookingID: "bk-2"}); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
}
