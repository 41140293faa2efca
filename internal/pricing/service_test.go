package pricing

import (
	"context"
	"testing"
	"time"
)

func TestBillableSeconds(t *testing.T) {
	// 60s increment, 0 min
	if got := billableSeconds(1, 0, 60); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	if got := billableSeconds(60, 0, 60); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	if got := billableSeconds(61, 0, 60); got != 120 {
		t.Fatalf("expected 120, got %d", got)
	}

	// min billable seconds
	if got := billableSeconds(5, 30, 60); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
}

func TestBillableMinutesFromSeconds(t *testing.T) {
	if got := billableMinutesFromSeconds(1); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := billableMinutesFromSeconds(60); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := billableMinutesFromSeconds(61); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestQuoteExtension(t *testing.T) {
	repo := &MemoryRepo{Rates: []ServiceRate{{
		ServiceCode:             "video_reading_standard",
		Currency:                "USD",
		RatePerMinuteMinor:      299,
		BillingIncrementSeconds: 60,
		Status:                  RateStatusActive,
		EffectiveFrom:           time.Unix(0, 0),
	}}}
	svc := NewService(repo)

	q, err := svc.QuoteExtension(context.Background(), ExtensionQuoteRequest{
		ServiceCode:      "video_reading_standard",
		RequestedMinutes: 15,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.TotalMinor != 15*299 {
		t.Fatalf("expected %d, got %d", 15*299, q.TotalMinor)
	}
	if q.Currency != "USD" || q.BillableMinutes != 15 {
		t.Fatalf("unexpected quote: %+v", q)
	}
}

func TestQuoteExtension_UnknownService(t *testing.T) {
	svc := NewService(&MemoryRepo{})
	if _, err := svc.QuoteExtension(context.Background(), ExtensionQuoteRequest{ServiceCode: "x", RequestedMinutes: 5}); err != ErrRateNotFound {
		t.Fatalf("expected ErrRateNotFound, got %v", err)
	}
	if _, err := svc.QuoteExtension(context.Background(), ExtensionQuoteRequest{ServiceCode: "x"}); err != ErrInvalidQuoteReq {
		t.Fatalf("expected ErrInvalidQuoteReq, got %v", err)
	}
}
