package pricing

import (
	"context"
	"errors"
	"time"
)

// Service computes extension prices from service rates.
//
// Contract:
// - Service-code based rate lookup with effective windows.
// - Pure calculation + repository lookups; no booking writes.
// - The original booking's price is never an input; a quote depends only on
//   the requested duration and the current rate.
type Service struct {
	repo  RateRepository
	clock func() time.Time
}

func NewService(repo RateRepository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type ExtensionQuoteRequest struct {
	ServiceCode string

	// RequestedMinutes is the additional call time being purchased.
	RequestedMinutes int

	// At determines which effective rate to use. If zero, service clock is used.
	At time.Time
}

type ExtensionQuote struct {
	ServiceCode string

	Currency string

	BillableSeconds int
	BillableMinutes int

	RatePerMinuteMinor int64
	TotalMinor         int64
}

var (
	ErrRateNotFound    = errors.New("pricing: rate not found")
	ErrInvalidQuoteReq = errors.New("pricing: invalid quote request")
)

// QuoteExtension computes the price of an emergency extension of the
// requested duration using the service's current per-minute rate.
func (s *Service) QuoteExtension(ctx context.Context, req ExtensionQuoteRequest) (ExtensionQuote, error) {
	if req.ServiceCode == "" {
		return ExtensionQuote{}, ErrInvalidQuoteReq
	}
	if req.RequestedMinutes <= 0 {
		return ExtensionQuote{}, ErrInvalidQuoteReq
	}

	at := req.At
	if at.IsZero() {
		at = s.clock().UTC()
	}

	rate, ok, err := s.repo.FindServiceRate(ctx, req.ServiceCode, at)
	if err != nil {
		return ExtensionQuote{}, err
	}
	if !ok {
		return ExtensionQuote{}, ErrRateNotFound
	}

	billableSec := billableSeconds(req.RequestedMinutes*60, rate.MinimumBillableSeconds, rate.BillingIncrementSeconds)
	billableMin := billableMinutesFromSeconds(billableSec)

	return ExtensionQuote{
		ServiceCode:        req.ServiceCode,
		Currency:           rate.Currency,
		BillableSeconds:    billableSec,
		BillableMinutes:    billableMin,
		RatePerMinuteMinor: rate.RatePerMinuteMinor,
		TotalMinor:         rate.RatePerMinuteMinor * int64(billableMin),
	}, nil
}

// RateRepository abstracts rate persistence.
// Implementation can be Postgres, cached, etc.
type RateRepository interface {
	FindServiceRate(ctx context.Context, serviceCode string, at time.Time) (ServiceRate, bool, error)
}

func billableSeconds(actualSec int, minSec int, incrementSec int) int {
	if actualSec < 0 {
		return 0
	}
	if minSec <= 0 {
		minSec = 0
	}
	if incrementSec <= 0 {
		incrementSec = 60
	}

	sec := actualSec
	if sec < minSec {
		sec = minSec
	}

	// round up to nearest increment
	q := sec / incrementSec
	r := sec % incrementSec
	if r != 0 {
		q++
	}
	return q * incrementSec
}

func billableMinutesFromSeconds(sec int) int {
	if sec <= 0 {
		return 0
	}
	m := sec / 60
	if sec%60 != 0 {
		m++
	}
	return m
}
