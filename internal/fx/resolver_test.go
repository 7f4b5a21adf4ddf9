package fx

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedSource returns its quotes in order, counting calls.
type scriptedSource struct {
	quotes []float64
	errs   []error
	calls  int
}

func (s *scriptedSource) Quote(_ context.Context, _, _ string) (float64, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return 0, s.errs[i]
	}
	if i < len(s.quotes) {
		return s.quotes[i], nil
	}
	return 0, errors.New("no more scripted quotes")
}

// testClock is an adjustable clock for TTL tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateSameCurrencyUncached(t *testing.T) {
	source := &scriptedSource{}
	resolver := NewResolver(source)

	got := resolver.Rate(context.Background(), "USD", "usd")
	if got == nil || *got != 1.0 {
		t.Fatalf("expected 1.0 for same currency, got %v", got)
	}
	if source.calls != 0 {
		t.Errorf("expected no external calls, got %d", source.calls)
	}
}

func TestRateCachedWithinTTL(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	source := &scriptedSource{quotes: []float64{1.1, 1.2}}
	resolver := NewResolver(source, WithClock(clock.Now))

	if got := resolver.Rate(context.Background(), "EUR", "USD"); got == nil || *got != 1.1 {
		t.Fatalf("expected first quote 1.1, got %v", got)
	}

	clock.Advance(30 * time.Minute)
	if got := resolver.Rate(context.Background(), "EUR", "USD"); got == nil || *got != 1.1 {
		t.Fatalf("expected cached quote 1.1 inside TTL, got %v", got)
	}
	if source.calls != 1 {
		t.Errorf("expected 1 external call, got %d", source.calls)
	}
}

func TestRateRefreshedAfterTTL(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	source := &scriptedSource{quotes: []float64{1.1, 1.2}}
	resolver := NewResolver(source, WithClock(clock.Now))

	resolver.Rate(context.Background(), "EUR", "USD")

	clock.Advance(65 * time.Minute)
	if got := resolver.Rate(context.Background(), "EUR", "USD"); got == nil || *got != 1.2 {
		t.Fatalf("expected refreshed quote 1.2 after TTL, got %v", got)
	}
	if source.calls != 2 {
		t.Errorf("expected 2 external calls, got %d", source.calls)
	}
}

func TestRateFailureNotCached(t *testing.T) {
	source := &scriptedSource{
		quotes: []float64{0, 1.3},
		errs:   []error{errors.New("quota exceeded"), nil},
	}
	resolver := NewResolver(source)

	if got := resolver.Rate(context.Background(), "GBP", "USD"); got != nil {
		t.Fatalf("expected nil on quote failure, got %.4f", *got)
	}
	// The failure was not cached, so the next call retries and succeeds.
	if got := resolver.Rate(context.Background(), "GBP", "USD"); got == nil || *got != 1.3 {
		t.Fatalf("expected 1.3 on retry, got %v", got)
	}
	if source.calls != 2 {
		t.Errorf("expected 2 external calls, got %d", source.calls)
	}
}

func TestRateRejectsNonPositive(t *testing.T) {
	source := &scriptedSource{quotes: []float64{-2}}
	resolver := NewResolver(source)

	if got := resolver.Rate(context.Background(), "JPY", "USD"); got != nil {
		t.Errorf("expected nil for non-positive quote, got %.4f", *got)
	}
}

func TestRatePairsCachedIndependently(t *testing.T) {
	source := &scriptedSource{quotes: []float64{1.1, 0.9}}
	resolver := NewResolver(source)

	a := resolver.Rate(context.Background(), "EUR", "USD")
	b := resolver.Rate(context.Background(), "USD", "EUR")
	if a == nil || b == nil {
		t.Fatal("expected both pairs to resolve")
	}
	if *a != 1.1 || *b != 0.9 {
		t.Errorf("expected 1.1 and 0.9, got %.2f and %.2f", *a, *b)
	}
}

func TestRateEmptyCurrency(t *testing.T) {
	resolver := NewResolver(&scriptedSource{})
	if got := resolver.Rate(context.Background(), "", "USD"); got != nil {
		t.Errorf("expected nil for empty currency, got %.4f", *got)
	}
}
