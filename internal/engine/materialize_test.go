package engine

import (
	"testing"

	"github.com/seenimoa/fundline/pkg/models"
)

func TestMaterializeCarryForward(t *testing.T) {
	events := []models.SeriesPoint{
		{Date: day(2025, 1, 3), Value: models.Float(10)},
		{Date: day(2025, 1, 7), Value: models.Float(20)},
	}

	series := Materialize(day(2025, 1, 1), day(2025, 1, 10), events)

	if len(series) != 10 {
		t.Fatalf("expected 10 days, got %d", len(series))
	}

	// Nil before the first event.
	for _, p := range series[:2] {
		if p.Value != nil {
			t.Errorf("%s: expected nil before first event, got %.2f", p.Date, *p.Value)
		}
	}
	// First event value carried through the gap.
	for _, p := range series[2:6] {
		if p.Value == nil || *p.Value != 10 {
			t.Errorf("%s: expected carried value 10, got %v", p.Date, p.Value)
		}
	}
	// Second event value through the end.
	for _, p := range series[6:] {
		if p.Value == nil || *p.Value != 20 {
			t.Errorf("%s: expected carried value 20, got %v", p.Date, p.Value)
		}
	}
}

func TestMaterializeContiguousAscending(t *testing.T) {
	series := Materialize(day(2025, 1, 1), day(2025, 3, 31), nil)

	if len(series) != 90 {
		t.Fatalf("expected 90 days, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Date.Equal(series[i-1].Date.AddDate(0, 0, 1)) {
			t.Fatalf("dates not contiguous at index %d: %s after %s",
				i, series[i].Date, series[i-1].Date)
		}
	}
}

func TestMaterializeInvertedRange(t *testing.T) {
	if got := Materialize(day(2025, 1, 10), day(2025, 1, 1), nil); got != nil {
		t.Errorf("expected nil for inverted range, got %d points", len(got))
	}
}

func TestMaterializeEventBeforeRange(t *testing.T) {
	events := []models.SeriesPoint{{Date: day(2024, 11, 1), Value: models.Float(7)}}
	series := Materialize(day(2025, 1, 1), day(2025, 1, 3), events)

	for _, p := range series {
		if p.Value == nil || *p.Value != 7 {
			t.Errorf("%s: expected pre-range event carried in, got %v", p.Date, p.Value)
		}
	}
}

func TestDivGuards(t *testing.T) {
	ten := models.Float(10)
	zero := models.Float(0)

	if got := div(ten, zero); got != nil {
		t.Errorf("expected nil for zero denominator, got %.2f", *got)
	}
	if got := div(ten, nil); got != nil {
		t.Errorf("expected nil for nil denominator, got %.2f", *got)
	}
	if got := div(nil, ten); got != nil {
		t.Errorf("expected nil for nil numerator, got %.2f", *got)
	}
	if got := div(ten, models.Float(4)); got == nil || *got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
}

func TestDivPct(t *testing.T) {
	got := divPct(models.Float(478), models.Float(1200))
	if got == nil {
		t.Fatal("expected a value, got nil")
	}
	if diff := *got - 39.8333; diff > 0.001 || diff < -0.001 {
		t.Errorf("expected ~39.83, got %.4f", *got)
	}
}

func TestDivPositiveRejectsNegativeDenominator(t *testing.T) {
	if got := divPositive(models.Float(5), models.Float(-100)); got != nil {
		t.Errorf("expected nil for negative denominator, got %.2f", *got)
	}
	if got := divPositive(models.Float(5), models.Float(100)); got == nil || *got != 0.05 {
		t.Errorf("expected 0.05, got %v", got)
	}
}
