package calculator

import (
	"math"
	"testing"

	"AMMSim/internal/model"
)

func TestTrailingMean(t *testing.T) {
	got, err := TrailingMean([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %.3f", got)
	}
	if _, err := TrailingMean([]float64{1}, 3); err == nil {
		t.Error("expected error for short series")
	}
	if _, err := TrailingMean([]float64{1}, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestTrackingError(t *testing.T) {
	snaps := []model.Snapshot{
		{PoolPrice: 100, ExternalPrice: 100},
		{PoolPrice: 99, ExternalPrice: 110},
		{PoolPrice: 105, ExternalPrice: 100},
	}
	mean, maxGap, err := TrackingError(snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantMax := 0.1
	wantMean := (0 + 0.1 + 0.05) / 3
	if math.Abs(maxGap-wantMax) > 1e-12 {
		t.Errorf("max gap: expected %.4f, got %.4f", wantMax, maxGap)
	}
	if math.Abs(mean-wantMean) > 1e-12 {
		t.Errorf("mean gap: expected %.4f, got %.4f", wantMean, mean)
	}

	if _, _, err := TrackingError(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSmoothedGap(t *testing.T) {
	snaps := []model.Snapshot{
		{PoolPrice: 150, ExternalPrice: 100},
		{PoolPrice: 90, ExternalPrice: 100},
		{PoolPrice: 110, ExternalPrice: 100},
	}
	got, err := SmoothedGap(snaps, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.1, got %.4f", got)
	}
}

func TestPriceRange(t *testing.T) {
	snaps := []model.Snapshot{{PoolPrice: 101}, {PoolPrice: 97}, {PoolPrice: 104}}
	high, low, err := PriceRange(snaps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 104 || low != 97 {
		t.Errorf("expected 104/97, got %.1f/%.1f", high, low)
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		price, high, low float64
		want             float64
	}{
		{100, 110, 90, 0.5},
		{80, 110, 90, 0},
		{120, 110, 90, 1},
		{100, 100, 100, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.price, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("price %.0f in [%.0f, %.0f]: expected %.2f, got %.2f", tt.price, tt.low, tt.high, tt.want, got)
		}
	}
	if _, err := RangePosition(1, 0, 5); err == nil {
		t.Error("expected error when high < low")
	}
}
