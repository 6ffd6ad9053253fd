package calculator

import (
	"errors"
	"fmt"
	"math"

	"AMMSim/internal/model"
)

// PriceRange scans the snapshots and returns the pool price high and low.
func PriceRange(snaps []model.Snapshot) (high, low float64, err error) {
	if len(snaps) == 0 {
		return 0, 0, errors.New("no snapshots provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, s := range snaps {
		if s.PoolPrice > high {
			high = s.PoolPrice
		}
		if s.PoolPrice < low {
			low = s.PoolPrice
		}
	}
	return high, low, nil
}

// RangePosition places price within [low, high] as a fraction in [0, 1].
// A degenerate range (a pool nobody traded) sits at the midpoint.
func RangePosition(price, high, low float64) (float64, error) {
	switch {
	case high < low:
		return 0, fmt.Errorf("range high %v below low %v", high, low)
	case high == low:
		return 0.5, nil
	}
	return math.Max(0, math.Min(1, (price-low)/(high-low))), nil
}
