package calculator

import (
	"errors"
	"fmt"
	"math"

	"AMMSim/internal/model"
)

// TrailingMean averages the last window values.
func TrailingMean(values []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	if len(values) < window {
		return 0, fmt.Errorf("need %d values for a trailing mean, have %d", window, len(values))
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), nil
}

// GapSeries returns the relative gap (pool-external)/external for every snapshot.
func GapSeries(snaps []model.Snapshot) []float64 {
	gaps := make([]float64, len(snaps))
	for i, s := range snaps {
		if s.ExternalPrice != 0 {
			gaps[i] = (s.PoolPrice - s.ExternalPrice) / s.ExternalPrice
		}
	}
	return gaps
}

// TrackingError returns the mean absolute relative gap between pool and
// external price, and the largest single gap.
func TrackingError(snaps []model.Snapshot) (mean, maxGap float64, err error) {
	if len(snaps) == 0 {
		return 0, 0, errors.New("no snapshots provided")
	}
	for _, g := range absGaps(snaps) {
		mean += g
		maxGap = math.Max(maxGap, g)
	}
	return mean / float64(len(snaps)), maxGap, nil
}

// SmoothedGap is the mean absolute gap over the last window ticks, i.e. how
// far the pool sat from the reference when the run ended.
func SmoothedGap(snaps []model.Snapshot, window int) (float64, error) {
	return TrailingMean(absGaps(snaps), window)
}

func absGaps(snaps []model.Snapshot) []float64 {
	gaps := GapSeries(snaps)
	for i, g := range gaps {
		gaps[i] = math.Abs(g)
	}
	return gaps
}
