package simulation

import (
	"errors"
	"fmt"
	"math"

	"AMMSim/internal/oracle"
	"AMMSim/internal/strategy"
)

// Params describes one run.
type Params struct {
	NumTraders       int
	NumArbitrageurs  int
	TraderInitialDai float64
	TraderInitialEth float64
	PoolInitialDai   float64
	PoolInitialEth   float64
	NumTicks         int

	Seed   int64
	Policy strategy.Policy
	Oracle OracleParams
}

// OracleParams tunes the reference price wave. Values are used as given:
// Amplitude 0 is a flat reference, NoiseAmplitude 0 disables jitter.
type OracleParams struct {
	Frequency      float64
	Amplitude      float64
	NoiseAmplitude float64
	NoiseScale     float64
}

// DefaultParams is the reference experiment: 100 traders of which 10
// arbitrageurs, a 1,000,000 DAI / 10,000 ETH pool, 100 ticks.
func DefaultParams() Params {
	return Params{
		NumTraders:       100,
		NumArbitrageurs:  10,
		TraderInitialDai: 10_000,
		TraderInitialEth: 1_000,
		PoolInitialDai:   1_000_000,
		PoolInitialEth:   10_000,
		NumTicks:         100,
		Seed:             1,
		Policy:           strategy.DefaultPolicy(),
		Oracle: OracleParams{
			Frequency: oracle.DefaultFrequency,
			Amplitude: oracle.DefaultAmplitude,
		},
	}
}

// nonNegative rejects negatives, NaN and infinities.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// Validate checks the ranges the simulation depends on.
func (p Params) Validate() error {
	var errs []error
	if p.NumTraders < 0 {
		errs = append(errs, fmt.Errorf("num_traders must be >= 0, got %d", p.NumTraders))
	}
	if p.NumArbitrageurs < 0 || p.NumArbitrageurs > p.NumTraders {
		errs = append(errs, fmt.Errorf("num_arbitrageurs must be in [0, %d], got %d", p.NumTraders, p.NumArbitrageurs))
	}
	if !nonNegative(p.TraderInitialDai) || !nonNegative(p.TraderInitialEth) {
		errs = append(errs, fmt.Errorf("trader initial balances must be >= 0, got dai=%v eth=%v", p.TraderInitialDai, p.TraderInitialEth))
	}
	if !(p.PoolInitialDai > 0) || !(p.PoolInitialEth > 0) || math.IsInf(p.PoolInitialDai, 1) || math.IsInf(p.PoolInitialEth, 1) {
		errs = append(errs, fmt.Errorf("pool initial reserves must be > 0, got dai=%v eth=%v", p.PoolInitialDai, p.PoolInitialEth))
	}
	if p.NumTicks < 0 {
		errs = append(errs, fmt.Errorf("num_ticks must be >= 0, got %d", p.NumTicks))
	}
	if !nonNegative(p.Policy.MaxDaiIn) || !nonNegative(p.Policy.MaxEthIn) {
		errs = append(errs, fmt.Errorf("sizing caps must be finite and >= 0, got dai=%v eth=%v", p.Policy.MaxDaiIn, p.Policy.MaxEthIn))
	}
	o := p.Oracle
	if math.IsNaN(o.Frequency) || math.IsInf(o.Frequency, 0) {
		errs = append(errs, fmt.Errorf("oracle frequency must be finite, got %v", o.Frequency))
	}
	if !(o.Amplitude >= 0 && o.Amplitude < 1) {
		errs = append(errs, fmt.Errorf("oracle amplitude must be in [0, 1), got %v", o.Amplitude))
	}
	if !nonNegative(o.NoiseAmplitude) || o.Amplitude+o.NoiseAmplitude >= 1 {
		errs = append(errs, fmt.Errorf("oracle noise amplitude must be >= 0 and keep amplitude+noise below 1, got %v", o.NoiseAmplitude))
	}
	if !nonNegative(o.NoiseScale) {
		errs = append(errs, fmt.Errorf("oracle noise scale must be finite and >= 0, got %v", o.NoiseScale))
	}
	return errors.Join(errs...)
}
