// Package oracle produces the external reference price the arbitrageurs chase.
package oracle

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	DefaultFrequency = 0.1
	DefaultAmplitude = 0.1
)

// Oracle oscillates around a fixed base price:
//
//	price(tick) = base * (1 + amplitude*sin(frequency*tick))
//
// With the defaults this is base*(1 + sin(0.1*tick)/10): period ~62.83 ticks,
// +-10% swing, exactly base at tick 0.
type Oracle struct {
	base      float64
	frequency float64
	amplitude float64

	noise          opensimplex.Noise
	noiseAmplitude float64
	noiseScale     float64

	current float64
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithWave overrides the oscillation frequency (radians per tick) and the
// relative amplitude.
func WithWave(frequency, amplitude float64) Option {
	return func(o *Oracle) {
		o.frequency = frequency
		o.amplitude = amplitude
	}
}

// WithNoise layers seeded simplex jitter of the given relative amplitude on
// top of the wave. scale is the noise frequency per tick.
func WithNoise(seed int64, amplitude, scale float64) Option {
	return func(o *Oracle) {
		if amplitude <= 0 {
			return
		}
		o.noise = opensimplex.NewNormalized(seed)
		o.noiseAmplitude = amplitude
		o.noiseScale = scale
	}
}

// New creates an oracle anchored at basePrice.
func New(basePrice float64, opts ...Option) (*Oracle, error) {
	if !(basePrice > 0) || math.IsInf(basePrice, 0) {
		return nil, fmt.Errorf("new oracle: base price must be positive, got %v", basePrice)
	}
	o := &Oracle{
		base:      basePrice,
		frequency: DefaultFrequency,
		amplitude: DefaultAmplitude,
		current:   basePrice,
	}
	for _, opt := range opts {
		opt(o)
	}
	if math.IsNaN(o.frequency) || math.IsInf(o.frequency, 0) {
		return nil, fmt.Errorf("new oracle: frequency must be finite, got %v", o.frequency)
	}
	if !(o.amplitude >= 0 && o.amplitude < 1) {
		return nil, fmt.Errorf("new oracle: amplitude must be in [0, 1), got %v", o.amplitude)
	}
	if !(o.amplitude+o.noiseAmplitude < 1) {
		return nil, fmt.Errorf("new oracle: amplitude+noise must stay below 1, got %v", o.amplitude+o.noiseAmplitude)
	}
	return o, nil
}

// BasePrice returns the anchor price.
func (o *Oracle) BasePrice() float64 { return o.base }

// ExternalPrice is a pure function of tick.
func (o *Oracle) ExternalPrice(tick int) float64 {
	m := o.amplitude * math.Sin(o.frequency*float64(tick))
	if o.noise != nil {
		// NewNormalized yields [0, 1]; recentre to [-1, 1].
		n := o.noise.Eval2(float64(tick)*o.noiseScale, 0)*2 - 1
		n = math.Max(-1, math.Min(1, n))
		m += o.noiseAmplitude * n
	}
	return o.base * (1 + m)
}

// Advance fixes the reference price agents see for the given tick.
func (o *Oracle) Advance(tick int) float64 {
	o.current = o.ExternalPrice(tick)
	return o.current
}

// Current returns the price set by the last Advance, or the base price.
func (o *Oracle) Current() float64 { return o.current }

// Bounds returns the inclusive price band the oracle can reach.
func (o *Oracle) Bounds() (low, high float64) {
	spread := o.amplitude + o.noiseAmplitude
	return o.base * (1 - spread), o.base * (1 + spread)
}
