package sensor

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrInvalidRange reports a misconfigured fault value range (min > max).
var ErrInvalidRange = fmt.Errorf("sensor: fault value range min exceeds max")

// Config holds the value ranges for normal readings and injected faults.
type Config struct {
	BaselineMean   float64 `mapstructure:"baseline_mean"`
	BaselineStdDev float64 `mapstructure:"baseline_std_dev"`
	BaselineMin    float64 `mapstructure:"baseline_min"`
	BaselineMax    float64 `mapstructure:"baseline_max"`
	HighSpikeMin   float64 `mapstructure:"high_spike_min"`
	HighSpikeMax   float64 `mapstructure:"high_spike_max"`
	LowDropMin     float64 `mapstructure:"low_drop_min"`
	LowDropMax     float64 `mapstructure:"low_drop_max"`
	StuckValue     float64 `mapstructure:"stuck_value"`
}

// DefaultConfig returns the simulated sensor's default operating envelope:
// a 25°C baseline with 2°C of noise clipped to [20,30], spikes to [45,55],
// drops to [5,10], and a stuck reading of 23°C.
func DefaultConfig() Config {
	return Config{
		BaselineMean:   25.0,
		BaselineStdDev: 2.0,
		BaselineMin:    20.0,
		BaselineMax:    30.0,
		HighSpikeMin:   45.0,
		HighSpikeMax:   55.0,
		LowDropMin:     5.0,
		LowDropMax:     10.0,
		StuckValue:     23.0,
	}
}

func (c Config) validate() error {
	ranges := []struct {
		name     string
		min, max float64
	}{
		{"baseline", c.BaselineMin, c.BaselineMax},
		{"high_spike", c.HighSpikeMin, c.HighSpikeMax},
		{"low_drop", c.LowDropMin, c.LowDropMax},
	}
	for _, r := range ranges {
		if r.min > r.max {
			return fmt.Errorf("%w: %s [%v, %v]", ErrInvalidRange, r.name, r.min, r.max)
		}
	}
	return nil
}

// Generator produces readings on a deterministic fault schedule. It owns its
// own RNG; two generators built with the same seed and config emit identical
// reading sequences.
type Generator struct {
	cfg Config
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator with the given config and seed.
// Misconfigured fault ranges are rejected at construction.
func NewGenerator(cfg Config, seed int64) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}, nil
}

// Next produces the reading for the given 1-indexed step.
//
// The fault schedule is divisibility-based and the rules are evaluated in a
// fixed order; the first match wins. Step 30 is a high spike (the 10-rule
// shadows the 15-rule) and step 50 is a high spike (10 shadows 25). This
// precedence is part of the contract: reordering it changes which steps get
// which fault and breaks reproducibility of recorded runs.
func (g *Generator) Next(step int) Reading {
	r := Reading{Timestamp: g.now().UTC()}

	switch {
	case step%10 == 0:
		r.Fault = FaultHighSpike
		r.Value = g.uniform(g.cfg.HighSpikeMin, g.cfg.HighSpikeMax)
	case step%15 == 0:
		r.Fault = FaultLowDrop
		r.Value = g.uniform(g.cfg.LowDropMin, g.cfg.LowDropMax)
	case step%25 == 0:
		r.Fault = FaultStuckValue
		r.Value = g.cfg.StuckValue
	default:
		r.Fault = FaultNone
		r.Value = clip(
			g.cfg.BaselineMean+g.cfg.BaselineStdDev*g.rng.NormFloat64(),
			g.cfg.BaselineMin, g.cfg.BaselineMax,
		)
	}

	return r
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func clip(v, min, max float64) float64 {
	return math.Min(math.Max(v, min), max)
}
