package sensor

import (
	"fmt"
	"math/rand"
)

// minCorpusSize is the smallest corpus that keeps the injected fault
// segments disjoint and leaves enough normal baseline around them.
const minCorpusSize = 500

// segmentLen is the length of each injected fault burst in a 500-sample
// corpus; it scales proportionally for larger corpora.
const segmentLen = 5

// BuildCorpus deterministically generates a training corpus of n values:
// a Gaussian baseline around the configured mean, clipped to the normal
// operating range, with four disjoint fault bursts overwritten on top of it
// (two high spikes, one low drop, one stuck value). The corpus is consumed
// by model training and then discarded; it is never retained by the pipeline.
func BuildCorpus(cfg Config, n int, seed int64) ([]float64, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if n < minCorpusSize {
		return nil, fmt.Errorf("sensor: corpus size %d below minimum %d", n, minCorpusSize)
	}

	rng := rand.New(rand.NewSource(seed))

	values := make([]float64, n)
	for i := range values {
		values[i] = clip(
			cfg.BaselineMean+cfg.BaselineStdDev*rng.NormFloat64(),
			cfg.BaselineMin, cfg.BaselineMax,
		)
	}

	// Fault segment positions are fixed fractions of the corpus so the same
	// faults land in the same relative places regardless of n.
	scale := func(idx int) int { return idx * n / minCorpusSize }
	length := segmentLen * n / minCorpusSize

	fill := func(start int, gen func() float64) {
		for i := start; i < start+length && i < n; i++ {
			values[i] = gen()
		}
	}

	// First high-spike burst.
	fill(scale(50), func() float64 {
		return cfg.HighSpikeMin + rng.Float64()*(cfg.HighSpikeMax-cfg.HighSpikeMin)
	})
	// Low-drop burst.
	fill(scale(120), func() float64 {
		return cfg.LowDropMin + rng.Float64()*(cfg.LowDropMax-cfg.LowDropMin)
	})
	// Stuck-value burst.
	fill(scale(200), func() float64 { return cfg.StuckValue })
	// Second high-spike burst, slightly lower band than the first.
	lo, hi := cfg.HighSpikeMin-5, cfg.HighSpikeMax-5
	fill(scale(350), func() float64 { return lo + rng.Float64()*(hi-lo) })

	return values, nil
}
