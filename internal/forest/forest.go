// Package forest implements the anomaly model: an Isolation Forest over
// scalar sensor values. The forest is trained once on a synthetic corpus and
// is immutable afterwards; Classify performs no internal mutation and is safe
// for concurrent use by multiple goroutines.
package forest

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ErrDegenerateCorpus reports a training corpus with zero variance. A forest
// cannot isolate anything in it, so training fails instead of silently
// producing a model that classifies everything the same way.
var ErrDegenerateCorpus = fmt.Errorf("forest: training corpus has zero variance")

// ErrNotTrained reports a Classify call before Train. Programming error.
var ErrNotTrained = fmt.Errorf("forest: model not trained")

// eulerMascheroni is used in the harmonic-number approximation for the
// expected path length of an unsuccessful BST search.
const eulerMascheroni = 0.5772156649

// Config holds the forest hyperparameters.
type Config struct {
	Trees         int     `mapstructure:"trees"`
	SubsampleSize int     `mapstructure:"subsample_size"`
	Contamination float64 `mapstructure:"contamination"`
}

// DefaultConfig returns the standard ensemble shape (100 trees on 256-point
// subsamples) with the pipeline's fixed 3% contamination rate.
func DefaultConfig() Config {
	return Config{
		Trees:         100,
		SubsampleSize: 256,
		Contamination: 0.03,
	}
}

// Classification is the model's verdict on a single value.
type Classification struct {
	IsAnomaly bool    `json:"is_anomaly"`
	Score     float64 `json:"score"`    // 0..1, higher = more anomalous
	Decision  float64 `json:"decision"` // threshold - score; negative = anomaly
}

// node is one split in an isolation tree. Values are one-dimensional, so a
// node carries only a split point, not a feature index.
type node struct {
	split       float64
	left, right *node
	size        int
	leaf        bool
}

// Forest is a trained Isolation Forest. Zero value is untrained; call Train
// before Classify.
type Forest struct {
	cfg        Config
	seed       int64
	trees      []*node
	sampleSize int
	threshold  float64
	trained    bool
}

// New creates an untrained forest. The seed fixes both subsampling and split
// selection, so identical (seed, corpus) pairs yield identical models.
func New(cfg Config, seed int64) *Forest {
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultConfig().Trees
	}
	if cfg.SubsampleSize <= 0 {
		cfg.SubsampleSize = DefaultConfig().SubsampleSize
	}
	if cfg.Contamination <= 0 || cfg.Contamination >= 1 {
		cfg.Contamination = DefaultConfig().Contamination
	}
	return &Forest{cfg: cfg, seed: seed}
}

// Train builds the ensemble from the corpus and fixes the anomaly threshold
// at the (1 - contamination) quantile of the corpus's own scores, so the
// model expects roughly that fraction of training inputs to be outliers.
func (f *Forest) Train(corpus []float64) error {
	if degenerate(corpus) {
		return fmt.Errorf("%w (%d values)", ErrDegenerateCorpus, len(corpus))
	}

	rng := rand.New(rand.NewSource(f.seed))

	f.sampleSize = f.cfg.SubsampleSize
	if f.sampleSize > len(corpus) {
		f.sampleSize = len(corpus)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(f.sampleSize))))

	f.trees = make([]*node, 0, f.cfg.Trees)
	for i := 0; i < f.cfg.Trees; i++ {
		sample := subsample(rng, corpus, f.sampleSize)
		f.trees = append(f.trees, buildTree(rng, sample, 0, maxDepth))
	}

	// Fit the decision threshold from the training scores.
	scores := make([]float64, len(corpus))
	for i, v := range corpus {
		scores[i] = f.score(v)
	}
	sort.Float64s(scores)
	idx := int(math.Ceil(float64(len(scores))*(1-f.cfg.Contamination))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	f.threshold = scores[idx]

	f.trained = true
	return nil
}

// Classify scores a single value against the trained ensemble. The value is
// treated as a one-sample batch; the sign convention follows the usual
// outlier-detection libraries: Decision < 0 means anomaly.
func (f *Forest) Classify(value float64) (Classification, error) {
	if !f.trained {
		return Classification{}, ErrNotTrained
	}

	s := f.score(value)
	return Classification{
		IsAnomaly: s > f.threshold,
		Score:     s,
		Decision:  f.threshold - s,
	}, nil
}

// Trained reports whether Train has completed successfully.
func (f *Forest) Trained() bool {
	return f.trained
}

// Threshold returns the fitted score threshold. Zero until trained.
func (f *Forest) Threshold() float64 {
	return f.threshold
}

// score computes the anomaly score 2^(-E[h(x)] / c(n)) for one value.
func (f *Forest) score(value float64) float64 {
	total := 0.0
	for _, t := range f.trees {
		total += pathLength(t, value, 0)
	}
	avg := total / float64(len(f.trees))
	return math.Pow(2, -avg/avgPathLength(f.sampleSize))
}

func degenerate(corpus []float64) bool {
	if len(corpus) < 2 {
		return true
	}
	first := corpus[0]
	for _, v := range corpus[1:] {
		if v != first {
			return false
		}
	}
	return true
}

// subsample shuffles a copy of the corpus and takes the first sampleSize
// values, sampling without replacement.
func subsample(rng *rand.Rand, corpus []float64, sampleSize int) []float64 {
	shuffled := make([]float64, len(corpus))
	copy(shuffled, corpus)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:sampleSize]
}

func buildTree(rng *rand.Rand, sample []float64, depth, maxDepth int) *node {
	if len(sample) <= 1 || depth >= maxDepth {
		return &node{size: len(sample), leaf: true}
	}

	lo, hi := minMax(sample)
	if lo == hi {
		// All remaining values identical; nothing left to isolate.
		return &node{size: len(sample), leaf: true}
	}

	split := lo + rng.Float64()*(hi-lo)

	var left, right []float64
	for _, v := range sample {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{size: len(sample), leaf: true}
	}

	return &node{
		split: split,
		left:  buildTree(rng, left, depth+1, maxDepth),
		right: buildTree(rng, right, depth+1, maxDepth),
		size:  len(sample),
	}
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func pathLength(t *node, value float64, depth int) float64 {
	if t.leaf {
		return float64(depth) + avgPathLength(t.size)
	}
	if value < t.split {
		return pathLength(t.left, value, depth+1)
	}
	return pathLength(t.right, value, depth+1)
}

// avgPathLength is c(n), the expected path length of an unsuccessful search
// in a BST of n nodes: 2H(n-1) - 2(n-1)/n.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	h := math.Log(float64(n-1)) + eulerMascheroni
	return 2*h - 2*float64(n-1)/float64(n)
}
