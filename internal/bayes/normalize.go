package bayes

import (
	"fmt"
	"math"
)

// Normalizer post-processes raw class scores before selection and sorting.
// Implementations must be order-preserving so Pick and SortResults agree.
type Normalizer interface {
	Name() string
	Normalize(scores []float32) []float32
}

// Identity returns scores unchanged. It is the default.
type Identity struct{}

// Name implements Normalizer.
func (Identity) Name() string { return "none" }

// Normalize implements Normalizer.
func (Identity) Normalize(scores []float32) []float32 { return scores }

// Softmax maps log-scores to probabilities summing to one:
//
//	p_i = 1 / sum_j exp(s_j - s_i)
//
// This is the norm_probs transform of langid.py. Working with differences
// keeps large negative log-scores from underflowing to 0/0.
type Softmax struct{}

// Name implements Normalizer.
func (Softmax) Name() string { return "softmax" }

// Normalize implements Normalizer.
func (Softmax) Normalize(scores []float32) []float32 {
	out := make([]float32, len(scores))
	for i, si := range scores {
		var sum float64
		for _, sj := range scores {
			// equal scores contribute exactly one, also when both are -Inf
			if sj == si {
				sum++
				continue
			}
			sum += math.Exp(float64(sj) - float64(si))
		}
		out[i] = float32(1 / sum)
	}
	return out
}

// ParseNormalizer converts a name to a Normalizer.
func ParseNormalizer(name string) (Normalizer, error) {
	switch name {
	case "", "none", "identity":
		return Identity{}, nil
	case "softmax":
		return Softmax{}, nil
	default:
		return nil, fmt.Errorf("invalid normalizer: %q (expected: none|softmax)", name)
	}
}
