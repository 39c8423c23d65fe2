// Package alignment scores the agreement between a human and an agent
// posterior probability for one test (the Probability Alignment Score).
package alignment

import (
	"math"

	"alignbench/domain/scoring"
)

// DefaultEpsilon keeps posteriors away from 0 and 1 before they are combined
const DefaultEpsilon = 1e-3

// ChanceLevel is the PAS of two maximally uncertain posteriors
const ChanceLevel = 0.5

// Scorer computes PAS with a fixed clamping epsilon
type Scorer struct {
	Epsilon float64
}

// NewScorer returns a Scorer; an epsilon outside [0, 0.5) falls back to
// DefaultEpsilon
func NewScorer(epsilon float64) *Scorer {
	if math.IsNaN(epsilon) || epsilon < 0 || epsilon >= 0.5 {
		epsilon = DefaultEpsilon
	}
	return &Scorer{Epsilon: epsilon}
}

// Score returns the PAS of one human/agent pair
func (s *Scorer) Score(human, agent scoring.Probability) float64 {
	return PAS(human, agent, s.Epsilon)
}

// PAS combines two posteriors into an agreement score in [0, 1]. Scalars use
// ph·pa + (1−ph)(1−pa); two three-way distributions use their dot product
// over {plus, minus, zero}. Uncertain input scores ChanceLevel.
func PAS(human, agent scoring.Probability, epsilon float64) float64 {
	v := human.Combine(agent, epsilon)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ChanceLevel
	}
	return math.Max(0, math.Min(1, v))
}
