// Package concordance measures how well agent effect sizes reproduce human
// effect sizes within a grouping of tests: Pearson correlation, Lin's
// concordance correlation coefficient (the headline ECS) and a weighted
// "caricature" regression of agent on human effects.
package concordance

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"alignbench/domain/scoring"
)

const (
	// MinPairs is the fewest valid pairs for study, domain and benchmark ECS
	MinPairs = 3
	// MinFindingPairs is the fewest valid pairs for the finding diagnostic
	MinFindingPairs = 2
)

// Pair is one test's human and agent d-equivalent effects. Either side may be
// nil when it could not be standardized.
type Pair struct {
	Human  *float64
	Agent  *float64
	Weight float64
}

func (p Pair) valid() bool {
	return p.Human != nil && p.Agent != nil && finite(*p.Human) && finite(*p.Agent)
}

// Pearson returns the sample correlation of x and y; ok is false for
// mismatched lengths, fewer than two points or zero variance
func Pearson(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	r := stat.Correlation(x, y, nil)
	if !finite(r) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}

// CCC returns Lin's concordance correlation coefficient
//
//	2·cov(x,y) / (var(x) + var(y) + (mean(x) − mean(y))²)
//
// using population moments. Two constant, equal vectors are in perfect
// concordance.
func CCC(x, y []float64) (float64, bool) {
	n := len(x)
	if n != len(y) || n < 2 {
		return 0, false
	}

	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, syy, sxy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	vx := sxx / float64(n)
	vy := syy / float64(n)
	cov := sxy / float64(n)
	shift := mx - my

	den := vx + vy + shift*shift
	if den == 0 {
		return 1, true
	}
	ccc := 2 * cov / den
	if !finite(ccc) {
		return 0, false
	}
	return ccc, true
}

// Caricature fits agent = a·human + b by weighted least squares. A nil
// weights slice weights every pair equally. ok is false when human effects
// have no spread.
func Caricature(human, agent, weights []float64) (scoring.Caricature, bool) {
	if len(human) != len(agent) || len(human) < 2 {
		return scoring.Caricature{}, false
	}
	if weights != nil && len(weights) != len(human) {
		return scoring.Caricature{}, false
	}
	if constant(human) {
		return scoring.Caricature{}, false
	}

	intercept, slope := stat.LinearRegression(human, agent, weights, false)
	if !finite(intercept) || !finite(slope) {
		return scoring.Caricature{}, false
	}
	return scoring.Caricature{A: slope, B: intercept}, true
}

// Evaluate computes the consistency view of one grouping. Pairs without both
// effects count toward the missing rate only. Below minPairs valid pairs the
// ECS, Pearson and caricature fields are nil.
func Evaluate(pairs []Pair, minPairs int) scoring.GroupConsistency {
	gc := scoring.GroupConsistency{NTotal: len(pairs)}

	human := make([]float64, 0, len(pairs))
	agent := make([]float64, 0, len(pairs))
	weights := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if !p.valid() {
			continue
		}
		human = append(human, *p.Human)
		agent = append(agent, *p.Agent)
		w := p.Weight
		if !(w > 0) || math.IsInf(w, 0) {
			w = scoring.DefaultWeight
		}
		weights = append(weights, w)
	}
	gc.NValid = len(human)
	if gc.NTotal > 0 {
		gc.MissingRate = float64(gc.NTotal-gc.NValid) / float64(gc.NTotal)
	}

	if minPairs < 2 {
		minPairs = 2
	}
	if gc.NValid < minPairs {
		return gc
	}

	if ccc, ok := CCC(human, agent); ok {
		gc.ECS = scoring.Float(ccc)
	}
	if r, ok := Pearson(human, agent); ok {
		gc.Pearson = scoring.Float(r)
	}
	if fit, ok := Caricature(human, agent, weights); ok {
		gc.Caricature = &fit
	}
	return gc
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
