// Package aggregate rolls per-test alignment scores up the test → finding →
// study → domain → benchmark hierarchy.
package aggregate

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"alignbench/domain/scoring"
)

// Weighted is one value with its rollup weight
type Weighted struct {
	Value  float64
	Weight float64
}

// WeightedMean returns Σ v·w / Σ w over entries with a finite value.
// Non-positive weights resolve to the default weight. Terms are summed in
// sorted order, so the result does not depend on input order.
func WeightedMean(items []Weighted) (float64, bool) {
	terms := make([]Weighted, 0, len(items))
	for _, it := range items {
		if math.IsNaN(it.Value) || math.IsInf(it.Value, 0) {
			continue
		}
		w := it.Weight
		if !(w > 0) || math.IsInf(w, 0) {
			w = scoring.DefaultWeight
		}
		terms = append(terms, Weighted{Value: it.Value, Weight: w})
	}
	if len(terms) == 0 {
		return 0, false
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Value != terms[j].Value {
			return terms[i].Value < terms[j].Value
		}
		return terms[i].Weight < terms[j].Weight
	})

	var num, den float64
	for _, t := range terms {
		num += t.Value * t.Weight
		den += t.Weight
	}
	return num / den, true
}

// FindingScore is the test-weighted mean PAS of a finding's tests
func FindingScore(tests []scoring.ScoredTest) (float64, bool) {
	items := make([]Weighted, len(tests))
	for i, t := range tests {
		items[i] = Weighted{Value: t.PAS, Weight: t.Weight}
	}
	return WeightedMean(items)
}

// StudyScore is the finding-weighted mean of a study's finding scores
func StudyScore(findings []scoring.FindingResult) (float64, bool) {
	items := make([]Weighted, len(findings))
	for i, f := range findings {
		items[i] = Weighted{Value: f.Score, Weight: f.Weight}
	}
	return WeightedMean(items)
}

// Normalize maps pas_raw in [0, 1] onto pas_norm in [−1, 1]
func Normalize(raw float64) float64 {
	return 2*raw - 1
}

// Denormalize maps pas_norm back onto pas_raw
func Denormalize(norm float64) float64 {
	return (norm + 1) / 2
}

// Combined is an inverse-variance weighted mean. SE is nil when no input
// carried a usable standard error.
type Combined struct {
	Mean float64
	SE   *float64
}

// InverseVariance combines per-study values with weights 1/se². Values whose
// SE is nil, zero or not finite take the largest observed SE; when no SE is
// usable the unweighted mean is returned without an SE.
func InverseVariance(values []float64, ses []*float64) (Combined, bool) {
	var vals []float64
	var errs []float64
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		se := math.NaN()
		if i < len(ses) && ses[i] != nil && *ses[i] > 0 && !math.IsInf(*ses[i], 0) {
			se = *ses[i]
		}
		vals = append(vals, v)
		errs = append(errs, se)
	}
	if len(vals) == 0 {
		return Combined{}, false
	}

	largest := math.NaN()
	for _, se := range errs {
		if !math.IsNaN(se) && (math.IsNaN(largest) || se > largest) {
			largest = se
		}
	}
	if math.IsNaN(largest) {
		mean, _ := Mean(vals)
		return Combined{Mean: mean}, true
	}

	items := make([]Weighted, len(vals))
	var sumW float64
	for i, v := range vals {
		se := errs[i]
		if math.IsNaN(se) {
			se = largest
		}
		w := 1 / (se * se)
		items[i] = Weighted{Value: v, Weight: w}
		sumW += w
	}
	mean, _ := WeightedMean(items)
	se := 1 / math.Sqrt(sumW)
	return Combined{Mean: mean, SE: &se}, true
}

// Mean is the unweighted mean of the finite values
func Mean(values []float64) (float64, bool) {
	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	m, err := stats.Mean(data)
	if err != nil {
		return 0, false
	}
	return m, true
}

// DomainMean is the unweighted mean of the member studies' rolled-up values;
// nil entries (not computable) are skipped
func DomainMean(values []*float64) *float64 {
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			vals = append(vals, *v)
		}
	}
	m, ok := Mean(vals)
	if !ok {
		return nil
	}
	return scoring.Float(m)
}
