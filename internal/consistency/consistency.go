// Package consistency implements the frequentist effect-consistency chain
// (ECS_Strict): per-test z-differences between human and agent effects, an
// RMS chi-square p-value per finding and a Stouffer combination of finding
// p-values into study and benchmark p-values. Small combined p-values mean
// the agent's effect profile deviates systematically from the human one.
package consistency

import (
	"math"

	"alignbench/internal/distributions"
	"alignbench/internal/effectsize"
)

// ZDiff returns (h − a)/√(hSE² + aSE²). With both SEs zero, equal effects
// give 0 and differing effects ±Inf. NaN inputs give NaN.
func ZDiff(hD, hSE, aD, aSE float64) float64 {
	if math.IsNaN(hD) || math.IsNaN(aD) || math.IsNaN(hSE) || math.IsNaN(aSE) {
		return math.NaN()
	}
	diff := hD - aD
	denom := math.Sqrt(hSE*hSE + aSE*aSE)
	if denom == 0 {
		if diff == 0 {
			return 0
		}
		return math.Copysign(math.Inf(1), diff)
	}
	return diff / denom
}

// Consistency maps a z-difference onto (0, 1] as exp(−z²/2)
func Consistency(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	if math.IsInf(z, 0) {
		return 0
	}
	return math.Exp(-0.5 * z * z)
}

// FindingPValue is the survival of Σ z_k² under χ²(K). NaN entries are
// skipped; ok is false when no entry remains.
func FindingPValue(zs []float64) (p float64, ok bool) {
	var chi2 float64
	k := 0
	for _, z := range zs {
		if math.IsNaN(z) {
			continue
		}
		chi2 += z * z
		k++
	}
	if k == 0 {
		return 0, false
	}
	return distributions.ChiSquareSurvival(chi2, float64(k)), true
}

// Stouffer combines one-sided p-values with weighted Stouffer's method,
// Z = Σ w·z / √Σ w². A nil weights slice weights every p-value equally;
// p-values with invalid weights or outside [0, 1] are skipped.
func Stouffer(ps, weights []float64) (z, p float64, ok bool) {
	var num, den float64
	for i, pv := range ps {
		if math.IsNaN(pv) || pv < 0 || pv > 1 {
			continue
		}
		w := 1.0
		if weights != nil {
			if i >= len(weights) || !(weights[i] > 0) || math.IsInf(weights[i], 0) {
				continue
			}
			w = weights[i]
		}
		num += w * distributions.PToZ(pv)
		den += w * w
	}
	if den == 0 {
		return 0, 0, false
	}
	z = num / math.Sqrt(den)
	return z, distributions.ZToP(z), true
}

// Pooled is the result of pooling correlations in Fisher-z space
type Pooled struct {
	Z  float64 // pooled atanh(r)
	R  float64
	SE float64
	// Stat is Z/SE; P its two-tailed p-value
	Stat float64
	P    float64
}

// FisherZPool averages correlations in z-space weighted by sample size and
// tests the pooled value against zero. ok is false when Σn ≤ 3.
func FisherZPool(rs []float64, ns []int) (Pooled, bool) {
	var sumW, sumWZ float64
	for i, r := range rs {
		if i >= len(ns) || ns[i] <= 0 || math.IsNaN(r) || math.Abs(r) > 1 {
			continue
		}
		w := float64(ns[i])
		sumW += w
		sumWZ += w * effectsize.RToFisherZ(r)
	}
	if sumW <= 3 {
		return Pooled{}, false
	}

	z := sumWZ / sumW
	se := 1 / math.Sqrt(sumW-3)
	stat := z / se
	return Pooled{
		Z:    z,
		R:    math.Tanh(z),
		SE:   se,
		Stat: stat,
		P:    distributions.TwoTailedZ(stat),
	}, true
}
