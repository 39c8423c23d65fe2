package concordance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"alignbench/domain/scoring"
)

func pairsOf(h, a []float64) []Pair {
	pairs := make([]Pair, len(h))
	for i := range h {
		pairs[i] = Pair{Human: scoring.Float(h[i]), Agent: scoring.Float(a[i])}
	}
	return pairs
}

func TestCCC_SelfIsExactlyOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.SliceOfN(rapid.Float64Range(-5, 5), 2, 50).Draw(rt, "x")
		ccc, ok := CCC(x, x)
		require.True(rt, ok)
		assert.Equal(rt, 1.0, ccc)
	})
}

func TestCCC_BoundedByAbsPearson(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(3, 40).Draw(rt, "n")
		x := rapid.SliceOfN(rapid.Float64Range(-3, 3), n, n).Draw(rt, "x")
		y := rapid.SliceOfN(rapid.Float64Range(-3, 3), n, n).Draw(rt, "y")

		r, ok := Pearson(x, y)
		if !ok {
			rt.Skip("zero variance")
		}
		ccc, ok := CCC(x, y)
		require.True(rt, ok)
		assert.LessOrEqual(rt, math.Abs(ccc), math.Abs(r)+1e-9)
	})
}

func TestCCC_PenalizesShiftAndScale(t *testing.T) {
	h := []float64{0.1, 0.4, 0.6, 0.9}
	scaled := []float64{0.2, 0.8, 1.2, 1.8}
	shifted := []float64{0.6, 0.9, 1.1, 1.4}

	r, _ := Pearson(h, scaled)
	assert.InDelta(t, 1.0, r, 1e-12)

	cScaled, _ := CCC(h, scaled)
	cShifted, _ := CCC(h, shifted)
	assert.Less(t, cScaled, 0.9)
	assert.Less(t, cShifted, 0.9)

	same, _ := CCC(h, []float64{0.1, 0.4, 0.6, 0.9})
	assert.Equal(t, 1.0, same)
}

func TestCCC_KnownValue(t *testing.T) {
	// mx = 2, my = 3, vx = vy = 2/3, cov = 2/3
	ccc, ok := CCC([]float64{1, 2, 3}, []float64{2, 3, 4})
	require.True(t, ok)
	assert.InDelta(t, (4.0/3.0)/(4.0/3.0+1), ccc, 1e-12)
}

func TestCCC_Degenerate(t *testing.T) {
	ccc, ok := CCC([]float64{0.3, 0.3}, []float64{0.3, 0.3})
	require.True(t, ok)
	assert.Equal(t, 1.0, ccc)

	_, ok = CCC([]float64{1}, []float64{1})
	assert.False(t, ok)
	_, ok = CCC([]float64{1, 2}, []float64{1})
	assert.False(t, ok)
}

func TestCaricature(t *testing.T) {
	h := []float64{0.1, 0.3, 0.5, 0.7}
	a := make([]float64, len(h))
	for i, v := range h {
		a[i] = 1.5*v + 0.2
	}

	fit, ok := Caricature(h, a, nil)
	require.True(t, ok)
	assert.InDelta(t, 1.5, fit.A, 1e-9)
	assert.InDelta(t, 0.2, fit.B, 1e-9)

	fit, ok = Caricature(h, a, []float64{1, 2, 3, 4})
	require.True(t, ok)
	assert.InDelta(t, 1.5, fit.A, 1e-9, "exact fit is weight independent")

	_, ok = Caricature([]float64{0.2, 0.2, 0.2}, []float64{0.1, 0.3, 0.5}, nil)
	assert.False(t, ok)
}

func TestEvaluate_MissingRate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(rt, "n")
		k := rapid.IntRange(0, n).Draw(rt, "k")

		pairs := make([]Pair, n)
		for i := range pairs {
			h := float64(i) * 0.1
			pairs[i] = Pair{Human: &h, Agent: scoring.Float(h + 0.05)}
		}
		nan := math.NaN()
		for i := 0; i < k; i++ {
			pairs[i].Agent = &nan
		}

		gc := Evaluate(pairs, MinPairs)
		assert.Equal(rt, float64(k)/float64(n), gc.MissingRate)
		assert.Equal(rt, n-k, gc.NValid)
		assert.Equal(rt, n, gc.NTotal)
	})
}

func TestEvaluate_MinPairs(t *testing.T) {
	pairs := pairsOf([]float64{0.2, 0.5}, []float64{0.3, 0.4})

	gc := Evaluate(pairs, MinPairs)
	assert.Nil(t, gc.ECS)
	assert.Nil(t, gc.Pearson)
	assert.Nil(t, gc.Caricature)
	assert.Equal(t, 0.0, gc.MissingRate)

	gc = Evaluate(pairs, MinFindingPairs)
	require.NotNil(t, gc.ECS)
	require.NotNil(t, gc.Caricature)
}

func TestEvaluate_Full(t *testing.T) {
	pairs := pairsOf([]float64{0.2, 0.5, 0.8, 1.1}, []float64{0.25, 0.45, 0.85, 1.0})
	pairs = append(pairs, Pair{Human: scoring.Float(0.4)})

	gc := Evaluate(pairs, MinPairs)
	require.NotNil(t, gc.ECS)
	require.NotNil(t, gc.Pearson)
	assert.Greater(t, *gc.ECS, 0.9)
	assert.LessOrEqual(t, *gc.ECS, math.Abs(*gc.Pearson)+1e-12)
	assert.InDelta(t, 0.2, gc.MissingRate, 1e-12)

	empty := Evaluate(nil, MinPairs)
	assert.Equal(t, 0.0, empty.MissingRate)
	assert.Nil(t, empty.ECS)
}
