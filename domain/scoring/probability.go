package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ProbabilityKind tags the variant held by a Probability
type ProbabilityKind uint8

const (
	// KindUncertain carries no information; it behaves as p = 0.5
	KindUncertain ProbabilityKind = iota
	// KindScalar is the probability that an effect is present
	KindScalar
	// KindThreeWay splits the mass over positive, negative and null effects
	KindThreeWay
)

// UncertainValue is the numeric stand-in for an Uncertain probability
const UncertainValue = 0.5

// Probability is a posterior probability of an effect. The zero value is Uncertain.
type Probability struct {
	kind  ProbabilityKind
	value float64
	plus  float64
	minus float64
	zero  float64
}

// Uncertain returns the maximally uncertain probability
func Uncertain() Probability {
	return Probability{}
}

// Scalar builds a scalar probability. Input outside [0, 1], NaN included,
// yields Uncertain; clamping happens only when probabilities are combined.
func Scalar(p float64) Probability {
	if !(p >= 0 && p <= 1) {
		return Uncertain()
	}
	return Probability{kind: KindScalar, value: p}
}

// ThreeWay builds a distribution over {plus, minus, zero}. Negative components
// are clamped to zero and the result is renormalized to sum to 1. Non-finite
// components or an all-zero distribution yield Uncertain.
func ThreeWay(plus, minus, zero float64) Probability {
	for _, v := range []float64{plus, minus, zero} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Uncertain()
		}
	}
	plus, minus, zero = math.Max(plus, 0), math.Max(minus, 0), math.Max(zero, 0)
	total := plus + minus + zero
	if total <= 0 {
		return Uncertain()
	}
	return Probability{
		kind:  KindThreeWay,
		plus:  plus / total,
		minus: minus / total,
		zero:  zero / total,
	}
}

// Kind reports which variant p holds
func (p Probability) Kind() ProbabilityKind {
	return p.kind
}

// IsUncertain reports whether p carries no information
func (p Probability) IsUncertain() bool {
	return p.kind == KindUncertain
}

// Value collapses p to the probability that any effect is present
func (p Probability) Value() float64 {
	switch p.kind {
	case KindScalar:
		return p.value
	case KindThreeWay:
		return p.plus + p.minus
	default:
		return UncertainValue
	}
}

// Distribution returns the three-way components. It is only meaningful for
// KindThreeWay; other kinds report ok = false.
func (p Probability) Distribution() (plus, minus, zero float64, ok bool) {
	if p.kind != KindThreeWay {
		return 0, 0, 0, false
	}
	return p.plus, p.minus, p.zero, true
}

// Combine scores agreement between two probabilities in [0, 1]. Inputs are
// clamped into (eps, 1-eps) first; for a distribution that is its null mass.
// Two three-way distributions combine as a dot product over
// {plus, minus, zero}; any other pairing uses the scalar agreement
// p·q + (1-p)(1-q). Uncertain on either side yields 0.5.
func (p Probability) Combine(other Probability, eps float64) float64 {
	if p.IsUncertain() || other.IsUncertain() {
		return UncertainValue
	}
	if eps < 0 || eps >= 0.5 || math.IsNaN(eps) {
		eps = 0
	}

	if p.kind == KindThreeWay && other.kind == KindThreeWay {
		a := clampDistribution([3]float64{p.plus, p.minus, p.zero}, eps)
		b := clampDistribution([3]float64{other.plus, other.minus, other.zero}, eps)
		return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
	}

	a := clampOpen(p.Value(), eps)
	b := clampOpen(other.Value(), eps)
	return a*b + (1-a)*(1-b)
}

func clampOpen(v, eps float64) float64 {
	return math.Min(math.Max(v, eps), 1-eps)
}

// clampDistribution clamps the null mass into (eps, 1-eps) and rescales the
// directional masses to fill the rest. A distribution with no directional
// mass splits the freed mass evenly between plus and minus.
func clampDistribution(d [3]float64, eps float64) [3]float64 {
	effect := d[0] + d[1]
	zero := clampOpen(d[2], eps)
	if effect <= 0 {
		return [3]float64{(1 - zero) / 2, (1 - zero) / 2, zero}
	}
	scale := (1 - zero) / effect
	return [3]float64{d[0] * scale, d[1] * scale, zero}
}

type threeWayJSON struct {
	Plus  *float64 `json:"plus"`
	Minus *float64 `json:"minus"`
	Zero  *float64 `json:"zero"`
}

// MarshalJSON encodes a scalar as a number, a distribution as an object and
// Uncertain as null
func (p Probability) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case KindScalar:
		return json.Marshal(p.value)
	case KindThreeWay:
		return json.Marshal(map[string]float64{"plus": p.plus, "minus": p.minus, "zero": p.zero})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON never fails: anything that is not a number, a numeric string
// or a complete {plus, minus, zero} object decodes to Uncertain
func (p *Probability) UnmarshalJSON(data []byte) error {
	*p = ProbabilityFrom(json.RawMessage(data))
	return nil
}

// ProbabilityFrom converts loosely typed boundary data into a Probability.
// Malformed values become Uncertain.
func ProbabilityFrom(v interface{}) Probability {
	switch x := v.(type) {
	case nil:
		return Uncertain()
	case Probability:
		return x
	case float64:
		return Scalar(x)
	case float32:
		return Scalar(float64(x))
	case int:
		return Scalar(float64(x))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return Uncertain()
		}
		return Scalar(f)
	case map[string]float64:
		plus, okP := x["plus"]
		minus, okM := x["minus"]
		zero, okZ := x["zero"]
		if !okP || !okM || !okZ {
			return Uncertain()
		}
		return ThreeWay(plus, minus, zero)
	case map[string]interface{}:
		raw, err := json.Marshal(x)
		if err != nil {
			return Uncertain()
		}
		return ProbabilityFrom(json.RawMessage(raw))
	case json.RawMessage:
		return probabilityFromJSON(x)
	default:
		return Uncertain()
	}
}

func probabilityFromJSON(data []byte) Probability {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return Uncertain()
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return Scalar(f)
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return ProbabilityFrom(s)
	}

	var tw threeWayJSON
	if err := json.Unmarshal(data, &tw); err == nil && tw.Plus != nil && tw.Minus != nil && tw.Zero != nil {
		return ThreeWay(*tw.Plus, *tw.Minus, *tw.Zero)
	}

	return Uncertain()
}
