package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// TestType is the statistical test family a reported statistic belongs to
type TestType string

const (
	TestT           TestType = "t-test"
	TestF           TestType = "f-test"
	TestCorrelation TestType = "correlation"
	TestChiSquare   TestType = "chi-square"
	TestBinomial    TestType = "binomial"
)

var testTypeAliases = map[string]TestType{
	"t-test":      TestT,
	"t":           TestT,
	"ttest":       TestT,
	"t_test":      TestT,
	"f-test":      TestF,
	"f":           TestF,
	"ftest":       TestF,
	"f_test":      TestF,
	"anova":       TestF,
	"correlation": TestCorrelation,
	"r":           TestCorrelation,
	"pearson":     TestCorrelation,
	"chi-square":  TestChiSquare,
	"chi_square":  TestChiSquare,
	"chisquare":   TestChiSquare,
	"chi2":        TestChiSquare,
	"chisq":       TestChiSquare,
	"binomial":    TestBinomial,
	"binom":       TestBinomial,
}

// ParseTestType maps a loosely written test family name onto a TestType
func ParseTestType(s string) (TestType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if t, ok := testTypeAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown statistical test type %q", s)
}

// UnmarshalJSON accepts any alias understood by ParseTestType. Unknown names
// are kept verbatim so the record survives and degrades during scoring.
func (t *TestType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("statistical_test_type must be a string: %w", err)
	}
	parsed, err := ParseTestType(s)
	if err != nil {
		*t = TestType(s)
		return nil
	}
	*t = parsed
	return nil
}

// Known reports whether t is one of the supported families
func (t TestType) Known() bool {
	switch t {
	case TestT, TestF, TestCorrelation, TestChiSquare, TestBinomial:
		return true
	}
	return false
}

// Table2x2 holds the four cells of a 2x2 contingency table
//
//	    | outcome+ | outcome-
//	----+----------+---------
//	 g1 |    A     |    B
//	 g2 |    C     |    D
type Table2x2 struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
}

// Total returns the number of observations in the table
func (t Table2x2) Total() float64 {
	return t.A + t.B + t.C + t.D
}

// Valid reports whether every cell is finite and non-negative
func (t Table2x2) Valid() bool {
	for _, v := range []float64{t.A, t.B, t.C, t.D} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return t.Total() > 0
}

// Side is one half of a human/agent comparison: the statistic as reported
// plus whatever the collaborator could precompute
type Side struct {
	Statistic      *float64     `json:"statistic,omitempty"`
	N1             int          `json:"n1,omitempty"`
	N2             int          `json:"n2,omitempty"`
	DF1            float64      `json:"df1,omitempty"`
	DF2            float64      `json:"df2,omitempty"`
	Counts         *Table2x2    `json:"counts,omitempty"`
	Successes      int          `json:"successes,omitempty"`
	Trials         int          `json:"trials,omitempty"`
	NullProportion float64      `json:"null_proportion,omitempty"`
	PValue         *float64     `json:"p_value,omitempty"`
	EffectSize     *float64     `json:"effect_size,omitempty"`
	EffectD        *float64     `json:"effect_d,omitempty"`
	Pi             *Probability `json:"pi,omitempty"`
	Significant    *bool        `json:"significant,omitempty"`
	Direction      int          `json:"direction,omitempty"`
}

// N returns the total sample size on this side
func (s Side) N() int {
	switch {
	case s.Trials > 0:
		return s.Trials
	case s.N1 > 0 || s.N2 > 0:
		return s.N1 + s.N2
	case s.Counts != nil && s.Counts.Valid():
		return int(math.Round(s.Counts.Total()))
	}
	return 0
}

// StatisticValue returns the reported statistic if it is present and finite
func (s Side) StatisticValue() (float64, bool) {
	if s.Statistic == nil || math.IsNaN(*s.Statistic) || math.IsInf(*s.Statistic, 0) {
		return 0, false
	}
	return *s.Statistic, true
}

// IsSignificant reports significance from the explicit flag, else from the
// p-value at alpha. ok is false when neither is available.
func (s Side) IsSignificant(alpha float64) (sig bool, ok bool) {
	if s.Significant != nil {
		return *s.Significant, true
	}
	if s.PValue != nil && *s.PValue >= 0 && *s.PValue <= 1 {
		return *s.PValue < alpha, true
	}
	return false, false
}

// TestRecord is one evaluated statistical test. Records are immutable once
// built by the loader; scoring never mutates them.
type TestRecord struct {
	TestName      string   `json:"test_name"`
	FindingID     string   `json:"finding_id"`
	SubStudyID    string   `json:"sub_study_id,omitempty"`
	StudyID       string   `json:"study_id"`
	Type          TestType `json:"statistical_test_type"`
	Independent   *bool    `json:"independent,omitempty"`
	Human         Side     `json:"human"`
	Agent         Side     `json:"agent"`
	Direction     int      `json:"direction"`
	Weight        float64  `json:"test_weight,omitempty"`
	FindingWeight float64  `json:"finding_weight,omitempty"`
}

// IsIndependent reports whether the side comes from an independent two-group
// design. An explicit flag wins; without one a second group size means
// independent groups.
func (r TestRecord) IsIndependent(s Side) bool {
	if r.Independent != nil {
		return *r.Independent
	}
	return s.N2 > 0
}

// Sign returns the record-level direction clamped to -1, 0 or +1
func (r TestRecord) Sign() int {
	return sign(r.Direction)
}

// ObservedSign returns the direction observed on one side: the sign of a
// signed statistic (t, r), else the side's declared direction, else the
// record's direction
func (r TestRecord) ObservedSign(s Side) int {
	if r.Type == TestT || r.Type == TestCorrelation {
		if v, ok := s.StatisticValue(); ok && v != 0 {
			return sign(int(math.Copysign(1, v)))
		}
	}
	if s.Direction != 0 {
		return sign(s.Direction)
	}
	return r.Sign()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Bool returns a pointer to v
func Bool(v bool) *bool {
	return &v
}

// Float returns a pointer to v, or nil when v is not finite
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
