package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"alignbench/domain/scoring"
)

// BenchmarkGeneratorConfig configures the synthetic benchmark generator.
// The agent's true effect is Exaggeration·d + Shift plus Gaussian noise of
// sd Noise, so Exaggeration = 1, Shift = 0, Noise = 0 is a faithful agent.
type BenchmarkGeneratorConfig struct {
	Studies          int      `json:"studies"`
	FindingsPerStudy int      `json:"findings_per_study"`
	TestsPerFinding  int      `json:"tests_per_finding"`
	Domains          []string `json:"domains"`
	MeanEffect       float64  `json:"mean_effect"`
	EffectSpread     float64  `json:"effect_spread"`
	MinGroupSize     int      `json:"min_group_size"`
	MaxGroupSize     int      `json:"max_group_size"`
	Exaggeration     float64  `json:"exaggeration"`
	Shift            float64  `json:"shift"`
	Noise            float64  `json:"noise"`
	MissingRate      float64  `json:"missing_rate"`
	Seed             int64    `json:"seed"`
}

// DefaultBenchmarkConfig returns a small mixed-family benchmark with a
// slightly exaggerating agent
func DefaultBenchmarkConfig() BenchmarkGeneratorConfig {
	return BenchmarkGeneratorConfig{
		Studies:          6,
		FindingsPerStudy: 3,
		TestsPerFinding:  3,
		Domains:          []string{"judgment", "memory", "social"},
		MeanEffect:       0.45,
		EffectSpread:     0.35,
		MinGroupSize:     20,
		MaxGroupSize:     120,
		Exaggeration:     1.3,
		Shift:            0.05,
		Noise:            0.1,
		MissingRate:      0.05,
		Seed:             42,
	}
}

// BenchmarkGenerator produces seeded synthetic human/agent test records
type BenchmarkGenerator struct {
	config BenchmarkGeneratorConfig
	rng    *rand.Rand
}

// NewBenchmarkGenerator creates a generator; the same config always yields
// the same dataset
func NewBenchmarkGenerator(config BenchmarkGeneratorConfig) *BenchmarkGenerator {
	if config.MinGroupSize < 3 {
		config.MinGroupSize = 3
	}
	if config.MaxGroupSize < config.MinGroupSize {
		config.MaxGroupSize = config.MinGroupSize
	}
	return &BenchmarkGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the dataset: records, uniform weights and a round-robin
// study → domain table
func (g *BenchmarkGenerator) Generate() (scoring.Dataset, error) {
	var records []scoring.TestRecord
	membership := make(map[string][]string)

	for s := 0; s < g.config.Studies; s++ {
		studyID := fmt.Sprintf("study_%02d", s+1)
		if len(g.config.Domains) > 0 {
			domain := g.config.Domains[s%len(g.config.Domains)]
			membership[domain] = append(membership[domain], studyID)
		}

		for f := 0; f < g.config.FindingsPerStudy; f++ {
			findingID := fmt.Sprintf("%s_f%d", studyID, f+1)
			for t := 0; t < g.config.TestsPerFinding; t++ {
				name := fmt.Sprintf("test_%d", t+1)
				records = append(records, g.generateTest(studyID, findingID, name, s*100+f*10+t))
			}
		}
	}

	domains, err := scoring.NewDomainMap(membership)
	if err != nil {
		return scoring.Dataset{}, err
	}
	return scoring.Dataset{Records: records, Domains: domains}, nil
}

// generateTest draws one record; every fourth test is a correlation
func (g *BenchmarkGenerator) generateTest(studyID, findingID, name string, index int) scoring.TestRecord {
	d := g.config.MeanEffect + g.rng.NormFloat64()*g.config.EffectSpread
	agentD := g.config.Exaggeration*d + g.config.Shift + g.rng.NormFloat64()*g.config.Noise
	n1 := g.groupSize()
	n2 := g.groupSize()

	rec := scoring.TestRecord{
		TestName:  name,
		FindingID: findingID,
		StudyID:   studyID,
		Direction: sign(d),
	}

	if index%4 == 3 {
		rec.Type = scoring.TestCorrelation
		n := n1 + n2
		rec.Human = correlationSide(g.sampleR(d, n), n)
		rec.Agent = correlationSide(g.sampleR(agentD, n), n)
	} else {
		rec.Type = scoring.TestT
		rec.Independent = scoring.Bool(true)
		rec.Human = tSide(g.sampleT(d, n1, n2), n1, n2)
		rec.Agent = tSide(g.sampleT(agentD, n1, n2), n1, n2)
	}

	if g.rng.Float64() < g.config.MissingRate {
		rec.Agent.Statistic = nil
	}
	return rec
}

func (g *BenchmarkGenerator) groupSize() int {
	span := g.config.MaxGroupSize - g.config.MinGroupSize
	if span <= 0 {
		return g.config.MinGroupSize
	}
	return g.config.MinGroupSize + g.rng.Intn(span+1)
}

// sampleT draws an observed t for true effect d, with unit sampling noise
func (g *BenchmarkGenerator) sampleT(d float64, n1, n2 int) float64 {
	ncp := d * math.Sqrt(float64(n1)*float64(n2)/float64(n1+n2))
	return ncp + g.rng.NormFloat64()
}

// sampleR draws an observed r for true effect d via Fisher's z
func (g *BenchmarkGenerator) sampleR(d float64, n int) float64 {
	rho := d / math.Sqrt(d*d+4)
	z := math.Atanh(rho) + g.rng.NormFloat64()/math.Sqrt(float64(n-3))
	return math.Tanh(z)
}

func tSide(t float64, n1, n2 int) scoring.Side {
	return scoring.Side{Statistic: &t, N1: n1, N2: n2}
}

func correlationSide(r float64, n int) scoring.Side {
	return scoring.Side{Statistic: &r, N1: n}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
