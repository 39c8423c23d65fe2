// Package engine runs the full scoring pipeline: per-test posteriors, PAS and
// effect consistency, then rollups per finding, study, domain and benchmark.
// Scoring is pure and deterministic; the same dataset always yields the same
// result.
package engine

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"alignbench/domain/scoring"
	"alignbench/internal/aggregate"
	"alignbench/internal/alignment"
	"alignbench/internal/bayes"
	"alignbench/internal/concordance"
	"alignbench/internal/config"
	"alignbench/internal/consistency"
	"alignbench/internal/effectsize"
	"alignbench/internal/errors"
	"alignbench/internal/logging"
)

// Scorer scores datasets with fixed prior and clamping settings
type Scorer struct {
	calc   *bayes.Calculator
	pas    *alignment.Scorer
	alpha  float64
	logger *zap.Logger
}

// New creates a Scorer from the scoring configuration
func New(cfg config.ScoringConfig) *Scorer {
	alpha := cfg.Alpha
	if !(alpha > 0 && alpha < 1) {
		alpha = 0.05
	}
	return &Scorer{
		calc:   bayes.NewCalculator(cfg.JZSScale, cfg.PriorOdds),
		pas:    alignment.NewScorer(cfg.Epsilon),
		alpha:  alpha,
		logger: logging.New("engine"),
	}
}

// NewDefault creates a Scorer with the default configuration
func NewDefault() *Scorer {
	return New(config.Default().Scoring)
}

// ScoreTest derives every per-test quantity for one record
func (s *Scorer) ScoreTest(rec scoring.TestRecord, weights scoring.WeightTable) scoring.ScoredTest {
	st := scoring.ScoredTest{
		Record: rec,
		Weight: weights.TestWeight(rec.StudyID, rec.FindingID, rec.TestName, rec.Weight),
	}

	st.HumanBF, st.PiHuman = s.posterior(rec, rec.Human)
	st.AgentBF, st.PiAgent = s.posterior(rec, rec.Agent)
	st.PAS = s.pas.Score(st.PiHuman, st.PiAgent)

	st.HumanEffect = effectsize.Standardize(rec.Type, rec.Human, rec.IsIndependent(rec.Human), rec.ObservedSign(rec.Human))
	st.AgentEffect = effectsize.Standardize(rec.Type, rec.Agent, rec.IsIndependent(rec.Agent), rec.ObservedSign(rec.Agent))

	if z := zDiff(st); !math.IsNaN(z) {
		st.ZDiff = scoring.Float(z)
		st.Consistency = scoring.Float(consistency.Consistency(z))
	}

	hSig, hok := s.significant(rec, rec.Human)
	aSig, aok := s.significant(rec, rec.Agent)
	if hok && aok {
		agree := hSig == aSig
		st.SigAgree = &agree
	}

	return st
}

// posterior returns the Bayes factor (nil when not computed) and posterior of
// one side. A precomputed pi wins. Sides with a known direction get a
// three-way posterior so that sign flips count as disagreement.
func (s *Scorer) posterior(rec scoring.TestRecord, side scoring.Side) (*float64, scoring.Probability) {
	if side.Pi != nil {
		return nil, *side.Pi
	}

	logBF, ok := s.calc.LogEvidence(rec.Type, side, rec.IsIndependent(side))
	if !ok {
		s.logger.Debug("missing evidence, side is uncertain",
			zap.String("study_id", rec.StudyID),
			zap.String("finding_id", rec.FindingID),
			zap.String("test_name", rec.TestName),
			zap.String("type", string(rec.Type)))
		return nil, scoring.Uncertain()
	}

	bf := scoring.Float(math.Exp(logBF))
	if sign := rec.ObservedSign(side); sign != 0 {
		return bf, s.calc.Posterior3Way(logBF, sign)
	}
	return bf, scoring.Scalar(s.calc.Posterior(logBF))
}

// zDiff returns the raw z-difference, ±Inf included, or NaN when either
// effect is incomplete
func zDiff(st scoring.ScoredTest) float64 {
	h, a := st.HumanEffect, st.AgentEffect
	if !h.Valid() || !a.Valid() {
		return math.NaN()
	}
	return consistency.ZDiff(*h.D, *h.SE, *a.D, *a.SE)
}

// Score runs the pipeline over a dataset
func (s *Scorer) Score(ds scoring.Dataset) (*scoring.BenchmarkResult, error) {
	return s.ScoreWithSE(ds, nil)
}

// ScoreWithSE runs the pipeline with per-study standard errors of pas_raw
// (from repeat runs or resampling), which feed the inverse-variance
// benchmark mean
func (s *Scorer) ScoreWithSE(ds scoring.Dataset, studySE map[string]float64) (*scoring.BenchmarkResult, error) {
	for i, rec := range ds.Records {
		if rec.StudyID == "" {
			return nil, errors.InvalidGrouping("record %d (%q) has an empty study_id", i, rec.TestName)
		}
		if rec.FindingID == "" {
			return nil, errors.InvalidGrouping("record %d (%q) has an empty finding_id", i, rec.TestName)
		}
	}

	tests := make([]scoring.ScoredTest, len(ds.Records))
	for i, rec := range ds.Records {
		tests[i] = s.ScoreTest(rec, ds.Weights)
	}

	studies := s.scoreStudies(tests, ds.Weights, ds.Domains, studySE)
	result := &scoring.BenchmarkResult{
		NStudies: len(studies),
		Studies:  studies,
		Domains:  s.scoreDomains(studies, ds.Domains),
	}
	s.summarizeBenchmark(result)

	s.logger.Debug("scored benchmark",
		zap.Int("tests", len(tests)),
		zap.Int("studies", len(studies)),
		zap.Int("domains", len(result.Domains)))
	return result, nil
}

func (s *Scorer) scoreStudies(tests []scoring.ScoredTest, weights scoring.WeightTable, domains scoring.DomainMap, studySE map[string]float64) []scoring.StudyResult {
	byStudy := make(map[string]map[string][]scoring.ScoredTest)
	for _, t := range tests {
		findings, ok := byStudy[t.Record.StudyID]
		if !ok {
			findings = make(map[string][]scoring.ScoredTest)
			byStudy[t.Record.StudyID] = findings
		}
		findings[t.Record.FindingID] = append(findings[t.Record.FindingID], t)
	}

	studies := make([]scoring.StudyResult, 0, len(byStudy))
	for _, studyID := range sortedKeys(byStudy) {
		findingTests := byStudy[studyID]
		study := scoring.StudyResult{StudyID: studyID}
		if domain, ok := domains.DomainOf(studyID); ok {
			study.Domain = domain
		}

		for _, findingID := range sortedKeys(findingTests) {
			study.Findings = append(study.Findings, s.scoreFinding(studyID, findingID, findingTests[findingID], weights))
		}

		all := studyTests(study)
		if raw, ok := aggregate.StudyScore(study.Findings); ok {
			study.PASRaw = scoring.Float(raw)
			study.PASNorm = scoring.Float(aggregate.Normalize(raw))
		}
		study.NTests = len(all)
		study.ApplyConsistency(concordance.Evaluate(pairs(all, true), concordance.MinPairs))
		study.PNull = strictP(study.Findings)
		study.SigAgreement = sigAgreement(all)
		if se, ok := studySE[studyID]; ok {
			study.PASSE = scoring.Float(se)
		}

		studies = append(studies, study)
	}
	return studies
}

func (s *Scorer) scoreFinding(studyID, findingID string, tests []scoring.ScoredTest, weights scoring.WeightTable) scoring.FindingResult {
	sort.SliceStable(tests, func(i, j int) bool {
		a, b := tests[i].Record, tests[j].Record
		if a.SubStudyID != b.SubStudyID {
			return a.SubStudyID < b.SubStudyID
		}
		return a.TestName < b.TestName
	})

	var fallback float64
	for _, t := range tests {
		if t.Record.FindingWeight > 0 {
			fallback = t.Record.FindingWeight
			break
		}
	}

	fr := scoring.FindingResult{
		FindingID:   findingID,
		StudyID:     studyID,
		Weight:      weights.FindingWeight(studyID, findingID, fallback),
		NTests:      len(tests),
		Consistency: concordance.Evaluate(pairs(tests, false), concordance.MinFindingPairs),
		Tests:       tests,
	}
	if score, ok := aggregate.FindingScore(tests); ok {
		fr.Score = score
	} else {
		fr.Score = alignment.ChanceLevel
	}

	zs := make([]float64, len(tests))
	for i, t := range tests {
		zs[i] = zDiff(t)
	}
	if p, ok := consistency.FindingPValue(zs); ok {
		fr.PValue = scoring.Float(p)
	}
	return fr
}

func (s *Scorer) scoreDomains(studies []scoring.StudyResult, domains scoring.DomainMap) []scoring.DomainResult {
	byID := make(map[string]*scoring.StudyResult, len(studies))
	for i := range studies {
		byID[studies[i].StudyID] = &studies[i]
	}

	var results []scoring.DomainResult
	for _, name := range domains.Domains() {
		var members []*scoring.StudyResult
		for _, id := range domains.Studies(name) {
			if st, ok := byID[id]; ok {
				members = append(members, st)
			}
		}
		if len(members) == 0 {
			s.logger.Debug("domain has no scored studies", zap.String("domain", name))
			continue
		}

		dr := scoring.DomainResult{Domain: name}
		summarizeStudies(&dr.ScoreSummary, &dr.ECSStudyMean, members)
		for _, m := range members {
			dr.Studies = append(dr.Studies, m.StudyID)
		}
		results = append(results, dr)
	}
	return results
}

func (s *Scorer) summarizeBenchmark(result *scoring.BenchmarkResult) {
	members := make([]*scoring.StudyResult, len(result.Studies))
	values := make([]float64, 0, len(result.Studies))
	ses := make([]*float64, 0, len(result.Studies))
	for i := range result.Studies {
		st := &result.Studies[i]
		members[i] = st
		if st.PASRaw != nil {
			values = append(values, *st.PASRaw)
			ses = append(ses, st.PASSE)
		}
	}

	summarizeStudies(&result.ScoreSummary, &result.ECSStudyMean, members)

	if combined, ok := aggregate.InverseVariance(values, ses); ok {
		result.PASInverseVariance = scoring.Float(combined.Mean)
		result.PASSE = combined.SE
	}
}

// summarizeStudies fills a domain or benchmark summary: unweighted means of
// the member studies' PAS, ECS on all member tests pooled, and the Stouffer
// p-value over every member finding
func summarizeStudies(sum *scoring.ScoreSummary, ecsStudyMean **float64, members []*scoring.StudyResult) {
	var pas, ecs []*float64
	var tests []scoring.ScoredTest
	var findings []scoring.FindingResult
	for _, m := range members {
		pas = append(pas, m.PASRaw)
		ecs = append(ecs, m.ECS)
		tests = append(tests, studyTests(*m)...)
		findings = append(findings, m.Findings...)
	}

	sum.PASRaw = aggregate.DomainMean(pas)
	if sum.PASRaw != nil {
		sum.PASNorm = scoring.Float(aggregate.Normalize(*sum.PASRaw))
	}
	sum.NTests = len(tests)
	sum.ApplyConsistency(concordance.Evaluate(pairs(tests, true), concordance.MinPairs))
	sum.PNull = strictP(findings)
	sum.SigAgreement = sigAgreement(tests)
	*ecsStudyMean = aggregate.DomainMean(ecs)
}

func studyTests(study scoring.StudyResult) []scoring.ScoredTest {
	var out []scoring.ScoredTest
	for _, f := range study.Findings {
		out = append(out, f.Tests...)
	}
	return out
}

// pairs extracts the effect pairs of a grouping; unweighted pairs fall back
// to the default weight
func pairs(tests []scoring.ScoredTest, weighted bool) []concordance.Pair {
	out := make([]concordance.Pair, len(tests))
	for i, t := range tests {
		out[i] = concordance.Pair{Human: t.HumanEffect.D, Agent: t.AgentEffect.D}
		if weighted {
			out[i].Weight = t.Weight
		}
	}
	return out
}

// strictP is the finding-weighted Stouffer combination of finding p-values
func strictP(findings []scoring.FindingResult) *float64 {
	var ps, ws []float64
	for _, f := range findings {
		if f.PValue == nil {
			continue
		}
		ps = append(ps, *f.PValue)
		ws = append(ws, f.Weight)
	}
	if _, p, ok := consistency.Stouffer(ps, ws); ok {
		return scoring.Float(p)
	}
	return nil
}

func sigAgreement(tests []scoring.ScoredTest) *float64 {
	var n, agree int
	for _, t := range tests {
		if t.SigAgree == nil {
			continue
		}
		n++
		if *t.SigAgree {
			agree++
		}
	}
	if n == 0 {
		return nil
	}
	return scoring.Float(float64(agree) / float64(n))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
