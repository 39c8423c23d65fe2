package scoring

import "math"

// Effect is a d-equivalent effect size with its standard error. D is nil when
// the side lacked the inputs needed to standardize it.
type Effect struct {
	D  *float64 `json:"d"`
	SE *float64 `json:"se"`
}

// Valid reports whether both the effect and its standard error are finite
func (e Effect) Valid() bool {
	return e.D != nil && e.SE != nil && !math.IsNaN(*e.D) && !math.IsInf(*e.D, 0) && *e.SE >= 0
}

// ScoredTest is a TestRecord with every per-test quantity derived
type ScoredTest struct {
	Record      TestRecord  `json:"record"`
	Weight      float64     `json:"weight"`
	HumanBF     *float64    `json:"human_bf"`
	AgentBF     *float64    `json:"agent_bf"`
	PiHuman     Probability `json:"pi_human"`
	PiAgent     Probability `json:"pi_agent"`
	HumanEffect Effect      `json:"human_effect"`
	AgentEffect Effect      `json:"agent_effect"`
	PAS         float64     `json:"pas"`
	ZDiff       *float64    `json:"z_diff"`
	Consistency *float64    `json:"consistency"`
	SigAgree    *bool       `json:"sig_agree,omitempty"`
}

// Caricature is the fit agent_d = A·human_d + B
type Caricature struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// GroupConsistency is the ECS view of one grouping of tests
type GroupConsistency struct {
	ECS         *float64    `json:"ecs"`
	Pearson     *float64    `json:"ecs_pearson"`
	Caricature  *Caricature `json:"caricature"`
	NValid      int         `json:"n_valid"`
	NTotal      int         `json:"n_total"`
	MissingRate float64     `json:"missing_rate"`
}

// ScoreSummary is the score object emitted at every grouping level
type ScoreSummary struct {
	PASRaw       *float64    `json:"pas_raw"`
	PASNorm      *float64    `json:"pas_norm"`
	NTests       int         `json:"n_tests"`
	ECS          *float64    `json:"ecs"`
	ECSPearson   *float64    `json:"ecs_pearson"`
	Caricature   *Caricature `json:"caricature"`
	MissingRate  float64     `json:"missing_rate"`
	PNull        *float64    `json:"p_null"`
	SigAgreement *float64    `json:"sig_agreement"`
}

// ApplyConsistency copies an ECS grouping into the summary
func (s *ScoreSummary) ApplyConsistency(gc GroupConsistency) {
	s.ECS = gc.ECS
	s.ECSPearson = gc.Pearson
	s.Caricature = gc.Caricature
	s.MissingRate = gc.MissingRate
}

// FindingResult is the weighted rollup of the tests sharing a finding id
type FindingResult struct {
	FindingID   string           `json:"finding_id"`
	StudyID     string           `json:"study_id"`
	Score       float64          `json:"finding_score"`
	Weight      float64          `json:"finding_weight"`
	NTests      int              `json:"n_tests"`
	PValue      *float64         `json:"p_value"`
	Consistency GroupConsistency `json:"consistency"`
	Tests       []ScoredTest     `json:"tests"`
}

// StudyResult is the weighted rollup of a study's findings
type StudyResult struct {
	StudyID string `json:"study_id"`
	Domain  string `json:"domain,omitempty"`
	ScoreSummary
	PASSE    *float64        `json:"pas_se"`
	Findings []FindingResult `json:"findings"`
}

// DomainResult aggregates the studies of one domain
type DomainResult struct {
	Domain string `json:"domain"`
	ScoreSummary
	ECSStudyMean *float64 `json:"ecs_study_mean"`
	Studies      []string `json:"studies"`
}

// BenchmarkResult is the corpus-level summary. The embedded PASRaw is the
// unweighted mean of study pas_raw; PASInverseVariance (pas_ivw) is the
// cross-study inverse-variance aggregate of the same values, with PASSE its
// standard error. Studies without a standard error take the largest one seen.
type BenchmarkResult struct {
	ScoreSummary
	PASInverseVariance *float64       `json:"pas_ivw"`
	PASSE              *float64       `json:"pas_se"`
	ECSStudyMean       *float64       `json:"ecs_study_mean"`
	NStudies           int            `json:"n_studies"`
	Studies            []StudyResult  `json:"studies"`
	Domains            []DomainResult `json:"domains"`
}

// Study looks up a study result by id
func (b *BenchmarkResult) Study(id string) (*StudyResult, bool) {
	for i := range b.Studies {
		if b.Studies[i].StudyID == id {
			return &b.Studies[i], true
		}
	}
	return nil, false
}

// Domain looks up a domain result by name
func (b *BenchmarkResult) Domain(name string) (*DomainResult, bool) {
	for i := range b.Domains {
		if b.Domains[i].Domain == name {
			return &b.Domains[i], true
		}
	}
	return nil, false
}
