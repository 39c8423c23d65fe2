package run

import (
	"encoding/json"
	"fmt"
	"time"

	"alignbench/domain/core"
	"alignbench/domain/scoring"
	"alignbench/internal/config"
)

// CodeVersion is recorded in every run fingerprint
const CodeVersion = "1.0.0"

// ConfigSnapshot is the part of the configuration that changes scores
type ConfigSnapshot struct {
	PriorOdds  float64 `json:"prior_odds"`
	JZSScale   float64 `json:"jzs_scale"`
	Epsilon    float64 `json:"epsilon"`
	Alpha      float64 `json:"alpha"`
	Iterations int     `json:"bootstrap_iterations"`
	Seed       int64   `json:"bootstrap_seed"`
}

// NewConfigSnapshot copies the scoring and bootstrap knobs of cfg
func NewConfigSnapshot(scoringCfg config.ScoringConfig, bootstrap config.BootstrapConfig) ConfigSnapshot {
	return ConfigSnapshot{
		PriorOdds:  scoringCfg.PriorOdds,
		JZSScale:   scoringCfg.JZSScale,
		Epsilon:    scoringCfg.Epsilon,
		Alpha:      scoringCfg.Alpha,
		Iterations: bootstrap.Iterations,
		Seed:       bootstrap.Seed,
	}
}

// Fingerprint identifies the inputs of a run: the same dataset scored under
// the same configuration and code version yields the same fingerprint
type Fingerprint struct {
	DatasetHash core.Hash `json:"dataset_hash"`
	CodeVersion string    `json:"code_version"`
	Fingerprint core.Hash `json:"fingerprint"`
}

// NewFingerprint hashes the dataset document together with the configuration
func NewFingerprint(ds scoring.Dataset, cfg ConfigSnapshot) (Fingerprint, error) {
	doc, err := json.Marshal(ds)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to encode dataset: %w", err)
	}
	datasetHash := core.NewHash(doc)

	data := fmt.Sprintf("dataset:%s|prior:%g|scale:%g|eps:%g|alpha:%g|iter:%d|seed:%d|code:%s",
		datasetHash, cfg.PriorOdds, cfg.JZSScale, cfg.Epsilon, cfg.Alpha, cfg.Iterations, cfg.Seed, CodeVersion)

	return Fingerprint{
		DatasetHash: datasetHash,
		CodeVersion: CodeVersion,
		Fingerprint: core.NewHash([]byte(data)),
	}, nil
}

// ScoreRun is one persisted scoring of a dataset
type ScoreRun struct {
	ID          core.RunID               `json:"id"`
	CreatedAt   time.Time                `json:"created_at"`
	Config      ConfigSnapshot           `json:"config"`
	Fingerprint Fingerprint              `json:"fingerprint"`
	Result      *scoring.BenchmarkResult `json:"result"`
}

// NewScoreRun stamps a result with a fresh id and the current time
func NewScoreRun(ds scoring.Dataset, cfg ConfigSnapshot, result *scoring.BenchmarkResult) (*ScoreRun, error) {
	fp, err := NewFingerprint(ds, cfg)
	if err != nil {
		return nil, err
	}
	return &ScoreRun{
		ID:          core.NewRunID(),
		CreatedAt:   time.Now().UTC(),
		Config:      cfg,
		Fingerprint: fp,
		Result:      result,
	}, nil
}

// Validate checks that the run can be stored
func (r *ScoreRun) Validate() error {
	if core.ID(r.ID).IsEmpty() {
		return fmt.Errorf("run id cannot be empty")
	}
	if r.Result == nil {
		return fmt.Errorf("run %s has no result", r.ID)
	}
	if r.Fingerprint.Fingerprint.IsEmpty() {
		return fmt.Errorf("run %s has no fingerprint", r.ID)
	}
	return nil
}

// Summary is the listing form of a run
type Summary struct {
	ID          core.RunID `json:"id" db:"id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	Fingerprint core.Hash  `json:"fingerprint" db:"fingerprint"`
	NStudies    int        `json:"n_studies" db:"n_studies"`
	NTests      int        `json:"n_tests" db:"n_tests"`
	PASRaw      *float64   `json:"pas_raw" db:"pas_raw"`
	ECS         *float64   `json:"ecs" db:"ecs"`
}

// Summarize builds the listing form of r
func (r *ScoreRun) Summarize() Summary {
	s := Summary{ID: r.ID, CreatedAt: r.CreatedAt, Fingerprint: r.Fingerprint.Fingerprint}
	if r.Result != nil {
		s.NStudies = r.Result.NStudies
		s.NTests = r.Result.NTests
		s.PASRaw = r.Result.PASRaw
		s.ECS = r.Result.ECS
	}
	return s
}
