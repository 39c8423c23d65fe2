package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alignbench/domain/core"
	"alignbench/domain/run"
	"alignbench/domain/scoring"
	"alignbench/internal/config"
	"alignbench/internal/engine"
	"alignbench/internal/errors"
	"alignbench/internal/logging"
	"alignbench/internal/resample"
	"alignbench/ports"
)

// ScoringService scores datasets, optionally with bootstrap standard errors,
// and persists runs when a repository is configured
type ScoringService struct {
	scoring   config.ScoringConfig
	bootstrap config.BootstrapConfig
	scorer    *engine.Scorer
	runRepo   ports.RunRepository
	logger    *zap.Logger
}

// NewScoringService creates a scoring service. runRepo may be nil, in which
// case runs cannot be persisted or looked up.
func NewScoringService(cfg *config.Config, runRepo ports.RunRepository) *ScoringService {
	return &ScoringService{
		scoring:   cfg.Scoring,
		bootstrap: cfg.Bootstrap,
		scorer:    engine.New(cfg.Scoring),
		runRepo:   runRepo,
		logger:    logging.New("app"),
	}
}

// PersistenceEnabled reports whether runs can be saved
func (s *ScoringService) PersistenceEnabled() bool {
	return s.runRepo != nil
}

// Score runs the engine over ds and wraps the result in a ScoreRun. With
// persist set the run is saved before returning.
func (s *ScoringService) Score(ctx context.Context, ds scoring.Dataset, persist bool) (*run.ScoreRun, error) {
	if persist && s.runRepo == nil {
		return nil, errors.ConfigInvalid("persistence requested but DATABASE_URL is not set")
	}

	startTime := time.Now()
	var (
		result *scoring.BenchmarkResult
		err    error
	)
	if s.bootstrap.Iterations > 0 {
		result, err = resample.Benchmark(ctx, s.scorer, ds, resample.Options{
			Iterations: s.bootstrap.Iterations,
			Seed:       s.bootstrap.Seed,
			Workers:    s.bootstrap.Workers,
		})
	} else {
		result, err = s.scorer.Score(ds)
	}
	if err != nil {
		return nil, errors.Wrap(err, "scoring failed")
	}

	sr, err := run.NewScoreRun(ds, run.NewConfigSnapshot(s.scoring, s.bootstrap), result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build score run")
	}

	s.logger.Info("dataset scored",
		zap.String("run_id", sr.ID.String()),
		zap.Int("tests", result.NTests),
		zap.Int("studies", result.NStudies),
		zap.Bool("bootstrap", s.bootstrap.Iterations > 0),
		zap.Duration("elapsed", time.Since(startTime)))

	if persist {
		if err := s.runRepo.SaveRun(ctx, sr); err != nil {
			return nil, errors.Wrap(err, "failed to persist score run")
		}
	}
	return sr, nil
}

// GetRun looks up a persisted run
func (s *ScoringService) GetRun(ctx context.Context, id core.RunID) (*run.ScoreRun, error) {
	if s.runRepo == nil {
		return nil, errors.ConfigInvalid("persistence is disabled")
	}
	return s.runRepo.GetRun(ctx, id)
}

// ListRuns lists persisted runs, newest first
func (s *ScoringService) ListRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	if s.runRepo == nil {
		return nil, errors.ConfigInvalid("persistence is disabled")
	}
	return s.runRepo.ListRuns(ctx, limit)
}
