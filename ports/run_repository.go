package ports

import (
	"context"

	"alignbench/domain/core"
	"alignbench/domain/run"
)

// RunRepository defines the interface for persisted scoring runs
type RunRepository interface {
	// SaveRun stores a run and one row per scored study
	SaveRun(ctx context.Context, r *run.ScoreRun) error

	// GetRun retrieves a run by id
	GetRun(ctx context.Context, id core.RunID) (*run.ScoreRun, error)

	// ListRuns returns run summaries, newest first, optionally limited
	ListRuns(ctx context.Context, limit int) ([]run.Summary, error)
}
