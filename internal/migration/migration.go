package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"alignbench/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []step
}

type step struct {
	name string
	sql  string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		steps: []step{
			{name: "score_runs table", sql: createScoreRunsTable},
			{name: "study_scores table", sql: createStudyScoresTable},
			{name: "indexes", sql: createIndexes},
		},
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps returns the names of the migration steps in execution order
func (r *MigrationRunner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrapf(errors.DatabaseError("migration failed", err), "failed to create %s", s.name)
		}
	}
	return nil
}

const createScoreRunsTable = `
	CREATE TABLE IF NOT EXISTS score_runs (
		id UUID PRIMARY KEY,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		fingerprint VARCHAR(64) NOT NULL,
		dataset_hash VARCHAR(64) NOT NULL,
		code_version VARCHAR(32) NOT NULL,
		config JSONB NOT NULL,
		result JSONB NOT NULL,
		n_studies INTEGER NOT NULL DEFAULT 0,
		n_tests INTEGER NOT NULL DEFAULT 0,
		pas_raw DOUBLE PRECISION,
		ecs DOUBLE PRECISION
	)
`

const createStudyScoresTable = `
	CREATE TABLE IF NOT EXISTS study_scores (
		run_id UUID NOT NULL REFERENCES score_runs(id) ON DELETE CASCADE,
		study_id VARCHAR(255) NOT NULL,
		domain VARCHAR(255) NOT NULL DEFAULT '',
		pas_raw DOUBLE PRECISION,
		pas_norm DOUBLE PRECISION,
		pas_se DOUBLE PRECISION,
		ecs DOUBLE PRECISION,
		missing_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		n_tests INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, study_id)
	)
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_score_runs_created_at ON score_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_score_runs_fingerprint ON score_runs(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_study_scores_study ON study_scores(study_id);
	CREATE INDEX IF NOT EXISTS idx_study_scores_domain ON study_scores(domain)
`
