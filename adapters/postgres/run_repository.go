package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"alignbench/domain/core"
	"alignbench/domain/run"
	"alignbench/internal/errors"
	"alignbench/internal/logging"
	"alignbench/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewRunRepository creates a new score-run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db, logger: logging.New("postgres")}
}

// runRow mirrors a score_runs row
type runRow struct {
	ID          string    `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	Fingerprint string    `db:"fingerprint"`
	DatasetHash string    `db:"dataset_hash"`
	CodeVersion string    `db:"code_version"`
	Config      []byte    `db:"config"`
	Result      []byte    `db:"result"`
	NStudies    int       `db:"n_studies"`
	NTests      int       `db:"n_tests"`
	PASRaw      *float64  `db:"pas_raw"`
	ECS         *float64  `db:"ecs"`
}

// SaveRun inserts the run and its per-study rows in one transaction
func (r *runRepository) SaveRun(ctx context.Context, sr *run.ScoreRun) error {
	if err := sr.Validate(); err != nil {
		return errors.Wrap(errors.ValidationError(err.Error()), "invalid score run")
	}

	configJSON, err := json.Marshal(sr.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	resultJSON, err := json.Marshal(sr.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO score_runs (id, created_at, fingerprint, dataset_hash, code_version, config, result, n_studies, n_tests, pas_raw, ecs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, sr.ID.String(), sr.CreatedAt, sr.Fingerprint.Fingerprint.String(), sr.Fingerprint.DatasetHash.String(),
		sr.Fingerprint.CodeVersion, configJSON, resultJSON, sr.Result.NStudies, sr.Result.NTests,
		sr.Result.PASRaw, sr.Result.ECS)
	if err != nil {
		return errors.DatabaseError("failed to insert score run", err)
	}

	for _, st := range sr.Result.Studies {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO study_scores (run_id, study_id, domain, pas_raw, pas_norm, pas_se, ecs, missing_rate, n_tests)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, sr.ID.String(), st.StudyID, st.Domain, st.PASRaw, st.PASNorm, st.PASSE, st.ECS, st.MissingRate, st.NTests)
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert study score %s", st.StudyID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit score run", err)
	}

	r.logger.Info("score run saved", zap.String("run_id", sr.ID.String()),
		zap.String("fingerprint", sr.Fingerprint.Fingerprint.Short()), zap.Int("studies", len(sr.Result.Studies)))
	return nil
}

// GetRun retrieves a run by id
func (r *runRepository) GetRun(ctx context.Context, id core.RunID) (*run.ScoreRun, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, created_at, fingerprint, dataset_hash, code_version, config, result, n_studies, n_tests, pas_raw, ecs
		FROM score_runs WHERE id = $1
	`, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound(fmt.Sprintf("score run %s", id))
		}
		return nil, errors.DatabaseError("failed to get score run", err)
	}
	return row.toRun()
}

// ListRuns returns run summaries, newest first
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	query := `
		SELECT id, created_at, fingerprint, n_studies, n_tests, pas_raw, ecs
		FROM score_runs
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	summaries := []run.Summary{}
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list score runs", err)
	}
	return summaries, nil
}

func (row runRow) toRun() (*run.ScoreRun, error) {
	sr := &run.ScoreRun{
		ID:        core.RunID(row.ID),
		CreatedAt: row.CreatedAt,
		Fingerprint: run.Fingerprint{
			DatasetHash: core.Hash(row.DatasetHash),
			CodeVersion: row.CodeVersion,
			Fingerprint: core.Hash(row.Fingerprint),
		},
	}
	if err := json.Unmarshal(row.Config, &sr.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := json.Unmarshal(row.Result, &sr.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return sr, nil
}
