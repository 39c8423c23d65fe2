package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alignbench/domain/core"
	"alignbench/domain/run"
	"alignbench/internal/config"
	"alignbench/internal/engine"
	"alignbench/internal/errors"
	"alignbench/internal/migration"
	"alignbench/internal/testkit"
)

// openTestDB connects to TEST_DATABASE_URL and migrates it, or skips
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestRunRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewRunRepository(db)
	ctx := context.Background()

	ds, err := testkit.NewBenchmarkGenerator(testkit.DefaultBenchmarkConfig()).Generate()
	require.NoError(t, err)
	result, err := engine.NewDefault().Score(ds)
	require.NoError(t, err)

	cfg := config.Default()
	sr, err := run.NewScoreRun(ds, run.NewConfigSnapshot(cfg.Scoring, cfg.Bootstrap), result)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRun(ctx, sr))

	got, err := repo.GetRun(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, sr.Fingerprint, got.Fingerprint)
	assert.Equal(t, sr.Config, got.Config)
	assert.Equal(t, len(result.Studies), len(got.Result.Studies))
	assert.InDelta(t, *result.PASRaw, *got.Result.PASRaw, 1e-12)

	var studyRows int
	require.NoError(t, db.GetContext(ctx, &studyRows, `SELECT COUNT(*) FROM study_scores WHERE run_id = $1`, sr.ID.String()))
	assert.Equal(t, len(result.Studies), studyRows)

	runs, err := repo.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestRunRepository_NotFound(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	_, err := repo.GetRun(context.Background(), core.NewRunID())
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}
