package config

import (
	"testing"

	"alignbench/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Scoring.PriorOdds)
	assert.InDelta(t, 0.70710678, cfg.Scoring.JZSScale, 1e-8)
	assert.Equal(t, 0.001, cfg.Scoring.Epsilon)
	assert.Equal(t, 0, cfg.Bootstrap.Iterations)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ALIGN_PRIOR_ODDS", "0.5")
	t.Setenv("ALIGN_BOOTSTRAP_ITERATIONS", "200")
	t.Setenv("ALIGN_BOOTSTRAP_SEED", "7")
	t.Setenv("DATABASE_URL", "postgres://localhost/align")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("ALIGN_WORKERS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Scoring.PriorOdds)
	assert.Equal(t, 200, cfg.Bootstrap.Iterations)
	assert.Equal(t, int64(7), cfg.Bootstrap.Seed)
	assert.Equal(t, 4, cfg.Bootstrap.Workers, "unparsable values keep the default")
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_RejectsInvalidRanges(t *testing.T) {
	tests := map[string]string{
		"ALIGN_PRIOR_ODDS": "0",
		"ALIGN_EPSILON":    "0.6",
		"ALIGN_JZS_SCALE":  "-1",
		"ALIGN_ALPHA":      "1",
		"ALIGN_WORKERS":    "0",
		"LOG_FORMAT":       "xml",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
