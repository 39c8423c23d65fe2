package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunner_StepsInOrder(t *testing.T) {
	r := NewRunner()
	assert.Equal(t, "1.0.0", r.Version())
	assert.Equal(t, []string{"score_runs table", "study_scores table", "indexes"}, r.Steps())
}

func TestRunner_StepsAreIdempotent(t *testing.T) {
	for _, s := range NewRunner().steps {
		assert.Contains(t, s.sql, "IF NOT EXISTS", s.name)
	}
}
