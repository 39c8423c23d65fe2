package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alignbench/internal/config"
)

func TestNew_WithoutDatabase(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	require.NoError(t, c.Connect(context.Background()))

	assert.Nil(t, c.DB)
	assert.Nil(t, c.RunRepo)
	require.NotNil(t, c.Scoring)
	assert.False(t, c.Scoring.PersistenceEnabled())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	c, err := New(config.Default())
	require.NoError(t, err)
	assert.Error(t, c.InitWithDatabase(context.Background(), nil))
}
