package testkit

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alignbench/domain/core"
	"alignbench/domain/run"
)

// MockRunRepository is a testify mock of ports.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, r *run.ScoreRun) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRunRepository) GetRun(ctx context.Context, id core.RunID) (*run.ScoreRun, error) {
	args := m.Called(ctx, id)
	sr, _ := args.Get(0).(*run.ScoreRun)
	return sr, args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]run.Summary, error) {
	args := m.Called(ctx, limit)
	runs, _ := args.Get(0).([]run.Summary)
	return runs, args.Error(1)
}
