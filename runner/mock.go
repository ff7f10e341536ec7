package runner

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner mocks the CommandRunner interface.
type MockRunner struct {
	mock.Mock
}

// Run mocks the Run method. Variadic args are matched as a single []string.
func (m *MockRunner) Run(ctx context.Context, dir string, extraEnv []string, name string, args ...string) ([]byte, int, error) {
	callArgs := m.Called(ctx, dir, extraEnv, name, args)
	return callArgs.Get(0).([]byte), callArgs.Int(1), callArgs.Error(2)
}
