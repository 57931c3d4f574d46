package mail

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/mailpanel/internal/runner"
)

// mockRunner implements runner.Runner for testing.
type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (runner.Result, error) {
	called := m.Called(ctx, timeout, name, args)
	return called.Get(0).(runner.Result), called.Error(1)
}
