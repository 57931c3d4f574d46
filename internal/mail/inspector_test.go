package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/mailpanel/internal/runner"
)

func newTestInspector(r runner.Runner) *QueueInspector {
	return NewQueueInspector(zerolog.Nop(), r, "postfix", time.Second)
}

func TestQueueInspector_Status_RunningWithPendingCount(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything, "systemctl", []string{"is-active", "postfix"}).
		Return(runner.Result{ExitCode: 0, Stdout: "active\n"}, nil)
	expectListing(r, sampleListing)

	status := newTestInspector(r).Status(context.Background())
	assert.Equal(t, "running", status.State)
	assert.Equal(t, 4, status.PendingCount)
}

func TestQueueInspector_Status_DegradesToUnknown(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything, "systemctl", []string{"is-active", "postfix"}).
		Return(runner.Result{}, errors.New("tool timed out"))

	status := newTestInspector(r).Status(context.Background())
	assert.Equal(t, "unknown", status.State)
	assert.Zero(t, status.PendingCount)
}

func TestQueueInspector_Status_StoppedSkipsListing(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything, "systemctl", []string{"is-active", "postfix"}).
		Return(runner.Result{ExitCode: 3, Stdout: "inactive\n"}, nil)

	status := newTestInspector(r).Status(context.Background())
	assert.Equal(t, "stopped", status.State)
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, "postqueue", mock.Anything)
}

func TestQueueInspector_QueueInfo(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	info, err := newTestInspector(r).QueueInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, info.Count)
	assert.Equal(t, sampleListing, info.Listing)
}

func TestQueueInspector_QueueInfo_ToolError(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-p"}).
		Return(runner.Result{ExitCode: 69, Stderr: "postqueue: fatal: Queue report unavailable"}, nil)

	_, err := newTestInspector(r).QueueInfo(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited 69")
}

func TestQueueInspector_DetailedQueueInfo_Filtered(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	details, err := newTestInspector(r).DetailedQueueInfo(context.Background(), "hold", 0)
	require.NoError(t, err)
	require.Len(t, details.Messages, 1)
	assert.Equal(t, "F6G7H8I9J0", details.Messages[0].ID)
}
