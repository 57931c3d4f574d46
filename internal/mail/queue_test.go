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

	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/runner"
)

func newTestQueueController(r runner.Runner) *QueueController {
	logger := zerolog.Nop()
	inspector := NewQueueInspector(logger, r, "postfix", time.Second)
	return NewQueueController(logger, r, inspector, time.Second, 5*time.Second)
}

func expectListing(r *mockRunner, listing string) {
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-p"}).
		Return(runner.Result{ExitCode: 0, Stdout: listing}, nil)
}

// ---------- Hold ----------

func TestQueueController_Hold_Success(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postsuper", []string{"-h", "P6Q7R8S9T0"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).Hold(context.Background(), "P6Q7R8S9T0")
	assert.True(t, result.Success)
	assert.Empty(t, result.Failure)
	r.AssertExpectations(t)
}

func TestQueueController_Hold_AlreadyHeldIsNoOp(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	// F6G7H8I9J0 is already on hold; no postsuper call is expected.
	result := newTestQueueController(r).Hold(context.Background(), "F6G7H8I9J0")
	assert.True(t, result.Success)
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, "postsuper", mock.Anything)
	r.AssertExpectations(t)
}

func TestQueueController_Hold_UnknownMessage(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	result := newTestQueueController(r).Hold(context.Background(), "ZZZZZZZZZZ")
	assert.False(t, result.Success)
	assert.Equal(t, model.FailureValidation, result.Failure)
}

func TestQueueController_Hold_InvalidID(t *testing.T) {
	r := &mockRunner{}

	result := newTestQueueController(r).Hold(context.Background(), "../etc/passwd")
	assert.False(t, result.Success)
	assert.Equal(t, model.FailureValidation, result.Failure)
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQueueController_Hold_ListingUnreachable(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-p"}).
		Return(runner.Result{}, errors.New("tool timed out"))

	result := newTestQueueController(r).Hold(context.Background(), "P6Q7R8S9T0")
	assert.False(t, result.Success)
	assert.Equal(t, model.FailureTransport, result.Failure)
}

// ---------- Release ----------

func TestQueueController_Release_Success(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postsuper", []string{"-H", "F6G7H8I9J0"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).Release(context.Background(), "F6G7H8I9J0")
	assert.True(t, result.Success)
	r.AssertExpectations(t)
}

func TestQueueController_Release_NotHeld(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	result := newTestQueueController(r).Release(context.Background(), "P6Q7R8S9T0")
	assert.False(t, result.Success)
	assert.Equal(t, model.FailureValidation, result.Failure)
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, "postsuper", mock.Anything)
}

// ---------- Delete ----------

func TestQueueController_Delete_Success(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postsuper", []string{"-d", "A1B2C3D4E5"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).Delete(context.Background(), "A1B2C3D4E5")
	assert.True(t, result.Success)
	r.AssertExpectations(t)
}

func TestQueueController_Delete_ToolFailure(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postsuper", []string{"-d", "A1B2C3D4E5"}).
		Return(runner.Result{ExitCode: 1, Stderr: "fatal: usage"}, nil)

	result := newTestQueueController(r).Delete(context.Background(), "A1B2C3D4E5")
	assert.False(t, result.Success)
	assert.Equal(t, model.FailureTransport, result.Failure)
	assert.Contains(t, result.Message, "exited 1")
}

// ---------- Flush ----------

func TestQueueController_FlushDeferred_ReportsDeferredCount(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-f"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).FlushDeferred(context.Background())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "1 deferred")
	r.AssertExpectations(t)
}

func TestQueueController_FlushDeferred_EmptyQueue(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, "Mail queue is empty")
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-f"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).FlushDeferred(context.Background())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "0 deferred")
	r.AssertExpectations(t)
}

func TestQueueController_FlushHold_IssuesSameFlush(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-f"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).FlushHold(context.Background())
	assert.True(t, result.Success)
	r.AssertExpectations(t)
}

func TestQueueController_Flush_ToolError(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)
	r.On("Run", mock.Anything, mock.Anything, "postqueue", []string{"-f"}).
		Return(runner.Result{}, errors.New("exec: postqueue not found"))

	result := newTestQueueController(r).FlushDeferred(context.Background())
	assert.False(t, result.Success)
	assert.Equal(t, model.FailureTransport, result.Failure)
}

// ---------- CleanupExpired ----------

func TestQueueController_CleanupExpired_PurgesNothing(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	result := newTestQueueController(r).CleanupExpired(context.Background())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "0 purged")
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, "postsuper", mock.Anything)
}

// ---------- RebuildIndex ----------

func TestQueueController_RebuildIndex_Success(t *testing.T) {
	r := &mockRunner{}
	r.On("Run", mock.Anything, 5*time.Second, "postsuper", []string{"-s"}).
		Return(runner.Result{ExitCode: 0}, nil)

	result := newTestQueueController(r).RebuildIndex(context.Background())
	assert.True(t, result.Success)
	r.AssertExpectations(t)
}

// ---------- CheckIntegrity ----------

func TestQueueController_CheckIntegrity_ReadOnly(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, sampleListing)

	result := newTestQueueController(r).CheckIntegrity(context.Background())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "4 messages")
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, "postsuper", mock.Anything)
}

func TestQueueController_CheckIntegrity_EmptyQueue(t *testing.T) {
	r := &mockRunner{}
	expectListing(r, "Mail queue is empty")

	result := newTestQueueController(r).CheckIntegrity(context.Background())
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "queue is empty")
}
