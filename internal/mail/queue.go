package mail

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/metrics"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/runner"
)

// Postfix queue ids: short format is uppercase hex, long format is mixed-case
// base-62. Both are covered; anything else is rejected before reaching a tool.
var queueIDRegex = regexp.MustCompile(`^[A-Za-z0-9]{5,20}$`)

// QueueController executes message- and queue-level state transitions via
// postsuper and postqueue, using the QueueInspector for read paths.
type QueueController struct {
	logger      zerolog.Logger
	runner      runner.Runner
	inspector   *QueueInspector
	timeout     time.Duration
	longTimeout time.Duration
}

func NewQueueController(logger zerolog.Logger, r runner.Runner, inspector *QueueInspector, timeout, longTimeout time.Duration) *QueueController {
	return &QueueController{
		logger:      logger.With().Str("component", "queue-controller").Logger(),
		runner:      r,
		inspector:   inspector,
		timeout:     timeout,
		longTimeout: longTimeout,
	}
}

// findMessage locates a message in the current queue listing. The second
// return value distinguishes "not found" from a transport failure.
func (c *QueueController) findMessage(ctx context.Context, id string) (*QueueMessage, model.OpResult) {
	listing, err := c.inspector.listing(ctx)
	if err != nil {
		return nil, model.TransportFailure(err.Error())
	}
	for _, m := range parseQueueListing(listing) {
		if m.ID == id {
			return &m, model.OpResult{Success: true}
		}
	}
	return nil, model.ValidationFailure(fmt.Sprintf("message %s not found in queue", id))
}

// Hold places a message on hold. Holding an already-held message is a no-op
// success.
func (c *QueueController) Hold(ctx context.Context, id string) model.OpResult {
	result := c.transition(ctx, id, StateHold)
	metrics.QueueOperations.WithLabelValues("hold", metrics.Outcome(result.Success)).Inc()
	return result
}

// Release moves a held message back to the active queue. The message must be
// on hold.
func (c *QueueController) Release(ctx context.Context, id string) model.OpResult {
	result := c.transition(ctx, id, StateActive)
	metrics.QueueOperations.WithLabelValues("release", metrics.Outcome(result.Success)).Inc()
	return result
}

// Delete removes a message from the queue. Removal is terminal.
func (c *QueueController) Delete(ctx context.Context, id string) model.OpResult {
	result := c.transition(ctx, id, StateRemoved)
	metrics.QueueOperations.WithLabelValues("delete", metrics.Outcome(result.Success)).Inc()
	return result
}

func (c *QueueController) transition(ctx context.Context, id string, target QueueState) model.OpResult {
	if !queueIDRegex.MatchString(id) {
		return model.ValidationFailure(fmt.Sprintf("invalid queue id %q", id))
	}

	msg, lookup := c.findMessage(ctx, id)
	if msg == nil {
		return lookup
	}

	switch target {
	case StateHold:
		if msg.State == StateHold {
			return model.OK(fmt.Sprintf("message %s is already on hold", id))
		}
		return c.postsuper(ctx, fmt.Sprintf("message %s placed on hold", id), "-h", id)
	case StateActive:
		if msg.State != StateHold {
			return model.ValidationFailure(fmt.Sprintf("message %s is not on hold", id))
		}
		return c.postsuper(ctx, fmt.Sprintf("message %s released from hold", id), "-H", id)
	case StateRemoved:
		return c.postsuper(ctx, fmt.Sprintf("message %s deleted from queue", id), "-d", id)
	default:
		return model.ValidationFailure(fmt.Sprintf("unsupported transition to %s", target))
	}
}

// FlushDeferred requests a redelivery attempt for all deferred messages.
// Success means the request was accepted, not that everything was delivered.
func (c *QueueController) FlushDeferred(ctx context.Context) model.OpResult {
	result := c.flush(ctx)
	metrics.QueueOperations.WithLabelValues("flush-deferred", metrics.Outcome(result.Success)).Inc()
	return result
}

// FlushHold issues the same flush request as FlushDeferred. The transport
// agent's flush covers the deferred set; held messages stay held until
// released. Kept identical to the established behavior.
func (c *QueueController) FlushHold(ctx context.Context) model.OpResult {
	result := c.flush(ctx)
	metrics.QueueOperations.WithLabelValues("flush-hold", metrics.Outcome(result.Success)).Inc()
	return result
}

func (c *QueueController) flush(ctx context.Context) model.OpResult {
	deferred := 0
	if listing, err := c.inspector.listing(ctx); err == nil {
		for _, m := range parseQueueListing(listing) {
			if m.State == StateDeferred {
				deferred++
			}
		}
	}

	res, err := c.runner.Run(ctx, c.timeout, "postqueue", "-f")
	if err != nil {
		return model.TransportFailure(err.Error())
	}
	if res.ExitCode != 0 {
		return model.TransportFailure(fmt.Sprintf("postqueue -f exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	return model.OK(fmt.Sprintf("redelivery requested for %d deferred messages", deferred))
}

// CleanupExpired reports the size of the deferred set. No age-based expiry
// policy is configured, so nothing is purged; the deferred set is surfaced so
// an operator can act on it.
func (c *QueueController) CleanupExpired(ctx context.Context) model.OpResult {
	listing, err := c.inspector.listing(ctx)
	if err != nil {
		result := model.TransportFailure(err.Error())
		metrics.QueueOperations.WithLabelValues("cleanup-expired", metrics.Outcome(false)).Inc()
		return result
	}

	deferred := 0
	for _, m := range parseQueueListing(listing) {
		if m.State == StateDeferred {
			deferred++
		}
	}

	metrics.QueueOperations.WithLabelValues("cleanup-expired", metrics.Outcome(true)).Inc()
	return model.OK(fmt.Sprintf("%d deferred messages present; no expiry policy configured, 0 purged", deferred))
}

// RebuildIndex reconstructs the on-disk queue structure. Long-running;
// bounded by the long timeout rather than the per-tool default.
func (c *QueueController) RebuildIndex(ctx context.Context) model.OpResult {
	c.logger.Info().Msg("rebuilding queue structure")

	res, err := c.runner.Run(ctx, c.longTimeout, "postsuper", "-s")
	var result model.OpResult
	switch {
	case err != nil:
		result = model.TransportFailure(err.Error())
	case res.ExitCode != 0:
		result = model.TransportFailure(fmt.Sprintf("postsuper -s exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr)))
	default:
		result = model.OK("queue structure rebuilt")
	}
	metrics.QueueOperations.WithLabelValues("rebuild-index", metrics.Outcome(result.Success)).Inc()
	return result
}

// CheckIntegrity validates that the queue listing is readable and parseable.
// Read-only: it never mutates queue state.
func (c *QueueController) CheckIntegrity(ctx context.Context) model.OpResult {
	listing, err := c.inspector.listing(ctx)
	if err != nil {
		result := model.TransportFailure(err.Error())
		metrics.QueueOperations.WithLabelValues("check-integrity", metrics.Outcome(false)).Inc()
		return result
	}

	messages := parseQueueListing(listing)
	stats := aggregateByState(messages)

	parts := make([]string, 0, len(stats))
	for _, state := range []QueueState{StateIncoming, StateActive, StateDeferred, StateHold} {
		if s, ok := stats[state]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", state, s.Count))
		}
	}
	summary := strings.Join(parts, " ")
	if summary == "" {
		summary = "queue is empty"
	}

	metrics.QueueOperations.WithLabelValues("check-integrity", metrics.Outcome(true)).Inc()
	return model.OK(fmt.Sprintf("queue readable, %d messages (%s)", len(messages), summary))
}

func (c *QueueController) postsuper(ctx context.Context, successMessage string, args ...string) model.OpResult {
	res, err := c.runner.Run(ctx, c.timeout, "postsuper", args...)
	if err != nil {
		return model.TransportFailure(err.Error())
	}
	if res.ExitCode != 0 {
		return model.TransportFailure(fmt.Sprintf("postsuper %s exited %d: %s", args[0], res.ExitCode, strings.TrimSpace(res.Stderr)))
	}
	return model.OK(successMessage)
}
