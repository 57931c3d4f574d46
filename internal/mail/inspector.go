package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/runner"
)

// QueueInfo is a coarse queue summary: total message count plus the raw
// listing text as produced by the queue tool.
type QueueInfo struct {
	Count   int    `json:"count"`
	Listing string `json:"listing"`
}

// QueueInspector reads the transport agent's queue through postqueue.
type QueueInspector struct {
	logger  zerolog.Logger
	runner  runner.Runner
	unit    string
	timeout time.Duration
}

func NewQueueInspector(logger zerolog.Logger, r runner.Runner, unit string, timeout time.Duration) *QueueInspector {
	return &QueueInspector{
		logger:  logger.With().Str("component", "queue-inspector").Logger(),
		runner:  r,
		unit:    unit,
		timeout: timeout,
	}
}

// listing fetches the raw queue listing. A non-zero postqueue exit is an error.
func (i *QueueInspector) listing(ctx context.Context) (string, error) {
	res, err := i.runner.Run(ctx, i.timeout, "postqueue", "-p")
	if err != nil {
		return "", fmt.Errorf("postqueue -p: %w", err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("postqueue -p exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// Status reports whether the transport agent is running and an approximate
// pending-message count. Any query failure degrades to "unknown" rather than
// an error.
func (i *QueueInspector) Status(ctx context.Context) ServiceStatus {
	res, err := i.runner.Run(ctx, i.timeout, "systemctl", "is-active", i.unit)
	if err != nil {
		i.logger.Warn().Err(err).Msg("service status query failed")
		return ServiceStatus{State: "unknown", Detail: err.Error()}
	}

	state := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 || state != "active" {
		return ServiceStatus{State: "stopped", Detail: state}
	}

	status := ServiceStatus{State: "running", Detail: state}
	if listing, err := i.listing(ctx); err == nil {
		status.PendingCount = len(parseQueueListing(listing))
	}
	return status
}

// QueueInfo returns the total queued message count and the raw listing text.
func (i *QueueInspector) QueueInfo(ctx context.Context) (QueueInfo, error) {
	listing, err := i.listing(ctx)
	if err != nil {
		return QueueInfo{}, err
	}
	return QueueInfo{
		Count:   len(parseQueueListing(listing)),
		Listing: listing,
	}, nil
}

// DetailedQueueInfo parses the queue listing into structured records,
// filtered by queue type ("all" matches everything), truncated to limit,
// with per-state count and byte aggregates computed over the filtered set.
func (i *QueueInspector) DetailedQueueInfo(ctx context.Context, queueType string, limit int) (QueueDetails, error) {
	listing, err := i.listing(ctx)
	if err != nil {
		return QueueDetails{}, err
	}
	return buildQueueDetails(listing, queueType, limit), nil
}

// buildQueueDetails is the pure half of DetailedQueueInfo, split out so the
// parsing contract can be tested against literal listings.
func buildQueueDetails(listing, queueType string, limit int) QueueDetails {
	messages := filterByState(parseQueueListing(listing), queueType)

	details := QueueDetails{
		ByState: aggregateByState(messages),
		Total:   len(messages),
	}

	if limit > 0 && len(messages) > limit {
		messages = messages[:limit]
	}
	details.Messages = messages
	return details
}
