package mail

// QueueState is the lifecycle stage of a queued message. Allowed transitions:
// incoming->active, active<->deferred, active/deferred<->hold, any->removed.
// Removed is terminal.
type QueueState string

const (
	StateIncoming QueueState = "incoming"
	StateActive   QueueState = "active"
	StateDeferred QueueState = "deferred"
	StateHold     QueueState = "hold"
	StateRemoved  QueueState = "removed"
)

// QueueMessage is a parsed record from the transport agent's queue listing.
// It is ephemeral: it exists only for the lifetime of one listing.
type QueueMessage struct {
	ID        string     `json:"id"`
	SizeBytes int64      `json:"size_bytes"`
	Arrival   string     `json:"arrival"`
	Sender    string     `json:"sender"`
	Recipient string     `json:"recipient"`
	State     QueueState `json:"state"`
}

// StateStats aggregates the messages observed in one queue state.
type StateStats struct {
	Count      int   `json:"count"`
	TotalBytes int64 `json:"total_bytes"`
}

// QueueDetails is the result of a detailed queue inspection.
type QueueDetails struct {
	Messages []QueueMessage            `json:"messages"`
	ByState  map[QueueState]StateStats `json:"by_state"`
	Total    int                       `json:"total"`
}

// ServiceStatus reports the observed state of a managed service. State is
// "running", "stopped" or "unknown"; a failed status query is reported as
// unknown, never as a fault.
type ServiceStatus struct {
	State        string `json:"state"`
	Detail       string `json:"detail,omitempty"`
	PendingCount int    `json:"pending_count,omitempty"`
}
