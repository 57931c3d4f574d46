package mail

import (
	"strconv"
	"strings"
)

// minQueueFields is the minimum field count for a well-formed listing line:
// queue id, size, two arrival-time tokens, sender, recipient.
const minQueueFields = 6

// parseQueueListing parses the free-text queue listing produced by
// `postqueue -p` into structured records. The text format is not a stable
// contract, so parsing is best-effort: header, footer and malformed lines are
// skipped silently. The number of returned records never exceeds the number
// of well-formed input lines.
func parseQueueListing(listing string) []QueueMessage {
	var messages []QueueMessage

	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Header and summary lines start with a dash; the empty-queue notice
		// carries no records.
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "Mail queue is empty") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < minQueueFields {
			continue
		}

		id := fields[0]
		state := StateDeferred
		switch {
		case strings.HasSuffix(id, "*"):
			state = StateActive
			id = strings.TrimSuffix(id, "*")
		case strings.HasSuffix(id, "!"):
			state = StateHold
			id = strings.TrimSuffix(id, "!")
		case strings.HasSuffix(id, "#"):
			state = StateIncoming
			id = strings.TrimSuffix(id, "#")
		}
		if id == "" {
			continue
		}

		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || size < 0 {
			continue
		}

		messages = append(messages, QueueMessage{
			ID:        id,
			SizeBytes: size,
			Arrival:   strings.Join(fields[2:len(fields)-2], " "),
			Sender:    fields[len(fields)-2],
			Recipient: fields[len(fields)-1],
			State:     state,
		})
	}

	return messages
}

// filterByState returns the messages matching the requested queue type.
// "all" (or empty) matches every state.
func filterByState(messages []QueueMessage, queueType string) []QueueMessage {
	if queueType == "" || queueType == "all" {
		return messages
	}
	want := QueueState(queueType)
	var out []QueueMessage
	for _, m := range messages {
		if m.State == want {
			out = append(out, m)
		}
	}
	return out
}

// aggregateByState computes per-state counts and byte totals.
func aggregateByState(messages []QueueMessage) map[QueueState]StateStats {
	stats := make(map[QueueState]StateStats)
	for _, m := range messages {
		s := stats[m.State]
		s.Count++
		s.TotalBytes += m.SizeBytes
		stats[m.State] = s
	}
	return stats
}
