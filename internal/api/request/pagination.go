package request

import (
	"net/http"
	"strconv"
)

// Pagination carries the cursor parameters for the list endpoints. The
// cursor is the last id of the previous page; listings order by id, so
// resuming from it is stable even while rows are inserted.
type Pagination struct {
	Limit  int
	Cursor string
}

const (
	DefaultLimit = 50

	// MaxLimit caps a single page; audit log listings are the largest
	// consumer.
	MaxLimit = 250
)

// ParsePagination reads limit and cursor from the query string. A malformed
// or non-positive limit falls back to the default.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{
		Limit:  DefaultLimit,
		Cursor: r.URL.Query().Get("cursor"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			p.Limit = limit
		}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}
