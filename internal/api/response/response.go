package response

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as the JSON body with the given status. An encoding
// failure after the header is out is not recoverable, so it is ignored.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a single-field error body. Operation outcomes with a
// failure kind go through the OpResult path instead; this is for request
// and lookup errors.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// PaginatedResponse wraps a cursor-paginated list. NextCursor is the id to
// pass as the cursor query parameter for the following page.
type PaginatedResponse struct {
	Items      any    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

func WritePaginated(w http.ResponseWriter, status int, items any, nextCursor string, hasMore bool) {
	WriteJSON(w, status, PaginatedResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
