package model

import "time"

// AuditLog records one operator action against a managed resource.
type AuditLog struct {
	ID           string    `json:"id"`
	Actor        string    `json:"actor,omitempty"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Details      string    `json:"details,omitempty"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
