package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

// writeOpResult maps controller outcomes onto HTTP statuses: validation
// failures are the caller's fault, transport failures mean the external
// collaborator misbehaved.
func writeOpResult(w http.ResponseWriter, result model.OpResult) {
	status := http.StatusOK
	if !result.Success {
		switch result.Failure {
		case model.FailureValidation:
			status = http.StatusBadRequest
		default:
			status = http.StatusBadGateway
		}
	}
	response.WriteJSON(w, status, result)
}

// recordAudit appends an audit entry for a completed mutation. Audit
// persistence failures are logged, never propagated to the caller.
func recordAudit(r *http.Request, audit *core.AuditService, action, resourceType, resourceID, details string) {
	if audit == nil {
		return
	}
	entry := &model.AuditLog{
		ID:           platform.NewID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		RemoteAddr:   r.RemoteAddr,
		CreatedAt:    time.Now(),
	}
	if err := audit.Record(r.Context(), entry); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("action", action).Msg("audit record failed")
	}
}
