package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/mail"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

// System exposes configuration key storage, the audit trail, and an
// aggregate status view over every managed service.
type System struct {
	config   *core.SystemConfigService
	audit    *core.AuditService
	ctrl     *mail.ServiceController
	services map[string]mail.ManagedService
}

func NewSystem(config *core.SystemConfigService, audit *core.AuditService, ctrl *mail.ServiceController, services map[string]mail.ManagedService) *System {
	return &System{config: config, audit: audit, ctrl: ctrl, services: services}
}

// Status reports the state of every managed service in one response.
func (h *System) Status(w http.ResponseWriter, r *http.Request) {
	statuses := make(map[string]mail.ServiceStatus, len(h.services))
	for name, svc := range h.services {
		statuses[name] = h.ctrl.Status(r.Context(), svc)
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"services": statuses})
}

func (h *System) ListConfig(w http.ResponseWriter, r *http.Request) {
	configs, err := h.config.List(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"configs": configs})
}

func (h *System) GetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	c, err := h.config.Get(r.Context(), key)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, c)
}

func (h *System) SetConfig(w http.ResponseWriter, r *http.Request) {
	var req request.SetSystemConfig
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &model.SystemConfig{
		ID:          platform.NewID(),
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
		UpdatedAt:   time.Now(),
	}
	if err := h.config.Set(r.Context(), c); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recordAudit(r, h.audit, "set_config", "system_config", req.Key, "set configuration key")
	response.WriteJSON(w, http.StatusOK, c)
}

func (h *System) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.config.Delete(r.Context(), key); err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	recordAudit(r, h.audit, "delete_config", "system_config", key, "deleted configuration key")
	w.WriteHeader(http.StatusNoContent)
}

func (h *System) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	entries, hasMore, err := h.audit.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(entries) > 0 {
		nextCursor = entries[len(entries)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, entries, nextCursor, hasMore)
}
