package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/mail"
)

// Queue exposes the mail queue read and lifecycle operations.
type Queue struct {
	inspector *mail.QueueInspector
	ctrl      *mail.QueueController
	audit     *core.AuditService
}

func NewQueue(inspector *mail.QueueInspector, ctrl *mail.QueueController, audit *core.AuditService) *Queue {
	return &Queue{inspector: inspector, ctrl: ctrl, audit: audit}
}

func (h *Queue) Status(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.inspector.Status(r.Context()))
}

func (h *Queue) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.inspector.QueueInfo(r.Context())
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, info)
}

func (h *Queue) Messages(w http.ResponseWriter, r *http.Request) {
	queueType := r.URL.Query().Get("type")
	if queueType == "" {
		queueType = "all"
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			response.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	details, err := h.inspector.DetailedQueueInfo(r.Context(), queueType, limit)
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, details)
}

func (h *Queue) Hold(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := h.ctrl.Hold(r.Context(), id)
	if result.Success {
		recordAudit(r, h.audit, "hold_message", "queue_message", id, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Queue) Release(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := h.ctrl.Release(r.Context(), id)
	if result.Success {
		recordAudit(r, h.audit, "release_message", "queue_message", id, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Queue) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := h.ctrl.Delete(r.Context(), id)
	if result.Success {
		recordAudit(r, h.audit, "delete_message", "queue_message", id, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Queue) FlushDeferred(w http.ResponseWriter, r *http.Request) {
	result := h.ctrl.FlushDeferred(r.Context())
	if result.Success {
		recordAudit(r, h.audit, "flush_deferred", "queue", "deferred", result.Message)
	}
	writeOpResult(w, result)
}

func (h *Queue) FlushHold(w http.ResponseWriter, r *http.Request) {
	result := h.ctrl.FlushHold(r.Context())
	if result.Success {
		recordAudit(r, h.audit, "flush_hold", "queue", "hold", result.Message)
	}
	writeOpResult(w, result)
}

func (h *Queue) CleanupExpired(w http.ResponseWriter, r *http.Request) {
	writeOpResult(w, h.ctrl.CleanupExpired(r.Context()))
}

func (h *Queue) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	result := h.ctrl.RebuildIndex(r.Context())
	if result.Success {
		recordAudit(r, h.audit, "rebuild_queue", "queue", "structure", result.Message)
	}
	writeOpResult(w, result)
}

func (h *Queue) CheckIntegrity(w http.ResponseWriter, r *http.Request) {
	writeOpResult(w, h.ctrl.CheckIntegrity(r.Context()))
}
