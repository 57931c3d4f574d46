package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/mail"
)

// Service exposes lifecycle control for the managed daemons.
type Service struct {
	ctrl     *mail.ServiceController
	services map[string]mail.ManagedService
	audit    *core.AuditService
}

func NewService(ctrl *mail.ServiceController, services map[string]mail.ManagedService, audit *core.AuditService) *Service {
	return &Service{ctrl: ctrl, services: services, audit: audit}
}

func (h *Service) lookup(w http.ResponseWriter, r *http.Request) (mail.ManagedService, bool) {
	name := chi.URLParam(r, "service")
	svc, ok := h.services[name]
	if !ok {
		response.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown service %q", name))
	}
	return svc, ok
}

func (h *Service) Status(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, h.ctrl.Status(r.Context(), svc))
}

func (h *Service) Restart(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	result := h.ctrl.Restart(r.Context(), svc)
	if result.Success {
		recordAudit(r, h.audit, "restart_service", "service", svc.Unit, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Service) Reload(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	result := h.ctrl.Reload(r.Context(), svc)
	if result.Success {
		recordAudit(r, h.audit, "reload_service", "service", svc.Unit, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Service) CheckConfig(w http.ResponseWriter, r *http.Request) {
	svc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeOpResult(w, h.ctrl.CheckConfig(r.Context(), svc))
}
