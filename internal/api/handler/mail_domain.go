package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

type MailDomain struct {
	svc   *core.MailDomainService
	audit *core.AuditService
}

func NewMailDomain(svc *core.MailDomainService, audit *core.AuditService) *MailDomain {
	return &MailDomain{svc: svc, audit: audit}
}

func (h *MailDomain) List(w http.ResponseWriter, r *http.Request) {
	pg := request.ParsePagination(r)

	domains, hasMore, err := h.svc.List(r.Context(), pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(domains) > 0 {
		nextCursor = domains[len(domains)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, domains, nextCursor, hasMore)
}

func (h *MailDomain) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateMailDomain
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	d := &model.MailDomain{
		ID:              platform.NewID(),
		Domain:          req.Domain,
		Active:          true,
		PostfixEnabled:  req.PostfixEnabled == nil || *req.PostfixEnabled,
		DovecotEnabled:  req.DovecotEnabled == nil || *req.DovecotEnabled,
		LDAPBaseDN:      req.BaseDN,
		LDAPAdminDN:     req.AdminDN,
		LDAPAdminSecret: req.AdminSecret,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	provision, err := h.svc.Create(r.Context(), d)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recordAudit(r, h.audit, "create_domain", "mail_domain", d.ID, "created domain "+d.Domain)

	// The record exists even when provisioning failed; the caller gets both.
	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"domain":    d,
		"provision": provision,
	})
}

func (h *MailDomain) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}

func (h *MailDomain) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMailDomainFlags
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sync, err := h.svc.UpdateFlags(r.Context(), id, req.Active, req.PostfixEnabled, req.DovecotEnabled)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !sync.Success {
		// Flags are persisted; the transport sync failure is reported so
		// the caller can retry the toggle.
		writeOpResult(w, sync)
		return
	}

	recordAudit(r, h.audit, "update_domain_flags", "mail_domain", id, sync.Message)
	w.WriteHeader(http.StatusNoContent)
}

func (h *MailDomain) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cascade, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recordAudit(r, h.audit, "delete_domain", "mail_domain", id, cascade.Message)
	response.WriteJSON(w, http.StatusOK, map[string]any{"cascade": cascade})
}
