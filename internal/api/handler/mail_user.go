package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
)

type MailUser struct {
	svc   *core.MailUserService
	audit *core.AuditService
}

func NewMailUser(svc *core.MailUserService, audit *core.AuditService) *MailUser {
	return &MailUser{svc: svc, audit: audit}
}

func (h *MailUser) ListByDomain(w http.ResponseWriter, r *http.Request) {
	domainID, err := request.RequireID(chi.URLParam(r, "domainID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pg := request.ParsePagination(r)

	users, hasMore, err := h.svc.ListByDomain(r.Context(), domainID, pg.Limit, pg.Cursor)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var nextCursor string
	if hasMore && len(users) > 0 {
		nextCursor = users[len(users)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, users, nextCursor, hasMore)
}

func (h *MailUser) Create(w http.ResponseWriter, r *http.Request) {
	domainID, err := request.RequireID(chi.URLParam(r, "domainID"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateMailUser
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, provision, err := h.svc.Create(r.Context(), domainID, req.Username, req.Password, req.QuotaBytes)
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if u == nil {
		writeOpResult(w, provision)
		return
	}

	recordAudit(r, h.audit, "create_user", "mail_user", u.ID, "created user "+u.Username)

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":      u,
		"provision": provision,
	})
}

func (h *MailUser) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, u)
}

func (h *MailUser) UpdateQuota(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateMailUserQuota
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateQuota(r.Context(), id, req.QuotaBytes); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recordAudit(r, h.audit, "update_user_quota", "mail_user", id, "updated quota")
	w.WriteHeader(http.StatusNoContent)
}

func (h *MailUser) Delete(w http.ResponseWriter, r *http.Request) {
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

	recordAudit(r, h.audit, "delete_user", "mail_user", id, cascade.Message)
	response.WriteJSON(w, http.StatusOK, map[string]any{"cascade": cascade})
}
