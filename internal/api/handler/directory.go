package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/mailpanel/internal/api/request"
	"github.com/edvin/mailpanel/internal/api/response"
	"github.com/edvin/mailpanel/internal/core"
	"github.com/edvin/mailpanel/internal/directory"
)

// Directory exposes generic entry CRUD, subtree search, and the database
// backup and restore operations.
type Directory struct {
	prov   *directory.Provisioner
	backup *directory.BackupManager
	audit  *core.AuditService
}

func NewDirectory(prov *directory.Provisioner, backup *directory.BackupManager, audit *core.AuditService) *Directory {
	return &Directory{prov: prov, backup: backup, audit: audit}
}

// attrsFromWire converts the JSON attribute shape into the directory
// package's tagged representation. A string stays single-valued, a list of
// strings becomes multi-valued.
func attrsFromWire(wire request.EntryAttributes) (map[string]directory.Attr, error) {
	attrs := make(map[string]directory.Attr, len(wire))
	for name, raw := range wire {
		switch v := raw.(type) {
		case string:
			attrs[name] = directory.Single(v)
		case []any:
			values := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("attribute %s: values must be strings", name)
				}
				values = append(values, s)
			}
			attrs[name] = directory.Multi(values...)
		default:
			return nil, fmt.Errorf("attribute %s: value must be a string or a list of strings", name)
		}
	}
	return attrs, nil
}

func (h *Directory) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req request.AddEntry
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	attrs, err := attrsFromWire(req.Attributes)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.prov.AddEntry(r.Context(), req.DN, attrs)
	if result.Success {
		recordAudit(r, h.audit, "add_entry", "directory_entry", req.DN, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Directory) ModifyEntry(w http.ResponseWriter, r *http.Request) {
	dn := r.URL.Query().Get("dn")
	if dn == "" {
		response.WriteError(w, http.StatusBadRequest, "missing dn parameter")
		return
	}

	var req request.ModifyEntry
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	changes, err := attrsFromWire(req.Changes)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.prov.ModifyEntry(r.Context(), dn, changes)
	if result.Success {
		recordAudit(r, h.audit, "modify_entry", "directory_entry", dn, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Directory) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	dn := r.URL.Query().Get("dn")
	if dn == "" {
		response.WriteError(w, http.StatusBadRequest, "missing dn parameter")
		return
	}

	result := h.prov.DeleteEntry(r.Context(), dn)
	if result.Success {
		recordAudit(r, h.audit, "delete_entry", "directory_entry", dn, result.Message)
	}
	writeOpResult(w, result)
}

// Users lists the mailbox entries currently present in the directory for a
// domain, independent of the database records.
func (h *Directory) Users(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	if err := directory.ValidateDomain(domain); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.prov.Users(r.Context(), domain, r.URL.Query().Get("base_dn"))
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (h *Directory) Search(w http.ResponseWriter, r *http.Request) {
	var req request.DirectorySearch
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := req.Filter
	if filter == "" {
		filter = "(objectClass=*)"
	}

	entries, err := h.prov.Search(r.Context(), req.BaseDN, filter, req.Attributes)
	if err != nil {
		response.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (h *Directory) Backup(w http.ResponseWriter, r *http.Request) {
	var req request.DirectoryBackup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.backup.BackupDatabase(r.Context(), req.Path)
	if result.Success {
		recordAudit(r, h.audit, "backup_directory", "directory", req.Path, result.Message)
	}
	writeOpResult(w, result)
}

func (h *Directory) Restore(w http.ResponseWriter, r *http.Request) {
	var req request.DirectoryBackup
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.backup.RestoreDatabase(r.Context(), req.Path)
	if result.Success {
		recordAudit(r, h.audit, "restore_directory", "directory", req.Path, result.Message)
	}
	writeOpResult(w, result)
}
