package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

type MailDomainService struct {
	db       DB
	prov     DirectoryProvisioner
	registry DomainRegistry
}

func NewMailDomainService(db DB, prov DirectoryProvisioner, registry DomainRegistry) *MailDomainService {
	return &MailDomainService{db: db, prov: prov, registry: registry}
}

// Create inserts the domain record, provisions its directory namespace, and
// registers it with the transport agent when the postfix flag is set. A
// failed provisioning is surfaced through the returned OpResult while the
// record stays; namespace creation is create-if-absent and registration is
// a no-op when already present, so the caller can retry without touching
// the record.
func (s *MailDomainService) Create(ctx context.Context, d *model.MailDomain) (model.OpResult, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO mail_domains (id, domain, active, postfix_enabled, dovecot_enabled, ldap_base_dn, ldap_admin_dn, ldap_admin_secret, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.Domain, d.Active, d.PostfixEnabled, d.DovecotEnabled, d.LDAPBaseDN, d.LDAPAdminDN, d.LDAPAdminSecret, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return model.OpResult{}, fmt.Errorf("insert mail domain: %w", err)
	}

	provision := s.prov.CreateDomain(ctx, d.Domain, d.LDAPBaseDN)
	if provision.Success && d.PostfixEnabled {
		if reg := s.registry.Register(ctx, d.Domain); !reg.Success {
			return reg, nil
		}
	}
	return provision, nil
}

func (s *MailDomainService) GetByID(ctx context.Context, id string) (*model.MailDomain, error) {
	var d model.MailDomain
	err := s.db.QueryRow(ctx,
		`SELECT id, domain, active, postfix_enabled, dovecot_enabled, ldap_base_dn, ldap_admin_dn, ldap_admin_secret, created_at, updated_at
		 FROM mail_domains WHERE id = $1`, id,
	).Scan(&d.ID, &d.Domain, &d.Active, &d.PostfixEnabled, &d.DovecotEnabled, &d.LDAPBaseDN, &d.LDAPAdminDN, &d.LDAPAdminSecret, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get mail domain %s: %w", id, err)
	}
	return &d, nil
}

func (s *MailDomainService) GetByName(ctx context.Context, domain string) (*model.MailDomain, error) {
	var d model.MailDomain
	err := s.db.QueryRow(ctx,
		`SELECT id, domain, active, postfix_enabled, dovecot_enabled, ldap_base_dn, ldap_admin_dn, ldap_admin_secret, created_at, updated_at
		 FROM mail_domains WHERE domain = $1`, domain,
	).Scan(&d.ID, &d.Domain, &d.Active, &d.PostfixEnabled, &d.DovecotEnabled, &d.LDAPBaseDN, &d.LDAPAdminDN, &d.LDAPAdminSecret, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get mail domain %s: %w", domain, err)
	}
	return &d, nil
}

func (s *MailDomainService) List(ctx context.Context, limit int, cursor string) ([]model.MailDomain, bool, error) {
	query := `SELECT id, domain, active, postfix_enabled, dovecot_enabled, ldap_base_dn, ldap_admin_dn, ldap_admin_secret, created_at, updated_at FROM mail_domains`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` WHERE id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list mail domains: %w", err)
	}
	defer rows.Close()

	var domains []model.MailDomain
	for rows.Next() {
		var d model.MailDomain
		if err := rows.Scan(&d.ID, &d.Domain, &d.Active, &d.PostfixEnabled, &d.DovecotEnabled, &d.LDAPBaseDN, &d.LDAPAdminDN, &d.LDAPAdminSecret, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan mail domain: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate mail domains: %w", err)
	}

	hasMore := len(domains) > limit
	if hasMore {
		domains = domains[:limit]
	}
	return domains, hasMore, nil
}

// UpdateFlags mutates the operator-controlled flags on a domain. Toggling
// the postfix flag syncs the transport agent's virtual domain map; the sync
// outcome is reported through the OpResult, database problems through the
// error.
func (s *MailDomainService) UpdateFlags(ctx context.Context, id string, active, postfixEnabled, dovecotEnabled bool) (model.OpResult, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return model.OpResult{}, err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE mail_domains SET active = $1, postfix_enabled = $2, dovecot_enabled = $3, updated_at = now() WHERE id = $4`,
		active, postfixEnabled, dovecotEnabled, id,
	)
	if err != nil {
		return model.OpResult{}, fmt.Errorf("update mail domain %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.OpResult{}, fmt.Errorf("mail domain %s not found", id)
	}

	switch {
	case postfixEnabled && !d.PostfixEnabled:
		return s.registry.Register(ctx, d.Domain), nil
	case !postfixEnabled && d.PostfixEnabled:
		return s.registry.Deregister(ctx, d.Domain), nil
	}
	return model.OK("flags updated"), nil
}

// Delete removes the domain record, its user records, cascades the
// directory subtree removal, and deregisters the domain from the transport
// agent. The cascade is best-effort and not atomic: a directory or transport
// failure is surfaced through the OpResult after the records are already
// gone.
func (s *MailDomainService) Delete(ctx context.Context, id string) (model.OpResult, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return model.OpResult{}, err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM mail_users WHERE domain_id = $1`, id); err != nil {
		return model.OpResult{}, fmt.Errorf("delete mail users for domain %s: %w", id, err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM mail_domains WHERE id = $1`, id); err != nil {
		return model.OpResult{}, fmt.Errorf("delete mail domain %s: %w", id, err)
	}

	cascade := s.prov.DeleteDomain(ctx, d.Domain, d.LDAPBaseDN)
	dereg := s.registry.Deregister(ctx, d.Domain)
	if cascade.Success && !dereg.Success {
		return dereg, nil
	}
	return cascade, nil
}
