package model

import "time"

// MailDomain is a hosted virtual mail domain.
type MailDomain struct {
	ID              string    `json:"id"`
	Domain          string    `json:"domain"`
	Active          bool      `json:"active"`
	PostfixEnabled  bool      `json:"postfix_enabled"`
	DovecotEnabled  bool      `json:"dovecot_enabled"`
	LDAPBaseDN      string    `json:"ldap_base_dn"`
	LDAPAdminDN     string    `json:"ldap_admin_dn,omitempty"`
	LDAPAdminSecret string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
