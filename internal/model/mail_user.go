package model

import "time"

// MailUser is a mailbox account in a hosted domain. LDAPDN is always the
// output of the shared DN builder for (Username, domain); it is stored, not
// recomputed ad hoc.
type MailUser struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	DomainID   string    `json:"domain_id"`
	SecretHash string    `json:"-"`
	Active     bool      `json:"active"`
	QuotaBytes int64     `json:"quota_bytes"` // 0 = unlimited
	HomeDir    string    `json:"home_dir"`
	LDAPDN     string    `json:"ldap_dn"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
