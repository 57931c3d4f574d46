package request

type CreateMailDomain struct {
	Domain         string `json:"domain" validate:"required,domain"`
	BaseDN         string `json:"base_dn"`
	AdminDN        string `json:"admin_dn"`
	AdminSecret    string `json:"admin_secret"`
	PostfixEnabled *bool  `json:"postfix_enabled"`
	DovecotEnabled *bool  `json:"dovecot_enabled"`
}

type UpdateMailDomainFlags struct {
	Active         bool `json:"active"`
	PostfixEnabled bool `json:"postfix_enabled"`
	DovecotEnabled bool `json:"dovecot_enabled"`
}
