package core

import (
	"context"

	"github.com/edvin/mailpanel/internal/model"
)

// DirectoryProvisioner is the directory side of domain and user lifecycle.
// Implemented by directory.Provisioner; tests substitute a fake.
type DirectoryProvisioner interface {
	CreateDomain(ctx context.Context, domain, baseDN string) model.OpResult
	DeleteDomain(ctx context.Context, domain, baseDN string) model.OpResult
	CreateUser(ctx context.Context, username, domain, password, baseDN string) model.OpResult
	DeleteUser(ctx context.Context, username, domain, baseDN string) model.OpResult
}

// DomainRegistry is the transport agent side of the domain lifecycle: it
// syncs domain records into the virtual domain map. Implemented by
// mail.VirtualDomainRegistry; tests substitute a fake.
type DomainRegistry interface {
	Register(ctx context.Context, domain string) model.OpResult
	Deregister(ctx context.Context, domain string) model.OpResult
}

type Services struct {
	MailDomain   *MailDomainService
	MailUser     *MailUserService
	SystemConfig *SystemConfigService
	Audit        *AuditService
}

func NewServices(db DB, prov DirectoryProvisioner, registry DomainRegistry) *Services {
	return &Services{
		MailDomain:   NewMailDomainService(db, prov, registry),
		MailUser:     NewMailUserService(db, prov),
		SystemConfig: NewSystemConfigService(db),
		Audit:        NewAuditService(db),
	}
}
