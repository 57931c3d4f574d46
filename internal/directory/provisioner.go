package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/mailpanel/internal/metrics"
	"github.com/edvin/mailpanel/internal/model"
)

// mailAccountClass marks mailbox entries; user lookups filter on it.
const mailAccountClass = "VirtualMailAccount"

// Provisioner maintains the fixed six-level directory namespace for virtual
// mail domains and mailboxes, and exposes generic entry CRUD.
type Provisioner struct {
	logger zerolog.Logger
	client Client
}

func NewProvisioner(logger zerolog.Logger, client Client) *Provisioner {
	return &Provisioner{
		logger: logger.With().Str("component", "directory-provisioner").Logger(),
		client: client,
	}
}

// namespaceLevel is one entry on the path from the base DN down to a
// domain's mailboxes container.
type namespaceLevel struct {
	dn    string
	attrs map[string]Attr
}

func domainNamespace(domain, baseDN string) []namespaceLevel {
	firstLabel := strings.Split(domain, ".")[0]
	return []namespaceLevel{
		{
			dn: baseDN,
			attrs: map[string]Attr{
				"objectClass": Multi("dcObject", "organization"),
				"dc":          Single(firstLabel),
				"o":           Single(domain),
			},
		},
		{
			dn: HostingDN(baseDN),
			attrs: map[string]Attr{
				"objectClass": Multi("organization", "top"),
				"o":           Single("hosting"),
				"description": Single("Hosting Organization"),
			},
		},
		{
			dn: MailServerDN(baseDN),
			attrs: map[string]Attr{
				"objectClass": Multi("organizationalUnit", "top"),
				"ou":          Single("MailServer"),
			},
		},
		{
			dn: MailDomainsDN(baseDN),
			attrs: map[string]Attr{
				"objectClass": Multi("organizationalUnit", "top"),
				"ou":          Single("MailDomains"),
			},
		},
		{
			dn: DomainDN(domain, baseDN),
			attrs: map[string]Attr{
				"objectClass": Multi("top", "VirtualMailDomain"),
				"vd":          Single(domain),
				"description": Single(fmt.Sprintf("Virtual mail domain: %s", domain)),
			},
		},
		{
			dn: MailboxesDN(domain, baseDN),
			attrs: map[string]Attr{
				"objectClass": Multi("organizationalUnit", "top"),
				"ou":          Single("Mailboxes"),
			},
		},
	}
}

// CreateDomain creates the six namespace levels for a domain, top-down. Each
// level is create-if-absent, so re-running after a partial failure is safe.
// On any other failure the operation aborts and reports which level failed;
// already-created levels are not rolled back.
func (p *Provisioner) CreateDomain(ctx context.Context, domain, baseDN string) model.OpResult {
	if err := ValidateDomain(domain); err != nil {
		return p.done("create-domain", model.ValidationFailure(err.Error()))
	}
	baseDN, err := resolveBaseDN(domain, baseDN)
	if err != nil {
		return p.done("create-domain", model.ValidationFailure(err.Error()))
	}

	p.logger.Info().Str("domain", domain).Str("base_dn", baseDN).Msg("creating domain namespace")

	for _, level := range domainNamespace(domain, baseDN) {
		if err := p.client.Add(ctx, level.dn, level.attrs); err != nil {
			if errors.Is(err, ErrEntryExists) {
				continue
			}
			return p.done("create-domain", model.TransportFailure(
				fmt.Sprintf("create %s: %v (earlier levels are left in place)", level.dn, err)))
		}
	}

	return p.done("create-domain", model.OK(fmt.Sprintf("domain %s provisioned under %s", domain, baseDN)))
}

// CreateUser creates the mailbox entry for a user. The entry DN comes from
// the shared builder, the same one used by deletion and lookup.
func (p *Provisioner) CreateUser(ctx context.Context, username, domain, password, baseDN string) model.OpResult {
	if err := ValidateUsername(username); err != nil {
		return p.done("create-user", model.ValidationFailure(err.Error()))
	}
	if err := ValidateDomain(domain); err != nil {
		return p.done("create-user", model.ValidationFailure(err.Error()))
	}
	baseDN, err := resolveBaseDN(domain, baseDN)
	if err != nil {
		return p.done("create-user", model.ValidationFailure(err.Error()))
	}

	dn := UserDN(username, domain, baseDN)
	home := HomeDir(username, domain)
	attrs := map[string]Attr{
		"objectClass":   Multi("top", mailAccountClass, "posixAccount"),
		"mail":          Single(username),
		"uid":           Single(username),
		"uidNumber":     Single("1000"),
		"gidNumber":     Single("1000"),
		"homeDirectory": Single(home),
		"userPassword":  Single(password),
		"cn":            Single(username),
		"sn":            Single(username),
		"mailbox":       Single(home + "/Maildir/"),
	}

	p.logger.Info().Str("dn", dn).Msg("creating mail user entry")

	if err := p.client.Add(ctx, dn, attrs); err != nil {
		if errors.Is(err, ErrEntryExists) {
			return p.done("create-user", model.ValidationFailure(
				fmt.Sprintf("user %s@%s already exists", username, domain)))
		}
		return p.done("create-user", model.TransportFailure(err.Error()))
	}
	return p.done("create-user", model.OK(fmt.Sprintf("user %s@%s created at %s", username, domain, dn)))
}

// DeleteUser removes a user's mailbox entry, addressing it via the shared
// DN builder.
func (p *Provisioner) DeleteUser(ctx context.Context, username, domain, baseDN string) model.OpResult {
	if err := ValidateUsername(username); err != nil {
		return p.done("delete-user", model.ValidationFailure(err.Error()))
	}
	baseDN, err := resolveBaseDN(domain, baseDN)
	if err != nil {
		return p.done("delete-user", model.ValidationFailure(err.Error()))
	}

	dn := UserDN(username, domain, baseDN)
	if err := p.client.Delete(ctx, dn); err != nil {
		return p.done("delete-user", model.TransportFailure(err.Error()))
	}
	return p.done("delete-user", model.OK(fmt.Sprintf("user %s@%s deleted", username, domain)))
}

// Users lists the mailbox entries for a domain, filtered by the mail account
// object class.
func (p *Provisioner) Users(ctx context.Context, domain, baseDN string) ([]Entry, error) {
	baseDN, err := resolveBaseDN(domain, baseDN)
	if err != nil {
		return nil, err
	}

	entries, err := p.client.Search(ctx, MailboxesDN(domain, baseDN),
		fmt.Sprintf("(objectClass=%s)", mailAccountClass),
		[]string{"mail", "cn", "uidNumber", "homeDirectory"})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteDomain removes a domain's subtree: every mailbox entry, the
// mailboxes container, then the domain entry. The shared upper levels stay;
// other domains may live under the same base DN. Best-effort cascade: the
// first failure aborts and is reported, entries already deleted stay gone.
func (p *Provisioner) DeleteDomain(ctx context.Context, domain, baseDN string) model.OpResult {
	if err := ValidateDomain(domain); err != nil {
		return p.done("delete-domain", model.ValidationFailure(err.Error()))
	}
	baseDN, err := resolveBaseDN(domain, baseDN)
	if err != nil {
		return p.done("delete-domain", model.ValidationFailure(err.Error()))
	}

	users, err := p.Users(ctx, domain, baseDN)
	if err == nil {
		for _, u := range users {
			if err := p.client.Delete(ctx, u.DN); err != nil {
				return p.done("delete-domain", model.TransportFailure(
					fmt.Sprintf("delete user entry %s: %v", u.DN, err)))
			}
		}
	}

	for _, dn := range []string{MailboxesDN(domain, baseDN), DomainDN(domain, baseDN)} {
		if err := p.client.Delete(ctx, dn); err != nil {
			return p.done("delete-domain", model.TransportFailure(
				fmt.Sprintf("delete %s: %v", dn, err)))
		}
	}
	return p.done("delete-domain", model.OK(fmt.Sprintf("domain %s removed from directory", domain)))
}

// AddEntry is a generic pass-through for arbitrary entries.
func (p *Provisioner) AddEntry(ctx context.Context, dn string, attrs map[string]Attr) model.OpResult {
	if err := p.client.Add(ctx, dn, attrs); err != nil {
		if errors.Is(err, ErrEntryExists) {
			return model.ValidationFailure(fmt.Sprintf("entry %s already exists", dn))
		}
		return model.TransportFailure(err.Error())
	}
	return model.OK(fmt.Sprintf("entry %s added", dn))
}

// ModifyEntry replaces the given attributes on an entry.
func (p *Provisioner) ModifyEntry(ctx context.Context, dn string, changes map[string]Attr) model.OpResult {
	if err := p.client.Modify(ctx, dn, changes); err != nil {
		return model.TransportFailure(err.Error())
	}
	return model.OK(fmt.Sprintf("entry %s modified", dn))
}

// DeleteEntry removes an entry.
func (p *Provisioner) DeleteEntry(ctx context.Context, dn string) model.OpResult {
	if err := p.client.Delete(ctx, dn); err != nil {
		return model.TransportFailure(err.Error())
	}
	return model.OK(fmt.Sprintf("entry %s deleted", dn))
}

// Search is a generic subtree search.
func (p *Provisioner) Search(ctx context.Context, baseDN, filter string, attributes []string) ([]Entry, error) {
	return p.client.Search(ctx, baseDN, filter, attributes)
}

func (p *Provisioner) done(operation string, result model.OpResult) model.OpResult {
	metrics.DirectoryOperations.WithLabelValues(operation, metrics.Outcome(result.Success)).Inc()
	if !result.Success {
		p.logger.Warn().Str("operation", operation).Str("reason", result.Message).Msg("directory operation failed")
	}
	return result
}
