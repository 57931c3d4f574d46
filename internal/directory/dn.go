package directory

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	domainRegex   = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)
)

// ValidateDomain rejects names that are not lowercase dotted domain names.
func ValidateDomain(domain string) error {
	if !domainRegex.MatchString(domain) {
		return fmt.Errorf("invalid domain name %q", domain)
	}
	return nil
}

// ValidateUsername rejects local parts that could not form a safe RDN.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("invalid username %q", username)
	}
	return nil
}

// BaseDN derives a base DN from the domain's first two dot-separated labels:
// "example.com" becomes "dc=example,dc=com".
func BaseDN(domain string) (string, error) {
	if err := ValidateDomain(domain); err != nil {
		return "", err
	}
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("domain %q has no base DN and too few labels to derive one", domain)
	}
	return fmt.Sprintf("dc=%s,dc=%s", labels[0], labels[1]), nil
}

// The fixed namespace below the base DN. Every DN for a domain or mailbox is
// built here and nowhere else; computing these paths ad hoc invites drift
// between provisioning and lookup.

func HostingDN(baseDN string) string {
	return "o=hosting," + baseDN
}

func MailServerDN(baseDN string) string {
	return "ou=MailServer," + HostingDN(baseDN)
}

func MailDomainsDN(baseDN string) string {
	return "ou=MailDomains," + MailServerDN(baseDN)
}

// DomainDN is the virtual-domain entry DN.
func DomainDN(domain, baseDN string) string {
	return fmt.Sprintf("vd=%s,%s", domain, MailDomainsDN(baseDN))
}

// MailboxesDN is the container for a domain's mailbox entries.
func MailboxesDN(domain, baseDN string) string {
	return "ou=Mailboxes," + DomainDN(domain, baseDN)
}

// UserDN is the mailbox entry DN for a user in a domain.
func UserDN(username, domain, baseDN string) string {
	return fmt.Sprintf("mail=%s,%s", username, MailboxesDN(domain, baseDN))
}

// HomeDir is the on-disk mailbox home for a user.
func HomeDir(username, domain string) string {
	return fmt.Sprintf("/home/vmail/domains/%s/%s", domain, username)
}

// resolveBaseDN returns the explicit base DN if given, otherwise derives one
// from the domain.
func resolveBaseDN(domain, baseDN string) (string, error) {
	if baseDN != "" {
		return baseDN, nil
	}
	return BaseDN(domain)
}
