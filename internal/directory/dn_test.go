package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseDN(t *testing.T) {
	dn, err := BaseDN("example.com")
	require.NoError(t, err)
	assert.Equal(t, "dc=example,dc=com", dn)

	// Only the first two labels contribute.
	dn, err = BaseDN("mail.example.co.uk")
	require.NoError(t, err)
	assert.Equal(t, "dc=mail,dc=example", dn)
}

func TestBaseDN_InvalidDomain(t *testing.T) {
	for _, domain := range []string{"", "nodots", "UPPER.example.com", "-bad.example.com", "exa mple.com"} {
		_, err := BaseDN(domain)
		assert.Error(t, err, domain)
	}
}

func TestNamespaceDNs(t *testing.T) {
	base := "dc=example,dc=com"

	assert.Equal(t, "o=hosting,dc=example,dc=com", HostingDN(base))
	assert.Equal(t, "ou=MailServer,o=hosting,dc=example,dc=com", MailServerDN(base))
	assert.Equal(t, "ou=MailDomains,ou=MailServer,o=hosting,dc=example,dc=com", MailDomainsDN(base))
	assert.Equal(t, "vd=example.com,ou=MailDomains,ou=MailServer,o=hosting,dc=example,dc=com",
		DomainDN("example.com", base))
	assert.Equal(t, "ou=Mailboxes,vd=example.com,ou=MailDomains,ou=MailServer,o=hosting,dc=example,dc=com",
		MailboxesDN("example.com", base))
	assert.Equal(t, "mail=alice,ou=Mailboxes,vd=example.com,ou=MailDomains,ou=MailServer,o=hosting,dc=example,dc=com",
		UserDN("alice", "example.com", base))
}

func TestUserDN_NestsUnderMailboxes(t *testing.T) {
	base := "dc=example,dc=com"
	assert.Contains(t, UserDN("bob", "example.com", base), MailboxesDN("example.com", base))
}

func TestHomeDir(t *testing.T) {
	assert.Equal(t, "/home/vmail/domains/example.com/alice", HomeDir("alice", "example.com"))
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.NoError(t, ValidateUsername("first.last-2"))

	for _, name := range []string{"", ".leadingdot", "has space", "semi;colon", "a,b"} {
		assert.Error(t, ValidateUsername(name), name)
	}
}

func TestResolveBaseDN(t *testing.T) {
	dn, err := resolveBaseDN("example.com", "dc=custom,dc=tld")
	require.NoError(t, err)
	assert.Equal(t, "dc=custom,dc=tld", dn)

	dn, err = resolveBaseDN("example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "dc=example,dc=com", dn)
}
