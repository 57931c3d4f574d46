package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"
)

// ErrEntryExists is returned by Add when the target DN is already present.
// Callers that provision idempotently treat it as success.
var ErrEntryExists = errors.New("entry already exists")

// Client is the directory server contract: bind, search, and entry CRUD.
// Implementations must not panic across this boundary; every fault is an
// error return.
type Client interface {
	Bind(ctx context.Context) error
	Search(ctx context.Context, baseDN, filter string, attributes []string) ([]Entry, error)
	Add(ctx context.Context, dn string, attrs map[string]Attr) error
	Modify(ctx context.Context, dn string, changes map[string]Attr) error
	Delete(ctx context.Context, dn string) error
}

// LDAPClient talks to an LDAP server. A connection is opened, bound with the
// admin credentials, and closed for every call; there is no pooling.
type LDAPClient struct {
	logger      zerolog.Logger
	serverURI   string
	adminDN     string
	adminSecret string
}

func NewLDAPClient(logger zerolog.Logger, serverURI, adminDN, adminSecret string) *LDAPClient {
	return &LDAPClient{
		logger:      logger.With().Str("component", "ldap-client").Logger(),
		serverURI:   serverURI,
		adminDN:     adminDN,
		adminSecret: adminSecret,
	}
}

func (c *LDAPClient) connect(ctx context.Context) (*ldap.Conn, error) {
	conn, err := ldap.DialURL(c.serverURI)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.serverURI, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetTimeout(time.Until(deadline))
	}
	if err := conn.Bind(c.adminDN, c.adminSecret); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind as %s: %w", c.adminDN, err)
	}
	return conn, nil
}

// Bind verifies that the server is reachable and the admin credentials work.
func (c *LDAPClient) Bind(ctx context.Context) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}

func (c *LDAPClient) Search(ctx context.Context, baseDN, filter string, attributes []string) ([]Entry, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if filter == "" {
		filter = "(objectClass=*)"
	}

	req := ldap.NewSearchRequest(
		baseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		attributes,
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", baseDN, err)
	}

	entries := make([]Entry, 0, len(res.Entries))
	for _, e := range res.Entries {
		attrs := make(map[string]Attr, len(e.Attributes))
		for _, a := range e.Attributes {
			attrs[a.Name] = FromValues(a.Values)
		}
		entries = append(entries, Entry{DN: e.DN, Attributes: attrs})
	}
	return entries, nil
}

func (c *LDAPClient) Add(ctx context.Context, dn string, attrs map[string]Attr) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	req := ldap.NewAddRequest(dn, nil)
	for name, attr := range attrs {
		req.Attribute(name, attr.Values())
	}

	if err := conn.Add(req); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists) {
			return fmt.Errorf("add %s: %w", dn, ErrEntryExists)
		}
		return fmt.Errorf("add %s: %w", dn, err)
	}
	return nil
}

func (c *LDAPClient) Modify(ctx context.Context, dn string, changes map[string]Attr) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	req := ldap.NewModifyRequest(dn, nil)
	for name, attr := range changes {
		req.Replace(name, attr.Values())
	}

	if err := conn.Modify(req); err != nil {
		return fmt.Errorf("modify %s: %w", dn, err)
	}
	return nil
}

func (c *LDAPClient) Delete(ctx context.Context, dn string) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Del(ldap.NewDelRequest(dn, nil)); err != nil {
		return fmt.Errorf("delete %s: %w", dn, err)
	}
	return nil
}
