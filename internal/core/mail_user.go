package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/edvin/mailpanel/internal/directory"
	"github.com/edvin/mailpanel/internal/model"
	"github.com/edvin/mailpanel/internal/platform"
)

type MailUserService struct {
	db   DB
	prov DirectoryProvisioner
}

func NewMailUserService(db DB, prov DirectoryProvisioner) *MailUserService {
	return &MailUserService{db: db, prov: prov}
}

// Create inserts the user record and provisions the mailbox entry. The
// stored DN is the shared builder's output for (username, domain), the same
// derivation used by deletion and lookup. The user must reference an
// existing domain; the domain does not need to be active.
func (s *MailUserService) Create(ctx context.Context, domainID, username, password string, quotaBytes int64) (*model.MailUser, model.OpResult, error) {
	var domain, baseDN string
	err := s.db.QueryRow(ctx,
		`SELECT domain, ldap_base_dn FROM mail_domains WHERE id = $1`, domainID,
	).Scan(&domain, &baseDN)
	if err != nil {
		return nil, model.OpResult{}, fmt.Errorf("resolve domain %s: %w", domainID, err)
	}

	if baseDN == "" {
		baseDN, err = directory.BaseDN(domain)
		if err != nil {
			return nil, model.ValidationFailure(err.Error()), nil
		}
	}
	if err := directory.ValidateUsername(username); err != nil {
		return nil, model.ValidationFailure(err.Error()), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, model.OpResult{}, fmt.Errorf("hash user secret: %w", err)
	}

	now := time.Now()
	u := &model.MailUser{
		ID:         platform.NewID(),
		Username:   username,
		DomainID:   domainID,
		SecretHash: string(hash),
		Active:     true,
		QuotaBytes: quotaBytes,
		HomeDir:    directory.HomeDir(username, domain),
		LDAPDN:     directory.UserDN(username, domain, baseDN),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO mail_users (id, username, domain_id, secret_hash, active, quota_bytes, home_dir, ldap_dn, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Username, u.DomainID, u.SecretHash, u.Active, u.QuotaBytes, u.HomeDir, u.LDAPDN, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return nil, model.OpResult{}, fmt.Errorf("insert mail user: %w", err)
	}

	return u, s.prov.CreateUser(ctx, username, domain, password, baseDN), nil
}

func (s *MailUserService) GetByID(ctx context.Context, id string) (*model.MailUser, error) {
	var u model.MailUser
	err := s.db.QueryRow(ctx,
		`SELECT id, username, domain_id, secret_hash, active, quota_bytes, home_dir, ldap_dn, created_at, updated_at
		 FROM mail_users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.DomainID, &u.SecretHash, &u.Active, &u.QuotaBytes, &u.HomeDir, &u.LDAPDN, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get mail user %s: %w", id, err)
	}
	return &u, nil
}

func (s *MailUserService) ListByDomain(ctx context.Context, domainID string, limit int, cursor string) ([]model.MailUser, bool, error) {
	query := `SELECT id, username, domain_id, secret_hash, active, quota_bytes, home_dir, ldap_dn, created_at, updated_at
		 FROM mail_users WHERE domain_id = $1`
	args := []any{domainID}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list mail users for domain %s: %w", domainID, err)
	}
	defer rows.Close()

	var users []model.MailUser
	for rows.Next() {
		var u model.MailUser
		if err := rows.Scan(&u.ID, &u.Username, &u.DomainID, &u.SecretHash, &u.Active, &u.QuotaBytes, &u.HomeDir, &u.LDAPDN, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan mail user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate mail users: %w", err)
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}
	return users, hasMore, nil
}

// UpdateQuota sets the mailbox storage allowance. Zero is unlimited.
func (s *MailUserService) UpdateQuota(ctx context.Context, id string, quotaBytes int64) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE mail_users SET quota_bytes = $1, updated_at = now() WHERE id = $2`,
		quotaBytes, id,
	)
	if err != nil {
		return fmt.Errorf("update mail user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mail user %s not found", id)
	}
	return nil
}

// Delete removes the user record and its mailbox entry.
func (s *MailUserService) Delete(ctx context.Context, id string) (model.OpResult, error) {
	var username, domain, baseDN string
	err := s.db.QueryRow(ctx,
		`SELECT u.username, d.domain, d.ldap_base_dn
		 FROM mail_users u JOIN mail_domains d ON u.domain_id = d.id
		 WHERE u.id = $1`, id,
	).Scan(&username, &domain, &baseDN)
	if err != nil {
		return model.OpResult{}, fmt.Errorf("resolve mail user %s: %w", id, err)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM mail_users WHERE id = $1`, id); err != nil {
		return model.OpResult{}, fmt.Errorf("delete mail user %s: %w", id, err)
	}

	return s.prov.DeleteUser(ctx, username, domain, baseDN), nil
}
