package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

type AuditService struct {
	db DB
}

func NewAuditService(db DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends one audit entry. Audit failures should not fail the
// operation they describe; callers log and continue.
func (s *AuditService) Record(ctx context.Context, entry *model.AuditLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (id, actor, action, resource_type, resource_id, details, remote_addr, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID, entry.Details, entry.RemoteAddr, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, limit int, cursor string) ([]model.AuditLog, bool, error) {
	query := `SELECT id, actor, action, resource_type, resource_id, details, remote_addr, created_at FROM audit_logs`
	args := []any{}
	argIdx := 1

	if cursor != "" {
		query += fmt.Sprintf(` WHERE id < $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id DESC`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []model.AuditLog
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.ResourceType, &e.ResourceID, &e.Details, &e.RemoteAddr, &e.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate audit logs: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}
	return entries, hasMore, nil
}
