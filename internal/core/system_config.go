package core

import (
	"context"
	"fmt"

	"github.com/edvin/mailpanel/internal/model"
)

type SystemConfigService struct {
	db DB
}

func NewSystemConfigService(db DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(ctx context.Context, key string) (*model.SystemConfig, error) {
	var c model.SystemConfig
	err := s.db.QueryRow(ctx,
		`SELECT id, key, value, description, updated_at FROM system_config WHERE key = $1`, key,
	).Scan(&c.ID, &c.Key, &c.Value, &c.Description, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get config %s: %w", key, err)
	}
	return &c, nil
}

// Set inserts or updates a configuration key.
func (s *SystemConfigService) Set(ctx context.Context, c *model.SystemConfig) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO system_config (id, key, value, description, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE SET value = $3, description = $4, updated_at = $5`,
		c.ID, c.Key, c.Value, c.Description, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set config %s: %w", c.Key, err)
	}
	return nil
}

func (s *SystemConfigService) Delete(ctx context.Context, key string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM system_config WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete config %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("config %s not found", key)
	}
	return nil
}

func (s *SystemConfigService) List(ctx context.Context) ([]model.SystemConfig, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, key, value, description, updated_at FROM system_config ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()

	var configs []model.SystemConfig
	for rows.Next() {
		var c model.SystemConfig
		if err := rows.Scan(&c.ID, &c.Key, &c.Value, &c.Description, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config: %w", err)
	}
	return configs, nil
}
