package merchant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Store is the accessor the payment flows read merchant settings through.
type Store interface {
	Get(ctx context.Context, channelID string) (*Config, error)
}

type Repository interface {
	Store
	Save(ctx context.Context, cfg *Config) error
	Delete(ctx context.Context, channelID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, channelID string) (*Config, error) {
	const q = `
	SELECT channel_id, account_id, shared_secret, sandbox_mode, updated_at
	FROM merchant_configs
	WHERE config_key = $1 AND channel_id = $2
	`

	var c Config
	err := r.db.QueryRowContext(ctx, q, ConfigKey, channelID).Scan(
		&c.ChannelID, &c.AccountID, &c.SharedSecret, &c.SandboxMode, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("get merchant config: %w", err)
	}
	return &c, nil
}

func (r *repository) Save(ctx context.Context, cfg *Config) error {
	// Same blank check as gateway.NewClient, so a stored config always builds a client.
	for _, v := range []string{cfg.ChannelID, cfg.AccountID, cfg.SharedSecret} {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidConfig
		}
	}

	const q = `
	INSERT INTO merchant_configs (config_key, channel_id, account_id, shared_secret, sandbox_mode)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (config_key, channel_id)
	DO UPDATE SET account_id = EXCLUDED.account_id,
		shared_secret = EXCLUDED.shared_secret,
		sandbox_mode = EXCLUDED.sandbox_mode,
		updated_at = now()
	`

	_, err := r.db.ExecContext(ctx, q, ConfigKey, cfg.ChannelID, cfg.AccountID, cfg.SharedSecret, cfg.SandboxMode)
	if err != nil {
		return fmt.Errorf("save merchant config: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, channelID string) error {
	const q = `DELETE FROM merchant_configs WHERE config_key = $1 AND channel_id = $2`

	_, err := r.db.ExecContext(ctx, q, ConfigKey, channelID)
	return err
}
