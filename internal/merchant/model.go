package merchant

import (
	"time"

	"paysera-app/internal/gateway"
)

// ConfigKey is the well-known metadata key merchant settings live under.
const ConfigKey = "paysera_config"

type Config struct {
	ChannelID    string    `json:"channel_id"`
	AccountID    string    `json:"account_id"`
	SharedSecret string    `json:"shared_secret"`
	SandboxMode  bool      `json:"sandbox_mode"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Config) ToGatewayConfig() gateway.MerchantConfig {
	return gateway.MerchantConfig{
		AccountID:    c.AccountID,
		SharedSecret: c.SharedSecret,
		SandboxMode:  c.SandboxMode,
	}
}
