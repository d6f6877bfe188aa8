package env

import (
	"os"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
)

const (
	keyringServiceEnvName  = "WHEEL_KEYRING_SERVICE"
	secretsFallbackEnvName = "WHEEL_SECRETS_FALLBACK"
	adminTokenEnvName      = "WHEEL_ADMIN_TOKEN"

	defaultKeyringService = "wheel-of-fortune-go"
)

type vaultConfig struct {
	service    string
	fallback   string
	adminToken string
}

func NewVaultConfig() (config.VaultConfig, error) {
	service := os.Getenv(keyringServiceEnvName)
	if len(service) == 0 {
		service = defaultKeyringService
	}

	return &vaultConfig{
		service:    service,
		fallback:   os.Getenv(secretsFallbackEnvName),
		adminToken: os.Getenv(adminTokenEnvName),
	}, nil
}

func (cfg *vaultConfig) Service() string {
	return cfg.service
}

// FallbackPath is the JSON file used when no OS keychain is reachable. Empty disables it.
func (cfg *vaultConfig) FallbackPath() string {
	return cfg.fallback
}

// AdminToken guards seed rotation. Empty leaves it open.
func (cfg *vaultConfig) AdminToken() string {
	return cfg.adminToken
}
