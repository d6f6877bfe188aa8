package env

import (
	"fmt"
	"os"
	"time"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
)

const (
	catalogPathEnvName    = "WHEEL_CONFIG"
	reloadIntervalEnvName = "WHEEL_RELOAD_INTERVAL"

	defaultCatalogPath    = "wheels.yaml"
	defaultReloadInterval = 2 * time.Second
)

type catalogConfig struct {
	path     string
	interval time.Duration
}

func NewCatalogConfig() (config.CatalogConfig, error) {
	path := os.Getenv(catalogPathEnvName)
	if len(path) == 0 {
		path = defaultCatalogPath
	}

	interval := defaultReloadInterval
	if raw := os.Getenv(reloadIntervalEnvName); len(raw) > 0 {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid reload interval: %w", err)
		}
		interval = parsed
	}

	return &catalogConfig{
		path:     path,
		interval: interval,
	}, nil
}

func (cfg *catalogConfig) Path() string {
	return cfg.path
}

// ReloadInterval is how often the catalog file is polled. Zero or less disables reloading.
func (cfg *catalogConfig) ReloadInterval() time.Duration {
	return cfg.interval
}
