package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Load reads a .env file into the process environment. A missing file is not an error.
func Load(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type HTTPConfig interface {
	Address() string
}

type CORSConfig interface {
	AllowedOrigins() []string
}

type StoreConfig interface {
	SQLitePath() string
	PostgresDSN() string
	UsePostgres() bool
}

type VaultConfig interface {
	Service() string
	FallbackPath() string
	AdminToken() string
}

type SessionConfig interface {
	MaxSessions() int
	IdleTTL() time.Duration
}

type CatalogConfig interface {
	Path() string
	ReloadInterval() time.Duration
}
