package env

import (
	"os"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
)

const (
	sqlitePathEnvName = "WHEEL_DB"
	pgDSNEnvName      = "WHEEL_PG_DSN"

	defaultSQLitePath = "wheel.db"
)

type storeConfig struct {
	sqlitePath string
	dsn        string
}

func NewStoreConfig() (config.StoreConfig, error) {
	path := os.Getenv(sqlitePathEnvName)
	if len(path) == 0 {
		path = defaultSQLitePath
	}

	return &storeConfig{
		sqlitePath: path,
		dsn:        os.Getenv(pgDSNEnvName),
	}, nil
}

func (cfg *storeConfig) SQLitePath() string {
	return cfg.sqlitePath
}

func (cfg *storeConfig) PostgresDSN() string {
	return cfg.dsn
}

// UsePostgres reports whether a Postgres DSN was configured.
func (cfg *storeConfig) UsePostgres() bool {
	return len(cfg.dsn) > 0
}
