package env

import (
	"testing"
	"time"
)

func TestHTTPConfigDefault(t *testing.T) {
	t.Setenv(httpAddrEnvName, "")
	cfg, err := NewHTTPConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Address() != defaultHTTPAddr {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestHTTPConfigInvalid(t *testing.T) {
	t.Setenv(httpAddrEnvName, "no-port")
	if _, err := NewHTTPConfig(); err == nil {
		t.Fatal("expected error for address without port")
	}
}

func TestCORSConfig(t *testing.T) {
	t.Setenv(corsOriginsEnvName, " https://a.example , ,https://b.example")
	cfg, _ := NewCORSConfig()
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("AllowedOrigins() = %v", got)
	}

	t.Setenv(corsOriginsEnvName, "")
	cfg, _ = NewCORSConfig()
	if got := cfg.AllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Errorf("default AllowedOrigins() = %v", got)
	}
}

func TestStoreConfig(t *testing.T) {
	t.Setenv(sqlitePathEnvName, "")
	t.Setenv(pgDSNEnvName, "")
	cfg, _ := NewStoreConfig()
	if cfg.SQLitePath() != defaultSQLitePath || cfg.UsePostgres() {
		t.Errorf("defaults: path=%q pg=%v", cfg.SQLitePath(), cfg.UsePostgres())
	}

	t.Setenv(pgDSNEnvName, "postgres://localhost/wheel")
	cfg, _ = NewStoreConfig()
	if !cfg.UsePostgres() || cfg.PostgresDSN() != "postgres://localhost/wheel" {
		t.Errorf("pg: dsn=%q pg=%v", cfg.PostgresDSN(), cfg.UsePostgres())
	}
}

func TestVaultConfig(t *testing.T) {
	t.Setenv(keyringServiceEnvName, "")
	t.Setenv(secretsFallbackEnvName, "/tmp/seeds.json")
	t.Setenv(adminTokenEnvName, "s3cret")
	cfg, _ := NewVaultConfig()
	if cfg.Service() != defaultKeyringService || cfg.FallbackPath() != "/tmp/seeds.json" || cfg.AdminToken() != "s3cret" {
		t.Errorf("service=%q fallback=%q", cfg.Service(), cfg.FallbackPath())
	}
}

func TestCatalogConfig(t *testing.T) {
	t.Setenv(catalogPathEnvName, "")
	t.Setenv(reloadIntervalEnvName, "500ms")
	cfg, err := NewCatalogConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path() != defaultCatalogPath || cfg.ReloadInterval() != 500*time.Millisecond {
		t.Errorf("path=%q interval=%s", cfg.Path(), cfg.ReloadInterval())
	}

	t.Setenv(reloadIntervalEnvName, "soon")
	if _, err := NewCatalogConfig(); err == nil {
		t.Error("expected error for bad interval")
	}
}

func TestSessionConfig(t *testing.T) {
	t.Setenv(maxSessionsEnvName, "")
	t.Setenv(sessionIdleTTLEnvName, "")
	cfg, err := NewSessionConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxSessions() != defaultMaxSessions || cfg.IdleTTL() != defaultSessionIdleTTL {
		t.Errorf("defaults: max=%d ttl=%s", cfg.MaxSessions(), cfg.IdleTTL())
	}

	t.Setenv(maxSessionsEnvName, "8")
	t.Setenv(sessionIdleTTLEnvName, "90s")
	cfg, err = NewSessionConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxSessions() != 8 || cfg.IdleTTL() != 90*time.Second {
		t.Errorf("max=%d ttl=%s", cfg.MaxSessions(), cfg.IdleTTL())
	}

	for _, bad := range [][2]string{{"0", "1m"}, {"many", "1m"}, {"4", "-1s"}, {"4", "later"}} {
		t.Setenv(maxSessionsEnvName, bad[0])
		t.Setenv(sessionIdleTTLEnvName, bad[1])
		if _, err := NewSessionConfig(); err == nil {
			t.Errorf("max=%q ttl=%q: expected error", bad[0], bad[1])
		}
	}
}
