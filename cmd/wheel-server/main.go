package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MJE43/wheel-of-fortune-go/internal/api"
	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/config/env"
	"github.com/MJE43/wheel-of-fortune-go/internal/seedvault"
	"github.com/MJE43/wheel-of-fortune-go/internal/store"
	"github.com/MJE43/wheel-of-fortune-go/internal/token"
)

const shutdownTimeout = 10 * time.Second

func main() {
	issue := flag.Duration("issue-admin-token", 0, "print an admin bearer token valid for this long and exit")
	flag.Parse()

	if err := config.Load(".env"); err != nil {
		log.Fatalf("wheel-server: load .env: %v", err)
	}
	if *issue > 0 {
		if err := issueAdminToken(*issue); err != nil {
			log.Fatalf("wheel-server: %v", err)
		}
		return
	}
	if err := run(); err != nil {
		log.Fatalf("wheel-server: %v", err)
	}
}

func issueAdminToken(ttl time.Duration) error {
	vaultCfg, err := env.NewVaultConfig()
	if err != nil {
		return err
	}
	if vaultCfg.AdminToken() == "" {
		return fmt.Errorf("WHEEL_ADMIN_TOKEN is not set")
	}
	tok, err := token.IssueAdmin([]byte(vaultCfg.AdminToken()), ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func run() error {

	httpCfg, err := env.NewHTTPConfig()
	if err != nil {
		return err
	}
	corsCfg, err := env.NewCORSConfig()
	if err != nil {
		return err
	}
	storeCfg, err := env.NewStoreConfig()
	if err != nil {
		return err
	}
	vaultCfg, err := env.NewVaultConfig()
	if err != nil {
		return err
	}
	catalogCfg, err := env.NewCatalogConfig()
	if err != nil {
		return err
	}
	sessionCfg, err := env.NewSessionConfig()
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.Lshortfile)

	watcher, err := config.NewWatcher(catalogCfg.Path(), catalogCfg.ReloadInterval(), nil)
	if err != nil {
		return fmt.Errorf("load wheels from %s: %w", catalogCfg.Path(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStore(ctx, storeCfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	server := api.NewServer(api.Config{
		DB:             db,
		Catalog:        watcher,
		Vault:          seedvault.New(vaultCfg.Service(), vaultCfg.FallbackPath()),
		AdminToken:     vaultCfg.AdminToken(),
		AllowedOrigins: corsCfg.AllowedOrigins(),
		MaxSessions:    sessionCfg.MaxSessions(),
		SessionIdleTTL: sessionCfg.IdleTTL(),
		Logger:         logger,
	})
	watcher.OnReload(func(cat *config.Catalog) { server.PruneSessions(cat) })
	watcher.Start()
	defer watcher.Stop()

	if err := server.Start(httpCfg.Address()); err != nil {
		return fmt.Errorf("listen on %s: %w", httpCfg.Address(), err)
	}
	logger.Printf("listening addr=%s wheels=%d", server.Addr(), len(watcher.Catalog().Wheels))

	<-ctx.Done()
	logger.Printf("shutdown_requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.DB, error) {
	if cfg.UsePostgres() {
		db, err := store.NewPostgresDB(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return db, nil
	}
	db, err := store.NewSQLiteDB(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath(), err)
	}
	return db, nil
}
