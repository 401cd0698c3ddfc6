package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uhyunpark/swapguard/params"
	"github.com/uhyunpark/swapguard/pkg/api"
	"github.com/uhyunpark/swapguard/pkg/app/core"
	"github.com/uhyunpark/swapguard/pkg/metrics"
	"github.com/uhyunpark/swapguard/pkg/storage"
	"github.com/uhyunpark/swapguard/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := util.NewLoggerWithFile(cfg.LogFile, cfg.Verbose)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile, "verbose", cfg.Verbose)

	// ---- Catalog ----
	catalog, err := core.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		sugar.Fatalw("catalog_load_failed", "file", cfg.CatalogFile, "err", err)
	}
	sugar.Infow("catalog_loaded", "file", cfg.CatalogFile, "assets", catalog.Count(), "network", cfg.Network.String())

	policy := core.Policy{LenientLimitFloor: cfg.Slippage.LenientLimitFloor}
	validator := core.NewValidator(catalog, policy)
	sugar.Infow("validator_ready", "lenient_limit_floor", policy.LenientLimitFloor)

	// ---- Decision journal ----
	var store storage.DecisionStore
	if cfg.Journal.Enabled {
		ps, err := storage.NewPebbleStore(cfg.Journal.Path)
		if err != nil {
			sugar.Fatalw("journal_open_failed", "path", cfg.Journal.Path, "err", err)
		}
		store = ps
		sugar.Infow("journal_opened", "path", cfg.Journal.Path)
	} else {
		store = storage.NewInMemoryDecisionStore()
		sugar.Info("journal_disabled - decisions kept in memory")
	}
	defer func() {
		if err := store.Close(); err != nil {
			sugar.Errorw("journal_close_failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- API Server ----
	server := api.NewServer(api.Options{
		Validator:      validator,
		Catalog:        catalog,
		Network:        cfg.Network,
		Store:          store,
		Metrics:        metrics.New(),
		Clock:          util.RealClock{},
		Logger:         sugar,
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	sugar.Infow("swapguard_starting", "api_addr", cfg.API.Addr, "allowed_origins", cfg.API.AllowedOrigins)
	if err := server.Start(ctx, cfg.API.Addr); err != nil {
		sugar.Errorw("api_server_failed", "err", err)
		return
	}
	sugar.Info("swapguard_stopped")
}
