package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/entitle/adapter/cli"
	"github.com/felixgeelhaar/entitle/adapter/cli/customer"
	"github.com/felixgeelhaar/entitle/internal/app"
	"github.com/felixgeelhaar/entitle/internal/entitlement/application"
	"github.com/felixgeelhaar/entitle/internal/entitlement/infrastructure/platform"
	"github.com/felixgeelhaar/entitle/pkg/config"
	"github.com/felixgeelhaar/entitle/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	logger := observability.NewLogger(observability.DefaultLogConfig())
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development", StorageBackend: config.StorageMemory}
	}

	logCfg := observability.DefaultLogConfig()
	if cfg.IsProduction() {
		logCfg = observability.ProductionLogConfig()
	}
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	logger = observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	// Initialize the container with the simulated platform provider
	container, err := app.NewContainer(ctx, cfg, platform.NewSimulated(platform.DefaultCatalog()), logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Synchronizer.Configure(ctx, application.Configuration{
		APIKey:  cfg.APIKey,
		UserID:  cfg.UserID,
		BaseURL: cfg.BaseURL,
	}); err != nil {
		logger.Error("failed to configure synchronizer", "error", err)
		os.Exit(1)
	}

	customer.SetSynchronizer(container.Synchronizer)

	// Register commands
	cli.AddCommand(customer.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}
