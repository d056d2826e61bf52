package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mintbay/marketplace/internal/adapter"
	"github.com/mintbay/marketplace/internal/config"
	"github.com/mintbay/marketplace/internal/logger"
	"github.com/mintbay/marketplace/internal/store"
	"github.com/mintbay/marketplace/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting order expiry sweeper")

	// Connect to database. TranslateError maps unique violations onto
	// gorm.ErrDuplicatedKey, which the store relies on.
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}

	dataStore := store.NewPGStore(db)

	sweeperConfig := &sweeper.OrderExpirySweeperConfig{
		OrderTTL:       cfg.Sweeper.OrderTTL,
		BatchSize:      cfg.Sweeper.BatchSize,
		WorkerPoolSize: cfg.Sweeper.WorkerPoolSize,
		SweepInterval:  cfg.Sweeper.SweepInterval,
	}
	sw := sweeper.NewOrderExpirySweeper(sweeperConfig, dataStore, adapter.NewClock())

	errCh := make(chan error, 1)
	go func() {
		if err := sw.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", sw.Name()))
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := sw.Stop(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Sweeper forced to shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("Order expiry sweeper stopped")
}
