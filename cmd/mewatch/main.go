package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/mewatch/internal/api"
	"github.com/amaumene/mewatch/internal/config"
	"github.com/amaumene/mewatch/internal/controllers"
	"github.com/amaumene/mewatch/internal/models"
	"github.com/amaumene/mewatch/internal/scheduler"
	"github.com/amaumene/mewatch/internal/services/social"
	"github.com/amaumene/mewatch/internal/services/sources"
	"github.com/amaumene/mewatch/internal/services/vk"
	"github.com/amaumene/mewatch/internal/services/yandex"
	"github.com/amaumene/mewatch/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Mewatch")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	yandexParser, err := yandex.NewParser(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize yandex parser: %w", err)
	}
	parsers := []sources.Parser{yandexParser}
	logger.Info("Source parsers initialized")

	integrations := []social.Integration{vk.NewIntegration(cfg, logger)}
	logger.Info("Social integrations initialized")

	// 5. Initialize controllers
	searchCtrl := controllers.NewSearchController(db, parsers, logger)
	watchCtrl := controllers.NewWatchController(db, logger)
	authCtrl := controllers.NewAuthController(db, logger)
	cleanupCtrl := controllers.NewCleanupController(db, cfg.WatchCleanupDays, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(cleanupCtrl, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, searchCtrl, watchCtrl, authCtrl, integrations, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Mewatch is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Mewatch stopped")
	return nil
}
