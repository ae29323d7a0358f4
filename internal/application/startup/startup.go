// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/havenwellness/haven-go/internal/application/container"
	"github.com/havenwellness/haven-go/internal/infrastructure/caching/manager"
	tablecreator "github.com/havenwellness/haven-go/internal/infrastructure/database"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/infrastructure/persistence/database"
	"github.com/havenwellness/haven-go/internal/presentation/http/server"
	"github.com/havenwellness/haven-go/pkg/config"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	logger.Startup().Info("Starting Haven Wellness backend")
	perfTracker := performance.NewTracker(nil)

	// Step 1: Database connection and schema
	logger.Startup().Info("Connecting to database", "driver", config.DBDriver)
	dsn := database.BuildDSN(config.DBDriver, config.DBPath, config.DBAuthToken)
	db, err := database.NewConnectionWithLogger(config.DBDriver, dsn, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	tableCreator := tablecreator.NewTableCreator()
	if err := tableCreator.CreateSchema(db.DB); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := tableCreator.SeedInitialContent(db.DB); err != nil {
		return fmt.Errorf("failed to seed content: %w", err)
	}
	logger.Startup().Info("Database ready", "path", config.DBPath)

	// Step 2: Cache system
	logger.Startup().Info("Initializing cache system...")
	cacheManager := manager.NewManager(logger)

	// Step 3: Dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(logger, perfTracker, db, cacheManager)

	// Step 4: Warm the content cache
	startWarmTime := time.Now()
	if err := appContainer.ContentService.Warm(); err != nil {
		logger.Startup().Error("Content cache warming failed", "error", err.Error(), "duration", time.Since(startWarmTime))
	} else {
		logger.Startup().Info("Content cache warmed", "duration", time.Since(startWarmTime))
	}

	// Step 5: Background session cleanup worker
	cacheManager.StartCleanupWorker(config.SessionCleanupPeriod)
	logger.Startup().Info("Session cleanup worker started", "period", config.SessionCleanupPeriod)

	// Step 6: HTTP server
	port := config.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port,
		"experimentEnabled", config.ABBookingExperiment)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()
	cacheManager.StopCleanupWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
