package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/api"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/config"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/metrics"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/internal/eventmonitor/service"
	"github.com/commonprefix/solana-dummy-contracts-and-scripts/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		panic(fmt.Sprintf("Failed to initialize config: %v", err))
	}

	// Initialize logger
	logConfig := logging.NewDefaultConfig(logging.EventMonitorProcess)
	if !config.IsDevMode() {
		logConfig.Environment = logging.Production
		logConfig.UseColors = false
	}

	logger, err := logging.NewZapLogger(logConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	logger.Info("Starting Event Monitor Service...")

	// Initialize service
	svc, err := service.NewService(logger)
	if err != nil {
		logger.Fatal("Failed to initialize service", "error", err)
	}

	// Start service
	if err := svc.Start(); err != nil {
		logger.Fatal("Failed to start service", "error", err)
	}

	metrics.StartMetricsCollection()

	// Setup HTTP server
	srv := api.NewServer(api.Config{
		Port: config.GetPort(),
	}, api.Dependencies{
		Logger:          logger,
		RegistryManager: svc.GetRegistryManager(),
		Service:         svc,
	})

	// Start HTTP server
	go func() {
		logger.Info("Starting HTTP server", "port", config.GetPort())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Log service status
	serviceStatus := map[string]interface{}{
		"port":                config.GetPort(),
		"host":                config.GetHost(),
		"rpc_url":             config.GetRPCURL(),
		"ws_url":              config.GetWSURL(),
		"commitment":          config.GetCommitment(),
		"webhook_timeout":     config.GetWebhookTimeout(),
		"webhook_max_retries": config.GetWebhookMaxRetries(),
		"version":             "0.1.0",
	}

	logger.Info("Event Monitor Service ready", "status", serviceStatus)

	// Handle graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	<-shutdown

	performGracefulShutdown(srv, svc, logger)
}

func performGracefulShutdown(
	srv *api.Server,
	svc *service.Service,
	logger logging.Logger,
) {
	shutdownStart := time.Now()
	logger.Info("Initiating graceful shutdown...")

	// Stop service
	svc.Stop()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Shutdown server gracefully
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	shutdownDuration := time.Since(shutdownStart)

	logger.Info("Event Monitor Service shutdown complete",
		"duration", shutdownDuration)
	os.Exit(0)
}
