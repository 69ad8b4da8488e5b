package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"photosbridge/internal/assets"
	"photosbridge/internal/config"
	"photosbridge/internal/metrics"
	"photosbridge/internal/server"
	"photosbridge/internal/status"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "photosbridge"
	serviceVersion    = "1.0.0"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("bind_address", cfg.Server.BindAddress),
		slog.Int("max_request_bytes", cfg.Server.MaxRequestBytes),
		slog.String("store_root", cfg.Store.Root),
		slog.String("store_capability", cfg.Store.Capability),
		slog.Bool("monitor_enabled", cfg.Monitor.Enabled),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Lifecycle tracker, observed by the monitoring surface.
	tracker := status.NewTracker()
	tracker.Eventf("Service starting")

	registry := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(registry)

	// Resolve the store's permission decision before bringing the
	// listener up. A denied capability is not fatal: the liveness
	// endpoint still answers, image requests get 403.
	tracker.SetState(status.StateAwaitingPermission)
	capability, err := assets.ParseCapability(cfg.Store.Capability)
	if err != nil {
		logger.Error("Invalid store capability", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := assets.NewDirStore(cfg.Store.Root, capability)
	if err != nil {
		tracker.SetError(status.StateFailed, err.Error())
		logger.Error("Failed to open asset store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if !capability.Authorized() {
		tracker.SetState(status.StatePermissionDenied)
		tracker.Eventf("Asset store access %s", capability)
		logger.Warn("Asset store access not granted",
			slog.String("capability", capability.String()),
		)
	}

	fetcher := assets.NewFetcher(store, logger)

	srv := server.New(&cfg.Server, logger, tracker, fetcher, appMetrics)
	if err := srv.Start(); err != nil {
		// Terminal by design: the tracker already carries ListenerError.
		logger.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var monitor *server.Monitor
	if cfg.Monitor.Enabled {
		monitor = server.NewMonitor(cfg.Monitor, logger, tracker, srv, registry)
		monitor.Start()
		logger.Info("Monitoring server initialized",
			slog.String("address", fmt.Sprintf("%s:%d", cfg.Monitor.Address, cfg.Monitor.Port)),
		)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("address", srv.Addr().String()),
	)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	tracker.Eventf("Shutting down on signal %s", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if monitor != nil {
		if err := monitor.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping monitoring server", slog.String("error", err.Error()))
		}
	}

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping server", slog.String("error", err.Error()))
	}

	logger.Info("Service stopped")
}

// initLogger creates the structured logger based on configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
