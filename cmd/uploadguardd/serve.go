package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/c360/uploadguard/backend"
	"github.com/c360/uploadguard/backend/fallback"
	"github.com/c360/uploadguard/backend/native"
	"github.com/c360/uploadguard/backpressure"
	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/gateway"
	"github.com/c360/uploadguard/metric"
	"github.com/c360/uploadguard/policy"
	"github.com/c360/uploadguard/stream"
	"github.com/c360/uploadguard/transport/natsrpc"
	"github.com/c360/uploadguard/transport/ws"
)

const shutdownTimeout = 10 * time.Second

var (
	listenAddr  string
	metricsAddr string
	natsURL     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scanning engine and its transports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := setupLogger(logLevel, logFormat)
		slog.SetDefault(logger)

		cfg, err := config.Load(afero.NewOsFs(), configPath)
		if err != nil {
			logger.Error("configuration load failed", "error", err, "path", configPath)
			return err
		}
		applyFlagOverrides(cfg)

		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "websocket listen address (overrides config)")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics", "", "prometheus listen address (overrides config)")
	serveCmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS broker URL; enables the NATS transport")
}

func applyFlagOverrides(cfg *config.Config) {
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	if metricsAddr != "" {
		cfg.Server.MetricsAddr = metricsAddr
	}
	if natsURL != "" {
		cfg.Server.NATSURL = natsURL
	}
}

// lifecycle is the start/stop surface every long-running piece exposes
type lifecycle interface {
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	safeCfg := config.NewSafeConfig(cfg)

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()

	primary := backend.NewAdapter(native.New(), logger)
	degraded := backend.NewAdapter(fallback.New(), logger)

	engCfg := cfg.Engine
	controller := backpressure.NewController(engCfg, logger, backpressure.WithMetrics(metrics))
	faults := policy.NewFaultLog(engCfg.FaultLogSize, logger, metrics)

	manager, err := stream.NewManager(stream.Deps{
		Config:     safeCfg,
		Backend:    primary,
		Fallback:   degraded,
		Store:      stream.NewMemoryStore(),
		Controller: controller,
		Faults:     faults,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("build manager: %w", err)
	}

	dispatcher := gateway.NewDispatcher(manager, safeCfg, logger, Version)

	services := []lifecycle{manager, ws.NewServer(cfg.Server.ListenAddr, safeCfg, dispatcher, logger)}
	if cfg.Server.NATSURL != "" {
		services = append(services,
			natsrpc.NewResponder(cfg.Server.NATSURL, cfg.Server.NATSSubject, dispatcher, logger))
	}

	var started []lifecycle
	for _, svc := range services {
		if err := svc.Start(ctx); err != nil {
			stopAll(started, logger)
			return fmt.Errorf("start services: %w", err)
		}
		started = append(started, svc)
	}

	metricsServer := metric.NewServer(cfg.Server.MetricsAddr, "/metrics", registry)
	if err := metricsServer.Start(); err != nil {
		logger.Warn("metrics endpoint unavailable", "error", err, "addr", cfg.Server.MetricsAddr)
		metricsServer = nil
	}

	logger.Info("uploadguard daemon ready",
		"listen", cfg.Server.ListenAddr,
		"metrics", cfg.Server.MetricsAddr,
		"nats", cfg.Server.NATSURL != "")

	<-ctx.Done()
	logger.Info("shutdown signal received")

	if metricsServer != nil {
		if err := metricsServer.Stop(shutdownTimeout); err != nil {
			logger.Warn("metrics server stop failed", "error", err)
		}
	}
	stopAll(started, logger)

	logger.Info("uploadguard daemon stopped")
	return nil
}

// stopAll stops services in reverse start order
func stopAll(services []lifecycle, logger *slog.Logger) {
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(shutdownTimeout); err != nil {
			logger.Warn("service stop failed", "error", err)
		}
	}
}
