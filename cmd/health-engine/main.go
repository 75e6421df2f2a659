package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/docrouter-health/internal/api"
	"github.com/miradorstack/docrouter-health/internal/collector"
	"github.com/miradorstack/docrouter-health/internal/config"
	"github.com/miradorstack/docrouter-health/internal/gauges"
	"github.com/miradorstack/docrouter-health/internal/health"
	"github.com/miradorstack/docrouter-health/internal/metrics"
	"github.com/miradorstack/docrouter-health/internal/recorder"
	"github.com/miradorstack/docrouter-health/internal/services"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting docrouter-health",
		slog.String("address", cfg.Server.Address),
		slog.String("http_address", cfg.Server.HTTPAddress),
	)

	rec := recorder.New(cfg.Recorder.HistorySize)
	logger.Debug("recorder ready", slog.Int("window_capacity", rec.Capacity()))
	if err := metrics.Register(prometheus.DefaultRegisterer, metrics.NewRecorderCollector(rec)); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	hostGauges := gauges.NewHostProvider(gauges.HostConfig{
		CPUSampleInterval: cfg.Health.CPUSampleInterval,
		DiskPath:          cfg.Health.DiskPath,
	})
	evaluator := health.NewEvaluator(logger)
	if err := collector.RegisterHostProbes(evaluator, hostGauges, cfg.Health.Probes); err != nil {
		logger.Error("failed to register health probes", slog.Any("error", err))
		os.Exit(1)
	}
	coll := collector.New(logger, rec, evaluator, hostGauges)

	server, err := api.NewServer(cfg.Server)
	if err != nil {
		logger.Error("failed to create gRPC server", slog.Any("error", err))
		os.Exit(1)
	}

	monitor := services.NewMonitor(logger, coll, services.MonitorConfig{
		Interval:       cfg.Health.Interval,
		ExportPath:     cfg.Export.Path,
		ExportInterval: cfg.Export.Interval,
	}, server)

	handlers := api.NewHandlers(logger, rec, coll, monitor, prometheus.DefaultGatherer)
	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddress,
		Handler:      handlers.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return monitor.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server listening", slog.String("address", cfg.Server.HTTPAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("http server shutdown", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("docrouter-health exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("docrouter-health stopped")
}
