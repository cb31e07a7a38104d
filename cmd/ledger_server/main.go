// Command ledger_server keeps one ledger and feeds it from TCP connections
// and HTTP uploads at the same time. It also serves the snapshot and
// Prometheus metrics over HTTP.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/payments_engine/internal/adapters/tcp"
	"github.com/SscSPs/payments_engine/internal/core/services"
	"github.com/SscSPs/payments_engine/internal/handlers"
	"github.com/SscSPs/payments_engine/internal/platform/config"
	promcollector "github.com/SscSPs/payments_engine/internal/platform/metrics/prometheus"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.LoadConfig(pflag.CommandLine)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := promcollector.NewCollector("ledger")
	if err := collector.Register(registry); err != nil {
		return err
	}

	repos, cleanup, err := buildRepositories(ctx, cfg, collector, registry, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	container := services.NewServiceContainer(repos, collector)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := handlers.NewRouter(cfg, logger, container, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	tcpServer := tcp.NewServer(container.Engine, logger)
	if err := tcpServer.Listen(cfg.TCPAddr); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server starting", slog.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("TCP server starting", slog.String("addr", tcpServer.Addr().String()))
		return tcpServer.Serve(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
