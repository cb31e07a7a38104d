package main

import (
	"context"
	"log/slog"

	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	"github.com/SscSPs/payments_engine/internal/platform/config"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
	promcollector "github.com/SscSPs/payments_engine/internal/platform/metrics/prometheus"
	"github.com/SscSPs/payments_engine/internal/repositories/bloomlog"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/SscSPs/payments_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/payments_engine/internal/repositories/redismirror"
	"github.com/SscSPs/payments_engine/internal/repositories/resilient"
	"github.com/SscSPs/payments_engine/pkg/database"
	"github.com/prometheus/client_golang/prometheus"
)

// buildRepositories assembles the configured backend and its decorators. The
// returned cleanup releases every connection that was opened. registry may be
// nil, in which case the transaction filter counters are not exported.
func buildRepositories(ctx context.Context, cfg *config.Config, collector metrics.Collector, registry prometheus.Registerer, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var repos portsrepo.RepositoryProvider
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			applied, err := pgsql.RunMigrations(cfg.DatabaseURL)
			if err != nil {
				return repos, cleanup, err
			}
			if applied {
				logger.Info("Database migrations applied successfully.")
			} else {
				logger.Info("No new migrations to apply.")
			}
		}

		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: cfg.DBMaxConns}, logger)
		if err != nil {
			return repos, cleanup, err
		}
		closers = append(closers, func() { database.ClosePgxPool(pool, logger) })

		repos = resilient.Wrap(pgsql.NewRepositoryProvider(pool), resilient.Config{
			Timeout:     cfg.BreakerTimeout,
			MaxFailures: cfg.BreakerMaxFailures,
			OpenTimeout: cfg.BreakerOpenTimeout,
			MaxRequests: 1,
		}, collector, logger)

		filtered := bloomlog.New(repos.TransactionLogRepo, cfg.BloomExpectedTx, cfg.BloomFPRate)
		if n, err := filtered.Warm(ctx); err != nil {
			logger.Warn("Transaction filter disabled, warm-up failed", slog.String("error", err.Error()))
		} else {
			logger.Info("Transaction filter warmed", slog.Int("ids", n))
			repos.TransactionLogRepo = filtered
			if registry != nil {
				err := promcollector.RegisterFilter(registry, "ledger", func() (uint64, uint64, uint64) {
					stats := filtered.Stats()
					return stats.TotalQueries, stats.BloomRejected, stats.FalsePositives
				})
				if err != nil {
					return repos, cleanup, err
				}
			}
		}

	default:
		repos = memory.NewRepositoryProvider()
	}

	if cfg.RedisAddr != "" {
		publisher, err := redismirror.NewRedisPublisher(redismirror.Config{
			Addr: cfg.RedisAddr,
			Key:  cfg.RedisKey,
		})
		if err != nil {
			return repos, cleanup, err
		}
		closers = append(closers, publisher.Close)
		if cfg.StorageBackend != config.StoragePostgres {
			if err := publisher.Clear(ctx); err != nil {
				return repos, cleanup, err
			}
		}
		repos.AccountRepo = redismirror.NewAccountRepository(repos.AccountRepo, publisher, collector, logger)
		logger.Info("Mirroring accounts to Redis", slog.String("addr", cfg.RedisAddr), slog.String("key", cfg.RedisKey))
	}

	return repos, cleanup, nil
}
