package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/SscSPs/payments_engine/internal/platform/config"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRepositories_Memory(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.StorageMemory}

	repos, cleanup, err := buildRepositories(context.Background(), cfg, metrics.NoOpCollector{}, nil, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &memory.AccountRepository{}, repos.AccountRepo)
	assert.IsType(t, &memory.TransactionLogRepository{}, repos.TransactionLogRepo)
}

func TestBuildRepositories_UnreachableRedis(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.StorageMemory, RedisAddr: "127.0.0.1:1", RedisKey: "k"}

	_, cleanup, err := buildRepositories(context.Background(), cfg, metrics.NoOpCollector{}, nil, slog.New(slog.DiscardHandler))
	defer cleanup()
	assert.Error(t, err)
}
