package bloomlog_test

import (
	"context"
	"testing"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/repositories/bloomlog"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionLogRepository_UnknownIDsShortCircuit(t *testing.T) {
	ctx := context.Background()
	repo := bloomlog.New(memory.NewTransactionLogRepository(), 1000, 0.001)

	_, err := repo.FindTransactionByID(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	tx := domain.NewTransaction(42, 1, domain.Deposit, domain.MustParseAmount("3"))
	require.NoError(t, repo.Insert(ctx, tx))

	found, err := repo.FindTransactionByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, tx, *found)

	stats := repo.Stats()
	assert.Equal(t, uint64(2), stats.TotalQueries)
	assert.Equal(t, uint64(1), stats.BloomRejected)
	assert.Equal(t, 0.5, stats.RejectionRate)
}

func TestTransactionLogRepository_DuplicateStillDetected(t *testing.T) {
	ctx := context.Background()
	repo := bloomlog.New(memory.NewTransactionLogRepository(), 0, 0)

	tx := domain.NewTransaction(1, 1, domain.Deposit, domain.MustParseAmount("1"))
	require.NoError(t, repo.Insert(ctx, tx))
	assert.ErrorIs(t, repo.Insert(ctx, tx), apperrors.ErrDuplicateTransaction)
}

func TestTransactionLogRepository_Warm(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewTransactionLogRepository()
	for id := uint32(1); id <= 5; id++ {
		require.NoError(t, backend.Insert(ctx, domain.NewTransaction(id, 1, domain.Deposit, domain.MustParseAmount("1"))))
	}

	repo := bloomlog.New(backend, 100, 0.01)
	n, err := repo.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for id := uint32(1); id <= 5; id++ {
		_, err := repo.FindTransactionByID(ctx, id)
		assert.NoError(t, err, "tx %d", id)
	}
	assert.Zero(t, repo.Stats().BloomRejected)

	require.NoError(t, repo.UpdateDisputeState(ctx, 3, domain.DisputeNone, domain.DisputeOpen))
}
