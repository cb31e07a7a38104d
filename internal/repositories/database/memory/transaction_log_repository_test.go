package memory_test

import (
	"context"
	"testing"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionLogRepository_InsertAndFind(t *testing.T) {
	repo := memory.NewTransactionLogRepository()
	ctx := context.Background()
	tx := domain.NewTransaction(1, 2, domain.Deposit, domain.MustParseAmount("1.5"))

	require.NoError(t, repo.Insert(ctx, tx))
	assert.ErrorIs(t, repo.Insert(ctx, tx), apperrors.ErrDuplicateTransaction)

	found, err := repo.FindTransactionByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tx, *found)

	found.DisputeState = domain.DisputeOpen
	again, err := repo.FindTransactionByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeNone, again.DisputeState, "callers receive copies")

	_, err = repo.FindTransactionByID(ctx, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransactionLogRepository_UpdateDisputeState(t *testing.T) {
	repo := memory.NewTransactionLogRepository()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, domain.NewTransaction(1, 1, domain.Deposit, domain.NewAmountFromInt(3))))

	require.NoError(t, repo.UpdateDisputeState(ctx, 1, domain.DisputeNone, domain.DisputeOpen))
	err := repo.UpdateDisputeState(ctx, 1, domain.DisputeNone, domain.DisputeOpen)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	err = repo.UpdateDisputeState(ctx, 42, domain.DisputeNone, domain.DisputeOpen)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	ids, err := repo.TransactionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, ids)
}
