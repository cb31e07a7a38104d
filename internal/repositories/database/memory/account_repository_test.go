package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_GetOrCreate(t *testing.T) {
	repo := memory.NewAccountRepository()
	ctx := context.Background()

	_, err := repo.FindAccountByClientID(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	acc, err := repo.GetOrCreate(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.NewAccount(9), acc)

	found, err := repo.FindAccountByClientID(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, acc, found)
}

func TestAccountRepository_UpdateErrorLeavesStateUntouched(t *testing.T) {
	repo := memory.NewAccountRepository()
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.Update(ctx, 1, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
		acc.Available = domain.NewAmountFromInt(100)
		return acc, boom
	})
	assert.ErrorIs(t, err, boom)

	acc, err := repo.FindAccountByClientID(ctx, 1)
	require.NoError(t, err, "a rejected update still creates the account")
	assert.True(t, acc.Available.Equal(domain.Zero))
}

func TestAccountRepository_UpdateRejectsForeignClient(t *testing.T) {
	repo := memory.NewAccountRepository()
	err := repo.Update(context.Background(), 1, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
		acc.ClientID = 2
		return acc, nil
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAccountRepository_UpdateCancelledContext(t *testing.T) {
	repo := memory.NewAccountRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Update(ctx, 1, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
		t.Fatal("update func must not run")
		return acc, nil
	})
	assert.ErrorIs(t, err, apperrors.ErrRepositoryFailure)
}

func TestAccountRepository_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	repo := memory.NewAccountRepository()
	ctx := context.Background()
	one := domain.NewAmountFromInt(1)

	const workers, perWorker = 16, 250
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				clientID := uint16(i % 4)
				err := repo.Update(ctx, clientID, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
					return acc.Deposit(one)
				})
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 4)
	for i, acc := range accounts {
		assert.Equal(t, uint16(i), acc.ClientID, "accounts are ordered by client id")
		assert.True(t, acc.Available.Equal(domain.NewAmountFromInt(workers*perWorker/4)), acc.Available.String())
	}
}

func TestAccountRepository_ListHandsOutCopies(t *testing.T) {
	repo := memory.NewAccountRepository()
	ctx := context.Background()
	_, err := repo.GetOrCreate(ctx, 5)
	require.NoError(t, err)

	accounts, err := repo.ListAccounts(ctx)
	require.NoError(t, err)
	accounts[0].Locked = true

	acc, err := repo.FindAccountByClientID(ctx, 5)
	require.NoError(t, err)
	assert.False(t, acc.Locked)
}
