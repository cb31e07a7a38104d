package resilient

import (
	"context"
	"log/slog"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
)

// AccountRepository guards an account repository with a circuit breaker.
type AccountRepository struct {
	inner portsrepo.AccountRepositoryFacade
	*breaker
}

// NewAccountRepository wraps inner.
func NewAccountRepository(inner portsrepo.AccountRepositoryFacade, cfg Config, collector metrics.Collector, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{inner: inner, breaker: newBreaker("accounts", cfg, collector, logger)}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) FindAccountByClientID(ctx context.Context, clientID uint16) (acc domain.Account, err error) {
	err = r.do(ctx, "find account", func(ctx context.Context) error {
		acc, err = r.inner.FindAccountByClientID(ctx, clientID)
		return err
	})
	return acc, err
}

func (r *AccountRepository) ListAccounts(ctx context.Context) (accounts []domain.Account, err error) {
	err = r.do(ctx, "list accounts", func(ctx context.Context) error {
		accounts, err = r.inner.ListAccounts(ctx)
		return err
	})
	return accounts, err
}

func (r *AccountRepository) GetOrCreate(ctx context.Context, clientID uint16) (acc domain.Account, err error) {
	err = r.do(ctx, "get or create account", func(ctx context.Context) error {
		acc, err = r.inner.GetOrCreate(ctx, clientID)
		return err
	})
	return acc, err
}

func (r *AccountRepository) Update(ctx context.Context, clientID uint16, fn portsrepo.AccountUpdateFunc) error {
	return r.do(ctx, "update account", func(ctx context.Context) error {
		return r.inner.Update(ctx, clientID, fn)
	})
}

// TransactionLogRepository guards a transaction log with a circuit breaker.
type TransactionLogRepository struct {
	inner portsrepo.TransactionLogRepositoryFacade
	*breaker
}

// NewTransactionLogRepository wraps inner.
func NewTransactionLogRepository(inner portsrepo.TransactionLogRepositoryFacade, cfg Config, collector metrics.Collector, logger *slog.Logger) *TransactionLogRepository {
	return &TransactionLogRepository{inner: inner, breaker: newBreaker("transaction_log", cfg, collector, logger)}
}

var _ portsrepo.TransactionLogRepositoryFacade = (*TransactionLogRepository)(nil)

func (r *TransactionLogRepository) FindTransactionByID(ctx context.Context, txID uint32) (tx *domain.Transaction, err error) {
	err = r.do(ctx, "find transaction", func(ctx context.Context) error {
		tx, err = r.inner.FindTransactionByID(ctx, txID)
		return err
	})
	return tx, err
}

func (r *TransactionLogRepository) Insert(ctx context.Context, tx domain.Transaction) error {
	return r.do(ctx, "insert transaction", func(ctx context.Context) error {
		return r.inner.Insert(ctx, tx)
	})
}

func (r *TransactionLogRepository) UpdateDisputeState(ctx context.Context, txID uint32, from, to domain.DisputeState) error {
	return r.do(ctx, "update dispute state", func(ctx context.Context) error {
		return r.inner.UpdateDisputeState(ctx, txID, from, to)
	})
}

// TransactionIDs passes through when the wrapped log can enumerate ids.
func (r *TransactionLogRepository) TransactionIDs(ctx context.Context) ([]uint32, error) {
	lister, ok := r.inner.(portsrepo.TransactionIDLister)
	if !ok {
		return nil, nil
	}
	var ids []uint32
	err := r.do(ctx, "list transaction ids", func(ctx context.Context) (err error) {
		ids, err = lister.TransactionIDs(ctx)
		return err
	})
	return ids, err
}

// Wrap returns a provider whose repositories sit behind circuit breakers.
func Wrap(repos portsrepo.RepositoryProvider, cfg Config, collector metrics.Collector, logger *slog.Logger) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        NewAccountRepository(repos.AccountRepo, cfg, collector, logger),
		TransactionLogRepo: NewTransactionLogRepository(repos.TransactionLogRepo, cfg, collector, logger),
	}
}
