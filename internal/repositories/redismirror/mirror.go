// Package redismirror copies every committed account to an external store so
// other services can read balances without touching the ledger database.
package redismirror

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
)

// Publisher receives the state of an account after each committed update.
type Publisher interface {
	Publish(ctx context.Context, acc domain.Account) error
}

// AccountRepository publishes the result of every successful Update. Mirror
// failures are logged and counted; they never fail the update, which has
// already been committed.
type AccountRepository struct {
	portsrepo.AccountRepositoryFacade
	publisher Publisher
	metrics   metrics.Collector
	logger    *slog.Logger

	// holds per-client locks so mirror writes for one client land in commit order
	locks sync.Map
}

// NewAccountRepository wraps inner.
func NewAccountRepository(inner portsrepo.AccountRepositoryFacade, publisher Publisher, collector metrics.Collector, logger *slog.Logger) *AccountRepository {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountRepository{
		AccountRepositoryFacade: inner,
		publisher:               publisher,
		metrics:                 collector,
		logger:                  logger.With(slog.String("component", "account_mirror")),
	}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) lock(clientID uint16) func() {
	v, _ := r.locks.LoadOrStore(clientID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (r *AccountRepository) Update(ctx context.Context, clientID uint16, fn portsrepo.AccountUpdateFunc) error {
	unlock := r.lock(clientID)
	defer unlock()

	var committed domain.Account
	err := r.AccountRepositoryFacade.Update(ctx, clientID, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
		next, err := fn(ctx, acc)
		if err == nil {
			committed = next
		}
		return next, err
	})
	if err != nil {
		return err
	}

	start := time.Now()
	// the stream may be cancelled right after the commit; the mirror still
	// has to catch up
	pubErr := r.publisher.Publish(context.WithoutCancel(ctx), committed)
	r.metrics.RecordMirrorWrite(pubErr == nil, time.Since(start))
	if pubErr != nil {
		r.logger.Warn("Failed to mirror account",
			slog.Int("client", int(clientID)),
			slog.String("error", pubErr.Error()),
		)
	}
	return nil
}
