package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
)

// accountEntry guards a single account. Holding mu is the per-client lock.
type accountEntry struct {
	mu  sync.Mutex
	acc domain.Account
}

// AccountRepository keeps accounts in process memory. The outer lock only
// protects the index; updates to different clients never contend on it for
// longer than a map lookup.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[uint16]*accountEntry
}

// NewAccountRepository creates an empty in-memory account store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[uint16]*accountEntry)}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func (r *AccountRepository) entry(clientID uint16) *accountEntry {
	r.mu.RLock()
	e, ok := r.accounts[clientID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok = r.accounts[clientID]; ok {
		return e
	}
	e = &accountEntry{acc: domain.NewAccount(clientID)}
	r.accounts[clientID] = e
	return e
}

// GetOrCreate returns a copy of the account, creating it if needed.
func (r *AccountRepository) GetOrCreate(ctx context.Context, clientID uint16) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, apperrors.NewRepositoryError("get account", err)
	}
	e := r.entry(clientID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acc, nil
}

// FindAccountByClientID returns a copy of an existing account.
func (r *AccountRepository) FindAccountByClientID(ctx context.Context, clientID uint16) (domain.Account, error) {
	r.mu.RLock()
	e, ok := r.accounts[clientID]
	r.mu.RUnlock()
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: account %d", apperrors.ErrNotFound, clientID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acc, nil
}

// Update applies fn while holding the client's lock.
func (r *AccountRepository) Update(ctx context.Context, clientID uint16, fn portsrepo.AccountUpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewRepositoryError("update account", err)
	}
	e := r.entry(clientID)
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(ctx, e.acc)
	if err != nil {
		return err
	}
	if next.ClientID != clientID {
		return fmt.Errorf("%w: update for client %d returned client %d", apperrors.ErrValidation, clientID, next.ClientID)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	e.acc = next
	return nil
}

// ListAccounts copies every account and sorts them by client id.
func (r *AccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	entries := make([]*accountEntry, 0, len(r.accounts))
	for _, e := range r.accounts {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]domain.Account, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.acc)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out, nil
}
