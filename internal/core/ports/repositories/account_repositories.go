package repositories

import (
	"context"

	"github.com/SscSPs/payments_engine/internal/core/domain"
)

// AccountUpdateFunc computes the next state of an account. Returning an error
// aborts the update and nothing is written. The context it receives carries the
// backend's unit of work.
type AccountUpdateFunc func(ctx context.Context, acc domain.Account) (domain.Account, error)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByClientID returns a copy of the account or apperrors.ErrNotFound.
	FindAccountByClientID(ctx context.Context, clientID uint16) (domain.Account, error)

	// ListAccounts returns every known account ordered by client id.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// GetOrCreate returns the account, creating an empty one on first reference.
	GetOrCreate(ctx context.Context, clientID uint16) (domain.Account, error)

	// Update runs fn as a single read-modify-write, serialized per client id.
	// The account is created first if it does not exist yet.
	Update(ctx context.Context, clientID uint16, fn AccountUpdateFunc) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
