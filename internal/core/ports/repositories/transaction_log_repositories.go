package repositories

import (
	"context"

	"github.com/SscSPs/payments_engine/internal/core/domain"
)

// TransactionLogReader defines read operations for logged transactions
type TransactionLogReader interface {
	// FindTransactionByID returns a copy of the transaction or apperrors.ErrNotFound.
	FindTransactionByID(ctx context.Context, txID uint32) (*domain.Transaction, error)
}

// TransactionLogWriter defines write operations for logged transactions
type TransactionLogWriter interface {
	// Insert appends a transaction. An existing id yields apperrors.ErrDuplicateTransaction.
	Insert(ctx context.Context, tx domain.Transaction) error

	// UpdateDisputeState moves txID from one dispute state to another. It fails
	// with apperrors.ErrInvalidTransition when the stored state is not from.
	UpdateDisputeState(ctx context.Context, txID uint32, from, to domain.DisputeState) error
}

// TransactionLogRepositoryFacade combines all transaction-log repository interfaces
type TransactionLogRepositoryFacade interface {
	TransactionLogReader
	TransactionLogWriter
}

// TransactionIDLister is implemented by backends that can enumerate logged ids.
// It is used to warm in-process indexes on start-up.
type TransactionIDLister interface {
	TransactionIDs(ctx context.Context) ([]uint32, error)
}
