package services

import (
	"context"

	"github.com/SscSPs/payments_engine/internal/core/domain"
)

// TransactionSvc applies single operations to the ledger.
type TransactionSvc interface {
	// Apply validates and applies op. It returns nil when the operation was
	// accepted, a rejection error when it was refused, or an error wrapping
	// apperrors.ErrRepositoryFailure when storage failed.
	Apply(ctx context.Context, op domain.Operation) error
}
