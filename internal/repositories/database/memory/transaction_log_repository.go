package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
)

// TransactionLogRepository keeps the deposit and withdrawal log in memory.
type TransactionLogRepository struct {
	mu  sync.RWMutex
	txs map[uint32]domain.Transaction
}

// NewTransactionLogRepository creates an empty in-memory log.
func NewTransactionLogRepository() *TransactionLogRepository {
	return &TransactionLogRepository{txs: make(map[uint32]domain.Transaction)}
}

var (
	_ portsrepo.TransactionLogRepositoryFacade = (*TransactionLogRepository)(nil)
	_ portsrepo.TransactionIDLister            = (*TransactionLogRepository)(nil)
)

// Insert stores tx unless its id is already taken.
func (r *TransactionLogRepository) Insert(ctx context.Context, tx domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewRepositoryError("insert transaction", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.txs[tx.TxID]; ok {
		return fmt.Errorf("%w: tx %d", apperrors.ErrDuplicateTransaction, tx.TxID)
	}
	r.txs[tx.TxID] = tx
	return nil
}

// FindTransactionByID returns a copy of the logged transaction.
func (r *TransactionLogRepository) FindTransactionByID(ctx context.Context, txID uint32) (*domain.Transaction, error) {
	r.mu.RLock()
	tx, ok := r.txs[txID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tx %d", apperrors.ErrNotFound, txID)
	}
	return &tx, nil
}

// UpdateDisputeState performs a compare-and-set on the dispute state.
func (r *TransactionLogRepository) UpdateDisputeState(ctx context.Context, txID uint32, from, to domain.DisputeState) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewRepositoryError("update dispute state", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[txID]
	if !ok {
		return fmt.Errorf("%w: tx %d", apperrors.ErrNotFound, txID)
	}
	if tx.DisputeState != from {
		return fmt.Errorf("%w: tx %d is %s, expected %s", apperrors.ErrInvalidTransition, txID, tx.DisputeState, from)
	}
	tx.DisputeState = to
	r.txs[txID] = tx
	return nil
}

// TransactionIDs lists every logged id.
func (r *TransactionLogRepository) TransactionIDs(ctx context.Context) ([]uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint32, 0, len(r.txs))
	for id := range r.txs {
		ids = append(ids, id)
	}
	return ids, nil
}
