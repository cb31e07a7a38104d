// Package bloomlog fronts a transaction log with a bloom filter so disputes
// that reference ids never seen are rejected without a backend round trip.
package bloomlog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	"github.com/bits-and-blooms/bloom/v3"
)

const (
	defaultExpectedItems = 1_000_000
	defaultFPRate        = 0.01
)

// TransactionLogRepository answers FindTransactionByID with ErrNotFound when
// the filter has never seen the id. Every other call goes to the wrapped log.
type TransactionLogRepository struct {
	inner  portsrepo.TransactionLogRepositoryFacade
	filter *bloom.BloomFilter
	mu     sync.RWMutex

	totalQueries   uint64
	bloomRejected  uint64
	falsePositives uint64
}

// New wraps inner with an empty filter sized for expectedItems ids.
func New(inner portsrepo.TransactionLogRepositoryFacade, expectedItems uint, falsePositiveRate float64) *TransactionLogRepository {
	if expectedItems == 0 {
		expectedItems = defaultExpectedItems
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = defaultFPRate
	}

	return &TransactionLogRepository{
		inner:  inner,
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

var _ portsrepo.TransactionLogRepositoryFacade = (*TransactionLogRepository)(nil)

func key(txID uint32) []byte {
	return binary.BigEndian.AppendUint32(make([]byte, 0, 4), txID)
}

// Warm loads every id already stored in the wrapped log. It must succeed
// before the repository serves a backend that already holds data.
func (r *TransactionLogRepository) Warm(ctx context.Context) (int, error) {
	lister, ok := r.inner.(portsrepo.TransactionIDLister)
	if !ok {
		return 0, fmt.Errorf("%w: transaction log cannot list ids", apperrors.ErrValidation)
	}
	ids, err := lister.TransactionIDs(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.filter.Add(key(id))
	}
	return len(ids), nil
}

// FindTransactionByID retrieves a logged transaction.
func (r *TransactionLogRepository) FindTransactionByID(ctx context.Context, txID uint32) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewRepositoryError("find transaction", err)
	}

	r.mu.Lock()
	r.totalQueries++
	if !r.filter.Test(key(txID)) {
		r.bloomRejected++
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: tx %d", apperrors.ErrNotFound, txID)
	}
	r.mu.Unlock()

	tx, err := r.inner.FindTransactionByID(ctx, txID)
	if errors.Is(err, apperrors.ErrNotFound) {
		r.mu.Lock()
		r.falsePositives++
		r.mu.Unlock()
	}
	return tx, err
}

// Insert records the id in the filter before handing the transaction on. A
// failed insert leaves a harmless false positive behind.
func (r *TransactionLogRepository) Insert(ctx context.Context, tx domain.Transaction) error {
	r.mu.Lock()
	r.filter.Add(key(tx.TxID))
	r.mu.Unlock()

	return r.inner.Insert(ctx, tx)
}

func (r *TransactionLogRepository) UpdateDisputeState(ctx context.Context, txID uint32, from, to domain.DisputeState) error {
	return r.inner.UpdateDisputeState(ctx, txID, from, to)
}

// Stats returns counters describing how well the filter is doing.
func (r *TransactionLogRepository) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		TotalQueries:   r.totalQueries,
		BloomRejected:  r.bloomRejected,
		FalsePositives: r.falsePositives,
		FilterCapacity: r.filter.Cap(),
	}
	if r.totalQueries > 0 {
		stats.RejectionRate = float64(r.bloomRejected) / float64(r.totalQueries)
		if queried := r.totalQueries - r.bloomRejected; queried > 0 {
			stats.FalsePositiveRate = float64(r.falsePositives) / float64(queried)
		}
	}
	return stats
}

// Stats holds bloom filter counters.
type Stats struct {
	TotalQueries      uint64
	BloomRejected     uint64
	FalsePositives    uint64
	RejectionRate     float64
	FalsePositiveRate float64
	FilterCapacity    uint
}
