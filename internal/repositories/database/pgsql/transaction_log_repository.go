package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	"github.com/SscSPs/payments_engine/internal/models"
	"github.com/SscSPs/payments_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTransactionLogRepository stores deposits and withdrawals. Every method
// joins the transaction carried by ctx when there is one.
type PgxTransactionLogRepository struct {
	BaseRepository
}

func newPgxTransactionLogRepository(pool *pgxpool.Pool) *PgxTransactionLogRepository {
	return &PgxTransactionLogRepository{BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.TransactionLogRepositoryFacade = (*PgxTransactionLogRepository)(nil)
	_ portsrepo.TransactionIDLister            = (*PgxTransactionLogRepository)(nil)
)

// Insert appends tx to the log.
func (r *PgxTransactionLogRepository) Insert(ctx context.Context, tx domain.Transaction) error {
	m := mapping.ToModelTransaction(tx)
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO transactions (tx_id, client_id, kind, amount, dispute_state)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tx_id) DO NOTHING`,
		m.TxID, m.ClientID, m.Kind, m.Amount, m.DisputeState)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tx %d", apperrors.ErrDuplicateTransaction, tx.TxID)
		}
		return apperrors.NewRepositoryError("insert transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: tx %d", apperrors.ErrDuplicateTransaction, tx.TxID)
	}
	return nil
}

// FindTransactionByID retrieves a logged transaction.
func (r *PgxTransactionLogRepository) FindTransactionByID(ctx context.Context, txID uint32) (*domain.Transaction, error) {
	var m models.Transaction
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT tx_id, client_id, kind, amount, dispute_state, created_at, last_updated_at
		FROM transactions
		WHERE tx_id = $1`, int64(txID)).
		Scan(&m.TxID, &m.ClientID, &m.Kind, &m.Amount, &m.DisputeState, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: tx %d", apperrors.ErrNotFound, txID)
		}
		return nil, apperrors.NewRepositoryError("find transaction", err)
	}

	tx, err := mapping.ToDomainTransaction(m)
	if err != nil {
		return nil, apperrors.NewRepositoryError("find transaction", err)
	}
	return &tx, nil
}

// UpdateDisputeState moves txID from one state to another in a single
// conditional UPDATE.
func (r *PgxTransactionLogRepository) UpdateDisputeState(ctx context.Context, txID uint32, from, to domain.DisputeState) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE transactions
		SET dispute_state = $3, last_updated_at = now()
		WHERE tx_id = $1 AND dispute_state = $2`,
		int64(txID), string(from), string(to))
	if err != nil {
		return apperrors.NewRepositoryError("update dispute state", err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindTransactionByID(ctx, txID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: tx %d is not %s", apperrors.ErrInvalidTransition, txID, from)
	}
	return nil
}

// TransactionIDs lists every logged id.
func (r *PgxTransactionLogRepository) TransactionIDs(ctx context.Context) ([]uint32, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT tx_id FROM transactions`)
	if err != nil {
		return nil, apperrors.NewRepositoryError("list transaction ids", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uint32, error) {
		var id int64
		err := row.Scan(&id)
		return uint32(id), err
	})
	if err != nil {
		return nil, apperrors.NewRepositoryError("list transaction ids", err)
	}
	return ids, nil
}
