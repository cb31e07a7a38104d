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

// PgxAccountRepository stores accounts in PostgreSQL. Update serializes per
// client with SELECT ... FOR UPDATE inside a transaction that is handed to the
// update func through its context.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const selectAccountColumns = `SELECT client_id, available, held, locked, created_at, last_updated_at FROM accounts`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(&m.ClientID, &m.Available, &m.Held, &m.Locked, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m)
}

func (r *PgxAccountRepository) ensureAccount(ctx context.Context, clientID uint16) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO accounts (client_id) VALUES ($1) ON CONFLICT (client_id) DO NOTHING`,
		int32(clientID))
	return err
}

// GetOrCreate returns the account, inserting an empty row on first reference.
func (r *PgxAccountRepository) GetOrCreate(ctx context.Context, clientID uint16) (domain.Account, error) {
	if err := r.ensureAccount(ctx, clientID); err != nil {
		return domain.Account{}, apperrors.NewRepositoryError("create account", err)
	}
	acc, err := scanAccount(r.conn(ctx).QueryRow(ctx, selectAccountColumns+` WHERE client_id = $1`, int32(clientID)))
	if err != nil {
		return domain.Account{}, apperrors.NewRepositoryError("get account", err)
	}
	return acc, nil
}

// FindAccountByClientID retrieves an account by its client id.
func (r *PgxAccountRepository) FindAccountByClientID(ctx context.Context, clientID uint16) (domain.Account, error) {
	acc, err := scanAccount(r.conn(ctx).QueryRow(ctx, selectAccountColumns+` WHERE client_id = $1`, int32(clientID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, fmt.Errorf("%w: account %d", apperrors.ErrNotFound, clientID)
		}
		return domain.Account{}, apperrors.NewRepositoryError("find account", err)
	}
	return acc, nil
}

// ListAccounts returns every account ordered by client id.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.conn(ctx).Query(ctx, selectAccountColumns+` ORDER BY client_id`)
	if err != nil {
		return nil, apperrors.NewRepositoryError("list accounts", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewRepositoryError("scan account", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewRepositoryError("list accounts", err)
	}
	return accounts, nil
}

// Update locks the client's row, runs fn and writes the result in the same
// transaction. Transaction-log calls made by fn with the context it receives
// join that transaction.
func (r *PgxAccountRepository) Update(ctx context.Context, clientID uint16, fn portsrepo.AccountUpdateFunc) (err error) {
	// created outside the locking transaction so a rejected update still
	// leaves the account behind
	if err := r.ensureAccount(ctx, clientID); err != nil {
		return apperrors.NewRepositoryError("create account", err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil && err == nil {
			err = rbErr
		}
	}()

	current, err := scanAccount(tx.QueryRow(ctx, selectAccountColumns+` WHERE client_id = $1 FOR UPDATE`, int32(clientID)))
	if err != nil {
		return apperrors.NewRepositoryError("lock account", err)
	}

	next, err := fn(withTx(ctx, tx), current)
	if err != nil {
		return err
	}
	if next.ClientID != clientID {
		return fmt.Errorf("%w: update for client %d returned client %d", apperrors.ErrValidation, clientID, next.ClientID)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	m := mapping.ToModelAccount(next)
	_, err = tx.Exec(ctx,
		`UPDATE accounts SET available = $2, held = $3, locked = $4, last_updated_at = now() WHERE client_id = $1`,
		m.ClientID, m.Available, m.Held, m.Locked)
	if err != nil {
		return apperrors.NewRepositoryError("update account", err)
	}

	return r.Commit(ctx, tx)
}
