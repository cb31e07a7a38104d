package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
)

// TransactionService is the ledger state machine. Each call to Apply is one
// atomic read-modify-write of the client's account; every check runs inside
// the update so a rejection never leaves partial state behind.
type TransactionService struct {
	BaseService
	accounts portsrepo.AccountWriter
	txLog    portsrepo.TransactionLogRepositoryFacade
	metrics  metrics.Collector
}

// TransactionServiceOption configures a TransactionService.
type TransactionServiceOption func(*TransactionService)

// WithTransactionMetrics sets the metrics collector.
func WithTransactionMetrics(c metrics.Collector) TransactionServiceOption {
	return func(s *TransactionService) {
		s.metrics = c
	}
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(
	accounts portsrepo.AccountWriter,
	txLog portsrepo.TransactionLogRepositoryFacade,
	opts ...TransactionServiceOption,
) *TransactionService {
	s := &TransactionService{
		accounts: accounts,
		txLog:    txLog,
		metrics:  metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.TransactionSvc = (*TransactionService)(nil)

// Apply validates op and applies it to the ledger.
func (s *TransactionService) Apply(ctx context.Context, op domain.Operation) error {
	start := time.Now()
	err := s.apply(ctx, op)
	s.metrics.RecordOperation(string(op.Type), string(apperrors.ReasonOf(err)), time.Since(start))

	if err != nil && !apperrors.IsRejection(err) {
		s.LogError(ctx, err, "Operation failed on storage",
			slog.String("type", string(op.Type)),
			slog.Uint64("tx", uint64(op.TxID)),
			slog.Uint64("client", uint64(op.ClientID)))
	}
	return err
}

func (s *TransactionService) apply(ctx context.Context, op domain.Operation) error {
	switch op.Type {
	case domain.OpDeposit:
		return s.applyMovement(ctx, op, domain.Deposit)
	case domain.OpWithdrawal:
		return s.applyMovement(ctx, op, domain.Withdrawal)
	case domain.OpDispute:
		return s.applyDisputeAction(ctx, op, domain.DisputeOpen)
	case domain.OpResolve:
		return s.applyDisputeAction(ctx, op, domain.DisputeNone)
	case domain.OpChargeback:
		return s.applyDisputeAction(ctx, op, domain.DisputeChargedBack)
	default:
		return fmt.Errorf("%w: unknown operation type %q", apperrors.ErrDecode, op.Type)
	}
}

// applyMovement handles deposits and withdrawals. The log entry is written
// last so that its duplicate check aborts the whole update.
func (s *TransactionService) applyMovement(ctx context.Context, op domain.Operation, kind domain.TransactionKind) error {
	return s.accounts.Update(ctx, op.ClientID, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
		if acc.Locked {
			return acc, fmt.Errorf("%w: client %d", apperrors.ErrAccountLocked, acc.ClientID)
		}
		if !op.Amount.IsPositive() {
			return acc, fmt.Errorf("%w: tx %d amount %s", apperrors.ErrNonPositiveAmount, op.TxID, op.Amount)
		}

		var (
			next domain.Account
			err  error
		)
		if kind == domain.Deposit {
			next, err = acc.Deposit(op.Amount)
		} else {
			next, err = acc.Withdraw(op.Amount)
		}
		if err != nil {
			return acc, err
		}

		if err := s.txLog.Insert(ctx, domain.NewTransaction(op.TxID, op.ClientID, kind, op.Amount)); err != nil {
			return acc, err
		}
		return next, nil
	})
}

// applyDisputeAction handles dispute, resolve and chargeback, moving the
// referenced deposit to the target dispute state.
func (s *TransactionService) applyDisputeAction(ctx context.Context, op domain.Operation, to domain.DisputeState) error {
	return s.accounts.Update(ctx, op.ClientID, func(ctx context.Context, acc domain.Account) (domain.Account, error) {
		tx, err := s.txLog.FindTransactionByID(ctx, op.TxID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return acc, fmt.Errorf("%w: tx %d", apperrors.ErrUnknownTransaction, op.TxID)
			}
			return acc, err
		}
		if tx.ClientID != op.ClientID {
			return acc, fmt.Errorf("%w: tx %d belongs to another client", apperrors.ErrUnknownTransaction, op.TxID)
		}
		if err := tx.Transition(to); err != nil {
			return acc, err
		}

		var next domain.Account
		switch to {
		case domain.DisputeOpen:
			next, err = acc.Hold(tx.Amount)
		case domain.DisputeNone:
			next, err = acc.Release(tx.Amount)
		case domain.DisputeChargedBack:
			next, err = acc.ChargeBack(tx.Amount)
		}
		if err != nil {
			return acc, err
		}

		if err := s.txLog.UpdateDisputeState(ctx, tx.TxID, tx.DisputeState, to); err != nil {
			return acc, err
		}
		return next, nil
	})
}
