package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/core/services"
	metricsmem "github.com/SscSPs/payments_engine/internal/platform/metrics/memory"
	"github.com/SscSPs/payments_engine/internal/repositories/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func deposit(client uint16, tx uint32, amount string) domain.Operation {
	return domain.Operation{Type: domain.OpDeposit, ClientID: client, TxID: tx, Amount: domain.MustParseAmount(amount)}
}

func withdrawal(client uint16, tx uint32, amount string) domain.Operation {
	return domain.Operation{Type: domain.OpWithdrawal, ClientID: client, TxID: tx, Amount: domain.MustParseAmount(amount)}
}

func dispute(client uint16, tx uint32) domain.Operation {
	return domain.Operation{Type: domain.OpDispute, ClientID: client, TxID: tx}
}

func resolve(client uint16, tx uint32) domain.Operation {
	return domain.Operation{Type: domain.OpResolve, ClientID: client, TxID: tx}
}

func chargeback(client uint16, tx uint32) domain.Operation {
	return domain.Operation{Type: domain.OpChargeback, ClientID: client, TxID: tx}
}

// --- Test Suite Setup ---

type TransactionServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	accounts *memory.AccountRepository
	txLog    *memory.TransactionLogRepository
	metrics  *metricsmem.Collector
	service  *services.TransactionService
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.accounts = memory.NewAccountRepository()
	suite.txLog = memory.NewTransactionLogRepository()
	suite.metrics = metricsmem.NewCollector()
	suite.service = services.NewTransactionService(suite.accounts, suite.txLog, services.WithTransactionMetrics(suite.metrics))
}

func (suite *TransactionServiceTestSuite) apply(ops ...domain.Operation) {
	for _, op := range ops {
		suite.Require().NoError(suite.service.Apply(suite.ctx, op), op.String())
	}
}

func (suite *TransactionServiceTestSuite) account(clientID uint16) domain.Account {
	acc, err := suite.accounts.FindAccountByClientID(suite.ctx, clientID)
	suite.Require().NoError(err)
	return acc
}

func (suite *TransactionServiceTestSuite) assertBalances(clientID uint16, available, held string, locked bool) {
	acc := suite.account(clientID)
	suite.Equal(domain.MustParseAmount(available).String(), acc.Available.String(), "available")
	suite.Equal(domain.MustParseAmount(held).String(), acc.Held.String(), "held")
	suite.Equal(locked, acc.Locked, "locked")
	suite.NoError(acc.Validate())
}

// assertRejected applies op, expects the given rejection and checks that the
// ledger did not move.
func (suite *TransactionServiceTestSuite) assertRejected(op domain.Operation, want error) {
	before, _ := suite.accounts.ListAccounts(suite.ctx)
	err := suite.service.Apply(suite.ctx, op)
	suite.Require().ErrorIs(err, want, op.String())
	suite.True(apperrors.IsRejection(err))

	after, _ := suite.accounts.ListAccounts(suite.ctx)
	for _, acc := range before {
		for _, a := range after {
			if a.ClientID == acc.ClientID {
				suite.Equal(acc, a, "rejected %s must not change client %d", op, acc.ClientID)
			}
		}
	}
}

// --- Test Cases ---

func (suite *TransactionServiceTestSuite) TestDepositThenWithdrawal() {
	suite.apply(deposit(1, 1, "10"), withdrawal(1, 2, "3"))
	suite.assertBalances(1, "7", "0", false)
	suite.Equal(2, suite.metrics.Operation("deposit", "")+suite.metrics.Operation("withdrawal", ""))
}

func (suite *TransactionServiceTestSuite) TestWithdrawalUnderflow() {
	suite.apply(deposit(1, 1, "5"))
	suite.assertRejected(withdrawal(1, 2, "5.0001"), apperrors.ErrUnderflow)
	suite.assertBalances(1, "5", "0", false)
	suite.Equal(1, suite.metrics.Operation("withdrawal", string(apperrors.ReasonUnderflow)))

	_, err := suite.txLog.FindTransactionByID(suite.ctx, 2)
	suite.ErrorIs(err, apperrors.ErrNotFound, "rejected withdrawals are not logged")
}

func (suite *TransactionServiceTestSuite) TestWithdrawalOfEntireBalance() {
	suite.apply(deposit(1, 1, "2.5"), withdrawal(1, 2, "2.5"))
	suite.assertBalances(1, "0", "0", false)
}

func (suite *TransactionServiceTestSuite) TestNonPositiveAmounts() {
	suite.assertRejected(deposit(1, 1, "0"), apperrors.ErrNonPositiveAmount)
	suite.assertRejected(deposit(1, 2, "-1"), apperrors.ErrNonPositiveAmount)
	suite.assertRejected(withdrawal(1, 3, "0"), apperrors.ErrNonPositiveAmount)
	suite.assertBalances(1, "0", "0", false)
}

func (suite *TransactionServiceTestSuite) TestDuplicateTransactionIDs() {
	suite.apply(deposit(1, 1, "10"))
	suite.assertRejected(deposit(1, 1, "10"), apperrors.ErrDuplicateTransaction)
	suite.assertRejected(withdrawal(1, 1, "1"), apperrors.ErrDuplicateTransaction)
	suite.assertRejected(deposit(2, 1, "4"), apperrors.ErrDuplicateTransaction)
	suite.assertBalances(1, "10", "0", false)
	suite.assertBalances(2, "0", "0", false)
}

func (suite *TransactionServiceTestSuite) TestAccountCreatedOnFirstReference() {
	suite.assertRejected(dispute(42, 99), apperrors.ErrUnknownTransaction)
	suite.assertBalances(42, "0", "0", false)
}

func (suite *TransactionServiceTestSuite) TestDisputeResolveRoundTrip() {
	suite.apply(deposit(1, 1, "10"), deposit(1, 2, "5"))

	suite.apply(dispute(1, 1))
	suite.assertBalances(1, "5", "10", false)
	suite.Equal("15.0000", suite.account(1).Total().String())

	suite.apply(resolve(1, 1))
	suite.assertBalances(1, "15", "0", false)

	// a resolved deposit may be disputed again
	suite.apply(dispute(1, 1))
	suite.assertBalances(1, "5", "10", false)

	tx, err := suite.txLog.FindTransactionByID(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(domain.DisputeOpen, tx.DisputeState)
}

func (suite *TransactionServiceTestSuite) TestChargebackLocksAccount() {
	suite.apply(deposit(1, 1, "10"), deposit(1, 2, "3"), dispute(1, 1), chargeback(1, 1))
	suite.assertBalances(1, "3", "0", true)
	suite.Equal("3.0000", suite.account(1).Total().String())

	suite.assertRejected(deposit(1, 3, "1"), apperrors.ErrAccountLocked)
	suite.assertRejected(withdrawal(1, 4, "1"), apperrors.ErrAccountLocked)
	suite.assertRejected(dispute(1, 2), apperrors.ErrAccountLocked)
	suite.assertBalances(1, "3", "0", true)
}

func (suite *TransactionServiceTestSuite) TestLockedAccountKeepsOpenDispute() {
	suite.apply(deposit(1, 1, "10"), deposit(1, 2, "5"), dispute(1, 1), dispute(1, 2), chargeback(1, 1))
	suite.assertBalances(1, "0", "5", true)

	suite.assertRejected(resolve(1, 2), apperrors.ErrAccountLocked)
	suite.assertRejected(chargeback(1, 2), apperrors.ErrAccountLocked)
	suite.assertBalances(1, "0", "5", true)

	tx, err := suite.txLog.FindTransactionByID(suite.ctx, 2)
	suite.Require().NoError(err)
	suite.Equal(domain.DisputeOpen, tx.DisputeState)
}

func (suite *TransactionServiceTestSuite) TestChargedBackIsTerminal() {
	suite.apply(deposit(1, 1, "10"), dispute(1, 1), chargeback(1, 1))

	suite.assertRejected(resolve(1, 1), apperrors.ErrInvalidTransition)
	suite.assertRejected(dispute(1, 1), apperrors.ErrInvalidTransition)
	suite.assertRejected(chargeback(1, 1), apperrors.ErrInvalidTransition)

	tx, err := suite.txLog.FindTransactionByID(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(domain.DisputeChargedBack, tx.DisputeState)
}

func (suite *TransactionServiceTestSuite) TestInvalidTransitions() {
	suite.apply(deposit(1, 1, "10"), withdrawal(1, 2, "1"))

	suite.assertRejected(resolve(1, 1), apperrors.ErrInvalidTransition)
	suite.assertRejected(chargeback(1, 1), apperrors.ErrInvalidTransition)
	suite.assertRejected(dispute(1, 2), apperrors.ErrInvalidTransition)

	suite.apply(dispute(1, 1))
	suite.assertRejected(dispute(1, 1), apperrors.ErrInvalidTransition)
}

func (suite *TransactionServiceTestSuite) TestForeignTransaction() {
	suite.apply(deposit(1, 1, "10"))
	suite.assertRejected(dispute(2, 1), apperrors.ErrUnknownTransaction)
	suite.assertRejected(resolve(2, 1), apperrors.ErrUnknownTransaction)
	suite.assertRejected(chargeback(2, 1), apperrors.ErrUnknownTransaction)
	suite.assertBalances(1, "10", "0", false)
}

func (suite *TransactionServiceTestSuite) TestDisputeUnderflowAfterWithdrawal() {
	suite.apply(deposit(1, 1, "10"), withdrawal(1, 2, "8"))
	suite.assertRejected(dispute(1, 1), apperrors.ErrUnderflow)
	suite.assertBalances(1, "2", "0", false)

	tx, err := suite.txLog.FindTransactionByID(suite.ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(domain.DisputeNone, tx.DisputeState, "a rejected dispute leaves the log untouched")
}

func (suite *TransactionServiceTestSuite) TestRejectionIsIdempotent() {
	suite.apply(deposit(1, 1, "1"))
	for i := 0; i < 3; i++ {
		suite.assertRejected(withdrawal(1, 2, "2"), apperrors.ErrUnderflow)
	}
	suite.assertBalances(1, "1", "0", false)
	suite.Equal(3, suite.metrics.Operation("withdrawal", string(apperrors.ReasonUnderflow)))
}

func (suite *TransactionServiceTestSuite) TestUnknownOperationType() {
	err := suite.service.Apply(suite.ctx, domain.Operation{Type: "transfer", ClientID: 1, TxID: 1})
	suite.ErrorIs(err, apperrors.ErrDecode)
}

func (suite *TransactionServiceTestSuite) TestDecimalPrecisionIsExact() {
	suite.apply(deposit(1, 1, "0.1"), deposit(1, 2, "0.2"))
	suite.assertBalances(1, "0.3", "0", false)
	suite.apply(withdrawal(1, 3, "0.3"))
	suite.True(suite.account(1).Available.Equal(domain.Zero))
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

// --- Storage failures ---

func TestTransactionService_RepositoryFailureIsNotARejection(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	txLog := new(MockTransactionLogRepository)
	svc := services.NewTransactionService(accounts, txLog)

	storageErr := apperrors.NewRepositoryError("update account", assert.AnError)
	accounts.On("Update", ctx, uint16(1), mock.Anything).Return(nil, storageErr).Once()

	err := svc.Apply(ctx, deposit(1, 1, "10"))
	assert.ErrorIs(t, err, apperrors.ErrRepositoryFailure)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, apperrors.IsRejection(err))
	assert.Equal(t, apperrors.ReasonRepositoryFailure, apperrors.ReasonOf(err))
	accounts.AssertExpectations(t)
}

func TestTransactionService_LogFailureInsideUpdate(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	txLog := new(MockTransactionLogRepository)
	svc := services.NewTransactionService(accounts, txLog)

	storageErr := apperrors.NewRepositoryError("find transaction", assert.AnError)
	accounts.On("Update", ctx, uint16(1), mock.Anything).Return(domain.NewAccount(1), nil).Once()
	txLog.On("FindTransactionByID", ctx, uint32(7)).Return(nil, storageErr).Once()

	err := svc.Apply(ctx, dispute(1, 7))
	assert.ErrorIs(t, err, apperrors.ErrRepositoryFailure)
	assert.False(t, apperrors.IsRejection(err))
	accounts.AssertExpectations(t)
	txLog.AssertExpectations(t)
	txLog.AssertNotCalled(t, "UpdateDisputeState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionService_InsertIsLastStep(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountRepository)
	txLog := new(MockTransactionLogRepository)
	svc := services.NewTransactionService(accounts, txLog)

	accounts.On("Update", ctx, uint16(1), mock.Anything).Return(domain.NewAccount(1), nil).Once()

	err := svc.Apply(ctx, withdrawal(1, 3, "1"))
	assert.ErrorIs(t, err, apperrors.ErrUnderflow)
	txLog.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
