package services_test

import (
	"context"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetOrCreate(ctx context.Context, clientID uint16) (domain.Account, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByClientID(ctx context.Context, clientID uint16) (domain.Account, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Update runs fn against the account returned by the "Current" expectation
// when one is set, so mocked updates still exercise the service's logic.
func (m *MockAccountRepository) Update(ctx context.Context, clientID uint16, fn portsrepo.AccountUpdateFunc) error {
	args := m.Called(ctx, clientID, fn)
	if acc, ok := args.Get(0).(domain.Account); ok {
		if _, err := fn(ctx, acc); err != nil {
			return err
		}
	}
	return args.Error(1)
}

// MockTransactionLogRepository is a mock type for the TransactionLogRepositoryFacade interface
type MockTransactionLogRepository struct {
	mock.Mock
}

func (m *MockTransactionLogRepository) Insert(ctx context.Context, tx domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionLogRepository) FindTransactionByID(ctx context.Context, txID uint32) (*domain.Transaction, error) {
	args := m.Called(ctx, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionLogRepository) UpdateDisputeState(ctx context.Context, txID uint32, from, to domain.DisputeState) error {
	args := m.Called(ctx, txID, from, to)
	return args.Error(0)
}

// MockTransactionSvc is a mock type for the TransactionSvc interface
type MockTransactionSvc struct {
	mock.Mock
}

func (m *MockTransactionSvc) Apply(ctx context.Context, op domain.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}
