package memory

import (
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
)

// NewRepositoryProvider wires a fresh in-memory ledger.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        NewAccountRepository(),
		TransactionLogRepo: NewTransactionLogRepository(),
	}
}
