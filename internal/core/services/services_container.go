package services

import (
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, collector metrics.Collector) *portssvc.ServiceContainer {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	transactions := NewTransactionService(
		repos.AccountRepo,
		repos.TransactionLogRepo,
		WithTransactionMetrics(collector),
	)

	return &portssvc.ServiceContainer{
		Transaction: transactions,
		Engine:      NewEngine(transactions, repos.AccountRepo, WithEngineMetrics(collector)),
	}
}
