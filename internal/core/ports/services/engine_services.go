package services

import (
	"context"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/core/ports"
)

// StreamProcessorSvc consumes record streams.
type StreamProcessorSvc interface {
	// ProcessStream reads src until it is exhausted, fails, or ctx is done.
	// Rejected and undecodable records are counted in the report and never end
	// the stream.
	ProcessStream(ctx context.Context, src ports.RecordSource) (domain.StreamReport, error)
}

// LedgerReaderSvc exposes the ledger state.
type LedgerReaderSvc interface {
	Snapshot(ctx context.Context) ([]domain.Account, error)
	GetAccount(ctx context.Context, clientID uint16) (domain.Account, error)
}

// EngineSvcFacade combines stream processing and ledger reads.
type EngineSvcFacade interface {
	StreamProcessorSvc
	LedgerReaderSvc
}
