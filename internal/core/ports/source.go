package ports

import (
	"context"

	"github.com/SscSPs/payments_engine/internal/core/domain"
)

// RecordSource yields decoded operations in arrival order.
//
// Next returns io.EOF once the source is exhausted. A *apperrors.DecodeError
// reports a single bad record; the source stays usable and the caller may keep
// reading. Any other error is a read failure and ends the stream.
type RecordSource interface {
	Next(ctx context.Context) (domain.Operation, error)
}

// AccountWriter renders a ledger snapshot.
type AccountWriter interface {
	WriteAccounts(accounts []domain.Account) error
}

// DescribedSource is implemented by sources that can say where their records
// come from. Name is specific, such as a file path or a remote address; Kind is
// a low-cardinality label such as "file" or "tcp".
type DescribedSource interface {
	RecordSource
	Name() string
	Kind() string
}
