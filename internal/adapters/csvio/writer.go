package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/core/ports"
)

// SnapshotHeader is the first row of every snapshot.
var SnapshotHeader = []string{"client", "available", "held", "total", "locked"}

// Writer renders account snapshots as CSV.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

var _ ports.AccountWriter = (*Writer)(nil)

// WriteAccounts writes the header followed by one row per account, in the
// order given.
func (w *Writer) WriteAccounts(accounts []domain.Account) error {
	cw := csv.NewWriter(w.w)
	if err := cw.Write(SnapshotHeader); err != nil {
		return err
	}
	for _, acc := range accounts {
		row := []string{
			strconv.FormatUint(uint64(acc.ClientID), 10),
			acc.Available.String(),
			acc.Held.String(),
			acc.Total().String(),
			strconv.FormatBool(acc.Locked),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
