// Package csvio reads operation records from CSV and writes ledger snapshots
// back out as CSV.
package csvio

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/core/ports"
)

const (
	colType = iota
	colClient
	colTx
	colAmount
)

// Reader decodes `type,client,tx,amount` records. Fields are trimmed, the
// amount column may be missing for dispute, resolve and chargeback, blank
// lines are skipped and a leading header row is ignored. Each line is decoded
// on its own, so a malformed line never consumes the lines after it.
type Reader struct {
	src        *bufio.Reader
	line       int
	eof        bool
	name, kind string
	started    bool
}

var _ ports.DescribedSource = (*Reader)(nil)

// NewReader creates a Reader over r. name and kind describe the stream in logs
// and metrics.
func NewReader(r io.Reader, name, kind string) *Reader {
	return &Reader{src: bufio.NewReader(r), name: name, kind: kind}
}

func (r *Reader) Name() string { return r.name }
func (r *Reader) Kind() string { return r.kind }

// Next returns the next operation, io.EOF at the end of input, or a
// *apperrors.DecodeError for a record that could not be decoded.
func (r *Reader) Next(ctx context.Context) (domain.Operation, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Operation{}, err
		}

		if r.eof {
			return domain.Operation{}, io.EOF
		}
		text, err := r.src.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return domain.Operation{}, err
			}
			r.eof = true
			if text == "" {
				return domain.Operation{}, io.EOF
			}
		}
		r.line++
		line := r.line
		raw := strings.TrimRight(text, "\r\n")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		record, err := parseLine(raw)
		if err != nil {
			r.started = true
			return domain.Operation{}, apperrors.NewDecodeError(line, raw, err)
		}
		raw = strings.Join(record, ",")

		if !r.started {
			r.started = true
			if isHeader(record) {
				continue
			}
		}

		op, err := decodeRecord(record)
		if err != nil {
			return domain.Operation{}, apperrors.NewDecodeError(line, raw, err)
		}
		op.Line = line
		op.Raw = raw
		return op, nil
	}
}

// parseLine splits a single line into fields. A quote left open is an error
// for this line only.
func parseLine(text string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	record, err := cr.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, parseErr.Err
		}
		return nil, err
	}
	return record, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[colType]), "type")
}

func decodeRecord(record []string) (domain.Operation, error) {
	if len(record) < 3 || len(record) > 4 {
		return domain.Operation{}, fmt.Errorf("expected 3 or 4 fields, got %d", len(record))
	}

	opType, err := domain.ParseOperationType(record[colType])
	if err != nil {
		return domain.Operation{}, err
	}

	clientID, err := strconv.ParseUint(strings.TrimSpace(record[colClient]), 10, 16)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("invalid client id %q: %w", record[colClient], err)
	}

	txID, err := strconv.ParseUint(strings.TrimSpace(record[colTx]), 10, 32)
	if err != nil {
		return domain.Operation{}, fmt.Errorf("invalid tx id %q: %w", record[colTx], err)
	}

	op := domain.Operation{Type: opType, ClientID: uint16(clientID), TxID: uint32(txID)}
	if !opType.CarriesAmount() {
		return op, nil
	}

	if len(record) <= colAmount || strings.TrimSpace(record[colAmount]) == "" {
		return domain.Operation{}, fmt.Errorf("%s requires an amount", opType)
	}
	op.Amount, err = domain.ParseAmount(record[colAmount])
	if err != nil {
		return domain.Operation{}, err
	}
	return op, nil
}
