package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/core/domain"
	"github.com/SscSPs/payments_engine/internal/core/ports"
	portsrepo "github.com/SscSPs/payments_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/middleware"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
	"github.com/google/uuid"
)

// Engine pulls operations from record streams and routes them to the state
// machine. Any number of streams may run concurrently against one Engine.
type Engine struct {
	BaseService
	transactions portssvc.TransactionSvc
	accounts     portsrepo.AccountReader
	metrics      metrics.Collector
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineMetrics sets the metrics collector.
func WithEngineMetrics(c metrics.Collector) EngineOption {
	return func(e *Engine) {
		e.metrics = c
	}
}

// NewEngine creates an Engine.
func NewEngine(transactions portssvc.TransactionSvc, accounts portsrepo.AccountReader, opts ...EngineOption) *Engine {
	e := &Engine{
		transactions: transactions,
		accounts:     accounts,
		metrics:      metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ portssvc.EngineSvcFacade = (*Engine)(nil)

// ProcessStream consumes src in arrival order. It returns the report together
// with a nil error at end of stream. A storage failure, a read failure or a
// done ctx stops this stream and is returned with the partial report.
func (e *Engine) ProcessStream(ctx context.Context, src ports.RecordSource) (report domain.StreamReport, err error) {
	name, kind := "stream", "stream"
	if ds, ok := src.(ports.DescribedSource); ok {
		name, kind = ds.Name(), ds.Kind()
	}

	streamID := uuid.NewString()
	logger := e.GetLogger(ctx).With(
		slog.String("stream_id", streamID),
		slog.String("source", name),
	)
	ctx = middleware.WithLogger(ctx, logger)

	report = domain.NewStreamReport(streamID, name, time.Now())
	e.metrics.RecordStreamStarted(kind)
	e.LogInfo(ctx, "Stream started")

	defer func() {
		report.FinishedAt = time.Now()
		e.metrics.RecordStreamFinished(kind, report.Records, err != nil, report.FinishedAt.Sub(report.StartedAt))
		attrs := []any{
			slog.Int("records", report.Records),
			slog.Int("accepted", report.Accepted),
			slog.Int("rejected", report.TotalRejected()),
		}
		if err != nil {
			e.LogError(ctx, err, "Stream aborted", attrs...)
			return
		}
		e.LogInfo(ctx, "Stream finished", attrs...)
	}()

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, fmt.Errorf("stream %s cancelled: %w", name, ctxErr)
		}

		op, readErr := src.Next(ctx)
		if errors.Is(readErr, io.EOF) {
			return report, nil
		}
		if readErr != nil {
			var decodeErr *apperrors.DecodeError
			if errors.As(readErr, &decodeErr) {
				report.RecordRejection(apperrors.ReasonDecode)
				e.metrics.RecordOperation("unknown", string(apperrors.ReasonDecode), 0)
				e.LogWarn(ctx, "Record rejected",
					slog.Int("line", decodeErr.Line),
					slog.String("raw", decodeErr.Raw),
					slog.String("reason", string(apperrors.ReasonDecode)),
					slog.String("detail", decodeErr.Err.Error()))
				continue
			}
			return report, fmt.Errorf("read stream %s: %w", name, readErr)
		}

		if applyErr := e.transactions.Apply(ctx, op); applyErr != nil {
			if !apperrors.IsRejection(applyErr) {
				return report, fmt.Errorf("apply %s at line %d: %w", op, op.Line, applyErr)
			}
			reason := apperrors.ReasonOf(applyErr)
			report.RecordRejection(reason)
			e.LogWarn(ctx, "Record rejected",
				slog.Int("line", op.Line),
				slog.String("raw", op.Raw),
				slog.String("reason", string(reason)),
				slog.String("detail", applyErr.Error()))
			continue
		}
		report.RecordAccepted()
	}
}

// Snapshot returns every known account ordered by client id.
func (e *Engine) Snapshot(ctx context.Context) ([]domain.Account, error) {
	return e.accounts.ListAccounts(ctx)
}

// GetAccount returns one account or apperrors.ErrNotFound.
func (e *Engine) GetAccount(ctx context.Context, clientID uint16) (domain.Account, error) {
	return e.accounts.FindAccountByClientID(ctx, clientID)
}
