// Package resilient puts circuit breakers in front of the ledger repositories.
// Only storage failures count against a breaker; rejections raised by the
// domain pass through untouched. An open breaker fails fast with
// apperrors.ErrRepositoryFailure.
package resilient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/payments_engine/internal/apperrors"
	"github.com/SscSPs/payments_engine/internal/platform/metrics"
	"github.com/sony/gobreaker"
)

type breaker struct {
	cb      *gobreaker.CircuitBreaker
	name    string
	timeout time.Duration
	logger  *slog.Logger
}

func newBreaker(name string, cfg Config, collector metrics.Collector, logger *slog.Logger) *breaker {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("breaker", name))

	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultConfig().MaxFailures
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, apperrors.ErrRepositoryFailure)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			collector.RecordCircuitState(name, state)
		},
	}

	return &breaker{
		cb:      gobreaker.NewCircuitBreaker(settings),
		name:    name,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// do runs fn through the breaker with the configured timeout applied to ctx.
func (b *breaker) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn("circuit breaker open - request rejected", slog.String("operation", op))
		return apperrors.NewRepositoryError(op, err)
	}
	// an answer that arrived is kept even if the deadline passed meanwhile
	if apperrors.IsRejection(err) || errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperrors.ErrRepositoryFailure) {
		b.logger.Warn("repository call timed out", slog.String("operation", op), slog.Duration("timeout", b.timeout))
		return apperrors.NewRepositoryError(op, ctx.Err())
	}
	return err
}

// State reports the breaker's current state.
func (b *breaker) State() metrics.CircuitState {
	switch b.cb.State() {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}
