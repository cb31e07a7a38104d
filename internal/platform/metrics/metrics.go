package metrics

import (
	"time"
)

// Collector defines the interface for collecting ledger metrics.
// Implementations can export metrics to various backends.
type Collector interface {
	// RecordOperation records one applied or rejected operation. An empty
	// reason means the operation was accepted.
	RecordOperation(opType string, reason string, duration time.Duration)

	// RecordStreamStarted and RecordStreamFinished bracket a stream.
	RecordStreamStarted(kind string)
	RecordStreamFinished(kind string, records int, failed bool, duration time.Duration)

	// RecordCircuitState reports a circuit breaker transition.
	RecordCircuitState(name string, state CircuitState)

	// RecordMirrorWrite records one write to the account mirror.
	RecordMirrorWrite(success bool, duration time.Duration)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector is the default collector when metrics are not needed.
type NoOpCollector struct{}

func (NoOpCollector) RecordOperation(opType string, reason string, duration time.Duration) {}
func (NoOpCollector) RecordStreamStarted(kind string)                                      {}
func (NoOpCollector) RecordStreamFinished(kind string, records int, failed bool, duration time.Duration) {
}
func (NoOpCollector) RecordCircuitState(name string, state CircuitState)     {}
func (NoOpCollector) RecordMirrorWrite(success bool, duration time.Duration) {}

var _ Collector = NoOpCollector{}
