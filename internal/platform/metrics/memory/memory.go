package memory

import (
	"sync"
	"time"

	"github.com/SscSPs/payments_engine/internal/platform/metrics"
)

// Collector keeps counters in memory. It is meant for tests.
type Collector struct {
	mu sync.Mutex

	Operations     map[string]int // keyed by "opType/reason"
	StreamsStarted int
	StreamsDone    int
	StreamsFailed  int
	Records        int
	CircuitStates  []metrics.CircuitState
	MirrorWrites   int
	MirrorFailures int
}

// NewCollector creates an empty in-memory collector.
func NewCollector() *Collector {
	return &Collector{Operations: make(map[string]int)}
}

var _ metrics.Collector = (*Collector)(nil)

func (c *Collector) RecordOperation(opType string, reason string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reason == "" {
		reason = "accepted"
	}
	c.Operations[opType+"/"+reason]++
}

func (c *Collector) RecordStreamStarted(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StreamsStarted++
}

func (c *Collector) RecordStreamFinished(kind string, records int, failed bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StreamsDone++
	c.Records += records
	if failed {
		c.StreamsFailed++
	}
}

func (c *Collector) RecordCircuitState(name string, state metrics.CircuitState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CircuitStates = append(c.CircuitStates, state)
}

func (c *Collector) RecordMirrorWrite(success bool, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MirrorWrites++
	if !success {
		c.MirrorFailures++
	}
}

// Operation returns the count recorded for opType and reason.
func (c *Collector) Operation(opType, reason string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if reason == "" {
		reason = "accepted"
	}
	return c.Operations[opType+"/"+reason]
}

// Snapshot returns the stream counters under the lock.
func (c *Collector) Snapshot() (started, done, failed, records int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.StreamsStarted, c.StreamsDone, c.StreamsFailed, c.Records
}
