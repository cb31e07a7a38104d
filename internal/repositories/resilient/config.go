package resilient

import "time"

// Config configures the circuit breakers placed in front of a repository.
type Config struct {
	// Timeout bounds every repository call. Zero disables it.
	Timeout time.Duration

	// MaxFailures is the number of consecutive storage failures that opens
	// the breaker.
	MaxFailures uint32

	// OpenTimeout is how long the breaker stays open before letting a probe
	// request through.
	OpenTimeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Timeout:     5 * time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
		MaxRequests: 1,
	}
}
