package llm

import (
	"math/rand"
	"time"
)

// RetryConfig bounds how long one endpoint is retried before the client
// moves on to the capability's fallback chain.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per endpoint.
	MaxAttempts int

	// BackoffBase is the pause after the first failed attempt.
	BackoffBase time.Duration

	// BackoffMultiplier grows the pause on each further retry.
	BackoffMultiplier float64

	// MaxBackoff caps a single pause.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns defaults tuned for interactive turns: a
// customer is waiting on the reply, so backoff stays short and the client
// hands over to the fallback model rather than stalling the conversation.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        4 * time.Second,
	}
}

// Backoff returns the pause after the given attempt (1-based), exponential
// with +/-25% jitter so simultaneous clients don't retry in lockstep.
func (rc RetryConfig) Backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= rc.BackoffMultiplier
	}

	backoff := time.Duration(float64(rc.BackoffBase) * multiplier)
	if backoff > rc.MaxBackoff {
		backoff = rc.MaxBackoff
	}

	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}
