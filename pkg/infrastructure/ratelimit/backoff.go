package ratelimit

import (
	"errors"
	"math/rand/v2"
	"time"
)

const (
	// DefaultMinInterval is the minimum spacing between the start of two upstream requests.
	DefaultMinInterval = 300 * time.Millisecond
	// DefaultMaxAttempts caps how often a rate-limited work unit is attempted.
	DefaultMaxAttempts = 3
	// DefaultBackoffBase is the first exponential backoff step.
	DefaultBackoffBase = time.Second
	// DefaultMaxJitter bounds the random jitter added to every backoff.
	DefaultMaxJitter = 200 * time.Millisecond
)

// Throttled is implemented by errors that may carry an upstream throttling signal.
type Throttled interface {
	error
	IsRateLimited() bool
	// RetryHint is the provider-suggested wait, or 0 when none was given.
	RetryHint() time.Duration
}

// Policy computes how long to wait before retrying a failed work unit.
type Policy struct {
	Base      time.Duration
	MaxJitter time.Duration
	// Floor is the smallest delay ever returned; it keeps retries on the pacing grid.
	Floor time.Duration
	// Rand returns a value in [0, n). Nil uses math/rand/v2.
	Rand func(n int64) int64
}

// DefaultPolicy is 1s exponential base, up to 200ms jitter and a 300ms floor.
func DefaultPolicy() Policy {
	return Policy{
		Base:      DefaultBackoffBase,
		MaxJitter: DefaultMaxJitter,
		Floor:     DefaultMinInterval,
	}
}

// IsRateLimited reports whether err is a rate-limit class failure.
func IsRateLimited(err error) bool {
	var t Throttled
	return errors.As(err, &t) && t.IsRateLimited()
}

// BaseDelay is the delay before jitter and floor: the provider hint when one exists,
// otherwise Base * 2^(attempt-1).
func (p Policy) BaseDelay(err error, attempt int) time.Duration {
	var t Throttled
	if errors.As(err, &t) && t.IsRateLimited() {
		if hint := t.RetryHint(); hint > 0 {
			return hint
		}
	}

	if attempt < 1 {
		attempt = 1
	}
	return p.Base << (attempt - 1)
}

// Delay is BaseDelay plus uniform jitter in [0, MaxJitter), never below Floor.
func (p Policy) Delay(err error, attempt int) time.Duration {
	d := p.BaseDelay(err, attempt) + p.jitter()
	if d < p.Floor {
		d = p.Floor
	}
	return d
}

func (p Policy) jitter() time.Duration {
	if p.MaxJitter <= 0 {
		return 0
	}
	n := int64(p.MaxJitter)
	if p.Rand != nil {
		return time.Duration(p.Rand(n))
	}
	return time.Duration(rand.Int64N(n))
}
