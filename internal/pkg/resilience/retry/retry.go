// Package retry wraps avast/retry-go behind a small interface with
// functional options. The default policy is exponential backoff, which fits
// the transient failures seen when polling blockchain nodes.
//
//	r := retry.New(retry.WithAttempts(5), retry.WithDelay(2*time.Second))
//	err := r.Execute(ctx, func() error { return fetchSomething() })
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry executes operations with automatic retry on failure.
type Retry interface {
	// Execute runs operation with the configured retry policy. The operation
	// should be idempotent: it may run several times. Cancellation of ctx
	// stops further attempts and returns the context error. Execute returns
	// nil once an attempt succeeds, or the (last) error after all attempts
	// fail.
	Execute(ctx context.Context, operation func() error) error
}

// config holds the retry policy knobs.
type config struct {
	attempts    uint          // maximum attempts, including the first
	delay       time.Duration // base delay before the first retry
	maxDelay    time.Duration // cap applied to backoff growth
	lastErrOnly bool          // return only the last error instead of all
}

// Option configures the retry policy. Options are applied in order.
type Option func(*config)

// retrier is the retry-go backed implementation of Retry.
type retrier struct {
	cfg config
}

var _ Retry = (*retrier)(nil)

// New builds a Retry with the given options. Defaults: 3 attempts, 1s base
// delay, 5s max delay, exponential backoff, last error only.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       1 * time.Second,
		maxDelay:    5 * time.Second,
		lastErrOnly: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{
		cfg: cfg,
	}
}

// Execute implements Retry.
func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
		retry.Context(ctx),
	}

	return retry.Do(operation, options...)
}

// WithAttempts sets the maximum number of attempts, including the initial one.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the base delay before the first retry; backoff grows from it.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithLastErrorOnly controls whether Execute returns only the final error
// (default) or an aggregate of every attempt's error.
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}
