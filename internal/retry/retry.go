// Package retry implements a small exponential-backoff retry wrapper,
// adapted from the teacher's generic operation retrier for one purpose
// here: absorbing transient filesystem errors in the Channel Cache's
// debounced atomic save (§4.4) without dropping the write outright.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// Operation is a unit of work that may fail transiently.
type Operation func(ctx context.Context) error

// Config controls attempt count and backoff shape.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	OnRetry      func(attempt int, err error, nextDelay time.Duration)
	RetryIf      func(err error) bool
}

// Option mutates a Config built from DefaultConfig.
type Option func(*Config)

// DefaultConfig returns three attempts with a short doubling backoff,
// sized for the sub-second transient I/O hiccups this package targets, not
// for network calls.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		Multiplier:   2.0,
	}
}

// WithMaxAttempts overrides the attempt count.
func WithMaxAttempts(n int) Option {
	return func(c *Config) { c.MaxAttempts = n }
}

// WithInitialDelay overrides the first retry's delay.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) { c.InitialDelay = d }
}

// WithRetryIf restricts retrying to errors matching pred; nil (the
// default) retries every error Operation returns.
func WithRetryIf(pred func(error) bool) Option {
	return func(c *Config) { c.RetryIf = pred }
}

// WithOnRetry installs a callback invoked before each retry's sleep, for
// logging.
func WithOnRetry(f func(attempt int, err error, nextDelay time.Duration)) Option {
	return func(c *Config) { c.OnRetry = f }
}

// Do runs op, retrying on failure per cfg until it succeeds, ctx is
// canceled, or attempts are exhausted. It returns the last error on
// exhaustion.
func Do(ctx context.Context, op Operation, opts ...Option) error {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if cfg.RetryIf != nil && !cfg.RetryIf(lastErr) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(lastErr, ctx.Err())
		case <-timer.C:
		}

		delay = time.Duration(math.Min(float64(cfg.MaxDelay), float64(delay)*cfg.Multiplier))
	}

	return lastErr
}
