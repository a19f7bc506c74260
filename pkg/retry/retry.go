// Package retry runs an operation until it succeeds, fails permanently or
// runs out of attempts, sleeping between attempts.
//
// Strategies:
//   - Exponential: delay doubles each attempt (1s, 2s, 4s, ...)
//   - Linear: delay grows linearly (1s, 2s, 3s, ...)
//   - Constant: delay stays the same
//
// An operation can end retrying with Stop, or ask for a specific delay
// with After (used for HTTP 429 Retry-After).
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy defines the backoff algorithm.
type Strategy int

const (
	// Exponential doubles the delay each attempt: InitDelay * 2^attempt.
	Exponential Strategy = iota
	// Linear increases the delay linearly: InitDelay * (attempt+1).
	Linear
	// Constant uses the same delay between every attempt.
	Constant
)

// Config controls retry behaviour.
type Config struct {
	MaxAttempts int           // Total attempts including the first. 0 means fn is never called.
	InitDelay   time.Duration // Base delay before the first retry.
	MaxDelay    time.Duration // Upper bound on any single delay.
	Strategy    Strategy
	Jitter      bool // Add up to ±25% random jitter to computed delays.

	// OnRetry, if set, is called before each sleep with the 0-based
	// attempt that failed, its error and the delay about to be slept.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig returns 3 attempts with exponential backoff from 500ms to
// 10s and jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Strategy:    Exponential,
		Jitter:      true,
	}
}

// StopError marks an error as permanent.
type StopError struct {
	Err error
}

func (e *StopError) Error() string { return e.Err.Error() }
func (e *StopError) Unwrap() error { return e.Err }

// Stop wraps err so that Do returns it without further retries.
func Stop(err error) error {
	return &StopError{Err: err}
}

// AfterError asks Do to wait Delay before the next attempt instead of the
// computed backoff. Delay is still capped at Config.MaxDelay.
type AfterError struct {
	Err   error
	Delay time.Duration
}

func (e *AfterError) Error() string { return e.Err.Error() }
func (e *AfterError) Unwrap() error { return e.Err }

// After wraps err with a server-requested delay.
func After(err error, d time.Duration) error {
	return &AfterError{Err: err, Delay: d}
}

// sleeper lets tests skip real waiting.
type sleeper interface {
	sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do calls fn up to cfg.MaxAttempts times. It returns nil on the first
// success, the unwrapped error of a Stop, ctx.Err() when the context ends,
// or the last error once attempts are exhausted.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	return doWithSleeper(ctx, cfg, fn, realSleeper{})
}

func doWithSleeper(ctx context.Context, cfg Config, fn func(ctx context.Context) error, s sleeper) error {
	if cfg.MaxAttempts <= 0 {
		return nil
	}

	var lastErr error
	for attempt := range cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var stop *StopError
		if errors.As(lastErr, &stop) {
			return stop.Err
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := CalcDelay(cfg, attempt)
		var after *AfterError
		if errors.As(lastErr, &after) && after.Delay > 0 {
			delay = min(after.Delay, cfg.MaxDelay)
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, delay)
		}
		if err := s.sleep(ctx, delay); err != nil {
			return err
		}
	}

	var after *AfterError
	if errors.As(lastErr, &after) {
		return after.Err
	}
	return lastErr
}

// CalcDelay computes the sleep before retrying after the given 0-based
// attempt.
func CalcDelay(cfg Config, attempt int) time.Duration {
	var delay time.Duration
	switch cfg.Strategy {
	case Exponential:
		delay = cfg.InitDelay * time.Duration(math.Pow(2, float64(attempt)))
	case Linear:
		delay = cfg.InitDelay * time.Duration(attempt+1)
	case Constant:
		delay = cfg.InitDelay
	}
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter && delay > 0 {
		if quarter := int64(delay) / 4; quarter > 0 {
			j := time.Duration(rand.Int64N(quarter))
			if rand.IntN(2) == 0 {
				delay += j
			} else {
				delay -= j
			}
		}
	}
	return delay
}
