// Package ratelimit throttles requests to the SonarQube server. It wraps a
// golang.org/x/time/rate token bucket and slows down when the server
// answers 429, recovering gradually on success.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate (0 = unlimited).
	RequestsPerSecond float64

	// Burst allows up to N requests at once (default 1).
	Burst int

	// SlowdownFactor divides the rate on each throttle (default 2).
	SlowdownFactor float64

	// MinRate is the floor the rate can be slowed to (default 0.5 req/s).
	MinRate float64

	// RecoveryRate multiplies the rate on each success, up to the
	// configured rate (default 1.1).
	RecoveryRate float64
}

// unlimitedCeiling is the recovered rate at which an unlimited limiter
// stops limiting again.
const unlimitedCeiling = 16

// Limiter is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	cfg      Config
	lim      *rate.Limiter
	current  float64
	throttle int
	slowed   bool
}

// New returns a limiter for cfg. A nil *Limiter and a limiter with
// RequestsPerSecond 0 both never wait, until Throttled is called on the
// latter.
func New(cfg Config) *Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.SlowdownFactor <= 1 {
		cfg.SlowdownFactor = 2
	}
	if cfg.MinRate <= 0 {
		cfg.MinRate = 0.5
	}
	if cfg.RecoveryRate <= 1 {
		cfg.RecoveryRate = 1.1
	}
	l := &Limiter{cfg: cfg, current: cfg.RequestsPerSecond}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	l.lim = rate.NewLimiter(limit, cfg.Burst)
	return l
}

// Wait blocks until a request may be sent or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.lim.Wait(ctx)
}

// Throttled lowers the rate after the server rejected a request.
func (l *Limiter) Throttled() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.throttle++
	l.slowed = true
	if l.current <= 0 {
		// unlimited so far: start from a conservative rate
		l.current = 4
	}
	l.current = max(l.current/l.cfg.SlowdownFactor, l.cfg.MinRate)
	l.lim.SetLimit(rate.Limit(l.current))
}

// Succeeded raises the rate back toward the configured value.
func (l *Limiter) Succeeded() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.slowed {
		return
	}
	next := l.current * l.cfg.RecoveryRate
	switch {
	case l.cfg.RequestsPerSecond > 0 && next >= l.cfg.RequestsPerSecond:
		next = l.cfg.RequestsPerSecond
		l.slowed = false
	case l.cfg.RequestsPerSecond == 0 && next >= unlimitedCeiling:
		l.current = 0
		l.slowed = false
		l.lim.SetLimit(rate.Inf)
		return
	}
	l.current = next
	l.lim.SetLimit(rate.Limit(next))
}

// Stats is a snapshot of the limiter state.
type Stats struct {
	Rate      float64 // current requests per second, 0 when unlimited
	Throttles int
}

// Stats returns the current state.
func (l *Limiter) Stats() Stats {
	if l == nil {
		return Stats{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Rate: l.current, Throttles: l.throttle}
}
