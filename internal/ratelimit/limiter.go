// Package ratelimit gates backend requests with a sliding window, an
// adaptive backoff multiplier and a cooldown after quota signals.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/nguyentantai21042004/digest-flow/internal/clock"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 60
	DefaultMinInterval = time.Second
	DefaultMaxInterval = 10 * time.Second

	minCooldown = 5 * time.Second

	successDecay = 0.95
	errorGrowth  = 1.5
	quotaGrowth  = 2.0
)

// Config tunes a Limiter. Zero fields take the defaults above.
type Config struct {
	Window      time.Duration
	MaxRequests int
	MinInterval time.Duration
	// MaxInterval bounds the quota cooldown and, in seconds, the
	// backoff multiplier.
	MaxInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.MinInterval <= 0 {
		c.MinInterval = DefaultMinInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultMaxInterval
	}
	return c
}

// Snapshot is a read-only copy of the limiter state.
type Snapshot struct {
	InWindow          int
	BackoffMultiplier float64
	QuotaExceeded     bool
	LastRequest       time.Time
}

// Limiter is safe for concurrent use. One instance should be shared by
// every summarization running in the process.
type Limiter struct {
	cfg   Config
	clock clock.Clock

	// slot serializes waiters so concurrent callers are spaced out.
	slot chan struct{}

	mu            sync.Mutex
	timestamps    []time.Time
	lastRequest   time.Time
	multiplier    float64
	quotaExceeded bool
}

// New creates a Limiter. A nil clock means the system clock.
func New(cfg Config, clk clock.Clock) *Limiter {
	if clk == nil {
		clk = clock.Real()
	}
	return &Limiter{
		cfg:        cfg.withDefaults(),
		clock:      clk,
		slot:       make(chan struct{}, 1),
		multiplier: 1.0,
	}
}

// Wait blocks until one request may be issued, then records it.
// If ctx ends first, Wait returns its error and records nothing.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.slot }()

	// select picks at random when both cases are ready.
	if err := ctx.Err(); err != nil {
		return err
	}

	// Window capacity first.
	for {
		wait := l.windowWait()
		if wait <= 0 {
			break
		}
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	if cooldown, ok := l.pendingCooldown(); ok {
		if err := l.clock.Sleep(ctx, cooldown); err != nil {
			return err
		}
		l.mu.Lock()
		l.quotaExceeded = false
		l.mu.Unlock()
	} else if wait := l.intervalWait(); wait > 0 {
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.clock.Now()
	l.lastRequest = now
	l.timestamps = append(l.timestamps, now)
	l.mu.Unlock()

	return nil
}

// windowWait prunes old timestamps and returns how long until the
// oldest one leaves the window when the window is full.
func (l *Limiter) windowWait() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.prune(now)
	if len(l.timestamps) < l.cfg.MaxRequests {
		return 0
	}
	return l.timestamps[0].Add(l.cfg.Window).Sub(now)
}

// prune must be called with mu held.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.cfg.Window)
	keep := 0
	for keep < len(l.timestamps) && !l.timestamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[keep:]...)
	}
}

func (l *Limiter) pendingCooldown() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.quotaExceeded {
		return 0, false
	}
	return max(minCooldown, l.cfg.MaxInterval), true
}

func (l *Limiter) intervalWait() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastRequest.IsZero() {
		return 0
	}
	target := time.Duration(float64(l.cfg.MinInterval) * l.multiplier)
	return max(0, target-l.clock.Now().Sub(l.lastRequest))
}

// ReportSuccess decays the backoff multiplier toward 1.0.
func (l *Limiter) ReportSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.multiplier = max(1.0, l.multiplier*successDecay)
}

// ReportError grows the backoff multiplier.
func (l *Limiter) ReportError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.multiplier = min(l.maxMultiplier(), l.multiplier*errorGrowth)
}

// ReportQuotaExceeded arms the cooldown for the next Wait and grows
// the multiplier faster than a generic error.
func (l *Limiter) ReportQuotaExceeded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quotaExceeded = true
	l.multiplier = min(l.maxMultiplier(), l.multiplier*quotaGrowth)
}

func (l *Limiter) maxMultiplier() float64 {
	return max(1.0, l.cfg.MaxInterval.Seconds())
}

// Snapshot returns the current state.
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.clock.Now())
	return Snapshot{
		InWindow:          len(l.timestamps),
		BackoffMultiplier: l.multiplier,
		QuotaExceeded:     l.quotaExceeded,
		LastRequest:       l.lastRequest,
	}
}
