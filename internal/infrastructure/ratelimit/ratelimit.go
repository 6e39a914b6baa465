// Package ratelimit implements fixed-window request budgets keyed by client.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Rule is a budget of Max requests per Period.
type Rule struct {
	Max    int
	Period time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window resets, rounded up to a second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	if rem := wait % time.Second; rem != 0 {
		wait += time.Second - rem
	}
	return wait
}

// Store counts hits per key within a window that ends at expiresAt.
type Store interface {
	Increment(ctx context.Context, key string, expiresAt time.Time) (int64, error)
}

// Limiter applies one Rule over a Store.
type Limiter struct {
	name  string
	rule  Rule
	store Store
	now   func() time.Time
}

// New builds a limiter. name separates the counters of different limiter
// classes sharing a store.
func New(name string, rule Rule, store Store) *Limiter {
	return &Limiter{name: name, rule: rule, store: store, now: time.Now}
}

// Name reports the limiter class.
func (l *Limiter) Name() string { return l.name }

// Allow records a hit for key. When the store fails the request is allowed
// and the error is returned for logging.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	start := now.Truncate(l.rule.Period)
	resetAt := start.Add(l.rule.Period)
	decision := Decision{Allowed: true, Limit: l.rule.Max, Remaining: l.rule.Max, ResetAt: resetAt}

	count, err := l.store.Increment(ctx, fmt.Sprintf("%s:%s:%d", l.name, key, start.Unix()), resetAt)
	if err != nil {
		return decision, fmt.Errorf("rate limit %s: %w", l.name, err)
	}

	decision.Remaining = l.rule.Max - int(count)
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	decision.Allowed = count <= int64(l.rule.Max)
	return decision, nil
}
