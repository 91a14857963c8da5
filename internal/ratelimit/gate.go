package ratelimit

import (
	"sync"
	"time"

	"github.com/linglong/blog-admin/pkg/metrics"
)

// Attempt tracks failed logins for a single account.
type Attempt struct {
	FailedCount int
	LockedUntil time.Time // zero when not locked
	LastAttempt time.Time
}

// Gate is an in-memory credential gate guarding the login endpoint.
//
// Rules:
//   - after MaxAttempts consecutive failures the account locks for
//     LockoutDuration
//   - a successful login clears the record
//   - an expired lock is purged lazily on the next observation, no
//     background timer
//
// State is volatile and process-local; a restart forgets all attempts.
type Gate struct {
	mu          sync.Mutex
	maxAttempts int
	lockout     time.Duration
	attempts    map[string]*Attempt

	now func() time.Time // injectable for tests
}

// NewGate creates a credential gate. Non-positive arguments fall back to
// the defaults of 5 attempts and 30 minutes.
func NewGate(maxAttempts int, lockout time.Duration) *Gate {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if lockout <= 0 {
		lockout = 30 * time.Minute
	}
	return &Gate{
		maxAttempts: maxAttempts,
		lockout:     lockout,
		attempts:    make(map[string]*Attempt),
		now:         time.Now,
	}
}

// IsLocked reports whether the account is currently locked. An expired
// lock resets the record as a side effect.
func (g *Gate) IsLocked(username string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.attempts[username]
	if !ok || a.LockedUntil.IsZero() {
		return false
	}
	if g.now().Before(a.LockedUntil) {
		return true
	}
	delete(g.attempts, username)
	return false
}

// RecordFailure counts a failed login. The lock engages exactly on the
// attempt that reaches the configured maximum.
func (g *Gate) RecordFailure(username string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	a, ok := g.attempts[username]
	if !ok {
		g.attempts[username] = &Attempt{FailedCount: 1, LastAttempt: now}
		return
	}
	a.FailedCount++
	a.LastAttempt = now
	if a.FailedCount >= g.maxAttempts && a.LockedUntil.IsZero() {
		a.LockedUntil = now.Add(g.lockout)
		metrics.AccountLockouts.Inc()
	}
}

// RecordSuccess clears any failure record for the account.
func (g *Gate) RecordSuccess(username string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, username)
}

// RemainingAttempts returns how many failures are left before lockout,
// floored at zero.
func (g *Gate) RemainingAttempts(username string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.attempts[username]
	if !ok {
		return g.maxAttempts
	}
	remaining := g.maxAttempts - a.FailedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LockoutExpiry returns the time the current lock expires. The second
// return is false when the account holds no active lock.
func (g *Gate) LockoutExpiry(username string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.attempts[username]
	if !ok || a.LockedUntil.IsZero() {
		return time.Time{}, false
	}
	return a.LockedUntil, true
}
