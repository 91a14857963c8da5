package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fixed clock the tests can move forward
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestGate(maxAttempts int, lockout time.Duration) (*Gate, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g := NewGate(maxAttempts, lockout)
	g.now = clock.Now
	return g, clock
}

func TestGate_LocksAfterMaxFailures(t *testing.T) {
	g, _ := newTestGate(5, 30*time.Minute)

	for i := 0; i < 4; i++ {
		g.RecordFailure("admin")
		require.False(t, g.IsLocked("admin"), "should stay open before the fifth failure")
	}
	require.Equal(t, 1, g.RemainingAttempts("admin"))

	g.RecordFailure("admin")
	require.True(t, g.IsLocked("admin"))
	require.Equal(t, 0, g.RemainingAttempts("admin"))

	expiry, ok := g.LockoutExpiry("admin")
	require.True(t, ok)
	require.Equal(t, 30*time.Minute, expiry.Sub(g.now()))
}

func TestGate_LockExpiresLazily(t *testing.T) {
	g, clock := newTestGate(5, 30*time.Minute)

	for i := 0; i < 5; i++ {
		g.RecordFailure("admin")
	}
	require.True(t, g.IsLocked("admin"))

	clock.Advance(29 * time.Minute)
	require.True(t, g.IsLocked("admin"))

	clock.Advance(2 * time.Minute)
	require.False(t, g.IsLocked("admin"))
	// record was purged, counter back to full
	require.Equal(t, 5, g.RemainingAttempts("admin"))
	_, ok := g.LockoutExpiry("admin")
	require.False(t, ok)
}

func TestGate_SuccessResets(t *testing.T) {
	g, _ := newTestGate(5, 30*time.Minute)

	g.RecordFailure("admin")
	g.RecordFailure("admin")
	require.Equal(t, 3, g.RemainingAttempts("admin"))

	g.RecordSuccess("admin")
	require.Equal(t, 5, g.RemainingAttempts("admin"))
	require.False(t, g.IsLocked("admin"))
}

func TestGate_RemainingAttemptsMonotonic(t *testing.T) {
	g, _ := newTestGate(3, time.Minute)

	prev := g.RemainingAttempts("admin")
	require.Equal(t, 3, prev)
	for i := 0; i < 6; i++ {
		g.RecordFailure("admin")
		cur := g.RemainingAttempts("admin")
		require.LessOrEqual(t, cur, prev)
		require.GreaterOrEqual(t, cur, 0)
		prev = cur
	}
	require.Equal(t, 0, prev)
}

func TestGate_IdentitiesAreIndependent(t *testing.T) {
	g, _ := newTestGate(2, time.Minute)

	g.RecordFailure("alice")
	g.RecordFailure("alice")
	require.True(t, g.IsLocked("alice"))
	require.False(t, g.IsLocked("bob"))
	require.Equal(t, 2, g.RemainingAttempts("bob"))
}

func TestGate_ConcurrentFailuresDoNotLoseUpdates(t *testing.T) {
	g, _ := newTestGate(1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.RecordFailure("admin")
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1000-500, g.RemainingAttempts("admin"))
}

func TestGate_DefaultsApplied(t *testing.T) {
	g := NewGate(0, 0)
	require.Equal(t, 5, g.RemainingAttempts("anyone"))
}
