package ratelimit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source shared by a test and its limiter.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(global, user Config) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	return New(global, user, WithClock(clock.Now)), clock
}

func TestTryAdmitUserLimit(t *testing.T) {
	l, _ := newTestLimiter(Config{Limit: 100, Window: time.Minute}, Config{Limit: 10, Window: time.Minute})

	for i := 0; i < 10; i++ {
		require.NoError(t, l.TryAdmit("alice"), "admission %d should succeed", i+1)
	}

	err := l.TryAdmit("alice")
	require.Error(t, err)

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, ScopeUser, denied.Scope)
	require.Equal(t, 10, denied.CurrentUsage)
	require.Equal(t, 10, denied.Limit)
}

func TestTryAdmitGlobalLimit(t *testing.T) {
	l, _ := newTestLimiter(Config{Limit: 5, Window: time.Minute}, Config{Limit: 10, Window: time.Minute})

	// Spread admissions across identities so no single user window fills.
	users := []string{"a", "b", "c", "d", "e"}
	for _, u := range users {
		require.NoError(t, l.TryAdmit(u))
	}

	// A fresh user with an empty window is still denied, and the scope says
	// why.
	err := l.TryAdmit("newcomer")
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	require.Equal(t, ScopeGlobal, denied.Scope)
	require.Equal(t, 5, denied.CurrentUsage)
	require.Equal(t, 5, denied.Limit)
}

func TestGlobalCheckedBeforeUser(t *testing.T) {
	// Both windows are full; the denial must name the global scope.
	l, _ := newTestLimiter(Config{Limit: 2, Window: time.Minute}, Config{Limit: 2, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))
	require.NoError(t, l.TryAdmit("alice"))

	var denied *DeniedError
	require.ErrorAs(t, l.TryAdmit("alice"), &denied)
	require.Equal(t, ScopeGlobal, denied.Scope)
}

func TestEvictionFreesBudget(t *testing.T) {
	l, clock := newTestLimiter(DefaultGlobal, Config{Limit: 2, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))
	require.NoError(t, l.TryAdmit("alice"))
	require.Error(t, l.TryAdmit("alice"))

	// Just inside the window: the first stamp still counts.
	clock.Advance(59 * time.Second)
	require.Error(t, l.TryAdmit("alice"))

	// Past it: both stamps were recorded at the same instant, so both
	// expire together and the full budget returns.
	clock.Advance(2 * time.Second)
	require.NoError(t, l.TryAdmit("alice"))
	require.NoError(t, l.TryAdmit("alice"))
	require.Error(t, l.TryAdmit("alice"))
}

func TestWindowBoundaryIsExclusive(t *testing.T) {
	// A stamp exactly window-old no longer counts.
	l, clock := newTestLimiter(DefaultGlobal, Config{Limit: 1, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))

	clock.Advance(time.Minute)
	require.NoError(t, l.TryAdmit("alice"))
}

func TestDenialRecordsNothing(t *testing.T) {
	l, _ := newTestLimiter(DefaultGlobal, Config{Limit: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		require.NoError(t, l.TryAdmit("alice"))
	}

	// Hammer the full window; usage must not budge.
	for i := 0; i < 20; i++ {
		require.Error(t, l.TryAdmit("alice"))
	}

	st := l.Status("alice")
	require.Equal(t, 3, st.User.Current)
	require.Equal(t, 3, st.Global.Current)
}

func TestRetryAfterTightensAsEntriesAge(t *testing.T) {
	l, clock := newTestLimiter(DefaultGlobal, Config{Limit: 1, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))

	var denied *DeniedError
	require.ErrorAs(t, l.TryAdmit("alice"), &denied)
	require.Equal(t, time.Minute, denied.RetryAfter)

	clock.Advance(45 * time.Second)
	require.ErrorAs(t, l.TryAdmit("alice"), &denied)
	require.Equal(t, 15*time.Second, denied.RetryAfter)
}

func TestRetryAfterTracksOldestSurvivor(t *testing.T) {
	l, clock := newTestLimiter(DefaultGlobal, Config{Limit: 2, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))
	clock.Advance(30 * time.Second)
	require.NoError(t, l.TryAdmit("alice"))

	clock.Advance(10 * time.Second) // first stamp is 40s old, second 10s

	var denied *DeniedError
	require.ErrorAs(t, l.TryAdmit("alice"), &denied)
	require.Equal(t, 20*time.Second, denied.RetryAfter)

	// Once the oldest ages out a slot opens, so the quoted wait was exact.
	clock.Advance(20 * time.Second)
	require.NoError(t, l.TryAdmit("alice"))
}

func TestStatusDoesNotSpendBudget(t *testing.T) {
	l, _ := newTestLimiter(DefaultGlobal, DefaultUser)

	require.NoError(t, l.TryAdmit("alice"))

	for i := 0; i < 50; i++ {
		_ = l.Status("alice")
	}

	st := l.Status("alice")
	require.Equal(t, 1, st.User.Current)
	require.Equal(t, DefaultUser.Limit-1, st.User.Remaining)
	require.Equal(t, 1, st.Global.Current)
}

func TestStatusForUnknownUser(t *testing.T) {
	l, _ := newTestLimiter(DefaultGlobal, DefaultUser)

	st := l.Status("never-seen")
	require.Equal(t, 0, st.User.Current)
	require.Equal(t, DefaultUser.Limit, st.User.Remaining)
	require.Equal(t, DefaultUser.Limit, st.User.Limit)
}

func TestStatusReflectsEviction(t *testing.T) {
	l, clock := newTestLimiter(DefaultGlobal, Config{Limit: 5, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))
	require.NoError(t, l.TryAdmit("alice"))

	clock.Advance(61 * time.Second)

	st := l.Status("alice")
	require.Equal(t, 0, st.User.Current)
	require.Equal(t, 0, st.Global.Current)
}

func TestUsersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(DefaultGlobal, Config{Limit: 2, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))
	require.NoError(t, l.TryAdmit("alice"))
	require.Error(t, l.TryAdmit("alice"))

	// Bob's window is untouched by Alice's saturation.
	require.NoError(t, l.TryAdmit("bob"))
	require.NoError(t, l.TryAdmit("bob"))
}

func TestConcurrentAdmitNeverOvershoots(t *testing.T) {
	const limit = 10
	l, _ := newTestLimiter(Config{Limit: 1000, Window: time.Minute}, Config{Limit: limit, Window: time.Minute})

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.TryAdmit("alice"); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(limit), admitted.Load())

	st := l.Status("alice")
	require.Equal(t, limit, st.User.Current)
}

func TestConcurrentAdmitLastSlot(t *testing.T) {
	// With exactly one slot left, concurrent callers race for it and
	// exactly one wins.
	const limit = 10
	l, _ := newTestLimiter(DefaultGlobal, Config{Limit: limit, Window: time.Minute})

	for i := 0; i < limit-1; i++ {
		require.NoError(t, l.TryAdmit("alice"))
	}

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.TryAdmit("alice"); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(1), admitted.Load())
}

func TestConcurrentGlobalNeverOvershoots(t *testing.T) {
	const limit = 25
	l, _ := newTestLimiter(Config{Limit: limit, Window: time.Minute}, Config{Limit: 1000, Window: time.Minute})

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			if err := l.TryAdmit(key); err == nil {
				admitted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(limit), admitted.Load())
}

func TestSweepDropsIdleWindows(t *testing.T) {
	l, clock := newTestLimiter(DefaultGlobal, Config{Limit: 10, Window: time.Minute})

	require.NoError(t, l.TryAdmit("alice"))
	require.NoError(t, l.TryAdmit("bob"))

	// Long past both the window and the sweep interval; the next lookup
	// triggers the janitor.
	clock.Advance(10 * time.Minute)
	require.NoError(t, l.TryAdmit("carol"))

	l.mu.Lock()
	_, aliceKept := l.users["alice"]
	_, bobKept := l.users["bob"]
	_, carolKept := l.users["carol"]
	l.mu.Unlock()

	require.False(t, aliceKept)
	require.False(t, bobKept)
	require.True(t, carolKept)

	// A swept user starts over with a full budget.
	for i := 0; i < 10; i++ {
		require.NoError(t, l.TryAdmit("alice"))
	}
}

func TestDeniedErrorMessage(t *testing.T) {
	err := &DeniedError{
		Scope:        ScopeUser,
		RetryAfter:   30 * time.Second,
		CurrentUsage: 10,
		Limit:        10,
	}
	require.Equal(t, "ratelimit: user limit exceeded (10/10, retry after 30s)", err.Error())

	var target *DeniedError
	require.True(t, errors.As(err, &target))
}
