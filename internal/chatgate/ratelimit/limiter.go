// Package ratelimit implements the two-tier sliding-window admission
// controller that gates chat exchanges. It counts exact event timestamps in
// a trailing window at two scopes, service-wide and per-user, evicting
// expired entries on every access so no window outlives its limit.
//
// This is deliberately not a token bucket: denial metadata (retry_after,
// current usage) must be derived from the actual surviving events, and the
// global/user precedence is externally observable.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Scope is the granularity at which a limit was enforced.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeUser   Scope = "user"
)

// Config is one window: at most Limit admitted events per trailing Window.
type Config struct {
	Limit  int
	Window time.Duration
}

// Default limits, matching the service's published policy.
var (
	DefaultGlobal = Config{Limit: 100, Window: time.Minute}
	DefaultUser   = Config{Limit: 10, Window: time.Minute}
)

// DeniedError is returned by TryAdmit when either window is full. It carries
// everything a caller needs to back off correctly.
type DeniedError struct {
	Scope        Scope
	RetryAfter   time.Duration // until the window's oldest entry expires
	CurrentUsage int
	Limit        int
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("ratelimit: %s limit exceeded (%d/%d, retry after %s)",
		e.Scope, e.CurrentUsage, e.Limit, e.RetryAfter)
}

// Usage is a read-only view of one window.
type Usage struct {
	Current   int           `json:"current"`
	Limit     int           `json:"limit"`
	Remaining int           `json:"remaining"`
	Window    time.Duration `json:"-"`
}

// Status reports both scopes for one user.
type Status struct {
	Global Usage
	User   Usage
}

// window is one per-user event sequence. gone marks windows the janitor has
// unlinked from the map; lookups that lose that race retry.
type window struct {
	mu     sync.Mutex
	stamps []time.Time
	gone   bool
}

// Limiter owns one global window plus one window per user key. The global
// window's read-modify-write is serialized against all callers; each user
// window is serialized only against callers sharing its key.
//
// Lock order is always users-map, then user window, then global window.
type Limiter struct {
	global Config
	user   Config
	now    func() time.Time

	globalMu  sync.Mutex
	globalWin []time.Time

	mu        sync.Mutex // guards users and lastSweep
	users     map[string]*window
	lastSweep time.Time
}

const sweepInterval = 5 * time.Minute

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(global, user Config, opts ...Option) *Limiter {
	l := &Limiter{
		global: global,
		user:   user,
		now:    time.Now,
		users:  make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// TryAdmit decides whether one event for key may proceed right now, and
// records it if so. The whole evaluation happens against a single "now"
// snapshot with both window locks held, so two concurrent callers can never
// both squeeze past a full window. A denial records nothing.
//
// The global window is checked first: once the service is saturated, callers
// are denied with scope "global" even if their own budget has headroom.
func (l *Limiter) TryAdmit(key string) error {
	now := l.now()

	uw := l.userWindow(key)
	defer uw.mu.Unlock()
	uw.stamps = evict(uw.stamps, now, l.user.Window)

	l.globalMu.Lock()
	defer l.globalMu.Unlock()
	l.globalWin = evict(l.globalWin, now, l.global.Window)

	if len(l.globalWin) >= l.global.Limit {
		return &DeniedError{
			Scope:        ScopeGlobal,
			RetryAfter:   retryAfter(l.globalWin, l.global.Window, now),
			CurrentUsage: len(l.globalWin),
			Limit:        l.global.Limit,
		}
	}

	if len(uw.stamps) >= l.user.Limit {
		return &DeniedError{
			Scope:        ScopeUser,
			RetryAfter:   retryAfter(uw.stamps, l.user.Window, now),
			CurrentUsage: len(uw.stamps),
			Limit:        l.user.Limit,
		}
	}

	l.globalWin = append(l.globalWin, now)
	uw.stamps = append(uw.stamps, now)
	return nil
}

// Status reports current usage for both scopes without recording anything.
// It still purges expired entries, which is idempotent and unobservable
// through this interface.
func (l *Limiter) Status(key string) Status {
	now := l.now()

	uw := l.userWindow(key)
	defer uw.mu.Unlock()
	uw.stamps = evict(uw.stamps, now, l.user.Window)

	l.globalMu.Lock()
	defer l.globalMu.Unlock()
	l.globalWin = evict(l.globalWin, now, l.global.Window)

	return Status{
		Global: usage(len(l.globalWin), l.global),
		User:   usage(len(uw.stamps), l.user),
	}
}

// userWindow returns the window for key with its mutex held. The caller must
// unlock it.
func (l *Limiter) userWindow(key string) *window {
	for {
		l.mu.Lock()
		w, ok := l.users[key]
		if !ok {
			w = &window{}
			l.users[key] = w
		}
		l.maybeSweep()
		l.mu.Unlock()

		w.mu.Lock()
		if !w.gone {
			return w
		}
		// Lost a race with the janitor; the map entry was replaced.
		w.mu.Unlock()
	}
}

// maybeSweep drops user windows that are empty after eviction so the map
// stays bounded by the set of recently active users. Caller holds l.mu.
func (l *Limiter) maybeSweep() {
	now := l.now()
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, w := range l.users {
		if !w.mu.TryLock() {
			continue // busy window is by definition not idle
		}
		w.stamps = evict(w.stamps, now, l.user.Window)
		if len(w.stamps) == 0 {
			w.gone = true
			delete(l.users, key)
		}
		w.mu.Unlock()
	}
}

// evict drops timestamps at or before now-window. Entries are appended in
// time order, so we only need to find the survival point.
func evict(stamps []time.Time, now time.Time, windowDur time.Duration) []time.Time {
	cutoff := now.Add(-windowDur)
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0:0], stamps[i:]...)
}

// retryAfter is the time until the window's oldest surviving entry expires.
// It tightens as entries age out, rather than quoting a fixed window.
func retryAfter(stamps []time.Time, windowDur time.Duration, now time.Time) time.Duration {
	if len(stamps) == 0 {
		return 0
	}
	d := stamps[0].Add(windowDur).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func usage(current int, cfg Config) Usage {
	return Usage{
		Current:   current,
		Limit:     cfg.Limit,
		Remaining: max(0, cfg.Limit-current),
		Window:    cfg.Window,
	}
}
