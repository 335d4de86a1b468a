package auth

import (
	"sync"
	"time"

	"github.com/mrlokans/libris/internal/config"
)

// RateLimitConfig tunes the login limiter. Zero fields take the defaults
// noted next to them.
type RateLimitConfig struct {
	MaxAttempts     int           // failures before lockout (5)
	WindowDuration  time.Duration // failures older than this are forgotten (15m)
	LockoutDuration time.Duration // lockout length (30m)
	CleanupInterval time.Duration // sweep of stale entries (5m)
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.WindowDuration <= 0 {
		c.WindowDuration = 15 * time.Minute
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

// RateLimitConfigFrom maps the auth settings onto a RateLimitConfig.
func RateLimitConfigFrom(cfg config.Auth) RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	}
}

// loginFailures counts failed logins for one ip|username pair.
type loginFailures struct {
	count       int
	since       time.Time
	lockedUntil time.Time
}

// RateLimiter locks out an ip|username pair after too many failed logins.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	failures map[string]*loginFailures

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter and its background sweep. Call Stop when done.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		failures: make(map[string]*loginFailures),
		stop:     make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func limiterKey(ip, username string) string {
	return ip + "|" + username
}

// stale reports whether f no longer affects login decisions at now.
func (rl *RateLimiter) stale(f *loginFailures, now time.Time) bool {
	if !f.lockedUntil.IsZero() {
		return !now.Before(f.lockedUntil)
	}
	return now.Sub(f.since) > rl.cfg.WindowDuration
}

// Allow reports whether a login attempt may proceed; when it may not, the
// duration says how long the lockout still lasts.
func (rl *RateLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.failures[limiterKey(ip, username)]
	if !ok || rl.stale(f, now) || f.lockedUntil.IsZero() {
		return true, 0
	}
	return false, f.lockedUntil.Sub(now)
}

// RecordFailure counts a failed login. It reports whether the pair is now
// locked out and for how long.
func (rl *RateLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	key := limiterKey(ip, username)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	f, ok := rl.failures[key]
	if !ok || rl.stale(f, now) {
		f = &loginFailures{since: now}
		rl.failures[key] = f
	}
	f.count++
	if f.count < rl.cfg.MaxAttempts {
		return false, 0
	}
	f.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return true, rl.cfg.LockoutDuration
}

// RecordSuccess forgets earlier failures of the pair.
func (rl *RateLimiter) RecordSuccess(ip, username string) {
	rl.mu.Lock()
	delete(rl.failures, limiterKey(ip, username))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, f := range rl.failures {
		if rl.stale(f, now) {
			delete(rl.failures, key)
		}
	}
}
