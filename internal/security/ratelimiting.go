// Package security provides rate limiting for the login, application
// submission, assignment run, and export endpoints.
package security

import (
	"sync"
	"time"
)

// Idle buckets and stale lockout records are dropped after this long.
const trackerMaxIdle = time.Hour

// RateLimiter is a token bucket limiter keyed by caller identifier
// (client IP for public endpoints, admin ID for console endpoints).
// Each identifier gets its own bucket of maxTokens, refilled one token
// per refillRate.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	maxTokens  int
	refillRate time.Duration

	janitor *time.Ticker
	done    chan struct{}
}

type bucket struct {
	tokens int
	last   time.Time // last refill
}

// NewRateLimiter creates a limiter allowing maxTokens requests per
// identifier, refilling one token every refillRate. A background janitor
// drops buckets idle longer than an hour.
//
// Example:
//
//	// 5 requests per minute
//	limiter := NewRateLimiter(5, 12*time.Second)
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		janitor:    time.NewTicker(10 * time.Minute),
		done:       make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow consumes one token for the identifier. Returns false when the
// bucket is empty, meaning the caller is over its limit.
func (rl *RateLimiter) Allow(identifier string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[identifier]
	if !ok {
		rl.buckets[identifier] = &bucket{tokens: rl.maxTokens - 1, last: now}
		return true
	}

	if refilled := int(now.Sub(b.last) / rl.refillRate); refilled > 0 {
		b.tokens += refilled
		if b.tokens > rl.maxTokens {
			b.tokens = rl.maxTokens
		}
		b.last = now
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

// Reset discards the bucket for an identifier, restoring its full allowance.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

// Stop shuts down the janitor goroutine.
func (rl *RateLimiter) Stop() {
	rl.janitor.Stop()
	close(rl.done)
}

func (rl *RateLimiter) sweep() {
	for {
		select {
		case <-rl.janitor.C:
			now := time.Now()
			rl.mu.Lock()
			for id, b := range rl.buckets {
				if now.Sub(b.last) > trackerMaxIdle {
					delete(rl.buckets, id)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// AccountLockout tracks failed login attempts per account and locks an
// account once the failure threshold is reached within the counting window.
type AccountLockout struct {
	mu       sync.Mutex
	accounts map[string]*attemptRecord

	threshold int
	duration  time.Duration
}

type attemptRecord struct {
	failures int
	last     time.Time
	until    time.Time // zero while unlocked
}

// NewAccountLockout creates a lockout tracker. After threshold failures
// the account stays locked for the given duration.
func NewAccountLockout(threshold int, duration time.Duration) *AccountLockout {
	return &AccountLockout{
		accounts:  make(map[string]*attemptRecord),
		threshold: threshold,
		duration:  duration,
	}
}

// RecordFailedAttempt counts one failed login. Returns true when this
// failure crossed the threshold and locked the account.
func (al *AccountLockout) RecordFailedAttempt(identifier string) bool {
	now := time.Now()

	al.mu.Lock()
	defer al.mu.Unlock()

	rec, ok := al.accounts[identifier]
	if !ok || now.Sub(rec.last) > 30*time.Minute {
		// Fresh account, or the failure streak went quiet long enough
		// to start over.
		al.accounts[identifier] = &attemptRecord{failures: 1, last: now}
		return false
	}

	rec.failures++
	rec.last = now
	if rec.failures >= al.threshold {
		rec.until = now.Add(al.duration)
		return true
	}
	return false
}

// IsLocked reports whether the account is currently locked. An expired
// lockout clears the record.
func (al *AccountLockout) IsLocked(identifier string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	rec, ok := al.accounts[identifier]
	if !ok || rec.until.IsZero() {
		return false
	}
	if time.Now().After(rec.until) {
		delete(al.accounts, identifier)
		return false
	}
	return true
}

// ResetAttempts clears the failure count for an account. Called on
// successful login.
func (al *AccountLockout) ResetAttempts(identifier string) {
	al.mu.Lock()
	defer al.mu.Unlock()
	delete(al.accounts, identifier)
}

// GetLockoutTimeRemaining returns how long the account stays locked,
// or zero when it is not locked.
func (al *AccountLockout) GetLockoutTimeRemaining(identifier string) time.Duration {
	al.mu.Lock()
	defer al.mu.Unlock()

	rec, ok := al.accounts[identifier]
	if !ok || rec.until.IsZero() {
		return 0
	}

	remaining := time.Until(rec.until)
	if remaining < 0 {
		return 0
	}
	return remaining
}
