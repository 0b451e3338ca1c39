package auth

import (
	"sync"
	"time"
)

// attemptRecord tracks failed logins from one address.
type attemptRecord struct {
	count   int
	resetAt time.Time
}

// RateLimiter protects the login endpoint from brute force attempts by
// tracking failures per client IP. After maxAttempts failures inside the
// window, the address is blocked for blockFor.
//
// Thread-safe.
type RateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]attemptRecord
	maxAttempts int
	window      time.Duration
	blockFor    time.Duration
}

// NewRateLimiter creates a limiter. Typical values: 5 attempts per minute,
// 5 minute block.
func NewRateLimiter(maxAttempts int, window, blockFor time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts:    make(map[string]attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		blockFor:    blockFor,
	}
}

// Allow reports whether the address may attempt a login, and how long the
// block lasts when it may not.
func (r *RateLimiter) Allow(ip string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.attempts[ip]
	if !ok || time.Now().After(record.resetAt) {
		return true, 0
	}
	if record.count >= r.maxAttempts {
		return false, time.Until(record.resetAt)
	}
	return true, 0
}

// RecordFailure counts one failed login for the address. Hitting the limit
// extends the reset time to the block duration.
func (r *RateLimiter) RecordFailure(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	record, ok := r.attempts[ip]
	if !ok || now.After(record.resetAt) {
		r.attempts[ip] = attemptRecord{count: 1, resetAt: now.Add(r.window)}
		return
	}

	record.count++
	if record.count >= r.maxAttempts {
		record.resetAt = now.Add(r.blockFor)
	}
	r.attempts[ip] = record
}

// Reset clears the record for an address after a successful login.
func (r *RateLimiter) Reset(ip string) {
	r.mu.Lock()
	delete(r.attempts, ip)
	r.mu.Unlock()
}

// Cleanup drops expired records and returns how many were removed.
func (r *RateLimiter) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := time.Now()
	for ip, record := range r.attempts {
		if now.After(record.resetAt) {
			delete(r.attempts, ip)
			removed++
		}
	}
	return removed
}
