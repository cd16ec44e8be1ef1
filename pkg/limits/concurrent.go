package limits

import (
	"sync/atomic"
)

// ConcurrentLimiter caps the number of simultaneous in-flight requests.
// It is a lock-free counting semaphore built on atomic operations.
type ConcurrentLimiter struct {
	limit   int64
	current int64
}

// NewConcurrentLimiter creates a limiter allowing at most limit
// simultaneous requests.
func NewConcurrentLimiter(limit int) *ConcurrentLimiter {
	return &ConcurrentLimiter{limit: int64(limit)}
}

// Acquire attempts to take a concurrency slot. A successful Acquire
// must be paired with Release:
//
//	if limiter.Acquire() {
//	    defer limiter.Release()
//	    // handle request
//	}
func (cl *ConcurrentLimiter) Acquire() bool {
	current := atomic.AddInt64(&cl.current, 1)
	if current > cl.limit {
		atomic.AddInt64(&cl.current, -1)
		return false
	}
	return true
}

// Release returns a slot taken by a successful Acquire.
func (cl *ConcurrentLimiter) Release() {
	atomic.AddInt64(&cl.current, -1)
}

// Current returns the number of in-flight requests.
func (cl *ConcurrentLimiter) Current() int64 {
	return atomic.LoadInt64(&cl.current)
}

// Remaining returns the number of free slots.
func (cl *ConcurrentLimiter) Remaining() int64 {
	remaining := cl.limit - atomic.LoadInt64(&cl.current)
	if remaining < 0 {
		return 0
	}
	return remaining
}
