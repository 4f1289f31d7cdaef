package limiter

import "sync"

// InflightLimiter bounds the number of operations allowed to run at the
// same time. It exists to protect slow upstream collaborators (the
// summarization backend in particular) from being hammered by a burst
// of concurrent requests.
//
// Admission is non-blocking: callers that cannot acquire a slot are
// expected to reject their request immediately rather than queue.
type InflightLimiter interface {
	TryAcquire() bool
	Release()
	Inflight() int
}

type ConcurrentInflightLimiter struct {
	mu       sync.Mutex
	max      int
	inflight int
}

// NewConcurrentInflightLimiter creates a limiter admitting at most max
// concurrent holders. A max below 1 is treated as 1.
func NewConcurrentInflightLimiter(max int) *ConcurrentInflightLimiter {
	if max < 1 {
		max = 1
	}
	return &ConcurrentInflightLimiter{max: max}
}

func (l *ConcurrentInflightLimiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inflight >= l.max {
		return false
	}
	l.inflight++
	return true
}

// Release returns a slot. Releasing without a matching acquire is a
// caller bug; the count is clamped at zero so one misuse cannot grow
// capacity.
func (l *ConcurrentInflightLimiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inflight > 0 {
		l.inflight--
	}
}

func (l *ConcurrentInflightLimiter) Inflight() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.inflight
}
