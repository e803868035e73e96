package ratelimit

import (
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(key string, limit int, window time.Duration) Decision
	Close() error
}

type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

// Remaining returns how many more requests fit in the current window.
func (d Decision) Remaining(limit int) int {
	if r := limit - d.Count; r > 0 {
		return r
	}
	return 0
}

type entry struct {
	count     int
	windowEnd time.Time
}

type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryLimiter() *MemoryLimiter {
	l := &MemoryLimiter{
		entries: make(map[string]entry),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

func (l *MemoryLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}

	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.windowEnd) {
		e = entry{count: 1, windowEnd: now.Add(window)}
		l.entries[key] = e
		return Decision{Allowed: true, Count: e.count, WindowEnd: e.windowEnd}
	}
	if e.count >= limit {
		return Decision{Allowed: false, Count: e.count, WindowEnd: e.windowEnd}
	}
	e.count++
	l.entries[key] = e
	return Decision{Allowed: true, Count: e.count, WindowEnd: e.windowEnd}
}

func (l *MemoryLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(l.now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *MemoryLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if !now.Before(e.windowEnd) {
			delete(l.entries, key)
		}
	}
}

func (l *MemoryLimiter) Close() error {
	l.once.Do(func() {
		close(l.stopCh)
	})
	return nil
}
