package repository

import (
	"context"
	"sync"
	"time"
)

type rateWindow struct {
	count   int64
	resetAt time.Time
}

type memoryRateLimitRepository struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

func NewMemoryRateLimitRepository() RateLimitRepository {
	return newMemoryRateLimitRepository(time.Now)
}

func newMemoryRateLimitRepository(now func() time.Time) *memoryRateLimitRepository {
	return &memoryRateLimitRepository{
		windows: make(map[string]*rateWindow),
		now:     now,
	}
}

func (r *memoryRateLimitRepository) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[key]
	if !ok || !now.Before(w.resetAt) {
		r.evictLocked(now)
		w = &rateWindow{resetAt: now.Add(window)}
		r.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

func (r *memoryRateLimitRepository) evictLocked(now time.Time) {
	for key, w := range r.windows {
		if !now.Before(w.resetAt) {
			delete(r.windows, key)
		}
	}
}
