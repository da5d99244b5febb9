// Package lock serializes runs that read, decide and write the seating
// tables, so two allocator invocations never plan from the same snapshot.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLocked is returned when another run holds the key.
var ErrLocked = errors.New("lock is held by another run")

// Locker hands out named, expiring locks.
type Locker interface {
	// Acquire takes key for at most ttl. The returned release func is safe
	// to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, ErrLocked
	}
	until := now.Add(ttl)
	l.held[key] = until

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// a lock that expired and was re-taken belongs to someone else
			if l.held[key].Equal(until) {
				delete(l.held, key)
			}
		})
	}, nil
}
