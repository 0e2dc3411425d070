package reservation

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// showLocks hands out one FIFO lock per show. Entries are reference counted
// and dropped once no caller holds or waits on them.
type showLocks struct {
	mu    sync.Mutex
	locks map[int]*showLock
}

type showLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newShowLocks() *showLocks {
	return &showLocks{
		locks: make(map[int]*showLock),
	}
}

// acquire blocks until the lock for showID is held or ctx is done. Waiters are
// served in arrival order.
func (l *showLocks) acquire(ctx context.Context, showID int) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[showID]
	if !ok {
		lock = &showLock{sem: semaphore.NewWeighted(1)}
		l.locks[showID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	err := lock.sem.Acquire(ctx, 1)
	if err != nil {
		l.unref(showID, lock)
		return nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			lock.sem.Release(1)
			l.unref(showID, lock)
		})
	}

	return release, nil
}

func (l *showLocks) unref(showID int, lock *showLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, showID)
	}
}

func (l *showLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.locks)
}
