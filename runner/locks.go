package runner

import (
	"context"
	"sync"
)

// threadLocks hands out one context-aware lock per thread id. Entries are
// reference counted and dropped when no turn holds or waits for them.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*threadLock
}

type threadLock struct {
	ch   chan struct{}
	refs int
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*threadLock)}
}

// acquire blocks until the thread is free or ctx is done.
func (l *threadLocks) acquire(ctx context.Context, threadID string) (func(), error) {
	l.mu.Lock()
	tl, ok := l.locks[threadID]
	if !ok {
		tl = &threadLock{ch: make(chan struct{}, 1)}
		l.locks[threadID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	select {
	case tl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-tl.ch
				l.put(threadID, tl)
			})
		}, nil
	case <-ctx.Done():
		l.put(threadID, tl)
		return nil, ctx.Err()
	}
}

func (l *threadLocks) put(threadID string, tl *threadLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tl.refs--
	if tl.refs == 0 {
		delete(l.locks, threadID)
	}
}

func (l *threadLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
