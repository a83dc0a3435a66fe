package service

import (
	"context"
	"sync"
)

// LocalLocker hands out per-name locks inside a single process.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*nameLock
}

type nameLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*nameLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	nl, ok := l.locks[name]
	if !ok {
		nl = &nameLock{ch: make(chan struct{}, 1)}
		l.locks[name] = nl
	}
	nl.refs++
	l.mu.Unlock()

	select {
	case nl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(name, nl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-nl.ch
			l.release(name, nl)
		})
	}, nil
}

func (l *LocalLocker) release(name string, nl *nameLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nl.refs--
	if nl.refs == 0 {
		delete(l.locks, name)
	}
}
