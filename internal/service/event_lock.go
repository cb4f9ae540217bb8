package service

import (
	"sync"

	"github.com/google/uuid"
)

// eventLocks serializes passes per event inside one process; different events never block each other
type eventLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*eventLock
}

type eventLock struct {
	mu      sync.Mutex
	waiters int
}

func newEventLocks() *eventLocks {
	return &eventLocks{locks: make(map[uuid.UUID]*eventLock)}
}

// lock blocks until id is free and returns its release func
func (l *eventLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	el, ok := l.locks[id]
	if !ok {
		el = &eventLock{}
		l.locks[id] = el
	}
	el.waiters++
	l.mu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()
		l.mu.Lock()
		el.waiters--
		if el.waiters == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
