package command

import (
	"sync"

	"github.com/goliatone/go-moderation/pkg/types"
)

// entityLocks serializes work per entity key. Entries are reference counted
// and dropped once no caller holds or waits on them.
type entityLocks struct {
	mu    sync.Mutex
	locks map[types.EntityKey]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[types.EntityKey]*entityLock)}
}

// lock blocks until the key is free and returns its release function.
func (l *entityLocks) lock(key types.EntityKey) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &entityLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *entityLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
