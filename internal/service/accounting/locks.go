package accounting

import "sync"

// ownerLocks serializes operations per owner inside this process. The
// persistence unique index still guards across processes. Entries are
// reference counted and dropped once no caller holds or waits on them.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*ownerLock)}
}

// lock blocks until key is free and returns its unlock func.
func (o *ownerLocks) lock(key string) func() {
	o.mu.Lock()
	l, ok := o.locks[key]
	if !ok {
		l = &ownerLock{}
		o.locks[key] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		o.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, key)
		}
		o.mu.Unlock()
	}
}

func (o *ownerLocks) size() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.locks)
}
