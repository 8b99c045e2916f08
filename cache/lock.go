package cache

import "sync"

// ChanLocker coalesces concurrent work on the same key: the first caller for
// a key runs its function, any caller arriving while it runs blocks until it
// completes and returns false without running its own function.
type ChanLocker struct {
	m *sync.Map
}

func NewChanLocker() *ChanLocker {
	return &ChanLocker{m: &sync.Map{}}
}

func (c *ChanLocker) Lock(k interface{}, acquireFn func()) bool {
	ch := make(chan struct{})
	actual, loaded := c.m.LoadOrStore(k, ch)
	if loaded {
		// someone else holds the lock, wait for them to finish
		<-actual.(chan struct{})
		return false
	}
	defer func() {
		c.m.Delete(k)
		close(ch)
	}()
	acquireFn()
	return true
}
