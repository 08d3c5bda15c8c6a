package dirstore

import (
	"sync"
)

// operationType distinguishes read operations, which may run concurrently,
// from write operations, which are exclusive.
type operationType int

const (
	readOperation operationType = iota
	writeOperation
)

// lockManager centralizes in-process locking for a database handle. All
// store operations funnel through execute/executeWithResult so the read
// vs. write lock choice lives in one place instead of being repeated (and
// eventually mismatched) at every call site.
//
// This serializes callers within one process. Cross-process exclusion for
// metadata mutations is handled separately by the FileLock.
type lockManager struct {
	mu *sync.RWMutex
}

func newLockManager() *lockManager {
	return &lockManager{
		mu: &sync.RWMutex{},
	}
}

// execute runs fn under the lock appropriate to the operation type. The
// lock is released via defer, so it is dropped even if fn panics.
func (lm *lockManager) execute(opType operationType, fn func() error) error {
	switch opType {
	case readOperation:
		lm.mu.RLock()
		defer lm.mu.RUnlock()
	case writeOperation:
		lm.mu.Lock()
		defer lm.mu.Unlock()
	}
	return fn()
}
