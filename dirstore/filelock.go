package dirstore

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// FileLock is the cross-process advisory lock held around metadata access.
type FileLock interface {
	// TryLockContext attempts to acquire an exclusive lock, retrying at the
	// given interval until the context is done
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// Unlock releases the lock
	Unlock() error
}

// FileLockFactory creates FileLock instances
type FileLockFactory interface {
	// New creates a new FileLock for the given path
	New(path string) FileLock
}

// FlockFactory is the default factory, backed by github.com/gofrs/flock.
type FlockFactory struct{}

// New implements FileLockFactory.New
func (f *FlockFactory) New(path string) FileLock {
	return flock.New(path)
}
