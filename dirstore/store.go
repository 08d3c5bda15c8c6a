package dirstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arthur-debert/dirstore/internal/validation"
)

// Constants for cross-process file locking
const (
	lockTimeout    = 3 * time.Second
	lockRetryDelay = 100 * time.Millisecond
)

// DB is a handle on one database root directory. All operations are safe
// for concurrent use within a single process: a per-handle lock manager
// serializes writers against readers, and an advisory lock file beside the
// metadata record excludes other processes during metadata load and every
// collection-registry mutation.
//
// Document writes carry no such guard. Two callers writing the same
// document id race at the filesystem level and the last writer wins; that
// is the engine's documented contract for its single-user target.
type DB struct {
	root     string
	fs       FileSystem
	locks    *lockManager
	fileLock FileLock
	meta     *metadataManager
	registry *collectionRegistry
	logger   *slog.Logger

	lockFactory FileLockFactory
}

// Option configures a DB handle at Open time.
type Option func(*DB)

// WithFileSystem replaces the default os-backed filesystem.
func WithFileSystem(fs FileSystem) Option {
	return func(db *DB) { db.fs = fs }
}

// WithLockFactory replaces the default flock-backed lock factory.
func WithLockFactory(factory FileLockFactory) Option {
	return func(db *DB) { db.lockFactory = factory }
}

// WithLogger attaches a logger; registry mutations and discovery log at
// debug level. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(db *DB) { db.logger = logger }
}

// Open initializes a database handle for the given root directory.
//
// If the root does not exist it is created along with a fresh metadata
// record. If it exists, the metadata record is loaded and validated: a
// missing or corrupt record, a foreign signature, or a version mismatch all
// fail with *InitializationError. After a successful load, subdirectories
// of the root that the record does not know are adopted as collections.
func Open(root string, opts ...Option) (*DB, error) {
	if err := validation.RootPath(root); err != nil {
		return nil, &InitializationError{Path: root, Err: err}
	}

	db := &DB{
		root:  root,
		locks: newLockManager(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.fs == nil {
		db.fs = &OSFileSystem{}
	}
	if db.lockFactory == nil {
		db.lockFactory = &FlockFactory{}
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db.meta = newMetadataManager(root, db.fs)
	db.registry = newCollectionRegistry(root, db.fs, db.meta)

	info, err := db.fs.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return nil, &InitializationError{Path: root, Err: fmt.Errorf("path exists and is not a directory")}
	case err == nil:
		if err := db.loadExisting(); err != nil {
			return nil, &InitializationError{Path: root, Err: err}
		}
	default:
		if err := db.createFresh(); err != nil {
			return nil, &InitializationError{Path: root, Err: err}
		}
	}

	return db, nil
}

// createFresh makes the root directory and writes a new metadata record.
func (db *DB) createFresh() error {
	if err := db.fs.MkdirAll(db.root, 0o755); err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}
	db.fileLock = db.lockFactory.New(db.meta.path + ".lock")

	return db.withFileLock(func() error {
		if err := db.meta.create(); err != nil {
			return err
		}
		db.registry.rebuild(db.meta.record.Collections)
		db.logger.Debug("created database", "root", db.root, "id", db.meta.record.ID)
		return nil
	})
}

// loadExisting validates the metadata record and rebuilds the registry from
// it, then runs discovery for unmanaged directories.
func (db *DB) loadExisting() error {
	db.fileLock = db.lockFactory.New(db.meta.path + ".lock")

	return db.withFileLock(func() error {
		if err := db.meta.load(); err != nil {
			return err
		}
		db.registry.rebuild(db.meta.record.Collections)
		db.logger.Debug("loaded database", "root", db.root, "id", db.meta.record.ID,
			"collections", len(db.meta.record.Collections))
		return db.discover()
	})
}

// withFileLock runs fn while holding the cross-process metadata lock.
func (db *DB) withFileLock(fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := db.fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire metadata lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("metadata lock is held by another process")
	}
	defer func() { _ = db.fileLock.Unlock() }()

	return fn()
}

// RootDir returns the database root directory.
func (db *DB) RootDir() string {
	return db.root
}

// Metadata returns a copy of the current metadata record.
func (db *DB) Metadata() Metadata {
	var out Metadata
	_ = db.locks.execute(readOperation, func() error {
		out = db.meta.record
		out.Collections = append([]CollectionEntry(nil), db.meta.record.Collections...)
		return nil
	})
	return out
}

// Collection returns the directory path registered for a collection name.
func (db *DB) Collection(name string) (string, bool) {
	var (
		path string
		ok   bool
	)
	_ = db.locks.execute(readOperation, func() error {
		path, ok = db.registry.resolve(name)
		return nil
	})
	return path, ok
}

// NewCollection creates a collection directory and registers it. Creating a
// name that already exists fails with *CollectionError wrapping
// ErrCollectionExists.
func (db *DB) NewCollection(name string) (string, error) {
	var path string
	err := db.locks.execute(writeOperation, func() error {
		return db.withFileLock(func() error {
			p, err := db.registry.create(name)
			if err != nil {
				return err
			}
			path = p
			db.logger.Debug("created collection", "collection", name, "path", p)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// ListCollections returns the names of all known collections. Order follows
// the registry, which preserves the metadata list order for managed
// collections; directories adopted by discovery follow in scan order.
func (db *DB) ListCollections() []string {
	var names []string
	_ = db.locks.execute(readOperation, func() error {
		names = db.registry.names()
		return nil
	})
	return names
}

// DeleteCollection removes a collection directory recursively and drops it
// from the registry and the metadata record.
func (db *DB) DeleteCollection(name string) error {
	return db.locks.execute(writeOperation, func() error {
		return db.withFileLock(func() error {
			if err := db.registry.remove(name); err != nil {
				return err
			}
			db.logger.Debug("deleted collection", "collection", name)
			return nil
		})
	})
}

// Close releases the handle. The handle must not be used after Close.
func (db *DB) Close() error {
	db.logger.Debug("closed database", "root", db.root)
	return nil
}
