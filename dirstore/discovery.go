package dirstore

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/dirstore/internal/validation"
)

// discover scans the root directory for subdirectories the metadata record
// does not know and adopts them as collections. Pre-existing, hand-made
// directories become queryable this way; the adoption is persisted so the
// next load agrees with the registry.
//
// Runs at load time only, while the caller holds the metadata lock.
func (db *DB) discover() error {
	entries, err := db.fs.ReadDir(db.root)
	if err != nil {
		return fmt.Errorf("failed to scan root directory: %w", err)
	}

	adopted := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if validation.CollectionName(name) != nil {
			continue
		}
		if _, ok := db.registry.resolve(name); ok {
			continue
		}
		db.registry.add(name, filepath.Join(db.root, name))
		db.logger.Debug("adopted unmanaged directory", "collection", name)
		adopted++
	}

	if adopted == 0 {
		return nil
	}
	if err := db.meta.setCollections(db.registry.entries()); err != nil {
		return fmt.Errorf("failed to persist adopted collections: %w", err)
	}
	return nil
}
