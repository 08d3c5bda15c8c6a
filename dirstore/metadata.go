package dirstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// Signature is the fixed marker written into every metadata record.
	// A root directory whose record carries a different signature does not
	// belong to this engine.
	Signature = "dirstore"

	// Version identifies the engine revision. A record written by a
	// different version fails to load; there is no migration path.
	Version = "1.0.0"

	// MetadataFilename is the name of the metadata record inside the root
	// directory.
	MetadataFilename = "dirstore.meta.json"
)

// CollectionEntry is one (name, path) pair of the persisted collection
// index. The index is stored as an ordered list of two-element arrays, never
// as a JSON object, so the on-disk format stays unambiguous for any parser.
type CollectionEntry struct {
	Name string
	Path string
}

// MarshalJSON encodes the entry as ["name", "path"].
func (e CollectionEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Name, e.Path})
}

// UnmarshalJSON decodes a ["name", "path"] pair.
func (e *CollectionEntry) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("collection entry must be a [name, path] pair: %w", err)
	}
	e.Name, e.Path = pair[0], pair[1]
	return nil
}

// Metadata is the persisted descriptor of a database instance. It is the
// single source of truth for which collections exist.
type Metadata struct {
	ID          string            `json:"_id"`
	Signature   string            `json:"dbSignature"`
	Version     string            `json:"version"`
	Collections []CollectionEntry `json:"collections"`
}

// metadataManager owns the metadata record and is its only writer.
type metadataManager struct {
	path   string
	fs     FileSystem
	record Metadata
}

func newMetadataManager(root string, fs FileSystem) *metadataManager {
	return &metadataManager{
		path: filepath.Join(root, MetadataFilename),
		fs:   fs,
	}
}

// create writes a fresh record with a generated identifier and an empty
// collection index.
func (m *metadataManager) create() error {
	m.record = Metadata{
		ID:          uuid.NewString(),
		Signature:   Signature,
		Version:     Version,
		Collections: []CollectionEntry{},
	}
	return m.write()
}

// load reads and validates an existing record. A missing or unparseable
// file, a foreign signature, or a version mismatch all fail the load.
func (m *metadataManager) load() error {
	data, err := m.fs.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("metadata file %s is missing", MetadataFilename)
		}
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var record Metadata
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("failed to parse metadata: %w", err)
	}

	if record.Signature != Signature {
		return fmt.Errorf("signature mismatch: %q is not a %s database", record.Signature, Signature)
	}
	if record.Version != Version {
		return fmt.Errorf("version mismatch: database is %s, engine is %s", record.Version, Version)
	}

	if record.Collections == nil {
		record.Collections = []CollectionEntry{}
	}
	m.record = record
	return nil
}

// setCollections replaces the collection index and rewrites the full record.
func (m *metadataManager) setCollections(entries []CollectionEntry) error {
	if entries == nil {
		entries = []CollectionEntry{}
	}
	previous := m.record.Collections
	m.record.Collections = entries
	if err := m.write(); err != nil {
		m.record.Collections = previous
		return err
	}
	return nil
}

// write persists the record via write-to-temp-then-rename so a failure mid
// write cannot leave a truncated metadata file behind.
func (m *metadataManager) write() error {
	data, err := json.MarshalIndent(m.record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := m.fs.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		_ = m.fs.Remove(tmp)
		return fmt.Errorf("failed to replace metadata: %w", err)
	}
	return nil
}
