package dirstore

import (
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/dirstore/internal/validation"
)

// collectionRegistry is the in-memory name→path index. It is a derived view
// of the metadata record's collection list: every mutation goes through the
// metadata manager, and a failed metadata write rolls the registry back.
type collectionRegistry struct {
	root  string
	fs    FileSystem
	meta  *metadataManager
	paths map[string]string
	order []string
}

func newCollectionRegistry(root string, fs FileSystem, meta *metadataManager) *collectionRegistry {
	return &collectionRegistry{
		root:  root,
		fs:    fs,
		meta:  meta,
		paths: make(map[string]string),
	}
}

// rebuild resets the registry from a persisted collection index.
func (r *collectionRegistry) rebuild(entries []CollectionEntry) {
	r.paths = make(map[string]string, len(entries))
	r.order = r.order[:0]
	for _, e := range entries {
		r.add(e.Name, e.Path)
	}
}

// add registers a collection in memory only. Callers that need persistence
// must follow up with a metadata rewrite.
func (r *collectionRegistry) add(name, path string) {
	if _, ok := r.paths[name]; ok {
		return
	}
	r.paths[name] = path
	r.order = append(r.order, name)
}

// resolve returns the directory path for a collection name.
func (r *collectionRegistry) resolve(name string) (string, bool) {
	path, ok := r.paths[name]
	return path, ok
}

// names returns all registered collection names in registration order.
func (r *collectionRegistry) names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// entries returns the registry as a persisted-form collection index.
func (r *collectionRegistry) entries() []CollectionEntry {
	out := make([]CollectionEntry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, CollectionEntry{Name: name, Path: r.paths[name]})
	}
	return out
}

// create makes the collection directory, registers it, and persists the new
// index. Creating a name that already exists fails loudly; create is not
// idempotent.
func (r *collectionRegistry) create(name string) (string, error) {
	if err := validation.CollectionName(name); err != nil {
		return "", &CollectionError{Op: "create", Name: name, Err: err}
	}
	if name == MetadataFilename {
		return "", &CollectionError{Op: "create", Name: name, Err: fmt.Errorf("name is reserved for the metadata record")}
	}
	if _, ok := r.paths[name]; ok {
		return "", &CollectionError{Op: "create", Name: name, Err: ErrCollectionExists}
	}

	path := filepath.Join(r.root, name)
	if err := r.fs.MkdirAll(path, 0o755); err != nil {
		return "", &CollectionError{Op: "create", Name: name, Err: err}
	}

	r.add(name, path)
	if err := r.meta.setCollections(r.entries()); err != nil {
		r.dropEntry(name)
		return "", &CollectionError{Op: "create", Name: name, Err: err}
	}
	return path, nil
}

// remove deletes the collection directory recursively and persists the
// shrunk index.
func (r *collectionRegistry) remove(name string) error {
	path, ok := r.paths[name]
	if !ok {
		return &CollectionError{Op: "delete", Name: name, Err: ErrCollectionNotFound}
	}

	if err := r.fs.RemoveAll(path); err != nil {
		return &CollectionError{Op: "delete", Name: name, Err: err}
	}

	r.dropEntry(name)
	if err := r.meta.setCollections(r.entries()); err != nil {
		// Directory is already gone; surface the metadata failure. The next
		// load's discovery pass cannot resurrect a deleted directory, so the
		// registry and disk stay consistent.
		return &CollectionError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

func (r *collectionRegistry) dropEntry(name string) {
	delete(r.paths, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
