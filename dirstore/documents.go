package dirstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dirstore/internal/matching"
	"github.com/arthur-debert/dirstore/internal/validation"
	"github.com/google/uuid"
)

const documentExt = ".json"

// Create serializes data into a new document file inside the collection.
//
// The document id comes from data["_id"] when present, which must be a
// string; otherwise a fresh uuid is generated and written into the stored
// copy so the document stays findable by id. The caller's map is never
// mutated. No uniqueness check is performed: a second create with the same
// id overwrites the first.
func (db *DB) Create(collection string, data Document) error {
	return db.locks.execute(writeOperation, func() error {
		dir, ok := db.registry.resolve(collection)
		if !ok {
			return &CollectionError{Op: "create", Name: collection, Err: ErrCollectionNotFound}
		}

		id, err := suppliedID(data)
		if err != nil {
			return err
		}
		doc := data.clone()
		if id == "" {
			id = uuid.NewString()
			doc["_id"] = id
		}

		if err := db.writeDocument(dir, id, doc); err != nil {
			return &DocumentError{Op: "create", ID: id, Err: err}
		}
		return nil
	})
}

// Find scans the collection and returns the first document matching the
// query. A missing match is not an error: ok is false and err is nil. The
// scan order is the directory-listing order, so "first" is not a
// content-based tie-break.
func (db *DB) Find(collection string, query Document) (Document, bool, error) {
	var (
		found Document
		ok    bool
	)
	err := db.locks.execute(readOperation, func() error {
		return db.scan(collection, "find", query, func(doc Document, path string) (bool, error) {
			found = doc
			ok = true
			return false, nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return found, ok, nil
}

// FindAll scans the collection and returns every document matching the
// query. A nil or empty query matches every document.
func (db *DB) FindAll(collection string, query Document) ([]Document, error) {
	results := []Document{}
	err := db.locks.execute(readOperation, func() error {
		return db.scan(collection, "findAll", query, func(doc Document, path string) (bool, error) {
			results = append(results, doc)
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update merges newData into the stored document named by newData["_id"]
// and returns the merged result. The merge is shallow: every key in newData
// overwrites or adds the stored key; keys not mentioned are preserved.
// Fails with *DocumentError when "_id" is absent or no file exists for it.
func (db *DB) Update(collection string, newData Document) (Document, error) {
	var merged Document
	err := db.locks.execute(writeOperation, func() error {
		dir, ok := db.registry.resolve(collection)
		if !ok {
			return &CollectionError{Op: "update", Name: collection, Err: ErrCollectionNotFound}
		}

		id, err := suppliedID(newData)
		if err != nil {
			return err
		}
		if id == "" {
			return &DocumentError{Op: "update", Err: ErrMissingID}
		}

		path := filepath.Join(dir, id+documentExt)
		stored, err := db.readDocument(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return &DocumentError{Op: "update", ID: id, Err: ErrDocumentNotFound}
			}
			return &DocumentError{Op: "update", ID: id, Err: err}
		}

		for k, v := range newData {
			stored[k] = v
		}
		if err := db.writeDocument(dir, id, stored); err != nil {
			return &DocumentError{Op: "update", ID: id, Err: err}
		}
		merged = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes the first document matching the query. Removing nothing is
// not an error.
func (db *DB) Delete(collection string, query Document) error {
	return db.removeMatching(collection, "delete", query, false)
}

// DeleteAll removes every document matching the query.
func (db *DB) DeleteAll(collection string, query Document) error {
	return db.removeMatching(collection, "deleteAll", query, true)
}

// removeMatching is the single scan-and-match-and-remove primitive behind
// Delete and DeleteAll; the two differ only in whether the scan continues
// past the first match.
func (db *DB) removeMatching(collection, op string, query Document, all bool) error {
	return db.locks.execute(writeOperation, func() error {
		return db.scan(collection, op, query, func(doc Document, path string) (bool, error) {
			if err := db.fs.Remove(path); err != nil {
				return false, fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
			}
			return all, nil
		})
	})
}

// scan reads the collection's files one at a time, in directory-listing
// order, and calls visit for each document matching the query. Visit
// returns false to stop the scan. Any read or parse failure aborts the
// whole operation; there is no partial-success reporting.
func (db *DB) scan(collection, op string, query Document, visit func(doc Document, path string) (bool, error)) error {
	dir, ok := db.registry.resolve(collection)
	if !ok {
		return &CollectionError{Op: op, Name: collection, Err: ErrCollectionNotFound}
	}

	entries, err := db.fs.ReadDir(dir)
	if err != nil {
		return &CollectionError{Op: op, Name: collection, Err: fmt.Errorf("failed to list documents: %w", err)}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentExt) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := db.readDocument(path)
		if err != nil {
			return &CollectionError{Op: op, Name: collection, Err: fmt.Errorf("document %s: %w", entry.Name(), err)}
		}
		if !matching.Matches(doc, query) {
			continue
		}
		cont, err := visit(doc, path)
		if err != nil {
			return &CollectionError{Op: op, Name: collection, Err: err}
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// readDocument loads and parses one document file.
func (db *DB) readDocument(path string) (Document, error) {
	data, err := db.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// writeDocument persists a document via write-to-temp-then-rename. Absent
// field values arrive as nil map entries and serialize as JSON null, never
// dropped.
func (db *DB) writeDocument(dir, id string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	path := filepath.Join(dir, id+documentExt)
	tmp := path + ".tmp"
	if err := db.fs.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := db.fs.Rename(tmp, path); err != nil {
		_ = db.fs.Remove(tmp)
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// suppliedID extracts and validates data["_id"]. Returns "" when absent.
func suppliedID(data Document) (string, error) {
	v, ok := data["_id"]
	if !ok {
		return "", nil
	}
	id, ok := v.(string)
	if !ok {
		return "", &DocumentError{Op: "resolve id", Err: fmt.Errorf("%w: got %T, want string", ErrInvalidID, v)}
	}
	if err := validation.DocumentID(id); err != nil {
		return "", &DocumentError{Op: "resolve id", ID: id, Err: fmt.Errorf("%w: %v", ErrInvalidID, err)}
	}
	return id, nil
}
