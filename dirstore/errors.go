package dirstore

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is. They are always returned wrapped
// in one of the typed errors below, which add operation context.
var (
	// ErrCollectionExists is returned when creating a collection whose name
	// is already registered.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrCollectionNotFound is returned by any operation referencing a
	// collection the registry does not know.
	ErrCollectionNotFound = errors.New("collection does not exist")

	// ErrMissingID is returned by Update when the new data carries no "_id".
	ErrMissingID = errors.New("document has no _id field")

	// ErrInvalidID is returned when a supplied "_id" is not a string usable
	// as a filename stem.
	ErrInvalidID = errors.New("document _id is not a valid identifier")

	// ErrDocumentNotFound is returned by Update when no file exists for the
	// target id.
	ErrDocumentNotFound = errors.New("document not found")
)

// InitializationError indicates that a root directory could not be created
// or is not a valid database of the running engine version.
type InitializationError struct {
	Path string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("cannot initialize database at %q: %v", e.Path, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// CollectionError indicates a failed collection-level operation.
type CollectionError struct {
	Op   string // the operation that failed, e.g. "create", "delete"
	Name string // the collection name
	Err  error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection %q: %s: %v", e.Name, e.Op, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// DocumentError indicates a failed document-level operation.
type DocumentError struct {
	Op  string // the operation that failed, e.g. "create", "update"
	ID  string // the document id, if known
	Err error
}

func (e *DocumentError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("document: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("document %q: %s: %v", e.ID, e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
