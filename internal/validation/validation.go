// Package validation holds the name and path checks shared by the store.
package validation

import (
	"fmt"
	"strings"
)

// RootPath checks that a database root path is plausible before the engine
// attempts to create or open it. Most illegal paths only surface as errors
// from the filesystem itself; this catches what can be caught up front.
func RootPath(path string) error {
	if path == "" {
		return fmt.Errorf("root path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("root path contains a NUL byte")
	}
	return nil
}

// CollectionName checks that a name is usable as a subdirectory of the root.
func CollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("collection name %q is reserved", name)
	}
	if err := validPathComponent(name); err != nil {
		return fmt.Errorf("collection name %q: %w", name, err)
	}
	return nil
}

// DocumentID checks that an id is usable as a filename stem inside a
// collection directory.
func DocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document id cannot be empty")
	}
	if id == "." || id == ".." {
		return fmt.Errorf("document id %q is reserved", id)
	}
	if err := validPathComponent(id); err != nil {
		return fmt.Errorf("document id %q: %w", id, err)
	}
	return nil
}

func validPathComponent(s string) error {
	for _, r := range s {
		switch r {
		case '/', '\\':
			return fmt.Errorf("path separators are not allowed")
		case 0:
			return fmt.Errorf("NUL bytes are not allowed")
		}
	}
	return nil
}
