// Package testutil provides shared fixtures for dirstore tests.
package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dirstore/dirstore"
)

// OpenTestDB opens a fresh database under a temporary directory that is
// cleaned up with the test.
func OpenTestDB(t *testing.T) *dirstore.DB {
	t.Helper()

	db, err := dirstore.Open(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Users is the fixture set Seed writes into the "users" collection.
var Users = []dirstore.Document{
	{"_id": "u1", "name": "Ann", "team": "infra", "active": true},
	{"_id": "u2", "name": "Ben", "team": "infra", "active": false},
	{"_id": "u3", "name": "Cas", "team": "web", "active": true},
}

// Seed creates a "users" collection populated with the Users fixture.
func Seed(t *testing.T, db *dirstore.DB) {
	t.Helper()

	if _, err := db.NewCollection("users"); err != nil {
		t.Fatalf("failed to create users collection: %v", err)
	}
	for _, doc := range Users {
		if err := db.Create("users", doc); err != nil {
			t.Fatalf("failed to seed %v: %v", doc["_id"], err)
		}
	}
}

// Normalize round-trips a value through JSON so fixture documents compare
// cleanly against documents read back from disk (numbers become float64,
// typed nils become untyped, and so on).
func Normalize(t *testing.T, v any) any {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal %v: %v", v, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", data, err)
	}
	return out
}
