package dirstore_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/dirstore/dirstore"
)

// rewriteMetadata mutates the on-disk metadata record of a closed database.
func rewriteMetadata(t *testing.T, root string, mutate func(m map[string]any)) {
	t.Helper()

	path := filepath.Join(root, dirstore.MetadataFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatal(err)
	}
	mutate(record)
	out, err := json.Marshal(record)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}
}

func newClosedDB(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "db")
	db, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()
	return root
}

func TestLoadRejectsForeignSignature(t *testing.T) {
	root := newClosedDB(t)
	rewriteMetadata(t, root, func(m map[string]any) {
		m["dbSignature"] = "somebody-else"
	})

	_, err := dirstore.Open(root)
	var initErr *dirstore.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("error is %T (%v), want *InitializationError", err, err)
	}
	if !strings.Contains(err.Error(), "signature") {
		t.Errorf("error should mention the signature: %v", err)
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	root := newClosedDB(t)
	rewriteMetadata(t, root, func(m map[string]any) {
		m["version"] = "0.0.1"
	})

	_, err := dirstore.Open(root)
	var initErr *dirstore.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("error is %T (%v), want *InitializationError", err, err)
	}
	if !strings.Contains(err.Error(), "version") {
		t.Errorf("error should mention the version: %v", err)
	}
}

func TestLoadRejectsCorruptMetadata(t *testing.T) {
	root := newClosedDB(t)
	path := filepath.Join(root, dirstore.MetadataFilename)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := dirstore.Open(root)
	var initErr *dirstore.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("error is %T (%v), want *InitializationError", err, err)
	}
}

func TestCollectionIndexPersistsAsPairs(t *testing.T) {
	// The on-disk collection index is an ordered list of [name, path]
	// pairs, never a JSON object.
	root := filepath.Join(t.TempDir(), "db")
	db, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.NewCollection("users"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.NewCollection("posts"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	data, err := os.ReadFile(filepath.Join(root, dirstore.MetadataFilename))
	if err != nil {
		t.Fatal(err)
	}
	var record struct {
		ID          string     `json:"_id"`
		Signature   string     `json:"dbSignature"`
		Version     string     `json:"version"`
		Collections [][]string `json:"collections"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("collections did not decode as a list of pairs: %v", err)
	}

	if len(record.Collections) != 2 {
		t.Fatalf("got %d entries, want 2", len(record.Collections))
	}
	want := [][]string{
		{"users", filepath.Join(root, "users")},
		{"posts", filepath.Join(root, "posts")},
	}
	for i, pair := range want {
		if len(record.Collections[i]) != 2 ||
			record.Collections[i][0] != pair[0] ||
			record.Collections[i][1] != pair[1] {
			t.Errorf("entry %d = %v, want %v", i, record.Collections[i], pair)
		}
	}
}

func TestMetadataRewrittenOnRegistryMutation(t *testing.T) {
	root := newClosedDB(t)

	db, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.NewCollection("events"); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteCollection("events"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	data, err := os.ReadFile(filepath.Join(root, dirstore.MetadataFilename))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "events") {
		t.Error("deleted collection still present in metadata record")
	}
}
