package dirstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dirstore/dirstore"
)

func TestDiscoveryAdoptsUnmanagedDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db")
	db, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.NewCollection("managed"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	// Drop a hand-made collection directory with one document into the
	// root, bypassing the engine entirely.
	imported := filepath.Join(root, "imported")
	if err := os.Mkdir(imported, 0o755); err != nil {
		t.Fatal(err)
	}
	doc := []byte(`{"_id": "x1", "origin": "handmade"}`)
	if err := os.WriteFile(filepath.Join(imported, "x1.json"), doc, 0o644); err != nil {
		t.Fatal(err)
	}

	reopened, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = reopened.Close() }()

	if _, ok := reopened.Collection("imported"); !ok {
		t.Fatal("unmanaged directory was not adopted")
	}
	names := reopened.ListCollections()
	if len(names) != 2 || names[0] != "managed" {
		t.Errorf("ListCollections() = %v; managed entries keep metadata order, adopted ones follow", names)
	}

	got, ok, err := reopened.Find("imported", dirstore.Document{"_id": "x1"})
	if err != nil || !ok {
		t.Fatalf("document in adopted collection not findable: %v, %v", ok, err)
	}
	if got["origin"] != "handmade" {
		t.Errorf("unexpected document: %v", got)
	}

	// Adoption is persisted: a third handle sees it in the metadata record
	// without rescanning anything new.
	meta := reopened.Metadata()
	found := false
	for _, e := range meta.Collections {
		if e.Name == "imported" && e.Path == imported {
			found = true
		}
	}
	if !found {
		t.Errorf("adopted collection missing from metadata record: %v", meta.Collections)
	}
}

func TestDiscoveryIgnoresPlainFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "db")
	db, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	reopened, err := dirstore.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = reopened.Close() }()

	if got := reopened.ListCollections(); len(got) != 0 {
		t.Errorf("plain files should not become collections, got %v", got)
	}
}
