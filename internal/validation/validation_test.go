package validation

import "testing"

func TestRootPath(t *testing.T) {
	if err := RootPath("/tmp/some/db"); err != nil {
		t.Errorf("valid path rejected: %v", err)
	}
	if err := RootPath(""); err == nil {
		t.Error("empty path accepted")
	}
	if err := RootPath("bad\x00path"); err == nil {
		t.Error("NUL byte accepted")
	}
}

func TestCollectionName(t *testing.T) {
	valid := []string{"users", "Users-2", "a b", "данные", "🎯"}
	for _, name := range valid {
		if err := CollectionName(name); err != nil {
			t.Errorf("CollectionName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", ".", "..", "a/b", `a\b`, "a\x00b"}
	for _, name := range invalid {
		if err := CollectionName(name); err == nil {
			t.Errorf("CollectionName(%q) = nil, want error", name)
		}
	}
}

func TestDocumentID(t *testing.T) {
	valid := []string{"u1", "9a3c", "user-42", "Ann's"}
	for _, id := range valid {
		if err := DocumentID(id); err != nil {
			t.Errorf("DocumentID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", ".", "..", "a/b", `a\b`, "a\x00b"}
	for _, id := range invalid {
		if err := DocumentID(id); err == nil {
			t.Errorf("DocumentID(%q) = nil, want error", id)
		}
	}
}
