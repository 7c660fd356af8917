package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.json")
	data := []byte(`[{"id":1}]`)
	perm := os.FileMode(0644)

	if err := AtomicWriteFile(filename, data, perm); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("expected content %q, got %q", data, content)
	}

	info, err := os.Stat(filename)
	if err != nil {
		t.Fatalf("failed to stat file: %v", err)
	}
	if info.Mode() != perm {
		t.Errorf("expected file mode %v, got %v", perm, info.Mode())
	}
}

func TestAtomicWriteFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.json")

	if err := AtomicWriteFile(filename, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(filename, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}

	content, _ := os.ReadFile(filename)
	if string(content) != "new" {
		t.Errorf("content = %q, want %q", content, "new")
	}

	// No temp files may be left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestAtomicWriteFileMissingDir(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "missing", "test.json")
	if err := AtomicWriteFile(filename, []byte("x"), 0644); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
