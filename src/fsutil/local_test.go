package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"medrag/src/fsutil"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()

	mustWrite := func(name, content string) {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	mustWrite("anemia.txt", "iron deficiency")
	mustWrite("notes.md", "## migraine")
	mustWrite("scan.pdf", "binary")
	mustWrite("nested/diabetes.TXT", "symptoms")

	fs := fsutil.NewLocalFileStore()

	files, err := fs.ListFiles(dir, ".txt", ".md")
	if err != nil {
		t.Fatalf("ListFiles returned error: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("ListFiles returned %d files, want 3: %v", len(files), files)
	}
	for _, f := range files {
		if filepath.Ext(f) == ".pdf" {
			t.Errorf("ListFiles must not match .pdf, got %s", f)
		}
	}

	all, err := fs.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles returned error: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("ListFiles with no extensions returned %d files, want 4", len(all))
	}

	content, err := fs.ReadFile(filepath.Join(dir, "anemia.txt"))
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if string(content) != "iron deficiency" {
		t.Errorf("ReadFile = %q", content)
	}
}
