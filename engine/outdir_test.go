package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareOutputDirCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "out")

	if err := PrepareOutputDir(root); err != nil {
		t.Fatalf("PrepareOutputDir failed: %v", err)
	}
	assertEmptyDir(t, root)
}

func TestPrepareOutputDirRemovesStaleContent(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "com", "example", "Old.java")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "Top.scala"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := PrepareOutputDir(root); err != nil {
		t.Fatalf("PrepareOutputDir failed: %v", err)
	}
	assertEmptyDir(t, root)
}

func TestPrepareOutputDirIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "x.java"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := PrepareOutputDir(root); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		assertEmptyDir(t, root)
	}
}

func TestPrepareOutputDirRejectsUnsafeRoots(t *testing.T) {
	for _, root := range []string{"", ".", string(filepath.Separator)} {
		err := PrepareOutputDir(root)
		var prepErr *PrepareError
		if !errors.As(err, &prepErr) {
			t.Errorf("PrepareOutputDir(%q): expected PrepareError, got %v", root, err)
		}
	}
}

func TestPrepareOutputDirFailsWhenRootIsBlockedByFile(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := PrepareOutputDir(filepath.Join(blocker, "out"))
	var prepErr *PrepareError
	if !errors.As(err, &prepErr) {
		t.Fatalf("expected PrepareError, got %v", err)
	}
	if prepErr.Err == nil {
		t.Error("PrepareError should carry the cause")
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("output root missing: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}
