package write

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestCreateExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Foo.java")

	f, err := CreateExclusive(path)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := f.WriteString("first"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = CreateExclusive(path)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "first" {
		t.Errorf("existing file was modified: %q", content)
	}
}

func TestCreateExclusiveConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Race.java")

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	won, lost := 0, 0

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := CreateExclusive(path)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				won++
				f.Close()
				return
			}
			if errors.Is(err, ErrAlreadyExists) {
				lost++
			}
		}()
	}
	wg.Wait()

	if won != 1 || lost != callers-1 {
		t.Errorf("expected exactly one winner, got won=%d lost=%d", won, lost)
	}
}

func TestCreateExclusiveMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "Foo.java")
	_, err := CreateExclusive(path)
	if err == nil {
		t.Fatal("expected error for missing parent directory")
	}
	if errors.Is(err, ErrAlreadyExists) {
		t.Error("missing directory must not be reported as a collision")
	}
}

func TestBaseWriter(t *testing.T) {
	dir := t.TempDir()
	bw := NewBaseWriter()

	t.Run("CreateDirs", func(t *testing.T) {
		path := filepath.Join(dir, "a", "b", "out.txt")
		if err := bw.Write(path, []byte("x"), WriteOptions{CreateDirs: true}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("file not written: %v", err)
		}
	})

	t.Run("NoOverwrite", func(t *testing.T) {
		path := filepath.Join(dir, "keep.txt")
		if err := bw.Write(path, []byte("one"), WriteOptions{}); err != nil {
			t.Fatal(err)
		}
		err := bw.Write(path, []byte("two"), WriteOptions{})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("AtomicOverwrite", func(t *testing.T) {
		path := filepath.Join(dir, "atomic.json")
		for _, content := range []string{"v1", "v2"} {
			if err := bw.Write(path, []byte(content), WriteOptions{Atomic: true, Overwrite: true}); err != nil {
				t.Fatalf("atomic write %s failed: %v", content, err)
			}
		}
		got, _ := os.ReadFile(path)
		if string(got) != "v2" {
			t.Errorf("expected v2, got %q", got)
		}

		matches, _ := filepath.Glob(filepath.Join(dir, "atomic.json.*.tmp"))
		if len(matches) != 0 {
			t.Errorf("temporary files left behind: %v", matches)
		}
	})

	t.Run("AtomicWithoutOverwriteIsExclusive", func(t *testing.T) {
		path := filepath.Join(dir, "exclusive.json")
		if err := bw.Write(path, []byte("first"), WriteOptions{Atomic: true}); err != nil {
			t.Fatal(err)
		}
		err := bw.Write(path, []byte("second"), WriteOptions{Atomic: true})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "first" {
			t.Errorf("existing file replaced: %q", got)
		}
	})

	t.Run("DirectOverwrite", func(t *testing.T) {
		path := filepath.Join(dir, "direct.txt")
		for _, content := range []string{"v1", "v2"} {
			if err := bw.Write(path, []byte(content), WriteOptions{Overwrite: true}); err != nil {
				t.Fatal(err)
			}
		}
		got, _ := os.ReadFile(path)
		if string(got) != "v2" {
			t.Errorf("expected v2, got %q", got)
		}
	})
}
