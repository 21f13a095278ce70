// Package testing provides in-memory template filesystems and output tree
// helpers for tests of generation runs.
package testing

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"sync"
	"time"

	"golang.org/x/tools/txtar"
)

// MemoryFS is a writable fs.FS. It is safe for concurrent readers and writers.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string]*MemoryFile
	reads map[string]int
}

type MemoryFile struct {
	name    string
	content []byte
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string]*MemoryFile),
		reads: make(map[string]int),
	}
}

// MemoryFSFromTxtar loads every file of a txtar archive.
func MemoryFSFromTxtar(ar *txtar.Archive) *MemoryFS {
	mfs := NewMemoryFS()
	for _, f := range ar.Files {
		mfs.WriteFile(f.Name, f.Data)
	}
	return mfs
}

// ParseTxtar is MemoryFSFromTxtar for raw archive text.
func ParseTxtar(data string) *MemoryFS {
	return MemoryFSFromTxtar(txtar.Parse([]byte(data)))
}

func (mfs *MemoryFS) WriteFile(name string, data []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = path.Clean(name)
	mfs.files[name] = &MemoryFile{
		name:    name,
		content: append([]byte(nil), data...),
		mode:    0o644,
		modTime: time.Now(),
	}

	mfs.ensureDir(path.Dir(name))
}

func (mfs *MemoryFS) ensureDir(dir string) {
	if dir == "." || dir == "/" {
		return
	}

	if _, exists := mfs.files[dir]; !exists {
		mfs.files[dir] = &MemoryFile{
			name:    dir,
			mode:    0o755 | fs.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		}
		mfs.ensureDir(path.Dir(dir))
	}
}

// Reads reports how many times name has been opened or read.
func (mfs *MemoryFS) Reads(name string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.reads[path.Clean(name)]
}

func (mfs *MemoryFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if name == "." {
		return &memoryFileHandle{file: &MemoryFile{name: ".", mode: 0o755 | fs.ModeDir, isDir: true}, mfs: mfs, path: "."}, nil
	}

	file, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	mfs.reads[name]++
	return &memoryFileHandle{file: file, mfs: mfs, path: name}, nil
}

// ReadFile implements fs.ReadFileFS.
func (mfs *MemoryFS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}

	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	if file.isDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fmt.Errorf("is a directory")}
	}
	mfs.reads[name]++
	return append([]byte(nil), file.content...), nil
}

func (mfs *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = path.Clean(name)
	if name != "." {
		if dir, exists := mfs.files[name]; !exists || !dir.isDir {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
	}
	return mfs.readDir(name), nil
}

func (mfs *MemoryFS) readDir(name string) []fs.DirEntry {
	var entries []fs.DirEntry
	for filePath, file := range mfs.files {
		if path.Dir(filePath) == name {
			entries = append(entries, &memoryDirEntry{file})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries
}

type memoryFileHandle struct {
	file    *MemoryFile
	mfs     *MemoryFS
	path    string
	offset  int
	entries []fs.DirEntry
	dirPos  int
}

func (f *memoryFileHandle) Read(b []byte) (int, error) {
	if f.file.isDir {
		return 0, &fs.PathError{Op: "read", Path: f.path, Err: fs.ErrInvalid}
	}

	if f.offset >= len(f.file.content) {
		return 0, io.EOF
	}

	n := copy(b, f.file.content[f.offset:])
	f.offset += n
	return n, nil
}

func (f *memoryFileHandle) Stat() (fs.FileInfo, error) {
	return f.file, nil
}

func (f *memoryFileHandle) Close() error {
	return nil
}

// ReadDir follows fs.ReadDirFile: with n > 0 it pages through the entries
// and returns io.EOF once they are exhausted.
func (f *memoryFileHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	if !f.file.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: f.path, Err: fs.ErrInvalid}
	}

	if f.entries == nil {
		entries, err := f.mfs.ReadDir(f.path)
		if err != nil {
			return nil, err
		}
		f.entries = entries
	}

	rest := f.entries[f.dirPos:]
	if n <= 0 {
		f.dirPos = len(f.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	f.dirPos += n
	return rest[:n], nil
}

type memoryDirEntry struct {
	file *MemoryFile
}

func (e *memoryDirEntry) Name() string {
	return path.Base(e.file.name)
}

func (e *memoryDirEntry) IsDir() bool {
	return e.file.isDir
}

func (e *memoryDirEntry) Type() fs.FileMode {
	return e.file.mode.Type()
}

func (e *memoryDirEntry) Info() (fs.FileInfo, error) {
	return e.file, nil
}

func (f *MemoryFile) Name() string {
	return path.Base(f.name)
}

func (f *MemoryFile) Size() int64 {
	return int64(len(f.content))
}

func (f *MemoryFile) Mode() fs.FileMode {
	return f.mode
}

func (f *MemoryFile) ModTime() time.Time {
	return f.modTime
}

func (f *MemoryFile) IsDir() bool {
	return f.isDir
}

func (f *MemoryFile) Sys() any {
	return nil
}
