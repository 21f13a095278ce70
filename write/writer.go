// Package write provides file creation primitives for generated output.
package write

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrAlreadyExists is returned when an exclusive create finds a file at the target path.
var ErrAlreadyExists = errors.New("file already exists")

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type Writer interface {
	Write(path string, content []byte, options WriteOptions) error
}

// WriteOptions controls BaseWriter.Write. Without Overwrite the file is
// created with CreateExclusive. Atomic only applies when overwriting: the
// content is written to a temporary file that is renamed over path.
type WriteOptions struct {
	CreateDirs bool
	Overwrite  bool
	Atomic     bool
}

type BaseWriter struct{}

func NewBaseWriter() *BaseWriter {
	return &BaseWriter{}
}

// CreateExclusive creates an empty file at path, failing with ErrAlreadyExists
// if anything is already there. The check and the create are a single
// filesystem operation, so two concurrent callers cannot both succeed.
func CreateExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		return nil, err
	}
	return f, nil
}

func (bw *BaseWriter) Write(path string, content []byte, options WriteOptions) error {
	if options.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			return fmt.Errorf("failed to create directories: %w", err)
		}
	}

	if !options.Overwrite {
		return writeExclusive(path, content)
	}
	if options.Atomic {
		return bw.atomicWrite(path, content)
	}
	return os.WriteFile(path, content, filePerm)
}

func (bw *BaseWriter) atomicWrite(path string, content []byte) error {
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	if _, err := file.Write(content); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Chmod(tempPath, filePerm); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func writeExclusive(path string, content []byte) error {
	f, err := CreateExclusive(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
