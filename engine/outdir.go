package engine

import (
	"errors"
	"os"
	"path/filepath"
)

// PrepareOutputDir removes everything under root and recreates it empty,
// including missing parents. A root that does not exist yet is fine.
// Any error is fatal for the run: no file may be emitted afterwards.
func PrepareOutputDir(root string) error {
	if root == "" {
		return &PrepareError{Root: root, Err: errors.New("output root is empty")}
	}

	clean := filepath.Clean(root)
	if clean == "." || clean == string(filepath.Separator) || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return &PrepareError{Root: root, Err: errors.New("refusing to clear working directory or filesystem root")}
	}

	if err := os.RemoveAll(clean); err != nil {
		return &PrepareError{Root: root, Err: err}
	}
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return &PrepareError{Root: root, Err: err}
	}
	return nil
}
