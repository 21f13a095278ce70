package testing

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
)

// ReadTree returns the contents of every regular file under root keyed by
// slash-separated relative path. Directories appear with a trailing slash
// and empty content so that empty package directories are visible too.
func ReadTree(root string) (map[string]string, error) {
	tree := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			tree[rel+"/"] = ""
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[rel] = string(content)
		return nil
	})
	return tree, err
}

// DiffTree compares an expected tree against the files under root and
// returns a (-want +got) diff, or "" when they match.
func DiffTree(want map[string]string, root string) (string, error) {
	got, err := ReadTree(root)
	if err != nil {
		return "", err
	}
	return cmp.Diff(want, got), nil
}
