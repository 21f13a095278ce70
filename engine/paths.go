package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpcf/weftgen/lang"
	"github.com/cpcf/weftgen/model"
)

const packageSeparator = "."

// ResolveFileName returns the class name with the language's extension.
// Surrounding whitespace is trimmed from the class name first.
func ResolveFileName(dm model.DataModel, language lang.Language) (string, error) {
	className := strings.TrimSpace(dm.ClassName())
	if className == "" {
		return "", ErrMissingClassName
	}
	if strings.ContainsAny(className, `/\`) || className == "." || className == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassName, className)
	}
	return className + language.Extension(), nil
}

// ResolveDirectory maps the data model's package onto nested directories
// under outputRoot and creates any that are missing. Without a package, or
// with one made only of dots, the root itself is returned and nothing is
// touched.
func ResolveDirectory(dm model.DataModel, outputRoot string) (string, error) {
	if !dm.HasPackage() {
		return outputRoot, nil
	}

	segments, err := packageSegments(dm.Package())
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return outputRoot, nil
	}

	dir := filepath.Join(append([]string{outputRoot}, segments...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create package directory %s: %w", dir, err)
	}
	return dir, nil
}

func packageSegments(pkg string) ([]string, error) {
	var segments []string
	for _, seg := range strings.Split(strings.TrimSpace(pkg), packageSeparator) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if strings.ContainsAny(seg, `/\`) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, pkg)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
