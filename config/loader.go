// Package config loads weftgen run configuration and data model files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that check themselves
// after decoding.
type Validator interface {
	Validate() error
}

// LoadYAML decodes the YAML (or JSON) file at path into target and validates
// it when target implements Validator. Unknown keys are rejected.
func LoadYAML[T any](path string, target *T) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return decode(data, target)
}

// LoadYAMLFromString is LoadYAML for content that is already in memory.
func LoadYAMLFromString[T any](yamlContent string, target *T) error {
	return decode([]byte(yamlContent), target)
}

func readFile(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file does not exist: %s", absPath)
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", absPath, err)
	}
	return data, nil
}

func decode[T any](data []byte, target *T) error {
	if err := strictDecode(data, target); err != nil {
		return err
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return nil
}

func strictDecode(data []byte, target any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML configuration: %w", err)
	}
	return nil
}
