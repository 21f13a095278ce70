// Package state records which files a generation run produced.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cpcf/weftgen/write"
)

// ManifestFileName is written at the top of the output root.
const ManifestFileName = ".weftgen.manifest.json"

const (
	manifestVersion = "1.0"
	generatorName   = "weftgen"
)

type ManifestEntry struct {
	Path     string            `json:"path"`
	Hash     string            `json:"hash"`
	Size     int64             `json:"size"`
	Template string            `json:"template"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Manifest struct {
	Version    string                   `json:"version"`
	RunID      string                   `json:"run_id"`
	Generated  time.Time                `json:"generated"`
	Generator  string                   `json:"generator"`
	Language   string                   `json:"language"`
	OutputRoot string                   `json:"output_root"`
	Entries    map[string]ManifestEntry `json:"entries"`
}

type ManifestManager struct {
	outputRoot   string
	manifestPath string
	writer       write.Writer
}

func NewManifestManager(outputRoot string) *ManifestManager {
	return &ManifestManager{
		outputRoot:   outputRoot,
		manifestPath: filepath.Join(outputRoot, ManifestFileName),
		writer:       write.NewBaseWriter(),
	}
}

// Path returns where the manifest is stored.
func (mm *ManifestManager) Path() string {
	return mm.manifestPath
}

// NewManifest starts an empty manifest for one run.
func (mm *ManifestManager) NewManifest(runID, language string) *Manifest {
	return &Manifest{
		Version:    manifestVersion,
		RunID:      runID,
		Generated:  time.Now().UTC(),
		Generator:  generatorName,
		Language:   language,
		OutputRoot: mm.outputRoot,
		Entries:    make(map[string]ManifestEntry),
	}
}

func (mm *ManifestManager) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(mm.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if manifest.Entries == nil {
		manifest.Entries = make(map[string]ManifestEntry)
	}
	return &manifest, nil
}

func (mm *ManifestManager) SaveManifest(manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	opts := write.WriteOptions{CreateDirs: true, Overwrite: true, Atomic: true}
	if err := mm.writer.Write(mm.manifestPath, data, opts); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// AddEntry hashes the file at path (absolute, or relative to the output
// root) and records it under its slash-separated root-relative path.
func (mm *ManifestManager) AddEntry(manifest *Manifest, path, templateName string, metadata map[string]string) error {
	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(mm.outputRoot, path)
	}

	rel, err := mm.relative(fullPath)
	if err != nil {
		return err
	}

	hash, size, err := fileHash(fullPath)
	if err != nil {
		return fmt.Errorf("failed to hash %s: %w", fullPath, err)
	}

	key := filepath.ToSlash(rel)
	if manifest.Entries == nil {
		manifest.Entries = make(map[string]ManifestEntry)
	}
	manifest.Entries[key] = ManifestEntry{
		Path:     key,
		Hash:     hash,
		Size:     size,
		Template: templateName,
		Metadata: metadata,
	}
	return nil
}

func (mm *ManifestManager) GetEntry(manifest *Manifest, path string) (ManifestEntry, bool) {
	entry, ok := manifest.Entries[filepath.ToSlash(path)]
	return entry, ok
}

// ListEntries returns entries ordered by path.
func (mm *ManifestManager) ListEntries(manifest *Manifest) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(manifest.Entries))
	for _, entry := range manifest.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// HasChanged reports whether the file on disk differs from its entry.
// Files without an entry, or missing on disk, count as changed.
func (mm *ManifestManager) HasChanged(manifest *Manifest, path string) (bool, error) {
	entry, ok := mm.GetEntry(manifest, path)
	if !ok {
		return true, nil
	}

	hash, size, err := fileHash(filepath.Join(mm.outputRoot, filepath.FromSlash(entry.Path)))
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return size != entry.Size || hash != entry.Hash, nil
}

// relative returns fullPath relative to the output root. Both sides are made
// absolute first so a relative root still matches an absolute path.
func (mm *ManifestManager) relative(fullPath string) (string, error) {
	absRoot, err := filepath.Abs(mm.outputRoot)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file %s is outside output root %s", fullPath, mm.outputRoot)
	}
	return rel, nil
}

func fileHash(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	h := sha256.New()
	n, err := io.Copy(h, file)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
