package tilesheet

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MetadataExt is the extension of the placement metadata written next to a
// composite sheet. A PNG with a sibling metadata file is a sheet, not a
// source, and is skipped by Scan.
const MetadataExt = ".tiles.json"

// sourceExts lists the file extensions Scan treats as source images.
var sourceExts = []string{".png", ".gif", ".jpg", ".jpeg", ".bmp", ".webp", ".tif", ".tiff"}

// BaseName returns the NFC-normalized final element of p. Both slash and
// backslash separate elements, so paths recorded on any platform reduce to
// the same basename.
func BaseName(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	return norm.NFC.String(p)
}

// IsSourceImage reports whether path has a supported image extension.
func IsSourceImage(path string) bool {
	return slices.Contains(sourceExts, strings.ToLower(filepath.Ext(path)))
}

// Duplicate records a basename found at more than one path.
type Duplicate struct {
	Name    string
	Kept    string
	Ignored string
}

// NameTable resolves source basenames to file paths.
//
// The table is built once per directory scan and is read-only afterwards.
type NameTable struct {
	paths      map[string]string
	items      []string
	duplicates []Duplicate
}

// NewNameTable returns an empty table.
func NewNameTable() *NameTable {
	return &NameTable{paths: make(map[string]string)}
}

// Add registers path under its basename. If the basename is already known
// the first mapping is kept, the duplicate is recorded and Add returns false.
func (t *NameTable) Add(path string) bool {
	name := BaseName(path)
	if kept, ok := t.paths[name]; ok {
		t.duplicates = append(t.duplicates, Duplicate{Name: name, Kept: kept, Ignored: path})
		return false
	}
	t.paths[name] = path
	t.items = append(t.items, path)
	return true
}

// Resolve returns the path registered for the basename name.
func (t *NameTable) Resolve(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	p, ok := t.paths[BaseName(name)]
	return p, ok
}

// Len returns the number of distinct basenames.
func (t *NameTable) Len() int { return len(t.paths) }

// Items returns the registered paths in scan order.
func (t *NameTable) Items() []string { return slices.Clone(t.items) }

// Names returns the registered basenames in scan order.
func (t *NameTable) Names() []string {
	names := make([]string, len(t.items))
	for i, p := range t.items {
		names[i] = BaseName(p)
	}
	return names
}

// Duplicates returns the basenames that were found more than once.
func (t *NameTable) Duplicates() []Duplicate { return slices.Clone(t.duplicates) }

// Scan walks root and builds a NameTable of every source image below it.
// Composite sheets (PNG files with a sibling metadata file) and hidden
// entries are skipped. Duplicate basenames are logged; the first path in
// walk order wins.
func Scan(root string) (*NameTable, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("tilesheet: scan %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("tilesheet: scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tilesheet: scan %s: not a directory", root)
	}

	t := NewNameTable()
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != abs && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsSourceImage(path) || isSheet(path) {
			return nil
		}
		if !t.Add(path) {
			Logger().Warn("tilesheet: duplicate source basename",
				"name", BaseName(path), "kept", t.paths[BaseName(path)], "ignored", path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tilesheet: scan %s: %w", root, err)
	}

	Logger().Info("tilesheet: scanned sources",
		"root", abs, "sources", t.Len(), "duplicates", len(t.duplicates))
	return t, nil
}

// isSheet reports whether path is a composite written by Save.
func isSheet(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return false
	}
	_, err := os.Stat(strings.TrimSuffix(path, filepath.Ext(path)) + MetadataExt)
	return err == nil
}
