package tilesheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// metadataVersion is the current metadata format version.
const metadataVersion = 1

// metadataFile is the on-disk form of a Grid.
type metadataFile struct {
	Version  int                 `json:"version"`
	TileSize int                 `json:"tile_size"`
	Rows     int                 `json:"rows"`
	Cols     int                 `json:"cols"`
	Entries  map[Coord]entryJSON `json:"entries"`
}

type entryJSON struct {
	Source       string  `json:"source"`
	Rotation     int     `json:"rotation"`
	FlipH        bool    `json:"flip_h"`
	FlipV        bool    `json:"flip_v"`
	Role         string  `json:"role"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	Dependencies []Coord `json:"dependencies,omitempty"`
	Anchor       *Coord  `json:"anchor,omitempty"`
}

// Paths returns the composite image and metadata paths of the sheet called
// name inside dir.
func Paths(dir, name string) (imagePath, metadataPath string) {
	base := filepath.Join(dir, name)
	return base + ".png", base + MetadataExt
}

// MarshalMetadata encodes g as indented JSON.
func MarshalMetadata(g *Grid) ([]byte, error) {
	f := metadataFile{
		Version:  metadataVersion,
		TileSize: g.tileSize,
		Rows:     g.rows,
		Cols:     g.cols,
		Entries:  make(map[Coord]entryJSON, len(g.entries)),
	}
	for c, e := range g.entries {
		ej := entryJSON{
			Source:   e.Source,
			Rotation: e.Transform.Rotation,
			FlipH:    e.Transform.FlipH,
			FlipV:    e.Transform.FlipV,
			Role:     e.Role.String(),
		}
		switch e.Role {
		case RoleAnchor:
			ej.Width, ej.Height = e.Width, e.Height
			ej.Dependencies = e.Dependents
		case RoleDependent:
			anchor := e.AnchorPos
			ej.Anchor = &anchor
		}
		f.Entries[c] = ej
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tilesheet: encode metadata: %w", err)
	}
	return data, nil
}

// UnmarshalMetadata decodes metadata written by MarshalMetadata.
//
// Every source reference is reduced to its basename, so metadata recorded
// with full paths before a directory move still resolves. The decoded grid
// is then repaired; the returned problems list what Repair changed.
func UnmarshalMetadata(data []byte) (*Grid, []Problem, error) {
	var f metadataFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if f.Version > metadataVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, f.Version)
	}
	g, err := NewGrid(f.TileSize, f.Rows, f.Cols)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	for c, ej := range f.Entries {
		e := Entry{
			Pos:    c,
			Source: BaseName(ej.Source),
			Transform: Transform{
				Rotation: ej.Rotation,
				FlipH:    ej.FlipH,
				FlipV:    ej.FlipV,
			},
		}
		if t, err := e.Transform.Normalize(); err == nil {
			e.Transform = t
		}
		switch ej.Role {
		case "anchor":
			e.Role = RoleAnchor
			e.Width, e.Height = ej.Width, ej.Height
			e.Dependents = ej.Dependencies
		case "dependent":
			if ej.Anchor != nil {
				e.Role = RoleDependent
				e.AnchorPos = *ej.Anchor
			}
		}
		g.entries[c] = e
	}

	problems := g.Repair()
	return g, problems, nil
}

// Load reads the grid stored at metadataPath. A missing file is not an
// error: Load returns an empty grid with the default parameters.
func Load(metadataPath string) (*Grid, error) {
	return LoadOrNew(metadataPath, DefaultTileSize, DefaultRows, DefaultCols)
}

// LoadOrNew is like Load but creates a tileSize, rows×cols grid when
// metadataPath does not exist.
func LoadOrNew(metadataPath string, tileSize, rows, cols int) (*Grid, error) {
	data, err := os.ReadFile(filepath.Clean(metadataPath))
	if errors.Is(err, fs.ErrNotExist) {
		Logger().Info("tilesheet: no metadata, starting empty sheet",
			"path", metadataPath, "tile_size", tileSize, "rows", rows, "cols", cols)
		return NewGrid(tileSize, rows, cols)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, metadataPath, err)
	}

	g, problems, err := UnmarshalMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", metadataPath, err)
	}
	for _, p := range problems {
		Logger().Warn("tilesheet: repaired metadata", "path", metadataPath, "tile", p.Cell, "issue", p.Issue)
	}
	Logger().Info("tilesheet: loaded metadata", "path", metadataPath,
		"tiles", g.Len(), "sources", len(g.used), "repairs", len(problems))
	return g, nil
}

// Save writes the composite sheet to imagePath as PNG and the grid to
// metadataPath. The two writes are independent: both are attempted and
// any failures are returned joined, each wrapping ErrPersistence.
func Save(g *Grid, sheet *Sheet, imagePath, metadataPath string) error {
	var errs []error

	if err := writeFileAtomic(imagePath, sheet.EncodePNG); err != nil {
		errs = append(errs, fmt.Errorf("%w: save image: %w", ErrPersistence, err))
	}

	data, err := MarshalMetadata(g)
	if err == nil {
		err = writeFileAtomic(metadataPath, func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(data))
			return err
		})
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: save metadata: %w", ErrPersistence, err))
	}

	if len(errs) == 0 {
		Logger().Info("tilesheet: saved sheet", "image", imagePath, "metadata", metadataPath, "tiles", g.Len())
	}
	return errors.Join(errs...)
}

// writeFileAtomic writes through a temporary file in the destination
// directory and renames it over path, so a failed write never truncates
// an existing file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
