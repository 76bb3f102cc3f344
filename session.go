package tilesheet

import (
	"fmt"
	"image"
	"image/color"
	"slices"
)

// Options configures Open.
type Options struct {
	// TileSize, Rows and Cols size a new sheet when no metadata exists.
	// Zero values select the defaults.
	TileSize int
	Rows     int
	Cols     int

	// CacheSize bounds the decoded source cache (0 = DefaultCacheSize).
	CacheSize int

	// PreviewSize is the long side of selection previews (0 = DefaultPreviewSize).
	PreviewSize int

	// Placeholder is drawn over unresolvable sources. The zero value selects
	// DefaultPlaceholder.
	Placeholder color.NRGBA
}

func (o Options) withDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = DefaultTileSize
	}
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.Cols <= 0 {
		o.Cols = DefaultCols
	}
	if o.PreviewSize <= 0 {
		o.PreviewSize = DefaultPreviewSize
	}
	if o.Placeholder == (color.NRGBA{}) {
		o.Placeholder = DefaultPlaceholder
	}
	return o
}

// Session is one editing session of a sheet: the source directory, the
// name table scanned from it, the grid and its rendered sheet, and the
// current selection with its pending transform.
//
// Session is not safe for concurrent use.
type Session struct {
	Root         string
	Name         string
	ImagePath    string
	MetadataPath string

	Grid      *Grid
	Names     *NameTable
	Sheet     *Sheet
	Projector *Projector

	previewSize int
	selected    string
	pending     Transform
}

// Open scans dir for sources, loads the sheet called name from dir (or
// starts an empty one) and renders every placement.
func Open(dir, name string, opts Options) (*Session, error) {
	if name == "" {
		return nil, fmt.Errorf("tilesheet: open %s: empty sheet name", dir)
	}
	opts = opts.withDefaults()

	names, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	imagePath, metadataPath := Paths(dir, name)
	grid, err := LoadOrNew(metadataPath, opts.TileSize, opts.Rows, opts.Cols)
	if err != nil {
		return nil, err
	}

	proj := NewProjector(grid, names, NewSourceLoader(opts.CacheSize))
	proj.Placeholder = opts.Placeholder
	s := &Session{
		Root:         dir,
		Name:         name,
		ImagePath:    imagePath,
		MetadataPath: metadataPath,
		Grid:         grid,
		Names:        names,
		Sheet:        NewSheetFor(grid),
		Projector:    proj,
		previewSize:  opts.PreviewSize,
	}
	s.render()
	return s, nil
}

// render redraws the whole sheet from the grid.
func (s *Session) render() {
	s.Sheet.Clear(s.Sheet.Bounds())
	rep := s.Projector.RenderAll(s.Sheet)
	Logger().Info("tilesheet: rendered sheet", "name", s.Name,
		"placements", rep.Rendered+len(rep.Unresolved), "unresolved", len(rep.Unresolved),
		"cache_hit_rate", s.Projector.Loader.Stats().HitRate())
}

// Rescan rebuilds the name table from the source directory and re-renders
// the sheet, picking up sources that were added, moved, removed or edited.
func (s *Session) Rescan() error {
	names, err := Scan(s.Root)
	if err != nil {
		return err
	}
	for _, path := range s.Names.Items() {
		s.Projector.Loader.Forget(path)
	}
	s.Names = names
	s.Projector.Names = names
	if s.selected != "" {
		if _, ok := names.Resolve(s.selected); !ok {
			s.selected = ""
		}
	}
	s.render()
	return nil
}

// Select makes the source with basename name current and resets the
// pending transform. An empty name clears the selection.
func (s *Session) Select(name string) error {
	s.pending = Transform{}
	if name == "" {
		s.selected = ""
		return nil
	}
	name = BaseName(name)
	if _, ok := s.Names.Resolve(name); !ok {
		return fmt.Errorf("%w: %q is not in %s", ErrUnresolved, name, s.Root)
	}
	s.selected = name
	return nil
}

// Selected returns the current selection.
func (s *Session) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// Pending returns the transform the next placement will use.
func (s *Session) Pending() Transform { return s.pending }

// Rotate turns the pending transform a further 90 degrees.
func (s *Session) Rotate() Transform {
	s.pending.Rotation = (s.pending.Rotation + 90) % 360
	return s.pending
}

// ToggleFlipH toggles the pending horizontal mirror.
func (s *Session) ToggleFlipH() Transform {
	s.pending.FlipH = !s.pending.FlipH
	return s.pending
}

// ToggleFlipV toggles the pending vertical flip.
func (s *Session) ToggleFlipV() Transform {
	s.pending.FlipV = !s.pending.FlipV
	return s.pending
}

// PlaceSelected places the current selection at pos with the pending
// transform and draws it. A render failure is logged, not returned: the
// placement itself succeeded and shows as a placeholder.
func (s *Session) PlaceSelected(pos Coord) (Entry, error) {
	if s.selected == "" {
		return Entry{}, ErrNoSelection
	}
	path, ok := s.Names.Resolve(s.selected)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnresolved, s.selected)
	}
	src, err := s.Projector.Loader.Source(path)
	if err != nil {
		return Entry{}, err
	}

	anchor, err := s.Grid.Place(pos, src, s.pending)
	if err != nil {
		return Entry{}, err
	}
	_ = s.Projector.RenderCell(anchor.Pos, s.Sheet)
	return anchor, nil
}

// RemoveAt removes the placement covering pos and erases its pixels.
func (s *Session) RemoveAt(pos Coord) (RemoveResult, error) {
	res, err := s.Grid.Remove(pos)
	if err != nil {
		return RemoveResult{}, err
	}
	s.Projector.EraseRemoved(res, s.Sheet)
	return res, nil
}

// Highlighted returns the tiles that use the current selection.
func (s *Session) Highlighted() []Coord {
	if s.selected == "" {
		return nil
	}
	return s.Grid.CellsWithSource(s.selected)
}

// NextUnused selects the next source after the current selection, in scan
// order and wrapping around, that no tile uses yet. When every source is
// in use the selection is cleared and NextUnused returns false.
func (s *Session) NextUnused() (string, bool) {
	names := s.Names.Names()
	start := slices.Index(names, s.selected) + 1

	for i := range names {
		name := names[(start+i)%len(names)]
		if !s.Grid.IsUsed(name) {
			_ = s.Select(name)
			return name, true
		}
	}
	_ = s.Select("")
	return "", false
}

// Preview renders the current selection with the pending transform. It
// returns a nil image when nothing is selected.
func (s *Session) Preview() (image.Image, string, error) {
	if s.selected == "" {
		return nil, "", nil
	}
	path, ok := s.Names.Resolve(s.selected)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnresolved, s.selected)
	}
	src, err := s.Projector.Loader.Load(path)
	if err != nil {
		return nil, "", err
	}
	return Preview(src, s.pending, s.previewSize)
}

// Save writes the sheet image and metadata.
func (s *Session) Save() error {
	return Save(s.Grid, s.Sheet, s.ImagePath, s.MetadataPath)
}
