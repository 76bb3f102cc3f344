package tilesheet

import (
	"fmt"
	"image"
	"maps"
	"slices"
)

// Default grid parameters for a sheet without saved metadata.
const (
	DefaultTileSize = 16
	DefaultRows     = 50
	DefaultCols     = 50
)

// MaxSheetSize bounds the width and height of a composite sheet in pixels.
const MaxSheetSize = 1 << 14

// Role tells which shape an Entry has.
type Role uint8

const (
	// RoleAnchor is the top-left tile of a placement. It carries the
	// placement size and the coordinates of its dependents.
	RoleAnchor Role = iota + 1
	// RoleDependent is any other tile covered by a placement. It carries
	// only the coordinate of its anchor.
	RoleDependent
)

// String implements fmt.Stringer.
func (r Role) String() string {
	switch r {
	case RoleAnchor:
		return "anchor"
	case RoleDependent:
		return "dependent"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// Source describes a source image by basename and natural pixel size.
type Source struct {
	Name   string
	Width  int
	Height int
}

// Entry is one occupied tile.
//
// Entry is a tagged variant: Width, Height and Dependents are meaningful
// only when Role is RoleAnchor, and AnchorPos only when Role is
// RoleDependent. References between tiles are coordinates; the grid is
// the sole owner of every entry.
type Entry struct {
	Pos       Coord
	Source    string
	Transform Transform
	Role      Role

	// Anchor fields. Width and Height are post-rotation pixel sizes.
	Width      int
	Height     int
	Dependents []Coord

	// Dependent fields.
	AnchorPos Coord
}

// IsAnchor reports whether e is the anchor of its placement.
func (e Entry) IsAnchor() bool { return e.Role == RoleAnchor }

// Cells returns every tile of an anchor's placement: its dependents followed
// by the anchor itself. It returns nil for dependents.
func (e Entry) Cells() []Coord {
	if e.Role != RoleAnchor {
		return nil
	}
	cells := make([]Coord, 0, len(e.Dependents)+1)
	cells = append(cells, e.Dependents...)
	return append(cells, e.Pos)
}

// PixelRect returns the pixel rectangle an anchor covers on the sheet.
func (e Entry) PixelRect(tileSize int) image.Rectangle {
	x, y := e.Pos.Col*tileSize, e.Pos.Row*tileSize
	return image.Rect(x, y, x+e.Width, y+e.Height)
}

func (e Entry) clone() Entry {
	e.Dependents = slices.Clone(e.Dependents)
	return e
}

// RemoveResult describes a completed removal.
type RemoveResult struct {
	// Anchor is the removed placement. Its Role is zero when the targeted
	// tile was an orphaned dependent whose anchor no longer exists.
	Anchor Entry
	// Cells lists the tiles actually deleted.
	Cells []Coord
	// Missing lists tiles the anchor claimed that were absent or owned by
	// another placement. Non-empty Missing means the grid was inconsistent
	// before the removal.
	Missing []Coord
}

// Orphaned reports whether the removal hit a dependent without an anchor.
func (r RemoveResult) Orphaned() bool { return r.Anchor.Role != RoleAnchor }

// Grid tracks tile occupancy for one sheet.
//
// Grid is not safe for concurrent use.
type Grid struct {
	tileSize int
	rows     int
	cols     int
	entries  map[Coord]Entry
	used     map[string]struct{}
}

// NewGrid creates an empty grid of cols×rows tiles of tileSize pixels.
func NewGrid(tileSize, rows, cols int) (*Grid, error) {
	if tileSize <= 0 || rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("tilesheet: invalid grid %dx%d of %dpx tiles", cols, rows, tileSize)
	}
	if tileSize > MaxSheetSize || cols > MaxSheetSize/tileSize || rows > MaxSheetSize/tileSize {
		return nil, fmt.Errorf("tilesheet: grid %dx%d of %dpx tiles exceeds %dpx sheet limit",
			cols, rows, tileSize, MaxSheetSize)
	}
	return &Grid{
		tileSize: tileSize,
		rows:     rows,
		cols:     cols,
		entries:  make(map[Coord]Entry),
		used:     make(map[string]struct{}),
	}, nil
}

// NewDefaultGrid creates an empty grid with the default parameters.
func NewDefaultGrid() *Grid {
	g, _ := NewGrid(DefaultTileSize, DefaultRows, DefaultCols)
	return g
}

// TileSize returns the tile edge length in pixels.
func (g *Grid) TileSize() int { return g.tileSize }

// Rows returns the number of tile rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of tile columns.
func (g *Grid) Cols() int { return g.cols }

// PixelSize returns the size of the composite image in pixels.
func (g *Grid) PixelSize() image.Point {
	return image.Pt(g.cols*g.tileSize, g.rows*g.tileSize)
}

// Len returns the number of occupied tiles.
func (g *Grid) Len() int { return len(g.entries) }

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < g.cols && c.Row < g.rows
}

// HasCell reports whether c is occupied.
func (g *Grid) HasCell(c Coord) bool {
	_, ok := g.entries[c]
	return ok
}

// Cell returns a copy of the entry at c.
func (g *Grid) Cell(c Coord) (Entry, bool) {
	e, ok := g.entries[c]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// AnchorOf returns the anchor of the placement covering c.
func (g *Grid) AnchorOf(c Coord) (Entry, bool) {
	e, ok := g.entries[c]
	if !ok {
		return Entry{}, false
	}
	if e.Role == RoleDependent {
		e, ok = g.entries[e.AnchorPos]
		if !ok || e.Role != RoleAnchor {
			return Entry{}, false
		}
	}
	return e.clone(), true
}

// Coords returns all occupied coordinates in row-major order.
func (g *Grid) Coords() []Coord {
	coords := make([]Coord, 0, len(g.entries))
	for c := range g.entries {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, compareCoords)
	return coords
}

// Anchors returns every anchor in row-major order.
func (g *Grid) Anchors() []Entry {
	var anchors []Entry
	for _, c := range g.Coords() {
		if e := g.entries[c]; e.Role == RoleAnchor {
			anchors = append(anchors, e.clone())
		}
	}
	return anchors
}

// UsedNames returns the set of source basenames referenced by the grid.
// The returned map is a copy.
func (g *Grid) UsedNames() map[string]struct{} {
	return maps.Clone(g.used)
}

// IsUsed reports whether any tile references the source basename name.
func (g *Grid) IsUsed(name string) bool {
	_, ok := g.used[name]
	return ok
}

// CellsWithSource returns every tile referencing the basename name, in
// row-major order.
func (g *Grid) CellsWithSource(name string) []Coord {
	name = BaseName(name)
	var cells []Coord
	for _, c := range g.Coords() {
		if g.entries[c].Source == name {
			cells = append(cells, c)
		}
	}
	return cells
}

// fits reports whether a w×h pixel placement anchored at pos lies entirely
// inside the grid. It never overflows, whatever w and h are.
func (g *Grid) fits(pos Coord, w, h int) bool {
	if !g.InBounds(pos) {
		return false
	}
	cols, rows := cellSpan(w, g.tileSize), cellSpan(h, g.tileSize)
	return cols > 0 && rows > 0 && cols <= g.cols-pos.Col && rows <= g.rows-pos.Row
}

// Place puts src at pos with transform t and returns the new anchor.
//
// The footprint is derived from the source size after rotation. If pos or
// any other in-grid footprint tile is occupied, Place returns ErrOverlap
// and the grid is not modified. Footprints reaching past the grid edge
// return ErrOutOfBounds. Both checks run before the footprint is built.
func (g *Grid) Place(pos Coord, src Source, t Transform) (Entry, error) {
	name := BaseName(src.Name)
	if name == "" || src.Width <= 0 || src.Height <= 0 {
		return Entry{}, fmt.Errorf("%w: %q %dx%d", ErrInvalidSource, src.Name, src.Width, src.Height)
	}
	t, err := t.Normalize()
	if err != nil {
		return Entry{}, err
	}

	if g.HasCell(pos) {
		return Entry{}, fmt.Errorf("%w: %v", ErrOverlap, pos)
	}
	w, h := t.Size(src.Width, src.Height)
	if g.InBounds(pos) {
		// Only the part of the footprint inside the grid can collide.
		cols := min(cellSpan(w, g.tileSize), g.cols-pos.Col)
		rows := min(cellSpan(h, g.tileSize), g.rows-pos.Row)
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if c := pos.Add(j, i); g.HasCell(c) {
					return Entry{}, fmt.Errorf("%w: %v covers occupied %v", ErrOverlap, pos, c)
				}
			}
		}
	}
	if !g.fits(pos, w, h) {
		return Entry{}, fmt.Errorf("%w: %dx%d at %v in a %dx%d grid of %dpx tiles",
			ErrOutOfBounds, w, h, pos, g.cols, g.rows, g.tileSize)
	}
	cells := Footprint(pos, w, h, g.tileSize)

	anchor := Entry{
		Pos:       pos,
		Source:    name,
		Transform: t,
		Role:      RoleAnchor,
		Width:     w,
		Height:    h,
	}
	for _, c := range cells {
		if c == pos {
			continue
		}
		g.entries[c] = Entry{
			Pos:       c,
			Source:    name,
			Transform: t,
			Role:      RoleDependent,
			AnchorPos: pos,
		}
		anchor.Dependents = append(anchor.Dependents, c)
	}
	g.entries[pos] = anchor
	g.refreshUsed()

	return anchor.clone(), nil
}

// Remove deletes the whole placement covering pos, whichever of its tiles
// pos is, and returns it so the caller can erase its pixels.
//
// Removing an empty tile returns ErrNotFound. Tiles the anchor claims but
// that are missing from the grid are logged as integrity warnings and
// reported in RemoveResult.Missing; the rest of the placement is still
// removed.
func (g *Grid) Remove(pos Coord) (RemoveResult, error) {
	e, ok := g.entries[pos]
	if !ok {
		return RemoveResult{}, fmt.Errorf("%w: %v", ErrNotFound, pos)
	}

	anchorPos := pos
	if e.Role == RoleDependent {
		anchorPos = e.AnchorPos
	}
	anchor, ok := g.entries[anchorPos]
	if !ok || anchor.Role != RoleAnchor {
		Logger().Warn("tilesheet: dependent tile has no anchor",
			"tile", pos, "anchor", anchorPos, "source", e.Source)
		delete(g.entries, pos)
		g.refreshUsed()
		return RemoveResult{Cells: []Coord{pos}, Missing: []Coord{anchorPos}}, nil
	}

	res := RemoveResult{Anchor: anchor.clone()}
	for _, c := range anchor.Cells() {
		owned, ok := g.entries[c]
		switch {
		case !ok:
			Logger().Warn("tilesheet: placement tile missing from grid",
				"tile", c, "anchor", anchorPos, "source", anchor.Source)
			res.Missing = append(res.Missing, c)
		case c != anchorPos && (owned.Role != RoleDependent || owned.AnchorPos != anchorPos):
			Logger().Warn("tilesheet: placement tile owned by another placement",
				"tile", c, "anchor", anchorPos, "owner", owned.AnchorPos)
			res.Missing = append(res.Missing, c)
		default:
			delete(g.entries, c)
			res.Cells = append(res.Cells, c)
		}
	}
	g.refreshUsed()

	return res, nil
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		tileSize: g.tileSize,
		rows:     g.rows,
		cols:     g.cols,
		entries:  make(map[Coord]Entry, len(g.entries)),
		used:     maps.Clone(g.used),
	}
	for k, e := range g.entries {
		c.entries[k] = e.clone()
	}
	return c
}

// Equal reports whether two grids have identical parameters and entries.
func (g *Grid) Equal(o *Grid) bool {
	if g.tileSize != o.tileSize || g.rows != o.rows || g.cols != o.cols {
		return false
	}
	return maps.EqualFunc(g.entries, o.entries, entriesEqual)
}

func entriesEqual(a, b Entry) bool {
	return a.Pos == b.Pos &&
		a.Source == b.Source &&
		a.Transform == b.Transform &&
		a.Role == b.Role &&
		a.Width == b.Width &&
		a.Height == b.Height &&
		a.AnchorPos == b.AnchorPos &&
		slices.Equal(a.Dependents, b.Dependents)
}

// refreshUsed rebuilds the used-name set from the entries. It is rebuilt
// wholesale rather than maintained incrementally so it always equals the
// set of names in the grid.
func (g *Grid) refreshUsed() {
	used := make(map[string]struct{}, len(g.used))
	for _, e := range g.entries {
		used[e.Source] = struct{}{}
	}
	g.used = used
}
