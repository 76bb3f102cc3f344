package tilesheet

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Coord identifies one tile of the grid by column and row.
type Coord struct {
	Col int
	Row int
}

// String returns "col,row".
func (c Coord) String() string {
	return strconv.Itoa(c.Col) + "," + strconv.Itoa(c.Row)
}

// MarshalText implements encoding.TextMarshaler so Coord can key JSON maps.
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Coord) UnmarshalText(b []byte) error {
	col, row, ok := strings.Cut(string(b), ",")
	if !ok {
		return fmt.Errorf("tilesheet: invalid coordinate %q", b)
	}
	x, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return fmt.Errorf("tilesheet: invalid coordinate %q: %w", b, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return fmt.Errorf("tilesheet: invalid coordinate %q: %w", b, err)
	}
	c.Col, c.Row = x, y
	return nil
}

// Add returns c offset by dc columns and dr rows.
func (c Coord) Add(dc, dr int) Coord {
	return Coord{Col: c.Col + dc, Row: c.Row + dr}
}

// compareCoords orders coordinates row-major.
func compareCoords(a, b Coord) int {
	if r := cmp.Compare(a.Row, b.Row); r != 0 {
		return r
	}
	return cmp.Compare(a.Col, b.Col)
}

// Transform is the orientation applied to a source image when placed.
// Rotation is counter-clockwise in degrees.
type Transform struct {
	Rotation int
	FlipH    bool
	FlipV    bool
}

// Normalize folds Rotation into [0, 360) and checks that it is a multiple
// of 90.
func (t Transform) Normalize() (Transform, error) {
	r := t.Rotation % 360
	if r < 0 {
		r += 360
	}
	if r%90 != 0 {
		return t, fmt.Errorf("%w: got %d", ErrInvalidRotation, t.Rotation)
	}
	t.Rotation = r
	return t, nil
}

// SwapsAxes reports whether the rotation exchanges width and height.
func (t Transform) SwapsAxes() bool {
	return t.Rotation == 90 || t.Rotation == 270
}

// Size returns the pixel size of a w×h source after the transform.
func (t Transform) Size(w, h int) (int, int) {
	if t.SwapsAxes() {
		return h, w
	}
	return w, h
}

// String lists the applied operations in application order, separated by
// two spaces. The identity transform yields "".
func (t Transform) String() string {
	var parts []string
	if t.Rotation != 0 {
		parts = append(parts, "rotation: "+strconv.Itoa(t.Rotation))
	}
	if t.FlipH {
		parts = append(parts, "flipH")
	}
	if t.FlipV {
		parts = append(parts, "flipV")
	}
	return strings.Join(parts, "  ")
}

// cellSpan returns how many tiles n pixels cover. It does not overflow
// for any positive n.
func cellSpan(n, tileSize int) int {
	if n <= 0 || tileSize <= 0 {
		return 0
	}
	return (n-1)/tileSize + 1
}

// Footprint returns every tile covered by a width×height pixel rectangle
// whose top-left tile is origin, in row-major order with origin first.
//
// The result has one element per covered tile; callers bound width and
// height first (Grid does so against its own size).
func Footprint(origin Coord, width, height, tileSize int) []Coord {
	cols, rows := cellSpan(width, tileSize), cellSpan(height, tileSize)
	if cols <= 0 || rows <= 0 {
		return nil
	}
	cells := make([]Coord, 0, cols*rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cells = append(cells, origin.Add(j, i))
		}
	}
	return cells
}
