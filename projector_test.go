package tilesheet

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"
)

// projectorFixture writes sources into a temp dir and returns a projector
// over a 16px, 4×4 grid with those sources scanned.
func projectorFixture(t *testing.T, sources map[string]image.Image) (*Projector, *Sheet) {
	t.Helper()
	dir := t.TempDir()
	for name, img := range sources {
		writePNG(t, dir, name, img)
	}
	names, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	g := mustGrid(t, 16, 4, 4)
	return NewProjector(g, names, NewSourceLoader(8)), NewSheetFor(g)
}

func TestRenderCellPastesAtTilePosition(t *testing.T) {
	p, sheet := projectorFixture(t, map[string]image.Image{
		"wide.png": solidImage(32, 16, red),
	})
	mustPlace(t, p.Grid, Coord{1, 2}, Source{Name: "wide.png", Width: 32, Height: 16}, Transform{})

	if err := p.RenderCell(Coord{1, 2}, sheet); err != nil {
		t.Fatalf("RenderCell() error = %v", err)
	}
	if got := sheet.NRGBAAt(16, 32); got != red {
		t.Errorf("pixel at anchor origin = %v, want red", got)
	}
	if got := sheet.NRGBAAt(47, 47); got != red {
		t.Errorf("pixel at footprint corner = %v, want red", got)
	}
	if got := sheet.NRGBAAt(48, 32); got != transparent {
		t.Errorf("pixel past footprint = %v, want transparent", got)
	}
}

func TestRenderCellSkipsEmptyAndDependent(t *testing.T) {
	p, sheet := projectorFixture(t, map[string]image.Image{
		"wide.png": solidImage(32, 16, red),
	})
	mustPlace(t, p.Grid, Coord{0, 0}, Source{Name: "wide.png", Width: 32, Height: 16}, Transform{})

	if err := p.RenderCell(Coord{3, 3}, sheet); err != nil {
		t.Errorf("RenderCell(empty) error = %v", err)
	}
	if err := p.RenderCell(Coord{1, 0}, sheet); err != nil {
		t.Errorf("RenderCell(dependent) error = %v", err)
	}
	if got := sheet.NRGBAAt(16, 0); got != transparent {
		t.Errorf("dependent render drew pixels: %v", got)
	}
}

func TestRenderCellAppliesTransform(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			c := red
			if x >= 16 {
				c = green
			}
			src.SetNRGBA(x, y, c)
		}
	}
	p, sheet := projectorFixture(t, map[string]image.Image{"half.png": src})
	mustPlace(t, p.Grid, Coord{0, 0}, Source{Name: "half.png", Width: 32, Height: 16}, Transform{Rotation: 90})

	if err := p.RenderCell(Coord{0, 0}, sheet); err != nil {
		t.Fatal(err)
	}
	// Counter-clockwise: the green right half ends up on top.
	if got := sheet.NRGBAAt(8, 4); got != green {
		t.Errorf("top tile = %v, want green", got)
	}
	if got := sheet.NRGBAAt(8, 20); got != red {
		t.Errorf("bottom tile = %v, want red", got)
	}
}

func TestRenderCellAlphaCompositing(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	src.SetNRGBA(0, 0, blue)
	p, sheet := projectorFixture(t, map[string]image.Image{"dot.png": src})
	mustPlace(t, p.Grid, Coord{0, 0}, Source{Name: "dot.png", Width: 16, Height: 16}, Transform{})

	sheet.FillRect(image.Rect(0, 0, 16, 16), green)
	if err := p.RenderCell(Coord{0, 0}, sheet); err != nil {
		t.Fatal(err)
	}
	if got := sheet.NRGBAAt(0, 0); got != blue {
		t.Errorf("opaque source pixel = %v, want blue", got)
	}
	if got := sheet.NRGBAAt(5, 5); got != green {
		t.Errorf("transparent source pixel overwrote sheet: %v", got)
	}
}

func TestRenderUnresolvedDrawsPlaceholder(t *testing.T) {
	logs := captureLogs(t)
	p, sheet := projectorFixture(t, map[string]image.Image{
		"rock.png": solidImage(16, 16, red),
	})
	mustPlace(t, p.Grid, Coord{0, 0}, Source{Name: "tree.png", Width: 32, Height: 32}, Transform{})
	mustPlace(t, p.Grid, Coord{3, 3}, Source{Name: "rock.png", Width: 16, Height: 16}, Transform{})

	err := p.RenderCell(Coord{0, 0}, sheet)
	if !errors.Is(err, ErrUnresolved) {
		t.Fatalf("RenderCell(tree.png) error = %v, want ErrUnresolved", err)
	}
	for _, pt := range []image.Point{{0, 0}, {31, 31}, {16, 5}} {
		if got := sheet.NRGBAAt(pt.X, pt.Y); got != DefaultPlaceholder {
			t.Errorf("pixel %v = %v, want placeholder", pt, got)
		}
	}
	if got := sheet.NRGBAAt(32, 0); got != transparent {
		t.Errorf("placeholder spilled past footprint: %v", got)
	}
	if !strings.Contains(logs.String(), "tree.png") {
		t.Errorf("expected diagnostic mentioning tree.png, got: %s", logs.String())
	}

	rep := p.RenderAll(sheet)
	if rep.Rendered != 1 || len(rep.Unresolved) != 1 || rep.Unresolved[0] != (Coord{0, 0}) {
		t.Errorf("RenderAll() = %+v, want 1 rendered and 0,0 unresolved", rep)
	}
	if got := sheet.NRGBAAt(48, 48); got != red {
		t.Errorf("resolvable placement = %v, want red", got)
	}
}

func TestRenderUndecodableSource(t *testing.T) {
	captureLogs(t)
	p, sheet := projectorFixture(t, nil)
	p.Placeholder = color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	p.Names.Add(filepath.Join(t.TempDir(), "gone.png"))
	mustPlace(t, p.Grid, Coord{0, 0}, Source{Name: "gone.png", Width: 16, Height: 16}, Transform{})

	if err := p.RenderCell(Coord{0, 0}, sheet); !errors.Is(err, ErrUnresolved) {
		t.Fatalf("error = %v, want ErrUnresolved", err)
	}
	if got := sheet.NRGBAAt(0, 0); got != p.Placeholder {
		t.Errorf("pixel = %v, want custom placeholder", got)
	}
}

func TestEraseCell(t *testing.T) {
	p, sheet := projectorFixture(t, map[string]image.Image{
		"tall.png": solidImage(16, 32, red),
		"keep.png": solidImage(16, 16, green),
	})
	mustPlace(t, p.Grid, Coord{0, 0}, Source{Name: "tall.png", Width: 16, Height: 32}, Transform{})
	mustPlace(t, p.Grid, Coord{1, 0}, Source{Name: "keep.png", Width: 16, Height: 16}, Transform{})
	p.RenderAll(sheet)

	res, err := p.Grid.Remove(Coord{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	p.EraseCell(res.Anchor, sheet)

	for _, pt := range []image.Point{{0, 0}, {15, 31}} {
		if got := sheet.NRGBAAt(pt.X, pt.Y); got != transparent {
			t.Errorf("pixel %v = %v, want transparent", pt, got)
		}
	}
	if got := sheet.NRGBAAt(16, 0); got != green {
		t.Errorf("neighbour pixel = %v, want green", got)
	}
}

func TestEraseRemovedOrphan(t *testing.T) {
	p, sheet := projectorFixture(t, nil)
	sheet.FillRect(sheet.Bounds(), red)

	p.EraseRemoved(RemoveResult{Cells: []Coord{{1, 1}}}, sheet)
	if got := sheet.NRGBAAt(20, 20); got != transparent {
		t.Errorf("orphan tile = %v, want transparent", got)
	}
	if got := sheet.NRGBAAt(0, 0); got != red {
		t.Errorf("other tile = %v, want red", got)
	}
}
