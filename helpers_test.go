package tilesheet

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	red         = color.NRGBA{R: 255, A: 255}
	green       = color.NRGBA{G: 255, A: 255}
	blue        = color.NRGBA{B: 255, A: 255}
	transparent = color.NRGBA{}
)

// solidImage returns a w×h image filled with c.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// writePNG encodes img to dir/name, creating dir as needed, and returns the path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// mustGrid creates a grid or fails the test.
func mustGrid(t *testing.T, tileSize, rows, cols int) *Grid {
	t.Helper()
	g, err := NewGrid(tileSize, rows, cols)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d, %d) error = %v", tileSize, rows, cols, err)
	}
	return g
}

// mustPlace places src or fails the test.
func mustPlace(t *testing.T, g *Grid, pos Coord, src Source, tr Transform) Entry {
	t.Helper()
	e, err := g.Place(pos, src, tr)
	if err != nil {
		t.Fatalf("Place(%v, %+v, %+v) error = %v", pos, src, tr, err)
	}
	return e
}

func pixelAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}
