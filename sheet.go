package tilesheet

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Sheet is the composite image a grid renders into.
type Sheet struct {
	img *image.NRGBA
}

// NewSheet creates a fully transparent sheet of the given pixel size.
func NewSheet(width, height int) *Sheet {
	return &Sheet{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// NewSheetFor creates a transparent sheet sized for g.
func NewSheetFor(g *Grid) *Sheet {
	size := g.PixelSize()
	return NewSheet(size.X, size.Y)
}

// Width returns the width of the sheet in pixels.
func (s *Sheet) Width() int { return s.img.Rect.Dx() }

// Height returns the height of the sheet in pixels.
func (s *Sheet) Height() int { return s.img.Rect.Dy() }

// Image returns the underlying pixel buffer.
func (s *Sheet) Image() *image.NRGBA { return s.img }

// At implements the image.Image interface.
func (s *Sheet) At(x, y int) color.Color { return s.img.At(x, y) }

// Bounds implements the image.Image interface.
func (s *Sheet) Bounds() image.Rectangle { return s.img.Rect }

// ColorModel implements the image.Image interface.
func (s *Sheet) ColorModel() color.Model { return color.NRGBAModel }

// NRGBAAt returns the pixel at (x, y).
func (s *Sheet) NRGBAAt(x, y int) color.NRGBA { return s.img.NRGBAAt(x, y) }

// FillRect replaces every pixel of r with c. r is clipped to the sheet.
func (s *Sheet) FillRect(r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(s.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// Clear makes every pixel of r fully transparent.
func (s *Sheet) Clear(r image.Rectangle) {
	s.FillRect(r, color.NRGBA{})
}

// Paste composites src over the sheet inside r, aligning src's top-left
// corner with r.Min. Transparent source pixels leave the sheet unchanged.
func (s *Sheet) Paste(src image.Image, r image.Rectangle) {
	r = r.Intersect(s.img.Rect)
	if r.Empty() {
		return
	}
	draw.Draw(s.img, r, src, src.Bounds().Min, draw.Over)
}

// EncodePNG writes the sheet as a PNG.
func (s *Sheet) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("tilesheet: encode PNG: %w", err)
	}
	return nil
}
