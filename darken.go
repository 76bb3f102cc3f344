package tilesheet

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/gogpu/tilesheet/internal/blend"
)

// Darken composites tint over every non-transparent pixel of src and
// returns the result as a new image. Fully transparent pixels stay
// transparent.
func Darken(src image.Image, tint color.NRGBA) *image.NRGBA {
	out := imaging.Clone(src)
	t := [4]byte{tint.R, tint.G, tint.B, tint.A}
	w := out.Rect.Dx()
	for y := 0; y < out.Rect.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		blend.TintRow(row, w, t)
	}
	return out
}

// DarkenFile applies Darken to the image at in and writes the result to
// out. The output format follows the extension of out.
func DarkenFile(in, out string, tint color.NRGBA) error {
	src, err := imaging.Open(in)
	if err != nil {
		return fmt.Errorf("tilesheet: darken: %w", err)
	}
	if err := imaging.Save(Darken(src, tint), out); err != nil {
		return fmt.Errorf("%w: darken: %w", ErrPersistence, err)
	}
	Logger().Info("tilesheet: darkened image", "in", in, "out", out, "tint", tint)
	return nil
}
