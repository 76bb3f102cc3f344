package tilesheet

import (
	"image"

	"github.com/disintegration/imaging"
)

// ApplyTransform orients src according to t and returns the result along
// with a description of the applied operations (see Transform.String).
//
// Operations run in a fixed order: rotation counter-clockwise, then a
// horizontal mirror, then a vertical flip. The order matters for
// non-square images. A zero rotation is skipped, not performed, and the
// identity transform returns src itself.
func ApplyTransform(src image.Image, t Transform) (image.Image, string, error) {
	t, err := t.Normalize()
	if err != nil {
		return nil, "", err
	}

	out := src
	switch t.Rotation {
	case 90:
		out = imaging.Rotate90(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate270(out)
	}
	if t.FlipH {
		out = imaging.FlipH(out)
	}
	if t.FlipV {
		out = imaging.FlipV(out)
	}
	return out, t.String(), nil
}
