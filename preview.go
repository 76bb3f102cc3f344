package tilesheet

import (
	"image"
	"strconv"

	"github.com/disintegration/imaging"
)

// DefaultPreviewSize is the long-side length of a selection preview.
const DefaultPreviewSize = 64

// Preview returns src with t applied, scaled with nearest-neighbor so its
// longer side is size pixels, and a label such as "32x16  rotation: 90".
// The label reports the transformed size before scaling.
func Preview(src image.Image, t Transform, size int) (image.Image, string, error) {
	img, desc, err := ApplyTransform(src, t)
	if err != nil {
		return nil, "", err
	}
	if size <= 0 {
		size = DefaultPreviewSize
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	label := strconv.Itoa(w) + "x" + strconv.Itoa(h)
	if desc != "" {
		label += "  " + desc
	}
	if w == 0 || h == 0 {
		return img, label, nil
	}

	pw, ph := size, max(1, size*h/w)
	if h > w {
		pw, ph = max(1, size*w/h), size
	}
	return imaging.Resize(img, pw, ph, imaging.NearestNeighbor), label, nil
}
