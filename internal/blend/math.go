// Package blend implements the 8-bit alpha arithmetic used by the sheet
// filters.
//
// Colors here are straight (non-premultiplied) NRGBA, matching the pixel
// layout of image.NRGBA, which is what decoded sprites and the composite
// sheet use.
//
// References:
//   - Alvy Ray Smith's technical memos: http://alvyray.com/Memos/
package blend

// div255 divides x by 255 without a division instruction.
//
// Formula: ((x + 1) + ((x + 1) >> 8)) >> 8
//
// This is Alvy Ray Smith's formula, exact for every product of two bytes.
func div255(x uint16) uint16 {
	t := x + 1
	return (t + (t >> 8)) >> 8
}

// lerp255 returns a*w + b*(1-w) with w given as a byte weight.
// The sum of both products never exceeds 255*255, so it fits in uint16.
func lerp255(a, b, w byte) byte {
	return byte(div255(uint16(a)*uint16(w) + uint16(b)*uint16(255-w)))
}
