package blend

// Tint composites a straight-alpha tint color over one source pixel:
//
//	outRGB = tintRGB*tintA + srcRGB*(1-tintA)
//	outA   = tintA + srcA*(1-tintA)
//
// Fully transparent source pixels are returned unchanged so a tint never
// paints into the empty area around a sprite.
func Tint(sr, sg, sb, sa, tr, tg, tb, ta byte) (r, g, b, a byte) {
	if sa == 0 {
		return sr, sg, sb, sa
	}
	return lerp255(tr, sr, ta),
		lerp255(tg, sg, ta),
		lerp255(tb, sb, ta),
		lerp255(255, sa, ta)
}

// TintRow applies Tint in place to n NRGBA pixels stored in pix.
// The tint is given as [r, g, b, a].
func TintRow(pix []byte, n int, tint [4]byte) {
	if n*4 > len(pix) {
		n = len(pix) / 4
	}
	for i := 0; i < n; i++ {
		o := i * 4
		pix[o+0], pix[o+1], pix[o+2], pix[o+3] = Tint(
			pix[o+0], pix[o+1], pix[o+2], pix[o+3],
			tint[0], tint[1], tint[2], tint[3],
		)
	}
}
