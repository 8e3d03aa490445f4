// Package dxt converts between block-compressed DXT1/DXT3/DXT5 (BC1/BC2/BC3)
// streams and raw RGBA8888 pixel buffers.
//
// Pixel buffers are row-major, top-to-bottom, 4 bytes per pixel in R, G, B, A
// order with straight (non-premultiplied) alpha. Compressed streams are
// sequences of 4x4 blocks in raster order. Decoders report failure with a
// false second result instead of returning partial images.
//
// The encoders are intentionally simple: endpoints are the brightest and
// darkest pixels of each block by luminance and every pixel takes the nearest
// palette entry. They are fast and deterministic, not high quality.
package dxt

// Bytes per 4x4 block.
const (
	DXT1BlockSize = 8
	DXT3BlockSize = 16
	DXT5BlockSize = 16
)

// BlocksAcross returns the number of 4x4 blocks needed to cover n pixels.
func BlocksAcross(n int) int {
	return (n + 3) / 4
}

// Size returns the byte length of a block stream covering a width x height image.
func Size(width, height, blockSize int) int {
	return BlocksAcross(width) * BlocksAcross(height) * blockSize
}

// Expand565 converts a packed RGB565 value to 8-bit channels by bit replication.
func Expand565(c uint16) (r, g, b uint8) {
	r5 := (c >> 11) & 0x1F
	g6 := (c >> 5) & 0x3F
	b5 := c & 0x1F
	r = uint8((r5 << 3) | (r5 >> 2))
	g = uint8((g6 << 2) | (g6 >> 4))
	b = uint8((b5 << 3) | (b5 >> 2))
	return r, g, b
}

// Pack565 truncates 8-bit channels to a packed RGB565 value.
func Pack565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// Palette565 builds the four-entry RGBA palette of a colour block.
//
// With opaque set the palette is always the four-colour interpolation, as in
// DXT3 and DXT5 colour blocks. Otherwise the DXT1 rule applies: c0 > c1 gives
// four opaque colours, c0 <= c1 gives c0, c1, their midpoint and transparent
// black.
func Palette565(c0, c1 uint16, opaque bool) [4][4]uint8 {
	r0, g0, b0 := Expand565(c0)
	r1, g1, b1 := Expand565(c1)

	var p [4][4]uint8
	p[0] = [4]uint8{r0, g0, b0, 255}
	p[1] = [4]uint8{r1, g1, b1, 255}

	if opaque || c0 > c1 {
		p[2] = [4]uint8{third(r0, r1), third(g0, g1), third(b0, b1), 255}
		p[3] = [4]uint8{third(r1, r0), third(g1, g0), third(b1, b0), 255}
	} else {
		p[2] = [4]uint8{half(r0, r1), half(g0, g1), half(b0, b1), 255}
		p[3] = [4]uint8{0, 0, 0, 0}
	}
	return p
}

// third returns (2a+b)/3 without overflowing uint8.
func third(a, b uint8) uint8 {
	return uint8((2*int(a) + int(b)) / 3)
}

func half(a, b uint8) uint8 {
	return uint8((int(a) + int(b)) / 2)
}

// AlphaRamp builds the eight-entry DXT5 alpha palette indexed by the 3-bit codes.
//
// a0 > a1 gives a0, a1 and six interpolated steps between them. Otherwise the
// palette is a0, a1, four interpolated steps, then literal 0 and 255.
func AlphaRamp(a0, a1 uint8) [8]uint8 {
	var ramp [8]uint8
	ramp[0] = a0
	ramp[1] = a1

	x0, x1 := int(a0), int(a1)
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			ramp[i] = uint8((x0*(8-i) + x1*(i-1)) / 7)
		}
	} else {
		for i := 2; i < 6; i++ {
			ramp[i] = uint8((x0*(6-i) + x1*(i-1)) / 5)
		}
		ramp[6] = 0
		ramp[7] = 255
	}
	return ramp
}
