package dxt

import "encoding/binary"

// EncodeDXT1 compresses an RGBA8888 buffer to DXT1. Alpha is ignored; every
// block is written in four-colour mode so the result decodes fully opaque.
// Pixels beyond the image edge are treated as transparent black.
// It panics if rgba is shorter than width*height*4.
func EncodeDXT1(rgba []byte, width, height int) []byte {
	return encodeBlocks(rgba, width, height, DXT1BlockSize, func(pixels *[16][4]uint8, out []byte) {
		encodeColorBlock(pixels, out)
	})
}

// EncodeDXT5 compresses an RGBA8888 buffer to DXT5 with interpolated alpha.
func EncodeDXT5(rgba []byte, width, height int) []byte {
	return encodeBlocks(rgba, width, height, DXT5BlockSize, func(pixels *[16][4]uint8, out []byte) {
		encodeAlphaBlock(pixels, out[0:8])
		encodeColorBlock(pixels, out[8:16])
	})
}

func encodeBlocks(rgba []byte, width, height, blockSize int, fn func(pixels *[16][4]uint8, out []byte)) []byte {
	if width <= 0 || height <= 0 {
		return nil
	}
	if len(rgba) < width*height*4 {
		panic("dxt: pixel buffer shorter than width*height*4")
	}

	blockW := BlocksAcross(width)
	blockH := BlocksAcross(height)
	out := make([]byte, blockW*blockH*blockSize)

	var pixels [16][4]uint8
	offset := 0
	for by := 0; by < blockH; by++ {
		for bx := 0; bx < blockW; bx++ {
			for py := 0; py < 4; py++ {
				for px := 0; px < 4; px++ {
					x, y := bx*4+px, by*4+py
					if x >= width || y >= height {
						pixels[py*4+px] = [4]uint8{}
						continue
					}
					i := (y*width + x) * 4
					copy(pixels[py*4+px][:], rgba[i:i+4])
				}
			}
			fn(&pixels, out[offset:offset+blockSize])
			offset += blockSize
		}
	}
	return out
}

func luminance(p [4]uint8) float64 {
	return 0.2126*float64(p[0]) + 0.7152*float64(p[1]) + 0.0722*float64(p[2])
}

// encodeColorBlock writes an 8-byte colour block. The brightest pixel becomes
// c0 and the darkest c1; after quantisation they are ordered so c0 >= c1,
// which keeps DXT1 decoders in four-colour mode. Equal endpoints make every
// palette entry the same colour and all indices 0.
func encodeColorBlock(pixels *[16][4]uint8, out []byte) {
	maxIdx, minIdx := 0, 0
	maxLum, minLum := luminance(pixels[0]), luminance(pixels[0])
	for i := 1; i < 16; i++ {
		l := luminance(pixels[i])
		if l > maxLum {
			maxLum, maxIdx = l, i
		}
		if l < minLum {
			minLum, minIdx = l, i
		}
	}

	hi, lo := pixels[maxIdx], pixels[minIdx]
	c0 := Pack565(hi[0], hi[1], hi[2])
	c1 := Pack565(lo[0], lo[1], lo[2])
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	palette := Palette565(c0, c1, true)

	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= uint32(nearestColor(&palette, pixels[i])) << (2 * i)
	}

	binary.LittleEndian.PutUint16(out[0:2], c0)
	binary.LittleEndian.PutUint16(out[2:4], c1)
	binary.LittleEndian.PutUint32(out[4:8], indices)
}

// nearestColor returns the first palette index with the smallest squared RGB distance.
func nearestColor(palette *[4][4]uint8, p [4]uint8) int {
	best, bestDist := 0, -1
	for i, c := range palette {
		dr := int(p[0]) - int(c[0])
		dg := int(p[1]) - int(c[1])
		db := int(p[2]) - int(c[2])
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// encodeAlphaBlock writes the 8-byte DXT5 alpha block using the block's
// maximum and minimum alpha as endpoints.
func encodeAlphaBlock(pixels *[16][4]uint8, out []byte) {
	a0, a1 := pixels[0][3], pixels[0][3]
	for i := 1; i < 16; i++ {
		a := pixels[i][3]
		if a > a0 {
			a0 = a
		}
		if a < a1 {
			a1 = a
		}
	}

	ramp := AlphaRamp(a0, a1)

	var indices uint64
	for i := 0; i < 16; i++ {
		indices |= uint64(nearestAlpha(&ramp, pixels[i][3])) << (3 * i)
	}

	out[0] = a0
	out[1] = a1
	for i := 0; i < 6; i++ {
		out[2+i] = byte(indices >> (8 * i))
	}
}

func nearestAlpha(ramp *[8]uint8, a uint8) int {
	best, bestDist := 0, -1
	for i, v := range ramp {
		d := int(a) - int(v)
		d *= d
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
