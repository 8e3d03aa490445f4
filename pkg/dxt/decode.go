package dxt

import "encoding/binary"

// DecodeDXT1 decompresses a DXT1 stream to RGBA8888.
// It returns false if the stream is too short for the image dimensions.
func DecodeDXT1(data []byte, width, height int) ([]byte, bool) {
	return decodeBlocks(data, width, height, DXT1BlockSize, func(block []byte, out *[16][4]uint8) {
		decodeColorBlock(block, false, out)
	})
}

// DecodeDXT3 decompresses a DXT3 stream (explicit 4-bit alpha) to RGBA8888.
func DecodeDXT3(data []byte, width, height int) ([]byte, bool) {
	return decodeBlocks(data, width, height, DXT3BlockSize, func(block []byte, out *[16][4]uint8) {
		decodeColorBlock(block[8:], true, out)

		alpha := binary.LittleEndian.Uint64(block[0:8])
		for i := 0; i < 16; i++ {
			out[i][3] = uint8((alpha>>(4*i))&0xF) * 17
		}
	})
}

// DecodeDXT5 decompresses a DXT5 stream (interpolated alpha) to RGBA8888.
func DecodeDXT5(data []byte, width, height int) ([]byte, bool) {
	return decodeBlocks(data, width, height, DXT5BlockSize, func(block []byte, out *[16][4]uint8) {
		decodeColorBlock(block[8:], true, out)

		ramp := AlphaRamp(block[0], block[1])
		var indices uint64
		for i := 0; i < 6; i++ {
			indices |= uint64(block[2+i]) << (8 * i)
		}
		for i := 0; i < 16; i++ {
			out[i][3] = ramp[(indices>>(3*i))&7]
		}
	})
}

// decodeColorBlock expands an 8-byte colour block into 16 RGBA pixels.
func decodeColorBlock(block []byte, opaque bool, out *[16][4]uint8) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	indices := binary.LittleEndian.Uint32(block[4:8])

	palette := Palette565(c0, c1, opaque)
	for i := 0; i < 16; i++ {
		out[i] = palette[(indices>>(2*i))&3]
	}
}

// decodeBlocks walks the block grid, decoding each block with fn and writing
// the in-bounds pixels. Edge blocks are decoded in full and clipped.
func decodeBlocks(data []byte, width, height, blockSize int, fn func(block []byte, out *[16][4]uint8)) ([]byte, bool) {
	if width <= 0 || height <= 0 {
		return nil, false
	}

	blockW := BlocksAcross(width)
	blockH := BlocksAcross(height)
	if len(data) < blockW*blockH*blockSize {
		return nil, false
	}

	rgba := make([]byte, width*height*4)
	var pixels [16][4]uint8

	offset := 0
	for by := 0; by < blockH; by++ {
		for bx := 0; bx < blockW; bx++ {
			fn(data[offset:offset+blockSize], &pixels)
			offset += blockSize

			for py := 0; py < 4; py++ {
				y := by*4 + py
				if y >= height {
					break
				}
				for px := 0; px < 4; px++ {
					x := bx*4 + px
					if x >= width {
						break
					}
					pixOffset := (y*width + x) * 4
					copy(rgba[pixOffset:pixOffset+4], pixels[py*4+px][:])
				}
			}
		}
	}

	return rgba, true
}
