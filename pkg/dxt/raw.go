package dxt

import "encoding/binary"

// Uncompressed D3D surface formats. Each decoder converts a tightly packed
// little-endian surface to RGBA8888 and returns false if data is too short.

// DecodeBGRA8888 decodes D3DFMT_A8R8G8B8 (bytes B, G, R, A).
func DecodeBGRA8888(data []byte, width, height int) ([]byte, bool) {
	return decodePixels(data, width, height, 4, func(src, dst []byte) {
		dst[0], dst[1], dst[2], dst[3] = src[2], src[1], src[0], src[3]
	})
}

// DecodeBGR888 decodes D3DFMT_X8R8G8B8. The padding byte is ignored.
func DecodeBGR888(data []byte, width, height int) ([]byte, bool) {
	return decodePixels(data, width, height, 4, func(src, dst []byte) {
		dst[0], dst[1], dst[2], dst[3] = src[2], src[1], src[0], 255
	})
}

// DecodeRGB565 decodes D3DFMT_R5G6B5.
func DecodeRGB565(data []byte, width, height int) ([]byte, bool) {
	return decodePixels(data, width, height, 2, func(src, dst []byte) {
		dst[0], dst[1], dst[2] = Expand565(binary.LittleEndian.Uint16(src))
		dst[3] = 255
	})
}

// DecodeARGB1555 decodes D3DFMT_A1R5G5B5.
func DecodeARGB1555(data []byte, width, height int) ([]byte, bool) {
	return decodePixels(data, width, height, 2, func(src, dst []byte) {
		v := binary.LittleEndian.Uint16(src)
		dst[0] = expand5(v >> 10)
		dst[1] = expand5(v >> 5)
		dst[2] = expand5(v)
		if v&0x8000 != 0 {
			dst[3] = 255
		} else {
			dst[3] = 0
		}
	})
}

// DecodeARGB4444 decodes D3DFMT_A4R4G4B4.
func DecodeARGB4444(data []byte, width, height int) ([]byte, bool) {
	return decodePixels(data, width, height, 2, func(src, dst []byte) {
		v := binary.LittleEndian.Uint16(src)
		dst[0] = uint8((v>>8)&0xF) * 17
		dst[1] = uint8((v>>4)&0xF) * 17
		dst[2] = uint8(v&0xF) * 17
		dst[3] = uint8((v>>12)&0xF) * 17
	})
}

// DecodeLUM8 decodes D3DFMT_L8 as opaque grey.
func DecodeLUM8(data []byte, width, height int) ([]byte, bool) {
	return decodePixels(data, width, height, 1, func(src, dst []byte) {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], 255
	})
}

func expand5(v uint16) uint8 {
	v &= 0x1F
	return uint8(v<<3 | v>>2)
}

func decodePixels(data []byte, width, height, bpp int, fn func(src, dst []byte)) ([]byte, bool) {
	if width <= 0 || height <= 0 || len(data) < width*height*bpp {
		return nil, false
	}

	n := width * height
	rgba := make([]byte, n*4)
	for i := 0; i < n; i++ {
		fn(data[i*bpp:(i+1)*bpp], rgba[i*4:i*4+4])
	}
	return rgba, true
}
