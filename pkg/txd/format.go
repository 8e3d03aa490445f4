package txd

import "fmt"

// RasterFormat identifies the pixel encoding of a texture's level-0 data.
type RasterFormat int

const (
	FormatUnknown RasterFormat = iota
	FormatDXT1
	FormatDXT3
	FormatDXT5
	FormatARGB8888
	FormatARGB1555
	FormatARGB4444
	FormatRGB888
	FormatRGB565
	FormatLUM8
)

// Platform identifiers stored in the texture native struct.
const (
	PlatformD3D8 = 8
	PlatformD3D9 = 9
)

// D3DFORMAT values found in the d3d_format field.
const (
	D3DFmtA8R8G8B8 = 21
	D3DFmtX8R8G8B8 = 22
	D3DFmtR5G6B5   = 23
	D3DFmtA1R5G5B5 = 25
	D3DFmtA4R4G4B4 = 26
	D3DFmtL8       = 50

	FourCCDXT1 = 0x31545844 // "DXT1"
	FourCCDXT3 = 0x33545844 // "DXT3"
	FourCCDXT5 = 0x35545844 // "DXT5"
)

// Raster format flag bits.
const (
	RasterFormat565  = 0x0200
	RasterFormat4444 = 0x0300
	RasterPal8       = 0x2000
	RasterPal4       = 0x4000
)

func (f RasterFormat) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT5:
		return "DXT5"
	case FormatARGB8888:
		return "ARGB8888"
	case FormatARGB1555:
		return "ARGB1555"
	case FormatARGB4444:
		return "ARGB4444"
	case FormatRGB888:
		return "RGB888"
	case FormatRGB565:
		return "RGB565"
	case FormatLUM8:
		return "LUM8"
	case FormatUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("RasterFormat(%d)", int(f))
	}
}

// ParseRasterFormat is the inverse of String. Unrecognised names give FormatUnknown.
func ParseRasterFormat(s string) RasterFormat {
	for f := FormatDXT1; f <= FormatLUM8; f++ {
		if f.String() == s {
			return f
		}
	}
	return FormatUnknown
}

// HasAlpha reports whether the format stores an alpha channel.
func (f RasterFormat) HasAlpha() bool {
	switch f {
	case FormatDXT3, FormatDXT5, FormatARGB8888, FormatARGB1555, FormatARGB4444:
		return true
	}
	return false
}

// Compressed reports whether the format is a DXT block format.
func (f RasterFormat) Compressed() bool {
	return f == FormatDXT1 || f == FormatDXT3 || f == FormatDXT5
}

// resolveFormat maps the platform-specific header fields to a RasterFormat.
// D3D8 marks compression in platformProp, D3D9 stores a FOURCC in d3dFormat.
// Both fall back to the uncompressed D3DFORMAT codes.
func resolveFormat(platform, d3dFormat uint32, platformProp uint8) RasterFormat {
	switch platform {
	case PlatformD3D8:
		switch platformProp {
		case 1:
			return FormatDXT1
		case 3:
			return FormatDXT3
		case 5:
			return FormatDXT5
		}
	case PlatformD3D9:
		switch d3dFormat {
		case FourCCDXT1:
			return FormatDXT1
		case FourCCDXT3:
			return FormatDXT3
		case FourCCDXT5:
			return FormatDXT5
		}
	default:
		return FormatUnknown
	}

	switch d3dFormat {
	case D3DFmtA8R8G8B8:
		return FormatARGB8888
	case D3DFmtX8R8G8B8:
		return FormatRGB888
	case D3DFmtR5G6B5:
		return FormatRGB565
	case D3DFmtA1R5G5B5:
		return FormatARGB1555
	case D3DFmtA4R4G4B4:
		return FormatARGB4444
	case D3DFmtL8:
		return FormatLUM8
	}
	return FormatUnknown
}
