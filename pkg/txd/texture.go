package txd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/imgfactory/txdtools/pkg/dxt"
	"github.com/imgfactory/txdtools/pkg/rw"
)

// NameSize is the fixed width of the name and mask name fields.
const NameSize = 32

// Texture is one raster of a dictionary with its level-0 pixels.
type Texture struct {
	Name      string
	AlphaName string // Mask name, empty when absent
	Width     int
	Height    int
	Format    RasterFormat
	HasAlpha  bool

	MipmapCount uint8
	Depth       uint8
	FilterMode  uint8
	Addressing  uint8
	Platform    uint32
	RasterFlags uint32

	// Data is the level-0 payload exactly as stored, nil if it could not be read.
	Data []byte
	// Pixels is RGBA8888, nil if decoding failed or the format is unsupported.
	Pixels []byte
}

// Decoded reports whether the texture carries decoded pixels.
func (t *Texture) Decoded() bool {
	return t.Pixels != nil
}

// nativeHeader is the fixed 88-byte prefix of a texture native struct.
type nativeHeader struct {
	Platform     uint32
	FilterMode   uint8
	Addressing   uint8
	_            [2]byte
	Name         [NameSize]byte
	MaskName     [NameSize]byte
	RasterFlags  uint32
	D3DFormat    uint32
	Width        uint16
	Height       uint16
	Depth        uint8
	MipLevels    uint8
	RasterType   uint8
	PlatformProp uint8
}

const nativeHeaderSize = 88

// ParseTextureNative builds a Texture from the payload of a Texture Native
// chunk. It never fails: on any structural problem the returned texture keeps
// whatever fields were read, Pixels stays nil and a placeholder name
// "texture_<index>" is used if no name was recovered.
func ParseTextureNative(payload []byte, index int, opts ...Option) Texture {
	tex, _ := parseTextureNative(payload, index, newOptions(opts))
	return tex
}

// parseTextureNative is ParseTextureNative with the failure reason.
func parseTextureNative(payload []byte, index int, o *options) (Texture, error) {
	tex := Texture{Name: placeholderName(index)}

	h, _, err := rw.ReadChunkHeader(payload, 0)
	if errors.Is(err, rw.ErrTruncatedHeader) {
		return tex, fmt.Errorf("%w: texture native struct header: %v", ErrTruncatedInput, err)
	}
	if h.Type != rw.ChunkStruct {
		return tex, fmt.Errorf("%w: expected struct, got %s", ErrMalformedChunk, rw.TypeName(h.Type))
	}

	// The struct's declared size is not trusted; reads are bounded by the
	// enclosing texture native payload instead.
	reader := bytes.NewReader(payload[rw.HeaderSize:])

	var hdr nativeHeader
	if err := binary.Read(reader, binary.LittleEndian, &hdr); err != nil {
		return tex, fmt.Errorf("%w: texture native header: %v", ErrTruncatedInput, err)
	}

	if name := decodeName(hdr.Name[:], o); name != "" {
		tex.Name = name
	}
	tex.AlphaName = decodeName(hdr.MaskName[:], o)
	tex.Platform = hdr.Platform
	tex.FilterMode = hdr.FilterMode
	tex.Addressing = hdr.Addressing
	tex.RasterFlags = hdr.RasterFlags
	tex.Width = int(hdr.Width)
	tex.Height = int(hdr.Height)
	tex.Depth = hdr.Depth
	tex.MipmapCount = hdr.MipLevels
	tex.Format = resolveFormat(hdr.Platform, hdr.D3DFormat, hdr.PlatformProp)
	tex.HasAlpha = tex.Format.HasAlpha()

	if skip := paletteSize(hdr.RasterFlags, hdr.Depth); skip > 0 {
		if reader.Len() < skip {
			return tex, fmt.Errorf("%w: palette of %d bytes", ErrTruncatedInput, skip)
		}
		if _, err := reader.Seek(int64(skip), io.SeekCurrent); err != nil {
			return tex, fmt.Errorf("skip palette: %w", err)
		}
	}

	var size uint32
	if err := binary.Read(reader, binary.LittleEndian, &size); err != nil {
		return tex, fmt.Errorf("%w: pixel data length: %v", ErrTruncatedInput, err)
	}
	if uint64(size) > uint64(reader.Len()) {
		return tex, fmt.Errorf("%w: pixel data declares %d bytes, %d available", ErrTruncatedInput, size, reader.Len())
	}

	start := len(payload) - reader.Len()
	tex.Data = payload[start : start+int(size)]

	// Further mip levels follow here; they are neither read nor validated.

	if tex.Format == FormatUnknown {
		return tex, fmt.Errorf("%w: platform %d, d3d format 0x%x, flags 0x%x",
			ErrUnsupportedFormat, hdr.Platform, hdr.D3DFormat, hdr.RasterFlags)
	}

	pixels, ok := decodePixels(tex.Format, tex.Data, tex.Width, tex.Height)
	if !ok {
		return tex, fmt.Errorf("%w: %s data too short for %dx%d", ErrTruncatedInput, tex.Format, tex.Width, tex.Height)
	}
	tex.Pixels = pixels

	return tex, nil
}

// paletteSize returns the number of palette bytes preceding the pixel data.
func paletteSize(flags uint32, depth uint8) int {
	switch (flags >> 13) & 3 {
	case 0:
		return 0
	case 1:
		return 1024
	default:
		if depth == 4 {
			return 64
		}
		return 128
	}
}

func decodePixels(format RasterFormat, data []byte, width, height int) ([]byte, bool) {
	switch format {
	case FormatDXT1:
		return dxt.DecodeDXT1(data, width, height)
	case FormatDXT3:
		return dxt.DecodeDXT3(data, width, height)
	case FormatDXT5:
		return dxt.DecodeDXT5(data, width, height)
	case FormatARGB8888:
		return dxt.DecodeBGRA8888(data, width, height)
	case FormatRGB888:
		return dxt.DecodeBGR888(data, width, height)
	case FormatRGB565:
		return dxt.DecodeRGB565(data, width, height)
	case FormatARGB1555:
		return dxt.DecodeARGB1555(data, width, height)
	case FormatARGB4444:
		return dxt.DecodeARGB4444(data, width, height)
	case FormatLUM8:
		return dxt.DecodeLUM8(data, width, height)
	}
	return nil, false
}

func placeholderName(index int) string {
	return fmt.Sprintf("texture_%d", index)
}
