// Package dds reads and writes DirectDraw Surface files holding DXT
// compressed textures.
//
// Only the legacy FOURCC header is produced: DXT1, DXT3 and DXT5 all have
// FOURCC codes, and every tool that opens TXD exports understands them
// without the DX10 extension.
package dds

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/imgfactory/txdtools/pkg/dxt"
)

// FOURCC codes for the supported block formats.
const (
	FOURCC_DXT1 = 0x31545844 // "DXT1"
	FOURCC_DXT3 = 0x33545844 // "DXT3"
	FOURCC_DXT5 = 0x35545844 // "DXT5"
	FOURCC_DX10 = 0x30315844 // "DX10"
)

// DDS header constants
const (
	DDS_MAGIC                    = 0x20534444 // "DDS "
	DDS_HEADER_SIZE              = 124
	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000

	DDS_SURFACE_FLAGS_TEXTURE = 0x1000

	DDS_PIXELFORMAT_SIZE = 32
	DDS_FOURCC           = 0x4
)

// FileHeaderSize is the magic plus the DDS_HEADER.
const FileHeaderSize = 4 + DDS_HEADER_SIZE

var (
	ErrBadMagic          = errors.New("dds: bad magic")
	ErrTruncated         = errors.New("dds: truncated file")
	ErrUnsupportedFormat = errors.New("dds: unsupported pixel format")
)

// Surface is the top mip level of a DDS texture.
type Surface struct {
	Width     uint32
	Height    uint32
	FourCC    uint32
	MipLevels uint32
	Data      []byte // level 0 block data
}

// BlockSize returns the bytes per 4x4 block for the FOURCC, or 0.
func BlockSize(fourCC uint32) int {
	switch fourCC {
	case FOURCC_DXT1:
		return dxt.DXT1BlockSize
	case FOURCC_DXT3:
		return dxt.DXT3BlockSize
	case FOURCC_DXT5:
		return dxt.DXT5BlockSize
	}
	return 0
}

// FormatName returns a human-readable name for a FOURCC value.
func FormatName(fourCC uint32) string {
	switch fourCC {
	case FOURCC_DXT1:
		return "DXT1"
	case FOURCC_DXT3:
		return "DXT3"
	case FOURCC_DXT5:
		return "DXT5"
	case FOURCC_DX10:
		return "DX10"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", fourCC)
	}
}

// String returns a human-readable representation.
func (s *Surface) String() string {
	return fmt.Sprintf("Surface: %dx%d, %d mips, format=%s, size=%d",
		s.Width, s.Height, s.MipLevels, FormatName(s.FourCC), len(s.Data))
}

// Decode returns the surface's pixels as RGBA8.
func (s *Surface) Decode() ([]byte, bool) {
	w, h := int(s.Width), int(s.Height)
	switch s.FourCC {
	case FOURCC_DXT1:
		return dxt.DecodeDXT1(s.Data, w, h)
	case FOURCC_DXT3:
		return dxt.DecodeDXT3(s.Data, w, h)
	case FOURCC_DXT5:
		return dxt.DecodeDXT5(s.Data, w, h)
	}
	return nil, false
}

// Marshal writes a single-level DDS file for the surface.
func Marshal(s *Surface) ([]byte, error) {
	linearSize := calculateLinearSize(s.Width, s.Height, s.FourCC)
	if linearSize == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, FormatName(s.FourCC))
	}
	if uint32(len(s.Data)) < linearSize {
		return nil, fmt.Errorf("block data size %d is less than %d for %dx%d", len(s.Data), linearSize, s.Width, s.Height)
	}

	out := make([]byte, FileHeaderSize+int(linearSize))
	writeHeader(out, s.Width, s.Height, s.FourCC, linearSize)
	copy(out[FileHeaderSize:], s.Data[:linearSize])
	return out, nil
}

func writeHeader(header []byte, width, height, fourCC, linearSize uint32) {
	binary.LittleEndian.PutUint32(header[0:4], DDS_MAGIC)

	// DDS_HEADER starts at offset 4
	binary.LittleEndian.PutUint32(header[4:8], DDS_HEADER_SIZE)
	flags := uint32(DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH |
		DDS_HEADER_FLAGS_PIXELFORMAT | DDS_HEADER_FLAGS_LINEARSIZE)
	binary.LittleEndian.PutUint32(header[8:12], flags)
	binary.LittleEndian.PutUint32(header[12:16], height)
	binary.LittleEndian.PutUint32(header[16:20], width)
	binary.LittleEndian.PutUint32(header[20:24], linearSize)
	// dwDepth at 24, dwMipMapCount at 28
	binary.LittleEndian.PutUint32(header[28:32], 1)
	// dwReserved1[11] at 32..76

	// DDS_PIXELFORMAT at 76
	binary.LittleEndian.PutUint32(header[76:80], DDS_PIXELFORMAT_SIZE)
	binary.LittleEndian.PutUint32(header[80:84], DDS_FOURCC)
	binary.LittleEndian.PutUint32(header[84:88], fourCC)
	// bit count and masks are zero for FOURCC formats

	// dwCaps at 108
	binary.LittleEndian.PutUint32(header[108:112], DDS_SURFACE_FLAGS_TEXTURE)
}

// Unmarshal parses a DDS file and returns its top mip level.
func Unmarshal(data []byte) (*Surface, error) {
	if len(data) < FileHeaderSize {
		return nil, fmt.Errorf("%w: need %d header bytes, got %d", ErrTruncated, FileHeaderSize, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != DDS_MAGIC {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBadMagic, magic)
	}
	if size := binary.LittleEndian.Uint32(data[4:8]); size != DDS_HEADER_SIZE {
		return nil, fmt.Errorf("invalid header size: expected %d, got %d", DDS_HEADER_SIZE, size)
	}

	s := &Surface{
		Height:    binary.LittleEndian.Uint32(data[12:16]),
		Width:     binary.LittleEndian.Uint32(data[16:20]),
		MipLevels: binary.LittleEndian.Uint32(data[28:32]),
	}
	if s.MipLevels == 0 {
		s.MipLevels = 1
	}

	if pfFlags := binary.LittleEndian.Uint32(data[80:84]); pfFlags&DDS_FOURCC == 0 {
		return nil, fmt.Errorf("%w: uncompressed pixel format", ErrUnsupportedFormat)
	}
	s.FourCC = binary.LittleEndian.Uint32(data[84:88])

	linearSize := calculateLinearSize(s.Width, s.Height, s.FourCC)
	if linearSize == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, FormatName(s.FourCC))
	}
	body := data[FileHeaderSize:]
	if uint32(len(body)) < linearSize {
		return nil, fmt.Errorf("%w: need %d data bytes, got %d", ErrTruncated, linearSize, len(body))
	}
	s.Data = body[:linearSize]
	return s, nil
}

// calculateLinearSize calculates the size of the top level for a FOURCC,
// or 0 when the format is not supported.
func calculateLinearSize(width, height, fourCC uint32) uint32 {
	blockSize := uint32(BlockSize(fourCC))
	if blockSize == 0 {
		return 0
	}

	// Calculate number of blocks (round up)
	blocksWide := (width + 3) / 4
	blocksHigh := (height + 3) / 4

	return blocksWide * blocksHigh * blockSize
}
