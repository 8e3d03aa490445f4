// Package rw provides the generic RenderWare binary stream framing used by
// every RenderWare file: a 12-byte chunk header (type, size, version)
// followed by size bytes of payload, which may itself contain chunks.
package rw

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Chunk type identifiers used by texture dictionaries.
const (
	ChunkStruct            = 0x01
	ChunkString            = 0x02
	ChunkExtension         = 0x03
	ChunkTextureNative     = 0x15
	ChunkTextureDictionary = 0x16
)

// HeaderSize is the fixed binary size of a chunk header.
const HeaderSize = 12 // 4 + 4 + 4 bytes

// DefaultVersion is the packed library id written by the serializer (3.6.0.3).
const DefaultVersion = 0x1803FFFF

var (
	// ErrTruncatedHeader is returned when fewer than HeaderSize bytes remain.
	ErrTruncatedHeader = errors.New("rw: truncated chunk header")
	// ErrPayloadOverrun is returned when a chunk's declared size runs past the buffer.
	ErrPayloadOverrun = errors.New("rw: chunk payload overruns buffer")
)

// ChunkHeader is the 12-byte little-endian prefix of every chunk.
type ChunkHeader struct {
	Type    uint32
	Size    uint32 // Payload size, excluding this header
	Version uint32 // Packed library id
}

// Range is a half-open byte range [Start, End) within a buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Of returns the bytes of buf covered by the range.
func (r Range) Of(buf []byte) []byte {
	return buf[r.Start:r.End]
}

// ReadChunkHeader decodes the chunk header at offset and returns it with the
// range of its payload. It never panics on malformed input.
func ReadChunkHeader(buf []byte, offset int) (ChunkHeader, Range, error) {
	var h ChunkHeader
	if offset < 0 || offset > len(buf) || len(buf)-offset < HeaderSize {
		return h, Range{}, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncatedHeader, HeaderSize, offset, max(0, len(buf)-offset))
	}
	h.DecodeFrom(buf[offset:])

	start := offset + HeaderSize
	// Compare in uint64 so a huge size cannot wrap on 32-bit platforms.
	if uint64(start)+uint64(h.Size) > uint64(len(buf)) {
		return h, Range{}, fmt.Errorf("%w: chunk 0x%x at offset %d declares %d bytes, %d available",
			ErrPayloadOverrun, h.Type, offset, h.Size, len(buf)-start)
	}
	return h, Range{Start: start, End: start + int(h.Size)}, nil
}

// MarshalBinary encodes the header to binary format.
func (h *ChunkHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *ChunkHeader) EncodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Type)
	binary.LittleEndian.PutUint32(buf[4:8], h.Size)
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
}

// UnmarshalBinary decodes the header from binary format.
func (h *ChunkHeader) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d, got %d", ErrTruncatedHeader, HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return nil
}

// DecodeFrom reads the header from the given buffer without validation.
func (h *ChunkHeader) DecodeFrom(data []byte) {
	h.Type = binary.LittleEndian.Uint32(data[0:4])
	h.Size = binary.LittleEndian.Uint32(data[4:8])
	h.Version = binary.LittleEndian.Uint32(data[8:12])
}

// AppendChunk appends a complete chunk (header and payload) to dst.
func AppendChunk(dst []byte, chunkType, version uint32, payload []byte) []byte {
	h := ChunkHeader{Type: chunkType, Size: uint32(len(payload)), Version: version}
	var hdr [HeaderSize]byte
	h.EncodeTo(hdr[:])
	dst = append(dst, hdr[:]...)
	return append(dst, payload...)
}

// TypeName returns a human-readable name for a chunk type.
func TypeName(chunkType uint32) string {
	switch chunkType {
	case ChunkStruct:
		return "Struct"
	case ChunkString:
		return "String"
	case ChunkExtension:
		return "Extension"
	case ChunkTextureNative:
		return "Texture Native"
	case ChunkTextureDictionary:
		return "Texture Dictionary"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", chunkType)
	}
}
