// Package backup keeps zstd-compressed copies of files before they are
// overwritten, so a bad save of a TXD or IMG archive can be undone.
//
// A backup is a 32-byte header followed by a single zstd stream:
//
//	"RWBK" | u32 version | i64 original mtime (unix ns) | u64 size | u64 compressed size
package backup

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Magic bytes identifying a backup.
var Magic = [4]byte{'R', 'W', 'B', 'K'}

// FormatVersion is the header version written by Encode.
const FormatVersion = 1

// HeaderSize is the fixed binary size of a backup header.
const HeaderSize = 32

// ErrBadHeader is returned for a header that is short, foreign or of an
// unknown version.
var ErrBadHeader = errors.New("backup: bad header")

// Header describes the file a backup was taken from.
type Header struct {
	Version uint32
	// ModTime is the modification time of the original, zero when unknown.
	ModTime          time.Time
	Length           uint64
	CompressedLength uint64
}

// rawHeader is the on-disk layout.
type rawHeader struct {
	Magic            [4]byte
	Version          uint32
	ModTime          int64
	Length           uint64
	CompressedLength uint64
}

// MarshalBinary encodes the header, magic included.
func (h *Header) MarshalBinary() ([]byte, error) {
	raw := rawHeader{
		Magic:            Magic,
		Version:          h.Version,
		Length:           h.Length,
		CompressedLength: h.CompressedLength,
	}
	if !h.ModTime.IsZero() {
		raw.ModTime = h.ModTime.UnixNano()
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes and checks a header. Empty originals are allowed,
// an empty zstd stream is not.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBadHeader, HeaderSize, len(data))
	}

	var raw rawHeader
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if raw.Magic != Magic {
		return fmt.Errorf("%w: magic %q", ErrBadHeader, raw.Magic[:])
	}
	if raw.Version != FormatVersion {
		return fmt.Errorf("%w: version %d", ErrBadHeader, raw.Version)
	}
	if raw.CompressedLength == 0 {
		return fmt.Errorf("%w: compressed size is zero", ErrBadHeader)
	}

	*h = Header{
		Version:          raw.Version,
		Length:           raw.Length,
		CompressedLength: raw.CompressedLength,
	}
	if raw.ModTime != 0 {
		h.ModTime = time.Unix(0, raw.ModTime)
	}
	return nil
}
