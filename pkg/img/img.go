// Package img reads and rebuilds GTA IMG archives.
//
// Version 2 archives are a single file: "VER2", an entry count and a
// directory of 32-byte entries followed by the entry data. Version 1
// archives keep the directory in a separate .dir file next to the .img.
// Offsets and sizes are counted in 2048-byte sectors.
package img

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Magic opens every version 2 archive.
	Magic = "VER2"
	// SectorSize is the allocation unit of entry data.
	SectorSize = 2048
	// EntrySize is the size of one directory entry.
	EntrySize = 32
	// NameSize is the width of the NUL-padded entry name.
	NameSize = 24

	headerSize = 8
)

// Version is the archive layout.
type Version int

const (
	Version1 Version = 1 // .dir + .img pair
	Version2 Version = 2 // single file with VER2 header
)

var (
	ErrNotFound    = errors.New("img: entry not found")
	ErrExists      = errors.New("img: entry already exists")
	ErrInvalidName = errors.New("img: invalid entry name")
	ErrBadMagic    = errors.New("img: not a VER2 archive")
)

// Entry describes one file in the archive.
type Entry struct {
	Name   string
	Offset uint32 // In sectors
	Size   uint32 // In sectors
}

// ByteOffset returns the entry's offset in bytes.
func (e Entry) ByteOffset() int64 {
	return int64(e.Offset) * SectorSize
}

// ByteSize returns the entry's allocated size in bytes.
func (e Entry) ByteSize() int64 {
	return int64(e.Size) * SectorSize
}

// dirEntryV2 is a version 2 directory entry. ArchiveSize is unused by the
// game and usually zero.
type dirEntryV2 struct {
	Offset      uint32
	Size        uint16
	ArchiveSize uint16
	Name        [NameSize]byte
}

type dirEntryV1 struct {
	Offset uint32
	Size   uint32
	Name   [NameSize]byte
}

func decodeName(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return strings.TrimSpace(string(field))
}

func encodeName(dst *[NameSize]byte, name string) {
	*dst = [NameSize]byte{}
	copy(dst[:NameSize-1], name)
}

func validName(name string) bool {
	if name == "" || len(name) > NameSize-1 || strings.ContainsAny(name, "/\\") {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] < 0x20 || name[i] >= 0x7F {
			return false
		}
	}
	return true
}

// sectors returns the number of sectors needed to hold n bytes.
func sectors(n int) uint32 {
	return uint32((n + SectorSize - 1) / SectorSize)
}

// parseDirV2 decodes the header and directory of a version 2 archive.
func parseDirV2(data []byte) ([]Entry, error) {
	if len(data) < headerSize || string(data[:4]) != Magic {
		return nil, ErrBadMagic
	}

	count := binary.LittleEndian.Uint32(data[4:8])
	if uint64(count)*EntrySize > uint64(len(data)-headerSize) {
		return nil, errors.Errorf("img: directory of %d entries exceeds file size %d", count, len(data))
	}

	raw := make([]dirEntryV2, count)
	if err := binary.Read(bytes.NewReader(data[headerSize:]), binary.LittleEndian, raw); err != nil {
		return nil, errors.Wrap(err, "read directory")
	}

	entries := make([]Entry, 0, count)
	for _, r := range raw {
		size := uint32(r.Size)
		if size == 0 {
			size = uint32(r.ArchiveSize)
		}
		entries = append(entries, Entry{Name: decodeName(r.Name[:]), Offset: r.Offset, Size: size})
	}
	return entries, nil
}

// parseDirV1 decodes a version 1 .dir file. A trailing partial entry is ignored.
func parseDirV1(dir []byte) ([]Entry, error) {
	raw := make([]dirEntryV1, len(dir)/EntrySize)
	if err := binary.Read(bytes.NewReader(dir), binary.LittleEndian, raw); err != nil {
		return nil, errors.Wrap(err, "read directory")
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, Entry{Name: decodeName(r.Name[:]), Offset: r.Offset, Size: r.Size})
	}
	return entries, nil
}
