package img

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Archive is an IMG archive held in memory. Added and replaced entries are
// kept aside until the archive is written.
type Archive struct {
	Version Version

	entries []Entry
	body    []byte            // .img contents that entry offsets refer to
	pending map[string][]byte // lower-cased name to new data
}

// New returns an empty archive of the given version.
func New(version Version) *Archive {
	return &Archive{Version: version, pending: make(map[string][]byte)}
}

// Parse decodes a version 2 archive.
func Parse(data []byte) (*Archive, error) {
	entries, err := parseDirV2(data)
	if err != nil {
		return nil, err
	}
	return &Archive{Version: Version2, entries: entries, body: data, pending: make(map[string][]byte)}, nil
}

// ParseV1 decodes a version 1 archive from its directory and image files.
func ParseV1(dir, body []byte) (*Archive, error) {
	entries, err := parseDirV1(dir)
	if err != nil {
		return nil, err
	}
	return &Archive{Version: Version1, entries: entries, body: body, pending: make(map[string][]byte)}, nil
}

// Open reads an archive from disk. Files starting with VER2 are version 2;
// anything else is treated as the .img half of a version 1 pair, as is a
// path ending in .dir.
func Open(path string) (*Archive, error) {
	imgPath, dirPath := pairPaths(path)
	if strings.EqualFold(filepath.Ext(path), ".dir") {
		path = imgPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read archive")
	}
	if len(data) >= 4 && string(data[:4]) == Magic {
		a, err := Parse(data)
		return a, errors.Wrapf(err, "parse %s", path)
	}

	dir, err := os.ReadFile(dirPath)
	if err != nil {
		return nil, errors.Wrapf(err, "%s has no VER2 header and no directory", path)
	}
	a, err := ParseV1(dir, data)
	return a, errors.Wrapf(err, "parse %s", dirPath)
}

func pairPaths(path string) (imgPath, dirPath string) {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return stem + ".img", stem + ".dir"
}

// Entries returns a copy of the directory.
func (a *Archive) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Find returns the index of the named entry, compared case-insensitively.
func (a *Archive) Find(name string) (int, bool) {
	for i := range a.entries {
		if strings.EqualFold(a.entries[i].Name, name) {
			return i, true
		}
	}
	return -1, false
}

// ReadEntry returns the data of the named entry. Data read from an archive
// file includes the zero padding up to the sector boundary.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	i, ok := a.Find(name)
	if !ok {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	return a.entryData(i)
}

func (a *Archive) entryData(i int) ([]byte, error) {
	e := a.entries[i]
	if data, ok := a.pending[strings.ToLower(e.Name)]; ok {
		return data, nil
	}

	start, end := e.ByteOffset(), e.ByteOffset()+e.ByteSize()
	if end > int64(len(a.body)) {
		if start >= int64(len(a.body)) {
			return nil, errors.Errorf("img: entry %s at sector %d lies beyond the archive", e.Name, e.Offset)
		}
		// the last entry of some archives is not padded
		end = int64(len(a.body))
	}
	return a.body[start:end], nil
}

// ReplaceEntry sets new data for an existing entry.
func (a *Archive) ReplaceEntry(name string, data []byte) error {
	i, ok := a.Find(name)
	if !ok {
		return errors.Wrap(ErrNotFound, name)
	}
	a.pending[strings.ToLower(a.entries[i].Name)] = append([]byte(nil), data...)
	a.entries[i].Size = sectors(len(data))
	return nil
}

// AddEntry appends a new entry.
func (a *Archive) AddEntry(name string, data []byte) error {
	if !validName(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	if _, ok := a.Find(name); ok {
		return errors.Wrap(ErrExists, name)
	}
	a.entries = append(a.entries, Entry{Name: name, Size: sectors(len(data))})
	a.pending[strings.ToLower(name)] = append([]byte(nil), data...)
	return nil
}

// RemoveEntry deletes the named entry.
func (a *Archive) RemoveEntry(name string) error {
	i, ok := a.Find(name)
	if !ok {
		return errors.Wrap(ErrNotFound, name)
	}
	delete(a.pending, strings.ToLower(a.entries[i].Name))
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	return nil
}

// layout packs every entry into a fresh body, sector aligned, starting at
// firstSector. It returns the new directory and the packed data.
func (a *Archive) layout(firstSector uint32) ([]Entry, []byte, error) {
	entries := make([]Entry, len(a.entries))
	var body bytes.Buffer
	cursor := firstSector

	for i, e := range a.entries {
		data, err := a.entryData(i)
		if err != nil {
			return nil, nil, err
		}
		n := sectors(len(data))
		if a.Version == Version2 && n > 0xFFFF {
			return nil, nil, errors.Errorf("img: entry %s needs %d sectors, VER2 allows 65535", e.Name, n)
		}

		entries[i] = Entry{Name: e.Name, Offset: cursor, Size: n}
		body.Write(data)
		body.Write(make([]byte, int(n)*SectorSize-len(data)))
		cursor += n
	}
	return entries, body.Bytes(), nil
}

// MarshalBinary rebuilds a version 2 archive.
func (a *Archive) MarshalBinary() ([]byte, error) {
	dirLen := headerSize + len(a.entries)*EntrySize
	first := sectors(dirLen)

	entries, body, err := a.layout(first)
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, int(first)*SectorSize+len(body)))
	buf.WriteString(Magic)
	binary.Write(buf, binary.LittleEndian, uint32(len(entries)))

	for _, e := range entries {
		raw := dirEntryV2{Offset: e.Offset, Size: uint16(e.Size)}
		encodeName(&raw.Name, e.Name)
		if err := binary.Write(buf, binary.LittleEndian, &raw); err != nil {
			return nil, errors.Wrap(err, "write directory")
		}
	}
	buf.Write(make([]byte, int(first)*SectorSize-dirLen))
	buf.Write(body)

	return buf.Bytes(), nil
}

// marshalV1 rebuilds a version 1 directory and image.
func (a *Archive) marshalV1() (dir, body []byte, err error) {
	entries, body, err := a.layout(0)
	if err != nil {
		return nil, nil, err
	}

	var d bytes.Buffer
	for _, e := range entries {
		raw := dirEntryV1{Offset: e.Offset, Size: e.Size}
		encodeName(&raw.Name, e.Name)
		if err := binary.Write(&d, binary.LittleEndian, &raw); err != nil {
			return nil, nil, errors.Wrap(err, "write directory")
		}
	}
	return d.Bytes(), body, nil
}

// WriteFile writes the archive to path in its own version and reloads it
// from the written bytes. Version 1 archives also write the .dir beside it.
func (a *Archive) WriteFile(path string) error {
	var reloaded *Archive

	switch a.Version {
	case Version1:
		dir, body, err := a.marshalV1()
		if err != nil {
			return err
		}
		imgPath, dirPath := pairPaths(path)
		if err := os.WriteFile(imgPath, body, 0644); err != nil {
			return errors.Wrap(err, "write image")
		}
		if err := os.WriteFile(dirPath, dir, 0644); err != nil {
			return errors.Wrap(err, "write directory")
		}
		if reloaded, err = ParseV1(dir, body); err != nil {
			return err
		}
	default:
		data, err := a.MarshalBinary()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Wrap(err, "write archive")
		}
		if reloaded, err = Parse(data); err != nil {
			return err
		}
	}

	*a = *reloaded
	return nil
}
