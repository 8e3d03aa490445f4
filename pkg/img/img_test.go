package img

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/imgfactory/txdtools/pkg/rw"
)

func chunk(payload int) []byte {
	return rw.AppendChunk(nil, rw.ChunkTextureDictionary, rw.DefaultVersion, bytes.Repeat([]byte{0xAB}, payload))
}

func sampleArchive(t *testing.T) *Archive {
	t.Helper()
	a := New(Version2)
	if err := a.AddEntry("road.txd", chunk(100)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := a.AddEntry("car.dff", bytes.Repeat([]byte{1}, 3000)); err != nil {
		t.Fatalf("add: %v", err)
	}
	return a
}

func TestArchive(t *testing.T) {
	t.Run("MarshalParse", func(t *testing.T) {
		data, err := sampleArchive(t).MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data[:4]) != Magic {
			t.Errorf("expected magic %q, got %q", Magic, data[:4])
		}
		// directory fits in one sector, then 1 + 2 sectors of data
		if len(data) != 4*SectorSize {
			t.Errorf("expected %d bytes, got %d", 4*SectorSize, len(data))
		}

		a, err := Parse(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		entries := a.Entries()
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Name != "road.txd" || entries[0].Offset != 1 || entries[0].Size != 1 {
			t.Errorf("unexpected first entry %+v", entries[0])
		}
		if entries[1].Name != "car.dff" || entries[1].Offset != 2 || entries[1].Size != 2 {
			t.Errorf("unexpected second entry %+v", entries[1])
		}

		got, err := a.ReadEntry("ROAD.TXD")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(got) != SectorSize || !bytes.Equal(got[:112], chunk(100)) {
			t.Errorf("entry data mismatch")
		}
		if trimmed := TrimChunk(got); len(trimmed) != 112 {
			t.Errorf("TrimChunk: expected 112 bytes, got %d", len(trimmed))
		}
	})

	t.Run("ReplaceGrows", func(t *testing.T) {
		a := sampleArchive(t)
		data, _ := a.MarshalBinary()
		a, _ = Parse(data)

		bigger := chunk(5000)
		if err := a.ReplaceEntry("road.txd", bigger); err != nil {
			t.Fatalf("replace: %v", err)
		}
		out, err := a.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		b, err := Parse(out)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		road, _ := b.ReadEntry("road.txd")
		if !bytes.Equal(TrimChunk(road), bigger) {
			t.Errorf("replaced entry not read back")
		}
		car, _ := b.ReadEntry("car.dff")
		if !bytes.Equal(car[:3000], bytes.Repeat([]byte{1}, 3000)) {
			t.Errorf("untouched entry corrupted by the rebuild")
		}
		if e := b.Entries()[1]; e.Offset != 4 {
			t.Errorf("expected car.dff to move to sector 4, got %d", e.Offset)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		a := sampleArchive(t)
		if _, err := a.ReadEntry("missing.txd"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := a.ReplaceEntry("missing.txd", nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := a.AddEntry("Road.TXD", nil); !errors.Is(err, ErrExists) {
			t.Errorf("expected ErrExists, got %v", err)
		}
		if err := a.AddEntry("a_name_longer_than_23_chars.txd", nil); !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName, got %v", err)
		}
		if err := a.AddEntry("../escape.txd", nil); !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName, got %v", err)
		}
		if _, err := Parse([]byte("VER1\x00\x00\x00\x00")); !errors.Is(err, ErrBadMagic) {
			t.Errorf("expected ErrBadMagic, got %v", err)
		}
	})

	t.Run("DirectoryOverrun", func(t *testing.T) {
		data := make([]byte, 40)
		copy(data, Magic)
		binary.LittleEndian.PutUint32(data[4:], 1000)
		if _, err := Parse(data); err == nil {
			t.Error("expected error for oversized directory")
		}
	})

	t.Run("Remove", func(t *testing.T) {
		a := sampleArchive(t)
		if err := a.RemoveEntry("road.txd"); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if a.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", a.Len())
		}
		if _, ok := a.Find("road.txd"); ok {
			t.Error("removed entry still found")
		}
	})
}

func TestVersion1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gta3.img")

	a := New(Version1)
	a.AddEntry("one.txd", chunk(10))
	if err := a.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirData, err := os.ReadFile(filepath.Join(dir, "gta3.dir"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(dirData) != EntrySize {
		t.Errorf("expected one directory entry, got %d bytes", len(dirData))
	}

	for _, p := range []string{path, filepath.Join(dir, "gta3.dir")} {
		b, err := Open(p)
		if err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
		if b.Version != Version1 {
			t.Errorf("%s: expected version 1, got %d", p, b.Version)
		}
		e := b.Entries()
		if len(e) != 1 || e[0].Offset != 0 || e[0].Size != 1 {
			t.Errorf("%s: unexpected entries %+v", p, e)
		}
	}
}

func TestWriteFileReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")
	a := sampleArchive(t)
	if err := a.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	// in-memory state now refers to the written layout
	if e := a.Entries()[0]; e.Offset != 1 {
		t.Errorf("expected offset 1 after reload, got %d", e.Offset)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if b.Version != Version2 || b.Len() != 2 {
		t.Errorf("unexpected archive: version %d, %d entries", b.Version, b.Len())
	}
}

func TestExtract(t *testing.T) {
	a := sampleArchive(t)
	out := t.TempDir()

	n, err := a.Extract(out, WithExtensions(".TXD"), WithTrimmedChunks(true))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 file, got %d", n)
	}

	data, err := os.ReadFile(filepath.Join(out, "road.txd"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, chunk(100)) {
		t.Errorf("extracted data mismatch")
	}
	if _, err := os.Stat(filepath.Join(out, "car.dff")); !os.IsNotExist(err) {
		t.Errorf("filtered entry was extracted")
	}
}
