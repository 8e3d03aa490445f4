package backup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DataDog/zstd"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := &Header{
			Version:          FormatVersion,
			ModTime:          time.Date(2004, 10, 26, 12, 0, 0, 0, time.UTC),
			Length:           1024,
			CompressedLength: 512,
		}

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if len(data) != HeaderSize || !bytes.Equal(data[:4], Magic[:]) {
			t.Fatalf("unexpected header bytes % x", data)
		}

		decoded := &Header{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if decoded.Version != original.Version || !decoded.ModTime.Equal(original.ModTime) ||
			decoded.Length != original.Length || decoded.CompressedLength != original.CompressedLength {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("UnknownModTime", func(t *testing.T) {
		data, _ := (&Header{Version: FormatVersion, CompressedLength: 9}).MarshalBinary()
		decoded := &Header{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !decoded.ModTime.IsZero() {
			t.Errorf("expected zero mtime, got %v", decoded.ModTime)
		}
	})

	tests := []struct {
		name   string
		header Header
		mutate func([]byte)
	}{
		{"InvalidMagic", Header{Version: FormatVersion, CompressedLength: 512}, func(b []byte) { copy(b, "ZSTD") }},
		{"UnknownVersion", Header{Version: 2, CompressedLength: 512}, nil},
		{"ZeroCompressedLength", Header{Version: FormatVersion}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.header.MarshalBinary()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if tt.mutate != nil {
				tt.mutate(data)
			}
			if err := (&Header{}).UnmarshalBinary(data); !errors.Is(err, ErrBadHeader) {
				t.Errorf("expected ErrBadHeader, got %v", err)
			}
		})
	}

	t.Run("Short", func(t *testing.T) {
		if err := (&Header{}).UnmarshalBinary(make([]byte, HeaderSize-1)); !errors.Is(err, ErrBadHeader) {
			t.Errorf("expected ErrBadHeader, got %v", err)
		}
	})
}

func TestEncodeReadAll(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Text", []byte("Hello, World! This is test data for compression.")},
		{"Empty", []byte{}},
		{"Large", bytes.Repeat([]byte("TXD"), 100000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.data, WithCompressionLevel(zstd.BestSpeed)); err != nil {
				t.Fatalf("encode: %v", err)
			}

			decoded, err := ReadAll(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(decoded, tt.data) {
				t.Errorf("data mismatch: got %d bytes, want %d", len(decoded), len(tt.data))
			}
		})
	}
}

func TestCreateRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vehicle.txd")
	original := []byte("original dictionary bytes")
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	saved, err := Create(path, false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved != path+Extension {
		t.Errorf("expected %s, got %s", path+Extension, saved)
	}

	if err := os.WriteFile(path, []byte("second version"), 0644); err != nil {
		t.Fatal(err)
	}

	// the first backup is kept
	if p, err := Create(path, false); !errors.Is(err, ErrExists) || p != saved {
		t.Errorf("expected ErrExists for %s, got %q %v", saved, p, err)
	}

	if err := Restore(saved, path); err != nil {
		t.Fatalf("restore: %v", err)
	}
	got, _ := os.ReadFile(path)
	if !bytes.Equal(got, original) {
		t.Errorf("restored %q, want %q", got, original)
	}

	if _, err := Create(path, true); err != nil {
		t.Errorf("forced create: %v", err)
	}
}

func TestRestoreKeepsModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generic.txd")
	if err := os.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2005, 6, 7, 8, 9, 10, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	saved, err := WriteFile(path, []byte("second"), true)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(saved)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		t.Fatalf("read header: %v", err)
	}
	if got := r.Header().ModTime; !got.Equal(mtime) {
		t.Errorf("expected recorded mtime %v, got %v", mtime, got)
	}
	r.Close()
	f.Close()

	if err := Restore(saved, path); err != nil {
		t.Fatalf("restore: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Errorf("expected restored mtime %v, got %v", mtime, info.ModTime())
	}
	if got, _ := os.ReadFile(path); string(got) != "first" {
		t.Errorf("restored %q", got)
	}
}

func TestCreateMissing(t *testing.T) {
	p, err := Create(filepath.Join(t.TempDir(), "none.txd"), false)
	if err != nil || p != "" {
		t.Errorf("expected no backup and no error, got %q %v", p, err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gta3.img")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	saved, err := WriteFile(path, []byte("new"), true)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, _ := os.ReadFile(path); string(got) != "new" {
		t.Errorf("expected new content, got %q", got)
	}

	f, err := os.Open(saved)
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	defer f.Close()
	old, err := ReadAll(f)
	if err != nil || string(old) != "old" {
		t.Errorf("backup holds %q, %v", old, err)
	}

	// without keep no backup is touched
	if saved, err := WriteFile(path, []byte("newer"), false); err != nil || saved != "" {
		t.Errorf("unexpected %q %v", saved, err)
	}
}
