package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Extension is appended to the original path to name its backup.
const Extension = ".bak.zst"

// ErrExists is returned by Create when a backup is already present.
var ErrExists = errors.New("backup: backup already exists")

// Path returns the backup path for path.
func Path(path string) string {
	return path + Extension
}

// Create backs up path to Path(path). An existing backup is kept, and
// ErrExists returned with its path, unless force is set; the first backup is
// the one closest to the original file. A missing source is not an error and
// yields an empty path.
func Create(path string, force bool, opts ...WriterOption) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat original: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read original: %w", err)
	}

	dst := Path(path)
	if !force {
		if _, err := os.Stat(dst); err == nil {
			return dst, ErrExists
		}
	}

	opts = append([]WriterOption{WithModTime(info.ModTime())}, opts...)
	var buf bytes.Buffer
	if err := Encode(&buf, data, opts...); err != nil {
		return "", err
	}
	if err := writeAtomic(dst, buf.Bytes()); err != nil {
		return "", err
	}
	return dst, nil
}

// Restore decompresses backupPath over dst and gives dst the modification
// time the original had when it was backed up.
func Restore(backupPath, dst string) error {
	f, err := os.Open(backupPath)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	reader, err := NewReader(f)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	defer reader.Close()

	data, err := reader.readContent()
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if err := writeAtomic(dst, data); err != nil {
		return err
	}

	if mtime := reader.Header().ModTime; !mtime.IsZero() {
		if err := os.Chtimes(dst, mtime, mtime); err != nil {
			return fmt.Errorf("restore mtime: %w", err)
		}
	}
	return nil
}

// WriteFile replaces path with data, first backing up the current content
// when keep is set. It returns the backup path, if any.
func WriteFile(path string, data []byte, keep bool) (string, error) {
	var saved string
	if keep {
		p, err := Create(path, false)
		if err != nil && !errors.Is(err, ErrExists) {
			return "", fmt.Errorf("backup %s: %w", path, err)
		}
		saved = p
	}
	if err := writeAtomic(path, data); err != nil {
		return saved, err
	}
	return saved, nil
}

// writeAtomic writes through a temporary file in the same directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
