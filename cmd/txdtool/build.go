package main

import (
	"fmt"
	"path/filepath"

	"github.com/imgfactory/txdtools/pkg/backup"
	"github.com/imgfactory/txdtools/pkg/txd"
)

func runBuild(args []string) error {
	fs, configPath := newFlagSet("build")
	e, err := setup(fs, configPath, args, 2)
	if err != nil {
		return err
	}

	dir, outPath := fs.Arg(0), fs.Arg(1)
	m, err := readManifest(dir)
	if err != nil {
		return err
	}

	d := txd.New(e.opts...)
	if m.Version != 0 {
		d.Version = m.Version
	}
	for _, entry := range m.Textures {
		img, err := decodeImage(filepath.Join(dir, entry.File))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.File, err)
		}

		t := txd.NewTexture(entry.Name, img)
		t.AlphaName = entry.AlphaName
		t.FilterMode = entry.FilterMode
		t.Addressing = entry.Addressing
		if entry.HasAlpha {
			t.HasAlpha = true
			t.Format = txd.FormatDXT5
		}

		if err := d.Add(t); err != nil {
			return fmt.Errorf("add %s: %w", entry.Name, err)
		}
	}

	data, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	if err := e.save(outPath, data); err != nil {
		return err
	}

	fmt.Printf("Built %d textures → %s\n", len(d.Textures), outPath)
	return nil
}

func runRename(args []string) error {
	fs, configPath := newFlagSet("rename")
	e, err := setup(fs, configPath, args, 3)
	if err != nil {
		return err
	}

	path, oldName, newName := fs.Arg(0), fs.Arg(1), fs.Arg(2)
	d, err := e.readDictionary(path)
	if err != nil {
		return err
	}

	i, ok := d.Find(oldName)
	if !ok {
		return fmt.Errorf("texture %q not found in %s", oldName, path)
	}
	if err := d.Rename(i, newName); err != nil {
		return err
	}

	if failed := d.Failed(); len(failed) > 0 {
		e.logger.Warn("textures that were not decoded will be dropped", "count", len(failed), "indices", failed)
	}

	data, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	if err := e.save(path, data); err != nil {
		return err
	}

	fmt.Printf("Renamed %s → %s in %s\n", oldName, newName, path)
	return nil
}

func runRestore(args []string) error {
	fs, configPath := newFlagSet("restore")
	if _, err := setup(fs, configPath, args, 2); err != nil {
		return err
	}

	if err := backup.Restore(fs.Arg(0), fs.Arg(1)); err != nil {
		return err
	}
	fmt.Printf("Restored %s → %s\n", fs.Arg(0), fs.Arg(1))
	return nil
}

// save writes data to path, keeping a backup of the old content when enabled.
func (e *env) save(path string, data []byte) error {
	saved, err := backup.WriteFile(path, data, e.cfg.Backup)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if saved != "" {
		e.logger.Info("backup kept", "path", saved)
	}
	return nil
}
