package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/imgfactory/txdtools/pkg/backup"
	"github.com/imgfactory/txdtools/pkg/img"
)

func runImgExtract(args []string) error {
	fs, configPath := newFlagSet("img-extract")
	trim := fs.Bool("trim", true, "Cut RenderWare entries to their chunk size")
	if _, err := setup(fs, configPath, args, 3); err != nil {
		return err
	}

	archivePath, entry, outPath := fs.Arg(0), fs.Arg(1), fs.Arg(2)
	a, err := img.Open(archivePath)
	if err != nil {
		return err
	}
	data, err := a.ReadEntry(entry)
	if err != nil {
		return err
	}
	if *trim {
		data = img.TrimChunk(data)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("Extracted %s (%d bytes) → %s\n", entry, len(data), outPath)
	return nil
}

func runImgReplace(args []string) error {
	fs, configPath := newFlagSet("img-replace")
	e, err := setup(fs, configPath, args, 3)
	if err != nil {
		return err
	}

	archivePath, entry, inPath := fs.Arg(0), fs.Arg(1), fs.Arg(2)
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	a, err := img.Open(archivePath)
	if err != nil {
		return err
	}

	action := "Replaced"
	if _, ok := a.Find(entry); ok {
		err = a.ReplaceEntry(entry, data)
	} else {
		action = "Added"
		err = a.AddEntry(entry, data)
	}
	if err != nil {
		return err
	}

	if e.cfg.Backup {
		saved, err := backup.Create(archivePath, false)
		if err != nil && !errors.Is(err, backup.ErrExists) {
			return fmt.Errorf("backup %s: %w", archivePath, err)
		}
		if saved != "" {
			e.logger.Info("backup kept", "path", saved)
		}
	}
	if err := a.WriteFile(archivePath); err != nil {
		return err
	}

	fmt.Printf("%s %s in %s (%d entries)\n", action, entry, archivePath, a.Len())
	return nil
}
