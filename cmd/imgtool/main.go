// Package main provides a command-line tool for working with IMG archives.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/imgfactory/txdtools/pkg/backup"
	"github.com/imgfactory/txdtools/pkg/img"
)

var (
	mode           string
	archivePath    string
	inputDir       string
	outputDir      string
	entryName      string
	extensions     string
	trimChunks     bool
	forceOverwrite bool
	keepBackup     bool
	createV1       bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: list, extract, add, remove, create")
	flag.StringVar(&archivePath, "archive", "", "Path to the .img archive (or its .dir for version 1)")
	flag.StringVar(&inputDir, "input", "", "Input directory for add and create modes")
	flag.StringVar(&outputDir, "output", "", "Output directory for extract mode")
	flag.StringVar(&entryName, "entry", "", "Entry name for remove mode")
	flag.StringVar(&extensions, "ext", "", "Comma-separated extensions to extract (e.g. .txd,.dff)")
	flag.BoolVar(&trimChunks, "trim", false, "Cut RenderWare entries to their chunk size")
	flag.BoolVar(&forceOverwrite, "force", false, "Allow non-empty output directory")
	flag.BoolVar(&keepBackup, "backup", true, "Back up the archive before rewriting it")
	flag.BoolVar(&createV1, "v1", false, "Create a version 1 archive (.img + .dir)")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	switch mode {
	case "list":
		return runList()
	case "extract":
		return runExtract()
	case "add":
		return runAdd()
	case "remove":
		return runRemove()
	case "create":
		return runCreate()
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}
	if archivePath == "" {
		return fmt.Errorf("archive is required")
	}

	switch mode {
	case "list":
	case "extract":
		if outputDir == "" {
			return fmt.Errorf("extract mode requires -output")
		}
	case "add", "create":
		if inputDir == "" {
			return fmt.Errorf("%s mode requires -input", mode)
		}
	case "remove":
		if entryName == "" {
			return fmt.Errorf("remove mode requires -entry")
		}
	default:
		return fmt.Errorf("mode must be 'list', 'extract', 'add', 'remove' or 'create'")
	}

	return nil
}

func runList() error {
	a, err := img.Open(archivePath)
	if err != nil {
		return err
	}

	fmt.Printf("Archive: %s (version %d, %d entries)\n", archivePath, a.Version, a.Len())
	for _, e := range a.Entries() {
		fmt.Printf("%-24s  sector %6d  %8d bytes\n", e.Name, e.Offset, e.ByteSize())
	}
	return nil
}

func runExtract() error {
	if err := prepareOutputDir(); err != nil {
		return err
	}

	a, err := img.Open(archivePath)
	if err != nil {
		return err
	}

	opts := []img.ExtractOption{img.WithTrimmedChunks(trimChunks)}
	if extensions != "" {
		opts = append(opts, img.WithExtensions(strings.Split(extensions, ",")...))
	}

	fmt.Println("Extracting files...")
	n, err := a.Extract(outputDir, opts...)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	fmt.Printf("Extraction complete. %d files written to %s\n", n, outputDir)
	return nil
}

func runAdd() error {
	a, err := img.Open(archivePath)
	if err != nil {
		return err
	}

	added, replaced, err := addFiles(a, inputDir)
	if err != nil {
		return err
	}
	if err := save(a); err != nil {
		return err
	}

	fmt.Printf("Added %d and replaced %d entries in %s\n", added, replaced, archivePath)
	return nil
}

func runRemove() error {
	a, err := img.Open(archivePath)
	if err != nil {
		return err
	}
	if err := a.RemoveEntry(entryName); err != nil {
		return err
	}
	if err := save(a); err != nil {
		return err
	}

	fmt.Printf("Removed %s from %s (%d entries left)\n", entryName, archivePath, a.Len())
	return nil
}

func runCreate() error {
	version := img.Version2
	if createV1 {
		version = img.Version1
	}
	a := img.New(version)

	added, _, err := addFiles(a, inputDir)
	if err != nil {
		return err
	}
	if err := a.WriteFile(archivePath); err != nil {
		return err
	}

	fmt.Printf("Created %s with %d entries\n", archivePath, added)
	return nil
}

// addFiles adds or replaces an entry for every regular file in dir.
func addFiles(a *img.Archive, dir string) (added, replaced int, err error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read input directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.Name()))
		if err != nil {
			return added, replaced, err
		}

		if _, ok := a.Find(f.Name()); ok {
			err = a.ReplaceEntry(f.Name(), data)
			replaced++
		} else {
			err = a.AddEntry(f.Name(), data)
			added++
		}
		if err != nil {
			return added, replaced, fmt.Errorf("%s: %w", f.Name(), err)
		}
	}
	return added, replaced, nil
}

// save rewrites the archive in place, backing it up first unless disabled.
func save(a *img.Archive) error {
	if keepBackup {
		saved, err := backup.Create(archivePath, false)
		if err != nil && !errors.Is(err, backup.ErrExists) {
			return fmt.Errorf("backup: %w", err)
		}
		if saved != "" {
			fmt.Printf("Backup: %s\n", saved)
		}
	}
	return a.WriteFile(archivePath)
}

func prepareOutputDir() error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if !forceOverwrite {
		empty, err := isDirEmpty(outputDir)
		if err != nil {
			return fmt.Errorf("check output directory: %w", err)
		}
		if !empty {
			return fmt.Errorf("output directory is not empty (use -force to override)")
		}
	}

	return nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdir(1)
	return err == io.EOF, nil
}
