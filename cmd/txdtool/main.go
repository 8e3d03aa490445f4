// txdtool - RenderWare texture dictionary tool
//
// Lists, extracts, rebuilds and edits .txd files, and moves them in and out
// of IMG archives. Every overwrite is preceded by a compressed backup unless
// disabled in the config file.
//
// Usage:
//   txdtool info vehicle.txd                 # List textures
//   txdtool extract vehicle.txd out/         # TXD → images + textures.yaml
//   txdtool build out/ vehicle.txd           # images + textures.yaml → TXD
//   txdtool batch models/ out/               # Extract every .txd in a directory
//   txdtool rename vehicle.txd old new       # Rename a texture
//   txdtool img-extract gta3.img a.txd a.txd # Copy an entry out of an archive
//   txdtool img-replace gta3.img a.txd a.txd # Replace or add an archive entry
//   txdtool restore vehicle.txd.bak.zst vehicle.txd
//   txdtool serve models/                    # Browse and edit in a web browser

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/imgfactory/txdtools/pkg/config"
	"github.com/imgfactory/txdtools/pkg/txd"
)

// errUsage makes main print the command's usage line.
var errUsage = errors.New("invalid arguments")

type command struct {
	usage string
	run   func(args []string) error
}

var commands = map[string]command{
	"info":        {"info [-v] <file.txd>", runInfo},
	"extract":     {"extract [-format png|bmp|tiff|dds] <file.txd> <dir>", runExtract},
	"build":       {"build <dir> <file.txd>", runBuild},
	"batch":       {"batch [-format png|bmp|tiff|dds] <dir> <out>", runBatch},
	"rename":      {"rename <file.txd> <old> <new>", runRename},
	"img-extract": {"img-extract <archive.img> <entry> <out>", runImgExtract},
	"img-replace": {"img-replace <archive.img> <entry> <file>", runImgReplace},
	"restore":     {"restore <backup> <dst>", runRestore},
	"serve":       {"serve [-addr host:port] <dir>", runServe},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.run(os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Usage: txdtool %s\n", cmd.usage)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("txdtool - RenderWare texture dictionary tool")
	fmt.Println()
	fmt.Println("Usage:")
	for _, name := range []string{"info", "extract", "build", "batch", "rename", "img-extract", "img-replace", "restore", "serve"} {
		fmt.Printf("  txdtool %s\n", commands[name].usage)
	}
	fmt.Println()
	fmt.Println("Every command accepts -config <file> (default " + config.DefaultPath + ").")
}

// env is the state shared by all commands once flags and config are loaded.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   []txd.Option
}

// newFlagSet returns a flag set carrying the common -config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", config.DefaultPath, "Path to the YAML config file")
	return fs, path
}

// setup parses args, loads the config and builds the logger and txd options.
// nargs is the exact number of positional arguments the command takes.
func setup(fs *flag.FlagSet, configPath *string, args []string, nargs int) (*env, error) {
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	if fs.NArg() != nargs {
		return nil, errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	enc, err := cfg.Charmap()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts := []txd.Option{txd.WithLogger(logger), txd.WithVersion(cfg.RWVersion)}
	if enc != nil {
		opts = append(opts, txd.WithCharmap(enc))
	}

	return &env{cfg: cfg, logger: logger, opts: opts}, nil
}

// readDictionary loads and parses a .txd file.
func (e *env) readDictionary(path string) (*txd.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	d, err := txd.Parse(data, e.opts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}
