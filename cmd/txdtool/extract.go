package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/imgfactory/txdtools/pkg/dds"
	"github.com/imgfactory/txdtools/pkg/dxt"
	"github.com/imgfactory/txdtools/pkg/txd"
)

func runExtract(args []string) error {
	fs, configPath := newFlagSet("extract")
	format := fs.String("format", "", "Image format: png, bmp, tiff or dds (default from config)")
	e, err := setup(fs, configPath, args, 2)
	if err != nil {
		return err
	}
	if *format == "" {
		*format = e.cfg.ExportFormat
	}

	written, err := e.extractFile(fs.Arg(0), fs.Arg(1), *format)
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d textures → %s\n", written, fs.Arg(1))
	return nil
}

// runBatch extracts every .txd below a directory into a folder per file.
func runBatch(args []string) error {
	fs, configPath := newFlagSet("batch")
	format := fs.String("format", "", "Image format: png, bmp, tiff or dds (default from config)")
	e, err := setup(fs, configPath, args, 2)
	if err != nil {
		return err
	}
	if *format == "" {
		*format = e.cfg.ExportFormat
	}

	inputDir, outputDir := fs.Arg(0), fs.Arg(1)
	count, errors := 0, 0

	err = filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txd") {
			return nil
		}

		relPath, _ := filepath.Rel(inputDir, path)
		outDir := filepath.Join(outputDir, strings.TrimSuffix(relPath, filepath.Ext(relPath)))

		if _, err := e.extractFile(path, outDir, *format); err != nil {
			fmt.Fprintf(os.Stderr, "extract %s: %v\n", path, err)
			errors++
		} else {
			count++
			if count%100 == 0 {
				fmt.Printf("Processed %d files...\n", count)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nCompleted: %d dictionaries extracted, %d errors\n", count, errors)
	return nil
}

// extractFile writes the textures of one dictionary and its manifest to dir.
func (e *env) extractFile(path, dir, format string) (int, error) {
	d, err := e.readDictionary(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	m := &manifest{Version: d.Version}
	used := make(map[string]bool)
	for i := range d.Textures {
		t := &d.Textures[i]
		if !t.Decoded() {
			e.logger.Warn("skipping texture that was not decoded", "index", i, "name", t.Name)
			continue
		}

		name := fileName(t.Name, "."+format, used)
		if err := writeTexture(filepath.Join(dir, name), t, format); err != nil {
			return len(m.Textures), fmt.Errorf("write %s: %w", name, err)
		}
		m.Textures = append(m.Textures, newManifestEntry(t, name))
	}

	if err := writeManifest(dir, m); err != nil {
		return len(m.Textures), err
	}
	return len(m.Textures), nil
}

func writeTexture(path string, t *txd.Texture, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := encodeTexture(f, t, format); err != nil {
		return err
	}
	return f.Close()
}

func encodeTexture(w io.Writer, t *txd.Texture, format string) error {
	switch format {
	case "png":
		return png.Encode(w, t.Image())
	case "bmp":
		return bmp.Encode(w, t.Image())
	case "tiff":
		return tiff.Encode(w, t.Image(), &tiff.Options{Compression: tiff.Deflate})
	case "dds":
		data, err := dds.Marshal(surfaceOf(t))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown image format %q", format)
	}
}

// surfaceOf returns the texture as a DDS surface. DXT textures keep their
// stored blocks; everything else is compressed from the decoded pixels.
func surfaceOf(t *txd.Texture) *dds.Surface {
	s := &dds.Surface{Width: uint32(t.Width), Height: uint32(t.Height), MipLevels: 1}
	switch {
	case t.Format == txd.FormatDXT1 && t.Data != nil:
		s.FourCC, s.Data = dds.FOURCC_DXT1, t.Data
	case t.Format == txd.FormatDXT3 && t.Data != nil:
		s.FourCC, s.Data = dds.FOURCC_DXT3, t.Data
	case t.Format == txd.FormatDXT5 && t.Data != nil:
		s.FourCC, s.Data = dds.FOURCC_DXT5, t.Data
	case t.HasAlpha:
		s.FourCC, s.Data = dds.FOURCC_DXT5, dxt.EncodeDXT5(t.Pixels, t.Width, t.Height)
	default:
		s.FourCC, s.Data = dds.FOURCC_DXT1, dxt.EncodeDXT1(t.Pixels, t.Width, t.Height)
	}
	return s
}

// decodeImage reads an image written by extract, picking the decoder by extension.
func decodeImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".dds":
		s, err := dds.Unmarshal(data)
		if err != nil {
			return nil, err
		}
		pixels, ok := s.Decode()
		if !ok {
			return nil, fmt.Errorf("decode %s surface", dds.FormatName(s.FourCC))
		}
		return dxt.ToNRGBA(pixels, int(s.Width), int(s.Height)), nil
	case ".bmp":
		return bmp.Decode(bytes.NewReader(data))
	case ".tif", ".tiff":
		return tiff.Decode(bytes.NewReader(data))
	default:
		return png.Decode(bytes.NewReader(data))
	}
}
