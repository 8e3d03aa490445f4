package img

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/imgfactory/txdtools/pkg/rw"
)

// extractConfig holds extraction options.
type extractConfig struct {
	extensions map[string]bool
	trim       bool
}

// ExtractOption configures extraction behavior.
type ExtractOption func(*extractConfig)

// WithExtensions only extracts entries with one of the given extensions
// (".txd", ".dff", ...), compared case-insensitively.
func WithExtensions(exts ...string) ExtractOption {
	return func(c *extractConfig) {
		if len(exts) > 0 {
			c.extensions = make(map[string]bool, len(exts))
			for _, e := range exts {
				c.extensions[strings.ToLower(e)] = true
			}
		}
	}
}

// WithTrimmedChunks cuts RenderWare entries to the size in their outer
// chunk header, dropping the sector padding.
func WithTrimmedChunks(trim bool) ExtractOption {
	return func(c *extractConfig) {
		c.trim = trim
	}
}

// Extract writes entries to outputDir and returns how many were written.
func (a *Archive) Extract(outputDir string, opts ...ExtractOption) (int, error) {
	cfg := &extractConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, errors.Wrapf(err, "create dir %s", outputDir)
	}

	written := 0
	for i, e := range a.entries {
		if cfg.extensions != nil && !cfg.extensions[strings.ToLower(filepath.Ext(e.Name))] {
			continue
		}

		data, err := a.entryData(i)
		if err != nil {
			return written, err
		}
		if cfg.trim {
			data = TrimChunk(data)
		}

		path := filepath.Join(outputDir, filepath.Base(e.Name))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, errors.Wrapf(err, "write %s", path)
		}
		written++
	}
	return written, nil
}

// TrimChunk cuts data to the length declared by a leading RenderWare chunk
// header. Data that does not start with a plausible header is returned as is.
func TrimChunk(data []byte) []byte {
	_, r, err := rw.ReadChunkHeader(data, 0)
	if err != nil {
		return data
	}
	return data[:r.End]
}
