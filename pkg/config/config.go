// Package config loads the YAML settings shared by the command line tools.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/imgfactory/txdtools/pkg/rw"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "txdtools.yaml"

// ASCII is the name encoding that keeps only printable ASCII.
const ASCII = "ascii"

// ExportFormats lists the image formats extract can write.
var ExportFormats = []string{"png", "bmp", "tiff", "dds"}

// Config holds user settings. Zero fields fall back to Default.
type Config struct {
	NameEncoding string `yaml:"name_encoding"`
	ExportFormat string `yaml:"export_format"`
	Backup       bool   `yaml:"backup"`
	RWVersion    uint32 `yaml:"rw_version"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		NameEncoding: ASCII,
		ExportFormat: "png",
		Backup:       true,
		RWVersion:    rw.DefaultVersion,
		LogLevel:     "info",
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read config %q", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pkgerrors.Wrapf(err, "parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid config %q", path)
	}
	return cfg, nil
}

// Validate checks every setting can be resolved.
func (c *Config) Validate() error {
	if _, err := c.Charmap(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	for _, f := range ExportFormats {
		if c.ExportFormat == f {
			return nil
		}
	}
	return pkgerrors.Errorf("unknown export format %q", c.ExportFormat)
}

// Charmap resolves NameEncoding. ASCII returns a nil encoding.
func (c *Config) Charmap() (encoding.Encoding, error) {
	name := normalize(c.NameEncoding)
	if name == "" || name == ASCII {
		return nil, nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if normalize(cm.String()) == name {
				return cm, nil
			}
		}
	}
	return nil, pkgerrors.Errorf("unknown name encoding %q", c.NameEncoding)
}

// ListEncodings returns every accepted name_encoding value.
func ListEncodings() []string {
	list := []string{ASCII}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

// normalize folds "Windows 1252", "windows-1252" and "windows1252" together.
func normalize(name string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(name))
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, pkgerrors.Wrapf(err, "unknown log level %q", c.LogLevel)
	}
	return level, nil
}
