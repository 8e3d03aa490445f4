package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imgfactory/txdtools/pkg/txd"
)

// ManifestName is the file written next to extracted images.
const ManifestName = "textures.yaml"

// manifest records what extract wrote so build can restore names and
// sampler state that images cannot carry.
type manifest struct {
	Version  uint32          `yaml:"version"`
	Textures []manifestEntry `yaml:"textures"`
}

type manifestEntry struct {
	Name       string `yaml:"name"`
	AlphaName  string `yaml:"alpha_name,omitempty"`
	File       string `yaml:"file"`
	Format     string `yaml:"format"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	HasAlpha   bool   `yaml:"has_alpha"`
	FilterMode uint8  `yaml:"filter_mode"`
	Addressing uint8  `yaml:"addressing"`
}

func newManifestEntry(t *txd.Texture, file string) manifestEntry {
	return manifestEntry{
		Name:       t.Name,
		AlphaName:  t.AlphaName,
		File:       file,
		Format:     t.Format.String(),
		Width:      t.Width,
		Height:     t.Height,
		HasAlpha:   t.HasAlpha,
		FilterMode: t.FilterMode,
		Addressing: t.Addressing,
	}
}

func writeManifest(dir string, m *manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestName), data, 0644)
}

func readManifest(dir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// fileName maps a texture name to a file name that is safe on every
// platform and unique within used.
func fileName(name, ext string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if base == "" {
		base = "texture"
	}

	candidate := base + ext
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
