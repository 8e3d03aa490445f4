package txd

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

// stripes returns a w x h texture whose pixel (x, y) is {x, y, 0, 255}.
func stripes(w, h int) Texture {
	pixels := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pixels[i], pixels[i+1], pixels[i+3] = uint8(x), uint8(y), 255
		}
	}
	return Texture{Name: "stripes", Width: w, Height: h, Format: FormatDXT1, Pixels: pixels}
}

func TestDictionaryEdits(t *testing.T) {
	d := New()
	for _, name := range []string{"road", "Grass"} {
		if err := d.Add(checkerTexture(name)); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	t.Run("Find", func(t *testing.T) {
		if i, ok := d.Find("grass"); !ok || i != 1 {
			t.Errorf("expected grass at 1, got %d %v", i, ok)
		}
		if _, ok := d.Find("sky"); ok {
			t.Error("found missing texture")
		}
	})

	t.Run("AddDuplicate", func(t *testing.T) {
		if err := d.Add(checkerTexture("ROAD")); !errors.Is(err, ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		if err := d.Rename(0, "grass"); !errors.Is(err, ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
		if err := d.Rename(0, ""); !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName, got %v", err)
		}
		if err := d.Rename(0, "this_name_is_far_too_long_for_the_field"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("expected ErrInvalidName for long name, got %v", err)
		}
		if err := d.Rename(5, "x"); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
		if err := d.Rename(1, "GRASS"); err != nil {
			t.Errorf("renaming to own name in other case: %v", err)
		}
		if err := d.Rename(0, "asphalt"); err != nil {
			t.Fatalf("rename: %v", err)
		}
		if d.Textures[0].Name != "asphalt" {
			t.Errorf("expected asphalt, got %s", d.Textures[0].Name)
		}
	})

	t.Run("SetAlphaName", func(t *testing.T) {
		if err := d.SetAlphaName(0, "asphalta"); err != nil {
			t.Fatalf("set alpha name: %v", err)
		}
		if err := d.SetAlphaName(0, ""); err != nil || d.Textures[0].AlphaName != "" {
			t.Errorf("clearing alpha name: %v %q", err, d.Textures[0].AlphaName)
		}
	})

	t.Run("RenameSurvivesSerialize", func(t *testing.T) {
		out, _ := d.MarshalBinary()
		back, err := Parse(out)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if len(back.Textures) != 2 || back.Textures[0].Name != "asphalt" || back.Textures[1].Name != "GRASS" {
			t.Errorf("unexpected names after round trip: %+v", back.Textures)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		pixels := make([]byte, 2*2*4)
		pixels[3] = 10
		if err := d.Replace(1, pixels, 2, 2); err != nil {
			t.Fatalf("replace: %v", err)
		}
		tex := d.Textures[1]
		if tex.Width != 2 || !tex.HasAlpha || tex.Format != FormatDXT5 || tex.Data != nil {
			t.Errorf("unexpected texture after replace: %+v", tex)
		}
		if err := d.Replace(1, pixels, 4, 4); err == nil {
			t.Error("expected error for short replacement")
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := d.Remove(0); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if len(d.Textures) != 1 || d.Textures[0].Name != "GRASS" {
			t.Errorf("unexpected textures after remove: %d", len(d.Textures))
		}
		if err := d.Remove(1); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
	})
}

func TestTransforms(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Texture) error
		w, h  int
		// source coordinates expected at destination (0,0) and (w-1,0)
		first, last [2]uint8
	}{
		{"FlipVertical", (*Texture).FlipVertical, 3, 2, [2]uint8{0, 1}, [2]uint8{2, 1}},
		{"FlipHorizontal", (*Texture).FlipHorizontal, 3, 2, [2]uint8{2, 0}, [2]uint8{0, 0}},
		{"RotateClockwise", (*Texture).RotateClockwise, 2, 3, [2]uint8{0, 1}, [2]uint8{0, 0}},
		{"RotateCounterClockwise", (*Texture).RotateCounterClockwise, 2, 3, [2]uint8{2, 0}, [2]uint8{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := stripes(3, 2)
			if err := tt.apply(&tex); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if tex.Width != tt.w || tex.Height != tt.h {
				t.Fatalf("expected %dx%d, got %dx%d", tt.w, tt.h, tex.Width, tex.Height)
			}
			if p := pixel(&tex, 0, 0); p[0] != tt.first[0] || p[1] != tt.first[1] {
				t.Errorf("(0,0): expected source %v, got %v", tt.first, p[:2])
			}
			if p := pixel(&tex, tt.w-1, 0); p[0] != tt.last[0] || p[1] != tt.last[1] {
				t.Errorf("(%d,0): expected source %v, got %v", tt.w-1, tt.last, p[:2])
			}
		})
	}

	t.Run("NotDecoded", func(t *testing.T) {
		tex := Texture{Width: 4, Height: 4}
		if err := tex.FlipVertical(); !errors.Is(err, ErrNotDecoded) {
			t.Errorf("expected ErrNotDecoded, got %v", err)
		}
		if err := tex.Resize(2, 2); !errors.Is(err, ErrNotDecoded) {
			t.Errorf("expected ErrNotDecoded, got %v", err)
		}
		if tex.AlphaPreview() != nil {
			t.Error("expected nil preview")
		}
	})
}

func TestResize(t *testing.T) {
	tex := checkerTexture("r")
	if err := tex.Resize(16, 8); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if tex.Width != 16 || tex.Height != 8 || len(tex.Pixels) != 16*8*4 {
		t.Errorf("unexpected size %dx%d with %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}
	if err := tex.Resize(0, 8); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestAlphaPreview(t *testing.T) {
	tex := Texture{Width: 2, Height: 1, Pixels: []byte{9, 9, 9, 40, 1, 2, 3, 200}}
	got := tex.AlphaPreview()
	want := []byte{40, 40, 40, 255, 200, 200, 200, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if tex.Pixels[0] != 9 {
		t.Error("preview modified the texture")
	}
}

func TestNewTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	tex := NewTexture("white", img)
	if tex.HasAlpha || tex.Format != FormatDXT1 || tex.Width != 4 {
		t.Errorf("unexpected opaque texture %+v", tex)
	}

	img.Set(1, 1, color.NRGBA{R: 255, A: 100})
	tex = NewTexture("glass", img)
	if !tex.HasAlpha || tex.Format != FormatDXT5 {
		t.Errorf("expected DXT5 with alpha, got %s", tex.Format)
	}
	if back := tex.Image(); back == nil || back.NRGBAAt(1, 1).A != 100 {
		t.Errorf("Image() lost pixels")
	}
}
