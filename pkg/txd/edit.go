package txd

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/imgfactory/txdtools/pkg/dxt"
)

// NewTexture builds a texture from an image. HasAlpha is set when any pixel
// is not fully opaque, so serialisation picks DXT5 only when needed.
func NewTexture(name string, img image.Image) Texture {
	pixels, w, h := dxt.FromImage(img)
	t := Texture{Name: name}
	t.setPixels(pixels, w, h)
	return t
}

// Image returns the decoded pixels as an image, or nil if not decoded.
func (t *Texture) Image() *image.NRGBA {
	if !t.Decoded() {
		return nil
	}
	return dxt.ToNRGBA(t.Pixels, t.Width, t.Height)
}

func (t *Texture) setPixels(pixels []byte, w, h int) {
	t.Pixels = pixels
	t.Width = w
	t.Height = h
	t.HasAlpha = hasTransparency(pixels)
	if t.HasAlpha {
		t.Format = FormatDXT5
	} else {
		t.Format = FormatDXT1
	}
	t.MipmapCount = 1
	t.Data = nil
}

func hasTransparency(pixels []byte) bool {
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] != 255 {
			return true
		}
	}
	return false
}

// Find returns the index of the texture called name, compared case-insensitively.
func (d *Dictionary) Find(name string) (int, bool) {
	for i := range d.Textures {
		if strings.EqualFold(d.Textures[i].Name, name) {
			return i, true
		}
	}
	return -1, false
}

func (d *Dictionary) texture(index int) (*Texture, error) {
	if index < 0 || index >= len(d.Textures) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(d.Textures))
	}
	return &d.Textures[index], nil
}

func (d *Dictionary) checkName(name string, self int) error {
	if !validName(name, newOptions(d.opts)) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if i, ok := d.Find(name); ok && i != self {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

// Rename changes the name of the texture at index.
func (d *Dictionary) Rename(index int, name string) error {
	t, err := d.texture(index)
	if err != nil {
		return err
	}
	if err := d.checkName(name, index); err != nil {
		return err
	}
	t.Name = name
	return nil
}

// SetAlphaName sets the mask name of the texture at index. An empty name clears it.
func (d *Dictionary) SetAlphaName(index int, name string) error {
	t, err := d.texture(index)
	if err != nil {
		return err
	}
	if name != "" && !validName(name, newOptions(d.opts)) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	t.AlphaName = name
	return nil
}

// Add appends a texture. Its name must be valid and unique.
func (d *Dictionary) Add(t Texture) error {
	if err := d.checkName(t.Name, -1); err != nil {
		return err
	}
	if len(d.Textures) >= MaxTextures {
		return fmt.Errorf("txd: dictionary already holds %d textures", MaxTextures)
	}
	d.Textures = append(d.Textures, t)
	return nil
}

// Remove deletes the texture at index.
func (d *Dictionary) Remove(index int) error {
	if _, err := d.texture(index); err != nil {
		return err
	}
	d.Textures = append(d.Textures[:index], d.Textures[index+1:]...)
	return nil
}

// Replace swaps the pixels of the texture at index, keeping its names and
// sampler state.
func (d *Dictionary) Replace(index int, pixels []byte, width, height int) error {
	t, err := d.texture(index)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return fmt.Errorf("txd: replacement has %d bytes for %dx%d", len(pixels), width, height)
	}
	t.setPixels(append([]byte(nil), pixels[:width*height*4]...), width, height)
	return nil
}

// Resize rescales the decoded pixels with Catmull-Rom filtering.
func (t *Texture) Resize(width, height int) error {
	if !t.Decoded() {
		return ErrNotDecoded
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("txd: invalid size %dx%d", width, height)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), t.Image(), image.Rect(0, 0, t.Width, t.Height), draw.Src, nil)

	t.Pixels = dst.Pix
	t.Width = width
	t.Height = height
	t.Data = nil
	return nil
}

// FlipVertical mirrors the pixels top to bottom.
func (t *Texture) FlipVertical() error {
	return t.remap(t.Width, t.Height, func(x, y int) (int, int) {
		return x, t.Height - 1 - y
	})
}

// FlipHorizontal mirrors the pixels left to right.
func (t *Texture) FlipHorizontal() error {
	return t.remap(t.Width, t.Height, func(x, y int) (int, int) {
		return t.Width - 1 - x, y
	})
}

// RotateClockwise turns the pixels 90 degrees clockwise, swapping width and height.
func (t *Texture) RotateClockwise() error {
	return t.remap(t.Height, t.Width, func(x, y int) (int, int) {
		return y, t.Height - 1 - x
	})
}

// RotateCounterClockwise turns the pixels 90 degrees counter-clockwise.
func (t *Texture) RotateCounterClockwise() error {
	return t.remap(t.Height, t.Width, func(x, y int) (int, int) {
		return t.Width - 1 - y, x
	})
}

// remap builds a w x h image whose pixel (x, y) is the source pixel src(x, y).
func (t *Texture) remap(w, h int, src func(x, y int) (int, int)) error {
	if !t.Decoded() {
		return ErrNotDecoded
	}

	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := src(x, y)
			si := (sy*t.Width + sx) * 4
			di := (y*w + x) * 4
			copy(out[di:di+4], t.Pixels[si:si+4])
		}
	}

	t.Pixels = out
	t.Width = w
	t.Height = h
	t.Data = nil
	return nil
}

// AlphaPreview renders the alpha channel as opaque greyscale RGBA8888.
// It returns nil if the texture is not decoded.
func (t *Texture) AlphaPreview() []byte {
	if !t.Decoded() {
		return nil
	}
	out := make([]byte, len(t.Pixels))
	for i := 0; i+3 < len(t.Pixels); i += 4 {
		a := t.Pixels[i+3]
		out[i], out[i+1], out[i+2], out[i+3] = a, a, a, 255
	}
	return out
}
