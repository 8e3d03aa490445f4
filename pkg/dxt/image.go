package dxt

import (
	"image"

	"golang.org/x/image/draw"
)

// ToNRGBA wraps a copy of an RGBA8888 buffer in an image.NRGBA.
func ToNRGBA(rgba []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, rgba)
	return img
}

// FromImage converts any image to an RGBA8888 buffer with straight alpha.
func FromImage(src image.Image) (rgba []byte, width, height int) {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && n.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return append([]byte(nil), n.Pix[:b.Dx()*b.Dy()*4]...), b.Dx(), b.Dy()
	}

	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst.Pix, b.Dx(), b.Dy()
}
