package imaging

import (
	"fmt"
	"image"

	"github.com/ericlevine/zxscan"
)

// Rotate returns img rotated clockwise by degrees, which must be a multiple
// of 90.
func Rotate(img image.Image, degrees int) (image.Image, error) {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
		return img, nil
	case 90:
		return Rotate90(img), nil
	case 180:
		return rotate180(img), nil
	case 270:
		return rotate270(img), nil
	default:
		return nil, fmt.Errorf("rotate by %d degrees: %w", degrees, zxscan.ErrUnsupported)
	}
}

// Rotate90 returns a copy of img rotated 90 degrees clockwise.
func Rotate90(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := newLike(img, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(h-1-y, x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate180(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := newLike(img, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(w-1-x, h-1-y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func rotate270(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := newLike(img, h, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(y, w-1-x, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
