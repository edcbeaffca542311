// Package imaging loads source bitmaps at a bounded working resolution and
// applies the whole-bitmap transforms used before decoding.
package imaging

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ericlevine/zxscan"
)

// Default working bounds. Large enough to keep module detail of typical
// barcodes and QR codes, small enough to bound the cost of each attempt.
const (
	DefaultMaxWidth  = 450
	DefaultMaxHeight = 800
)

// Bounds reads only the image header of the file at path and returns its
// native width and height.
func Bounds(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w: %w", path, zxscan.ErrUnreadable, err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("read header of %s: %w: %w", path, zxscan.ErrUnreadable, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Load decodes the image file at path, downsampled so that it fits within
// maxWidth x maxHeight. A non-positive bound leaves that dimension
// unconstrained. The header is read first so an empty image fails before
// any pixels are decoded.
func Load(path string, maxWidth, maxHeight int) (image.Image, error) {
	width, height, err := Bounds(path)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s is %dx%d: %w", path, width, height, zxscan.ErrUnreadable)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, zxscan.ErrUnreadable, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode pixels of %s: %w: %w", path, zxscan.ErrUnreadable, err)
	}
	factor := Factor(width, height, maxWidth, maxHeight)
	if factor == 1 {
		return img, nil
	}
	return Decimate(img, factor), nil
}

// Factor returns the integer downsample factor for a width x height image
// and the given bounds. The starting point is the larger of
// floor(width/maxWidth) and floor(height/maxHeight) for each exceeded bound.
// The factor is then raised until the decimated size fits, since a floor
// quotient alone can leave a dimension over its bound. It is never below 1.
func Factor(width, height, maxWidth, maxHeight int) int {
	factor := 1
	if maxWidth > 0 && width > maxWidth {
		factor = width / maxWidth
	}
	if maxHeight > 0 && height > maxHeight {
		factor = max(factor, height/maxHeight)
	}
	factor = max(factor, 1)
	for (maxWidth > 0 && ceilDiv(width, factor) > maxWidth) ||
		(maxHeight > 0 && ceilDiv(height, factor) > maxHeight) {
		factor++
	}
	return factor
}

// Scale downsamples img to fit within maxWidth x maxHeight. Images already
// within bounds are returned unchanged.
func Scale(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	factor := Factor(b.Dx(), b.Dy(), maxWidth, maxHeight)
	if factor == 1 {
		return img
	}
	return Decimate(img, factor)
}

// Decimate keeps every factor-th pixel of every factor-th row, starting at
// the top-left corner. No interpolation is done: decoding needs module
// contrast, not visual quality.
func Decimate(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w := ceilDiv(b.Dx(), factor)
	h := ceilDiv(b.Dy(), factor)
	dst := newLike(img, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Set(x, y, img.At(b.Min.X+x*factor, b.Min.Y+y*factor))
		}
	}
	return dst
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// newLike allocates a w x h image that keeps grayscale sources grayscale.
func newLike(img image.Image, w, h int) draw.Image {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return image.NewGray(image.Rect(0, 0, w, h))
	default:
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
}
