package zxscan

import (
	"bytes"
	"fmt"
	"image"
)

// ImageLuminanceSource is a LuminanceSource over an owned buffer of one
// luminance byte per pixel, stored row-major. It is never modified after
// construction; every transform allocates a fresh buffer.
type ImageLuminanceSource struct {
	pix  []byte
	w, h int
}

func newPlane(pix []byte, w, h int) *ImageLuminanceSource {
	return &ImageLuminanceSource{pix: pix, w: w, h: h}
}

// luma weights 8-bit components 306:601:117 out of 1024, with rounding.
func luma(r, g, b uint32) byte {
	return byte((306*r + 601*g + 117*b + 512) >> 10)
}

// NewImageLuminanceSource converts img to luminance. Transparent pixels
// become white.
func NewImageLuminanceSource(img image.Image) *ImageLuminanceSource {
	switch src := img.(type) {
	case *image.Gray:
		return NewGrayImageLuminanceSource(src)
	case *image.RGBA:
		return fromRGBA(src)
	}
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	pix := make([]byte, 0, w*h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cr, cg, cb, ca := img.At(x, y).RGBA()
			if ca == 0 {
				pix = append(pix, 0xFF)
				continue
			}
			pix = append(pix, luma(cr>>8, cg>>8, cb>>8))
		}
	}
	return newPlane(pix, w, h)
}

// fromRGBA reads premultiplied RGBA bytes directly, which matches what
// RGBA() reports for the same pixels.
func fromRGBA(img *image.RGBA) *ImageLuminanceSource {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	pix := make([]byte, 0, w*h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		line := img.Pix[img.PixOffset(r.Min.X, y):]
		for x := 0; x < w; x++ {
			p := line[4*x : 4*x+4]
			if p[3] == 0 {
				pix = append(pix, 0xFF)
				continue
			}
			pix = append(pix, luma(uint32(p[0]), uint32(p[1]), uint32(p[2])))
		}
	}
	return newPlane(pix, w, h)
}

// NewGrayImageLuminanceSource copies the gray levels of img unchanged.
func NewGrayImageLuminanceSource(img *image.Gray) *ImageLuminanceSource {
	r := img.Bounds()
	w, h := r.Dx(), r.Dy()
	pix := make([]byte, 0, w*h)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		start := img.PixOffset(r.Min.X, y)
		pix = append(pix, img.Pix[start:start+w]...)
	}
	return newPlane(pix, w, h)
}

// NewRGBLuminanceSource builds a source from packed 0xAARRGGBB pixels in
// row-major order, averaging as (R + 2G + B) / 4.
func NewRGBLuminanceSource(width, height int, pixels []int) (*ImageLuminanceSource, error) {
	if width < 0 || height < 0 || len(pixels) < width*height {
		return nil, fmt.Errorf("rgb source %dx%d with %d pixels: %w", width, height, len(pixels), ErrDegenerate)
	}
	pix := make([]byte, width*height)
	for i, p := range pixels[:width*height] {
		r, g, b := (p>>16)&0xFF, (p>>8)&0xFF, p&0xFF
		pix[i] = byte((r + 2*g + b) / 4)
	}
	return newPlane(pix, width, height), nil
}

// Row copies row y into row, allocating when row is too short. It returns
// nil when y is out of range.
func (s *ImageLuminanceSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.h {
		return nil
	}
	if len(row) < s.w {
		row = make([]byte, s.w)
	}
	copy(row, s.pix[y*s.w:(y+1)*s.w])
	return row
}

// Matrix returns a copy of the luminance buffer.
func (s *ImageLuminanceSource) Matrix() []byte { return bytes.Clone(s.pix) }

func (s *ImageLuminanceSource) Width() int { return s.w }

func (s *ImageLuminanceSource) Height() int { return s.h }

// Invert returns a source holding 255 minus every value.
func (s *ImageLuminanceSource) Invert() LuminanceSource {
	out := make([]byte, len(s.pix))
	for i, v := range s.pix {
		out[i] = ^v
	}
	return newPlane(out, s.w, s.h)
}

// Crop returns the given rectangle as a new source.
func (s *ImageLuminanceSource) Crop(left, top, width, height int) (*ImageLuminanceSource, error) {
	bounds := image.Rect(0, 0, s.w, s.h)
	want := image.Rect(left, top, left+width, top+height)
	if width < 1 || height < 1 || !want.In(bounds) {
		return nil, fmt.Errorf("crop %v outside %v: %w", want, bounds, ErrUnsupported)
	}
	out := make([]byte, 0, width*height)
	for y := top; y < top+height; y++ {
		out = append(out, s.pix[y*s.w+left:y*s.w+left+width]...)
	}
	return newPlane(out, width, height), nil
}

// IsRotateSupported is false for single-row or single-column sources,
// which are treated as 1-D strips.
func (s *ImageLuminanceSource) IsRotateSupported() bool {
	return s.w > 1 && s.h > 1
}

// RotateCounterClockwise returns a new source turned a quarter turn
// counterclockwise: the rightmost column becomes the top row.
func (s *ImageLuminanceSource) RotateCounterClockwise() (LuminanceSource, error) {
	if !s.IsRotateSupported() {
		return nil, fmt.Errorf("rotate %dx%d source: %w", s.w, s.h, ErrUnsupported)
	}
	out := make([]byte, 0, len(s.pix))
	for col := s.w - 1; col >= 0; col-- {
		for y := 0; y < s.h; y++ {
			out = append(out, s.pix[y*s.w+col])
		}
	}
	return newPlane(out, s.h, s.w), nil
}

// Image renders the luminance buffer as a gray image.
func (s *ImageLuminanceSource) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.w, s.h))
	copy(img.Pix, s.pix)
	return img
}

// BitMatrixToImage draws set bits as black and clear bits as white.
func BitMatrixToImage(matrix interface {
	Width() int
	Height() int
	Get(x, y int) bool
}) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, matrix.Width(), matrix.Height()))
	for i := range img.Pix {
		x, y := i%img.Stride, i/img.Stride
		if matrix.Get(x, y) {
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 0xFF
		}
	}
	return img
}
