package zxscan

import "github.com/ericlevine/zxscan/bitutil"

// LuminanceSource provides access to greyscale luminance values for an image.
// Transforms return new sources and never modify the receiver, so several
// independent views can be derived from one original.
type LuminanceSource interface {
	// Row returns a row of luminance data. If row is non-nil and large enough,
	// it should be reused.
	Row(y int, row []byte) []byte

	// Matrix returns the entire luminance matrix.
	Matrix() []byte

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int

	// Invert returns a source whose every value is 255 minus the original.
	Invert() LuminanceSource

	// IsRotateSupported reports whether RotateCounterClockwise can be used.
	IsRotateSupported() bool

	// RotateCounterClockwise returns a source rotated 90 degrees
	// counterclockwise, or ErrUnsupported.
	RotateCounterClockwise() (LuminanceSource, error)
}

// Binarizer converts luminance data to 1-bit black/white data.
type Binarizer interface {
	// BlackRow returns a row of black/white values.
	BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error)

	// BlackMatrix returns the 2D matrix of black/white values.
	BlackMatrix() (*bitutil.BitMatrix, error)

	// LuminanceSource returns the underlying LuminanceSource.
	LuminanceSource() LuminanceSource

	// Width returns the width of the image.
	Width() int

	// Height returns the height of the image.
	Height() int
}
