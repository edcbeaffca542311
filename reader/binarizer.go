package reader

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
)

// bitmapBinarizer presents a zxscan.BinaryBitmap to gozxing readers, so the
// matrix they decode is the one our binarizer produced.
type bitmapBinarizer struct {
	bitmap *zxscan.BinaryBitmap
	matrix *gozxing.BitMatrix
	source gozxing.LuminanceSource
	row    *bitutil.BitArray
}

func newBitmapBinarizer(bitmap *zxscan.BinaryBitmap) *bitmapBinarizer {
	return &bitmapBinarizer{bitmap: bitmap}
}

// GetLuminanceSource exposes the luminance plane as a gozxing source. It is
// only consulted by readers that derive their own binarizer, e.g. for
// rotated 1-D retries.
func (b *bitmapBinarizer) GetLuminanceSource() gozxing.LuminanceSource {
	if b.source != nil {
		return b.source
	}
	lum := b.bitmap.Binarizer().LuminanceSource()
	w, h := lum.Width(), lum.Height()
	src, err := gozxing.NewPlanarYUVLuminanceSource(lum.Matrix(), w, h, 0, 0, w, h, false)
	if err != nil {
		return nil
	}
	b.source = src
	return b.source
}

func (b *bitmapBinarizer) GetBlackRow(y int, row *gozxing.BitArray) (*gozxing.BitArray, error) {
	black, err := b.bitmap.BlackRow(y, b.row)
	if err != nil {
		return nil, err
	}
	b.row = black
	width := b.GetWidth()
	if row == nil || row.GetSize() < width {
		row = gozxing.NewBitArray(width)
	} else {
		row.Clear()
	}
	for x := black.NextSet(0); x < width; x = black.NextSet(x + 1) {
		row.Set(x)
	}
	return row, nil
}

func (b *bitmapBinarizer) GetBlackMatrix() (*gozxing.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	black, err := b.bitmap.BlackMatrix()
	if err != nil {
		return nil, err
	}
	matrix, err := gozxing.NewBitMatrix(black.Width(), black.Height())
	if err != nil {
		return nil, fmt.Errorf("convert %dx%d matrix: %w", black.Width(), black.Height(), zxscan.ErrDegenerate)
	}
	var row *bitutil.BitArray
	for y := 0; y < black.Height(); y++ {
		row = black.Row(y, row)
		for x := row.NextSet(0); x < black.Width(); x = row.NextSet(x + 1) {
			matrix.Set(x, y)
		}
	}
	b.matrix = matrix
	return matrix, nil
}

func (b *bitmapBinarizer) CreateBinarizer(source gozxing.LuminanceSource) gozxing.Binarizer {
	return gozxing.NewHybridBinarizer(source)
}

func (b *bitmapBinarizer) GetWidth() int {
	return b.bitmap.Width()
}

func (b *bitmapBinarizer) GetHeight() int {
	return b.bitmap.Height()
}
