// Package pdf417 reads and writes PDF417 stacked barcodes on the bit
// matrices produced by the zxscan binarizers.
package pdf417

import (
	"fmt"
	"math"

	"github.com/ericlevine/zxscan"
)

var (
	_ zxscan.Reader         = (*Reader)(nil)
	_ zxscan.MultipleReader = (*Reader)(nil)
)

// Reader decodes PDF417 symbols. It keeps no state between calls.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Decode returns the first symbol found in image.
func (r *Reader) Decode(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	results, err := r.decode(image, hints, false)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// DecodeMultiple returns every symbol found in image.
func (r *Reader) DecodeMultiple(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) ([]*zxscan.Result, error) {
	return r.decode(image, hints, true)
}

func (r *Reader) Reset() {}

func (r *Reader) decode(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints, multiple bool) (results []*zxscan.Result, err error) {
	if image == nil {
		return nil, fmt.Errorf("nil bitmap: %w", zxscan.ErrNotFound)
	}
	defer func() {
		if p := recover(); p != nil {
			results = nil
			err = fmt.Errorf("pdf417 decoder panic: %v: %w", p, zxscan.ErrFormat)
		}
	}()
	var charset string
	if hints != nil {
		charset = hints.CharacterSet
	}
	decoder, err := newStreamDecoder(charset)
	if err != nil {
		return nil, err
	}
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	found := locate(matrix, multiple)
	err = fmt.Errorf("no start or stop pattern: %w", zxscan.ErrNotFound)
	for _, v := range found.symbols {
		area := symbolArea{
			topLeft:     v[4],
			bottomLeft:  v[5],
			topRight:    v[6],
			bottomRight: v[7],
			minWidth:    minCodewordWidth(v),
			maxWidth:    maxCodewordWidth(v),
		}
		d, scanErr := scanSymbol(found.matrix, area, decoder)
		if scanErr != nil {
			err = scanErr
			continue
		}
		points := found.unrotate(v, matrix.Width(), matrix.Height())
		results = append(results, zxscan.NewResult(d.text, nil, points, zxscan.FormatPDF417))
	}
	if len(results) == 0 {
		return nil, err
	}
	return results, nil
}

// unrotate maps the corners found in the turned matrix back to the pixel
// space of the original width x height matrix.
func (l *located) unrotate(v vertices, width, height int) []zxscan.ResultPoint {
	w, h := float64(width-1), float64(height-1)
	var points []zxscan.ResultPoint
	for _, p := range v {
		if p == nil {
			continue
		}
		switch l.rotation {
		case 90:
			points = append(points, zxscan.ResultPoint{X: w - p.Y, Y: p.X})
		case 180:
			points = append(points, zxscan.ResultPoint{X: w - p.X, Y: h - p.Y})
		case 270:
			points = append(points, zxscan.ResultPoint{X: p.Y, Y: h - p.X})
		default:
			points = append(points, *p)
		}
	}
	return points
}

// maxCodewordWidth and minCodewordWidth bound the codeword width by the
// guard patterns: the start pattern is as wide as a codeword, the stop
// pattern one module wider.
func maxCodewordWidth(v vertices) int {
	return max(
		max(maxWidth(v[0], v[4]), maxWidth(v[6], v[2])*modulesInCodeword/modulesInStopPattern),
		max(maxWidth(v[1], v[5]), maxWidth(v[7], v[3])*modulesInCodeword/modulesInStopPattern),
	)
}

func minCodewordWidth(v vertices) int {
	return min(
		min(minWidth(v[0], v[4]), minWidth(v[6], v[2])*modulesInCodeword/modulesInStopPattern),
		min(minWidth(v[1], v[5]), minWidth(v[7], v[3])*modulesInCodeword/modulesInStopPattern),
	)
}

func maxWidth(a, b *zxscan.ResultPoint) int {
	if a == nil || b == nil {
		return 0
	}
	return int(math.Abs(a.X - b.X))
}

func minWidth(a, b *zxscan.ResultPoint) int {
	if a == nil || b == nil {
		return math.MaxInt32
	}
	return int(math.Abs(a.X - b.X))
}
