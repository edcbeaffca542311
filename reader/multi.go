package reader

import (
	"fmt"

	"github.com/ericlevine/zxscan"
)

const (
	minDimensionToRecur = 100
	maxSearchDepth      = 4
)

var _ zxscan.MultipleReader = (*MultiFormatReader)(nil)

// DecodeMultiple locates every symbol in image. A format reader that can
// find several symbols on its own is asked once; the others scan the bitmap
// recursively, searching left of, above, right of and below each symbol
// already found. Results repeating the format and text of an earlier one
// are dropped.
func (r *MultiFormatReader) DecodeMultiple(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) ([]*zxscan.Result, error) {
	if image == nil {
		return nil, zxscan.ErrNotFound
	}
	if r.readers == nil {
		r.readers = buildReaders(hints)
	}
	if _, err := toGozxingHints(hints); err != nil {
		return nil, err
	}

	var results []*zxscan.Result
	seen := map[string]bool{}
	for _, fr := range r.readers {
		var found []*zxscan.Result
		if mr, ok := fr.reader.(zxscan.MultipleReader); ok {
			found, _ = mr.DecodeMultiple(image, hints)
		} else {
			found = searchAll(fr.reader, image, hints)
		}
		for _, result := range found {
			key := fmt.Sprintf("%s:%s", result.Format, result.Text)
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, result)
		}
	}
	if len(results) == 0 {
		return nil, zxscan.ErrNotFound
	}
	return results, nil
}

// searchAll decodes image with a single-symbol reader, then repeats on the
// regions around each symbol found.
func searchAll(reader zxscan.Reader, image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) []*zxscan.Result {
	var results []*zxscan.Result
	search(reader, image, hints, &results, 0, 0, 0)
	return results
}

func search(reader zxscan.Reader, image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints, results *[]*zxscan.Result, xOffset, yOffset, depth int) {
	if depth > maxSearchDepth {
		return
	}
	result, err := reader.Decode(image, hints)
	if err != nil {
		return
	}
	known := false
	for _, existing := range *results {
		if existing.Text == result.Text {
			known = true
			break
		}
	}
	if !known {
		*results = append(*results, translate(result, xOffset, yOffset))
	}
	if len(result.Points) == 0 {
		return
	}

	width, height := image.Width(), image.Height()
	minX, minY := float64(width), float64(height)
	maxX, maxY := 0.0, 0.0
	for _, p := range result.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	recur := func(left, top, w, h, dx, dy int) {
		cropped, err := image.Crop(left, top, w, h)
		if err != nil {
			return
		}
		search(reader, cropped, hints, results, xOffset+dx, yOffset+dy, depth+1)
	}
	// Left, above, right and below the symbol.
	if minX > minDimensionToRecur {
		recur(0, 0, int(minX), height, 0, 0)
	}
	if minY > minDimensionToRecur {
		recur(0, 0, width, int(minY), 0, 0)
	}
	if maxX < float64(width-minDimensionToRecur) {
		recur(int(maxX), 0, width-int(maxX), height, int(maxX), 0)
	}
	if maxY < float64(height-minDimensionToRecur) {
		recur(0, int(maxY), width, height-int(maxY), 0, int(maxY))
	}
}

// translate moves the result points of a symbol found in a crop back into
// the pixel space of the full bitmap.
func translate(result *zxscan.Result, xOffset, yOffset int) *zxscan.Result {
	if len(result.Points) == 0 || xOffset == 0 && yOffset == 0 {
		return result
	}
	points := make([]zxscan.ResultPoint, len(result.Points))
	for i, p := range result.Points {
		points[i] = zxscan.ResultPoint{X: p.X + float64(xOffset), Y: p.Y + float64(yOffset)}
	}
	moved := *result
	moved.Points = points
	return &moved
}
