package pdf417

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
)

const (
	codewordSkew   = 2
	maxErrors      = 3
	maxECCodewords = 512
	maxAmbiguity   = 100
)

// symbolArea is what the detector hands to the codeword scanner: the corners
// of the codeword area and the expected codeword width range in pixels.
type symbolArea struct {
	topLeft, bottomLeft, topRight, bottomRight *zxscan.ResultPoint
	minWidth, maxWidth                         int
}

// scanSymbol reads every codeword of the symbol and returns them laid out
// as rows of the symbol, with error correction applied.
func scanSymbol(image *bitutil.BitMatrix, area symbolArea, decoder *streamDecoder) (*decoded, error) {
	box, err := newBoundingBox(image.Width(), image.Height(), area.topLeft, area.bottomLeft, area.topRight, area.bottomRight)
	if err != nil {
		return nil, err
	}
	minWidth, maxWidth := area.minWidth, area.maxWidth

	var left, right *column
	var det *detection
	for first := true; ; first = false {
		if area.topLeft != nil {
			left = indicatorColumn(image, box, *area.topLeft, true, minWidth, maxWidth)
		}
		if area.topRight != nil {
			right = indicatorColumn(image, box, *area.topRight, false, minWidth, maxWidth)
		}
		det, err = merge(left, right)
		if err != nil {
			return nil, err
		}
		if first && det.box != nil && (det.box.minY < box.minY || det.box.maxY > box.maxY) {
			box = det.box
			continue
		}
		break
	}
	det.box = box

	last := det.last()
	det.columns[0] = left
	det.columns[last] = right
	leftToRight := left != nil
	for n := 1; n <= last; n++ {
		col := n
		if !leftToRight {
			col = last - n
		}
		if det.columns[col] != nil {
			continue
		}
		c := newColumn(box)
		if col == 0 || col == last {
			c = newIndicatorColumn(box, col == 0)
		}
		det.columns[col] = c

		previousStart := -1
		for row := box.minY; row <= box.maxY; row++ {
			start := det.startColumn(col, row, leftToRight)
			if start < 0 || start > box.maxX {
				if previousStart == -1 {
					continue
				}
				start = previousStart
			}
			cw := detectCodeword(image, box.minX, box.maxX, leftToRight, start, row, minWidth, maxWidth)
			if cw == nil {
				continue
			}
			c.set(row, cw)
			previousStart = start
			minWidth = min(minWidth, cw.width())
			maxWidth = max(maxWidth, cw.width())
		}
	}
	return det.decode(decoder)
}

func merge(left, right *column) (*detection, error) {
	if left == nil && right == nil {
		return nil, fmt.Errorf("no row indicators: %w", zxscan.ErrNotFound)
	}
	md := combinedMetadata(left, right)
	if md == nil {
		return nil, fmt.Errorf("row indicators carry no metadata: %w", zxscan.ErrNotFound)
	}
	leftBox, err := adjustBox(left)
	if err != nil {
		return nil, err
	}
	rightBox, err := adjustBox(right)
	if err != nil {
		return nil, err
	}
	box, err := mergeBoxes(leftBox, rightBox)
	if err != nil {
		return nil, err
	}
	return newDetection(md, box), nil
}

// combinedMetadata prefers the left indicator and only rejects the pair
// when every field disagrees.
func combinedMetadata(left, right *column) *metadata {
	var l, r *metadata
	if left != nil {
		l = left.metadata()
	}
	if l == nil {
		if right == nil {
			return nil
		}
		return right.metadata()
	}
	if right != nil {
		r = right.metadata()
	}
	if r == nil {
		return l
	}
	if l.columns != r.columns && l.ecLevel != r.ecLevel && l.rows() != r.rows() {
		return nil
	}
	return l
}

// adjustBox extends an indicator's box by the rows it evidently missed at
// the top and bottom of the symbol.
func adjustBox(c *column) (*boundingBox, error) {
	if c == nil {
		return nil, nil
	}
	heights := c.rowHeights()
	if heights == nil {
		return nil, nil
	}
	tallest := slices.Max(heights)
	missingStart := 0
	for _, h := range heights {
		missingStart += tallest - h
		if h > 0 {
			break
		}
	}
	for i := 0; i < len(c.codewords) && missingStart > 0 && c.codewords[i] == nil; i++ {
		missingStart--
	}
	missingEnd := 0
	for i := len(heights) - 1; i >= 0; i-- {
		missingEnd += tallest - heights[i]
		if heights[i] > 0 {
			break
		}
	}
	for i := len(c.codewords) - 1; i >= 0 && missingEnd > 0 && c.codewords[i] == nil; i-- {
		missingEnd--
	}
	return c.box.addMissingRows(missingStart, missingEnd, c.left)
}

// indicatorColumn follows a row indicator from its top corner down and up
// the codeword area.
func indicatorColumn(image *bitutil.BitMatrix, box *boundingBox, start zxscan.ResultPoint, left bool, minWidth, maxWidth int) *column {
	c := newIndicatorColumn(box, left)
	for _, step := range []int{1, -1} {
		x := int(start.X)
		for row := int(start.Y); row <= box.maxY && row >= box.minY; row += step {
			cw := detectCodeword(image, 0, image.Width(), left, x, row, minWidth, maxWidth)
			if cw == nil {
				continue
			}
			c.set(row, cw)
			if left {
				x = cw.startX
			} else {
				x = cw.endX
			}
		}
	}
	return c
}

func (d *detection) validColumn(col int) bool {
	return col >= 0 && col <= d.last() && d.columns[col] != nil
}

// startColumn guesses where the codeword of column col starts on row, from
// the codewords already read in this and the neighbouring column.
func (d *detection) startColumn(col, row int, leftToRight bool) int {
	offset := 1
	if !leftToRight {
		offset = -1
	}
	near := func(cw *codeword) int {
		if leftToRight {
			return cw.endX
		}
		return cw.startX
	}
	if d.validColumn(col - offset) {
		if cw := d.columns[col-offset].get(row); cw != nil {
			return near(cw)
		}
	}
	if cw := d.columns[col].nearby(row); cw != nil {
		if leftToRight {
			return cw.startX
		}
		return cw.endX
	}
	if d.validColumn(col - offset) {
		if cw := d.columns[col-offset].nearby(row); cw != nil {
			return near(cw)
		}
	}
	skipped := 0
	for d.validColumn(col - offset) {
		col -= offset
		for _, cw := range d.columns[col].codewords {
			if cw != nil {
				return near(cw) + offset*skipped*cw.width()
			}
		}
		skipped++
	}
	if leftToRight {
		return d.box.minX
	}
	return d.box.maxX
}

// detectCodeword reads the eight elements of the codeword starting (or, right
// to left, ending) at startX and looks up its value.
func detectCodeword(image *bitutil.BitMatrix, minX, maxX int, leftToRight bool, startX, row, minWidth, maxWidth int) *codeword {
	startX = adjustStart(image, minX, maxX, leftToRight, startX, row)
	counts := moduleCounts(image, minX, maxX, leftToRight, startX, row)
	if counts == nil {
		return nil
	}
	width := sum(counts)
	endX := startX + width
	if !leftToRight {
		slices.Reverse(counts)
		endX = startX
		startX = endX - width
	}
	if width < minWidth-codewordSkew || width > maxWidth+codewordSkew {
		return nil
	}
	symbol := decodeModules(counts)
	value := codewordValue(symbol)
	if value == -1 {
		return nil
	}
	return newCodeword(startX, endX, bucketOf(symbol), value)
}

func moduleCounts(image *bitutil.BitMatrix, minX, maxX int, leftToRight bool, x, row int) []int {
	counts := make([]int, barsInModule)
	element := 0
	step := 1
	if !leftToRight {
		step = -1
	}
	black := leftToRight
	inside := func(x int) bool {
		if leftToRight {
			return x < maxX
		}
		return x >= minX
	}
	for inside(x) && element < barsInModule {
		if image.Get(x, row) == black {
			counts[element]++
			x += step
		} else {
			element++
			black = !black
		}
	}
	edge := maxX
	if !leftToRight {
		edge = minX
	}
	if element == barsInModule || (x == edge && element == barsInModule-1) {
		return counts
	}
	return nil
}

// adjustStart moves startX back onto the first bar when it landed a pixel
// or two inside the codeword, or forward when it landed in the gap before.
func adjustStart(image *bitutil.BitMatrix, minX, maxX int, leftToRight bool, startX, row int) int {
	corrected := startX
	step := -1
	if !leftToRight {
		step = 1
	}
	for iter := 0; iter < 2; iter++ {
		for (leftToRight && corrected >= minX || !leftToRight && corrected < maxX) &&
			corrected >= 0 && corrected < image.Width() && leftToRight == image.Get(corrected, row) {
			if abs(startX-corrected) > codewordSkew {
				return startX
			}
			corrected += step
		}
		step = -step
		leftToRight = !leftToRight
	}
	return corrected
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// decode lays the codewords out as symbol rows and columns, resolving
// cells read with different values by trying each candidate until the
// error correction accepts one.
func (d *detection) decode(decoder *streamDecoder) (*decoded, error) {
	matrix := d.barcodeMatrix()
	if err := d.adjustCodewordCount(matrix); err != nil {
		return nil, err
	}
	rows, cols := d.md.rows(), d.md.columns
	codewords := make([]int, rows*cols)
	var erasures, ambiguous []int
	var candidates [][]int
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			values := matrix[row][col+1].best()
			i := row*cols + col
			switch len(values) {
			case 0:
				erasures = append(erasures, i)
			case 1:
				codewords[i] = values[0]
			default:
				ambiguous = append(ambiguous, i)
				candidates = append(candidates, values)
			}
		}
	}

	choice := make([]int, len(ambiguous))
	for iter := 0; iter < maxAmbiguity; iter++ {
		for i, at := range ambiguous {
			codewords[at] = candidates[i][choice[i]]
		}
		result, err := decodeCodewords(slices.Clone(codewords), d.md.ecLevel, erasures, decoder)
		if err == nil || !errors.Is(err, zxscan.ErrChecksum) {
			return result, err
		}
		if len(ambiguous) == 0 {
			return nil, err
		}
		for i := range choice {
			if choice[i] < len(candidates[i])-1 {
				choice[i]++
				break
			}
			choice[i] = 0
			if i == len(choice)-1 {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("no combination of %d ambiguous codewords corrects: %w", len(ambiguous), zxscan.ErrChecksum)
}

func (d *detection) barcodeMatrix() [][]votes {
	matrix := make([][]votes, d.md.rows())
	for row := range matrix {
		matrix[row] = make([]votes, d.md.columns+2)
		for col := range matrix[row] {
			matrix[row][col] = votes{}
		}
	}
	for col, c := range d.settle() {
		if c == nil {
			continue
		}
		for _, cw := range c.codewords {
			if cw == nil || cw.row < 0 || cw.row >= len(matrix) {
				continue
			}
			matrix[cw.row][col][cw.value]++
		}
	}
	return matrix
}

// adjustCodewordCount fills in the symbol length descriptor, the first data
// codeword, from the row indicators when it was not read or disagrees.
func (d *detection) adjustCodewordCount(matrix [][]votes) error {
	cell := matrix[0][1]
	count := cell.best()
	calculated := d.md.columns*d.md.rows() - ecCodewordCount(d.md.ecLevel)
	valid := calculated >= 1 && calculated <= maxCodewordsInBarcode
	if len(count) == 0 {
		if !valid {
			return fmt.Errorf("symbol length %d out of range: %w", calculated, zxscan.ErrNotFound)
		}
		cell[calculated]++
	} else if count[0] != calculated && valid {
		cell[calculated]++
	}
	return nil
}

func decodeCodewords(codewords []int, ecLevel int, erasures []int, decoder *streamDecoder) (*decoded, error) {
	if len(codewords) == 0 {
		return nil, fmt.Errorf("empty symbol: %w", zxscan.ErrFormat)
	}
	ecCount := ecCodewordCount(ecLevel)
	if len(erasures) > ecCount/2+maxErrors || ecCount > maxECCodewords {
		return nil, fmt.Errorf("%d erasures for %d check codewords: %w", len(erasures), ecCount, zxscan.ErrChecksum)
	}
	corrected, err := correctErrors(codewords, ecCount)
	if err != nil {
		return nil, err
	}
	if err := verifyCodewordCount(codewords, ecCount); err != nil {
		return nil, err
	}
	result, err := decoder.decode(codewords)
	if err != nil {
		return nil, err
	}
	result.ecLevel = ecLevel
	result.errorsCorrected = corrected
	result.erasures = len(erasures)
	return result, nil
}

func verifyCodewordCount(codewords []int, ecCount int) error {
	if len(codewords) < 4 {
		return fmt.Errorf("symbol of %d codewords: %w", len(codewords), zxscan.ErrFormat)
	}
	n := codewords[0]
	if n > len(codewords) {
		return fmt.Errorf("length descriptor %d exceeds %d codewords: %w", n, len(codewords), zxscan.ErrFormat)
	}
	if n == 0 {
		if ecCount >= len(codewords) {
			return fmt.Errorf("no data codewords: %w", zxscan.ErrFormat)
		}
		codewords[0] = len(codewords) - ecCount
	}
	return nil
}
