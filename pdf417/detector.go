package pdf417

import (
	"math"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
)

const (
	maxAvgVariance        = 0.42
	maxIndividualVariance = 0.8
	maxPixelDrift         = 3
	maxPatternDrift       = 5
	skippedRowCountMax    = 25
	rowStep               = 5
	barcodeMinHeight      = 10
)

var (
	startPattern = []int{8, 1, 1, 1, 1, 1, 1, 3}
	stopPattern  = []int{7, 1, 1, 3, 1, 1, 1, 2, 1}

	// Slots of the start and stop pattern corners in a vertex set.
	startIndexes = []int{0, 4, 1, 5}
	stopIndexes  = []int{6, 2, 7, 3}

	detectRotations = []int{0, 180, 270, 90}
)

// vertices are the corners of one symbol: the outer and inner top and bottom
// corners of the start pattern (0, 1, 4, 5) and of the stop pattern
// (2, 3, 6, 7). Corners that were not found are nil.
type vertices [8]*zxscan.ResultPoint

// located holds the symbols found in matrix, the input turned by rotation
// degrees counterclockwise.
type located struct {
	matrix   *bitutil.BitMatrix
	symbols  []vertices
	rotation int
}

// locate looks for start and stop patterns in the matrix and in its turns
// by 180, 270 and 90 degrees, and stops at the first orientation with a
// match.
func locate(matrix *bitutil.BitMatrix, multiple bool) *located {
	for _, rotation := range detectRotations {
		rotated := matrix
		if rotation != 0 {
			rotated = matrix.Rotated(rotation)
		}
		if symbols := locateSymbols(rotated, multiple); len(symbols) > 0 {
			return &located{matrix: rotated, symbols: symbols, rotation: rotation}
		}
	}
	return &located{matrix: matrix}
}

func locateSymbols(matrix *bitutil.BitMatrix, multiple bool) []vertices {
	var symbols []vertices
	row, col := 0, 0
	foundInRow := false
	for row < matrix.Height() {
		v := findVertices(matrix, row, col)
		if v[0] == nil && v[3] == nil {
			if !foundInRow {
				break
			}
			// Continue below the lowest symbol found so far.
			foundInRow = false
			col = 0
			for _, s := range symbols {
				if s[1] != nil {
					row = max(row, int(s[1].Y))
				}
				if s[3] != nil {
					row = max(row, int(s[3].Y))
				}
			}
			row += rowStep
			continue
		}
		foundInRow = true
		symbols = append(symbols, v)
		if !multiple {
			break
		}
		next := v[2]
		if next == nil {
			next = v[4]
		}
		col, row = int(next.X), int(next.Y)
	}
	return symbols
}

func findVertices(matrix *bitutil.BitMatrix, startRow, startCol int) vertices {
	var v vertices
	for i, p := range findRowsWithPattern(matrix, startRow, startCol, startPattern) {
		v[startIndexes[i]] = p
	}
	if v[4] != nil {
		startCol, startRow = int(v[4].X), int(v[4].Y)
	}
	for i, p := range findRowsWithPattern(matrix, startRow, startCol, stopPattern) {
		v[stopIndexes[i]] = p
	}
	return v
}

// findRowsWithPattern scans down from startRow for the guard pattern, then
// follows it to its first and last row. It returns the left and right ends
// on the top row followed by those on the bottom row.
func findRowsWithPattern(matrix *bitutil.BitMatrix, startRow, startCol int, pattern []int) [4]*zxscan.ResultPoint {
	var result [4]*zxscan.ResultPoint
	width, height := matrix.Width(), matrix.Height()
	counters := make([]int, len(pattern))
	found := false
	for ; startRow < height; startRow += rowStep {
		loc := findGuardPattern(matrix, startCol, startRow, width, pattern, counters)
		if loc == nil {
			continue
		}
		for startRow > 0 {
			startRow--
			previous := findGuardPattern(matrix, startCol, startRow, width, pattern, counters)
			if previous == nil {
				startRow++
				break
			}
			loc = previous
		}
		result[0] = &zxscan.ResultPoint{X: float64(loc[0]), Y: float64(startRow)}
		result[1] = &zxscan.ResultPoint{X: float64(loc[1]), Y: float64(startRow)}
		found = true
		break
	}

	stopRow := startRow + 1
	if found {
		skipped := 0
		previous := [2]int{int(result[0].X), int(result[1].X)}
		for ; stopRow < height; stopRow++ {
			loc := findGuardPattern(matrix, previous[0], stopRow, width, pattern, counters)
			if loc != nil && abs(previous[0]-loc[0]) < maxPatternDrift && abs(previous[1]-loc[1]) < maxPatternDrift {
				previous = *loc
				skipped = 0
				continue
			}
			if skipped > skippedRowCountMax {
				break
			}
			skipped++
		}
		stopRow -= skipped + 1
		result[2] = &zxscan.ResultPoint{X: float64(previous[0]), Y: float64(stopRow)}
		result[3] = &zxscan.ResultPoint{X: float64(previous[1]), Y: float64(stopRow)}
	}
	if stopRow-startRow < barcodeMinHeight {
		return [4]*zxscan.ResultPoint{}
	}
	return result
}

// findGuardPattern returns the start and end column of the first run of
// elements on row matching pattern, starting at column. A start inside a
// bar is first moved left by up to maxPixelDrift pixels.
func findGuardPattern(matrix *bitutil.BitMatrix, column, row, width int, pattern, counters []int) *[2]int {
	clear(counters)
	start := column
	for drift := 0; start > 0 && matrix.Get(start, row) && drift < maxPixelDrift; drift++ {
		start--
	}
	x := start
	pos := 0
	last := len(pattern) - 1
	for white := false; x < width; x++ {
		if matrix.Get(x, row) != white {
			counters[pos]++
			continue
		}
		if pos == last {
			if patternMatchVariance(counters, pattern) < maxAvgVariance {
				return &[2]int{start, x}
			}
			start += counters[0] + counters[1]
			copy(counters, counters[2:pos+1])
			counters[pos-1] = 0
			counters[pos] = 0
			pos--
		} else {
			pos++
		}
		counters[pos] = 1
		white = !white
	}
	if pos == last && patternMatchVariance(counters, pattern) < maxAvgVariance {
		return &[2]int{start, x - 1}
	}
	return nil
}

// patternMatchVariance is the mean relative deviation of the observed run
// lengths from pattern, or +Inf when a single run deviates too far.
func patternMatchVariance(counters, pattern []int) float64 {
	total, patternLength := 0, 0
	for i, c := range counters {
		total += c
		patternLength += pattern[i]
	}
	if total < patternLength {
		return math.Inf(1)
	}
	unit := float64(total) / float64(patternLength)
	maxVariance := maxIndividualVariance * unit
	variance := 0.0
	for i, c := range counters {
		d := math.Abs(float64(c) - float64(pattern[i])*unit)
		if d > maxVariance {
			return math.Inf(1)
		}
		variance += d
	}
	return variance / float64(total)
}
