// Package binarizer turns luminance data into black/white bit matrices.
package binarizer

import (
	"fmt"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
)

const (
	histogramBits  = 5
	histogramShift = 8 - histogramBits
	histogramSize  = 1 << histogramBits
)

// histogram counts luminance values in 32 coarse buckets.
type histogram [histogramSize]int

func (h *histogram) add(values []byte) {
	for _, v := range values {
		h[v>>histogramShift]++
	}
}

// blackPoint finds the valley between the two tallest, well-separated
// peaks. Peaks closer than 1/16 of the range mean there is no usable
// contrast.
func (h *histogram) blackPoint() (int, error) {
	tallest, highest := 0, 0
	for i, n := range h {
		if n > highest {
			tallest, highest = i, n
		}
	}

	// The second peak is weighted by its squared distance from the first so
	// that a neighbour of the tallest bucket does not win.
	second, secondScore := 0, 0
	for i, n := range h {
		d := i - tallest
		if score := n * d * d; score > secondScore {
			second, secondScore = i, score
		}
	}

	low, high := min(tallest, second), max(tallest, second)
	if high-low <= histogramSize/16 {
		return 0, fmt.Errorf("histogram peaks %d and %d too close: %w", low, high, zxscan.ErrNotFound)
	}

	valley, valleyScore := high-1, -1
	for i := high - 1; i > low; i-- {
		fromLow := i - low
		score := fromLow * fromLow * (high - i) * (highest - h[i])
		if score > valleyScore {
			valley, valleyScore = i, score
		}
	}
	return valley << histogramShift, nil
}

// GlobalHistogram picks one black point for the whole image from a coarse
// luminance histogram. It is cheap and copes with near-uniform images on
// which block thresholds are unstable, but not with uneven lighting.
type GlobalHistogram struct {
	source zxscan.LuminanceSource
	row    []byte
}

// NewGlobalHistogram creates a new GlobalHistogram binarizer.
func NewGlobalHistogram(source zxscan.LuminanceSource) *GlobalHistogram {
	return &GlobalHistogram{source: source}
}

func (g *GlobalHistogram) LuminanceSource() zxscan.LuminanceSource {
	return g.source
}

func (g *GlobalHistogram) Width() int { return g.source.Width() }

func (g *GlobalHistogram) Height() int { return g.source.Height() }

// BlackRow binarizes row y against that row's own histogram. A 1-2-1
// sharpening kernel is applied first, so the end pixels are never black.
func (g *GlobalHistogram) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	if err := checkDimensions(g.source); err != nil {
		return nil, err
	}
	width := g.source.Width()
	if row == nil || row.Size() < width {
		row = bitutil.NewBitArray(width)
	} else {
		row.Clear()
	}

	lum := g.sourceRow(y)
	if lum == nil {
		return nil, fmt.Errorf("row %d outside %d rows: %w", y, g.source.Height(), zxscan.ErrNotFound)
	}
	var h histogram
	h.add(lum[:width])
	black, err := h.blackPoint()
	if err != nil {
		return nil, err
	}

	if width < 3 {
		for x, v := range lum[:width] {
			if int(v) < black {
				row.Set(x)
			}
		}
		return row, nil
	}
	for x := 1; x < width-1; x++ {
		sharpened := (4*int(lum[x]) - int(lum[x-1]) - int(lum[x+1])) / 2
		if sharpened < black {
			row.Set(x)
		}
	}
	return row, nil
}

// BlackMatrix binarizes the whole image with one black point, sampled from
// four rows across the central three fifths of the image.
func (g *GlobalHistogram) BlackMatrix() (*bitutil.BitMatrix, error) {
	if err := checkDimensions(g.source); err != nil {
		return nil, err
	}
	width, height := g.source.Width(), g.source.Height()

	var h histogram
	for i := 1; i <= 4; i++ {
		lum := g.sourceRow(height * i / 5)
		h.add(lum[width/5 : width*4/5])
	}
	black, err := h.blackPoint()
	if err != nil {
		return nil, err
	}

	matrix := bitutil.NewBitMatrix(width, height)
	for i, v := range g.source.Matrix() {
		if int(v) < black {
			matrix.Set(i%width, i/width)
		}
	}
	return matrix, nil
}

func (g *GlobalHistogram) sourceRow(y int) []byte {
	g.row = g.source.Row(y, g.row)
	return g.row
}

func checkDimensions(source zxscan.LuminanceSource) error {
	if source.Width() <= 0 || source.Height() <= 0 {
		return fmt.Errorf("binarize %dx%d source: %w", source.Width(), source.Height(), zxscan.ErrDegenerate)
	}
	return nil
}
