package binarizer

import (
	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
)

const (
	blockShift   = 3
	blockSide    = 1 << blockShift
	minBlockDim  = blockSide * 5
	flatContrast = 24
)

// Hybrid thresholds each 8x8 block against the average black point of the
// surrounding 5x5 blocks, which tolerates shadows and gradients. Images
// smaller than 40 pixels in either dimension fall back to the global
// histogram, as do single rows.
type Hybrid struct {
	GlobalHistogram
	matrix *bitutil.BitMatrix
}

// NewHybrid creates a new Hybrid binarizer.
func NewHybrid(source zxscan.LuminanceSource) *Hybrid {
	return &Hybrid{GlobalHistogram: GlobalHistogram{source: source}}
}

// BlackMatrix returns the locally thresholded matrix. The result is computed
// once and reused.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.matrix != nil {
		return h.matrix, nil
	}
	if err := checkDimensions(h.source); err != nil {
		return nil, err
	}
	width, height := h.source.Width(), h.source.Height()
	if width < minBlockDim || height < minBlockDim {
		m, err := h.GlobalHistogram.BlackMatrix()
		if err != nil {
			return nil, err
		}
		h.matrix = m
		return m, nil
	}

	g := newBlockGrid(h.source.Matrix(), width, height)
	g.estimate()
	h.matrix = g.threshold()
	return h.matrix, nil
}

// blockGrid holds the per-block black points of a luminance plane. The last
// row and column of blocks are shifted inward to stay inside the image, so
// they may overlap their neighbours.
type blockGrid struct {
	lum           []byte
	width, height int
	cols, rows    int
	points        []int
}

func newBlockGrid(lum []byte, width, height int) *blockGrid {
	cols := (width + blockSide - 1) >> blockShift
	rows := (height + blockSide - 1) >> blockShift
	return &blockGrid{
		lum:    lum,
		width:  width,
		height: height,
		cols:   cols,
		rows:   rows,
		points: make([]int, cols*rows),
	}
}

// origin returns the top-left pixel of block (bx, by).
func (g *blockGrid) origin(bx, by int) (int, int) {
	return min(bx<<blockShift, g.width-blockSide), min(by<<blockShift, g.height-blockSide)
}

func (g *blockGrid) point(bx, by int) int { return g.points[by*g.cols+bx] }

// estimate fills in the black point of every block. A block whose contrast
// is at most flatContrast is taken to be background: its black point is half
// its darkest pixel, unless the already computed neighbours above and to the
// left suggest a higher one.
func (g *blockGrid) estimate() {
	for by := 0; by < g.rows; by++ {
		for bx := 0; bx < g.cols; bx++ {
			sum, lo, hi := g.stats(bx, by)
			bp := sum >> (2 * blockShift)
			if hi-lo <= flatContrast {
				bp = lo / 2
				if bx > 0 && by > 0 {
					around := (g.point(bx, by-1) + 2*g.point(bx-1, by) + g.point(bx-1, by-1)) / 4
					if lo < around {
						bp = around
					}
				}
			}
			g.points[by*g.cols+bx] = bp
		}
	}
}

// stats sums the block's pixels and tracks its range. Once the range exceeds
// flatContrast the remaining rows only contribute to the sum.
func (g *blockGrid) stats(bx, by int) (sum, lo, hi int) {
	x0, y0 := g.origin(bx, by)
	lo = 0xFF
	contrasty := false
	for y := y0; y < y0+blockSide; y++ {
		line := g.lum[y*g.width+x0 : y*g.width+x0+blockSide]
		for _, v := range line {
			p := int(v)
			sum += p
			if contrasty {
				continue
			}
			lo = min(lo, p)
			hi = max(hi, p)
		}
		if !contrasty && hi-lo > flatContrast {
			contrasty = true
		}
	}
	return sum, lo, hi
}

// threshold binarizes every block against the mean black point of the 5x5
// blocks around it, clamped so the window stays inside the grid.
func (g *blockGrid) threshold() *bitutil.BitMatrix {
	matrix := bitutil.NewBitMatrix(g.width, g.height)
	for by := 0; by < g.rows; by++ {
		cy := clampCentre(by, g.rows)
		for bx := 0; bx < g.cols; bx++ {
			cx := clampCentre(bx, g.cols)
			total := 0
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					total += g.point(cx+dx, cy+dy)
				}
			}
			g.fill(matrix, bx, by, total/25)
		}
	}
	return matrix
}

// clampCentre keeps a 5-wide window centred on i inside [0, n).
func clampCentre(i, n int) int {
	return max(2, min(i, n-3))
}

func (g *blockGrid) fill(matrix *bitutil.BitMatrix, bx, by, limit int) {
	x0, y0 := g.origin(bx, by)
	for y := y0; y < y0+blockSide; y++ {
		row := g.lum[y*g.width : (y+1)*g.width]
		for x := x0; x < x0+blockSide; x++ {
			if int(row[x]) <= limit {
				matrix.Set(x, y)
			}
		}
	}
}
