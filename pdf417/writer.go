package pdf417

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
)

const (
	defaultMargin  = 30
	defaultECLevel = 2

	minCols = 2
	maxCols = 30
	minRows = minRowsInBarcode
	maxRows = 30

	// Module width against row height, used to pick a near 3:1 symbol.
	moduleWidth    = 0.357
	rowHeight      = 2.0
	preferredRatio = 3.0

	// Each symbol row is this many modules tall.
	aspectRatio = 4

	padCodeword = 900

	startWord = 0x1fea8
	stopWord  = 0x3fa29
)

// Writer renders text as a PDF417 symbol.
type Writer struct {
	// ECLevel selects 2^(ECLevel+1) check codewords, 0 through 8.
	ECLevel int

	// Margin is the quiet zone in pixels on every side.
	Margin int

	// CharacterSet is the encoding of the data. Empty writes ASCII as is
	// and anything else as UTF-8 behind an ECI.
	CharacterSet string
}

// NewWriter returns a writer at error correction level 2 with a 30 pixel
// quiet zone.
func NewWriter() *Writer {
	return &Writer{ECLevel: defaultECLevel, Margin: defaultMargin}
}

// Encode lays contents out as a symbol scaled by the largest whole factor
// that fits width x height. A symbol larger than the request is returned
// at one pixel per module.
func (w *Writer) Encode(contents string, width, height int) (*bitutil.BitMatrix, error) {
	if contents == "" {
		return nil, fmt.Errorf("empty contents: %w", zxscan.ErrWriter)
	}
	if w.ECLevel < 0 || w.ECLevel > 8 {
		return nil, fmt.Errorf("error correction level %d: %w", w.ECLevel, zxscan.ErrWriter)
	}
	if w.Margin < 0 {
		return nil, fmt.Errorf("negative margin %d: %w", w.Margin, zxscan.ErrWriter)
	}
	data, eci, err := w.payload(contents)
	if err != nil {
		return nil, err
	}
	modules, err := buildSymbol(encodeHighLevel(data, eci), w.ECLevel)
	if err != nil {
		return nil, err
	}
	return render(modules, width, height, w.Margin), nil
}

// payload encodes contents in the writer's character set and picks the ECI
// that announces it, or -1 for the default set.
func (w *Writer) payload(contents string) ([]byte, int, error) {
	if w.CharacterSet == "" {
		for i := 0; i < len(contents); i++ {
			if contents[i] >= 0x80 {
				return []byte(contents), 26, nil
			}
		}
		return []byte(contents), -1, nil
	}
	enc, err := ianaindex.IANA.Encoding(w.CharacterSet)
	if err != nil || enc == nil {
		return nil, 0, fmt.Errorf("character set %q: %w", w.CharacterSet, zxscan.ErrWriter)
	}
	data, err := enc.NewEncoder().Bytes([]byte(contents))
	if err != nil {
		return nil, 0, fmt.Errorf("contents not representable in %s: %w", w.CharacterSet, zxscan.ErrWriter)
	}
	name, _ := ianaindex.IANA.Name(enc)
	if strings.EqualFold(name, "ISO-8859-1") {
		return data, -1, nil
	}
	for value := 0; value < 900; value++ {
		if n, ok := eciCharsets[value]; ok && strings.EqualFold(n, name) {
			return data, value, nil
		}
	}
	return nil, 0, fmt.Errorf("no ECI for character set %s: %w", name, zxscan.ErrWriter)
}

// buildSymbol adds the length descriptor, padding and check codewords to
// the data and returns the symbol's modules row by row.
func buildSymbol(highLevel []int, level int) ([][]bool, error) {
	ecCount := ecCodewordCount(level)
	if len(highLevel)+ecCount+1 > maxCodewordsInBarcode {
		return nil, fmt.Errorf("%d data codewords do not fit a symbol: %w", len(highLevel), zxscan.ErrWriter)
	}
	cols, rows, err := dimensions(len(highLevel), ecCount)
	if err != nil {
		return nil, err
	}
	pad := max(cols*rows-ecCount-len(highLevel)-1, 0)
	data := make([]int, 0, cols*rows)
	data = append(data, len(highLevel)+pad+1)
	data = append(data, highLevel...)
	for iter := 0; iter < pad; iter++ {
		data = append(data, padCodeword)
	}
	codewords := append(data, errorCorrectionCodewords(data, level)...)
	return layout(codewords, cols, rows, level), nil
}

// dimensions picks the column and row count whose printed aspect ratio is
// closest to 3:1.
func dimensions(sourceCount, ecCount int) (cols, rows int, err error) {
	ratio := 0.0
	for c := minCols; c <= maxCols; c++ {
		r := rowsFor(sourceCount, ecCount, c)
		if r < minRows {
			break
		}
		if r > maxRows {
			continue
		}
		next := float64(17*c+69) * moduleWidth / (float64(r) * rowHeight)
		if cols != 0 && math.Abs(next-preferredRatio) > math.Abs(ratio-preferredRatio) {
			continue
		}
		ratio, cols, rows = next, c, r
	}
	if cols == 0 && rowsFor(sourceCount, ecCount, minCols) < minRows {
		cols, rows = minCols, minRows
	}
	if cols == 0 {
		return 0, 0, fmt.Errorf("%d codewords do not fit %d columns: %w", sourceCount+ecCount+1, maxCols, zxscan.ErrWriter)
	}
	return cols, rows, nil
}

func rowsFor(sourceCount, ecCount, cols int) int {
	total := sourceCount + 1 + ecCount
	r := total/cols + 1
	if cols*r >= total+cols {
		r--
	}
	return r
}

// layout draws every row: start pattern, left row indicator, data columns,
// right row indicator and stop pattern.
func layout(codewords []int, cols, rows, level int) [][]bool {
	width := (cols+4)*modulesInCodeword + 1
	modules := make([][]bool, rows)
	i := 0
	for y := 0; y < rows; y++ {
		row := make([]bool, 0, width)
		cluster := y % 3
		base := 30 * (y / 3)
		var left, right int
		switch cluster {
		case 0:
			left = base + (rows-1)/3
			right = base + cols - 1
		case 1:
			left = base + level*3 + (rows-1)%3
			right = base + (rows-1)/3
		default:
			left = base + cols - 1
			right = base + level*3 + (rows-1)%3
		}
		row = appendBits(row, startWord, modulesInCodeword)
		row = appendBits(row, clusterPatterns[cluster][left], modulesInCodeword)
		for iter := 0; iter < cols; iter++ {
			row = appendBits(row, clusterPatterns[cluster][codewords[i]], modulesInCodeword)
			i++
		}
		row = appendBits(row, clusterPatterns[cluster][right], modulesInCodeword)
		row = appendBits(row, stopWord, modulesInStopPattern)
		modules[y] = row
	}
	return modules
}

func appendBits(row []bool, pattern uint32, n int) []bool {
	for bit := n - 1; bit >= 0; bit-- {
		row = append(row, pattern&(1<<bit) != 0)
	}
	return row
}

func render(modules [][]bool, width, height, margin int) *bitutil.BitMatrix {
	modW := len(modules[0])
	modH := len(modules) * aspectRatio
	scale := max(1, min(width/modW, height/modH))
	out := bitutil.NewBitMatrix(modW*scale+2*margin, modH*scale+2*margin)
	rowPixels := aspectRatio * scale
	for y, row := range modules {
		top := margin + y*rowPixels
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			run := 1
			for x+run < len(row) && row[x+run] {
				run++
			}
			out.SetRegion(margin+x*scale, top, run*scale, rowPixels)
			x += run
		}
	}
	return out
}
