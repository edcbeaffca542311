package pdf417

import "slices"

const (
	unknownRow        = -1
	maxNearbyDistance = 5
)

// codeword is one symbol read from one pixel row of the image.
type codeword struct {
	startX, endX int
	bucket       int
	value        int
	row          int
}

func newCodeword(startX, endX, bucket, value int) *codeword {
	return &codeword{startX: startX, endX: endX, bucket: bucket, value: value, row: unknownRow}
}

func (c *codeword) width() int { return c.endX - c.startX }

func (c *codeword) hasValidRow() bool { return c.isValidRow(c.row) }

// isValidRow reports whether a symbol of this cluster can sit on row.
func (c *codeword) isValidRow(row int) bool {
	return row != unknownRow && c.bucket == (row%3)*3
}

// setRowFromIndicator derives the row from a row indicator value.
func (c *codeword) setRowFromIndicator() {
	c.row = (c.value/30)*3 + c.bucket/3
}

// votes counts how often each value was read for one matrix cell.
type votes map[int]int

// best returns the values read most often, in ascending order.
func (v votes) best() []int {
	top := -1
	var result []int
	for value, n := range v {
		switch {
		case n > top:
			top = n
			result = append(result[:0], value)
		case n == top:
			result = append(result, value)
		}
	}
	slices.Sort(result)
	return result
}

// metadata is what the row indicators encode about the symbol.
type metadata struct {
	columns   int
	ecLevel   int
	rowsUpper int
	rowsLower int
}

func (m *metadata) rows() int { return m.rowsUpper + m.rowsLower }

// column collects the codewords read in one symbol column, indexed by pixel
// row. Row indicator columns also carry the symbol metadata.
type column struct {
	box       *boundingBox
	codewords []*codeword
	indicator bool
	left      bool
}

func newColumn(box *boundingBox) *column {
	return &column{box: box, codewords: make([]*codeword, box.maxY-box.minY+1)}
}

func newIndicatorColumn(box *boundingBox, left bool) *column {
	c := newColumn(box)
	c.indicator = true
	c.left = left
	return c
}

func (c *column) index(imageRow int) int { return imageRow - c.box.minY }

func (c *column) set(imageRow int, cw *codeword) { c.codewords[c.index(imageRow)] = cw }

func (c *column) get(imageRow int) *codeword { return c.codewords[c.index(imageRow)] }

// nearby returns the codeword on imageRow or on the closest row within a few
// pixels of it.
func (c *column) nearby(imageRow int) *codeword {
	if cw := c.get(imageRow); cw != nil {
		return cw
	}
	at := c.index(imageRow)
	for i := 1; i < maxNearbyDistance; i++ {
		if j := at - i; j >= 0 && c.codewords[j] != nil {
			return c.codewords[j]
		}
		if j := at + i; j < len(c.codewords) && c.codewords[j] != nil {
			return c.codewords[j]
		}
	}
	return nil
}

// edge returns the top and bottom corner on this indicator's side.
func (c *column) edge() (top, bottom int) {
	if c.left {
		return int(c.box.topLeft.Y), int(c.box.bottomLeft.Y)
	}
	return int(c.box.topRight.Y), int(c.box.bottomRight.Y)
}

// metadata reads the column count, row count and error correction level
// from the row indicators. The majority value of each wins. Codewords that
// disagree with the result are dropped.
func (c *column) metadata() *metadata {
	columns, upper, lower, level := votes{}, votes{}, votes{}, votes{}
	for _, cw := range c.codewords {
		if cw == nil {
			continue
		}
		cw.setRowFromIndicator()
		value := cw.value % 30
		row := cw.row
		if !c.left {
			row += 2
		}
		switch row % 3 {
		case 0:
			upper[value*3+1]++
		case 1:
			level[value/3]++
			lower[value%3]++
		case 2:
			columns[value+1]++
		}
	}
	cols, up, low, ec := columns.best(), upper.best(), lower.best(), level.best()
	if len(cols) == 0 || len(up) == 0 || len(low) == 0 || len(ec) == 0 || cols[0] < 1 ||
		up[0]+low[0] < minRowsInBarcode || up[0]+low[0] > maxRowsInBarcode {
		return nil
	}
	md := &metadata{columns: cols[0], rowsUpper: up[0], rowsLower: low[0], ecLevel: ec[0]}
	c.removeIncorrect(md)
	return md
}

func (c *column) removeIncorrect(md *metadata) {
	for i, cw := range c.codewords {
		if cw == nil {
			continue
		}
		value := cw.value % 30
		row := cw.row
		if row > md.rows() {
			c.codewords[i] = nil
			continue
		}
		if !c.left {
			row += 2
		}
		switch row % 3 {
		case 0:
			if value*3+1 != md.rowsUpper {
				c.codewords[i] = nil
			}
		case 1:
			if value/3 != md.ecLevel || value%3 != md.rowsLower {
				c.codewords[i] = nil
			}
		case 2:
			if value+1 != md.columns {
				c.codewords[i] = nil
			}
		}
	}
}

// rowHeights counts the pixel rows read for each symbol row.
func (c *column) rowHeights() []int {
	md := c.metadata()
	if md == nil {
		return nil
	}
	c.adjustIncompleteRows(md)
	heights := make([]int, md.rows())
	for _, cw := range c.codewords {
		if cw != nil && cw.row < len(heights) {
			heights[cw.row]++
		}
	}
	return heights
}

func (c *column) adjustIncompleteRows(md *metadata) {
	top, bottom := c.edge()
	current := -1
	for i := c.index(top); i < c.index(bottom); i++ {
		cw := c.codewords[i]
		if cw == nil {
			continue
		}
		cw.setRowFromIndicator()
		switch diff := cw.row - current; {
		case diff == 0:
		case diff == 1:
			current = cw.row
		case cw.row >= md.rows():
			c.codewords[i] = nil
		default:
			current = cw.row
		}
	}
}

// adjustCompleteRows drops indicator codewords whose row number does not
// fit the sequence read above them.
func (c *column) adjustCompleteRows(md *metadata) {
	for _, cw := range c.codewords {
		if cw != nil {
			cw.setRowFromIndicator()
		}
	}
	c.removeIncorrect(md)
	top, bottom := c.edge()
	current := -1
	maxHeight, height := 1, 0
	for i := c.index(top); i < c.index(bottom); i++ {
		cw := c.codewords[i]
		if cw == nil {
			continue
		}
		diff := cw.row - current
		switch {
		case diff == 0:
			height++
		case diff == 1:
			maxHeight = max(maxHeight, height)
			height = 1
			current = cw.row
		case diff < 0 || cw.row >= md.rows() || diff > i:
			c.codewords[i] = nil
		default:
			checked := diff
			if maxHeight > 2 {
				checked = (maxHeight - 2) * diff
			}
			closeFound := checked >= i
			for j := 1; j <= checked && !closeFound; j++ {
				closeFound = c.codewords[i-j] != nil
			}
			if closeFound {
				c.codewords[i] = nil
			} else {
				current = cw.row
				height = 1
			}
		}
	}
}
