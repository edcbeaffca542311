package pdf417

// adjustRowSkip bounds how many mismatching codewords a row indicator may
// walk past when assigning its row number across a pixel row.
const adjustRowSkip = 2

// detection holds every column of a symbol being decoded: the left row
// indicator at 0, the data columns, and the right row indicator last.
type detection struct {
	md      *metadata
	columns []*column
	box     *boundingBox
}

func newDetection(md *metadata, box *boundingBox) *detection {
	return &detection{md: md, box: box, columns: make([]*column, md.columns+2)}
}

func (d *detection) last() int { return d.md.columns + 1 }

// settle assigns row numbers to data codewords from the row indicators and
// their neighbours until no further codeword can be placed.
func (d *detection) settle() []*column {
	d.adjustIndicator(d.columns[0])
	d.adjustIndicator(d.columns[d.last()])
	unadjusted := maxCodewordsInBarcode
	for {
		previous := unadjusted
		unadjusted = d.adjustRowsAndCount()
		if unadjusted <= 0 || unadjusted >= previous {
			break
		}
	}
	return d.columns
}

func (d *detection) adjustIndicator(c *column) {
	if c != nil {
		c.adjustCompleteRows(d.md)
	}
}

func (d *detection) adjustRowsAndCount() int {
	unadjusted := d.adjustRowsByRow()
	if unadjusted == 0 {
		return 0
	}
	for col := 1; col < d.last(); col++ {
		if d.columns[col] == nil {
			continue
		}
		codewords := d.columns[col].codewords
		for row, cw := range codewords {
			if cw != nil && !cw.hasValidRow() {
				d.adjustFromNeighbours(col, row, codewords)
			}
		}
	}
	return unadjusted
}

func (d *detection) adjustRowsByRow() int {
	d.adjustRowsFromBoth()
	return d.adjustRowsFrom(0) + d.adjustRowsFrom(d.last())
}

// adjustRowsFromBoth copies the row number to every data codeword on pixel
// rows where both indicators agree.
func (d *detection) adjustRowsFromBoth() {
	left, right := d.columns[0], d.columns[d.last()]
	if left == nil || right == nil {
		return
	}
	for i, l := range left.codewords {
		r := right.codewords[i]
		if l == nil || r == nil || l.row != r.row {
			continue
		}
		for col := 1; col <= d.md.columns; col++ {
			c := d.columns[col]
			if c == nil || c.codewords[i] == nil {
				continue
			}
			c.codewords[i].row = l.row
			if !c.codewords[i].hasValidRow() {
				c.codewords[i] = nil
			}
		}
	}
}

// adjustRowsFrom walks inward from the indicator column at index from,
// labelling data codewords on the same pixel row with its row number.
func (d *detection) adjustRowsFrom(from int) int {
	indicator := d.columns[from]
	if indicator == nil {
		return 0
	}
	order := make([]int, 0, d.md.columns+1)
	if from == 0 {
		for col := 1; col <= d.md.columns; col++ {
			order = append(order, col)
		}
	} else {
		for col := d.last(); col > 0; col-- {
			order = append(order, col)
		}
	}
	unadjusted := 0
	for i, ind := range indicator.codewords {
		if ind == nil {
			continue
		}
		invalid := 0
		for _, col := range order {
			if invalid >= adjustRowSkip {
				break
			}
			c := d.columns[col]
			if c == nil || c.codewords[i] == nil {
				continue
			}
			cw := c.codewords[i]
			invalid = adjustIfValid(ind.row, invalid, cw)
			if !cw.hasValidRow() {
				unadjusted++
			}
		}
	}
	return unadjusted
}

func adjustIfValid(row, invalid int, cw *codeword) int {
	if cw.hasValidRow() {
		return invalid
	}
	if cw.isValidRow(row) {
		cw.row = row
		return 0
	}
	return invalid + 1
}

// adjustFromNeighbours takes the row number of the first neighbouring
// codeword, above, below or in an adjacent column, whose number fits.
func (d *detection) adjustFromNeighbours(col, row int, codewords []*codeword) {
	cw := codewords[row]
	previous := d.columns[col-1]
	next := previous
	if d.columns[col+1] != nil {
		next = d.columns[col+1]
	}
	if previous == nil {
		previous = next
	}
	if previous == nil {
		return
	}
	at := func(c *column, i int) *codeword { return cwAt(c.codewords, i) }
	others := []*codeword{
		cwAt(codewords, row-1), cwAt(codewords, row+1),
		at(previous, row), at(next, row),
		at(previous, row-1), at(next, row-1), at(previous, row+1), at(next, row+1),
		cwAt(codewords, row-2), cwAt(codewords, row+2),
		at(previous, row-2), at(next, row-2), at(previous, row+2), at(next, row+2),
	}
	for _, other := range others {
		if other != nil && other.hasValidRow() && other.bucket == cw.bucket {
			cw.row = other.row
			return
		}
	}
}

func cwAt(codewords []*codeword, i int) *codeword {
	if i < 0 || i >= len(codewords) {
		return nil
	}
	return codewords[i]
}
