package bitutil

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// BitMatrix is a binarized image, one bit per pixel, set for black. (0, 0)
// is the top-left pixel.
type BitMatrix struct {
	width, height int
	stride        int // words per row
	words         []uint32
}

// NewBitMatrix returns an all-clear width x height matrix. It panics unless
// both dimensions are positive.
func NewBitMatrix(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("bitmatrix: invalid size %dx%d", width, height))
	}
	stride := wordsFor(width)
	return &BitMatrix{
		width:  width,
		height: height,
		stride: stride,
		words:  make([]uint32, stride*height),
	}
}

func (m *BitMatrix) index(x, y int) int {
	return y*m.stride + x/wordBits
}

func (m *BitMatrix) Get(x, y int) bool {
	return m.words[m.index(x, y)]&mask(x) != 0
}

func (m *BitMatrix) Set(x, y int) {
	m.words[m.index(x, y)] |= mask(x)
}

// Clear unsets every bit.
func (m *BitMatrix) Clear() {
	clear(m.words)
}

// SetRegion sets every bit of the rectangle, which must lie inside the
// matrix.
func (m *BitMatrix) SetRegion(left, top, width, height int) {
	if left < 0 || top < 0 || width < 1 || height < 1 || left+width > m.width || top+height > m.height {
		panic(fmt.Sprintf("bitmatrix: region %d,%d %dx%d outside %dx%d", left, top, width, height, m.width, m.height))
	}
	for y := top; y < top+height; y++ {
		for x := left; x < left+width; x++ {
			m.Set(x, y)
		}
	}
}

// CountRegion counts the set bits of the rectangle clipped to the matrix.
func (m *BitMatrix) CountRegion(left, top, width, height int) int {
	right := min(left+width, m.width)
	bottom := min(top+height, m.height)
	n := 0
	for y := max(top, 0); y < bottom; y++ {
		for x := max(left, 0); x < right; x++ {
			if m.Get(x, y) {
				n++
			}
		}
	}
	return n
}

// Cardinality counts the set bits.
func (m *BitMatrix) Cardinality() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount32(w)
	}
	return n
}

// Row copies row y into row, allocating a new array when row is nil or
// shorter than the matrix width.
func (m *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < m.width {
		row = NewBitArray(m.width)
	} else {
		row.Clear()
	}
	copy(row.words, m.words[y*m.stride:(y+1)*m.stride])
	return row
}

func (m *BitMatrix) Width() int { return m.width }

func (m *BitMatrix) Height() int { return m.height }

// Clone returns an independent copy.
func (m *BitMatrix) Clone() *BitMatrix {
	c := *m
	c.words = slices.Clone(m.words)
	return &c
}

// Rotated returns a copy turned counterclockwise by degrees, a multiple of
// 90. A quarter turn swaps width and height.
func (m *BitMatrix) Rotated(degrees int) *BitMatrix {
	switch ((degrees%360 + 360) % 360) / 90 {
	case 1:
		r := NewBitMatrix(m.height, m.width)
		for y := 0; y < r.height; y++ {
			for x := 0; x < r.width; x++ {
				if m.Get(m.width-1-y, x) {
					r.Set(x, y)
				}
			}
		}
		return r
	case 2:
		r := NewBitMatrix(m.width, m.height)
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				if m.Get(m.width-1-x, m.height-1-y) {
					r.Set(x, y)
				}
			}
		}
		return r
	case 3:
		r := NewBitMatrix(m.height, m.width)
		for y := 0; y < r.height; y++ {
			for x := 0; x < r.width; x++ {
				if m.Get(y, m.height-1-x) {
					r.Set(x, y)
				}
			}
		}
		return r
	}
	return m.Clone()
}

// Crop returns a copy of the rectangle, which must lie inside the matrix.
func (m *BitMatrix) Crop(left, top, width, height int) *BitMatrix {
	if left < 0 || top < 0 || left+width > m.width || top+height > m.height {
		panic(fmt.Sprintf("bitmatrix: crop %d,%d %dx%d outside %dx%d", left, top, width, height, m.width, m.height))
	}
	c := NewBitMatrix(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if m.Get(left+x, top+y) {
				c.Set(x, y)
			}
		}
	}
	return c
}

// StringWithChars renders the matrix one line per row.
func (m *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
