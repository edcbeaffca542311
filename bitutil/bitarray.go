// Package bitutil provides the compact bit containers produced by binarizers.
package bitutil

import "math/bits"

const wordBits = 32

// BitArray holds one binarized image row, one bit per pixel, set for black.
type BitArray struct {
	words []uint32
	n     int
}

// NewBitArray returns an all-clear array of n bits.
func NewBitArray(n int) *BitArray {
	if n < 0 {
		n = 0
	}
	return &BitArray{words: make([]uint32, wordsFor(n)), n: n}
}

func wordsFor(n int) int {
	return (n + wordBits - 1) / wordBits
}

func mask(i int) uint32 {
	return 1 << uint(i%wordBits)
}

// Size returns the number of bits.
func (a *BitArray) Size() int {
	return a.n
}

func (a *BitArray) Get(i int) bool {
	return a.words[i/wordBits]&mask(i) != 0
}

func (a *BitArray) Set(i int) {
	a.words[i/wordBits] |= mask(i)
}

// NextSet returns the first set index >= from, or Size when there is none.
func (a *BitArray) NextSet(from int) int {
	if from < 0 {
		from = 0
	}
	for w := from / wordBits; w < len(a.words); w++ {
		word := a.words[w]
		if w == from/wordBits {
			word &^= mask(from) - 1
		}
		if word != 0 {
			return min(w*wordBits+bits.TrailingZeros32(word), a.n)
		}
	}
	return a.n
}

// Clear unsets every bit.
func (a *BitArray) Clear() {
	clear(a.words)
}

// Cardinality counts the set bits.
func (a *BitArray) Cardinality() int {
	n := 0
	for _, w := range a.words {
		n += bits.OnesCount32(w)
	}
	return n
}
