package pdf417

import (
	"math"
	"slices"
)

const (
	numberOfCodewords     = 929
	maxCodewordsInBarcode = numberOfCodewords - 1
	minRowsInBarcode      = 3
	maxRowsInBarcode      = 90
	modulesInCodeword     = 17
	modulesInStopPattern  = 18
	barsInModule          = 8
)

var (
	// symbols lists every pattern of every cluster in ascending order.
	symbols []int
	// codewordOf maps a pattern back to its codeword value.
	codewordOf map[int]int
	// symbolRatios holds, per entry of symbols, the width of each element
	// as a fraction of the codeword width.
	symbolRatios [][barsInModule]float64
)

func init() {
	codewordOf = make(map[int]int, 3*numberOfCodewords)
	for _, cluster := range clusterPatterns {
		for value, pattern := range cluster {
			codewordOf[int(pattern)] = value
			symbols = append(symbols, int(pattern))
		}
	}
	slices.Sort(symbols)

	symbolRatios = make([][barsInModule]float64, len(symbols))
	for i, symbol := range symbols {
		bit := symbol & 1
		for j := 0; j < barsInModule; j++ {
			size := 0.0
			for symbol&1 == bit {
				size++
				symbol >>= 1
			}
			bit = symbol & 1
			symbolRatios[i][barsInModule-j-1] = size / modulesInCodeword
		}
	}
}

// codewordValue returns the codeword a 17-module symbol stands for, or -1.
func codewordValue(symbol int) int {
	if v, ok := codewordOf[symbol&0x3ffff]; ok {
		return v
	}
	return -1
}

// bucketOf returns 0, 3 or 6 for symbols of cluster 0, 1 or 2.
func bucketOf(symbol int) int {
	widths := elementWidths(symbol)
	return (widths[0] - widths[2] + widths[4] - widths[6] + 9) % 9
}

func elementWidths(symbol int) [barsInModule]int {
	var widths [barsInModule]int
	previous := 0
	i := len(widths) - 1
	for {
		if symbol&1 != previous {
			previous = symbol & 1
			i--
			if i < 0 {
				break
			}
		}
		widths[i]++
		symbol >>= 1
	}
	return widths
}

// decodeModules maps measured element widths in pixels to a symbol. An exact
// match after resampling to 17 modules wins; otherwise the symbol with the
// closest width ratios is returned.
func decodeModules(counts []int) int {
	if symbol := bitValue(sampleModules(counts)); codewordValue(symbol) != -1 {
		return symbol
	}
	return closestSymbol(counts)
}

func sampleModules(counts []int) []int {
	total := float64(sum(counts))
	result := make([]int, barsInModule)
	index := 0
	previous := 0
	for i := 0; i < modulesInCodeword; i++ {
		sample := total/(2*modulesInCodeword) + float64(i)*total/modulesInCodeword
		if index < barsInModule-1 && float64(previous+counts[index]) <= sample {
			previous += counts[index]
			index++
		}
		result[index]++
	}
	return result
}

func bitValue(modules []int) int {
	value := 0
	for i, n := range modules {
		for iter := 0; iter < n; iter++ {
			value <<= 1
			if i%2 == 0 {
				value |= 1
			}
		}
	}
	return value
}

func closestSymbol(counts []int) int {
	total := sum(counts)
	var ratios [barsInModule]float64
	if total > 1 {
		for i := range ratios {
			ratios[i] = float64(counts[i]) / float64(total)
		}
	}
	best := -1
	bestError := math.MaxFloat64
	for j, row := range symbolRatios {
		e := 0.0
		for k := range row {
			d := row[k] - ratios[k]
			e += d * d
			if e >= bestError {
				break
			}
		}
		if e < bestError {
			bestError = e
			best = symbols[j]
		}
	}
	return best
}

func sum(values []int) int {
	n := 0
	for _, v := range values {
		n += v
	}
	return n
}
