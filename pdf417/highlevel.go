package pdf417

import "math/big"

type compaction int

const (
	compactText compaction = iota
	compactByte
	compactNumeric
)

// Runs shorter than these stay in the current compaction mode.
const (
	minNumericRun = 13
	minTextRun    = 5
	numericGroup  = 44
)

var mixedIndex, punctIndex [128]int

func init() {
	for i := range mixedIndex {
		mixedIndex[i] = -1
		punctIndex[i] = -1
	}
	for i, c := range mixedChars {
		mixedIndex[c] = i
	}
	mixedIndex[' '] = codeSpace
	for i, c := range punctChars {
		punctIndex[c] = i
	}
}

// encodeHighLevel turns msg into data codewords, choosing text, byte or
// numeric compaction for each run the way ISO/IEC 15438 annex P describes.
// An eci of -1 leaves the default character set in force.
func encodeHighLevel(msg []byte, eci int) []int {
	var out []int
	if eci >= 0 {
		out = append(out, eciCharset, eci)
	}
	mode := compactText
	sub := modeAlpha
	for p := 0; p < len(msg); {
		n := digitRun(msg, p)
		if n >= minNumericRun {
			out = append(out, latchNumeric)
			mode = compactNumeric
			sub = modeAlpha
			out = encodeNumeric(msg[p:p+n], out)
			p += n
			continue
		}
		t := textRun(msg, p)
		if t >= minTextRun || n == len(msg) {
			if mode != compactText {
				out = append(out, latchText)
				mode = compactText
				sub = modeAlpha
			}
			out, sub = encodeText(msg[p:p+t], sub, out)
			p += t
			continue
		}
		b := max(binaryRun(msg, p), 1)
		if b == 1 && mode == compactText {
			out = append(out, shiftByte, int(msg[p]))
		} else {
			out = encodeBytes(msg[p:p+b], out)
			mode = compactByte
			sub = modeAlpha
		}
		p += b
	}
	return out
}

// encodeText packs text compaction values two to a codeword and returns the
// sub-mode latched at the end.
func encodeText(msg []byte, sub textMode, out []int) ([]int, textMode) {
	var values []int
	for i := 0; i < len(msg); {
		ch := msg[i]
		switch sub {
		case modeAlpha:
			switch {
			case ch == ' ':
				values = append(values, codeSpace)
			case isUpper(ch):
				values = append(values, int(ch-'A'))
			case isLower(ch):
				sub = modeLower
				values = append(values, codeLowerLatch)
				continue
			case isMixed(ch):
				sub = modeMixed
				values = append(values, codeMixedLatch)
				continue
			default:
				values = append(values, codePunctShift, punctIndex[ch])
			}
		case modeLower:
			switch {
			case ch == ' ':
				values = append(values, codeSpace)
			case isLower(ch):
				values = append(values, int(ch-'a'))
			case isUpper(ch):
				values = append(values, codeAlphaShift, int(ch-'A'))
			case isMixed(ch):
				sub = modeMixed
				values = append(values, codeMixedLatch)
				continue
			default:
				values = append(values, codePunctShift, punctIndex[ch])
			}
		case modeMixed:
			switch {
			case isMixed(ch):
				values = append(values, mixedIndex[ch])
			case isUpper(ch):
				sub = modeAlpha
				values = append(values, codeAlphaLatch)
				continue
			case isLower(ch):
				sub = modeLower
				values = append(values, codeLowerLatch)
				continue
			case i+1 < len(msg) && isPunct(msg[i+1]):
				sub = modePunct
				values = append(values, codePunctLatch)
				continue
			default:
				values = append(values, codePunctShift, punctIndex[ch])
			}
		default:
			if isPunct(ch) {
				values = append(values, punctIndex[ch])
			} else {
				sub = modeAlpha
				values = append(values, codePunctAlpha)
				continue
			}
		}
		i++
	}
	if len(values)%2 != 0 {
		values = append(values, codePunctShift)
	}
	for i := 0; i < len(values); i += 2 {
		out = append(out, values[i]*30+values[i+1])
	}
	return out, sub
}

// encodeBytes packs six bytes into five base 900 codewords and appends any
// shorter tail one byte per codeword.
func encodeBytes(data []byte, out []int) []int {
	if len(data)%6 == 0 {
		out = append(out, latchByteSix)
	} else {
		out = append(out, latchByte)
	}
	i := 0
	for ; len(data)-i >= 6; i += 6 {
		var t int64
		for _, b := range data[i : i+6] {
			t = t<<8 | int64(b)
		}
		var group [5]int
		for k := 4; k >= 0; k-- {
			group[k] = int(t % 900)
			t /= 900
		}
		out = append(out, group[:]...)
	}
	for _, b := range data[i:] {
		out = append(out, int(b))
	}
	return out
}

// encodeNumeric writes digits in groups of 44, each prefixed with 1 and
// converted to base 900.
func encodeNumeric(digits []byte, out []int) []int {
	nine := big.NewInt(900)
	for i := 0; i < len(digits); i += numericGroup {
		end := min(i+numericGroup, len(digits))
		n, _ := new(big.Int).SetString("1"+string(digits[i:end]), 10)
		var group []int
		mod := new(big.Int)
		for n.Sign() > 0 {
			n.DivMod(n, nine, mod)
			group = append(group, int(mod.Int64()))
		}
		for k := len(group) - 1; k >= 0; k-- {
			out = append(out, group[k])
		}
	}
	return out
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }

func isLower(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isMixed(ch byte) bool { return ch < 128 && mixedIndex[ch] != -1 }

func isPunct(ch byte) bool { return ch < 128 && punctIndex[ch] != -1 }

func isText(ch byte) bool {
	return ch == '\t' || ch == '\n' || ch == '\r' || (ch >= ' ' && ch <= '~')
}

func digitRun(msg []byte, p int) int {
	n := 0
	for p+n < len(msg) && isDigit(msg[p+n]) {
		n++
	}
	return n
}

// textRun counts the text compaction characters from p, stopping before a
// digit run long enough for numeric compaction.
func textRun(msg []byte, p int) int {
	i := p
	for i < len(msg) {
		if n := digitRun(msg, i); n > 0 {
			if n >= minNumericRun {
				break
			}
			i += n
			continue
		}
		if !isText(msg[i]) {
			break
		}
		i++
	}
	return i - p
}

// binaryRun counts the bytes from p up to the next digit run long enough
// for numeric compaction.
func binaryRun(msg []byte, p int) int {
	i := p
	for i < len(msg) && digitRun(msg, i) < minNumericRun {
		i++
	}
	return i - p
}
