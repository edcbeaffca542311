package pdf417

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/ericlevine/zxscan"
)

// Mode latches, shifts and control codewords.
const (
	latchText         = 900
	latchByte         = 901
	latchNumeric      = 902
	macroOptional     = 923
	macroTerminator   = 922
	shiftByte         = 913
	latchByteSix      = 924
	eciUserDefined    = 925
	eciGeneralPurpose = 926
	eciCharset        = 927
	macroControl      = 928
)

// Text compaction sub-mode codes.
const (
	codePunctLatch = 25
	codeSpace      = 26
	codeLowerLatch = 27
	codeAlphaShift = 27
	codeMixedLatch = 28
	codeAlphaLatch = 28
	codePunctShift = 29
	codePunctAlpha = 29
)

const (
	maxNumericCodewords = 15
	sequenceCodewords   = 2
)

// Macro PDF417 optional field designators.
const (
	fieldFileName = iota
	fieldSegmentCount
	fieldTimestamp
	fieldSender
	fieldAddressee
	fieldFileSize
	fieldChecksum
)

type textMode int

const (
	modeAlpha textMode = iota
	modeLower
	modeMixed
	modePunct
	modeAlphaShift
	modePunctShift
)

var (
	punctChars = []byte(";<>@[\\]_`~!\r\t,:\n-.$/\"|*()?{}'")
	mixedChars = []byte("0123456789&\r\t,:#-.$/+%*=^")
)

var exp900 [maxNumericCodewords + 1]*big.Int

func init() {
	exp900[0] = big.NewInt(1)
	for i := 1; i < len(exp900); i++ {
		exp900[i] = new(big.Int).Mul(exp900[i-1], big.NewInt(900))
	}
}

// eciCharsets names the character set of each ECI assignment value.
var eciCharsets = map[int]string{
	0: "IBM437", 1: "ISO-8859-1", 2: "IBM437", 3: "ISO-8859-1",
	4: "ISO-8859-2", 5: "ISO-8859-3", 6: "ISO-8859-4", 7: "ISO-8859-5",
	8: "ISO-8859-6", 9: "ISO-8859-7", 10: "ISO-8859-8", 11: "ISO-8859-9",
	12: "ISO-8859-10", 13: "TIS-620", 15: "ISO-8859-13", 16: "ISO-8859-14",
	17: "ISO-8859-15", 18: "ISO-8859-16", 20: "Shift_JIS", 21: "windows-1250",
	22: "windows-1251", 23: "windows-1252", 24: "windows-1256", 25: "UTF-16BE",
	26: "UTF-8", 27: "US-ASCII", 28: "Big5", 29: "GB18030", 30: "EUC-KR",
	170: "US-ASCII",
}

// eciEncoding resolves an ECI value. ASCII and names without a decoder map
// to ISO-8859-1, which passes ASCII through unchanged.
func eciEncoding(value int) (encoding.Encoding, error) {
	name, ok := eciCharsets[value]
	if !ok {
		return nil, fmt.Errorf("unsupported ECI %d: %w", value, zxscan.ErrFormat)
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return charmap.ISO8859_1, nil
	}
	return enc, nil
}

// macroSegment is the Macro PDF417 control block of a symbol that is one
// segment of a larger message.
type macroSegment struct {
	segmentIndex int
	fileID       string
	optionalData []int
	lastSegment  bool
	segmentCount int
	fileName     string
	sender       string
	addressee    string
	timestamp    int64
	fileSize     int64
	checksum     int
}

// decoded is the content of one symbol.
type decoded struct {
	text            string
	ecLevel         int
	errorsCorrected int
	erasures        int
	macro           *macroSegment
}

// textBuilder accumulates decoded bytes and converts them to text with the
// character set in force when they were read. An ECI switches the set.
type textBuilder struct {
	done    strings.Builder
	pending []byte
	charset encoding.Encoding
}

func (b *textBuilder) WriteByte(c byte) error {
	b.pending = append(b.pending, c)
	return nil
}

func (b *textBuilder) WriteString(s string) {
	b.pending = append(b.pending, s...)
}

func (b *textBuilder) flush() {
	if len(b.pending) == 0 {
		return
	}
	text, err := b.charset.NewDecoder().Bytes(b.pending)
	if err != nil {
		text, _ = charmap.ISO8859_1.NewDecoder().Bytes(b.pending)
	}
	b.done.Write(text)
	b.pending = b.pending[:0]
}

func (b *textBuilder) switchTo(eci int) error {
	enc, err := eciEncoding(eci)
	if err != nil {
		return err
	}
	b.flush()
	b.charset = enc
	return nil
}

func (b *textBuilder) empty() bool { return len(b.pending) == 0 && b.done.Len() == 0 }

func (b *textBuilder) String() string {
	b.flush()
	return b.done.String()
}

// streamDecoder turns corrected codewords into text. Bytes outside any ECI
// are read in charset.
type streamDecoder struct {
	charset encoding.Encoding
}

func newStreamDecoder(charset string) (*streamDecoder, error) {
	if charset == "" {
		return &streamDecoder{charset: charmap.ISO8859_1}, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("character set %q: %w", charset, zxscan.ErrFormat)
	}
	if enc == nil {
		enc = charmap.ISO8859_1
	}
	return &streamDecoder{charset: enc}, nil
}

func (s *streamDecoder) builder() *textBuilder {
	return &textBuilder{charset: s.charset}
}

// decode parses the data codewords. codewords[0] is the symbol length
// descriptor: the number of data codewords including itself.
func (s *streamDecoder) decode(codewords []int) (*decoded, error) {
	out := s.builder()
	var macro *macroSegment
	i, err := s.text(codewords, 1, out)
	if err != nil {
		return nil, err
	}
	for i < codewords[0] {
		code := codewords[i]
		i++
		switch code {
		case latchText:
			i, err = s.text(codewords, i, out)
		case latchByte, latchByteSix:
			i, err = byteCompaction(code, codewords, i, out)
		case shiftByte:
			if i >= codewords[0] {
				return nil, fmt.Errorf("byte shift at end of data: %w", zxscan.ErrFormat)
			}
			out.WriteByte(byte(codewords[i]))
			i++
		case latchNumeric:
			i, err = numericCompaction(codewords, i, out)
		case eciCharset:
			if i >= codewords[0] {
				return nil, fmt.Errorf("ECI at end of data: %w", zxscan.ErrFormat)
			}
			err = out.switchTo(codewords[i])
			i++
		case eciGeneralPurpose:
			i += 2
		case eciUserDefined:
			i++
		case macroControl:
			macro = &macroSegment{}
			i, err = s.macroBlock(codewords, i, macro)
		case macroOptional, macroTerminator:
			return nil, fmt.Errorf("macro field %d outside a control block: %w", code, zxscan.ErrFormat)
		default:
			// Symbols that omit the initial text latch.
			i, err = s.text(codewords, i-1, out)
		}
		if err != nil {
			return nil, err
		}
	}
	if out.empty() && macro == nil {
		return nil, fmt.Errorf("symbol carries no data: %w", zxscan.ErrFormat)
	}
	return &decoded{text: out.String(), macro: macro}, nil
}

func (s *streamDecoder) macroBlock(codewords []int, i int, macro *macroSegment) (int, error) {
	if i+sequenceCodewords > codewords[0] {
		return 0, fmt.Errorf("truncated macro control block: %w", zxscan.ErrFormat)
	}
	index, err := base900(codewords[i : i+sequenceCodewords])
	if err != nil {
		return 0, err
	}
	i += sequenceCodewords
	if macro.segmentIndex, err = atoi(index); err != nil {
		return 0, err
	}

	var fileID strings.Builder
	for i < codewords[0] && codewords[i] != macroTerminator && codewords[i] != macroOptional {
		fmt.Fprintf(&fileID, "%03d", codewords[i])
		i++
	}
	if fileID.Len() == 0 {
		return 0, fmt.Errorf("macro block without file id: %w", zxscan.ErrFormat)
	}
	macro.fileID = fileID.String()

	optionalStart := -1
	if i < codewords[0] && codewords[i] == macroOptional {
		optionalStart = i + 1
	}
	for i < codewords[0] {
		switch codewords[i] {
		case macroOptional:
			i++
			if i >= codewords[0] {
				return 0, fmt.Errorf("truncated macro field: %w", zxscan.ErrFormat)
			}
			field := codewords[i]
			value := s.builder()
			switch field {
			case fieldFileName, fieldSender, fieldAddressee:
				i, err = s.text(codewords, i+1, value)
			case fieldSegmentCount, fieldTimestamp, fieldFileSize, fieldChecksum:
				i, err = numericCompaction(codewords, i+1, value)
			default:
				return 0, fmt.Errorf("unknown macro field %d: %w", field, zxscan.ErrFormat)
			}
			if err != nil {
				return 0, err
			}
			if err := macro.set(field, value.String()); err != nil {
				return 0, err
			}
		case macroTerminator:
			i++
			macro.lastSegment = true
		default:
			return 0, fmt.Errorf("unexpected codeword %d in macro block: %w", codewords[i], zxscan.ErrFormat)
		}
	}

	if optionalStart != -1 {
		n := i - optionalStart
		if macro.lastSegment {
			n--
		}
		if n > 0 {
			macro.optionalData = append([]int(nil), codewords[optionalStart:optionalStart+n]...)
		}
	}
	return i, nil
}

func (m *macroSegment) set(field int, value string) error {
	var err error
	switch field {
	case fieldFileName:
		m.fileName = value
	case fieldSender:
		m.sender = value
	case fieldAddressee:
		m.addressee = value
	case fieldSegmentCount:
		m.segmentCount, err = atoi(value)
	case fieldChecksum:
		m.checksum, err = atoi(value)
	case fieldTimestamp:
		m.timestamp, err = strconv.ParseInt(value, 10, 64)
	case fieldFileSize:
		m.fileSize, err = strconv.ParseInt(value, 10, 64)
	}
	if err != nil {
		return fmt.Errorf("macro field %d %q: %w", field, value, zxscan.ErrFormat)
	}
	return nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", s, zxscan.ErrFormat)
	}
	return n, nil
}

// text decodes a run of text compaction codewords, two characters each.
func (s *streamDecoder) text(codewords []int, i int, out *textBuilder) (int, error) {
	size := max((codewords[0]-i)*2, 0)
	values := make([]int, size)
	shifted := make([]int, size)
	n := 0
	mode := modeAlpha
	for i < codewords[0] {
		code := codewords[i]
		i++
		if code < latchText {
			values[n] = code / 30
			values[n+1] = code % 30
			n += 2
			continue
		}
		switch code {
		case latchText:
			values[n] = latchText
			n++
		case latchByte, latchByteSix, latchNumeric, macroControl, macroOptional, macroTerminator:
			decodeText(values[:n], shifted[:n], out, mode)
			return i - 1, nil
		case shiftByte:
			if i >= codewords[0] {
				return 0, fmt.Errorf("byte shift at end of data: %w", zxscan.ErrFormat)
			}
			values[n] = shiftByte
			shifted[n] = codewords[i]
			i++
			n++
		case eciCharset:
			mode = decodeText(values[:n], shifted[:n], out, mode)
			if i >= codewords[0] {
				return 0, fmt.Errorf("ECI at end of data: %w", zxscan.ErrFormat)
			}
			if err := out.switchTo(codewords[i]); err != nil {
				return 0, err
			}
			i++
			n = 0
		}
	}
	decodeText(values[:n], shifted[:n], out, mode)
	return i, nil
}

// decodeText maps sub-mode character values to bytes and returns the
// latched sub-mode at the end of the run.
func decodeText(values, shifted []int, out *textBuilder, start textMode) textMode {
	mode, beforeShift, latched := start, start, start
	latch := func(m textMode) {
		mode = m
		latched = m
	}
	for i, v := range values {
		var ch byte
		switch mode {
		case modeAlpha, modeLower:
			base := byte('A')
			if mode == modeLower {
				base = 'a'
			}
			switch {
			case v < 26:
				ch = base + byte(v)
			case v == codeSpace:
				ch = ' '
			case v == codeLowerLatch && mode == modeAlpha:
				latch(modeLower)
			case v == codeAlphaShift && mode == modeLower:
				beforeShift = mode
				mode = modeAlphaShift
			case v == codeMixedLatch:
				latch(modeMixed)
			case v == codePunctShift:
				beforeShift = mode
				mode = modePunctShift
			case v == shiftByte:
				out.WriteByte(byte(shifted[i]))
			case v == latchText:
				latch(modeAlpha)
			}
		case modeMixed:
			switch {
			case v < codePunctLatch:
				ch = mixedChars[v]
			case v == codePunctLatch:
				latch(modePunct)
			case v == codeSpace:
				ch = ' '
			case v == codeLowerLatch:
				latch(modeLower)
			case v == codeAlphaLatch || v == latchText:
				latch(modeAlpha)
			case v == codePunctShift:
				beforeShift = mode
				mode = modePunctShift
			case v == shiftByte:
				out.WriteByte(byte(shifted[i]))
			}
		case modePunct:
			switch {
			case v < codePunctAlpha:
				ch = punctChars[v]
			case v == codePunctAlpha || v == latchText:
				latch(modeAlpha)
			case v == shiftByte:
				out.WriteByte(byte(shifted[i]))
			}
		case modeAlphaShift:
			mode = beforeShift
			switch {
			case v < 26:
				ch = 'A' + byte(v)
			case v == codeSpace:
				ch = ' '
			case v == latchText:
				mode = modeAlpha
			}
		case modePunctShift:
			mode = beforeShift
			switch {
			case v < codePunctAlpha:
				ch = punctChars[v]
			case v == codePunctAlpha || v == latchText:
				mode = modeAlpha
			case v == shiftByte:
				out.WriteByte(byte(shifted[i]))
			}
		}
		if ch != 0 {
			out.WriteByte(ch)
		}
	}
	return latched
}

// byteCompaction decodes groups of five codewords into six bytes; a shorter
// tail carries one byte per codeword.
func byteCompaction(mode int, codewords []int, i int, out *textBuilder) (int, error) {
	end := false
	for i < codewords[0] && !end {
		for i < codewords[0] && codewords[i] == eciCharset {
			if i+1 >= codewords[0] {
				return 0, fmt.Errorf("ECI at end of data: %w", zxscan.ErrFormat)
			}
			if err := out.switchTo(codewords[i+1]); err != nil {
				return 0, err
			}
			i += 2
		}
		if i >= codewords[0] || codewords[i] >= latchText {
			break
		}
		var value int64
		count := 0
		for {
			value = 900*value + int64(codewords[i])
			i++
			count++
			if count >= 5 || i >= codewords[0] || codewords[i] >= latchText {
				break
			}
		}
		if count == 5 && (mode == latchByteSix || i < codewords[0] && codewords[i] < latchText) {
			for k := 0; k < 6; k++ {
				out.WriteByte(byte(value >> (8 * (5 - k))))
			}
			continue
		}
		i -= count
		for i < codewords[0] && !end {
			code := codewords[i]
			i++
			switch {
			case code < latchText:
				out.WriteByte(byte(code))
			case code == eciCharset && i < codewords[0]:
				if err := out.switchTo(codewords[i]); err != nil {
					return 0, err
				}
				i++
			default:
				i--
				end = true
			}
		}
	}
	return i, nil
}

// numericCompaction decodes base 900 groups of up to fifteen codewords, each
// standing for a decimal number with a leading 1.
func numericCompaction(codewords []int, i int, out *textBuilder) (int, error) {
	group := make([]int, 0, maxNumericCodewords)
	end := false
	for i < codewords[0] && !end {
		code := codewords[i]
		i++
		if i == codewords[0] {
			end = true
		}
		if code < latchText {
			group = append(group, code)
		} else {
			switch code {
			case latchText, latchByte, latchByteSix, macroControl, macroOptional, macroTerminator, eciCharset:
				i--
				end = true
			}
		}
		if (len(group) == maxNumericCodewords || code == latchNumeric || end) && len(group) > 0 {
			digits, err := base900(group)
			if err != nil {
				return 0, err
			}
			out.WriteString(digits)
			group = group[:0]
		}
	}
	return i, nil
}

func base900(codewords []int) (string, error) {
	n := new(big.Int)
	for k, c := range codewords {
		term := new(big.Int).Mul(exp900[len(codewords)-k-1], big.NewInt(int64(c)))
		n.Add(n, term)
	}
	s := n.String()
	if s == "" || s[0] != '1' {
		return "", fmt.Errorf("numeric group without leading 1: %w", zxscan.ErrFormat)
	}
	return s[1:], nil
}
