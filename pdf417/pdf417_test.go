package pdf417

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/binarizer"
	"github.com/ericlevine/zxscan/bitutil"
)

func bitmapOf(matrix *bitutil.BitMatrix) *zxscan.BinaryBitmap {
	img := zxscan.BitMatrixToImage(matrix)
	return zxscan.NewBinaryBitmap(binarizer.NewHybrid(zxscan.NewGrayImageLuminanceSource(img)))
}

func encode(t *testing.T, contents string, width, height int) *bitutil.BitMatrix {
	t.Helper()
	matrix, err := NewWriter().Encode(contents, width, height)
	if err != nil {
		t.Fatal(err)
	}
	return matrix
}

func TestWriterReaderRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"text", "PDF417 round trip"},
		{"mixed", "Invoice #42: $19.99, due 2024-05-01"},
		{"punctuation", "a;b<c>d@e[f]g_h`i~j!k"},
		{"numeric", "31415926535897932384626433832795"},
		{"utf8", "Grüße aus Köln"},
		{"binary run", "\x01\x02\x03\x04\x05\x06\x07"},
		{"long", strings.Repeat("The quick brown fox jumps over the lazy dog. ", 6)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matrix := encode(t, tc.contents, 600, 300)
			result, err := NewReader().Decode(bitmapOf(matrix), &zxscan.DecodeHints{CharacterSet: "utf-8"})
			if err != nil {
				t.Fatal(err)
			}
			if result.Text != tc.contents {
				t.Errorf("text = %q, want %q", result.Text, tc.contents)
			}
			if result.Format != zxscan.FormatPDF417 {
				t.Errorf("format = %v", result.Format)
			}
			if len(result.Points) != 8 {
				t.Errorf("%d result points, want 8", len(result.Points))
			}
		})
	}
}

func TestWriterSize(t *testing.T) {
	matrix := encode(t, "PDF417 round trip", 400, 200)
	// Three data columns at three pixels per module and seven rows of
	// twelve pixels, inside a 30 pixel quiet zone.
	if matrix.Width() != 420 || matrix.Height() != 144 {
		t.Errorf("size = %dx%d, want 420x144", matrix.Width(), matrix.Height())
	}
	if matrix.Get(29, 30) || !matrix.Get(30, 30) || !matrix.Get(30+3*7, 30+83) {
		t.Error("start pattern not at the quiet zone edge")
	}

	small := encode(t, "PDF417 round trip", 10, 10)
	if small.Width() != 120+60 || small.Height() != 28+60 {
		t.Errorf("unscaled size = %dx%d, want 180x88", small.Width(), small.Height())
	}
}

func TestWriterErrors(t *testing.T) {
	tests := []struct {
		name     string
		writer   *Writer
		contents string
	}{
		{"empty", NewWriter(), ""},
		{"level", &Writer{ECLevel: 9}, "x"},
		{"margin", &Writer{Margin: -1}, "x"},
		{"charset", &Writer{CharacterSet: "klingon-7"}, "x"},
		{"unrepresentable", &Writer{CharacterSet: "ISO-8859-1"}, "日本"},
		{"too long", NewWriter(), strings.Repeat("\xff", 1200)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.writer.Encode(tc.contents, 100, 100); !errors.Is(err, zxscan.ErrWriter) {
				t.Errorf("err = %v, want ErrWriter", err)
			}
		})
	}
}

func TestReaderRotated(t *testing.T) {
	matrix := encode(t, "turned on its side", 500, 250)
	for _, degrees := range []int{90, 180, 270} {
		rotated := matrix.Rotated(degrees)
		result, err := NewReader().Decode(bitmapOf(rotated), nil)
		if err != nil {
			t.Errorf("rotated %d: %v", degrees, err)
			continue
		}
		if result.Text != "turned on its side" {
			t.Errorf("rotated %d: text = %q", degrees, result.Text)
		}
		for _, p := range result.Points {
			if p.X < 0 || p.Y < 0 || p.X >= float64(rotated.Width()) || p.Y >= float64(rotated.Height()) {
				t.Errorf("rotated %d: point %v outside %dx%d", degrees, p, rotated.Width(), rotated.Height())
			}
		}
	}
}

func TestDecodeMultiple(t *testing.T) {
	left := encode(t, "left symbol", 300, 150)
	right := encode(t, "right symbol", 300, 150)
	canvas := bitutil.NewBitMatrix(left.Width()+right.Width(), max(left.Height(), right.Height()))
	for y := 0; y < canvas.Height(); y++ {
		for x := 0; x < canvas.Width(); x++ {
			if x < left.Width() && y < left.Height() && left.Get(x, y) {
				canvas.Set(x, y)
			}
			if rx := x - left.Width(); rx >= 0 && y < right.Height() && right.Get(rx, y) {
				canvas.Set(x, y)
			}
		}
	}
	results, err := NewReader().DecodeMultiple(bitmapOf(canvas), nil)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, r := range results {
		texts = append(texts, r.Text)
	}
	slices.Sort(texts)
	if !slices.Equal(texts, []string{"left symbol", "right symbol"}) {
		t.Errorf("texts = %q", texts)
	}
}

func TestReaderNotFound(t *testing.T) {
	blank := bitutil.NewBitMatrix(100, 100)
	if _, err := NewReader().Decode(bitmapOf(blank), nil); !errors.Is(err, zxscan.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := NewReader().Decode(nil, nil); !errors.Is(err, zxscan.ErrNotFound) {
		t.Errorf("nil bitmap err = %v, want ErrNotFound", err)
	}
	_, err := NewReader().Decode(bitmapOf(blank), &zxscan.DecodeHints{CharacterSet: "klingon-7"})
	if !errors.Is(err, zxscan.ErrFormat) {
		t.Errorf("unknown charset err = %v, want ErrFormat", err)
	}
}

// symbolCodewords returns the data and check codewords of a level 2 symbol
// of the given size.
func symbolCodewords(contents string, total int) []int {
	high := encodeHighLevel([]byte(contents), -1)
	data := append([]int{total - ecCodewordCount(2)}, high...)
	for len(data) < total-ecCodewordCount(2) {
		data = append(data, padCodeword)
	}
	return append(data, errorCorrectionCodewords(data, 2)...)
}

func TestCorrectErrors(t *testing.T) {
	want := symbolCodewords("error correction", 24)
	received := slices.Clone(want)
	received[1] = (received[1] + 17) % numberOfCodewords
	received[9] = 0
	received[22] = (received[22] + 500) % numberOfCodewords
	corrected, err := correctErrors(received, ecCodewordCount(2))
	if err != nil {
		t.Fatal(err)
	}
	if corrected != 3 {
		t.Errorf("corrected %d codewords, want 3", corrected)
	}
	if !slices.Equal(received, want) {
		t.Errorf("received = %v, want %v", received, want)
	}

	clean := slices.Clone(want)
	if n, err := correctErrors(clean, ecCodewordCount(2)); err != nil || n != 0 {
		t.Errorf("clean symbol: corrected %d, err %v", n, err)
	}

	// Eight check codewords cannot locate five errors.
	broken := slices.Clone(want)
	for _, i := range []int{0, 3, 6, 9, 12} {
		broken[i] = (broken[i] + 1) % numberOfCodewords
	}
	if _, err := correctErrors(broken, ecCodewordCount(2)); !errors.Is(err, zxscan.ErrChecksum) {
		t.Errorf("err = %v, want ErrChecksum", err)
	}
}

func TestHighLevelRoundTrip(t *testing.T) {
	tests := []string{
		"HELLO WORLD",
		"hello World",
		"MiXeD cAsE 123 text",
		"tabs\tand\nnewlines\r",
		"1234567890123",
		"abc 12345678901234567890 def",
		"x;y;z",
		"a#b&c=d^e",
		"\x00\x7f\x80\xff",
		"bytes \xfe\xfd\xfc\xfb\xfa\xf9 then text",
		strings.Repeat("9", 100),
	}
	decoder, err := newStreamDecoder("ISO-8859-1")
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range tests {
		high := encodeHighLevel([]byte(msg), -1)
		codewords := append([]int{len(high) + 1}, high...)
		d, err := decoder.decode(codewords)
		if err != nil {
			t.Errorf("%q: %v", msg, err)
			continue
		}
		if want := latin1(msg); d.text != want {
			t.Errorf("decoded %q, want %q", d.text, want)
		}
	}
}

// latin1 reads every byte of s as one ISO-8859-1 character.
func latin1(s string) string {
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return string(runes)
}

func TestNumericCompaction(t *testing.T) {
	high := encodeHighLevel([]byte("000012345678901234"), -1)
	if high[0] != latchNumeric {
		t.Fatalf("first codeword = %d, want numeric latch", high[0])
	}
	// 18 digits behind a leading 1 fit in seven base 900 codewords.
	if len(high) != 8 {
		t.Errorf("%d codewords, want 8", len(high))
	}
}

func TestDecodeECI(t *testing.T) {
	decoder, err := newStreamDecoder("")
	if err != nil {
		t.Fatal(err)
	}
	// Text "B", then UTF-8 bytes for "é" behind ECI 26.
	d, err := decoder.decode([]int{7, 1*30 + 29, eciCharset, 26, latchByte, 0xc3, 0xa9})
	if err != nil {
		t.Fatal(err)
	}
	if d.text != "Bé" {
		t.Errorf("text = %q, want %q", d.text, "Bé")
	}
	if _, err := decoder.decode([]int{4, eciCharset, 899, 1}); !errors.Is(err, zxscan.ErrFormat) {
		t.Errorf("unknown ECI err = %v, want ErrFormat", err)
	}
}

func TestDecodeMacroBlock(t *testing.T) {
	decoder, err := newStreamDecoder("")
	if err != nil {
		t.Fatal(err)
	}
	codewords := []int{
		11,
		7*30 + 8,               // "HI"
		macroControl, 111, 105, // segment index 5
		17, 53, // file id
		macroOptional, fieldFileName, 0*30 + 1, // "AB"
		macroTerminator,
	}
	d, err := decoder.decode(codewords)
	if err != nil {
		t.Fatal(err)
	}
	if d.text != "HI" {
		t.Errorf("text = %q", d.text)
	}
	m := d.macro
	if m == nil {
		t.Fatal("no macro segment")
	}
	if m.segmentIndex != 5 || m.fileID != "017053" || m.fileName != "AB" || !m.lastSegment {
		t.Errorf("macro = %+v", *m)
	}
	if !slices.Equal(m.optionalData, []int{fieldFileName, 1}) {
		t.Errorf("optional data = %v", m.optionalData)
	}

	if _, err := decoder.decode([]int{3, macroControl, 111}); !errors.Is(err, zxscan.ErrFormat) {
		t.Errorf("truncated block err = %v, want ErrFormat", err)
	}
}

func TestDimensions(t *testing.T) {
	cols, rows, err := dimensions(17, 8)
	if err != nil {
		t.Fatal(err)
	}
	if cols != 4 || rows != 7 {
		t.Errorf("dimensions = %d x %d, want 4 x 7", cols, rows)
	}
	if cols*rows < 17+8+1 {
		t.Errorf("%d cells cannot hold 26 codewords", cols*rows)
	}
	if _, _, err := dimensions(900, 16); !errors.Is(err, zxscan.ErrWriter) {
		t.Errorf("err = %v, want ErrWriter", err)
	}
}

func TestLayoutRowIndicators(t *testing.T) {
	const cols, rows, level = 2, 6, 1
	codewords := make([]int, cols*rows)
	modules := layout(codewords, cols, rows, level)
	if len(modules) != rows || len(modules[0]) != (cols+4)*modulesInCodeword+1 {
		t.Fatalf("layout is %d x %d", len(modules), len(modules[0]))
	}
	read := func(row []bool, from int) int {
		v := 0
		for _, b := range row[from : from+modulesInCodeword] {
			v <<= 1
			if b {
				v |= 1
			}
		}
		return v
	}
	for y, row := range modules {
		if read(row, 0) != startWord {
			t.Errorf("row %d does not open with the start pattern", y)
		}
		left := &codeword{value: codewordValue(read(row, modulesInCodeword)), bucket: bucketOf(read(row, modulesInCodeword))}
		left.setRowFromIndicator()
		if left.row != y {
			t.Errorf("left indicator of row %d reads row %d", y, left.row)
		}
	}
}
