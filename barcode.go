// Package zxscan extracts 1-D barcodes and 2-D matrix codes from captured
// bitmaps. It defines the luminance, binarizer and reader abstractions shared
// by the binarizer, pipeline and codec packages.
package zxscan

import (
	"fmt"
	"strings"
	"time"

	"github.com/ericlevine/zxscan/bitutil"
)

// Format identifies a symbology.
type Format int

const (
	FormatQRCode Format = iota
	FormatPDF417
	FormatCode128
	FormatCode39
	FormatEAN13
	FormatEAN8
	FormatUPCA
	FormatUPCE
	FormatITF
	FormatCodabar
	FormatDataMatrix
	FormatAztec
	FormatUnknown
)

var formatNames = [...]string{
	FormatQRCode:     "QR_CODE",
	FormatPDF417:     "PDF_417",
	FormatCode128:    "CODE_128",
	FormatCode39:     "CODE_39",
	FormatEAN13:      "EAN_13",
	FormatEAN8:       "EAN_8",
	FormatUPCA:       "UPC_A",
	FormatUPCE:       "UPC_E",
	FormatITF:        "ITF",
	FormatCodabar:    "CODABAR",
	FormatDataMatrix: "DATA_MATRIX",
	FormatAztec:      "AZTEC",
	FormatUnknown:    "UNKNOWN",
}

func (f Format) String() string {
	if f < 0 || f > FormatUnknown {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

// ParseFormat parses a format name as produced by Format.String. Matching is
// case-insensitive and ignores '-' versus '_'.
func ParseFormat(name string) (Format, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for f := FormatQRCode; f < FormatUnknown; f++ {
		if f.String() == key {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown barcode format %q: %w", name, ErrFormat)
}

// Format groups, matching the sets a capture client usually enables together.
var (
	OneDFormats = []Format{
		FormatUPCA, FormatUPCE, FormatEAN13, FormatEAN8,
		FormatCode39, FormatCode128, FormatITF, FormatCodabar,
	}
	QRCodeFormats     = []Format{FormatQRCode}
	DataMatrixFormats = []Format{FormatDataMatrix}
	AztecFormats      = []Format{FormatAztec}
	PDF417Formats     = []Format{FormatPDF417}
)

// AllFormats returns every format a reader can be built for.
func AllFormats() []Format {
	var formats []Format
	formats = append(formats, OneDFormats...)
	formats = append(formats, QRCodeFormats...)
	formats = append(formats, DataMatrixFormats...)
	formats = append(formats, AztecFormats...)
	formats = append(formats, PDF417Formats...)
	return formats
}

// ResultPoint is a finder or guard position reported by a reader, in the
// pixel space of the bitmap that was decoded.
type ResultPoint struct {
	X, Y float64
}

// Result is one decoded symbol.
type Result struct {
	Text   string
	Bytes  []byte
	Points []ResultPoint
	Format Format

	// Attempt names the pipeline attempt that produced the result.
	Attempt string

	// Rotated reports whether the source bitmap had to be physically rotated
	// before the result was found.
	Rotated bool

	Timestamp time.Time
}

// NewResult stamps a decoded symbol with the current time.
func NewResult(text string, raw []byte, points []ResultPoint, format Format) *Result {
	return &Result{Text: text, Bytes: raw, Points: points, Format: format, Timestamp: time.Now()}
}

// BinaryBitmap is the 1-bit image handed to a Reader. Its matrix is
// computed on first use and then shared by every later caller.
type BinaryBitmap struct {
	bin    Binarizer
	cached *bitutil.BitMatrix
}

func NewBinaryBitmap(bin Binarizer) *BinaryBitmap {
	return &BinaryBitmap{bin: bin}
}

func (b *BinaryBitmap) Binarizer() Binarizer { return b.bin }

func (b *BinaryBitmap) Width() int { return b.bin.Width() }

func (b *BinaryBitmap) Height() int { return b.bin.Height() }

// BlackRow binarizes a single row, bypassing the cached matrix.
func (b *BinaryBitmap) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return b.bin.BlackRow(y, row)
}

func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.cached == nil {
		m, err := b.bin.BlackMatrix()
		if err != nil {
			return nil, err
		}
		b.cached = m
	}
	return b.cached, nil
}

// Crop returns the rectangle as a bitmap of its own. The crop keeps the
// receiver's thresholds rather than binarizing the region again.
func (b *BinaryBitmap) Crop(left, top, width, height int) (*BinaryBitmap, error) {
	matrix, err := b.BlackMatrix()
	if err != nil {
		return nil, err
	}
	if width < 1 || height < 1 || left < 0 || top < 0 || left+width > matrix.Width() || top+height > matrix.Height() {
		return nil, fmt.Errorf("crop %d,%d %dx%d outside %dx%d: %w",
			left, top, width, height, matrix.Width(), matrix.Height(), ErrUnsupported)
	}
	lum := b.bin.LuminanceSource()
	plane, ok := lum.(*ImageLuminanceSource)
	if !ok {
		plane = newPlane(lum.Matrix(), lum.Width(), lum.Height())
	}
	source, err := plane.Crop(left, top, width, height)
	if err != nil {
		return nil, err
	}
	return NewBinaryBitmap(&croppedBinarizer{
		source: source,
		matrix: matrix.Crop(left, top, width, height),
	}), nil
}

type croppedBinarizer struct {
	source LuminanceSource
	matrix *bitutil.BitMatrix
}

func (c *croppedBinarizer) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	if y < 0 || y >= c.matrix.Height() {
		return nil, fmt.Errorf("row %d outside %d rows: %w", y, c.matrix.Height(), ErrUnsupported)
	}
	return c.matrix.Row(y, row), nil
}

func (c *croppedBinarizer) BlackMatrix() (*bitutil.BitMatrix, error) { return c.matrix, nil }

func (c *croppedBinarizer) LuminanceSource() LuminanceSource { return c.source }

func (c *croppedBinarizer) Width() int { return c.matrix.Width() }

func (c *croppedBinarizer) Height() int { return c.matrix.Height() }
