// Package generate renders barcodes: QR codes with an optional centred logo,
// linear barcodes with an optional caption, and PDF417 symbols.
package generate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/bitutil"
	"github.com/ericlevine/zxscan/pdf417"
	"github.com/ericlevine/zxscan/reader"
)

// EncodeOptions configures barcode encoding behavior.
type EncodeOptions struct {
	// ErrorCorrection is the QR error correction level, L, M, Q or H, or
	// the PDF417 level, 0 through 8.
	ErrorCorrection string

	// CharacterSet specifies the character set to use when encoding.
	CharacterSet string

	// Margin specifies the margin (quiet zone) around the barcode, in
	// modules, or in pixels for PDF417.
	Margin *int
}

// symbolWriter is the subset of gozxing.Writer used here.
type symbolWriter interface {
	Encode(contents string, format gozxing.BarcodeFormat, width, height int, hints map[gozxing.EncodeHintType]interface{}) (*gozxing.BitMatrix, error)
}

type writerFactory func() symbolWriter

var writerFactories = map[zxscan.Format]writerFactory{
	zxscan.FormatQRCode:  func() symbolWriter { return qrcode.NewQRCodeWriter() },
	zxscan.FormatCode128: func() symbolWriter { return oned.NewCode128Writer() },
	zxscan.FormatCode39:  func() symbolWriter { return oned.NewCode39Writer() },
	zxscan.FormatEAN13:   func() symbolWriter { return oned.NewEAN13Writer() },
	zxscan.FormatEAN8:    func() symbolWriter { return oned.NewEAN8Writer() },
	zxscan.FormatUPCA:    func() symbolWriter { return oned.NewUPCAWriter() },
	zxscan.FormatITF:     func() symbolWriter { return oned.NewITFWriter() },
	zxscan.FormatCodabar: func() symbolWriter { return oned.NewCodaBarWriter() },
}

var errorCorrectionLevels = map[string]decoder.ErrorCorrectionLevel{
	"L": decoder.ErrorCorrectionLevel_L,
	"M": decoder.ErrorCorrectionLevel_M,
	"Q": decoder.ErrorCorrectionLevel_Q,
	"H": decoder.ErrorCorrectionLevel_H,
}

// Supported reports whether format can be encoded.
func Supported(format zxscan.Format) bool {
	_, ok := writerFactories[format]
	return ok || format == zxscan.FormatPDF417
}

// Encode encodes contents into a width x height module matrix of the given
// format.
func Encode(contents string, format zxscan.Format, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	if format == zxscan.FormatPDF417 {
		return encodePDF417(contents, width, height, opts)
	}
	factory, ok := writerFactories[format]
	if !ok {
		return nil, fmt.Errorf("no writer for format %s: %w", format, zxscan.ErrWriter)
	}
	bf, _ := reader.BarcodeFormat(format)
	hints, err := encodeHints(format, opts)
	if err != nil {
		return nil, err
	}
	matrix, err := factory().Encode(contents, bf, width, height, hints)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w: %w", format, zxscan.ErrWriter, err)
	}
	out := bitutil.NewBitMatrix(matrix.GetWidth(), matrix.GetHeight())
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				out.Set(x, y)
			}
		}
	}
	return out, nil
}

func encodeHints(format zxscan.Format, opts *EncodeOptions) (map[gozxing.EncodeHintType]interface{}, error) {
	hints := make(map[gozxing.EncodeHintType]interface{})
	if opts == nil {
		return hints, nil
	}
	if opts.Margin != nil {
		hints[gozxing.EncodeHintType_MARGIN] = *opts.Margin
	}
	if opts.CharacterSet != "" {
		name, err := zxscan.CanonicalCharset(opts.CharacterSet)
		if err != nil {
			return nil, err
		}
		hints[gozxing.EncodeHintType_CHARACTER_SET] = name
	}
	if opts.ErrorCorrection != "" && format == zxscan.FormatQRCode {
		level, ok := errorCorrectionLevels[strings.ToUpper(opts.ErrorCorrection)]
		if !ok {
			return nil, fmt.Errorf("error correction level %q: %w", opts.ErrorCorrection, zxscan.ErrWriter)
		}
		hints[gozxing.EncodeHintType_ERROR_CORRECTION] = level
	}
	return hints, nil
}

func encodePDF417(contents string, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	w := pdf417.NewWriter()
	if opts != nil {
		if opts.ErrorCorrection != "" {
			level, err := strconv.Atoi(opts.ErrorCorrection)
			if err != nil {
				return nil, fmt.Errorf("error correction level %q: %w", opts.ErrorCorrection, zxscan.ErrWriter)
			}
			w.ECLevel = level
		}
		if opts.Margin != nil {
			w.Margin = *opts.Margin
		}
		w.CharacterSet = opts.CharacterSet
	}
	return w.Encode(contents, width, height)
}
