// Package reader provides the symbol decoder used by the decode pipeline. It
// dispatches a binarized bitmap to the reader of each requested format and
// returns the first symbol found. PDF417 is read natively; the other formats
// go through gozxing.
package reader

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/pdf417"
)

// readerFactory creates the reader for one format. Readers built from the
// same factory call share conv, which converts each bitmap for gozxing once.
type readerFactory func(conv *converter) zxscan.Reader

func gozxingFactory(format zxscan.Format, newReader func() gozxing.Reader) readerFactory {
	return func(conv *converter) zxscan.Reader {
		return &gozxingReader{format: format, reader: newReader(), conv: conv}
	}
}

var readerFactories = map[zxscan.Format]readerFactory{
	zxscan.FormatQRCode:     gozxingFactory(zxscan.FormatQRCode, func() gozxing.Reader { return qrcode.NewQRCodeReader() }),
	zxscan.FormatDataMatrix: gozxingFactory(zxscan.FormatDataMatrix, func() gozxing.Reader { return datamatrix.NewDataMatrixReader() }),
	zxscan.FormatAztec:      gozxingFactory(zxscan.FormatAztec, func() gozxing.Reader { return aztec.NewAztecReader() }),
	zxscan.FormatPDF417:     func(*converter) zxscan.Reader { return pdf417.NewReader() },
	zxscan.FormatUPCA:       gozxingFactory(zxscan.FormatUPCA, func() gozxing.Reader { return oned.NewUPCAReader() }),
	zxscan.FormatUPCE:       gozxingFactory(zxscan.FormatUPCE, func() gozxing.Reader { return oned.NewUPCEReader() }),
	zxscan.FormatEAN13:      gozxingFactory(zxscan.FormatEAN13, func() gozxing.Reader { return oned.NewEAN13Reader() }),
	zxscan.FormatEAN8:       gozxingFactory(zxscan.FormatEAN8, func() gozxing.Reader { return oned.NewEAN8Reader() }),
	zxscan.FormatCode39:     gozxingFactory(zxscan.FormatCode39, func() gozxing.Reader { return oned.NewCode39Reader() }),
	zxscan.FormatCode128:    gozxingFactory(zxscan.FormatCode128, func() gozxing.Reader { return oned.NewCode128Reader() }),
	zxscan.FormatITF:        gozxingFactory(zxscan.FormatITF, func() gozxing.Reader { return oned.NewITFReader() }),
	zxscan.FormatCodabar:    gozxingFactory(zxscan.FormatCodabar, func() gozxing.Reader { return oned.NewCodaBarReader() }),
}

type formatReader struct {
	format zxscan.Format
	reader zxscan.Reader
}

// MultiFormatReader implements zxscan.Reader over the format readers.
// Readers are built on first use from the hints and kept until Reset, so one
// MultiFormatReader should serve a single decode run.
type MultiFormatReader struct {
	readers []formatReader
}

// New returns a MultiFormatReader.
func New() *MultiFormatReader {
	return &MultiFormatReader{}
}

// Factory returns a zxscan.ReaderFactory producing fresh MultiFormatReaders.
func Factory() zxscan.ReaderFactory {
	return func() zxscan.Reader { return New() }
}

// Decode tries each format reader in turn and returns the first result.
func (r *MultiFormatReader) Decode(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	if image == nil {
		return nil, fmt.Errorf("nil bitmap: %w", zxscan.ErrNotFound)
	}
	if r.readers == nil {
		r.readers = buildReaders(hints)
	}
	if _, err := toGozxingHints(hints); err != nil {
		return nil, err
	}
	for _, fr := range r.readers {
		if result, err := fr.reader.Decode(image, hints); err == nil {
			return result, nil
		}
	}
	return nil, zxscan.ErrNotFound
}

// Reset resets all format readers and drops them.
func (r *MultiFormatReader) Reset() {
	for _, fr := range r.readers {
		fr.reader.Reset()
	}
	r.readers = nil
}

// converter keeps the gozxing view of the last bitmap it was given.
type converter struct {
	image  *zxscan.BinaryBitmap
	bitmap *gozxing.BinaryBitmap
}

func (c *converter) wrap(image *zxscan.BinaryBitmap) (*gozxing.BinaryBitmap, error) {
	if c.image == image && c.bitmap != nil {
		return c.bitmap, nil
	}
	bitmap, err := gozxing.NewBinaryBitmap(newBitmapBinarizer(image))
	if err != nil {
		return nil, fmt.Errorf("wrap bitmap: %w", zxscan.ErrNotFound)
	}
	c.image, c.bitmap = image, bitmap
	return bitmap, nil
}

// gozxingReader adapts one gozxing format reader to zxscan.Reader.
type gozxingReader struct {
	format zxscan.Format
	reader gozxing.Reader
	conv   *converter
}

func (g *gozxingReader) Decode(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	zhints, err := toGozxingHints(hints)
	if err != nil {
		return nil, err
	}
	bitmap, err := g.conv.wrap(image)
	if err != nil {
		return nil, err
	}
	result, err := decodeOne(g.reader, bitmap, zhints)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, zxscan.ErrNotFound)
	}
	return fromGozxingResult(result, g.format), nil
}

func (g *gozxingReader) Reset() { g.reader.Reset() }

// decodeOne runs a single gozxing reader, converting panics raised on
// malformed input into errors.
func decodeOne(reader gozxing.Reader, bitmap *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) (result *gozxing.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", p)
		}
	}()
	return reader.Decode(bitmap, hints)
}

// buildReaders orders readers the way a capture client expects: 1-D formats
// first, except with TryHarder, where the slower matrix formats go first.
func buildReaders(hints *zxscan.DecodeHints) []formatReader {
	formats := zxscan.AllFormats()
	if hints != nil && len(hints.PossibleFormats) > 0 {
		formats = hints.PossibleFormats
	}

	conv := &converter{}
	var oneD, matrix []formatReader
	seen := make(map[zxscan.Format]bool)
	for _, f := range formats {
		factory, ok := readerFactories[f]
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		fr := formatReader{format: f, reader: factory(conv)}
		if isOneD(f) {
			oneD = append(oneD, fr)
		} else {
			matrix = append(matrix, fr)
		}
	}
	if hints != nil && hints.TryHarder {
		return append(matrix, oneD...)
	}
	return append(oneD, matrix...)
}

func isOneD(f zxscan.Format) bool {
	for _, o := range zxscan.OneDFormats {
		if o == f {
			return true
		}
	}
	return false
}
