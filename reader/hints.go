package reader

import (
	"github.com/makiuchi-d/gozxing"

	"github.com/ericlevine/zxscan"
)

var toBarcodeFormat = map[zxscan.Format]gozxing.BarcodeFormat{
	zxscan.FormatQRCode:     gozxing.BarcodeFormat_QR_CODE,
	zxscan.FormatPDF417:     gozxing.BarcodeFormat_PDF_417,
	zxscan.FormatCode128:    gozxing.BarcodeFormat_CODE_128,
	zxscan.FormatCode39:     gozxing.BarcodeFormat_CODE_39,
	zxscan.FormatEAN13:      gozxing.BarcodeFormat_EAN_13,
	zxscan.FormatEAN8:       gozxing.BarcodeFormat_EAN_8,
	zxscan.FormatUPCA:       gozxing.BarcodeFormat_UPC_A,
	zxscan.FormatUPCE:       gozxing.BarcodeFormat_UPC_E,
	zxscan.FormatITF:        gozxing.BarcodeFormat_ITF,
	zxscan.FormatCodabar:    gozxing.BarcodeFormat_CODABAR,
	zxscan.FormatDataMatrix: gozxing.BarcodeFormat_DATA_MATRIX,
	zxscan.FormatAztec:      gozxing.BarcodeFormat_AZTEC,
}

// BarcodeFormat returns the gozxing format for f.
func BarcodeFormat(f zxscan.Format) (gozxing.BarcodeFormat, bool) {
	bf, ok := toBarcodeFormat[f]
	return bf, ok
}

// FormatOf returns the zxscan format for a gozxing format.
func FormatOf(bf gozxing.BarcodeFormat) zxscan.Format {
	for f, candidate := range toBarcodeFormat {
		if candidate == bf {
			return f
		}
	}
	return zxscan.FormatUnknown
}

// toGozxingHints forwards the decode hints to gozxing's hint map. The
// character set is canonicalised; an unknown name is an error.
func toGozxingHints(hints *zxscan.DecodeHints) (map[gozxing.DecodeHintType]interface{}, error) {
	out := make(map[gozxing.DecodeHintType]interface{})
	if hints == nil {
		return out, nil
	}
	if hints.TryHarder {
		out[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if hints.PureBarcode {
		out[gozxing.DecodeHintType_PURE_BARCODE] = true
	}
	if hints.CharacterSet != "" {
		name, err := zxscan.CanonicalCharset(hints.CharacterSet)
		if err != nil {
			return nil, err
		}
		out[gozxing.DecodeHintType_CHARACTER_SET] = name
	}
	if len(hints.PossibleFormats) > 0 {
		formats := make([]gozxing.BarcodeFormat, 0, len(hints.PossibleFormats))
		for _, f := range hints.PossibleFormats {
			if bf, ok := toBarcodeFormat[f]; ok {
				formats = append(formats, bf)
			}
		}
		out[gozxing.DecodeHintType_POSSIBLE_FORMATS] = formats
	}
	return out, nil
}

func fromGozxingResult(r *gozxing.Result, requested zxscan.Format) *zxscan.Result {
	format := FormatOf(r.GetBarcodeFormat())
	if format == zxscan.FormatUnknown {
		format = requested
	}
	var points []zxscan.ResultPoint
	for _, p := range r.GetResultPoints() {
		if p == nil {
			continue
		}
		points = append(points, zxscan.ResultPoint{X: p.GetX(), Y: p.GetY()})
	}
	return zxscan.NewResult(r.GetText(), r.GetRawBytes(), points, format)
}
