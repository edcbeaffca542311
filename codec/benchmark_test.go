package codec_test

import (
	"image"
	"testing"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/codec"
	"github.com/ericlevine/zxscan/generate"
)

var benchmarkSymbols = []struct {
	name    string
	content string
	format  zxscan.Format
	width   int
	height  int
}{
	{"QRCode", "Hello, World! This is a QR code benchmark test.", zxscan.FormatQRCode, 400, 400},
	{"Code128", "Hello123", zxscan.FormatCode128, 300, 100},
	{"EAN13", "5901234123457", zxscan.FormatEAN13, 300, 100},
}

func benchmarkImage(b *testing.B, content string, format zxscan.Format, width, height int) image.Image {
	b.Helper()
	var img image.Image
	var err error
	if format == zxscan.FormatQRCode {
		img, err = generate.QRCode(content, width, nil)
	} else {
		img, err = generate.Barcode(content, width, height, &generate.BarcodeOptions{Format: format})
	}
	if err != nil {
		b.Fatal(err)
	}
	return img
}

func BenchmarkParseImage(b *testing.B) {
	for _, tc := range benchmarkSymbols {
		b.Run(tc.name, func(b *testing.B) {
			img := benchmarkImage(b, tc.content, tc.format, tc.width, tc.height)
			hints := &zxscan.DecodeHints{PossibleFormats: []zxscan.Format{tc.format}}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.ParseImageResult(img, hints); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkParseInverted measures a decode that only succeeds on the second
// attempt.
func BenchmarkParseInverted(b *testing.B) {
	img := benchmarkImage(b, "inverted", zxscan.FormatQRCode, 300, 300)
	src := zxscan.NewImageLuminanceSource(img).Invert().(*zxscan.ImageLuminanceSource).Image()
	hints := &zxscan.DecodeHints{PossibleFormats: zxscan.QRCodeFormats}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.ParseImageResult(src, hints); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	for _, tc := range benchmarkSymbols {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := generate.Encode(tc.content, tc.format, tc.width, tc.height, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
