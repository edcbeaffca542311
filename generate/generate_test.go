package generate_test

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/codec"
	"github.com/ericlevine/zxscan/generate"
)

func TestEncodeQRCode(t *testing.T) {
	margin := 0
	matrix, err := generate.Encode("hello", zxscan.FormatQRCode, 0, 0, &generate.EncodeOptions{Margin: &margin})
	if err != nil {
		t.Fatal(err)
	}
	// Version 1 with no quiet zone is 21 modules square.
	if matrix.Width() != 21 || matrix.Height() != 21 {
		t.Errorf("size = %dx%d, want 21x21", matrix.Width(), matrix.Height())
	}
	// Top-left finder pattern corner is dark.
	if !matrix.Get(0, 0) || !matrix.Get(6, 6) || matrix.Get(1, 1) {
		t.Error("finder pattern not where expected")
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := generate.Encode("x", zxscan.FormatAztec, 10, 10, nil); !errors.Is(err, zxscan.ErrWriter) {
		t.Errorf("aztec err = %v, want ErrWriter", err)
	}
	_, err := generate.Encode("x", zxscan.FormatQRCode, 10, 10, &generate.EncodeOptions{ErrorCorrection: "Z"})
	if !errors.Is(err, zxscan.ErrWriter) {
		t.Errorf("bad level err = %v, want ErrWriter", err)
	}
	if generate.Supported(zxscan.FormatDataMatrix) {
		t.Error("Data Matrix reported as supported")
	}
}

func TestQRCodeRoundTrip(t *testing.T) {
	img, err := generate.QRCode("https://example.com/päth", 240, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 240 {
		t.Errorf("bounds = %v", b)
	}
	result, err := codec.ParseImageResult(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "https://example.com/päth" || result.Format != zxscan.FormatQRCode {
		t.Errorf("got %q (%v)", result.Text, result.Format)
	}
}

func TestQRCodeWithLogo(t *testing.T) {
	logo := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			logo.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	img, err := generate.QRCode("logo", 300, &generate.QROptions{Logo: logo})
	if err != nil {
		t.Fatal(err)
	}
	r, g, _, _ := img.At(150, 150).RGBA()
	if r>>8 < 150 || g>>8 > 80 {
		t.Errorf("centre = (%d, %d), want logo colour", r>>8, g>>8)
	}
	text, err := codec.ParseCode(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "logo" {
		t.Errorf("text = %q", text)
	}

	if _, err := generate.QRCode("logo", 300, &generate.QROptions{Logo: logo, LogoRatio: 0.5}); !errors.Is(err, zxscan.ErrWriter) {
		t.Errorf("oversized logo err = %v", err)
	}
}

func TestBarcodeRoundTrip(t *testing.T) {
	img, err := generate.Barcode("ZX-0042", 360, 100, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := codec.ParseImageResult(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "ZX-0042" || result.Format != zxscan.FormatCode128 {
		t.Errorf("got %q (%v)", result.Text, result.Format)
	}
}

func TestBarcodeCaption(t *testing.T) {
	img, err := generate.Barcode("CAPTION", 360, 100, &generate.BarcodeOptions{Caption: "CAPTION"})
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dy(); got <= 100 {
		t.Errorf("height = %d, want room for caption", got)
	}
	text, err := codec.ParseCode(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "CAPTION" {
		t.Errorf("text = %q", text)
	}
}

func TestSaveAndLoad(t *testing.T) {
	img, err := generate.QRCode("saved", 120, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "qr.png")
	if err := generate.SavePNG(path, img); err != nil {
		t.Fatal(err)
	}
	loaded, err := generate.LoadLogo(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Bounds().Dx() != 120 {
		t.Errorf("width = %d", loaded.Bounds().Dx())
	}
	text, err := codec.ParseAnyCode(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "saved" {
		t.Errorf("text = %q", text)
	}
}

func TestQRCodeEmptyLogo(t *testing.T) {
	img, err := generate.QRCode("x", 200, &generate.QROptions{Logo: image.NewRGBA(image.Rect(0, 0, 0, 0))})
	if err != nil {
		t.Fatal(err)
	}
	text, err := codec.ParseCode(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "x" {
		t.Errorf("text = %q", text)
	}
}

func TestPDF417RoundTrip(t *testing.T) {
	if !generate.Supported(zxscan.FormatPDF417) {
		t.Fatal("PDF417 not supported")
	}
	margin := 10
	tests := []struct {
		name string
		opts *generate.EncodeOptions
	}{
		{"defaults", nil},
		{"level 4", &generate.EncodeOptions{ErrorCorrection: "4", Margin: &margin}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matrix, err := generate.Encode("zxscan PDF417", zxscan.FormatPDF417, 400, 200, tc.opts)
			if err != nil {
				t.Fatal(err)
			}
			result, err := codec.ParseImageResult(zxscan.BitMatrixToImage(matrix), nil)
			if err != nil {
				t.Fatal(err)
			}
			if result.Text != "zxscan PDF417" || result.Format != zxscan.FormatPDF417 {
				t.Errorf("got %q (%v)", result.Text, result.Format)
			}
		})
	}

	for _, level := range []string{"H", "9"} {
		_, err := generate.Encode("x", zxscan.FormatPDF417, 100, 100, &generate.EncodeOptions{ErrorCorrection: level})
		if !errors.Is(err, zxscan.ErrWriter) {
			t.Errorf("level %s err = %v, want ErrWriter", level, err)
		}
	}
}
