package pipeline_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/pipeline"
	"github.com/ericlevine/zxscan/reader"
)

// scriptedReader fails until its call count reaches succeedOn (1-based).
// A call listed in panicOn panics instead.
type scriptedReader struct {
	calls     int
	resets    int
	succeedOn int
	panicOn   map[int]bool
}

func (r *scriptedReader) Decode(image *zxscan.BinaryBitmap, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	r.calls++
	if r.panicOn[r.calls] {
		panic("corrupt symbol")
	}
	if r.calls == r.succeedOn {
		return zxscan.NewResult("ok", nil, nil, zxscan.FormatQRCode), nil
	}
	return nil, zxscan.ErrNotFound
}

func (r *scriptedReader) Reset() { r.resets++ }

func factoryFor(r *scriptedReader) zxscan.ReaderFactory {
	return func() zxscan.Reader { return r }
}

// countingSource wraps a source and counts rotation requests.
type countingSource struct {
	zxscan.LuminanceSource
	rotatable bool
	rotations int
}

func (s *countingSource) IsRotateSupported() bool { return s.rotatable }

func (s *countingSource) RotateCounterClockwise() (zxscan.LuminanceSource, error) {
	s.rotations++
	return s.LuminanceSource.RotateCounterClockwise()
}

func blankSource(t *testing.T, w, h int) *zxscan.ImageLuminanceSource {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return zxscan.NewGrayImageLuminanceSource(img)
}

func TestRunStopsAtFirstSuccess(t *testing.T) {
	tests := []struct {
		succeedOn int
		want      string
	}{
		{1, "original+hybrid"},
		{2, "inverted+hybrid"},
		{3, "original+global-histogram"},
		{4, "rotated-ccw+hybrid"},
	}
	for _, tt := range tests {
		r := &scriptedReader{succeedOn: tt.succeedOn}
		result, err := pipeline.New(factoryFor(r)).Run(blankSource(t, 64, 64), nil)
		if err != nil {
			t.Fatalf("succeedOn %d: %v", tt.succeedOn, err)
		}
		if result.Attempt != tt.want {
			t.Errorf("succeedOn %d: attempt = %q, want %q", tt.succeedOn, result.Attempt, tt.want)
		}
		if r.calls != tt.succeedOn {
			t.Errorf("succeedOn %d: decoder called %d times", tt.succeedOn, r.calls)
		}
	}
}

func TestRunExhaustion(t *testing.T) {
	r := &scriptedReader{}
	_, err := pipeline.New(factoryFor(r)).Run(blankSource(t, 64, 64), nil)
	if !errors.Is(err, zxscan.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if r.calls != 4 {
		t.Errorf("calls = %d, want 4", r.calls)
	}
	// Three resets between attempts plus one when the run ends.
	if r.resets != 4 {
		t.Errorf("resets = %d, want 4", r.resets)
	}
}

func TestRunSwallowsPanics(t *testing.T) {
	r := &scriptedReader{succeedOn: 2, panicOn: map[int]bool{1: true}}
	result, err := pipeline.New(factoryFor(r)).Run(blankSource(t, 64, 64), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Attempt != "inverted+hybrid" {
		t.Errorf("attempt = %q", result.Attempt)
	}
}

func TestRotateNotInvokedWhenUnsupported(t *testing.T) {
	src := &countingSource{LuminanceSource: blankSource(t, 64, 64)}
	r := &scriptedReader{}
	_, err := pipeline.New(factoryFor(r)).Run(src, nil)
	if !errors.Is(err, zxscan.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if src.rotations != 0 {
		t.Errorf("rotations = %d, want 0", src.rotations)
	}
	if r.calls != 3 {
		t.Errorf("calls = %d, want 3", r.calls)
	}

	src.rotatable = true
	r = &scriptedReader{}
	pipeline.New(factoryFor(r)).Run(src, nil)
	if src.rotations != 1 {
		t.Errorf("rotations = %d, want 1", src.rotations)
	}
}

func TestRunLeavesSourceUntouched(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 48, 32))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 7)
	}
	src := zxscan.NewGrayImageLuminanceSource(img)
	before := src.Matrix()
	pipeline.New(factoryFor(&scriptedReader{})).Run(src, nil)
	if !bytes.Equal(before, src.Matrix()) {
		t.Error("source modified by run")
	}
}

func TestWithAttempts(t *testing.T) {
	only := []pipeline.Attempt{{Name: "global", Transform: pipeline.Original}}
	r := &scriptedReader{succeedOn: 1}
	p := pipeline.New(factoryFor(r), pipeline.WithAttempts(only))
	result, err := p.Run(blankSource(t, 16, 16), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Attempt != "global" {
		t.Errorf("attempt = %q", result.Attempt)
	}
	if got := len(p.Attempts()); got != 1 {
		t.Errorf("len(Attempts) = %d", got)
	}
}

func TestRunNilSource(t *testing.T) {
	p := pipeline.New(factoryFor(&scriptedReader{succeedOn: 1}))
	if _, err := p.Run(nil, nil); !errors.Is(err, zxscan.ErrNotFound) {
		t.Errorf("Run(nil) err = %v", err)
	}
	if _, err := p.RunImage(nil, nil); !errors.Is(err, zxscan.ErrNotFound) {
		t.Errorf("RunImage(nil) err = %v", err)
	}
}

// qrImage renders text as a QR code, optionally with inverted polarity.
func qrImage(t *testing.T, text string, size int, inverted bool) *image.Gray {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dark, light := color.Gray{Y: 0}, color.Gray{Y: 255}
	if inverted {
		dark, light = light, dark
	}
	img := image.NewGray(image.Rect(0, 0, matrix.GetWidth(), matrix.GetHeight()))
	for y := 0; y < matrix.GetHeight(); y++ {
		for x := 0; x < matrix.GetWidth(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, dark)
			} else {
				img.SetGray(x, y, light)
			}
		}
	}
	return img
}

func TestRunDecodesQRCode(t *testing.T) {
	hints := &zxscan.DecodeHints{PossibleFormats: zxscan.QRCodeFormats}
	result, err := pipeline.New(reader.Factory()).RunImage(qrImage(t, "pipeline", 200, false), hints)
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "pipeline" || result.Attempt != "original+hybrid" {
		t.Errorf("got %q via %q", result.Text, result.Attempt)
	}
}

func TestRunDecodesInvertedQRCode(t *testing.T) {
	hints := &zxscan.DecodeHints{PossibleFormats: zxscan.QRCodeFormats, TryHarder: true}
	result, err := pipeline.New(reader.Factory()).RunImage(qrImage(t, "inverted", 200, true), hints)
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "inverted" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Attempt != "inverted+hybrid" {
		t.Errorf("attempt = %q, want inverted+hybrid", result.Attempt)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	p := pipeline.New(reader.Factory())
	img := qrImage(t, "again", 160, false)
	first, err := p.RunImage(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.RunImage(img, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != second.Text || first.Format != second.Format || first.Attempt != second.Attempt {
		t.Errorf("runs differ: %+v vs %+v", first, second)
	}
}

func TestTransformString(t *testing.T) {
	if got := pipeline.RotatedCounterClockwise.String(); got != "rotated-ccw" {
		t.Errorf("String() = %q", got)
	}
}
