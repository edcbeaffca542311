package zxscan_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/binarizer"
)

// gradientSource returns a 3x2 source with values 0..5 row-major.
func gradientSource(t *testing.T) *zxscan.ImageLuminanceSource {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(img.Pix, []byte{0, 1, 2, 3, 4, 5})
	return zxscan.NewGrayImageLuminanceSource(img)
}

func TestImageLuminanceSourceWeighting(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})
	img.Set(1, 0, color.RGBA{0, 0, 0, 255})
	img.Set(2, 0, color.RGBA{255, 0, 0, 255})
	img.Set(3, 0, color.RGBA{0, 0, 0, 0})
	got := zxscan.NewImageLuminanceSource(img).Row(0, nil)
	want := []byte{255, 0, 76, 255}
	if !bytes.Equal(got, want) {
		t.Errorf("Row(0) = %v, want %v", got, want)
	}
}

func TestRGBLuminanceSource(t *testing.T) {
	source, err := zxscan.NewRGBLuminanceSource(2, 1, []int{0xFFFFFF, 0x00FF00})
	if err != nil {
		t.Fatal(err)
	}
	if got := source.Matrix(); got[0] != 255 || got[1] != 127 {
		t.Errorf("Matrix() = %v, want [255 127]", got)
	}
	if _, err := zxscan.NewRGBLuminanceSource(2, 2, []int{0}); !errors.Is(err, zxscan.ErrDegenerate) {
		t.Errorf("short buffer error = %v, want ErrDegenerate", err)
	}
}

func TestInvertLeavesOriginalIntact(t *testing.T) {
	source := gradientSource(t)
	inverted := source.Invert()
	if got, want := inverted.Matrix(), []byte{255, 254, 253, 252, 251, 250}; !bytes.Equal(got, want) {
		t.Errorf("inverted = %v, want %v", got, want)
	}
	if got, want := source.Matrix(), []byte{0, 1, 2, 3, 4, 5}; !bytes.Equal(got, want) {
		t.Errorf("original changed to %v", got)
	}
	twice := inverted.Invert()
	if !bytes.Equal(twice.Matrix(), source.Matrix()) {
		t.Error("double inversion should restore the original values")
	}
}

func TestRotateCounterClockwise(t *testing.T) {
	source := gradientSource(t)
	rotated, err := source.RotateCounterClockwise()
	if err != nil {
		t.Fatal(err)
	}
	if rotated.Width() != 2 || rotated.Height() != 3 {
		t.Fatalf("rotated = %dx%d, want 2x3", rotated.Width(), rotated.Height())
	}
	// 0 1 2        2 5
	// 3 4 5   ->   1 4
	//              0 3
	if got, want := rotated.Matrix(), []byte{2, 5, 1, 4, 0, 3}; !bytes.Equal(got, want) {
		t.Errorf("rotated = %v, want %v", got, want)
	}
	if got := source.Matrix(); !bytes.Equal(got, []byte{0, 1, 2, 3, 4, 5}) {
		t.Errorf("original changed to %v", got)
	}
}

func TestCropStripCannotRotate(t *testing.T) {
	source := gradientSource(t)
	if !source.IsRotateSupported() {
		t.Fatal("full frame should support rotation")
	}
	strip, err := source.Crop(0, 1, 3, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := strip.Row(0, nil); !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Errorf("strip = %v, want [3 4 5]", got)
	}
	if strip.IsRotateSupported() {
		t.Error("single-row strip should not support rotation")
	}
	if _, err := strip.RotateCounterClockwise(); !errors.Is(err, zxscan.ErrUnsupported) {
		t.Errorf("rotate error = %v, want ErrUnsupported", err)
	}
	if strip.Invert().IsRotateSupported() {
		t.Error("inverting a strip should keep rotation unsupported")
	}
	if _, err := source.Crop(2, 0, 5, 1); !errors.Is(err, zxscan.ErrUnsupported) {
		t.Errorf("out of bounds crop error = %v, want ErrUnsupported", err)
	}
}

func TestRowOutOfRange(t *testing.T) {
	if row := gradientSource(t).Row(5, nil); row != nil {
		t.Errorf("Row(5) = %v, want nil", row)
	}
}

func TestSourceImage(t *testing.T) {
	img := gradientSource(t).Image()
	if img.GrayAt(2, 1).Y != 5 {
		t.Errorf("GrayAt(2,1) = %d, want 5", img.GrayAt(2, 1).Y)
	}
}

func TestBinaryBitmapCrop(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	for y := 5; y < 10; y++ {
		for x := 30; x < 35; x++ {
			img.Pix[y*img.Stride+x] = 0
		}
	}
	bitmap := zxscan.NewBinaryBitmap(binarizer.NewGlobalHistogram(zxscan.NewGrayImageLuminanceSource(img)))
	crop, err := bitmap.Crop(28, 4, 10, 8)
	if err != nil {
		t.Fatal(err)
	}
	if crop.Width() != 10 || crop.Height() != 8 {
		t.Fatalf("crop is %dx%d, want 10x8", crop.Width(), crop.Height())
	}
	matrix, err := crop.BlackMatrix()
	if err != nil {
		t.Fatal(err)
	}
	if got := matrix.Cardinality(); got != 25 || !matrix.Get(2, 1) || matrix.Get(1, 1) {
		t.Errorf("crop matrix has %d black pixels, want the 5x5 square at (2, 1)", got)
	}
	if got := crop.Binarizer().LuminanceSource().Row(1, nil)[2]; got != 0 {
		t.Errorf("crop luminance at (2, 1) = %d, want 0", got)
	}
	if _, err := bitmap.Crop(35, 0, 10, 10); !errors.Is(err, zxscan.ErrUnsupported) {
		t.Errorf("out of bounds crop error = %v, want ErrUnsupported", err)
	}
}
