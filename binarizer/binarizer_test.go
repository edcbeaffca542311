package binarizer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ericlevine/zxscan"
)

// checkerImage returns a w x h gray image of 4x4 dark and light cells, the
// top-left cell dark.
func checkerImage(w, h int, dark, light uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := light
			if (x/4+y/4)%2 == 0 {
				v = dark
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// splitImage returns a w x h gray image whose left half is dark and right
// half is light.
func splitImage(w, h int, dark, light uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := light
			if x < w/2 {
				v = dark
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func uniformImage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestBinarizersCheckerImage(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		kind Kind
	}{
		{"hybrid", 80, 80, KindHybrid},
		{"hybrid-small-falls-back", 20, 20, KindHybrid},
		{"global-histogram", 80, 80, KindGlobalHistogram},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			source := zxscan.NewGrayImageLuminanceSource(checkerImage(tc.w, tc.h, 20, 230))
			matrix, err := New(tc.kind, source).BlackMatrix()
			if err != nil {
				t.Fatalf("BlackMatrix: %v", err)
			}
			if matrix.Width() != tc.w || matrix.Height() != tc.h {
				t.Fatalf("matrix = %dx%d, want %dx%d", matrix.Width(), matrix.Height(), tc.w, tc.h)
			}
			if !matrix.Get(1, 1) || !matrix.Get(9, 10) {
				t.Error("dark cells should be black")
			}
			if matrix.Get(5, 1) || matrix.Get(1, 6) {
				t.Error("light cells should be white")
			}
		})
	}
}

func TestBinarizersDegenerate(t *testing.T) {
	source := zxscan.NewGrayImageLuminanceSource(image.NewGray(image.Rect(0, 0, 0, 0)))
	for _, kind := range []Kind{KindHybrid, KindGlobalHistogram} {
		t.Run(kind.String(), func(t *testing.T) {
			_, err := New(kind, source).BlackMatrix()
			if !errors.Is(err, zxscan.ErrDegenerate) {
				t.Errorf("BlackMatrix error = %v, want ErrDegenerate", err)
			}
			_, err = New(kind, source).BlackRow(0, nil)
			if !errors.Is(err, zxscan.ErrDegenerate) {
				t.Errorf("BlackRow error = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestGlobalHistogramNoContrast(t *testing.T) {
	source := zxscan.NewGrayImageLuminanceSource(uniformImage(60, 60, 0))
	_, err := NewGlobalHistogram(source).BlackMatrix()
	if !errors.Is(err, zxscan.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestHybridUniformImageIsAllWhite(t *testing.T) {
	source := zxscan.NewGrayImageLuminanceSource(uniformImage(64, 64, 200))
	matrix, err := NewHybrid(source).BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	if n := matrix.Cardinality(); n != 0 {
		t.Errorf("uniform light image produced %d black cells", n)
	}
}

func TestHybridCachesMatrix(t *testing.T) {
	h := NewHybrid(zxscan.NewGrayImageLuminanceSource(splitImage(64, 64, 10, 240)))
	a, err := h.BlackMatrix()
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.BlackMatrix()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("second BlackMatrix call should return the cached matrix")
	}
}

func TestGlobalHistogramBlackRow(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 1))
	for x := 0; x < 64; x++ {
		if (x/4)%2 == 0 {
			img.Pix[x] = 10
		} else {
			img.Pix[x] = 240
		}
	}
	row, err := NewGlobalHistogram(zxscan.NewGrayImageLuminanceSource(img)).BlackRow(0, nil)
	if err != nil {
		t.Fatalf("BlackRow: %v", err)
	}
	if !row.Get(1) || !row.Get(2) {
		t.Error("dark bar should be black")
	}
	if row.Get(5) || row.Get(6) {
		t.Error("light bar should be white")
	}
}

func TestKindString(t *testing.T) {
	if KindHybrid.String() != "hybrid" || KindGlobalHistogram.String() != "global-histogram" {
		t.Errorf("unexpected kind names %q, %q", KindHybrid, KindGlobalHistogram)
	}
}
