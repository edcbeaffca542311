package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ericlevine/zxscan"
)

func TestFactor(t *testing.T) {
	tests := []struct {
		name             string
		w, h, maxW, maxH int
		want             int
	}{
		{"within bounds", 300, 300, 450, 800, 1},
		{"exact bounds", 450, 800, 450, 800, 1},
		{"width exceeds", 900, 400, 450, 800, 2},
		{"height exceeds", 400, 2400, 450, 800, 3},
		{"floor leaves width over bound", 4000, 3000, 450, 800, 9},
		{"small image never upsampled", 10, 10, 450, 800, 1},
		{"unbounded", 5000, 5000, 0, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Factor(tc.w, tc.h, tc.maxW, tc.maxH); got != tc.want {
				t.Errorf("Factor(%d, %d, %d, %d) = %d, want %d", tc.w, tc.h, tc.maxW, tc.maxH, got, tc.want)
			}
		})
	}
}

func TestScaleNeverExceedsBounds(t *testing.T) {
	sizes := [][2]int{{4000, 3000}, {3000, 4000}, {451, 801}, {1000, 100}, {100, 1000}, {449, 799}}
	for _, size := range sizes {
		img := image.NewGray(image.Rect(0, 0, size[0], size[1]))
		scaled := Scale(img, DefaultMaxWidth, DefaultMaxHeight)
		b := scaled.Bounds()
		if b.Dx() > DefaultMaxWidth || b.Dy() > DefaultMaxHeight {
			t.Errorf("%dx%d scaled to %dx%d, exceeds %dx%d", size[0], size[1], b.Dx(), b.Dy(), DefaultMaxWidth, DefaultMaxHeight)
		}
		if b.Dx() > size[0] || b.Dy() > size[1] {
			t.Errorf("%dx%d was upsampled to %dx%d", size[0], size[1], b.Dx(), b.Dy())
		}
	}
}

func TestDecimateSamplesEveryNthPixel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 6, 4))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	got := Decimate(img, 2).(*image.Gray)
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("decimated size = %v, want 3x2", got.Bounds())
	}
	want := []byte{0, 2, 4, 12, 14, 16}
	if !bytes.Equal(got.Pix, want) {
		t.Errorf("decimated pixels = %v, want %v", got.Pix, want)
	}
}

func TestRotate90(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	copy(img.Pix, []byte{1, 2, 3, 4, 5, 6})
	rotated := Rotate90(img).(*image.Gray)
	// 1 2 3        4 1
	// 4 5 6   ->   5 2
	//              6 3
	want := []byte{4, 1, 5, 2, 6, 3}
	if !bytes.Equal(rotated.Pix, want) {
		t.Errorf("rotated = %v, want %v", rotated.Pix, want)
	}
}

func TestRotateFullTurn(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5, 3))
	for i := range img.Pix {
		img.Pix[i] = byte(i * 7)
	}
	current := image.Image(img)
	for i := 0; i < 4; i++ {
		var err error
		if current, err = Rotate(current, 90); err != nil {
			t.Fatal(err)
		}
	}
	if !bytes.Equal(current.(*image.Gray).Pix, img.Pix) {
		t.Error("four quarter turns should restore the image")
	}
	half, _ := Rotate(img, 180)
	if half.(*image.Gray).GrayAt(0, 0).Y != img.GrayAt(4, 2).Y {
		t.Error("180 degree rotation should map the bottom-right corner to the origin")
	}
	if _, err := Rotate(img, 45); !errors.Is(err, zxscan.ErrUnsupported) {
		t.Errorf("Rotate(45) error = %v, want ErrUnsupported", err)
	}
}

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDownsamples(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	for x := 0; x < 1000; x++ {
		img.Set(x, 0, color.RGBA{uint8(x), 0, 0, 255})
	}
	path := writePNG(t, img)

	w, h, err := Bounds(path)
	if err != nil {
		t.Fatal(err)
	}
	if w != 1000 || h != 500 {
		t.Errorf("Bounds = %dx%d, want 1000x500", w, h)
	}

	loaded, err := Load(path, DefaultMaxWidth, DefaultMaxHeight)
	if err != nil {
		t.Fatal(err)
	}
	// factor 3: ceil(1000/3) = 334, ceil(500/3) = 167
	if b := loaded.Bounds(); b.Dx() != 334 || b.Dy() != 167 {
		t.Errorf("loaded size = %dx%d, want 334x167", b.Dx(), b.Dy())
	}
	r, _, _, _ := loaded.At(1, 0).RGBA()
	if r>>8 != 3 {
		t.Errorf("pixel (1,0) red = %d, want 3", r>>8)
	}
}

func TestLoadUnreadable(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png"), 450, 800); !errors.Is(err, zxscan.ErrUnreadable) {
		t.Errorf("missing file error = %v, want ErrUnreadable", err)
	}
	corrupt := filepath.Join(t.TempDir(), "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(corrupt, 450, 800); !errors.Is(err, zxscan.ErrUnreadable) {
		t.Errorf("corrupt file error = %v, want ErrUnreadable", err)
	}
	if _, _, err := Bounds(filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, zxscan.ErrUnreadable) {
		t.Errorf("Bounds error = %v, want ErrUnreadable", err)
	}
}
