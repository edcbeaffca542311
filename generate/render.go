package generate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/ericlevine/zxscan"
)

// DefaultLogoRatio is the share of the QR code's width a logo occupies.
const DefaultLogoRatio = 0.2

// QROptions configures QRCode.
type QROptions struct {
	// Logo is drawn centred over the symbol when non-nil.
	Logo image.Image
	// LogoRatio is the logo width relative to the symbol. Zero selects
	// DefaultLogoRatio.
	LogoRatio float64
	// Margin is the quiet zone in modules. Nil selects 1.
	Margin *int
}

// QRCode renders text as a size x size QR code. The symbol uses error
// correction level H and UTF-8 so that a logo covering its centre still
// decodes.
func QRCode(text string, size int, opts *QROptions) (image.Image, error) {
	if opts == nil {
		opts = &QROptions{}
	}
	margin := 1
	if opts.Margin != nil {
		margin = *opts.Margin
	}
	matrix, err := Encode(text, zxscan.FormatQRCode, size, size, &EncodeOptions{
		ErrorCorrection: "H",
		CharacterSet:    zxscan.DefaultCharacterSet,
		Margin:          &margin,
	})
	if err != nil {
		return nil, err
	}
	symbol := zxscan.BitMatrixToImage(matrix)
	if opts.Logo == nil {
		return symbol, nil
	}

	ratio := opts.LogoRatio
	if ratio <= 0 {
		ratio = DefaultLogoRatio
	}
	if ratio > 0.3 {
		return nil, fmt.Errorf("logo ratio %.2f exceeds 0.30: %w", ratio, zxscan.ErrWriter)
	}
	lb := opts.Logo.Bounds()
	if lb.Empty() {
		return symbol, nil
	}
	w, h := symbol.Bounds().Dx(), symbol.Bounds().Dy()
	logoW := int(float64(w) * ratio)
	if logoW < 1 {
		return symbol, nil
	}
	logoH := logoW * lb.Dy() / lb.Dx()
	if logoH < 1 {
		logoH = 1
	}
	logo := image.NewRGBA(image.Rect(0, 0, logoW, logoH))
	draw.CatmullRom.Scale(logo, logo.Bounds(), opts.Logo, lb, draw.Over, nil)

	dc := gg.NewContextForImage(symbol)
	pad := float64(logoW) / 10
	x := float64(w-logoW) / 2
	y := float64(h-logoH) / 2
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(x-pad, y-pad, float64(logoW)+2*pad, float64(logoH)+2*pad, pad)
	dc.Fill()
	dc.DrawImage(logo, int(x), int(y))
	return dc.Image(), nil
}

// BarcodeOptions configures Barcode.
type BarcodeOptions struct {
	// Format is the linear format; zero selects Code 128.
	Format zxscan.Format
	// Caption is printed under the bars when non-empty.
	Caption string
	// FontPath names a TrueType font for the caption. Empty uses the
	// built-in face.
	FontPath string
	// FontSize is the caption size in points when FontPath is set.
	FontSize float64
}

// Barcode renders text as a width x height linear barcode.
func Barcode(text string, width, height int, opts *BarcodeOptions) (image.Image, error) {
	if opts == nil {
		opts = &BarcodeOptions{}
	}
	format := opts.Format
	if format == zxscan.FormatQRCode {
		format = zxscan.FormatCode128
	}
	matrix, err := Encode(text, format, width, height, nil)
	if err != nil {
		return nil, err
	}
	bars := zxscan.BitMatrixToImage(matrix)
	if opts.Caption == "" {
		return bars, nil
	}

	dc := gg.NewContext(bars.Bounds().Dx(), bars.Bounds().Dy()+captionHeight(opts))
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(bars, 0, 0)
	if opts.FontPath != "" {
		size := opts.FontSize
		if size <= 0 {
			size = 14
		}
		if err := dc.LoadFontFace(opts.FontPath, size); err != nil {
			return nil, fmt.Errorf("load font %s: %w", opts.FontPath, err)
		}
	}
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(opts.Caption, float64(dc.Width())/2, float64(bars.Bounds().Dy())+float64(captionHeight(opts))/2, 0.5, 0.5)
	return dc.Image(), nil
}

func captionHeight(opts *BarcodeOptions) int {
	if opts.FontPath != "" && opts.FontSize > 0 {
		return int(opts.FontSize*1.6) + 4
	}
	return 24
}

// LoadLogo reads a logo image from path.
func LoadLogo(path string) (image.Image, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("load logo %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
