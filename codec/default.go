package codec

import (
	"image"

	"github.com/ericlevine/zxscan"
)

var defaultCodec = New(nil)

// Default returns the codec used by the package-level functions.
func Default() *Codec {
	return defaultCodec
}

// ParseCode decodes a 1-D or QR symbol from img with the default codec.
func ParseCode(img image.Image, hints *zxscan.DecodeHints) (string, error) {
	return defaultCodec.ParseCode(img, hints)
}

// ParseAnyCode decodes a symbol of any format from the file at path.
func ParseAnyCode(path string, hints *zxscan.DecodeHints) (string, error) {
	return defaultCodec.ParseAnyCode(path, hints)
}

// ParseCodeResult decodes the file at path and returns the full result.
func ParseCodeResult(path string, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	return defaultCodec.ParseCodeResult(path, hints)
}

// ParseImageResult decodes img and returns the full result.
func ParseImageResult(img image.Image, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	return defaultCodec.ParseImageResult(img, hints)
}

// ParseQRCodeResult decodes only QR codes from the file at path.
func ParseQRCodeResult(path string, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	return defaultCodec.ParseQRCodeResult(path, hints)
}

// RotateAndParse rotates img clockwise by degrees, then decodes it.
func RotateAndParse(img image.Image, degrees int, hints *zxscan.DecodeHints) (string, error) {
	return defaultCodec.RotateAndParse(img, degrees, hints)
}

// ParseGallery decodes the file at path with the rotated retry.
func ParseGallery(path string, hints *zxscan.DecodeHints) (string, error) {
	return defaultCodec.ParseGallery(path, hints)
}

// ParseGalleryResult is ParseGallery returning the full result.
func ParseGalleryResult(path string, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	return defaultCodec.ParseGalleryResult(path, hints)
}
