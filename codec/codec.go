// Package codec is the entry point for decoding barcodes from images and
// image files. It bounds the image, picks default hints and runs the decode
// pipeline, optionally retrying on a physically rotated bitmap.
package codec

import (
	"errors"
	"fmt"
	"image"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/imaging"
	"github.com/ericlevine/zxscan/pipeline"
	"github.com/ericlevine/zxscan/reader"
)

// CodeHints returns the hints ParseCode uses when none are given: 1-D
// formats and QR codes, trying harder.
func CodeHints() *zxscan.DecodeHints {
	formats := append([]zxscan.Format(nil), zxscan.OneDFormats...)
	formats = append(formats, zxscan.QRCodeFormats...)
	return &zxscan.DecodeHints{
		PossibleFormats: formats,
		TryHarder:       true,
	}
}

// AnyHints returns the hints ParseAnyCode uses when none are given: every
// format, UTF-8 payloads, trying harder.
func AnyHints() *zxscan.DecodeHints {
	return &zxscan.DecodeHints{
		PossibleFormats: zxscan.AllFormats(),
		CharacterSet:    zxscan.DefaultCharacterSet,
		TryHarder:       true,
	}
}

// Codec decodes images within a size bound. The zero value is not usable;
// create one with New. A Codec is safe for concurrent use.
type Codec struct {
	maxWidth  int
	maxHeight int
	factory   zxscan.ReaderFactory
	base      zxscan.Logger
	logger    zxscan.Logger
	pipeline  *pipeline.Pipeline
}

// New returns a Codec with the default 450x800 bound. A nil logger discards
// output.
func New(logger zxscan.Logger) *Codec {
	if logger == nil {
		logger = zxscan.NopLogger{}
	}
	c := &Codec{
		maxWidth:  imaging.DefaultMaxWidth,
		maxHeight: imaging.DefaultMaxHeight,
		factory:   reader.Factory(),
		base:      logger,
		logger:    logger.WithComponent("codec"),
	}
	c.pipeline = pipeline.New(c.factory, pipeline.WithLogger(logger))
	return c
}

// WithBounds returns a copy of c that scales images to fit width x height.
// Non-positive values keep the current bound.
func (c *Codec) WithBounds(width, height int) *Codec {
	cp := *c
	if width > 0 {
		cp.maxWidth = width
	}
	if height > 0 {
		cp.maxHeight = height
	}
	return &cp
}

// WithReaderFactory returns a copy of c decoding with readers from factory.
func (c *Codec) WithReaderFactory(factory zxscan.ReaderFactory) *Codec {
	cp := *c
	cp.factory = factory
	cp.pipeline = pipeline.New(factory, pipeline.WithAttempts(c.pipeline.Attempts()), pipeline.WithLogger(c.base))
	return &cp
}

// Bounds returns the size bound applied to images before decoding.
func (c *Codec) Bounds() (width, height int) {
	return c.maxWidth, c.maxHeight
}

// ParseCode decodes a 1-D or QR symbol from img. nil hints select CodeHints.
func (c *Codec) ParseCode(img image.Image, hints *zxscan.DecodeHints) (string, error) {
	if hints == nil {
		hints = CodeHints()
	}
	result, err := c.ParseImageResult(img, hints)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ParseAnyCode decodes a symbol of any format from the image file at path.
// nil hints select AnyHints.
func (c *Codec) ParseAnyCode(path string, hints *zxscan.DecodeHints) (string, error) {
	result, err := c.ParseCodeResult(path, hints)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ParseCodeResult decodes the image file at path and returns the full
// result. nil hints select AnyHints.
func (c *Codec) ParseCodeResult(path string, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	img, err := c.load(path)
	if err != nil {
		return nil, err
	}
	if hints == nil {
		hints = AnyHints()
	}
	return c.run(img, hints)
}

// ParseImageResult decodes img and returns the full result. nil hints
// select AnyHints.
func (c *Codec) ParseImageResult(img image.Image, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	if img == nil {
		return nil, zxscan.ErrNotFound
	}
	if hints == nil {
		hints = AnyHints()
	}
	return c.run(imaging.Scale(img, c.maxWidth, c.maxHeight), hints)
}

// ParseQRCodeResult decodes only QR codes from the image file at path.
// Formats named in hints are ignored.
func (c *Codec) ParseQRCodeResult(path string, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	img, err := c.load(path)
	if err != nil {
		return nil, err
	}
	qr := hints.Clone()
	if qr == nil {
		qr = &zxscan.DecodeHints{CharacterSet: zxscan.DefaultCharacterSet, TryHarder: true}
	}
	qr.PossibleFormats = append([]zxscan.Format(nil), zxscan.QRCodeFormats...)
	return c.run(img, qr)
}

// RotateAndParse rotates img clockwise by degrees (a multiple of 90) and
// decodes the result as ParseCode does.
func (c *Codec) RotateAndParse(img image.Image, degrees int, hints *zxscan.DecodeHints) (string, error) {
	if img == nil {
		return "", zxscan.ErrNotFound
	}
	rotated, err := imaging.Rotate(img, degrees)
	if err != nil {
		return "", err
	}
	return c.ParseCode(rotated, hints)
}

// ParseGallery decodes the image file at path, retrying on the bitmap
// rotated a quarter turn when the first pass finds nothing.
func (c *Codec) ParseGallery(path string, hints *zxscan.DecodeHints) (string, error) {
	result, err := c.ParseGalleryResult(path, hints)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ParseGalleryResult is ParseGallery returning the full result. Result.Rotated
// reports whether the rotated pass produced it.
func (c *Codec) ParseGalleryResult(path string, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	img, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return c.ParseGalleryImage(img, hints)
}

// ParseGalleryImage runs the gallery fallback on an in-memory image.
func (c *Codec) ParseGalleryImage(img image.Image, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	if img == nil {
		return nil, zxscan.ErrNotFound
	}
	if hints == nil {
		hints = AnyHints()
	}
	img = imaging.Scale(img, c.maxWidth, c.maxHeight)
	result, err := c.run(img, hints)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, zxscan.ErrNotFound) {
		return nil, err
	}
	c.logger.Debug("retrying on bitmap rotated 90 degrees")
	result, err = c.run(imaging.Rotate90(img), hints)
	if err != nil {
		return nil, err
	}
	result.Rotated = true
	return result, nil
}

func (c *Codec) load(path string) (image.Image, error) {
	img, err := imaging.Load(path, c.maxWidth, c.maxHeight)
	if err != nil {
		c.logger.Debug("load %s: %v", path, err)
		return nil, fmt.Errorf("%w: %w", zxscan.ErrNotFound, err)
	}
	return img, nil
}

func (c *Codec) run(img image.Image, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	if err := checkCharset(hints); err != nil {
		return nil, err
	}
	b := img.Bounds()
	c.logger.Debug("decoding %dx%d image", b.Dx(), b.Dy())
	return c.pipeline.RunImage(img, hints)
}

// checkCharset rejects an unknown character set up front. Left to the
// readers it would fail every attempt and surface as ErrNotFound.
func checkCharset(hints *zxscan.DecodeHints) error {
	if hints == nil || hints.CharacterSet == "" {
		return nil
	}
	if _, err := zxscan.CanonicalCharset(hints.CharacterSet); err != nil {
		return fmt.Errorf("decode hints: %w", err)
	}
	return nil
}
