package codec

import (
	"image"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/binarizer"
	"github.com/ericlevine/zxscan/imaging"
)

// ParseAllResults returns every distinct symbol in the image file at path.
// nil hints select AnyHints.
func (c *Codec) ParseAllResults(path string, hints *zxscan.DecodeHints) ([]*zxscan.Result, error) {
	img, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return c.ParseAllImage(img, hints)
}

// ParseAllImage returns every distinct symbol in img. When the multi-symbol
// scan finds nothing, the single-symbol fallchain runs so that an inverted or
// sideways symbol is still reported.
func (c *Codec) ParseAllImage(img image.Image, hints *zxscan.DecodeHints) ([]*zxscan.Result, error) {
	if img == nil {
		return nil, zxscan.ErrNotFound
	}
	if hints == nil {
		hints = AnyHints()
	}
	if err := checkCharset(hints); err != nil {
		return nil, err
	}
	img = imaging.Scale(img, c.maxWidth, c.maxHeight)
	source := zxscan.NewImageLuminanceSource(img)
	bitmap := zxscan.NewBinaryBitmap(binarizer.NewHybrid(source))

	r := c.factory()
	defer r.Reset()
	if mr, ok := r.(zxscan.MultipleReader); ok {
		results, err := mr.DecodeMultiple(bitmap, hints)
		if err == nil {
			c.logger.Debug("found %d symbols", len(results))
			return results, nil
		}
	}
	result, err := c.pipeline.Run(source, hints)
	if err != nil {
		return nil, err
	}
	return []*zxscan.Result{result}, nil
}

// ParseAllResults returns every distinct symbol in the file at path.
func ParseAllResults(path string, hints *zxscan.DecodeHints) ([]*zxscan.Result, error) {
	return defaultCodec.ParseAllResults(path, hints)
}
