package zxscan

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// DefaultCharacterSet is the character set assumed for byte payloads when a
// caller does not name one.
const DefaultCharacterSet = "utf-8"

// DecodeHints configures barcode decoding behavior. Hints are forwarded to the
// Reader unchanged; the decode pipeline does not interpret them.
type DecodeHints struct {
	// PossibleFormats limits which formats to look for. Empty means all.
	PossibleFormats []Format

	// TryHarder enables spending more time looking for barcodes.
	TryHarder bool

	// CharacterSet specifies the character set used to interpret byte
	// payloads.
	CharacterSet string

	// Margin is the quiet zone width, in modules, assumed around a symbol.
	// Only the encode path uses it.
	Margin *int

	// PureBarcode hints that the image contains only the barcode with minimal
	// border and no rotation.
	PureBarcode bool
}

// Clone returns a deep copy of the hints. A nil receiver yields nil.
func (h *DecodeHints) Clone() *DecodeHints {
	if h == nil {
		return nil
	}
	c := *h
	if h.PossibleFormats != nil {
		c.PossibleFormats = append([]Format(nil), h.PossibleFormats...)
	}
	if h.Margin != nil {
		m := *h.Margin
		c.Margin = &m
	}
	return &c
}

// Allows reports whether f is acceptable under the hints.
func (h *DecodeHints) Allows(f Format) bool {
	if h == nil || len(h.PossibleFormats) == 0 {
		return true
	}
	for _, p := range h.PossibleFormats {
		if p == f {
			return true
		}
	}
	return false
}

// CanonicalCharset validates a character set name against the IANA registry
// and returns its canonical name, e.g. "utf-8" becomes "UTF-8".
func CanonicalCharset(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty character set: %w", ErrFormat)
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unknown character set %q: %w", name, ErrFormat)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", fmt.Errorf("character set %q: %w", name, ErrFormat)
	}
	return canonical, nil
}

// Reader decodes barcodes from a BinaryBitmap. Implementations may be
// stateful; Reset clears any state carried between Decode calls.
type Reader interface {
	// Decode attempts to decode a barcode from the image.
	Decode(image *BinaryBitmap, hints *DecodeHints) (*Result, error)

	// Reset resets any internal state.
	Reset()
}

// ReaderFactory builds a fresh Reader for one decode run.
type ReaderFactory func() Reader
