package zxscan

import "errors"

var (
	// ErrNotFound is returned when no barcode could be found in the image.
	ErrNotFound = errors.New("barcode not found")

	// ErrUnreadable is returned when a source image cannot be opened or decoded.
	ErrUnreadable = errors.New("unreadable image")

	// ErrDegenerate is returned for luminance data with zero width or height.
	ErrDegenerate = errors.New("degenerate image")

	// ErrUnsupported is returned when a luminance source cannot perform a
	// requested transform.
	ErrUnsupported = errors.New("operation not supported")

	// ErrChecksum is returned when a barcode's checksum does not match.
	ErrChecksum = errors.New("checksum error")

	// ErrFormat is returned when a barcode cannot be decoded due to format issues.
	ErrFormat = errors.New("format error")

	// ErrWriter is returned when a barcode cannot be encoded.
	ErrWriter = errors.New("writer error")
)
