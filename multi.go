package zxscan

// MultipleReader can decode every barcode in a single image.
type MultipleReader interface {
	// DecodeMultiple returns each distinct symbol found, or ErrNotFound.
	DecodeMultiple(image *BinaryBitmap, hints *DecodeHints) ([]*Result, error)
}
