package binarizer

import "github.com/ericlevine/zxscan"

// Kind selects a binarization strategy.
type Kind int

const (
	// KindHybrid selects the block-adaptive Hybrid binarizer.
	KindHybrid Kind = iota
	// KindGlobalHistogram selects the GlobalHistogram binarizer.
	KindGlobalHistogram
)

// String returns the name of the strategy.
func (k Kind) String() string {
	switch k {
	case KindHybrid:
		return "hybrid"
	case KindGlobalHistogram:
		return "global-histogram"
	default:
		return "unknown"
	}
}

// New returns a binarizer of the given kind over source.
func New(kind Kind, source zxscan.LuminanceSource) zxscan.Binarizer {
	if kind == KindGlobalHistogram {
		return NewGlobalHistogram(source)
	}
	return NewHybrid(source)
}
