// Package pipeline runs the ordered decode fallchain: each attempt pairs a
// view of the luminance source with a binarizer and hands the resulting
// bitmap to a decoder, stopping at the first symbol found.
package pipeline

import (
	"fmt"
	"image"

	"github.com/ericlevine/zxscan"
	"github.com/ericlevine/zxscan/binarizer"
)

// Transform derives the view an attempt decodes from the original source.
type Transform int

const (
	Original Transform = iota
	Inverted
	RotatedCounterClockwise
)

func (t Transform) String() string {
	switch t {
	case Original:
		return "original"
	case Inverted:
		return "inverted"
	case RotatedCounterClockwise:
		return "rotated-ccw"
	default:
		return fmt.Sprintf("Transform(%d)", int(t))
	}
}

func (t Transform) apply(source zxscan.LuminanceSource) (zxscan.LuminanceSource, error) {
	switch t {
	case Original:
		return source, nil
	case Inverted:
		return source.Invert(), nil
	case RotatedCounterClockwise:
		return source.RotateCounterClockwise()
	default:
		return nil, fmt.Errorf("transform %v: %w", t, zxscan.ErrUnsupported)
	}
}

// Attempt is one step of the fallchain.
type Attempt struct {
	Name      string
	Transform Transform
	Binarizer binarizer.Kind
	// RequiresRotate skips the attempt for sources that cannot rotate.
	RequiresRotate bool
}

// DefaultAttempts is the standard fallchain.
var DefaultAttempts = []Attempt{
	{Name: "original+hybrid", Transform: Original, Binarizer: binarizer.KindHybrid},
	{Name: "inverted+hybrid", Transform: Inverted, Binarizer: binarizer.KindHybrid},
	{Name: "original+global-histogram", Transform: Original, Binarizer: binarizer.KindGlobalHistogram},
	{Name: "rotated-ccw+hybrid", Transform: RotatedCounterClockwise, Binarizer: binarizer.KindHybrid, RequiresRotate: true},
}

// Pipeline decodes luminance sources through a chain of attempts. It holds
// no per-run state and is safe for concurrent use.
type Pipeline struct {
	factory  zxscan.ReaderFactory
	attempts []Attempt
	logger   zxscan.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAttempts replaces the default fallchain.
func WithAttempts(attempts []Attempt) Option {
	return func(p *Pipeline) {
		p.attempts = append([]Attempt(nil), attempts...)
	}
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(logger zxscan.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger.WithComponent("pipeline")
		}
	}
}

// New returns a Pipeline building one decoder per run from factory.
func New(factory zxscan.ReaderFactory, opts ...Option) *Pipeline {
	p := &Pipeline{
		factory:  factory,
		attempts: DefaultAttempts,
		logger:   zxscan.NopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Attempts returns a copy of the configured fallchain.
func (p *Pipeline) Attempts() []Attempt {
	return append([]Attempt(nil), p.attempts...)
}

// Run decodes source, trying each attempt in order. Every attempt starts
// from source itself, which is never modified. Attempt failures, including
// decoder panics, are logged and skipped; if no attempt succeeds the error
// is zxscan.ErrNotFound.
func (p *Pipeline) Run(source zxscan.LuminanceSource, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	if source == nil {
		return nil, zxscan.ErrNotFound
	}
	reader := p.factory()
	defer reader.Reset()

	tried := false
	for _, attempt := range p.attempts {
		if attempt.RequiresRotate && !source.IsRotateSupported() {
			p.logger.Debug("skip %s: rotation unsupported", attempt.Name)
			continue
		}
		if tried {
			reader.Reset()
		}
		tried = true
		result, err := p.try(reader, source, attempt, hints)
		if err != nil {
			p.logger.Debug("attempt %s: %v", attempt.Name, err)
			continue
		}
		result.Attempt = attempt.Name
		p.logger.Debug("attempt %s decoded %s", attempt.Name, result.Format)
		return result, nil
	}
	return nil, zxscan.ErrNotFound
}

// RunImage converts img to luminance and runs the chain.
func (p *Pipeline) RunImage(img image.Image, hints *zxscan.DecodeHints) (*zxscan.Result, error) {
	if img == nil {
		return nil, zxscan.ErrNotFound
	}
	return p.Run(zxscan.NewImageLuminanceSource(img), hints)
}

func (p *Pipeline) try(reader zxscan.Reader, source zxscan.LuminanceSource, attempt Attempt, hints *zxscan.DecodeHints) (result *zxscan.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	view, err := attempt.Transform.apply(source)
	if err != nil {
		return nil, err
	}
	bitmap := zxscan.NewBinaryBitmap(binarizer.New(attempt.Binarizer, view))
	result, err = reader.Decode(bitmap, hints)
	if err == nil && result == nil {
		err = zxscan.ErrNotFound
	}
	return result, err
}
