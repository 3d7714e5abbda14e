package langid

import (
	"langid/internal/automaton"
	"langid/internal/bayes"
	"langid/internal/textnorm"
	"langid/internal/trace"
)

// Option configures a Model at load time.
type Option func(*options)

type options struct {
	norm    bayes.Normalizer
	symbols automaton.SymbolMode
	form    textnorm.Form
	tracer  trace.Tracer
	parent  uint64
}

func buildOptions(opts []Option) options {
	o := options{
		norm:    bayes.Identity{},
		symbols: automaton.SymbolRunes,
		form:    textnorm.FormNone,
		tracer:  trace.Nop,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithNormalizer post-processes raw scores. nil restores the identity.
func WithNormalizer(n bayes.Normalizer) Option {
	return func(o *options) {
		if n == nil {
			n = bayes.Identity{}
		}
		o.norm = n
	}
}

// WithSymbolMode selects code point or byte walking.
func WithSymbolMode(m automaton.SymbolMode) Option {
	return func(o *options) { o.symbols = m }
}

// WithTextForm normalizes input text before tokenizing.
func WithTextForm(f textnorm.Form) Option {
	return func(o *options) { o.form = f }
}

// WithTracer records spans for load, restrict and scoring calls.
// parent links them under an enclosing span (0 for none).
func WithTracer(t trace.Tracer, parent uint64) Option {
	return func(o *options) {
		if t == nil {
			t = trace.Nop
		}
		o.tracer = t
		o.parent = parent
	}
}
