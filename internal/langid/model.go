// Package langid identifies the language of a text with a pretrained
// n-gram Naive Bayes model.
//
// A Model is loaded once and is then safe for concurrent use. Classify and
// Rank read one snapshot of the active class set per call; Restrict swaps
// that set atomically, so readers never observe a partly restricted table.
package langid

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"langid/internal/automaton"
	"langid/internal/bayes"
	"langid/internal/modelfile"
	"langid/internal/textnorm"
	"langid/internal/trace"
)

// Result is a class paired with its score.
type Result = bayes.Result

// Model is a loaded language identifier.
type Model struct {
	auto      *automaton.Automaton
	canonical *bayes.Data
	active    atomic.Pointer[bayes.Data]
	digest    modelfile.Digest
	opts      options
}

// Settings describes the options that affect scores.
type Settings struct {
	Normalizer string
	Symbols    automaton.SymbolMode
	Form       textnorm.Form
}

// String renders the settings as a stable key fragment.
func (s Settings) String() string {
	return "norm=" + s.Normalizer + ";symbols=" + s.Symbols.String() + ";form=" + s.Form.String()
}

// Load reads a whole model artifact from r.
func Load(r io.Reader, opts ...Option) (*Model, error) {
	o := buildOptions(opts)
	span := trace.Begin(o.tracer, trace.ScopeModel, "load", o.parent)

	tables, digest, err := modelfile.Read(r)
	if err != nil {
		span.Fail(err).End("")
		return nil, err
	}
	m, err := newModel(tables, o)
	if err != nil {
		span.Fail(err).End("")
		return nil, err
	}
	m.digest = digest
	span.WithExtra("classes", strconv.Itoa(m.canonical.NumClasses())).
		WithExtra("features", strconv.Itoa(m.NumFeatures())).
		WithExtra("states", strconv.Itoa(m.NumStates())).
		End(digest.String()[:12])
	return m, nil
}

// LoadBytes is Load over an in-memory artifact.
func LoadBytes(data []byte, opts ...Option) (*Model, error) {
	return Load(bytes.NewReader(data), opts...)
}

// FromTables builds a Model from already decoded tables.
// The tables must not be modified afterwards. Digest is left zero.
func FromTables(t *modelfile.Tables, opts ...Option) (*Model, error) {
	return newModel(t, buildOptions(opts))
}

func newModel(t *modelfile.Tables, o options) (*Model, error) {
	if t == nil {
		return nil, fmt.Errorf("langid: nil tables")
	}
	auto, err := automaton.New(t.NextMove, t.Output, t.NumFeats())
	if err != nil {
		return nil, fmt.Errorf("langid: %w", err)
	}
	data, err := bayes.NewData(t.Classes, t.PTC, t.PC)
	if err != nil {
		return nil, fmt.Errorf("langid: %w", err)
	}
	m := &Model{auto: auto, canonical: data, opts: o}
	m.active.Store(data)
	return m, nil
}

// data is the single accessor for the active tables.
func (m *Model) data() *bayes.Data {
	return m.active.Load()
}

// Restrict limits classification to langs. A nil slice clears any previous
// restriction. On error the active set is left exactly as it was.
func (m *Model) Restrict(langs []string) error {
	span := trace.Begin(m.opts.tracer, trace.ScopeModel, "restrict", m.opts.parent)

	if langs == nil {
		m.active.Store(m.canonical)
		span.End("cleared")
		return nil
	}

	sub, err := m.canonical.Restrict(langs)
	if err != nil {
		span.Fail(err).End("")
		return err
	}
	m.active.Store(sub)
	span.End(strings.Join(sub.Classes, ","))
	return nil
}

// Restricted reports whether a restriction is in effect.
func (m *Model) Restricted() bool {
	return m.data() != m.canonical
}

// Classify returns the most likely class of text. Ties go to the class that
// comes first in the model's class order. ok is false only when no class is
// active.
func (m *Model) Classify(text string) (res Result, ok bool) {
	span := trace.Begin(m.opts.tracer, trace.ScopeText, "classify", m.opts.parent)
	d := m.data()
	scores := m.score(d, text)
	res, ok = bayes.Pick(d.Classes, scores)
	span.End(res.Class)
	return res, ok
}

// Rank returns every active class ordered by descending score.
func (m *Model) Rank(text string) []Result {
	span := trace.Begin(m.opts.tracer, trace.ScopeText, "rank", m.opts.parent)
	d := m.data()
	out := bayes.SortResults(d.Classes, m.score(d, text))
	if len(out) > 0 {
		span.End(out[0].Class)
	} else {
		span.End("")
	}
	return out
}

func (m *Model) score(d *bayes.Data, text string) []float32 {
	fv := m.Tokenize(text)
	return m.opts.norm.Normalize(d.Scores(fv))
}

// Tokenize returns the feature vector of text after the configured
// Unicode normalization.
func (m *Model) Tokenize(text string) []uint32 {
	return m.auto.Tokenize(m.opts.form.Apply(text), m.opts.symbols)
}

// Walk reports every automaton step taken for text.
func (m *Model) Walk(text string, fn func(automaton.Hit)) {
	m.auto.Walk(m.opts.form.Apply(text), m.opts.symbols, fn)
}

// Classes returns the canonical class list.
func (m *Model) Classes() []string {
	return append([]string(nil), m.canonical.Classes...)
}

// ActiveClasses returns the classes currently considered by Classify and Rank.
func (m *Model) ActiveClasses() []string {
	return append([]string(nil), m.data().Classes...)
}

// NumFeatures returns the length of a feature vector.
func (m *Model) NumFeatures() int {
	return m.auto.NumFeatures()
}

// NumStates returns the number of automaton states.
func (m *Model) NumStates() int {
	return m.auto.NumStates()
}

// Digest returns the SHA-256 of the artifact the model was loaded from.
func (m *Model) Digest() modelfile.Digest {
	return m.digest
}

// Settings returns the options that affect scores.
func (m *Model) Settings() Settings {
	return Settings{
		Normalizer: m.opts.norm.Name(),
		Symbols:    m.opts.symbols,
		Form:       m.opts.form,
	}
}
