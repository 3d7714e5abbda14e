package automaton

import (
	"errors"
	"reflect"
	"testing"
)

// testAutomaton: 0 -h-> 1 -e-> 2, 0 -w-> 2, 0 -é-> 1; every other edge returns to 0.
// State 1 fires feature 0, state 2 fires 1, 2, 1.
func testAutomaton(t *testing.T) *Automaton {
	t.Helper()
	next := make([]uint16, 3*AlphabetSize)
	next['h'] = 1
	next['w'] = 2
	next[0xE9] = 1
	next[AlphabetSize+'e'] = 2
	a, err := New(next, map[uint16][]int32{
		1: {0},
		2: {1, 2, 1},
	}, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestTokenizeCountsEmissions(t *testing.T) {
	a := testAutomaton(t)
	cases := []struct {
		text string
		want []uint32
	}{
		{"", []uint32{0, 0, 0}},
		{"h", []uint32{1, 0, 0}},
		{"he", []uint32{1, 2, 1}},
		{"hew", []uint32{1, 2, 1}},
		{"he he", []uint32{2, 4, 2}},
		{"xyz", []uint32{0, 0, 0}},
	}
	for _, tc := range cases {
		got := a.Tokenize(tc.text, SymbolRunes)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestTokenizeIsDeterministic(t *testing.T) {
	a := testAutomaton(t)
	base := a.Tokenize("hello wide world", SymbolRunes)
	for i := 0; i < 10; i++ {
		if got := a.Tokenize("hello wide world", SymbolRunes); !reflect.DeepEqual(got, base) {
			t.Fatalf("run %d: got %v, want %v", i, got, base)
		}
	}
}

func TestTokenizeSymbolModes(t *testing.T) {
	a := testAutomaton(t)

	// U+00E9 is a single symbol in rune mode and two bytes (0xC3 0xA9) in byte mode.
	if got := a.Tokenize("é", SymbolRunes); !reflect.DeepEqual(got, []uint32{1, 0, 0}) {
		t.Fatalf("rune mode: got %v", got)
	}
	if got := a.Tokenize("é", SymbolBytes); !reflect.DeepEqual(got, []uint32{0, 0, 0}) {
		t.Fatalf("byte mode: got %v", got)
	}
	// ASCII walks the same way in both modes.
	if r, b := a.Tokenize("hew", SymbolRunes), a.Tokenize("hew", SymbolBytes); !reflect.DeepEqual(r, b) {
		t.Fatalf("ASCII differs between modes: %v vs %v", r, b)
	}
}

func TestTokenizeSkipsWideCodePoints(t *testing.T) {
	a := testAutomaton(t)
	got := a.Tokenize("h€e", SymbolRunes)
	want := a.Tokenize("he", SymbolRunes)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("wide code point changed state: got %v, want %v", got, want)
	}
}

func TestWalkReportsEverySymbol(t *testing.T) {
	a := testAutomaton(t)
	var hits []Hit
	a.Walk("h€e", SymbolRunes, func(h Hit) { hits = append(hits, h) })
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].State != 1 || !reflect.DeepEqual(hits[0].Emits, []int32{0}) {
		t.Fatalf("hit 0 = %+v", hits[0])
	}
	if !hits[1].Skipped || hits[1].State != 1 {
		t.Fatalf("hit 1 should be a skip in state 1: %+v", hits[1])
	}
	if hits[2].State != 2 || len(hits[2].Emits) != 3 {
		t.Fatalf("hit 2 = %+v", hits[2])
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	valid := func() []uint16 { return make([]uint16, 2*AlphabetSize) }
	cases := []struct {
		name     string
		next     []uint16
		output   map[uint16][]int32
		numFeats int
	}{
		{"empty table", nil, nil, 1},
		{"partial row", make([]uint16, AlphabetSize+1), nil, 1},
		{"target out of range", func() []uint16 { n := valid(); n[5] = 2; return n }(), nil, 1},
		{"feature too large", valid(), map[uint16][]int32{1: {3}}, 3},
		{"negative feature", valid(), map[uint16][]int32{0: {-1}}, 3},
		{"negative count", valid(), nil, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.next, tc.output, tc.numFeats)
			if !errors.Is(err, ErrInvalidTable) {
				t.Fatalf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestNewIgnoresUnreachableEmissions(t *testing.T) {
	a, err := New(make([]uint16, AlphabetSize), map[uint16][]int32{7: {99}}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.NumStates() != 1 || a.NumFeatures() != 1 {
		t.Fatalf("unexpected shape: %d states, %d features", a.NumStates(), a.NumFeatures())
	}
	if a.Emits(7) != nil {
		t.Fatal("unreachable state should emit nothing")
	}
}

func TestParseSymbolMode(t *testing.T) {
	for _, s := range []string{"runes", "bytes"} {
		m, err := ParseSymbolMode(s)
		if err != nil {
			t.Fatalf("ParseSymbolMode(%q): %v", s, err)
		}
		if m.String() != s {
			t.Fatalf("round trip %q -> %q", s, m.String())
		}
	}
	if _, err := ParseSymbolMode("words"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("hello world")
	f.Add("h€é\x00\xff")
	f.Fuzz(func(t *testing.T, text string) {
		next := make([]uint16, 3*AlphabetSize)
		for i := range next {
			next[i] = uint16(i % 3)
		}
		a, err := New(next, map[uint16][]int32{1: {0, 1}, 2: {1}}, 2)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for _, mode := range []SymbolMode{SymbolRunes, SymbolBytes} {
			fv := a.Tokenize(text, mode)
			if len(fv) != 2 {
				t.Fatalf("vector length %d, want 2", len(fv))
			}
			if fv[0] > fv[1] {
				t.Fatalf("feature 0 fires only with feature 1: %v", fv)
			}
		}
	})
}
