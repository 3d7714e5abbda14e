package automaton

// Hit describes one step of a walk.
type Hit struct {
	Symbol  rune    // code point (SymbolRunes) or byte value (SymbolBytes)
	State   uint16  // state after the step
	Emits   []int32 // features fired on entering State
	Skipped bool    // symbol has no column in the table; state unchanged
}

// Walk feeds text through the automaton starting at state 0 and calls fn once per symbol.
func (a *Automaton) Walk(text string, mode SymbolMode, fn func(Hit)) {
	var state uint16
	if mode == SymbolBytes {
		for i := 0; i < len(text); i++ {
			state = a.Step(state, text[i])
			fn(Hit{Symbol: rune(text[i]), State: state, Emits: a.Emits(state)})
		}
		return
	}
	for _, r := range text {
		if r < 0 || r >= AlphabetSize {
			fn(Hit{Symbol: r, State: state, Skipped: true})
			continue
		}
		state = a.Step(state, byte(r))
		fn(Hit{Symbol: r, State: state, Emits: a.Emits(state)})
	}
}

// Tokenize returns the feature vector of text: one hit count per feature index.
// Identical input always yields an identical vector.
func (a *Automaton) Tokenize(text string, mode SymbolMode) []uint32 {
	fv := make([]uint32, a.numFeats)
	var state uint16
	if mode == SymbolBytes {
		for i := 0; i < len(text); i++ {
			state = a.Step(state, text[i])
			a.count(fv, state)
		}
		return fv
	}
	for _, r := range text {
		if r < 0 || r >= AlphabetSize {
			continue
		}
		state = a.Step(state, byte(r))
		a.count(fv, state)
	}
	return fv
}

func (a *Automaton) count(fv []uint32, state uint16) {
	for _, f := range a.emit[state] {
		// New already rejects out-of-range indices
		if f < 0 || int(f) >= len(fv) {
			continue
		}
		fv[f]++
	}
}
