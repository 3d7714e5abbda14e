// Package automaton turns text into feature counts by walking a byte-alphabet DFA.
//
// The transition table is flat: the successor of state s on symbol c is
// next[s<<8 + c]. Entering a state fires that state's emission list; the
// feature vector is the per-index hit count over the whole walk.
package automaton

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// AlphabetSize is the number of symbols per state row.
const AlphabetSize = 256

// ErrInvalidTable reports an automaton that cannot be walked safely.
var ErrInvalidTable = errors.New("automaton: invalid table")

// SymbolMode selects what the walk treats as one input symbol.
type SymbolMode uint8

const (
	// SymbolRunes feeds each code point as the symbol. Code points outside the
	// 256-symbol alphabet leave the state unchanged.
	SymbolRunes SymbolMode = iota
	// SymbolBytes feeds the UTF-8 encoding one byte at a time.
	SymbolBytes
)

// String returns the string representation of SymbolMode.
func (m SymbolMode) String() string {
	switch m {
	case SymbolRunes:
		return "runes"
	case SymbolBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// ParseSymbolMode converts a string to SymbolMode.
func ParseSymbolMode(s string) (SymbolMode, error) {
	switch s {
	case "", "runes":
		return SymbolRunes, nil
	case "bytes":
		return SymbolBytes, nil
	default:
		return SymbolRunes, fmt.Errorf("invalid symbol mode: %q (expected: runes|bytes)", s)
	}
}

// Automaton is immutable after New and safe for concurrent use.
type Automaton struct {
	next     []uint16
	emit     [][]int32 // dense by state; nil = fires nothing
	numFeats int
}

// New validates the tables and builds an Automaton.
// Every transition must target an existing state and every emitted feature
// index must lie in [0, numFeats). Emission entries for states beyond the
// table are unreachable and dropped.
func New(next []uint16, output map[uint16][]int32, numFeats int) (*Automaton, error) {
	if len(next) == 0 || len(next)%AlphabetSize != 0 {
		return nil, fmt.Errorf("%w: transition table length %d is not a positive multiple of %d", ErrInvalidTable, len(next), AlphabetSize)
	}
	if numFeats < 0 {
		return nil, fmt.Errorf("%w: negative feature count %d", ErrInvalidTable, numFeats)
	}
	numStates := len(next) / AlphabetSize
	for i, s := range next {
		if int(s) >= numStates {
			return nil, fmt.Errorf("%w: transition %d targets state %d of %d", ErrInvalidTable, i, s, numStates)
		}
	}

	emit := make([][]int32, numStates)
	for state, feats := range output {
		if int(state) >= numStates {
			continue
		}
		for _, f := range feats {
			idx, err := safecast.Conv[int](f)
			if err != nil || idx < 0 || idx >= numFeats {
				return nil, fmt.Errorf("%w: state %d emits feature %d outside [0, %d)", ErrInvalidTable, state, f, numFeats)
			}
		}
		if len(feats) > 0 {
			emit[state] = feats
		}
	}

	return &Automaton{next: next, emit: emit, numFeats: numFeats}, nil
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int {
	return len(a.next) / AlphabetSize
}

// NumFeatures returns the length of produced feature vectors.
func (a *Automaton) NumFeatures() int {
	return a.numFeats
}

// Step returns the successor of state on symbol.
func (a *Automaton) Step(state uint16, symbol byte) uint16 {
	return a.next[int(state)<<8+int(symbol)]
}

// Emits returns the features fired on entering state. The slice must not be modified.
func (a *Automaton) Emits(state uint16) []int32 {
	if int(state) >= len(a.emit) {
		return nil
	}
	return a.emit[state]
}
