package testkit

import (
	"fmt"

	"langid/internal/modelfile"
)

// CheckTables verifies the structural invariants every loaded model holds:
// 1) PTC rows all have len(Classes) columns and PC matches Classes
// 2) every transition targets an existing state
// 3) every emitted feature index is within [0, NumFeats)
func CheckTables(t *modelfile.Tables) error {
	if t == nil {
		return fmt.Errorf("nil tables")
	}
	if len(t.PC) != len(t.Classes) {
		return fmt.Errorf("%d priors for %d classes", len(t.PC), len(t.Classes))
	}
	for i, row := range t.PTC {
		if len(row) != len(t.Classes) {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(row), len(t.Classes))
		}
	}

	states := t.NumStates()
	if states == 0 || len(t.NextMove)%256 != 0 {
		return fmt.Errorf("transition table has %d entries", len(t.NextMove))
	}
	for i, s := range t.NextMove {
		if int(s) >= states {
			return fmt.Errorf("transition %d targets state %d of %d", i, s, states)
		}
	}

	feats := t.NumFeats()
	for state, fs := range t.Output {
		for _, f := range fs {
			if f < 0 || int(f) >= feats {
				return fmt.Errorf("state %d emits feature %d of %d", state, f, feats)
			}
		}
	}
	return nil
}

// CheckFeatureVector verifies that fv has one slot per feature and that its
// total equals the number of emissions counted independently.
func CheckFeatureVector(fv []uint32, numFeats int, emissions int) error {
	if len(fv) != numFeats {
		return fmt.Errorf("feature vector has %d slots, want %d", len(fv), numFeats)
	}
	total := 0
	for _, c := range fv {
		total += int(c)
	}
	if total != emissions {
		return fmt.Errorf("feature vector counts %d hits, walk emitted %d", total, emissions)
	}
	return nil
}
