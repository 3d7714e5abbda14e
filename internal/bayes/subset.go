package bayes

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLanguage reports a restriction that leaves fewer than two classes.
	ErrNoLanguage = errors.New("at least two languages are required")
	// ErrUnknownLanguage is matched by every *UnknownLanguageError.
	ErrUnknownLanguage = errors.New("unknown language code")
)

// UnknownLanguageError names the first requested code missing from the model.
type UnknownLanguageError struct {
	Code string
}

func (e *UnknownLanguageError) Error() string {
	return fmt.Sprintf("unknown language code %q", e.Code)
}

// Is makes errors.Is(err, ErrUnknownLanguage) work.
func (e *UnknownLanguageError) Is(target error) bool {
	return target == ErrUnknownLanguage
}

// Restrict derives tables limited to langs. Duplicate codes count once.
//
// Codes are checked in the given order and the first unknown one is reported;
// only then is the two-class minimum enforced. Retained classes keep their
// original relative order, and the feature row count is unchanged.
// The receiver is never modified.
func (d *Data) Restrict(langs []string) (*Data, error) {
	keep := make(map[string]struct{}, len(langs))
	for _, code := range langs {
		if d.Index(code) < 0 {
			return nil, &UnknownLanguageError{Code: code}
		}
		keep[code] = struct{}{}
	}
	if len(keep) < 2 {
		return nil, ErrNoLanguage
	}

	mask := make([]bool, len(d.Classes))
	for i, c := range d.Classes {
		_, mask[i] = keep[c]
	}

	classes := make([]string, 0, len(keep))
	pc := make([]float32, 0, len(keep))
	for i, c := range d.Classes {
		if mask[i] {
			classes = append(classes, c)
			pc = append(pc, d.PC[i])
		}
	}

	ptc := make([][]float32, len(d.PTC))
	for f, row := range d.PTC {
		sub := make([]float32, 0, len(keep))
		for i, v := range row {
			if mask[i] {
				sub = append(sub, v)
			}
		}
		ptc[f] = sub
	}

	return &Data{Classes: classes, PTC: ptc, PC: pc}, nil
}
