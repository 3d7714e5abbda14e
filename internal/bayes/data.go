// Package bayes scores feature vectors with a multinomial Naive Bayes model.
package bayes

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrShape reports probability tables whose dimensions disagree.
	ErrShape = errors.New("bayes: inconsistent table shape")
	// ErrNonFinite reports a NaN or infinite log-probability.
	ErrNonFinite = errors.New("bayes: non-finite table value")
)

// Data is one complete set of probability tables. Column j of PTC and entry j
// of PC both belong to Classes[j]. Data is never modified after construction.
type Data struct {
	Classes []string
	PTC     [][]float32 // rows = features, cols = classes
	PC      []float32
}

// NewData checks the shape invariants and wraps the tables.
// Every value must be finite; NaN would make the ranking order undefined.
func NewData(classes []string, ptc [][]float32, pc []float32) (*Data, error) {
	if len(classes) != len(pc) {
		return nil, fmt.Errorf("%w: %d classes, %d priors", ErrShape, len(classes), len(pc))
	}
	for j, v := range pc {
		if !finite(v) {
			return nil, fmt.Errorf("%w: prior of %s is %v", ErrNonFinite, classes[j], v)
		}
	}
	for i, row := range ptc {
		if len(row) != len(classes) {
			return nil, fmt.Errorf("%w: feature row %d has %d columns for %d classes", ErrShape, i, len(row), len(classes))
		}
		for j, v := range row {
			if !finite(v) {
				return nil, fmt.Errorf("%w: feature %d, class %s is %v", ErrNonFinite, i, classes[j], v)
			}
		}
	}
	return &Data{Classes: classes, PTC: ptc, PC: pc}, nil
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NumFeatures returns the number of feature rows.
func (d *Data) NumFeatures() int {
	return len(d.PTC)
}

// NumClasses returns the number of classes.
func (d *Data) NumClasses() int {
	return len(d.Classes)
}

// Index returns the column of class, or -1.
func (d *Data) Index(class string) int {
	return slices.Index(d.Classes, class)
}
