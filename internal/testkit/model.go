// Package testkit builds small synthetic models for tests across packages.
package testkit

import (
	"bytes"
	"os"
	"path/filepath"

	"langid/internal/modelfile"
)

// Feature indices of the synthetic model.
const (
	FeatLetter = 0 // fired on every letter other than z
	FeatZ      = 1 // fired on z
)

// Tables returns a three-class model (de, en, fr) with two features.
//
// State 0 is the start and the state after a space, state 1 follows any
// letter except z, state 2 follows z. "hello world" favours en, runs of z
// favour de, and with no input en has the highest prior.
func Tables() *modelfile.Tables {
	const states = 3
	next := make([]uint16, states*256)
	for s := 0; s < states; s++ {
		for c := 0; c < 256; c++ {
			switch c {
			case ' ', '\n', '\t':
				next[s*256+c] = 0
			case 'z':
				next[s*256+c] = 2
			default:
				next[s*256+c] = 1
			}
		}
	}
	return &modelfile.Tables{
		PTC: [][]float32{
			{-0.8, -0.2, -0.5},
			{-0.1, -3, -1},
		},
		PC:       []float32{-1.2, -0.3, -0.9},
		NextMove: next,
		Classes:  []string{"de", "en", "fr"},
		Output: map[uint16][]int32{
			1: {FeatLetter},
			2: {FeatZ},
		},
	}
}

// ModelBytes encodes Tables.
func ModelBytes() []byte {
	var buf bytes.Buffer
	if err := modelfile.Encode(&buf, Tables()); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteModel stores ModelBytes as dir/model.bin and returns the path.
func WriteModel(dir string) (string, error) {
	path := filepath.Join(dir, "model.bin")
	if err := os.WriteFile(path, ModelBytes(), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
