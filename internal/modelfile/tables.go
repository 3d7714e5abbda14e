// Package modelfile reads and writes the binary language model artifact.
//
// Layout, all integers little-endian:
//
//	u32 rows, u32 cols, rows*cols f32     nb_ptc, row-major, rows = features
//	u32 n, n f32                          nb_pc
//	u32 n, n u16                          tk_nextmove, indexed state*256+symbol
//	u32 n, n * (u32 len, len bytes)       nb_classes, UTF-8
//	u32 n, n * (u32 key, u32 len, len i32) tk_output
//
// Nothing may follow the last field.
package modelfile

import (
	"crypto/sha256"
	"encoding/hex"
)

// Tables is the decoded content of a model artifact.
type Tables struct {
	// PTC is the per-feature, per-class log-likelihood table.
	PTC [][]float32
	// PC is the per-class log-prior vector.
	PC []float32
	// NextMove is the flattened automaton transition table.
	NextMove []uint16
	// Classes is the ordered class list; it defines the column order of PTC and PC.
	Classes []string
	// Output maps an automaton state to the feature indices fired on entering it.
	Output map[uint16][]int32
}

// NumFeats returns the feature count derived from the table sizes.
func (t *Tables) NumFeats() int {
	if t == nil || len(t.PC) == 0 {
		return 0
	}
	total := 0
	for _, row := range t.PTC {
		total += len(row)
	}
	return total / len(t.PC)
}

// NumStates returns the number of automaton states.
func (t *Tables) NumStates() int {
	if t == nil {
		return 0
	}
	return len(t.NextMove) / 256
}

// Digest is a SHA-256 fingerprint of an artifact.
type Digest [32]byte

// DigestOf hashes raw artifact bytes.
func DigestOf(data []byte) Digest {
	return sha256.Sum256(data)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest was never set.
func (d Digest) IsZero() bool {
	return d == Digest{}
}
