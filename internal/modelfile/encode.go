package modelfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"fortio.org/safecast"
)

// Encode writes t in the artifact layout. Emission entries are written in
// ascending state order, so encoding the same tables twice yields identical bytes.
func Encode(w io.Writer, t *Tables) error {
	if t == nil {
		return fmt.Errorf("modelfile: encode: nil tables")
	}
	cols := len(t.PC)
	if len(t.PTC) > 0 {
		cols = len(t.PTC[0])
	}
	for i, row := range t.PTC {
		if len(row) != cols {
			return fmt.Errorf("modelfile: encode: nb_ptc row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	e := encoder{}
	if err := e.length(len(t.PTC)); err != nil {
		return err
	}
	if err := e.length(cols); err != nil {
		return err
	}
	for _, row := range t.PTC {
		e.float32s(row)
	}

	if err := e.length(len(t.PC)); err != nil {
		return err
	}
	e.float32s(t.PC)

	if err := e.length(len(t.NextMove)); err != nil {
		return err
	}
	for _, v := range t.NextMove {
		e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
	}

	if err := e.length(len(t.Classes)); err != nil {
		return err
	}
	for _, name := range t.Classes {
		if err := e.length(len(name)); err != nil {
			return err
		}
		e.buf = append(e.buf, name...)
	}

	if err := e.length(len(t.Output)); err != nil {
		return err
	}
	for _, key := range slices.Sorted(maps.Keys(t.Output)) {
		vals := t.Output[key]
		e.u32(uint32(key))
		if err := e.length(len(vals)); err != nil {
			return err
		}
		for _, v := range vals {
			e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
		}
	}

	if _, err := w.Write(e.buf); err != nil {
		return fmt.Errorf("modelfile: encode: %w", err)
	}
	return nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) u32(v uint32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) length(n int) error {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return fmt.Errorf("modelfile: encode: length %d overflows u32: %w", n, err)
	}
	e.u32(v)
	return nil
}

func (e *encoder) float32s(vals []float32) {
	for _, v := range vals {
		e.u32(math.Float32bits(v))
	}
}
