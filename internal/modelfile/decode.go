package modelfile

import (
	"fmt"
	"io"
	"unicode/utf8"

	"fortio.org/safecast"
)

// Read consumes r to the end and decodes the artifact.
func Read(r io.Reader) (*Tables, Digest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Digest{}, fmt.Errorf("modelfile: read: %w", err)
	}
	t, err := Decode(data)
	if err != nil {
		return nil, Digest{}, err
	}
	return t, DigestOf(data), nil
}

// Decode parses a complete artifact. It never returns partially filled tables.
func Decode(data []byte) (*Tables, error) {
	d := decoder{c: newCursor(data)}

	rows, err := d.length("nb_ptc.rows")
	if err != nil {
		return nil, err
	}
	cols, err := d.length("nb_ptc.cols")
	if err != nil {
		return nil, err
	}
	if rows > 0 && cols == 0 {
		return nil, decodeErr("nb_ptc", d.c.Off, fmt.Errorf("%w: %d rows of zero columns", ErrDimension, rows))
	}
	total, ok := mulLen(rows, cols)
	if !ok {
		return nil, decodeErr("nb_ptc", d.c.Off, ErrTruncated)
	}
	flat, err := d.float32s("nb_ptc", total)
	if err != nil {
		return nil, err
	}
	ptc := make([][]float32, rows)
	for i := range ptc {
		ptc[i] = flat[i*cols : (i+1)*cols : (i+1)*cols]
	}

	pcLen, err := d.length("nb_pc.len")
	if err != nil {
		return nil, err
	}
	pc, err := d.float32s("nb_pc", pcLen)
	if err != nil {
		return nil, err
	}

	nmLen, err := d.length("tk_nextmove.len")
	if err != nil {
		return nil, err
	}
	nextMove, ok := d.c.Uint16s(nmLen)
	if !ok {
		return nil, decodeErr("tk_nextmove", d.c.Off, ErrTruncated)
	}

	classes, err := d.classes()
	if err != nil {
		return nil, err
	}

	output, err := d.output()
	if err != nil {
		return nil, err
	}

	if !d.c.EOF() {
		return nil, decodeErr("end", d.c.Off, fmt.Errorf("%w: %d", ErrTrailingBytes, d.c.Remaining()))
	}

	t := &Tables{
		PTC:      ptc,
		PC:       pc,
		NextMove: nextMove,
		Classes:  classes,
		Output:   output,
	}
	if err := checkDimensions(t, cols); err != nil {
		return nil, decodeErr("dimensions", d.c.Off, err)
	}
	return t, nil
}

type decoder struct {
	c cursor
}

// length reads a u32 count and converts it to int.
func (d *decoder) length(field string) (int, error) {
	off := d.c.Off
	v, ok := d.c.U32()
	if !ok {
		return 0, decodeErr(field, off, ErrTruncated)
	}
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, decodeErr(field, off, fmt.Errorf("%w: %w", ErrDimension, err))
	}
	return n, nil
}

func (d *decoder) float32s(field string, n int) ([]float32, error) {
	off := d.c.Off
	vals, ok := d.c.Float32s(n)
	if !ok {
		return nil, decodeErr(field, off, ErrTruncated)
	}
	return vals, nil
}

func (d *decoder) classes() ([]string, error) {
	n, err := d.length("nb_classes.len")
	if err != nil {
		return nil, err
	}
	// каждый класс занимает минимум 4 байта префикса
	if n > d.c.Remaining()/4 {
		return nil, decodeErr("nb_classes", d.c.Off, ErrTruncated)
	}
	classes := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		field := fmt.Sprintf("nb_classes[%d]", i)
		size, err := d.length(field)
		if err != nil {
			return nil, err
		}
		off := d.c.Off
		raw, ok := d.c.Take(size)
		if !ok {
			return nil, decodeErr(field, off, ErrTruncated)
		}
		if !utf8.Valid(raw) {
			return nil, decodeErr(field, off, ErrInvalidUTF8)
		}
		name := string(raw)
		if _, dup := seen[name]; dup {
			return nil, decodeErr(field, off, fmt.Errorf("%w: %q", ErrDuplicateClass, name))
		}
		seen[name] = struct{}{}
		classes = append(classes, name)
	}
	return classes, nil
}

func (d *decoder) output() (map[uint16][]int32, error) {
	n, err := d.length("tk_output.len")
	if err != nil {
		return nil, err
	}
	// key + len prefix per entry
	if n > d.c.Remaining()/8 {
		return nil, decodeErr("tk_output", d.c.Off, ErrTruncated)
	}
	output := make(map[uint16][]int32, n)
	for i := 0; i < n; i++ {
		field := fmt.Sprintf("tk_output[%d]", i)
		off := d.c.Off
		rawKey, ok := d.c.U32()
		if !ok {
			return nil, decodeErr(field+".key", off, ErrTruncated)
		}
		key, err := safecast.Conv[uint16](rawKey)
		if err != nil {
			return nil, decodeErr(field+".key", off, fmt.Errorf("%w: %d", ErrStateKey, rawKey))
		}
		size, err := d.length(field + ".len")
		if err != nil {
			return nil, err
		}
		valOff := d.c.Off
		vals, ok := d.c.Int32s(size)
		if !ok {
			return nil, decodeErr(field, valOff, ErrTruncated)
		}
		// a repeated key replaces the earlier entry
		output[key] = vals
	}
	return output, nil
}

func checkDimensions(t *Tables, cols int) error {
	if len(t.PC) == 0 {
		return fmt.Errorf("%w: empty nb_pc, feature count is undefined", ErrDimension)
	}
	if len(t.Classes) != len(t.PC) {
		return fmt.Errorf("%w: %d classes but %d priors", ErrDimension, len(t.Classes), len(t.PC))
	}
	if cols != len(t.PC) {
		return fmt.Errorf("%w: nb_ptc has %d columns for %d classes", ErrDimension, cols, len(t.PC))
	}
	total := len(t.PTC) * cols
	if total%len(t.PC) != 0 {
		return fmt.Errorf("%w: %d likelihoods do not divide into %d classes", ErrDimension, total, len(t.PC))
	}
	return nil
}

func mulLen(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || p < 0 {
		return 0, false
	}
	return p, true
}
