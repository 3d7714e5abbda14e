package modelfile

import (
	"encoding/binary"
	"math"
)

// cursor reads little-endian values from an in-memory artifact.
// All reads are bounds-checked; a short read leaves Off unchanged.
type cursor struct {
	data []byte
	Off  int
}

func newCursor(data []byte) cursor {
	return cursor{data: data}
}

// Remaining returns the number of unread bytes.
func (c *cursor) Remaining() int {
	return len(c.data) - c.Off
}

// EOF проверяет, прочитан ли весь буфер
func (c *cursor) EOF() bool {
	return c.Off >= len(c.data)
}

// Take returns the next n bytes and advances the cursor.
func (c *cursor) Take(n int) ([]byte, bool) {
	if n < 0 || n > c.Remaining() {
		return nil, false
	}
	b := c.data[c.Off : c.Off+n]
	c.Off += n
	return b, true
}

// U32 reads one unsigned 32-bit integer.
func (c *cursor) U32() (uint32, bool) {
	b, ok := c.Take(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// Float32s reads n consecutive 32-bit floats.
func (c *cursor) Float32s(n int) ([]float32, bool) {
	if n > c.Remaining()/4 {
		return nil, false
	}
	b, ok := c.Take(n * 4)
	if !ok {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, true
}

// Uint16s reads n consecutive unsigned 16-bit integers.
func (c *cursor) Uint16s(n int) ([]uint16, bool) {
	if n > c.Remaining()/2 {
		return nil, false
	}
	b, ok := c.Take(n * 2)
	if !ok {
		return nil, false
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out, true
}

// Int32s reads n consecutive signed 32-bit integers.
func (c *cursor) Int32s(n int) ([]int32, bool) {
	if n > c.Remaining()/4 {
		return nil, false
	}
	b, ok := c.Take(n * 4)
	if !ok {
		return nil, false
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, true
}
