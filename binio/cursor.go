// Package binio provides a byte cursor which reads and writes
// fixed-width little-endian primitives over an in-memory buffer.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrUnexpectedEndOfData indicates a read which needs more bytes than remain.
var ErrUnexpectedEndOfData = errors.New("binio: unexpected end of data")

var byteOrder = binary.LittleEndian

// Cursor is a read/write position over a byte buffer.
// Reads never go beyond the buffer and do not advance on failure.
// Writes overwrite bytes at the position and grow the buffer when needed.
//
// zero value is an empty buffer ready for writing.
type Cursor struct {
	buf []byte
	pos int
}

// NewReader returns a Cursor positioned at the start of p.
// p is not copied.
func NewReader(p []byte) *Cursor { return &Cursor{buf: p} }

// NewWriter returns an empty Cursor whose buffer has capacity sizeHint.
func NewWriter(sizeHint int) *Cursor {
	return &Cursor{buf: make([]byte, 0, sizeHint)}
}

// Pos returns current position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns total length of the buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns number of bytes after current position.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Bytes returns the whole buffer. It shares memory with the Cursor.
func (c *Cursor) Bytes() []byte { return c.buf }

// Seek moves position to pos. pos must be in [0, Len()].
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("%w: seek to %d over %d bytes", ErrUnexpectedEndOfData, pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

// take returns next n bytes and advances position.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, fmt.Errorf("%w: want %d bytes at offset %d, have %d",
			ErrUnexpectedEndOfData, n, c.pos, c.Remaining())
	}
	p := c.buf[c.pos : c.pos+n]
	c.pos += n
	return p, nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	p, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadU32 reads a little endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	p, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(p), nil
}

// ReadU64 reads a little endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	p, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint64(p), nil
}

// ReadF64 reads an IEEE 754 float64 stored as ReadU64.
func (c *Cursor) ReadF64() (float64, error) {
	u, err := c.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// ReadBool reads one byte. any non zero value is true.
func (c *Cursor) ReadBool() (bool, error) {
	b, err := c.ReadU8()
	return b != 0, err
}

// ReadString reads uint32 byte length followed by that many bytes.
// On failure position is restored to the length prefix.
func (c *Cursor) ReadString() (string, error) {
	start := c.pos
	n, err := c.ReadU32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(c.Remaining()) {
		c.pos = start
		return "", fmt.Errorf("%w: string of %d bytes at offset %d, have %d",
			ErrUnexpectedEndOfData, n, start, c.Remaining()-4)
	}
	p, _ := c.take(int(n))
	return string(p), nil
}

// ReadBytes returns a copy of next n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	p, err := c.take(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

// Rest returns a copy of all bytes after position and moves to the end.
func (c *Cursor) Rest() []byte {
	p, _ := c.ReadBytes(c.Remaining())
	return p
}

// put returns a writable window of n bytes at position, growing the buffer.
func (c *Cursor) put(n int) []byte {
	if end := c.pos + n; end > len(c.buf) {
		if end > cap(c.buf) {
			grown := make([]byte, len(c.buf), 2*cap(c.buf)+n)
			copy(grown, c.buf)
			c.buf = grown
		}
		c.buf = c.buf[:end]
	}
	p := c.buf[c.pos : c.pos+n]
	c.pos += n
	return p
}

// WriteU8 writes one byte at position, overwriting or growing.
func (c *Cursor) WriteU8(v uint8) { c.put(1)[0] = v }

// WriteU32 writes v in little endian.
func (c *Cursor) WriteU32(v uint32) { byteOrder.PutUint32(c.put(4), v) }

// WriteU64 writes v in little endian.
func (c *Cursor) WriteU64(v uint64) { byteOrder.PutUint64(c.put(8), v) }

// WriteF64 writes bits of v as WriteU64.
func (c *Cursor) WriteF64(v float64) { c.WriteU64(math.Float64bits(v)) }

// WriteBool writes 1 for true, 0 for false.
func (c *Cursor) WriteBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	c.WriteU8(b)
}

// WriteString writes uint32 byte length and the bytes of s.
func (c *Cursor) WriteString(s string) {
	c.WriteU32(uint32(len(s)))
	copy(c.put(len(s)), s)
}

// WriteBytes writes p as is, without length.
func (c *Cursor) WriteBytes(p []byte) { copy(c.put(len(p)), p) }
