// Package cursor decodes little-endian fixed-width values and length-prefixed
// text from an immutable program buffer, advancing a single position marker.
package cursor

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrOutOfBounds indicates that a fixed-width fetch needed more bytes than
// remain in the program.
var ErrOutOfBounds = errors.New("read past end of program")

// Cursor reads forward through a program buffer. The position only ever
// increases, and never passes the end of the buffer.
type Cursor struct {
	buf []byte
	pos int
}

// New returns a cursor positioned at the start of buf. The buffer is not
// copied and must not be modified while the cursor is in use.
func New(buf []byte) *Cursor { return &Cursor{buf: buf} }

// Pos returns the offset of the next byte to decode.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total length of the program.
func (c *Cursor) Len() int { return len(c.buf) }

// Done returns true once every byte has been consumed.
func (c *Cursor) Done() bool { return c.pos >= len(c.buf) }

func (c *Cursor) take(n int) ([]byte, error) {
	end := c.pos + n
	if end > len(c.buf) {
		return nil, errors.Wrapf(ErrOutOfBounds, "%d-byte fetch at %d/%d", n, c.pos, len(c.buf))
	}
	b := c.buf[c.pos:end]
	c.pos = end
	return b, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int64 reads a little-endian two's-complement int64.
func (c *Cursor) Int64() (int64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// Float64 reads a little-endian IEEE-754 double.
func (c *Cursor) Float64() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// UTF8 reads n bytes as text, replacing ill-formed sequences with U+FFFD.
//
// Unlike the fixed-width fetches, UTF8 never fails: if fewer than n bytes
// remain it returns "" and leaves the position where it was.
func (c *Cursor) UTF8(n int) string {
	if n < 0 || c.pos+n > len(c.buf) {
		return ""
	}
	b, _ := c.take(n)
	s, _, err := transform.Bytes(runes.ReplaceIllFormed(), b)
	if err != nil {
		// the replacing transformer cannot fail on complete input
		return string(b)
	}
	return string(s)
}
