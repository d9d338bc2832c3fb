// Package diag holds the source-position records staged by ERR_DATA, the
// stack they wait on, and the caret-style report rendered when one is raised.
package diag

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/cursor"
	"github.com/moalang/moavm/internal/stack"
)

// Record locates a guarded instruction in its original source.
type Record struct {
	Kind   string // e.g. "ZeroDivisionError"
	Line   uint32
	Column uint16
	Span   uint16 // caret count
	Lexeme string // the source line text shown under the file name
	File   string
}

// Decode reads an ERR_DATA payload: a u8-length-prefixed kind, u32 line,
// u16 column, u16 span, then u16-length-prefixed lexeme and file texts.
func Decode(c *cursor.Cursor) (rec Record, err error) {
	var n8 uint8
	if n8, err = c.U8(); err != nil {
		return rec, errors.Wrap(err, "kind length")
	}
	rec.Kind = c.UTF8(int(n8))
	if rec.Line, err = c.U32(); err != nil {
		return rec, errors.Wrap(err, "line")
	}
	if rec.Column, err = c.U16(); err != nil {
		return rec, errors.Wrap(err, "column")
	}
	if rec.Span, err = c.U16(); err != nil {
		return rec, errors.Wrap(err, "span")
	}
	var n16 uint16
	if n16, err = c.U16(); err != nil {
		return rec, errors.Wrap(err, "lexeme length")
	}
	rec.Lexeme = c.UTF8(int(n16))
	if n16, err = c.U16(); err != nil {
		return rec, errors.Wrap(err, "file length")
	}
	rec.File = c.UTF8(int(n16))
	return rec, nil
}

// AppendTo appends the ERR_DATA payload encoding of rec (without the opcode
// byte) to buf. Texts too long for their length prefix are an error.
func (rec Record) AppendTo(buf []byte) ([]byte, error) {
	if len(rec.Kind) > math.MaxUint8 {
		return buf, errors.Newf("error kind is %d bytes, limit %d", len(rec.Kind), math.MaxUint8)
	}
	if len(rec.Lexeme) > math.MaxUint16 {
		return buf, errors.Newf("lexeme is %d bytes, limit %d", len(rec.Lexeme), math.MaxUint16)
	}
	if len(rec.File) > math.MaxUint16 {
		return buf, errors.Newf("file name is %d bytes, limit %d", len(rec.File), math.MaxUint16)
	}
	buf = append(buf, uint8(len(rec.Kind)))
	buf = append(buf, rec.Kind...)
	buf = binary.LittleEndian.AppendUint32(buf, rec.Line)
	buf = binary.LittleEndian.AppendUint16(buf, rec.Column)
	buf = binary.LittleEndian.AppendUint16(buf, rec.Span)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(rec.Lexeme)))
	buf = append(buf, rec.Lexeme...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(rec.File)))
	buf = append(buf, rec.File...)
	return buf, nil
}

// ErrNoRecord is returned when a record must be consumed but none is staged.
var ErrNoRecord = errors.New("no staged error record")

// Stack holds records staged ahead of the guarded instructions that consume
// them; the zero value is empty.
type Stack struct {
	recs stack.Stack[Record]
}

// Push stages rec.
func (s *Stack) Push(rec Record) { s.recs.Push(rec) }

// Pop consumes the most recently staged record.
func (s *Stack) Pop() (Record, error) {
	rec, err := s.recs.Pop()
	if errors.Is(err, stack.ErrUnderflow) {
		return rec, ErrNoRecord
	}
	return rec, err
}

// Len returns the number of staged records.
func (s *Stack) Len() int { return s.recs.Len() }

// Records returns a copy of the staged records, oldest first.
func (s *Stack) Records() []Record { return s.recs.Values() }
