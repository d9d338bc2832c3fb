// Package asm produces and inspects programs: a Builder for emitting
// bytecode directly, a line-oriented text assembler, and a disassembler.
package asm

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/diag"
	"github.com/moalang/moavm/internal/opcode"
)

// Builder accumulates bytecode. Every emitter returns the builder so that
// calls chain; the first encoding error is retained and returned by Bytes.
type Builder struct {
	buf []byte
	err error
}

// Op emits a bare opcode byte.
func (b *Builder) Op(code opcode.Code) *Builder {
	b.buf = append(b.buf, byte(code))
	return b
}

// Raw emits arbitrary bytes, e.g. reserved opcodes or a truncated operand.
func (b *Builder) Raw(data ...byte) *Builder {
	b.buf = append(b.buf, data...)
	return b
}

func (b *Builder) Nop() *Builder        { return b.Op(opcode.Nop) }
func (b *Builder) IntAdd() *Builder     { return b.Op(opcode.IntAdd) }
func (b *Builder) IntSub() *Builder     { return b.Op(opcode.IntSub) }
func (b *Builder) IntMul() *Builder     { return b.Op(opcode.IntMul) }
func (b *Builder) IntDiv() *Builder     { return b.Op(opcode.IntDiv) }
func (b *Builder) IntMod() *Builder     { return b.Op(opcode.IntMod) }
func (b *Builder) IntNeg() *Builder     { return b.Op(opcode.IntNeg) }
func (b *Builder) IntToFloat() *Builder { return b.Op(opcode.IntToFloat) }
func (b *Builder) FloatAdd() *Builder   { return b.Op(opcode.FloatAdd) }
func (b *Builder) FloatSub() *Builder   { return b.Op(opcode.FloatSub) }
func (b *Builder) FloatMul() *Builder   { return b.Op(opcode.FloatMul) }
func (b *Builder) FloatDiv() *Builder   { return b.Op(opcode.FloatDiv) }
func (b *Builder) FloatNeg() *Builder   { return b.Op(opcode.FloatNeg) }
func (b *Builder) FloatToInt() *Builder { return b.Op(opcode.FloatToInt) }

// IntPush emits INT_PUSH v.
func (b *Builder) IntPush(v int64) *Builder {
	b.Op(opcode.IntPush)
	b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(v))
	return b
}

// FloatPush emits FLOAT_PUSH v.
func (b *Builder) FloatPush(v float64) *Builder {
	b.Op(opcode.FloatPush)
	b.buf = binary.LittleEndian.AppendUint64(b.buf, math.Float64bits(v))
	return b
}

// ErrData emits ERR_DATA staging rec.
func (b *Builder) ErrData(rec diag.Record) *Builder {
	buf, err := rec.AppendTo(append(b.buf, byte(opcode.ErrData)))
	if err != nil {
		b.fail(err)
		return b
	}
	b.buf = buf
	return b
}

// Guard emits ERR_DATA rec followed by the guarded instruction code.
func (b *Builder) Guard(rec diag.Record, code opcode.Code) *Builder {
	if !code.Guarded() {
		b.fail(errors.Newf("%v is not a guarded instruction", code))
		return b
	}
	return b.ErrData(rec).Op(code)
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Len returns the number of bytes emitted so far.
func (b *Builder) Len() int { return len(b.buf) }

// Bytes returns the program, or the first encoding error.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	prog := make([]byte, len(b.buf))
	copy(prog, b.buf)
	return prog, nil
}

// MustBytes is like Bytes, but panics on error.
func (b *Builder) MustBytes() []byte {
	prog, err := b.Bytes()
	if err != nil {
		panic(err)
	}
	return prog
}
