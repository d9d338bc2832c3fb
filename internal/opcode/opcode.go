// Package opcode defines the instruction set: one opcode byte, followed by
// the operands its Operand kind describes.
package opcode

import (
	"fmt"
	"strings"
)

// Code is an instruction opcode.
type Code byte

const (
	Nop        Code = 0x00 // --
	IntPush    Code = 0x01 // -- i           operand: int64
	IntAdd     Code = 0x02 // i:a i:b -- i:a+b
	IntSub     Code = 0x03 // i:a i:b -- i:a-b
	IntMul     Code = 0x04 // i:a i:b -- i:a*b
	IntDiv     Code = 0x05 // i:a i:b -- i:a/b   consumes one staged record
	IntMod     Code = 0x06 // i:a i:b -- i:a%b
	IntNeg     Code = 0x07 // i:a -- i:-a
	IntToFloat Code = 0x08 // i:a -- f:a
	FloatPush  Code = 0x09 // -- f           operand: float64
	FloatAdd   Code = 0x0A // f:a f:b -- f:a+b
	FloatSub   Code = 0x0B // f:a f:b -- f:a-b
	FloatMul   Code = 0x0C // f:a f:b -- f:a*b
	FloatDiv   Code = 0x0D // f:a f:b -- f:a/b   consumes one staged record
	FloatNeg   Code = 0x0E // f:a -- f:-a
	FloatToInt Code = 0x0F // f:a -- i:trunc(a)
	ErrData    Code = 0x10 // stages one record  operand: error record

	// Max is the highest defined opcode; every byte above it is a no-op.
	Max = ErrData
)

// Operand describes what follows an opcode byte.
type Operand uint8

const (
	None      Operand = iota
	Int64             // 8 bytes, little-endian two's-complement
	Float64           // 8 bytes, little-endian IEEE-754
	ErrRecord         // see diag.Decode
)

var names = [...]string{
	Nop:        "NOP",
	IntPush:    "INT_PUSH",
	IntAdd:     "INT_ADD",
	IntSub:     "INT_SUB",
	IntMul:     "INT_MUL",
	IntDiv:     "INT_DIV",
	IntMod:     "INT_MOD",
	IntNeg:     "INT_NEG",
	IntToFloat: "INT_TO_FLOAT",
	FloatPush:  "FLOAT_PUSH",
	FloatAdd:   "FLOAT_ADD",
	FloatSub:   "FLOAT_SUB",
	FloatMul:   "FLOAT_MUL",
	FloatDiv:   "FLOAT_DIV",
	FloatNeg:   "FLOAT_NEG",
	FloatToInt: "FLOAT_TO_INT",
	ErrData:    "ERR_DATA",
}

var byName = make(map[string]Code, len(names))

func init() {
	for code, name := range names {
		byName[name] = Code(code)
	}
}

// Known returns true if c is a defined opcode.
func (c Code) Known() bool { return c <= Max }

// Guarded returns true for instructions that may raise a diagnostic, and so
// expect an ERR_DATA record to be staged before them.
func (c Code) Guarded() bool { return c == IntDiv || c == FloatDiv }

// Operand returns the kind of operand following c.
func (c Code) Operand() Operand {
	switch c {
	case IntPush:
		return Int64
	case FloatPush:
		return Float64
	case ErrData:
		return ErrRecord
	}
	return None
}

func (c Code) String() string {
	if c.Known() {
		return names[c]
	}
	return fmt.Sprintf("0x%02X", byte(c))
}

// Lookup finds an opcode by mnemonic, ignoring case.
func Lookup(mnemonic string) (Code, bool) {
	code, ok := byName[strings.ToUpper(mnemonic)]
	return code, ok
}
