package main

import (
	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/cursor"
	"github.com/moalang/moavm/internal/diag"
	"github.com/moalang/moavm/internal/flushio"
	"github.com/moalang/moavm/internal/opcode"
	"github.com/moalang/moavm/internal/stack"
)

//// Environment

// VM executes a flat bytecode program. The machine has three stacks: one of
// 64-bit integers, one of 64-bit floats, and one of staged error records.
// Instructions are decoded one at a time from the program through a cursor
// that only moves forward; there are no jumps.
type VM struct {
	logging
	out flushio.WriteFlusher

	prog  *cursor.Cursor
	state State

	// offset and opcode of the instruction being executed, used to locate
	// faults
	at   int
	code opcode.Code

	ints   stack.Stack[int64]
	floats stack.Stack[float64]

	// The error stack holds records staged by ERR_DATA ahead of an
	// instruction that may fail. A guarded instruction consumes exactly one
	// record: it renders it when its guard fails, and discards it otherwise.
	errs diag.Stack

	// err retains any contract violation; once set, Run will not resume.
	err error
}

// State is the run state of a VM.
type State uint8

// A VM starts Running, and becomes Halted only after reporting a diagnostic.
const (
	Running State = iota
	Halted
)

func (st State) String() string {
	switch st {
	case Running:
		return "running"
	case Halted:
		return "halted"
	}
	return "invalid"
}

// ErrContractViolation marks errors caused by a malformed program: a
// truncated instruction, a pop on an empty stack, a guarded instruction with
// nothing staged, or a host arithmetic fault.
var ErrContractViolation = errors.New("program contract violation")
