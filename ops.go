package main

import "github.com/moalang/moavm/internal/opcode"

//// Instructions

// Every instruction is a single opcode byte, followed by any immediate
// operands in little-endian order. Binary operations pop their right operand
// b first, then their left operand a, and push a OP b; so operands are
// evaluated in the order they were pushed.

// Any opcode byte not listed here is a no-op.
var vmCodeTable = [256]func(vm *VM){
	opcode.Nop:        (*VM).nop,
	opcode.IntPush:    (*VM).intPush,
	opcode.IntAdd:     (*VM).intAdd,
	opcode.IntSub:     (*VM).intSub,
	opcode.IntMul:     (*VM).intMul,
	opcode.IntDiv:     (*VM).intDiv,
	opcode.IntMod:     (*VM).intMod,
	opcode.IntNeg:     (*VM).intNeg,
	opcode.IntToFloat: (*VM).intToFloat,
	opcode.FloatPush:  (*VM).floatPush,
	opcode.FloatAdd:   (*VM).floatAdd,
	opcode.FloatSub:   (*VM).floatSub,
	opcode.FloatMul:   (*VM).floatMul,
	opcode.FloatDiv:   (*VM).floatDiv,
	opcode.FloatNeg:   (*VM).floatNeg,
	opcode.FloatToInt: (*VM).floatToInt,
	opcode.ErrData:    (*VM).errData,
}

// Code   Name      Function
// 0x00   NOP       nothing
func (vm *VM) nop() {}

//// Integer Operations

// Code   Name      Operand   Function
// 0x01   INT_PUSH  int64     push the operand
func (vm *VM) intPush() { vm.ints.Push(vm.fetchInt64()) }

// Code   Name      Function
// 0x02   INT_ADD   pop b, pop a, push a + b
func (vm *VM) intAdd() { b, a := vm.popInt(), vm.popInt(); vm.ints.Push(a + b) }

// Code   Name      Function
// 0x03   INT_SUB   pop b, pop a, push a - b
func (vm *VM) intSub() { b, a := vm.popInt(), vm.popInt(); vm.ints.Push(a - b) }

// Code   Name      Function
// 0x04   INT_MUL   pop b, pop a, push a * b
func (vm *VM) intMul() { b, a := vm.popInt(), vm.popInt(); vm.ints.Push(a * b) }

// Code   Name      Function
// 0x05   INT_DIV   pop b, pop a; raise if b is zero, otherwise drop the staged
//                  record and push a / b truncated toward zero
func (vm *VM) intDiv() {
	b, a := vm.popInt(), vm.popInt()
	if vm.guard(b != 0) {
		vm.ints.Push(a / b)
	}
}

// Code   Name      Function
// 0x06   INT_MOD   pop b, pop a, push a % b
//
// INT_MOD is not guarded: a zero b is a host fault, not a diagnostic.
func (vm *VM) intMod() { b, a := vm.popInt(), vm.popInt(); vm.ints.Push(a % b) }

// Code   Name      Function
// 0x07   INT_NEG   pop a, push -a; wraps, so the minimum int64 is unchanged
func (vm *VM) intNeg() { vm.ints.Push(-vm.popInt()) }

// Code   Name          Function
// 0x08   INT_TO_FLOAT  pop an int, push it onto the float stack
func (vm *VM) intToFloat() { vm.floats.Push(float64(vm.popInt())) }

//// Float Operations

// Code   Name        Operand   Function
// 0x09   FLOAT_PUSH  float64   push the operand
func (vm *VM) floatPush() { vm.floats.Push(vm.fetchFloat64()) }

// Code   Name        Function
// 0x0A   FLOAT_ADD   pop b, pop a, push a + b
func (vm *VM) floatAdd() { b, a := vm.popFloat(), vm.popFloat(); vm.floats.Push(a + b) }

// Code   Name        Function
// 0x0B   FLOAT_SUB   pop b, pop a, push a - b
func (vm *VM) floatSub() { b, a := vm.popFloat(), vm.popFloat(); vm.floats.Push(a - b) }

// Code   Name        Function
// 0x0C   FLOAT_MUL   pop b, pop a, push a * b
func (vm *VM) floatMul() { b, a := vm.popFloat(), vm.popFloat(); vm.floats.Push(a * b) }

// Code   Name        Function
// 0x0D   FLOAT_DIV   pop b, pop a; raise if b is zero, otherwise drop the
//                    staged record and push a / b
func (vm *VM) floatDiv() {
	b, a := vm.popFloat(), vm.popFloat()
	if vm.guard(b != 0) {
		vm.floats.Push(a / b)
	}
}

// Code   Name        Function
// 0x0E   FLOAT_NEG   pop a, push -a
func (vm *VM) floatNeg() { vm.floats.Push(-vm.popFloat()) }

// Code   Name          Function
// 0x0F   FLOAT_TO_INT  pop a float, push it truncated onto the int stack
func (vm *VM) floatToInt() { vm.ints.Push(truncInt(vm.popFloat())) }

//// Diagnostic Staging

// Code   Name      Operand   Function
// 0x10   ERR_DATA  record    push the record onto the error stack
//
// The record is encoded as a u8-length kind, u32 line, u16 column, u16 span,
// u16-length lexeme, and u16-length file name.
func (vm *VM) errData() {
	rec := vm.fetchRecord()
	vm.logf("stage", "[%v] %v:%v %q", rec.Kind, rec.File, rec.Line, rec.Lexeme)
	vm.errs.Push(rec)
}
