package main

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/diag"
	"github.com/moalang/moavm/internal/opcode"
)

func (vm *VM) halt(err error) {
	if ferr := vm.out.Flush(); err == nil {
		err = ferr
	}
	vm.logf("halt", "error: %v", err)
	panic(haltError{err})
}

func (vm *VM) haltif(err error) {
	if err != nil {
		vm.halt(err)
	}
}

// fault halts with err located at the executing instruction, and marked as a
// contract violation.
func (vm *VM) fault(err error) {
	vm.halt(errors.Mark(errors.Wrapf(err, "%v @%v", vm.code, vm.at), ErrContractViolation))
}

func (vm *VM) faultif(err error) {
	if err != nil {
		vm.fault(err)
	}
}

func (vm *VM) popInt() int64 {
	val, err := vm.ints.Pop()
	if err != nil {
		vm.fault(errors.Wrap(err, "int stack"))
	}
	return val
}

func (vm *VM) popFloat() float64 {
	val, err := vm.floats.Pop()
	if err != nil {
		vm.fault(errors.Wrap(err, "float stack"))
	}
	return val
}

func (vm *VM) fetchInt64() int64 {
	val, err := vm.prog.Int64()
	vm.faultif(err)
	return val
}

func (vm *VM) fetchFloat64() float64 {
	val, err := vm.prog.Float64()
	vm.faultif(err)
	return val
}

func (vm *VM) fetchRecord() diag.Record {
	rec, err := diag.Decode(vm.prog)
	vm.faultif(err)
	return rec
}

// guard consumes the record staged for the executing instruction. If ok is
// false the record is reported and the VM halts; guard returns ok.
func (vm *VM) guard(ok bool) bool {
	if !ok {
		vm.raise("Division by zero")
		return false
	}
	_, err := vm.errs.Pop()
	vm.faultif(err)
	return true
}

// raise reports the most recently staged record with message, and halts the
// VM for good.
func (vm *VM) raise(message string) {
	rec, err := vm.errs.Pop()
	vm.faultif(err)
	vm.logf("raise", "[%v] %v", rec.Kind, message)
	vm.state = Halted
	vm.haltif(diag.Report(vm.out, rec, message))
	vm.haltif(vm.out.Flush())
}

// truncInt converts f toward zero, saturating at the int64 range; NaN
// becomes 0.
func truncInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= 1<<63:
		return math.MaxInt64
	case f <= -1<<63:
		return math.MinInt64
	}
	return int64(f)
}

func (vm *VM) exec(ctx context.Context) {
	if vm.logfn != nil {
		defer vm.withLogPrefix("	")()
	}

	for vm.state == Running && !vm.prog.Done() {
		vm.haltif(ctx.Err())
		vm.step()
	}
}

func (vm *VM) step() {
	vm.at = vm.prog.Pos()
	b, err := vm.prog.U8()
	vm.haltif(err)
	vm.code = opcode.Code(b)
	if vm.logfn != nil {
		vm.logf("exec", "@%v %v -- i:%v f:%v e:%v",
			vm.at, vm.code, vm.ints.Values(), vm.floats.Values(), vm.errs.Len())
	}
	if op := vmCodeTable[vm.code]; op != nil {
		op(vm)
	}
}
