package main

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/panicerr"
)

// New creates a VM ready to run program, with empty stacks, in the Running
// state. The program is not copied.
func New(program []byte, opts ...VMOption) *VM {
	var vm VM
	vm.apply(withProgram(program))
	vm.apply(opts...)
	return &vm
}

// Run executes instructions until the program is exhausted, a diagnostic
// halts the VM, or ctx is done. A reported diagnostic is not an error; check
// State() for it. Errors marked with ErrContractViolation are retained and
// returned by any later Run.
func (vm *VM) Run(ctx context.Context) (rerr error) {
	if vm.err != nil {
		return vm.err
	}
	defer func() {
		if ferr := vm.out.Flush(); rerr == nil {
			rerr = ferr
		}
	}()

	return vm.runError(panicerr.Recover("VM", func() error {
		vm.exec(ctx)
		return nil
	}))
}

// runError converts an error recovered from exec into the error returned
// by Run, retaining any contract violation.
func (vm *VM) runError(err error) error {
	if err == nil {
		return nil
	}
	var halted haltError
	switch {
	case errors.As(err, &halted):
		err = halted.error
	case panicerr.IsPanic(err):
		// a host runtime fault, like INT_MOD by zero
		vm.logf("panic", "%v\n%s", panicerr.PanicValue(err), panicerr.PanicStack(err))
		err = errors.Mark(errors.Wrapf(err, "%v @%v", vm.code, vm.at), ErrContractViolation)
	}
	if errors.Is(err, ErrContractViolation) {
		vm.err = err
	}
	return err
}

// State returns the current run state.
func (vm *VM) State() State { return vm.state }

// Pos returns the program offset of the next instruction.
func (vm *VM) Pos() int { return vm.prog.Pos() }

// Ints returns a copy of the integer stack, bottom first.
func (vm *VM) Ints() []int64 { return vm.ints.Values() }

// Floats returns a copy of the float stack, bottom first.
func (vm *VM) Floats() []float64 { return vm.floats.Values() }

// ErrorDepth returns the number of staged error records.
func (vm *VM) ErrorDepth() int { return vm.errs.Len() }

// Err returns any retained contract violation.
func (vm *VM) Err() error { return vm.err }

func WithProgram(program []byte) VMOption { return withProgram(program) }
func WithOutput(w io.Writer) VMOption     { return withOutput(w) }
func WithTee(w io.Writer) VMOption        { return withTee(w) }

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
