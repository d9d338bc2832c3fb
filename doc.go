/* Package main: moavm, a minimal bytecode machine

moavm runs flat bytecode programs, as produced by the moa compiler or the
built in assembler. A program is a sequence of instructions with no header:
each instruction is one opcode byte followed by its immediate operands,
little-endian. There are no jumps, so every instruction executes at most once,
in program order.

Instructions operate on two stacks of numbers: one of 64-bit signed integers,
and one of 64-bit floats. Values move between them only through INT_TO_FLOAT
and FLOAT_TO_INT. Opcode values beyond ERR_DATA (0x10) are reserved, and
execute as no-ops.

Runtime errors are reported in terms of the source program, not the
bytecode. Ahead of any instruction that may fail, the compiler emits an
ERR_DATA instruction carrying the source location of the operation; the
record is staged on a third stack. When the guarded instruction succeeds it
discards the record; when it fails it renders it:

	Error in "main.moa" for the reason:
	    |
	  3 | 10 / x
	    |    ^
	[ZeroDivisionError] Division by zero

after which the VM is halted for good. Only division is guarded: INT_DIV and
FLOAT_DIV.

Any other failure, like a truncated instruction or a pop from an empty
stack, means the program was not produced by a working compiler. Run returns
such faults as errors marked with ErrContractViolation.

Usage:

	moavm run prog.mvm [--stacks] [--trace] [--format text|yaml]
	moavm asm prog.masm [-o prog.mvm] [--compress]
	moavm disasm prog.mvm

See internal/asm for the assembler syntax.
*/
package main
