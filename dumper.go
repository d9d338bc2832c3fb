package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/moalang/moavm/internal/asm"
)

type vmDumper struct {
	vm  *VM
	out io.Writer
}

func (dump vmDumper) dump() {
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  state: %v\n", dump.vm.state)
	fmt.Fprintf(dump.out, "  pos: %v/%v\n", dump.vm.prog.Pos(), dump.vm.prog.Len())
	if dump.vm.err != nil {
		fmt.Fprintf(dump.out, "  err: %v\n", dump.vm.err)
	}
	dump.dumpStacks("  ")
	dump.dumpErrors()
}

// dumpStacks writes both numeric stacks, one per line, in the form printed
// by `moavm run --stacks`.
func (dump vmDumper) dumpStacks(indent string) {
	ints := dump.vm.ints.Values()
	floats := dump.vm.floats.Values()

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString("int_stack: [")
	for i, v := range ints {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	sb.WriteString("]\n")

	sb.WriteString(indent)
	sb.WriteString("float_stack: [")
	for i, v := range floats {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(asm.FormatFloat(v))
	}
	sb.WriteString("]\n")

	io.WriteString(dump.out, sb.String())
}

func (dump vmDumper) dumpErrors() {
	recs := dump.vm.errs.Records()
	fmt.Fprintf(dump.out, "  error_stack: %v\n", len(recs))
	for i := len(recs) - 1; i >= 0; i-- {
		rec := recs[i]
		fmt.Fprintf(dump.out, "    [%v] %v:%v:%v %q\n", rec.Kind, rec.File, rec.Line, rec.Column, rec.Lexeme)
	}
}

// vmSnapshot is the machine readable final state printed by
// `moavm run --format yaml`.
type vmSnapshot struct {
	State      string    `yaml:"state"`
	Pos        int       `yaml:"pos"`
	IntStack   []int64   `yaml:"int_stack,flow"`
	FloatStack []float64 `yaml:"float_stack,flow"`
	ErrorStack int       `yaml:"error_stack"`
	Error      string    `yaml:"error,omitempty"`
}

func (dump vmDumper) snapshot() vmSnapshot {
	snap := vmSnapshot{
		State:      dump.vm.state.String(),
		Pos:        dump.vm.prog.Pos(),
		IntStack:   dump.vm.ints.Values(),
		FloatStack: dump.vm.floats.Values(),
		ErrorStack: dump.vm.errs.Len(),
	}
	if dump.vm.err != nil {
		snap.Error = dump.vm.err.Error()
	}
	return snap
}

func (dump vmDumper) dumpYAML() error {
	enc := yaml.NewEncoder(dump.out)
	if err := enc.Encode(dump.snapshot()); err != nil {
		return err
	}
	return enc.Close()
}
