package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/cursor"
	"github.com/moalang/moavm/internal/diag"
	"github.com/moalang/moavm/internal/opcode"
)

// Disassemble writes one line per instruction in program to w, as
//
//	<offset>  <instruction in assembler syntax>
//
// Bytes that are not defined opcodes are listed as ".byte" no-ops. A
// trailing instruction whose operand is cut short is reported as an error
// after everything before it has been listed.
func Disassemble(w io.Writer, program []byte) error {
	c := cursor.New(program)
	for !c.Done() {
		at := c.Pos()
		text, err := decodeOne(c)
		if err != nil {
			return errors.Wrapf(err, "@%d", at)
		}
		if _, err := fmt.Fprintf(w, "%04d  %s\n", at, text); err != nil {
			return err
		}
	}
	return nil
}

// Listing returns the Disassemble output as a string; on error, the listing
// up to the failing instruction is returned along with it.
func Listing(program []byte) (string, error) {
	var sb strings.Builder
	err := Disassemble(&sb, program)
	return sb.String(), err
}

func decodeOne(c *cursor.Cursor) (string, error) {
	b, err := c.U8()
	if err != nil {
		return "", err
	}
	code := opcode.Code(b)
	if !code.Known() {
		return fmt.Sprintf(".byte 0x%02x", b), nil
	}
	switch code.Operand() {
	case opcode.Int64:
		v, err := c.Int64()
		if err != nil {
			return "", errors.Wrapf(err, "%v", code)
		}
		return code.String() + " " + strconv.FormatInt(v, 10), nil
	case opcode.Float64:
		v, err := c.Float64()
		if err != nil {
			return "", errors.Wrapf(err, "%v", code)
		}
		return code.String() + " " + FormatFloat(v), nil
	case opcode.ErrRecord:
		rec, err := diag.Decode(c)
		if err != nil {
			return "", errors.Wrapf(err, "%v", code)
		}
		return fmt.Sprintf("%v %q %d %d %d %q %q", code,
			rec.Kind, rec.Line, rec.Column, rec.Span, rec.Lexeme, rec.File), nil
	}
	return code.String(), nil
}

// FormatFloat formats v so that it always reads back as a float literal:
// integral values keep a ".0" suffix, e.g. 18.0 rather than 18.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
