package asm

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/moalang/moavm/internal/diag"
	"github.com/moalang/moavm/internal/opcode"
)

// Assemble translates assembler text into a program.
//
// Each line holds one instruction: a mnemonic (any case) and its operands,
// separated by blanks. A ';' or '#' starts a comment. Operands are:
//
//	INT_PUSH <int>          decimal, or 0x/0o/0b prefixed
//	FLOAT_PUSH <float>      anything strconv.ParseFloat accepts
//	ERR_DATA <kind> <line> <column> <span> <lexeme> <file>
//	                        texts are Go-quoted strings
//	.byte <byte>...         raw bytes, e.g. reserved opcodes
func Assemble(r io.Reader) ([]byte, error) {
	var b Builder
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		if err := assembleLine(&b, sc.Text()); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return b.Bytes()
}

// AssembleString is Assemble over a string.
func AssembleString(src string) ([]byte, error) {
	return Assemble(strings.NewReader(src))
}

func assembleLine(b *Builder, line string) error {
	toks, err := tokenize(line)
	if err != nil || len(toks) == 0 {
		return err
	}
	mnemonic, args := toks[0], toks[1:]

	if mnemonic == ".byte" {
		if len(args) == 0 {
			return errors.New(".byte needs at least one value")
		}
		for _, arg := range args {
			v, err := strconv.ParseUint(arg, 0, 8)
			if err != nil {
				return errors.Wrapf(err, "invalid byte %q", arg)
			}
			b.Raw(byte(v))
		}
		return nil
	}

	code, ok := opcode.Lookup(mnemonic)
	if !ok {
		return errors.Newf("unknown mnemonic %q", mnemonic)
	}

	want := 0
	switch code.Operand() {
	case opcode.Int64, opcode.Float64:
		want = 1
	case opcode.ErrRecord:
		want = 6
	}
	if len(args) != want {
		return errors.Newf("%v takes %d operand(s), got %d", code, want, len(args))
	}

	switch code.Operand() {
	case opcode.Int64:
		v, err := strconv.ParseInt(args[0], 0, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %v operand", code)
		}
		b.IntPush(v)
	case opcode.Float64:
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %v operand", code)
		}
		b.FloatPush(v)
	case opcode.ErrRecord:
		rec, err := parseRecord(args)
		if err != nil {
			return errors.Wrapf(err, "invalid %v operand", code)
		}
		b.ErrData(rec)
		return b.err
	default:
		b.Op(code)
	}
	return nil
}

func parseRecord(args []string) (rec diag.Record, err error) {
	if rec.Kind, err = strconv.Unquote(args[0]); err != nil {
		return rec, errors.Wrap(err, "kind")
	}
	line, err := strconv.ParseUint(args[1], 0, 32)
	if err != nil {
		return rec, errors.Wrap(err, "line")
	}
	col, err := strconv.ParseUint(args[2], 0, 16)
	if err != nil {
		return rec, errors.Wrap(err, "column")
	}
	span, err := strconv.ParseUint(args[3], 0, 16)
	if err != nil {
		return rec, errors.Wrap(err, "span")
	}
	if rec.Lexeme, err = strconv.Unquote(args[4]); err != nil {
		return rec, errors.Wrap(err, "lexeme")
	}
	if rec.File, err = strconv.Unquote(args[5]); err != nil {
		return rec, errors.Wrap(err, "file")
	}
	rec.Line, rec.Column, rec.Span = uint32(line), uint16(col), uint16(span)
	return rec, nil
}

func tokenize(line string) (toks []string, err error) {
	for {
		line = strings.TrimLeft(line, " \t\r")
		if line == "" || line[0] == ';' || line[0] == '#' {
			return toks, nil
		}
		if line[0] == '"' {
			q, err := strconv.QuotedPrefix(line)
			if err != nil {
				return nil, errors.Newf("unterminated string %s", line)
			}
			toks = append(toks, q)
			line = line[len(q):]
			continue
		}
		i := strings.IndexAny(line, " \t\r")
		if i < 0 {
			i = len(line)
		}
		toks = append(toks, line[:i])
		line = line[i:]
	}
}
