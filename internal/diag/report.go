package diag

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Report writes a source-style diagnostic for rec to w:
//
//	Error in "main.moa" for the reason:
//	     |
//	  12 | 10 / 0
//	     |    ^
//	[ZeroDivisionError] Division by zero
//
// The gutter is as wide as the printed line number; the carets start after
// Column spaces and run for Span characters.
func Report(w io.Writer, rec Record, message string) error {
	var buf bytes.Buffer
	line := strconv.FormatUint(uint64(rec.Line), 10)
	gutter := strings.Repeat(" ", len(line))
	fmt.Fprintf(&buf, "Error in %s for the reason:\n", strconv.Quote(rec.File))
	fmt.Fprintf(&buf, "  %s |\n", gutter)
	fmt.Fprintf(&buf, "  %s | %s\n", line, rec.Lexeme)
	fmt.Fprintf(&buf, "  %s | %s%s\n", gutter,
		strings.Repeat(" ", int(rec.Column)),
		strings.Repeat("^", int(rec.Span)))
	fmt.Fprintf(&buf, "[%s] %s\n", rec.Kind, message)
	_, err := buf.WriteTo(w)
	return err
}
