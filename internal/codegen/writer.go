package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

// Writer accumulates generated Go source with tab indentation.
type Writer struct {
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the accumulated source.
func (w *Writer) String() string {
	return strings.TrimRight(w.output.String(), "\n") + "\n"
}

// Bytes returns the accumulated source.
func (w *Writer) Bytes() []byte {
	return []byte(w.String())
}

// Line writes one indented line.
func (w *Writer) Line(format string, args ...any) {
	if len(args) == 0 {
		w.write(format)
	} else {
		w.write(fmt.Sprintf(format, args...))
	}
	w.writeln()
}

// Comment writes a line comment. Multi-line text becomes several comments.
func (w *Writer) Comment(format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	for _, line := range strings.Split(text, "\n") {
		w.Line("// %s", strings.TrimRight(line, "\r"))
	}
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.writeln()
}

// Open writes a line ending a block opener and indents.
func (w *Writer) Open(format string, args ...any) {
	w.Line(format, args...)
	w.indent()
}

// Close dedents and writes a line closing a block.
func (w *Writer) Close(line string) {
	w.dedent()
	w.Line("%s", line)
}

// Depth returns the current indentation depth.
func (w *Writer) Depth() int {
	return w.depth
}

func (w *Writer) write(s string) {
	if w.atLineStart && len(s) > 0 && s[0] != '\n' {
		w.writeIndent()
	}
	w.output.WriteString(s)
	w.atLineStart = false
}

func (w *Writer) writeln() {
	w.output.WriteByte('\n')
	w.atLineStart = true
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.depth; i++ {
		w.output.WriteByte('\t')
	}
	w.atLineStart = false
}

func (w *Writer) indent() {
	w.depth++
}

func (w *Writer) dedent() {
	if w.depth > 0 {
		w.depth--
	}
}
