package shell

import (
	"fmt"
	"io"
	"strings"
)

// Output is the append-only text sink commands write to
type Output interface {
	Print(s string)
	Println(s string)
	Clear()
}

// BufferOutput is an in-memory [Output]. It is not safe for concurrent use.
type BufferOutput struct {
	b      strings.Builder
	clears int
}

func (o *BufferOutput) Print(s string) {
	o.b.WriteString(s)
}

func (o *BufferOutput) Println(s string) {
	o.b.WriteString(s)
	o.b.WriteByte('\n')
}

func (o *BufferOutput) Clear() {
	o.b.Reset()
	o.clears++
}

// Set replaces the whole content without counting as a clear
func (o *BufferOutput) Set(s string) {
	o.b.Reset()
	o.b.WriteString(s)
}

func (o *BufferOutput) String() string {
	return o.b.String()
}

func (o *BufferOutput) Len() int {
	return o.b.Len()
}

// Clears returns how many times Clear has been called
func (o *BufferOutput) Clears() int {
	return o.clears
}

var _ Output = (*BufferOutput)(nil)

// WriterOutput writes to an io.Writer such as a real terminal
type WriterOutput struct {
	w       io.Writer
	midLine bool
}

func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

func (o *WriterOutput) Print(s string) {
	if s == "" {
		return
	}
	fmt.Fprint(o.w, s)
	o.midLine = !strings.HasSuffix(s, "\n")
}

func (o *WriterOutput) Println(s string) {
	fmt.Fprintln(o.w, s)
	o.midLine = false
}

// Clear moves the cursor home and erases the screen
func (o *WriterOutput) Clear() {
	fmt.Fprint(o.w, "\033[H\033[2J")
	o.midLine = false
}

// EndLine terminates a partially written line so the next write starts at
// column zero.
func (o *WriterOutput) EndLine() {
	if o.midLine {
		o.Println("")
	}
}

var _ Output = (*WriterOutput)(nil)
