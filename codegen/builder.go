package codegen

import (
	"bufio"
	"bytes"
	"fmt"
)

// builder accumulates generated source text, grounded on the nex lexer
// generator's own Builder: every write method checks a single sticky
// error field first so a failure partway through a long emission doesn't
// need checking at every call site — only once, at the end.
type builder struct {
	opts Options

	out *bufio.Writer
	buf bytes.Buffer
	err error
}

func newBuilder(opts Options) *builder {
	b := &builder{opts: opts}
	b.out = bufio.NewWriter(&b.buf)
	return b
}

func (b *builder) writeString(s string) {
	if b.err != nil {
		return
	}
	_, b.err = b.out.WriteString(s)
}

func (b *builder) writef(format string, args ...any) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.out, format, args...)
}

// Format flushes the accumulated text and runs it through go/format and
// goimports, the same two-step pipeline the nex generator's formatCode
// applies to its own assembled buffer.
func (b *builder) Format() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.out.Flush(); err != nil {
		return nil, err
	}
	return formatSource(b.buf.Bytes())
}
