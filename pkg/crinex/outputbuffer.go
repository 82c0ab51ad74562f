package crinex

import (
	"bytes"
	"io"
)

// outputBufferCapacityHint sizes the initial allocation; MAX_SAT * (MAX_TYPE
// * 19 + 4) + 60 in the reference's fixed-array terms. Go's bytes.Buffer
// grows past this without difficulty, but starting large avoids repeated
// reallocation during a big epoch.
const outputBufferCapacityHint = 100*(100*19+4) + 60

// OutputBuffer accumulates one epoch's compressed block before it is
// committed to the underlying writer. Differ writes into it directly;
// the driver decides whether to Flush (successful epoch) or Discard (an
// error mid-epoch, under the skip-strange-epochs policy).
type OutputBuffer struct {
	buf bytes.Buffer
	out io.Writer
}

// NewOutputBuffer wraps out for buffered epoch-at-a-time writes.
func NewOutputBuffer(out io.Writer) *OutputBuffer {
	b := &OutputBuffer{out: out}
	b.buf.Grow(outputBufferCapacityHint)
	return b
}

func (b *OutputBuffer) WriteString(s string) {
	b.buf.WriteString(s)
}

func (b *OutputBuffer) WriteByte(c byte) {
	b.buf.WriteByte(c)
}

// Flush writes the accumulated bytes to the underlying writer and resets
// the buffer for the next epoch.
func (b *OutputBuffer) Flush() error {
	_, err := b.out.Write(b.buf.Bytes())
	b.buf.Reset()
	return err
}

// Discard drops whatever has been written so far without emitting it,
// used when an in-progress epoch turns out to be malformed.
func (b *OutputBuffer) Discard() {
	b.buf.Reset()
}
