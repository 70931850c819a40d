package logstream

import (
	"io"
	"strings"
	"sync"
)

// resetSequence is the full reset escape of a VT100 terminal.
const resetSequence = "\x1bc"

// Terminal is the surface output is rendered to.
type Terminal interface {
	// Reset clears everything rendered so far.
	Reset()
	// Write renders one chunk of output. Lines after the first are preceded by an explicit line break.
	Write(chunk string)
}

// WriterTerminal renders output as a terminal byte stream.
type WriterTerminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterTerminal(w io.Writer) *WriterTerminal {
	return &WriterTerminal{w: w}
}

func (t *WriterTerminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, _ = io.WriteString(t.w, resetSequence)
}

func (t *WriterTerminal) Write(chunk string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, line := range strings.Split(chunk, "\n") {
		if i > 0 {
			_, _ = io.WriteString(t.w, "\r\n")
		}

		_, _ = io.WriteString(t.w, line)
	}
}

var _ Terminal = (*WriterTerminal)(nil)
