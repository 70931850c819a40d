package logstream_test

import (
	"strings"
	"sync"

	"github.com/askiada/pipeline-editor/pkg/editor/logstream"
)

type fakeChannel struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(logstream.Event)
	emitted  []logstream.Event
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[int]func(logstream.Event))}
}

func (c *fakeChannel) Subscribe(handler func(logstream.Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.handlers[id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.handlers, id)
	}
}

func (c *fakeChannel) Emit(ev logstream.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.emitted = append(c.emitted, ev)

	return nil
}

func (c *fakeChannel) push(ev logstream.Event) {
	c.mu.Lock()
	res := make([]func(logstream.Event), 0, len(c.handlers))
	for _, handler := range c.handlers {
		res = append(res, handler)
	}
	c.mu.Unlock()

	for _, handler := range res {
		handler(ev)
	}
}

func (c *fakeChannel) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.handlers)
}

// fakeTerminal records the calls it receives, one entry per reset and one per written line.
type fakeTerminal struct {
	mu    sync.Mutex
	lines []string
}

func (t *fakeTerminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, "<reset>")
}

func (t *fakeTerminal) Write(chunk string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lines = append(t.lines, strings.Split(chunk, "\n")...)
}

func (t *fakeTerminal) rendered() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]string(nil), t.lines...)
}
