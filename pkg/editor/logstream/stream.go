package logstream

import (
	"log/slog"
	"sync"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/measure"
)

// Stream renders the events of one identity into a terminal.
type Stream struct {
	ch       Channel
	term     Terminal
	logger   *slog.Logger
	recorder measure.Recorder

	mu       sync.Mutex
	identity string
	cancel   func()
	ignore   bool
}

type Option func(*Stream)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Stream) {
		s.logger = ctxlog.OrDiscard(logger)
	}
}

func WithRecorder(recorder measure.Recorder) Option {
	return func(s *Stream) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

func NewStream(ch Channel, term Terminal, opts ...Option) *Stream {
	s := &Stream{
		ch:       ch,
		term:     term,
		logger:   ctxlog.Discard(),
		recorder: measure.Noop,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Identity returns the identity currently subscribed to, or "".
func (s *Stream) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.identity
}

// Subscribe switches the stream to identity and asks the server for its buffered output. Subscribing again to the
// same identity only requests a new replay, the buffer reply resets the terminal before writing.
func (s *Stream) Subscribe(identity string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}

	if s.identity != identity {
		s.term.Reset()
	}

	s.identity = identity
	s.cancel = s.ch.Subscribe(s.handle)
	s.mu.Unlock()

	s.logger.Debug("stream subscribed", "identity", identity)

	return s.ch.Emit(Event{Action: ActionBufferRequest, Identity: identity})
}

// Unsubscribe stops rendering. The terminal keeps its content.
func (s *Stream) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.identity != "" {
		s.logger.Debug("stream unsubscribed", "identity", s.identity)
	}

	s.identity = ""
}

// SetIgnoreIncoming resets the terminal and drops every chunk until it is called again with false.
func (s *Stream) SetIgnoreIncoming(ignore bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ignore && !s.ignore {
		s.term.Reset()
	}

	s.ignore = ignore
}

func (s *Stream) handle(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil || ev.Identity != s.identity || s.ignore {
		return
	}

	switch ev.Action {
	case ActionStarted:
		s.term.Reset()
	case ActionBuffer:
		s.term.Reset()
		if ev.Output != "" {
			s.term.Write(ev.Output)
		}
	case ActionOutput:
		s.term.Write(ev.Output)
	default:
		return
	}

	s.recorder.LogChunk(string(ev.Action))
}
