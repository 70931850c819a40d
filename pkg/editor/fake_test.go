package editor_test

import (
	"context"
	"sync"

	"github.com/askiada/pipeline-editor/pkg/editor/logstream"
	"github.com/askiada/pipeline-editor/pkg/editor/session"
)

type stubService struct {
	mu     sync.Mutex
	starts []string
	lists  int
}

func (s *stubService) ListSessions(context.Context, string) ([]session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists++

	return nil, nil
}

func (s *stubService) GetSession(_ context.Context, projectID, pipelineID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, started := range s.starts {
		if started == pipelineID {
			return &session.Session{ProjectID: projectID, PipelineID: pipelineID, Status: session.StatusRunning}, nil
		}
	}

	return nil, nil
}

func (s *stubService) StartSession(_ context.Context, _, pipelineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.starts = append(s.starts, pipelineID)

	return nil
}

func (s *stubService) StopSession(context.Context, string, string) error {
	return nil
}

func (s *stubService) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.starts)
}

func (s *stubService) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lists
}

type stubChannel struct {
	mu      sync.Mutex
	emitted []logstream.Event
}

func (c *stubChannel) Subscribe(func(logstream.Event)) func() { return func() {} }

func (c *stubChannel) Emit(ev logstream.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.emitted = append(c.emitted, ev)

	return nil
}

type nopTerminal struct{}

func (nopTerminal) Reset()       {}
func (nopTerminal) Write(string) {}
