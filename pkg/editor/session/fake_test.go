package session_test

import (
	"context"
	"sync"

	"github.com/askiada/pipeline-editor/pkg/editor/session"
)

type fakeService struct {
	mu        sync.Mutex
	starts    []string
	stops     []string
	startErrs []error
	stopErr   error
	sessions  map[string]*session.Session
}

func newFakeService() *fakeService {
	return &fakeService{sessions: make(map[string]*session.Session)}
}

func (f *fakeService) ListSessions(_ context.Context, projectID string) ([]session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res []session.Session
	for _, s := range f.sessions {
		if s.ProjectID == projectID {
			res = append(res, *s)
		}
	}

	return res, nil
}

func (f *fakeService) GetSession(_ context.Context, _, pipelineID string) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[pipelineID]
	if !ok {
		return nil, nil
	}

	cp := *s

	return &cp, nil
}

func (f *fakeService) StartSession(_ context.Context, projectID, pipelineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.starts = append(f.starts, pipelineID)

	if len(f.startErrs) > 0 {
		err := f.startErrs[0]
		f.startErrs = f.startErrs[1:]

		if err != nil {
			return err
		}
	}

	f.sessions[pipelineID] = &session.Session{
		ProjectID:  projectID,
		PipelineID: pipelineID,
		Status:     session.StatusRunning,
		BaseURL:    "/jupyter-server-" + pipelineID,
	}

	return nil
}

func (f *fakeService) StopSession(_ context.Context, _, pipelineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops = append(f.stops, pipelineID)
	if f.stopErr != nil {
		return f.stopErr
	}

	delete(f.sessions, pipelineID)

	return nil
}

func (f *fakeService) startCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.starts...)
}

func (f *fakeService) stopCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.stops...)
}
