package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/measure"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// Routes offered to resolve a soft start failure.
const (
	RouteEnvironments        = "/environments"
	RouteConfigureJupyterLab = "/configure-jupyterlab"
)

// View is the derived state of the session of the open pipeline.
type View struct {
	Status         Status
	BaseURL        string
	ReadOnlyReason string
	Loaded         bool
}

// Coordinator starts the session of the open pipeline when it is safe to do so. Remote calls run on their own
// goroutine and report back through Dispatch.
type Coordinator struct {
	svc      Service
	notifier model.Notifier
	logger   *slog.Logger
	recorder measure.Recorder

	mu              sync.Mutex
	inputs          Inputs
	loaded          bool
	sessions        map[string]*Session
	buildBlock      string
	wasBlocked      bool
	lastAutoStarted string

	effects sync.WaitGroup
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = ctxlog.OrDiscard(logger)
	}
}

func WithNotifier(notifier model.Notifier) Option {
	return func(c *Coordinator) {
		if notifier != nil {
			c.notifier = notifier
		}
	}
}

func WithRecorder(recorder measure.Recorder) Option {
	return func(c *Coordinator) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

// NewCoordinator creates a coordinator using svc for the remote calls.
func NewCoordinator(svc Service, opts ...Option) *Coordinator {
	c := &Coordinator{
		svc:      svc,
		notifier: model.DiscardNotifier,
		logger:   ctxlog.Discard(),
		recorder: measure.Noop,
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type effect func()

// Dispatch applies an action then starts the remote calls it requires.
func (c *Coordinator) Dispatch(a Action) {
	c.mu.Lock()
	effects := c.reduce(a)
	effects = append(effects, c.evaluate()...)
	c.mu.Unlock()

	for _, run := range effects {
		c.effects.Add(1)

		go func() {
			defer c.effects.Done()
			run()
		}()
	}
}

// Wait blocks until every remote call started so far has reported back.
func (c *Coordinator) Wait() {
	c.effects.Wait()
}

func (c *Coordinator) reduce(a Action) []effect {
	switch a := a.(type) {
	case Render:
		if c.inputs.ProjectID != "" && c.inputs.ProjectID != a.Inputs.ProjectID {
			c.resetProject()
		}
		c.inputs = a.Inputs
	case SessionsLoaded:
		if a.ProjectID != "" && a.ProjectID != c.inputs.ProjectID {
			break
		}
		c.loaded = true
		c.sessions = make(map[string]*Session, len(a.Sessions))
		for i := range a.Sessions {
			c.sessions[a.Sessions[i].PipelineID] = &a.Sessions[i]
		}
	case SessionUpdated:
		if a.Session == nil {
			delete(c.sessions, a.PipelineID)

			break
		}
		c.sessions[a.PipelineID] = a.Session
	case StartCompleted:
		return c.startCompleted(a)
	case StopRequested:
		return c.stopRequested()
	case StopCompleted:
		c.stopCompleted(a)
	case BuildFinished:
		c.buildBlock = ""
	}

	return nil
}

// resetProject forgets the sessions cached for the previous project until the new listing arrives.
func (c *Coordinator) resetProject() {
	c.loaded = false
	c.sessions = make(map[string]*Session)
	c.lastAutoStarted = ""
}

func (c *Coordinator) readOnlyReason() string {
	if c.inputs.ReadOnlyReason != "" {
		return c.inputs.ReadOnlyReason
	}

	return c.buildBlock
}

// evaluate runs the auto-start guards. The marker of the last auto-started pipeline is cleared when a read-only
// block goes away, so a start refused during a build is retried once the build is over.
func (c *Coordinator) evaluate() []effect {
	blocked := c.readOnlyReason() != ""
	if c.wasBlocked && !blocked {
		c.lastAutoStarted = ""
	}
	c.wasBlocked = blocked

	in := c.inputs

	switch {
	case !in.Interactive,
		!c.loaded,
		in.PipelineID == "",
		in.RoutedPipelineID != in.PipelineID,
		blocked,
		c.sessions[in.PipelineID] != nil,
		c.lastAutoStarted == in.PipelineID:
		return nil
	}

	c.lastAutoStarted = in.PipelineID
	c.sessions[in.PipelineID] = &Session{ProjectID: in.ProjectID, PipelineID: in.PipelineID, Status: StatusLaunching}
	c.logger.Info("starting session", "pipeline_id", in.PipelineID)

	projectID, pipelineID := in.ProjectID, in.PipelineID

	return []effect{func() {
		ctx := ctxlog.WithLogger(context.Background(), c.logger)

		err := c.svc.StartSession(ctx, projectID, pipelineID)
		c.Dispatch(StartCompleted{PipelineID: pipelineID, Err: err})
	}}
}

func (c *Coordinator) startCompleted(a StartCompleted) []effect {
	if a.Err == nil {
		c.recorder.SessionStart("started")
		projectID := c.inputs.ProjectID

		return []effect{func() {
			c.refresh(projectID, a.PipelineID)
		}}
	}

	if s := c.sessions[a.PipelineID]; s != nil && s.Status == StatusLaunching {
		delete(c.sessions, a.PipelineID)
	}

	var startErr *StartError
	if errors.As(a.Err, &startErr) && startErr.Soft {
		c.recorder.SessionStart("soft_blocked")
		c.buildBlock = startErr.Message
		c.logger.Info("session start blocked", "pipeline_id", a.PipelineID, "reason", startErr.Message)
		c.notifier.Notify(softNotice(startErr.Message))

		return nil
	}

	c.recorder.SessionStart("failed")
	c.logger.Error("session start failed", "pipeline_id", a.PipelineID, "error", a.Err)
	c.notifier.Notify(model.Notice{Level: model.NoticeBlocking, Message: "Unable to start the session: " + a.Err.Error()})

	return nil
}

func softNotice(message string) model.Notice {
	if message == MessageJupyterBuildInProgress {
		return model.Notice{
			Level:   model.NoticeTransient,
			Message: "The JupyterLab environment is being built. The session will start once the build is done.",
			Action:  &model.NavigationAction{Label: "Open JupyterLab configuration", Route: RouteConfigureJupyterLab},
		}
	}

	return model.Notice{
		Level:   model.NoticeTransient,
		Message: "Environments are being built. The session will start once the build is done.",
		Action:  &model.NavigationAction{Label: "Open environments", Route: RouteEnvironments},
	}
}

func (c *Coordinator) stopRequested() []effect {
	s := c.sessions[c.inputs.PipelineID]
	if s == nil || s.Status == StatusStopping {
		return nil
	}

	s.Status = StatusStopping
	projectID, pipelineID := c.inputs.ProjectID, c.inputs.PipelineID

	return []effect{func() {
		ctx := ctxlog.WithLogger(context.Background(), c.logger)

		err := c.svc.StopSession(ctx, projectID, pipelineID)
		c.Dispatch(StopCompleted{PipelineID: pipelineID, Err: err})
	}}
}

func (c *Coordinator) stopCompleted(a StopCompleted) {
	if a.Err == nil {
		delete(c.sessions, a.PipelineID)

		return
	}

	if s := c.sessions[a.PipelineID]; s != nil && s.Status == StatusStopping {
		s.Status = StatusRunning
	}

	c.logger.Error("session stop failed", "pipeline_id", a.PipelineID, "error", a.Err)
	c.notifier.Notify(model.Notice{Level: model.NoticeBlocking, Message: "Unable to stop the session: " + a.Err.Error()})
}

// refresh reads the session of a pipeline and feeds it back.
func (c *Coordinator) refresh(projectID, pipelineID string) {
	ctx := ctxlog.WithLogger(context.Background(), c.logger)

	s, err := c.svc.GetSession(ctx, projectID, pipelineID)
	if err != nil {
		c.logger.Warn("unable to refresh session", "pipeline_id", pipelineID, "error", err)

		return
	}

	c.Dispatch(SessionUpdated{PipelineID: pipelineID, Session: s})
}

// View returns the session state of the open pipeline.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{ReadOnlyReason: c.readOnlyReason(), Loaded: c.loaded}
	if s := c.sessions[c.inputs.PipelineID]; s != nil {
		v.Status = s.Status
		if s.Status == StatusRunning {
			v.BaseURL = s.BaseURL
		}
	}

	return v
}

// Target returns the project and pipeline currently open.
func (c *Coordinator) Target() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inputs.ProjectID, c.inputs.PipelineID
}
