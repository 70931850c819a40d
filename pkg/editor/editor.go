package editor

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/config"
	"github.com/askiada/pipeline-editor/pkg/editor/definition"
	"github.com/askiada/pipeline-editor/pkg/editor/drawer"
	"github.com/askiada/pipeline-editor/pkg/editor/filewatch"
	"github.com/askiada/pipeline-editor/pkg/editor/interaction"
	"github.com/askiada/pipeline-editor/pkg/editor/layout"
	"github.com/askiada/pipeline-editor/pkg/editor/logstream"
	"github.com/askiada/pipeline-editor/pkg/editor/measure"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/persist"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
	"github.com/askiada/pipeline-editor/pkg/editor/session"
	"github.com/askiada/pipeline-editor/pkg/editor/viewport"
)

var (
	ErrNoDocument = errors.New("no pipeline loaded")
	ErrNoStore    = errors.New("no store configured")
	ErrNoStream   = errors.New("no log stream configured")
)

// Editor edits one pipeline at a time. Its methods are safe for concurrent use; graph mutations are serialised.
type Editor struct {
	cfg       config.Config
	logger    *slog.Logger
	recorder  measure.Recorder
	notifier  model.Notifier
	svc       session.Service
	store     persist.Store
	channel   logstream.Channel
	terminal  logstream.Terminal
	validator interaction.PathValidator

	layout      *layout.Engine
	svg         *drawer.SVGDrawer
	dot         *drawer.DOTDrawer
	coordinator *session.Coordinator
	stream      *logstream.Stream
	autosaver   *persist.Autosaver
	watcher     *filewatch.Watcher

	mu        sync.Mutex
	loading   bool
	projectID string
	def       *definition.Definition
	graph     *pipeline.Graph
	view      *viewport.Viewport
	machine   *interaction.Machine
}

// New creates an editor with no pipeline loaded.
func New(cfg config.Config, opts ...Option) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Editor{
		cfg:      cfg,
		logger:   ctxlog.Discard(),
		recorder: measure.Noop,
		notifier: model.DiscardNotifier,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.svc == nil {
		e.svc = session.NewHTTPService(cfg.Session, nil)
	}

	if e.validator == nil && cfg.Files.Root != "" {
		e.validator = e.fileExists
	}

	e.layout = layout.New(cfg.Layout, layout.WithLogger(e.logger), layout.WithRecorder(e.recorder))
	e.svg = drawer.NewSVGDrawer(cfg.Connection, cfg.Interaction.StepSize(), cfg.Interaction.AnchorRadius)
	e.dot = drawer.NewDOTDrawer(drawer.GraphAttribute("rankdir", "LR"))
	e.coordinator = session.NewCoordinator(e.svc,
		session.WithLogger(e.logger),
		session.WithNotifier(e.notifier),
		session.WithRecorder(e.recorder),
	)

	if e.channel != nil && e.terminal != nil {
		e.stream = logstream.NewStream(e.channel, e.terminal,
			logstream.WithLogger(e.logger), logstream.WithRecorder(e.recorder))
	}

	if e.store != nil {
		e.autosaver = persist.NewAutosaver(e.store, e.snapshot, cfg.Store.AutosaveInterval)
	}

	if cfg.Files.Root != "" {
		e.watcher = filewatch.New(cfg.Files, e.fileChanged)
	}

	e.view = viewport.New(cfg.Viewport)

	return e, nil
}

func (e *Editor) fileExists(_ context.Context, path string) error {
	info, err := os.Stat(filepath.Join(e.cfg.Files.Root, path))
	if err != nil {
		return errors.Wrapf(err, "unable to stat %s", path)
	}

	if info.IsDir() {
		return errors.Errorf("%s is a directory", path)
	}

	return nil
}

func (e *Editor) fileChanged(path string, missing bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return
	}

	if changed := e.graph.SetFileMissing(path, missing); len(changed) > 0 {
		e.logger.Debug("step file changed", "path", path, "missing", missing, "steps", len(changed))
	}
}

func (e *Editor) changed() {
	if e.loading || e.autosaver == nil {
		return
	}

	e.autosaver.MarkDirty()
}

// Load opens def in project projectID. The viewport and the gesture state start over.
func (e *Editor) Load(projectID string, def *definition.Definition) error {
	paths, err := e.load(projectID, def)
	if err != nil {
		return err
	}

	if e.watcher != nil {
		e.watcher.Sync(paths)
	}

	e.coordinator.Dispatch(session.Render{Inputs: session.Inputs{
		ProjectID:        projectID,
		PipelineID:       def.UUID,
		RoutedPipelineID: def.UUID,
		Interactive:      true,
	}})

	if stream := e.Stream(); stream != nil {
		if err := stream.Subscribe(def.UUID); err != nil {
			e.logger.Warn("unable to subscribe to the pipeline logs", "pipeline_id", def.UUID, "error", err)
		}
	}

	return nil
}

func (e *Editor) load(projectID string, def *definition.Definition) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.loading = true
	defer func() { e.loading = false }()

	g, err := definition.ToGraph(def,
		pipeline.WithLogger(e.logger),
		pipeline.WithRecorder(changeRecorder{Recorder: e.recorder, changed: e.changed}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load pipeline %s", def.UUID)
	}

	e.projectID = projectID
	e.def = def
	e.graph = g
	e.view.Reset()
	e.machine = interaction.New(e.cfg.Interaction, g, e.view,
		interaction.WithLogger(e.logger),
		interaction.WithNotifier(e.notifier),
		interaction.WithStyle(e.cfg.Connection),
		interaction.WithPathValidator(e.validator),
	)

	e.logger.Info("pipeline loaded", "pipeline_id", def.UUID, "steps", g.Len())

	paths := make([]string, 0, g.Len())
	for _, step := range g.Steps() {
		paths = append(paths, step.FilePath)
	}

	return paths, nil
}

// Open loads the saved pipeline pipelineID.
func (e *Editor) Open(ctx context.Context, projectID, pipelineID string) error {
	if e.store == nil {
		return ErrNoStore
	}

	def, err := e.store.Load(ctx, pipelineID)
	if err != nil {
		return err
	}

	return e.Load(projectID, def)
}

// Route tells the session coordinator where the host is and whether the pipeline can be edited.
func (e *Editor) Route(routedPipelineID string, interactive bool, readOnlyReason string) {
	e.mu.Lock()
	inputs := session.Inputs{
		ProjectID:        e.projectID,
		RoutedPipelineID: routedPipelineID,
		Interactive:      interactive,
		ReadOnlyReason:   readOnlyReason,
	}
	if e.def != nil {
		inputs.PipelineID = e.def.UUID
	}
	e.mu.Unlock()

	e.coordinator.Dispatch(session.Render{Inputs: inputs})
}

// Close saves pending changes, stops rendering logs and waits for the session calls in flight.
func (e *Editor) Close(ctx context.Context) error {
	if stream := e.Stream(); stream != nil {
		stream.Unsubscribe()
	}

	e.coordinator.Wait()

	if e.autosaver != nil {
		return e.autosaver.Flush(ctx)
	}

	return nil
}

// Dispatch handles one canvas event.
func (e *Editor) Dispatch(ctx context.Context, ev interaction.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine == nil {
		return ErrNoDocument
	}

	return e.machine.Dispatch(ctx, ev)
}

// AutoArrange lays the steps out. On failure no step moves.
func (e *Editor) AutoArrange() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return ErrNoDocument
	}

	return e.layout.Apply(e.graph)
}

// CenterView fits the steps in a view of the given size.
func (e *Editor) CenterView(viewSize model.Size) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.view.SetViewSize(viewSize)

	if e.graph == nil {
		return
	}

	if bounds, ok := e.graph.Bounds(e.cfg.Interaction.StepSize()); ok {
		e.view.CenterOn(bounds, viewSize)
	}
}

// SetRunStatus shows the status of a step in the latest run.
func (e *Editor) SetRunStatus(stepID string, status model.RunStatus) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return ErrNoDocument
	}

	return e.graph.SetRunStatus(stepID, status)
}

// Definition returns the open pipeline as a saveable document.
func (e *Editor) Definition() (*definition.Definition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.definitionLocked()
}

func (e *Editor) definitionLocked() (*definition.Definition, error) {
	if e.graph == nil {
		return nil, ErrNoDocument
	}

	return definition.FromGraph(e.def, e.graph), nil
}

func (e *Editor) snapshot() (*definition.Definition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return nil, nil
	}

	return e.definitionLocked()
}

// Graph returns a copy of the open graph.
func (e *Editor) Graph() (*pipeline.Graph, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return nil, ErrNoDocument
	}

	return e.graph.InducedSubgraph(e.graph.StepIDs())
}

// State returns the gesture and selection state of the canvas.
func (e *Editor) State() interaction.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.machine == nil {
		return interaction.State{}
	}

	return e.machine.State()
}

// Viewport returns the pan and zoom of the canvas.
func (e *Editor) Viewport() viewport.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.view.State()
}

func (e *Editor) selection() drawer.Selection {
	st := e.machine.State()

	sel := drawer.Selection{Steps: st.Selection, Connection: st.SelectedConnection}
	if d, ok := e.machine.DanglingConnection(); ok {
		sel.Dangling = &drawer.Dangling{Source: d.Source, End: d.End}
	}

	return sel
}

func (e *Editor) draw(w io.Writer, d drawer.Drawer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return ErrNoDocument
	}

	return d.Draw(w, e.graph, e.selection())
}

// RenderSVG draws the canvas.
func (e *Editor) RenderSVG(w io.Writer) error {
	return e.draw(w, e.svg)
}

// RenderDOT exports the graph in the DOT language.
func (e *Editor) RenderDOT(w io.Writer) error {
	return e.draw(w, e.dot)
}

// Session returns the session coordinator of the open pipeline.
func (e *Editor) Session() *session.Coordinator {
	return e.coordinator
}

// Stream returns the log stream, or nil when the editor has none.
func (e *Editor) Stream() *logstream.Stream {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.stream
}

// ConnectStream dials the socket.io log channel of the configuration and renders it into term. A stream set up
// earlier is unsubscribed and replaced.
func (e *Editor) ConnectStream(ctx context.Context, term logstream.Terminal) (*logstream.SocketChannel, error) {
	if e.cfg.Stream.URL == "" {
		return nil, ErrNoStream
	}

	ch, err := logstream.DialSocket(ctxlog.WithLogger(ctx, e.logger), e.cfg.Stream)
	if err != nil {
		return nil, err
	}

	return ch, e.attachStream(ch, term)
}

func (e *Editor) attachStream(ch logstream.Channel, term logstream.Terminal) error {
	stream := logstream.NewStream(ch, term, logstream.WithLogger(e.logger), logstream.WithRecorder(e.recorder))

	e.mu.Lock()
	prev := e.stream
	e.channel = ch
	e.terminal = term
	e.stream = stream
	def := e.def
	e.mu.Unlock()

	if prev != nil {
		prev.Unsubscribe()
	}

	if def != nil {
		return stream.Subscribe(def.UUID)
	}

	return nil
}

type gcRunner interface {
	RunGC(ctx context.Context) error
}

// Run keeps the session fresh, autosaves and watches the project files until ctx is done or one of them fails.
func (e *Editor) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, e.logger)
	errGrp, dCtx := errgroup.WithContext(ctx)

	errGrp.Go(func() error {
		return session.NewPoller(e.coordinator, e.svc, e.cfg.Session.PollInterval).Run(dCtx)
	})

	if e.autosaver != nil {
		errGrp.Go(func() error {
			return e.autosaver.Run(dCtx)
		})
	}

	if gc, ok := e.store.(gcRunner); ok {
		errGrp.Go(func() error {
			return gc.RunGC(dCtx)
		})
	}

	if e.watcher != nil {
		errGrp.Go(func() error {
			err := e.watcher.Run(dCtx)
			if errors.Is(err, fs.ErrNotExist) {
				e.logger.Warn("project directory missing, file tracking disabled", "root", e.cfg.Files.Root)

				return nil
			}

			return err
		})
	}

	return errors.Wrap(errGrp.Wait(), "editor stopped")
}
