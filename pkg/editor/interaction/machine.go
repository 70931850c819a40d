// Package interaction turns pointer and keyboard events into selection changes and graph mutations.
package interaction

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/drawer"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
	"github.com/askiada/pipeline-editor/pkg/editor/viewport"
)

// PathValidator checks that a dropped file can back a step.
type PathValidator func(ctx context.Context, path string) error

// Machine owns the gesture state of one canvas. It is not safe for concurrent use: events are handled one at a
// time, in arrival order.
type Machine struct {
	cfg       Config
	graph     *pipeline.Graph
	view      *viewport.Viewport
	style     drawer.Style
	notifier  model.Notifier
	logger    *slog.Logger
	validator PathValidator
	state     State
}

// Option configures a Machine.
type Option func(*Machine)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = ctxlog.OrDiscard(logger)
	}
}

func WithNotifier(notifier model.Notifier) Option {
	return func(m *Machine) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

func WithStyle(style drawer.Style) Option {
	return func(m *Machine) {
		m.style = style
	}
}

// WithPathValidator checks every dropped file before a step is created for it.
func WithPathValidator(validator PathValidator) Option {
	return func(m *Machine) {
		m.validator = validator
	}
}

// New creates a machine editing g through view.
func New(cfg Config, g *pipeline.Graph, view *viewport.Viewport, opts ...Option) *Machine {
	m := &Machine{
		cfg:      cfg,
		graph:    g,
		view:     view,
		style:    drawer.DefaultStyle(),
		notifier: model.DiscardNotifier,
		logger:   ctxlog.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.clone()
}

// Reset drops the gesture and the selection.
func (m *Machine) Reset() {
	m.state = State{}
}

// PreviewPosition returns where a step is drawn, including the drag in progress. The graph is only updated when
// the drag is released.
func (m *Machine) PreviewPosition(id string) (model.Point, bool) {
	step, ok := m.graph.Step(id)
	if !ok {
		return model.Point{}, false
	}

	if m.state.Mode == ModeDraggingSteps && m.state.selected(id) {
		return step.Position.Add(m.state.DragDelta), true
	}

	return step.Position, true
}

// DanglingConnection returns the connection being drawn.
func (m *Machine) DanglingConnection() (Dangling, bool) {
	if m.state.Dangling == nil {
		return Dangling{}, false
	}

	return *m.state.Dangling, true
}

// SelectionRect returns the rectangle being drawn by a box selection.
func (m *Machine) SelectionRect() (model.Rect, bool) {
	if m.state.Mode != ModeBoxSelecting {
		return model.Rect{}, false
	}

	return model.RectFromPoints(m.state.BoxStart, m.state.BoxEnd), true
}

// Dispatch handles one event. Rejected graph edits are reported through the notifier and are not errors; an
// error means the graph refused an operation it should have accepted.
func (m *Machine) Dispatch(ctx context.Context, ev Event) error {
	before := m.state.Mode

	var err error

	switch ev := ev.(type) {
	case PointerDown:
		m.pointerDown(ev)
	case PointerMove:
		m.pointerMove(ev)
	case PointerUp:
		err = m.pointerUp(ev)
	case Click:
		m.click(ev)
	case DoubleClick:
		m.doubleClick(ev)
	case Wheel:
		m.wheel(ev)
	case KeyDown:
		err = m.keyDown(ev)
	case Cancel:
		m.cancel()
	case FileDrop:
		err = m.fileDrop(ctx, ev)
	case CloseMenu:
		m.state.ContextMenu = nil
	default:
		return errors.Errorf("unknown event %T", ev)
	}

	if before != m.state.Mode {
		m.logger.Debug("gesture transition", "from", before.String(), "mode", m.state.Mode.String())
	}

	return err
}

func (m *Machine) pointerDown(ev PointerDown) {
	canvas := m.view.ScreenToCanvas(ev.Screen)

	if ev.Button == ButtonSecondary {
		hit := m.HitTest(canvas)
		menu := &ContextMenu{Screen: ev.Screen, Canvas: canvas}
		if hit.Kind == HitStep || hit.Kind == HitOutputAnchor {
			menu.StepID = hit.StepID
		}
		m.state.ContextMenu = menu

		return
	}

	if m.state.Mode != ModeIdle {
		return
	}

	m.state.suppressClick = false

	if ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && ev.Modifiers.Space) {
		m.state.Mode = ModePanning
		m.state.PanLast = ev.Screen

		return
	}

	if ev.Button != ButtonPrimary {
		return
	}

	if m.state.ContextMenu != nil {
		m.state.ContextMenu = nil
		m.state.suppressClick = true

		return
	}

	hit := m.HitTest(canvas)

	switch hit.Kind {
	case HitOutputAnchor:
		m.state.Mode = ModeDraggingConnection
		m.state.Dangling = &Dangling{Source: hit.StepID, End: canvas}
	case HitStep:
		if ev.Modifiers.toggles() {
			m.state.toggle(hit.StepID)
			m.state.SelectedConnection = nil
			m.state.suppressClick = true

			return
		}

		if !m.state.selected(hit.StepID) {
			m.state.Selection = []string{hit.StepID}
		}
		m.state.SelectedConnection = nil
		m.state.Mode = ModeDraggingSteps
		m.state.DragOrigin = canvas
		m.state.DragDelta = model.Point{}
		m.state.DragMoved = false
	case HitConnection:
	case HitNone:
		m.state.Mode = ModeBoxSelecting
		m.state.BoxStart = canvas
		m.state.BoxEnd = canvas
	}
}

func (m *Machine) pointerMove(ev PointerMove) {
	canvas := m.view.ScreenToCanvas(ev.Screen)

	switch m.state.Mode {
	case ModePanning:
		m.view.PanBy(ev.Screen.Sub(m.state.PanLast))
		m.state.PanLast = ev.Screen
		m.state.suppressClick = true
	case ModeBoxSelecting:
		m.state.BoxEnd = canvas
	case ModeDraggingSteps:
		delta := canvas.Sub(m.state.DragOrigin)
		if !m.state.DragMoved && canvas.Dist(m.state.DragOrigin)*m.view.Scale() < m.cfg.DragThreshold {
			return
		}
		m.state.DragMoved = true
		m.state.DragDelta = delta
	case ModeDraggingConnection:
		m.state.Dangling.End = canvas
	case ModeIdle:
	}
}

func (m *Machine) pointerUp(ev PointerUp) error {
	canvas := m.view.ScreenToCanvas(ev.Screen)

	switch m.state.Mode {
	case ModePanning:
		m.state.resetGesture()
	case ModeBoxSelecting:
		if ev.Button != ButtonPrimary {
			return nil
		}

		m.state.BoxEnd = canvas
		m.finishBoxSelection()
	case ModeDraggingSteps:
		if ev.Button != ButtonPrimary {
			return nil
		}

		return m.finishDrag()
	case ModeDraggingConnection:
		if ev.Button != ButtonPrimary {
			return nil
		}

		m.state.Dangling.End = canvas

		return m.finishConnection(canvas)
	case ModeIdle:
	}

	return nil
}

func (m *Machine) finishBoxSelection() {
	rect := model.RectFromPoints(m.state.BoxStart, m.state.BoxEnd)
	m.state.resetGesture()

	m.state.clearSelection()
	if rect.Empty() {
		return
	}

	m.state.Selection = m.stepsIn(rect)
	m.state.suppressClick = true
}

func (m *Machine) finishDrag() error {
	delta, moved := m.state.DragDelta, m.state.DragMoved
	selection := append([]string(nil), m.state.Selection...)
	m.state.resetGesture()

	if !moved || delta.IsZero() {
		return nil
	}

	m.state.suppressClick = true

	for _, id := range selection {
		step, ok := m.graph.Step(id)
		if !ok {
			continue
		}

		if err := m.graph.MoveStep(id, step.Position.Add(delta)); err != nil {
			return errors.Wrapf(err, "unable to move step %s", id)
		}
	}

	return nil
}

// finishConnection commits the dangling connection when it was released over another step. The graph rejects
// cycles and duplicates, which are reported as transient notices.
func (m *Machine) finishConnection(canvas model.Point) error {
	source := m.state.Dangling.Source
	m.state.resetGesture()
	m.state.suppressClick = true

	hit := m.HitTest(canvas)
	if hit.Kind != HitStep && hit.Kind != HitOutputAnchor {
		return nil
	}

	target := hit.StepID
	if target == source {
		return nil
	}

	err := m.graph.AddConnection(source, target)
	if err == nil {
		return nil
	}

	var (
		cycleErr *pipeline.CycleError
		dupErr   *pipeline.DuplicateConnectionError
	)

	switch {
	case errors.As(err, &cycleErr):
		m.notifier.Notify(model.Notice{Level: model.NoticeTransient, Message: "Connecting these steps would create a cycle."})
	case errors.As(err, &dupErr):
		m.notifier.Notify(model.Notice{Level: model.NoticeTransient, Message: "These steps are already connected."})
	case errors.Is(err, pipeline.ErrGraphInvariant):
		m.logger.Debug("connection dropped", "source", source, "target", target, "error", err)
	default:
		return errors.Wrap(err, "unable to add connection")
	}

	return nil
}

func (m *Machine) click(ev Click) {
	if m.state.Mode != ModeIdle {
		return
	}

	if m.state.suppressClick {
		m.state.suppressClick = false

		return
	}

	hit := m.HitTest(m.view.ScreenToCanvas(ev.Screen))

	switch hit.Kind {
	case HitNone:
		m.state.clearSelection()
		m.state.Dangling = nil
	case HitConnection:
		m.state.clearSelection()
		conn := hit.Connection
		m.state.SelectedConnection = &conn
	case HitStep, HitOutputAnchor:
	}
}

func (m *Machine) doubleClick(ev DoubleClick) {
	if m.state.Mode != ModeIdle {
		return
	}

	hit := m.HitTest(m.view.ScreenToCanvas(ev.Screen))
	if hit.Kind == HitStep {
		m.state.OpenedStep = hit.StepID
	}
}

func (m *Machine) wheel(ev Wheel) {
	if ev.Modifiers.command() {
		m.view.ZoomAt(ev.Screen, -ev.DeltaY*m.view.Config().ZoomSpeed)

		return
	}

	m.view.PanBy(model.Point{X: -ev.DeltaX, Y: -ev.DeltaY})
}

func (m *Machine) keyDown(ev KeyDown) error {
	switch {
	case ev.Key == "Escape":
		m.cancel()
	case m.state.Mode != ModeIdle:
	case ev.Key == "Delete" || ev.Key == "Backspace":
		return m.deleteSelection()
	case (ev.Key == "a" || ev.Key == "A") && ev.Modifiers.command():
		m.state.SelectedConnection = nil
		m.state.Selection = nil
		for _, step := range m.graph.Steps() {
			if !step.Hidden {
				m.state.Selection = append(m.state.Selection, step.ID)
			}
		}
	}

	return nil
}

func (m *Machine) deleteSelection() error {
	if conn := m.state.SelectedConnection; conn != nil {
		m.state.SelectedConnection = nil

		err := m.graph.RemoveConnection(conn.Source, conn.Target)
		if err != nil && !errors.Is(err, pipeline.ErrConnectionNotFound) {
			return errors.Wrap(err, "unable to remove connection")
		}

		return nil
	}

	selection := m.state.Selection
	m.state.clearSelection()

	for _, id := range selection {
		var unknown *pipeline.UnknownStepError
		if err := m.graph.RemoveStep(id); err != nil && !errors.As(err, &unknown) {
			return errors.Wrapf(err, "unable to remove step %s", id)
		}
	}

	return nil
}

// cancel drops the gesture in progress without touching the graph.
func (m *Machine) cancel() {
	m.state.resetGesture()
	m.state.ContextMenu = nil
	m.state.suppressClick = false
}
