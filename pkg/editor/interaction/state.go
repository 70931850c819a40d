package interaction

import (
	"slices"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// Mode is the gesture in progress.
type Mode int

const (
	ModeIdle Mode = iota
	ModeBoxSelecting
	ModePanning
	ModeDraggingSteps
	ModeDraggingConnection
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeBoxSelecting:
		return "box-selecting"
	case ModePanning:
		return "panning"
	case ModeDraggingSteps:
		return "dragging-steps"
	case ModeDraggingConnection:
		return "dragging-connection"
	default:
		return "unknown"
	}
}

// ContextMenu is an open context menu. StepID is empty when it was opened on the canvas.
type ContextMenu struct {
	Screen model.Point
	Canvas model.Point
	StepID string
}

// Dangling is the connection being drawn. End is in canvas space.
type Dangling struct {
	Source string
	End    model.Point
}

// State is the whole gesture and selection state. Canvas points are in canvas space.
type State struct {
	Mode               Mode
	Selection          []string
	SelectedConnection *model.Connection
	OpenedStep         string
	ContextMenu        *ContextMenu
	Dangling           *Dangling

	// box-selecting
	BoxStart model.Point
	BoxEnd   model.Point

	// dragging-steps
	DragOrigin model.Point
	DragDelta  model.Point
	DragMoved  bool

	// panning, screen space
	PanLast model.Point

	// set when a gesture moved, the click the host sends after the release is ignored.
	suppressClick bool
}

func (s *State) selected(id string) bool {
	return slices.Contains(s.Selection, id)
}

func (s *State) toggle(id string) {
	if i := slices.Index(s.Selection, id); i >= 0 {
		s.Selection = slices.Delete(s.Selection, i, i+1)

		return
	}

	s.Selection = append(s.Selection, id)
}

// clearSelection empties the selection and closes the detail view.
func (s *State) clearSelection() {
	s.Selection = nil
	s.SelectedConnection = nil
	s.OpenedStep = ""
}

func (s *State) resetGesture() {
	s.Mode = ModeIdle
	s.Dangling = nil
	s.BoxStart, s.BoxEnd = model.Point{}, model.Point{}
	s.DragOrigin, s.DragDelta = model.Point{}, model.Point{}
	s.DragMoved = false
	s.PanLast = model.Point{}
}

func (s State) clone() State {
	cp := s
	cp.Selection = slices.Clone(s.Selection)

	if s.SelectedConnection != nil {
		conn := *s.SelectedConnection
		cp.SelectedConnection = &conn
	}

	if s.ContextMenu != nil {
		menu := *s.ContextMenu
		cp.ContextMenu = &menu
	}

	if s.Dangling != nil {
		dangling := *s.Dangling
		cp.Dangling = &dangling
	}

	return cp
}
