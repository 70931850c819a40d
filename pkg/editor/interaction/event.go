package interaction

import "github.com/askiada/pipeline-editor/pkg/editor/model"

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers are the keys held during an event. Space is tracked by the host while the key is down.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Meta  bool
	Alt   bool
	Space bool
}

func (m Modifiers) toggles() bool { return m.Shift || m.Ctrl || m.Meta }

func (m Modifiers) command() bool { return m.Ctrl || m.Meta }

// Event is an input delivered to the Machine. Positions are in screen space.
type Event interface {
	event()
}

type PointerDown struct {
	Button    Button
	Screen    model.Point
	Modifiers Modifiers
}

type PointerMove struct {
	Screen model.Point
}

type PointerUp struct {
	Button Button
	Screen model.Point
}

type Click struct {
	Screen    model.Point
	Modifiers Modifiers
}

type DoubleClick struct {
	Screen model.Point
}

type Wheel struct {
	Screen    model.Point
	DeltaX    float64
	DeltaY    float64
	Modifiers Modifiers
}

// KeyDown carries a key name as reported by the host, for instance Escape, Delete or a.
type KeyDown struct {
	Key       string
	Modifiers Modifiers
}

// Cancel aborts the gesture in progress, on escape or focus loss.
type Cancel struct{}

// FileDrop is a set of files dropped from an external source.
type FileDrop struct {
	Screen model.Point
	Paths  []string
}

type CloseMenu struct{}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Click) event()       {}
func (DoubleClick) event() {}
func (Wheel) event()       {}
func (KeyDown) event()     {}
func (Cancel) event()      {}
func (FileDrop) event()    {}
func (CloseMenu) event()   {}
