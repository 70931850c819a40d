// Package viewport maps pointer coordinates to canvas coordinates through pan, zoom and a zoom origin.
//
// A canvas point c is drawn at
//
//	screen = ScreenOffset + Origin + (c + Pan - Origin) * Scale
//
// Pan is expressed in canvas units and Origin is the canvas point a zoom gesture was anchored on.
package viewport

import (
	"math"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// Config bounds the scale.
type Config struct {
	MinScale     float64 `yaml:"min_scale" validate:"gt=0"`
	MaxScale     float64 `yaml:"max_scale" validate:"gtefield=MinScale"`
	DefaultScale float64 `yaml:"default_scale" validate:"gtefield=MinScale,ltefield=MaxScale"`
	// ZoomSpeed converts a wheel delta into a relative scale change.
	ZoomSpeed float64 `yaml:"zoom_speed" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{MinScale: 0.25, MaxScale: 2, DefaultScale: 1, ZoomSpeed: 0.0025}
}

// State is a snapshot of the viewport.
type State struct {
	Pan          model.Point
	Origin       model.Point
	ScreenOffset model.Point
	Scale        float64
}

// Viewport holds the transform between screen and canvas space.
type Viewport struct {
	cfg      Config
	state    State
	viewSize model.Size
}

// New creates a viewport at the default scale.
func New(cfg Config) *Viewport {
	v := &Viewport{cfg: cfg}
	v.Reset()

	return v
}

// State returns a copy of the current state.
func (v *Viewport) State() State { return v.state }

func (v *Viewport) Scale() float64 { return v.state.Scale }

func (v *Viewport) Config() Config { return v.cfg }

// SetScreenOffset records where the canvas element starts on screen.
func (v *Viewport) SetScreenOffset(offset model.Point) { v.state.ScreenOffset = offset }

// SetViewSize records the visible size of the canvas element.
func (v *Viewport) SetViewSize(size model.Size) { v.viewSize = size }

// Reset restores the default pan, scale and origin.
func (v *Viewport) Reset() {
	v.state.Pan = model.Point{}
	v.state.Origin = model.Point{}
	v.state.Scale = v.clamp(v.cfg.DefaultScale)
}

// ScreenToCanvas converts a pointer position to canvas space.
func (v *Viewport) ScreenToCanvas(p model.Point) model.Point {
	s := v.state
	local := p.Sub(s.ScreenOffset).Sub(s.Origin).Scale(1 / s.Scale)

	return local.Sub(s.Pan).Add(s.Origin)
}

// CanvasToScreen converts a canvas point to a screen position.
func (v *Viewport) CanvasToScreen(c model.Point) model.Point {
	s := v.state

	return s.ScreenOffset.Add(s.Origin).Add(c.Add(s.Pan).Sub(s.Origin).Scale(s.Scale))
}

// ZoomAt scales by (1 + delta) keeping the canvas point under screen where it is.
func (v *Viewport) ZoomAt(screen model.Point, delta float64) {
	v.zoomTo(screen, v.state.Scale*(1+delta))
}

// SetScale sets the scale, anchored on the centre of the view when its size is known and on the origin otherwise.
func (v *Viewport) SetScale(scale float64) {
	anchor := v.CanvasToScreen(v.state.Origin)
	if v.viewSize.Width > 0 && v.viewSize.Height > 0 {
		anchor = v.state.ScreenOffset.Add(v.viewSize.Half())
	}

	v.zoomTo(anchor, scale)
}

func (v *Viewport) zoomTo(screen model.Point, scale float64) {
	anchor := v.ScreenToCanvas(screen)

	v.state.Scale = v.clamp(scale)
	v.state.Origin = anchor
	v.state.Pan = screen.Sub(v.state.ScreenOffset).Sub(anchor).Scale(1 / v.state.Scale)
	v.snap()
}

// PanBy moves the view by a screen-space delta. The delta is divided by the scale so the canvas follows the
// pointer at any zoom level.
func (v *Viewport) PanBy(delta model.Point) {
	v.state.Pan = v.state.Pan.Add(delta.Scale(1 / v.state.Scale))
	v.snap()
}

// CenterOn pans so the centre of rect is in the middle of a view of the given size. The scale is kept.
func (v *Viewport) CenterOn(rect model.Rect, viewSize model.Size) {
	v.viewSize = viewSize
	half := viewSize.Half()

	v.state.Origin = model.Point{}
	v.state.Pan = half.Scale(1 / v.state.Scale).Sub(rect.Center())
	v.snap()
}

// snap moves the origin back to zero once pan and scale are back to their defaults, so the view matches a reset
// one. With pan at zero the origin shifts the screen by Origin*(1-Scale): the view stays put when the default
// scale is 1 and jumps to the reset view otherwise.
func (v *Viewport) snap() {
	if v.state.Pan.IsZero() && v.state.Scale == v.clamp(v.cfg.DefaultScale) {
		v.state.Origin = model.Point{}
	}
}

func (v *Viewport) clamp(scale float64) float64 {
	if math.IsNaN(scale) || scale <= 0 {
		return v.cfg.MinScale
	}

	return math.Min(math.Max(scale, v.cfg.MinScale), v.cfg.MaxScale)
}
