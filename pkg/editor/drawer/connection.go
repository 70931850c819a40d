// Package drawer turns a pipeline graph into drawable geometry: connection curves with their hit areas, an SVG
// picture of the canvas and a DOT description of the topology.
package drawer

import (
	"fmt"
	"strings"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// Presentation classes set on a connection.
const (
	ClassConnection        = "connection"
	ClassSelected          = "selected"
	ClassFlipped           = "flipped"
	ClassFlippedHorizontal = "flipped-horizontal"
)

const hitSamples = 32

// Style holds the connection rendering parameters.
type Style struct {
	// SmallWidth is the horizontal span under which a connection is flagged flipped-horizontal.
	SmallWidth  float64 `yaml:"small_width" validate:"gte=0"`
	StrokeWidth float64 `yaml:"stroke_width" validate:"gt=0"`
	HitWidth    float64 `yaml:"hit_width" validate:"gtfield=StrokeWidth"`
}

func DefaultStyle() Style {
	return Style{SmallWidth: 10, StrokeWidth: 2, HitWidth: 14}
}

// Geometry is the drawable shape of a connection.
type Geometry struct {
	Start    model.Point
	Control1 model.Point
	Control2 model.Point
	End      model.Point
	// Path is the SVG path data of the visible curve. HitPath follows the same curve and is stroked with HitWidth.
	Path        string
	HitPath     string
	StrokeWidth float64
	HitWidth    float64
	Stroke      string
	Classes     []string
}

// RenderConnection renders a connection with the default style.
func RenderConnection(start, end model.Point, selected bool) Geometry {
	return DefaultStyle().Render(start, end, selected)
}

// Render returns a horizontal S-curve from start to end. Both control points share the x halfway between the
// endpoints, each keeping the y of its endpoint, so the curve leaves and enters horizontally.
func (s Style) Render(start, end model.Point, selected bool) Geometry {
	midX := start.X + (end.X-start.X)/2

	geo := Geometry{
		Start:       start,
		Control1:    model.Point{X: midX, Y: start.Y},
		Control2:    model.Point{X: midX, Y: end.Y},
		End:         end,
		StrokeWidth: s.StrokeWidth,
		HitWidth:    s.HitWidth,
		Stroke:      connectionStroke,
		Classes:     []string{ClassConnection},
	}

	geo.Path = fmt.Sprintf("M%g %g C%g %g, %g %g, %g %g",
		start.X, start.Y, geo.Control1.X, geo.Control1.Y, geo.Control2.X, geo.Control2.Y, end.X, end.Y)
	geo.HitPath = geo.Path

	if end.X-start.X < s.SmallWidth {
		geo.Classes = append(geo.Classes, ClassFlippedHorizontal)
	}

	if end.Y-start.Y < 0 {
		geo.Classes = append(geo.Classes, ClassFlipped)
	}

	if selected {
		geo.Classes = append(geo.Classes, ClassSelected)
		geo.Stroke = selectedStroke
	}

	return geo
}

// Class joins the presentation classes.
func (g Geometry) Class() string {
	return strings.Join(g.Classes, " ")
}

// HasClass reports whether class is one of the presentation classes.
func (g Geometry) HasClass(class string) bool {
	for _, c := range g.Classes {
		if c == class {
			return true
		}
	}

	return false
}

// At evaluates the curve at t in [0, 1].
func (g Geometry) At(t float64) model.Point {
	u := 1 - t

	return g.Start.Scale(u * u * u).
		Add(g.Control1.Scale(3 * u * u * t)).
		Add(g.Control2.Scale(3 * u * t * t)).
		Add(g.End.Scale(t * t * t))
}

// Hit reports whether p is within tolerance of the curve.
func (g Geometry) Hit(p model.Point, tolerance float64) bool {
	prev := g.Start
	for i := 1; i <= hitSamples; i++ {
		next := g.At(float64(i) / hitSamples)
		if model.SegmentDist(p, prev, next) <= tolerance {
			return true
		}

		prev = next
	}

	return false
}

// HitArea reports whether p falls on the wide hit path.
func (g Geometry) HitArea(p model.Point) bool {
	return g.Hit(p, g.HitWidth/2)
}
