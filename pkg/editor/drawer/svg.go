package drawer

import (
	"html"
	"io"
	"text/template"

	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

const svgMargin = 40

//nolint:lll //this is a template
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="{{.ViewBox.Min.X}} {{.ViewBox.Min.Y}} {{.ViewBox.Width}} {{.ViewBox.Height}}">
{{- range .Connections}}
	<g class="{{.Class}}" data-source="{{esc .Source}}" data-target="{{esc .Target}}">
		<path d="{{.HitPath}}" stroke="transparent" stroke-width="{{.HitWidth}}" fill="none"/>
		<path d="{{.Path}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}" fill="none"/>
	</g>
{{- end}}
{{- range .Steps}}
	<g class="step" data-id="{{esc .ID}}">
		<rect x="{{.Position.X}}" y="{{.Position.Y}}" width="{{$.StepSize.Width}}" height="{{$.StepSize.Height}}" fill="{{.Fill}}" stroke="{{.Stroke}}"/>
		<text x="{{.Label.X}}" y="{{.Label.Y}}" text-anchor="middle">{{esc .Title}}</text>
		<circle class="output" cx="{{.Output.X}}" cy="{{.Output.Y}}" r="{{$.AnchorRadius}}"/>
	</g>
{{- end}}
</svg>
`

var svgTpl = template.Must(template.New("svgTemplate").Funcs(template.FuncMap{"esc": html.EscapeString}).Parse(svgTemplate))

type svgConnection struct {
	Geometry
	Source string
	Target string
}

type svgStep struct {
	ID       string
	Title    string
	Position model.Point
	Label    model.Point
	Output   model.Point
	Fill     string
	Stroke   string
}

type svgDocument struct {
	ViewBox      model.Rect
	StepSize     model.Size
	AnchorRadius float64
	Steps        []svgStep
	Connections  []svgConnection
}

// SVGDrawer draws the canvas as an SVG document.
type SVGDrawer struct {
	style        Style
	stepSize     model.Size
	anchorRadius float64
}

// NewSVGDrawer creates a new SVG drawer.
func NewSVGDrawer(style Style, stepSize model.Size, anchorRadius float64) *SVGDrawer {
	return &SVGDrawer{style: style, stepSize: stepSize, anchorRadius: anchorRadius}
}

// Draw writes g as SVG. Hidden steps are skipped together with their connections.
func (d *SVGDrawer) Draw(wrt io.Writer, g *pipeline.Graph, sel Selection) error {
	doc := svgDocument{StepSize: d.stepSize, AnchorRadius: d.anchorRadius}

	positions := make(map[string]model.Point)
	for _, step := range g.Steps() {
		if step.Hidden {
			continue
		}

		positions[step.ID] = step.Position
		doc.Steps = append(doc.Steps, svgStep{
			ID:       step.ID,
			Title:    step.Title,
			Position: step.Position,
			Label:    step.Position.Add(d.stepSize.Half()),
			Output:   model.OutputAnchor(step.Position, d.stepSize),
			Fill:     StepFill(step.RunStatus),
			Stroke:   StepStroke(step, sel.stepSelected(step.ID)),
		})
	}

	for _, conn := range g.Connections() {
		src, srcOK := positions[conn.Source]
		dst, dstOK := positions[conn.Target]
		if !srcOK || !dstOK {
			continue
		}

		doc.Connections = append(doc.Connections, svgConnection{
			Geometry: d.style.Render(
				model.OutputAnchor(src, d.stepSize), model.InputAnchor(dst, d.stepSize), sel.connectionSelected(conn)),
			Source: conn.Source,
			Target: conn.Target,
		})
	}

	if sel.Dangling != nil {
		if src, ok := positions[sel.Dangling.Source]; ok {
			doc.Connections = append(doc.Connections, svgConnection{
				Geometry: d.style.Render(model.OutputAnchor(src, d.stepSize), sel.Dangling.End, true),
				Source:   sel.Dangling.Source,
			})
		}
	}

	doc.ViewBox = model.Rect{Max: model.Point{X: svgMargin, Y: svgMargin}}
	if bounds, ok := g.Bounds(d.stepSize); ok {
		doc.ViewBox = model.Rect{
			Min: bounds.Min.Sub(model.Point{X: svgMargin, Y: svgMargin}),
			Max: bounds.Max.Add(model.Point{X: svgMargin, Y: svgMargin}),
		}
	}

	err := svgTpl.Execute(wrt, doc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*SVGDrawer)(nil)
