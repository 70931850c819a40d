package drawer

import (
	"fmt"
	"html"
	"io"
	"strings"
	"text/template"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{quote $v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{quote .Source}}" {{if .Target}}{{$.EdgeOperator}} "{{quote .Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{quote $v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{quote $v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

// GraphAttribute is a functional option for the DOT drawer.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// DOTDrawer describes the topology in the Graphviz DOT language. Step positions are exported as pinned
// pos attributes so neato -n reproduces the canvas.
type DOTDrawer struct {
	options []func(*description)
}

// NewDOTDrawer creates a new DOT drawer.
func NewDOTDrawer(options ...func(*description)) *DOTDrawer {
	return &DOTDrawer{options: options}
}

func (d *DOTDrawer) Draw(wrt io.Writer, g *pipeline.Graph, sel Selection) error {
	desc, err := generateDOT(g, sel, d.options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

func generateDOT(g *pipeline.Graph, sel Selection, options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	gra := g.DAG()
	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	ids := g.StepIDs()
	for _, vertex := range ids {
		stmt, err := vertexStatement(gra, vertex, sel)
		if err != nil {
			return desc, err
		}
		desc.Statements = append(desc.Statements, stmt)

		for _, adjacency := range ids {
			edge, ok := adjacencyMap[vertex][adjacency]
			if !ok {
				continue
			}

			attributes := copyAttributes(edge.Properties.Attributes)
			if sel.connectionSelected(model.Connection{Source: vertex, Target: adjacency}) {
				attributes["color"] = selectedStroke
			}

			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: attributes,
			})
		}
	}

	return desc, nil
}

// vertexStatement copies the vertex attributes; the stored ones are never modified. A run status becomes a fill
// colour and a second line of an HTML label.
func vertexStatement(gra graph.Graph[string, *model.Step], vertex string, sel Selection) (statement, error) {
	step, sourceProperties, err := gra.VertexWithProperties(vertex)
	if err != nil {
		return statement{}, errors.Wrap(err, "unable to get vertex properties")
	}

	attributes := copyAttributes(sourceProperties.Attributes)
	htmlAttributes := make(map[string]string)

	if status, ok := attributes[pipeline.AttributeStatus]; ok {
		delete(attributes, pipeline.AttributeStatus)

		if status != "" {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`,
				html.EscapeString(attributes[pipeline.AttributeLabel]), status)
			delete(attributes, pipeline.AttributeLabel)
		}
	}

	attributes["style"] = "filled"
	attributes["fillcolor"] = StepFill(step.RunStatus)
	attributes["color"] = StepStroke(step, sel.stepSelected(vertex))

	return statement{
		Source:           vertex,
		SourceWeight:     sourceProperties.Weight,
		SourceAttributes: attributes,
		HTMLAttributes:   htmlAttributes,
	}, nil
}

func copyAttributes(attributes map[string]string) map[string]string {
	res := make(map[string]string, len(attributes))
	for k, v := range attributes {
		res[k] = v
	}

	return res
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote escapes a value for a double-quoted DOT string.
func quote(v interface{}) string {
	return quoteReplacer.Replace(fmt.Sprint(v))
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Funcs(template.FuncMap{"quote": quote}).Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
