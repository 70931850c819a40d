package drawer

import (
	"io"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

// Drawer writes a picture of a pipeline graph.
type Drawer interface {
	// Draw writes g to wrt, highlighting the selection.
	Draw(wrt io.Writer, g *pipeline.Graph, sel Selection) error
}

// Dangling is a connection being drawn: its source is fixed and its end follows the pointer.
type Dangling struct {
	Source string
	End    model.Point
}

// Selection is what the drawers highlight.
type Selection struct {
	Steps      []string
	Connection *model.Connection
	Dangling   *Dangling
}

func (s Selection) stepSelected(id string) bool {
	for _, sel := range s.Steps {
		if sel == id {
			return true
		}
	}

	return false
}

func (s Selection) connectionSelected(conn model.Connection) bool {
	return s.Connection != nil && *s.Connection == conn
}
