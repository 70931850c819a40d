package interaction

import (
	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// HitKind tells what lies under a canvas point.
type HitKind int

const (
	HitNone HitKind = iota
	HitOutputAnchor
	HitStep
	HitConnection
)

// Hit is the result of a hit test.
type Hit struct {
	Kind       HitKind
	StepID     string
	Connection model.Connection
}

// HitTest finds what lies under a canvas point. Output anchors win over step bodies, which win over connections.
// Steps added later are drawn on top and are tested first.
func (m *Machine) HitTest(canvas model.Point) Hit {
	size := m.cfg.StepSize()
	steps := m.graph.Steps()
	positions := make(map[string]model.Point, len(steps))

	for _, step := range steps {
		if !step.Hidden {
			positions[step.ID] = step.Position
		}
	}

	for i := len(steps) - 1; i >= 0; i-- {
		pos, ok := positions[steps[i].ID]
		if ok && canvas.Dist(model.OutputAnchor(pos, size)) <= m.cfg.AnchorRadius {
			return Hit{Kind: HitOutputAnchor, StepID: steps[i].ID}
		}
	}

	for i := len(steps) - 1; i >= 0; i-- {
		pos, ok := positions[steps[i].ID]
		if ok && model.RectAt(pos, size).Contains(canvas) {
			return Hit{Kind: HitStep, StepID: steps[i].ID}
		}
	}

	for _, conn := range m.graph.Connections() {
		src, srcOK := positions[conn.Source]
		dst, dstOK := positions[conn.Target]
		if !srcOK || !dstOK {
			continue
		}

		geo := m.style.Render(model.OutputAnchor(src, size), model.InputAnchor(dst, size), false)
		if geo.HitArea(canvas) {
			return Hit{Kind: HitConnection, Connection: conn}
		}
	}

	return Hit{Kind: HitNone}
}

// stepsIn returns the visible steps whose footprint intersects rect, in insertion order.
func (m *Machine) stepsIn(rect model.Rect) []string {
	var res []string
	for _, step := range m.graph.Steps() {
		if !step.Hidden && model.RectAt(step.Position, m.cfg.StepSize()).Intersects(rect) {
			res = append(res, step.ID)
		}
	}

	return res
}
