package pipeline

import (
	"sort"

	"github.com/pkg/errors"
)

func (g *Graph) selectionSet(selection []string) map[string]struct{} {
	set := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		if _, err := g.dag.Vertex(id); err == nil {
			set[id] = struct{}{}
		}
	}

	return set
}

// Ancestors returns the ids of every step that has to run before the selection, in insertion order.
// When inclusive is set the selected steps are part of the result.
func (g *Graph) Ancestors(selection []string, inclusive bool) []string {
	selected := g.selectionSet(selection)
	seen := make(map[string]struct{})

	stack := make([]string, 0, len(selected))
	for id := range selected {
		stack = append(stack, id)
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		step, err := g.dag.Vertex(id)
		if err != nil {
			continue
		}
		stack = append(stack, step.IncomingConnections...)
	}

	var res []string
	for _, id := range g.StepIDs() {
		if _, ok := seen[id]; !ok {
			continue
		}
		if _, ok := selected[id]; ok && !inclusive {
			continue
		}
		res = append(res, id)
	}

	return res
}

// InducedSubgraph returns a new graph made of the selected steps and of the connections between them.
func (g *Graph) InducedSubgraph(selection []string) (*Graph, error) {
	keep := g.selectionSet(selection)

	sub := New(WithLogger(g.logger), WithRecorder(g.recorder), WithIDGenerator(g.newID))
	for _, step := range g.Steps() {
		if _, ok := keep[step.ID]; !ok {
			continue
		}

		_, err := sub.AddStep(step.FilePath, step.Position,
			WithStepID(step.ID), WithTitle(step.Title), WithEnvironment(step.Environment), WithHidden(step.Hidden))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to copy step %s", step.ID)
		}

		if copied, err := sub.step(step.ID); err == nil {
			copied.RunStatus = step.RunStatus
			copied.FileMissing = step.FileMissing
		}
	}

	for _, conn := range g.Connections() {
		_, srcOK := keep[conn.Source]
		_, dstOK := keep[conn.Target]
		if !srcOK || !dstOK {
			continue
		}

		if err := sub.AddConnection(conn.Source, conn.Target); err != nil {
			return nil, errors.Wrapf(err, "unable to copy connection %s -> %s", conn.Source, conn.Target)
		}
	}

	return sub, nil
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() (*Graph, error) {
	return g.InducedSubgraph(g.StepIDs())
}

// Environments returns the distinct environments referenced by the steps, sorted.
func (g *Graph) Environments() []string {
	set := make(map[string]struct{})
	for _, step := range g.Steps() {
		if step.Environment != "" {
			set[step.Environment] = struct{}{}
		}
	}

	res := make([]string, 0, len(set))
	for env := range set {
		res = append(res, env)
	}
	sort.Strings(res)

	return res
}
