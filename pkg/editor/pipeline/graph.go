package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/internal/store"
	"github.com/askiada/pipeline-editor/pkg/editor/measure"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// Vertex attributes kept in sync with the steps, read by the DOT export.
const (
	AttributeLabel    = "label"
	AttributePosition = "pos"
	AttributeStatus   = "status"
)

// Graph is a pipeline of steps.
type Graph struct {
	store    store.OrderedStore[string, *model.Step]
	dag      graph.Graph[string, *model.Step]
	logger   *slog.Logger
	recorder measure.Recorder
	newID    func() string
}

func stepHash(s *model.Step) string { return s.ID }

// New creates an empty graph.
func New(opts ...Option) *Graph {
	st := store.NewMemoryStore[string, *model.Step]()
	g := &Graph{
		store:    st,
		dag:      graph.NewWithStore(stepHash, st, graph.Directed(), graph.PreventCycles()),
		logger:   ctxlog.Discard(),
		recorder: measure.Noop,
		newID:    uuid.NewString,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// DAG exposes the underlying read model. Callers must not mutate it.
func (g *Graph) DAG() graph.Graph[string, *model.Step] {
	return g.dag
}

// Index returns the insertion index of a step, or -1.
func (g *Graph) Index(id string) int {
	return g.store.Index(id)
}

// Len returns the number of steps.
func (g *Graph) Len() int {
	count, _ := g.store.VertexCount()

	return count
}

func titleFromPath(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func formatPosition(p model.Point) string {
	return fmt.Sprintf("%g,%g!", p.X, p.Y)
}

// AddStep creates a step bound to path at position and returns its id.
func (g *Graph) AddStep(path string, position model.Point, opts ...StepOption) (string, error) {
	if path == "" {
		return "", ErrPathMustBeSet
	}

	step := &model.Step{
		ID:       g.newID(),
		Title:    titleFromPath(path),
		FilePath: path,
		Position: position,
	}
	for _, opt := range opts {
		opt(step)
	}

	err := g.dag.AddVertex(step,
		graph.VertexAttribute(AttributeLabel, step.Title),
		graph.VertexAttribute(AttributePosition, formatPosition(position)),
	)
	if err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return "", errors.Wrapf(ErrStepAlreadyExists, "step %s", step.ID)
		}

		return "", errors.Wrap(err, "unable to add vertex")
	}

	g.recorder.GraphMutation("add_step")
	g.logger.Debug("step added", "step_id", step.ID, "path", path)

	return step.ID, nil
}

func (g *Graph) step(id string) (*model.Step, error) {
	step, err := g.dag.Vertex(id)
	if err != nil {
		return nil, &UnknownStepError{ID: id, cause: err}
	}

	return step, nil
}

// Step returns a copy of the step with the given id.
func (g *Graph) Step(id string) (*model.Step, bool) {
	step, err := g.step(id)
	if err != nil {
		return nil, false
	}

	return step.Clone(), true
}

// Steps returns a copy of every step, in insertion order.
func (g *Graph) Steps() []*model.Step {
	ids, _ := g.store.ListVertices()
	res := make([]*model.Step, 0, len(ids))
	for _, id := range ids {
		if step, err := g.dag.Vertex(id); err == nil {
			res = append(res, step.Clone())
		}
	}

	return res
}

// StepIDs returns the step ids, in insertion order.
func (g *Graph) StepIDs() []string {
	ids, _ := g.store.ListVertices()

	return ids
}

// successors returns the ids of the steps connected from id, in insertion order.
func (g *Graph) successors(id string) []string {
	var res []string
	for _, other := range g.StepIDs() {
		if _, err := g.store.Edge(id, other); err == nil {
			res = append(res, other)
		}
	}

	return res
}

// RemoveStep removes a step and every connection attached to it.
func (g *Graph) RemoveStep(id string) error {
	step, err := g.step(id)
	if err != nil {
		g.recorder.InvariantRejected("unknown_step")

		return err
	}

	for _, src := range append([]string(nil), step.IncomingConnections...) {
		if err := g.RemoveConnection(src, id); err != nil {
			return errors.Wrapf(err, "unable to detach step %s", id)
		}
	}

	for _, dst := range g.successors(id) {
		if err := g.RemoveConnection(id, dst); err != nil {
			return errors.Wrapf(err, "unable to detach step %s", id)
		}
	}

	if err := g.dag.RemoveVertex(id); err != nil {
		return errors.Wrap(err, "unable to remove vertex")
	}

	g.recorder.GraphMutation("remove_step")
	g.logger.Debug("step removed", "step_id", id)

	return nil
}

// AddConnection connects src to dst.
//
// It fails with an UnknownStepError if either step is missing, a DuplicateConnectionError if the pair is already
// connected and a CycleError if src is reachable from dst, src == dst included.
func (g *Graph) AddConnection(src, dst string) error {
	err := g.dag.AddEdge(src, dst)
	if err != nil {
		return g.rejectConnection(src, dst, err)
	}

	target, err := g.step(dst)
	if err != nil {
		return err
	}

	target.IncomingConnections = append(target.IncomingConnections, src)

	g.recorder.GraphMutation("add_connection")
	g.logger.Debug("connection added", "source", src, "target", dst)

	return nil
}

func (g *Graph) rejectConnection(src, dst string, err error) error {
	var res error

	switch {
	case errors.Is(err, graph.ErrVertexNotFound):
		id := dst
		if _, lookupErr := g.dag.Vertex(src); lookupErr != nil {
			id = src
		}

		g.recorder.InvariantRejected("unknown_step")
		res = &UnknownStepError{ID: id, cause: err}
	case errors.Is(err, graph.ErrEdgeAlreadyExists):
		g.recorder.InvariantRejected("duplicate")
		res = &DuplicateConnectionError{Source: src, Target: dst, cause: err}
	case errors.Is(err, graph.ErrEdgeCreatesCycle):
		g.recorder.InvariantRejected("cycle")
		res = &CycleError{Source: src, Target: dst, cause: err}
	default:
		return errors.Wrapf(err, "unable to add edge from %s to %s", src, dst)
	}

	g.logger.Debug("connection rejected", "source", src, "target", dst, "error", res)

	return res
}

// RemoveConnection removes the connection from src to dst.
func (g *Graph) RemoveConnection(src, dst string) error {
	if _, err := g.step(src); err != nil {
		return err
	}

	target, err := g.step(dst)
	if err != nil {
		return err
	}

	err = g.dag.RemoveEdge(src, dst)
	if err != nil {
		if errors.Is(err, graph.ErrEdgeNotFound) {
			return errors.Wrapf(ErrConnectionNotFound, "%s -> %s", src, dst)
		}

		return errors.Wrap(err, "unable to remove edge")
	}

	incoming := target.IncomingConnections[:0]
	for _, id := range target.IncomingConnections {
		if id != src {
			incoming = append(incoming, id)
		}
	}
	target.IncomingConnections = incoming

	g.recorder.GraphMutation("remove_connection")

	return nil
}

// HasConnection reports whether src is connected to dst.
func (g *Graph) HasConnection(src, dst string) bool {
	_, err := g.store.Edge(src, dst)

	return err == nil
}

// Connections returns every connection, grouped by target step in insertion order and then by the order the
// connections were made.
func (g *Graph) Connections() []model.Connection {
	var res []model.Connection
	for _, id := range g.StepIDs() {
		step, err := g.dag.Vertex(id)
		if err != nil {
			continue
		}

		for _, src := range step.IncomingConnections {
			res = append(res, model.Connection{Source: src, Target: id})
		}
	}

	return res
}

// Reachable reports whether to can be reached from from by following connections.
func (g *Graph) Reachable(from, to string) bool {
	if _, err := g.dag.Vertex(to); err != nil {
		return false
	}

	found := false
	err := graph.DFS(g.dag, from, func(id string) bool {
		found = id == to

		return found
	})
	if err != nil {
		return false
	}

	return found
}

// MoveStep sets the position of a step.
func (g *Graph) MoveStep(id string, position model.Point) error {
	step, err := g.step(id)
	if err != nil {
		return err
	}

	step.Position = position

	err = g.store.UpdateVertex(id, graph.VertexAttribute(AttributePosition, formatPosition(position)))
	if err != nil {
		return errors.Wrap(err, "unable to update vertex")
	}

	g.recorder.GraphMutation("move_step")

	return nil
}

// UpdateStep changes the title and the environment of a step.
func (g *Graph) UpdateStep(id, title, environment string) error {
	step, err := g.step(id)
	if err != nil {
		return err
	}

	step.Title = title
	step.Environment = environment

	err = g.store.UpdateVertex(id, graph.VertexAttribute(AttributeLabel, title))
	if err != nil {
		return errors.Wrap(err, "unable to update vertex")
	}

	g.recorder.GraphMutation("update_step")

	return nil
}

// SetRunStatus records the status of a step in the latest run.
func (g *Graph) SetRunStatus(id string, status model.RunStatus) error {
	step, err := g.step(id)
	if err != nil {
		return err
	}

	step.RunStatus = status

	return errors.Wrap(
		g.store.UpdateVertex(id, graph.VertexAttribute(AttributeStatus, string(status))),
		"unable to update vertex",
	)
}

// ResetRunStatus clears the run status of every step.
func (g *Graph) ResetRunStatus() {
	for _, id := range g.StepIDs() {
		_ = g.SetRunStatus(id, model.RunStatusIdle)
	}
}

// SetFileMissing flags every step bound to path and returns the ids of the steps that changed.
func (g *Graph) SetFileMissing(path string, missing bool) []string {
	var changed []string
	for _, id := range g.StepIDs() {
		step, err := g.dag.Vertex(id)
		if err != nil || filepath.Clean(step.FilePath) != filepath.Clean(path) || step.FileMissing == missing {
			continue
		}

		step.FileMissing = missing
		changed = append(changed, id)
	}

	return changed
}

// Bounds returns the rectangle enclosing every step, each step covering a box of the given size.
func (g *Graph) Bounds(size model.Size) (model.Rect, bool) {
	var (
		res   model.Rect
		found bool
	)

	for _, step := range g.Steps() {
		box := model.RectAt(step.Position, size)
		if !found {
			res, found = box, true

			continue
		}

		res = res.Union(box)
	}

	return res, found
}
