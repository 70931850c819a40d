// Package layout computes left-to-right layered positions for a pipeline graph.
package layout

import (
	"log/slog"
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/measure"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

// Engine runs the layered layout.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	recorder measure.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = ctxlog.OrDiscard(logger)
	}
}

func WithRecorder(recorder measure.Recorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

// New creates a layout engine.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: ctxlog.Discard(), recorder: measure.Noop}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compute returns a position for every step of g. Existing positions are ignored.
func (e *Engine) Compute(g *pipeline.Graph) (map[string]model.Point, error) {
	start := time.Now()

	steps := g.Steps()
	if len(steps) == 0 {
		return map[string]model.Point{}, nil
	}

	order, err := graph.StableTopologicalSort(g.DAG(), func(a, b string) bool {
		return g.Index(a) < g.Index(b)
	})
	if err != nil {
		return nil, &ComputationError{Op: "sort steps", cause: err}
	}

	if len(order) != len(steps) {
		return nil, &ComputationError{Op: "sort steps", cause: errors.Errorf("sorted %d of %d steps", len(order), len(steps))}
	}

	lg, err := stratify(order, steps)
	if err != nil {
		return nil, err
	}

	lg.decross(e.cfg.DecrossIterations)
	cross := lg.assign(e.cfg.NodeWidth, e.cfg.CenterIterations)

	res := e.project(lg, cross)

	e.recorder.LayoutComputed(time.Since(start), len(steps))
	e.logger.Debug("layout computed", "steps", len(steps), "layers", len(lg.layers), "crossings", lg.crossings())

	return res, nil
}

// Apply computes the layout and moves every step. On error no step is moved.
func (e *Engine) Apply(g *pipeline.Graph) error {
	positions, err := e.Compute(g)
	if err != nil {
		return err
	}

	for _, id := range g.StepIDs() {
		if err := g.MoveStep(id, positions[id]); err != nil {
			return errors.Wrapf(err, "unable to move step %s", id)
		}
	}

	return nil
}

// project rotates the layered drawing by -90 degrees, anchors it at the origin, then scales and offsets it.
func (e *Engine) project(lg *layered, cross []float64) map[string]model.Point {
	rotated := make(map[string]model.Point, len(lg.nodes))
	minX, minY := 0.0, 0.0
	first := true

	for i, n := range lg.nodes {
		if n.dummy {
			continue
		}

		x, y := cross[i], float64(n.layer)*e.cfg.NodeHeight
		p := model.Point{X: y, Y: -x}
		rotated[n.id] = p

		if first || p.X < minX {
			minX = p.X
		}
		if first || p.Y < minY {
			minY = p.Y
		}
		first = false
	}

	res := make(map[string]model.Point, len(rotated))
	for id, p := range rotated {
		res[id] = model.Point{
			X: (p.X-minX)*e.cfg.ScaleX + e.cfg.OffsetX,
			Y: (p.Y-minY)*e.cfg.ScaleY + e.cfg.OffsetY,
		}
	}

	return res
}

type node struct {
	id    string
	dummy bool
	layer int
	up    []int
	down  []int
}

type layered struct {
	nodes  []node
	layers [][]int
	pos    []int
}

// stratify assigns every step to its longest-path layer and splits long connections with dummy nodes.
func stratify(order []string, steps []*model.Step) (*layered, error) {
	byID := make(map[string]*model.Step, len(steps))
	for _, step := range steps {
		byID[step.ID] = step
	}

	lg := &layered{}
	index := make(map[string]int, len(order))

	for _, id := range order {
		step, ok := byID[id]
		if !ok {
			return nil, &ComputationError{Op: "stratify", cause: errors.Errorf("unknown step %s", id)}
		}

		layer := 0
		for _, src := range step.IncomingConnections {
			srcIdx, ok := index[src]
			if !ok {
				return nil, &ComputationError{Op: "stratify", cause: errors.Errorf("step %s depends on unplaced step %s", id, src)}
			}
			layer = max(layer, lg.nodes[srcIdx].layer+1)
		}

		index[id] = lg.add(node{id: id, layer: layer})
	}

	for _, id := range order {
		dst := index[id]
		for _, src := range byID[id].IncomingConnections {
			prev := index[src]
			for l := lg.nodes[prev].layer + 1; l < lg.nodes[dst].layer; l++ {
				dummy := lg.add(node{dummy: true, layer: l})
				lg.link(prev, dummy)
				prev = dummy
			}
			lg.link(prev, dst)
		}
	}

	lg.pos = make([]int, len(lg.nodes))
	for l := range lg.layers {
		lg.reindex(l)
	}

	return lg, nil
}

func (lg *layered) add(n node) int {
	idx := len(lg.nodes)
	lg.nodes = append(lg.nodes, n)

	for len(lg.layers) <= n.layer {
		lg.layers = append(lg.layers, nil)
	}
	lg.layers[n.layer] = append(lg.layers[n.layer], idx)

	return idx
}

func (lg *layered) link(upper, lower int) {
	lg.nodes[upper].down = append(lg.nodes[upper].down, lower)
	lg.nodes[lower].up = append(lg.nodes[lower].up, upper)
}

func (lg *layered) reindex(l int) {
	for i, n := range lg.layers[l] {
		lg.pos[n] = i
	}
}

// pairCrossings counts the crossings between layer l and layer l+1.
func (lg *layered) pairCrossings(l int) int {
	if l < 0 || l+1 >= len(lg.layers) {
		return 0
	}

	type edge struct{ a, b int }

	var edges []edge
	for _, n := range lg.layers[l] {
		for _, d := range lg.nodes[n].down {
			edges = append(edges, edge{lg.pos[n], lg.pos[d]})
		}
	}

	count := 0
	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			if (edges[i].a < edges[j].a && edges[i].b > edges[j].b) || (edges[i].a > edges[j].a && edges[i].b < edges[j].b) {
				count++
			}
		}
	}

	return count
}

func (lg *layered) crossings() int {
	total := 0
	for l := range lg.layers {
		total += lg.pairCrossings(l)
	}

	return total
}

func (lg *layered) snapshot() [][]int {
	res := make([][]int, len(lg.layers))
	for l, layer := range lg.layers {
		res[l] = append([]int(nil), layer...)
	}

	return res
}

func (lg *layered) restore(layers [][]int) {
	lg.layers = layers
	for l := range lg.layers {
		lg.reindex(l)
	}
}

// sortByBarycenter orders layer l by the mean position of each node's neighbours. Nodes without neighbours keep
// their current position as key; ties keep the previous order.
func (lg *layered) sortByBarycenter(l int, downward bool) {
	layer := lg.layers[l]
	keys := make(map[int]float64, len(layer))

	for _, n := range layer {
		neighbours := lg.nodes[n].up
		if !downward {
			neighbours = lg.nodes[n].down
		}

		if len(neighbours) == 0 {
			keys[n] = float64(lg.pos[n])

			continue
		}

		sum := 0.0
		for _, m := range neighbours {
			sum += float64(lg.pos[m])
		}
		keys[n] = sum / float64(len(neighbours))
	}

	sort.SliceStable(layer, func(i, j int) bool {
		return keys[layer[i]] < keys[layer[j]]
	})
	lg.reindex(l)
}

// decross alternates downward and upward barycenter sweeps, keeps the best ordering seen, then swaps adjacent
// nodes while it lowers the crossing count.
func (lg *layered) decross(iterations int) {
	best := lg.snapshot()
	bestCrossings := lg.crossings()

	for iter := 0; iter < iterations && bestCrossings > 0; iter++ {
		if iter%2 == 0 {
			for l := 1; l < len(lg.layers); l++ {
				lg.sortByBarycenter(l, true)
			}
		} else {
			for l := len(lg.layers) - 2; l >= 0; l-- {
				lg.sortByBarycenter(l, false)
			}
		}

		if c := lg.crossings(); c < bestCrossings {
			best, bestCrossings = lg.snapshot(), c
		}
	}

	lg.restore(best)
	lg.transpose()
}

func (lg *layered) transpose() {
	for improved := true; improved; {
		improved = false

		for l, layer := range lg.layers {
			for i := 0; i+1 < len(layer); i++ {
				before := lg.pairCrossings(l-1) + lg.pairCrossings(l)
				layer[i], layer[i+1] = layer[i+1], layer[i]
				lg.reindex(l)

				if lg.pairCrossings(l-1)+lg.pairCrossings(l) < before {
					improved = true

					continue
				}

				layer[i], layer[i+1] = layer[i+1], layer[i]
				lg.reindex(l)
			}
		}
	}
}

// assign returns the cross-axis coordinate of every node. Each pass moves the nodes of a layer towards the mean
// of their neighbours in the previous layer of the pass, keeping at least width between siblings.
func (lg *layered) assign(width float64, iterations int) []float64 {
	cross := make([]float64, len(lg.nodes))
	for _, layer := range lg.layers {
		for i, n := range layer {
			cross[n] = float64(i) * width
		}
	}

	for iter := range iterations {
		if iter%2 == 0 {
			for l := 1; l < len(lg.layers); l++ {
				lg.center(l, true, width, cross)
			}
		} else {
			for l := len(lg.layers) - 2; l >= 0; l-- {
				lg.center(l, false, width, cross)
			}
		}
	}

	return cross
}

// center places layer l. Overlaps are resolved once pushing right and once pushing left; the result is the mean of
// both so a symmetric layer stays symmetric.
func (lg *layered) center(l int, downward bool, width float64, cross []float64) {
	layer := lg.layers[l]
	want := make([]float64, len(layer))

	for i, n := range layer {
		neighbours := lg.nodes[n].up
		if !downward {
			neighbours = lg.nodes[n].down
		}

		want[i] = cross[n]
		if len(neighbours) == 0 {
			continue
		}

		sum := 0.0
		for _, m := range neighbours {
			sum += cross[m]
		}
		want[i] = sum / float64(len(neighbours))
	}

	left := make([]float64, len(layer))
	for i := range layer {
		left[i] = want[i]
		if i > 0 {
			left[i] = max(left[i], left[i-1]+width)
		}
	}

	right := make([]float64, len(layer))
	for i := len(layer) - 1; i >= 0; i-- {
		right[i] = want[i]
		if i < len(layer)-1 {
			right[i] = min(right[i], right[i+1]-width)
		}
	}

	for i, n := range layer {
		cross[n] = (left[i] + right[i]) / 2
	}
}
