package interaction_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-editor/pkg/editor/interaction"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
	"github.com/askiada/pipeline-editor/pkg/editor/viewport"
)

type fixture struct {
	machine *interaction.Machine
	graph   *pipeline.Graph
	view    *viewport.Viewport
	notices []model.Notice
}

func newFixture(t *testing.T, opts ...interaction.Option) *fixture {
	t.Helper()

	f := &fixture{graph: pipeline.New(), view: viewport.New(viewport.DefaultConfig())}
	opts = append([]interaction.Option{interaction.WithNotifier(model.NotifierFunc(func(n model.Notice) {
		f.notices = append(f.notices, n)
	}))}, opts...)
	f.machine = interaction.New(interaction.DefaultConfig(), f.graph, f.view, opts...)

	return f
}

func (f *fixture) addStep(t *testing.T, id string, x, y float64) {
	t.Helper()

	_, err := f.graph.AddStep(id+".py", model.Point{X: x, Y: y}, pipeline.WithStepID(id))
	require.NoError(t, err)
}

func (f *fixture) send(t *testing.T, events ...interaction.Event) {
	t.Helper()

	for _, ev := range events {
		require.NoError(t, f.machine.Dispatch(context.Background(), ev))
	}
}

func (f *fixture) position(t *testing.T, id string) model.Point {
	t.Helper()

	step, ok := f.graph.Step(id)
	require.True(t, ok)

	return step.Position
}

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

func down(x, y float64) interaction.PointerDown { return interaction.PointerDown{Screen: pt(x, y)} }

func move(x, y float64) interaction.PointerMove { return interaction.PointerMove{Screen: pt(x, y)} }

func up(x, y float64) interaction.PointerUp { return interaction.PointerUp{Screen: pt(x, y)} }

func click(x, y float64) interaction.Click { return interaction.Click{Screen: pt(x, y)} }
