package drawer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-editor/pkg/editor/drawer"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

var stepSize = model.Size{Width: 190, Height: 100}

func sampleGraph(t *testing.T) *pipeline.Graph {
	t.Helper()

	g := pipeline.New()
	_, err := g.AddStep("load <raw>.py", model.Point{X: 0, Y: 0}, pipeline.WithStepID("a"))
	require.NoError(t, err)
	_, err = g.AddStep("train.ipynb", model.Point{X: 300, Y: 0}, pipeline.WithStepID("b"))
	require.NoError(t, err)
	_, err = g.AddStep("hidden.py", model.Point{X: 600, Y: 0}, pipeline.WithStepID("c"), pipeline.WithHidden(true))
	require.NoError(t, err)

	require.NoError(t, g.AddConnection("a", "b"))
	require.NoError(t, g.AddConnection("b", "c"))
	require.NoError(t, g.SetRunStatus("b", model.RunStatusSuccess))

	return g
}

func TestSVGDrawer(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	d := drawer.NewSVGDrawer(drawer.DefaultStyle(), stepSize, 8)

	var buf bytes.Buffer
	err := d.Draw(&buf, g, drawer.Selection{
		Steps:      []string{"a"},
		Connection: &model.Connection{Source: "a", Target: "b"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `data-id="a"`)
	assert.Contains(t, out, `data-id="b"`)
	assert.NotContains(t, out, `data-id="c"`)
	assert.Contains(t, out, "load &lt;raw&gt;")
	assert.Contains(t, out, `class="connection selected"`)
	assert.Contains(t, out, drawer.StepFill(model.RunStatusSuccess))

	geo := drawer.RenderConnection(model.Point{X: 190, Y: 50}, model.Point{X: 300, Y: 50}, true)
	assert.Contains(t, out, geo.Path)
	assert.Equal(t, 1, strings.Count(out, `class="connection`))
}

func TestSVGDrawerDangling(t *testing.T) {
	t.Parallel()

	g := sampleGraph(t)
	d := drawer.NewSVGDrawer(drawer.DefaultStyle(), stepSize, 8)

	var buf bytes.Buffer
	err := d.Draw(&buf, g, drawer.Selection{Dangling: &drawer.Dangling{Source: "b", End: model.Point{X: 700, Y: 300}}})
	require.NoError(t, err)

	geo := drawer.RenderConnection(model.Point{X: 490, Y: 50}, model.Point{X: 700, Y: 300}, true)
	assert.Contains(t, buf.String(), geo.Path)
}

func TestSVGDrawerEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, drawer.NewSVGDrawer(drawer.DefaultStyle(), stepSize, 8).Draw(&buf, pipeline.New(), drawer.Selection{}))
	assert.Contains(t, buf.String(), "</svg>")
}
