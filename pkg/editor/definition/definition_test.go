package definition_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-editor/pkg/editor/definition"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

const document = `{
  "uuid": "pipeline-1",
  "name": "etl",
  "version": "1.2.3",
  "settings": {"auto_eviction": false},
  "parameters": {},
  "steps": {
    "b": {
      "uuid": "b",
      "title": "transform",
      "file_path": "transform.py",
      "environment": "env-1",
      "incoming_connections": ["a"],
      "parameters": {"rows": 10},
      "kernel": {"name": "python", "display_name": "Python 3"},
      "meta_data": {"position": [400, 100], "hidden": false}
    },
    "a": {
      "uuid": "a",
      "title": "load",
      "file_path": "load.ipynb",
      "environment": "env-1",
      "incoming_connections": [],
      "parameters": {},
      "kernel": {"name": "python", "display_name": "Python 3"},
      "meta_data": {"position": [100, 100], "hidden": false}
    }
  }
}`

func TestToGraph(t *testing.T) {
	t.Parallel()

	def, err := definition.Unmarshal([]byte(document))
	require.NoError(t, err)

	g, err := definition.ToGraph(def)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, g.StepIDs())
	assert.Equal(t, []model.Connection{{Source: "a", Target: "b"}}, g.Connections())

	step, ok := g.Step("b")
	require.True(t, ok)
	assert.Equal(t, "transform", step.Title)
	assert.Equal(t, "env-1", step.Environment)
	assert.Equal(t, model.Point{X: 400, Y: 100}, step.Position)
}

func TestRoundTripKeepsUnknownFields(t *testing.T) {
	t.Parallel()

	def, err := definition.Unmarshal([]byte(document))
	require.NoError(t, err)

	g, err := definition.ToGraph(def)
	require.NoError(t, err)
	require.NoError(t, g.MoveStep("a", model.Point{X: 5, Y: 6}))

	out := definition.FromGraph(def, g)

	assert.Equal(t, "etl", out.Name)
	assert.Equal(t, map[string]any{"auto_eviction": false}, out.Settings)
	assert.InDelta(t, 10, out.Steps["b"].Parameters["rows"], 0)
	assert.Equal(t, definition.Kernel{Name: "python", DisplayName: "Python 3"}, out.Steps["b"].Kernel)
	assert.Equal(t, [2]float64{5, 6}, out.Steps["a"].MetaData.Position)
	assert.Equal(t, []string{}, out.Steps["a"].IncomingConnections)

	buf, err := definition.Marshal(out)
	require.NoError(t, err)

	back, err := definition.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, out.SortedStepIDs(), back.SortedStepIDs())
	assert.Equal(t, []string{"a"}, back.Steps["b"].IncomingConnections)
}

func TestFromGraphNewSteps(t *testing.T) {
	t.Parallel()

	g := pipeline.New()
	id, err := g.AddStep("notebooks/clean.ipynb", model.Point{X: 1, Y: 2})
	require.NoError(t, err)

	out := definition.FromGraph(definition.New("p", "new"), g)

	require.Contains(t, out.Steps, id)
	assert.Equal(t, "clean", out.Steps[id].Title)
	assert.Equal(t, map[string]any{}, out.Steps[id].Parameters)
	assert.Equal(t, definition.CurrentVersion, out.Version)
}

func TestToGraphErrors(t *testing.T) {
	t.Parallel()

	step := func(id string, incoming ...string) definition.StepDefinition {
		return definition.StepDefinition{UUID: id, FilePath: id + ".py", IncomingConnections: incoming}
	}

	tests := map[string]struct {
		steps  map[string]definition.StepDefinition
		target error
	}{
		"cycle": {
			steps:  map[string]definition.StepDefinition{"a": step("a", "b"), "b": step("b", "a")},
			target: pipeline.ErrGraphInvariant,
		},
		"unknown source": {
			steps:  map[string]definition.StepDefinition{"a": step("a", "ghost")},
			target: pipeline.ErrGraphInvariant,
		},
		"mismatched id": {
			steps:  map[string]definition.StepDefinition{"a": step("b")},
			target: definition.ErrMismatchedStepID,
		},
		"missing path": {
			steps:  map[string]definition.StepDefinition{"a": {UUID: "a"}},
			target: pipeline.ErrPathMustBeSet,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			def := definition.New("p", name)
			def.Steps = tt.steps

			_, err := definition.ToGraph(def)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), err)
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	t.Parallel()

	_, err := definition.Unmarshal([]byte(`{"name": "x"}`))
	assert.ErrorIs(t, err, definition.ErrMissingUUID)

	_, err = definition.Unmarshal([]byte(`{`))
	assert.Error(t, err)
}
