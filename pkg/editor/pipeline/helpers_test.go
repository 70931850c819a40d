package pipeline_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

func sequentialIDs() func() string {
	next := 0

	return func() string {
		next++

		return "step-" + strconv.Itoa(next)
	}
}

func newGraph(t *testing.T, steps int, connections ...[2]int) (*pipeline.Graph, []string) {
	t.Helper()

	g := pipeline.New(pipeline.WithIDGenerator(sequentialIDs()))
	ids := make([]string, steps)
	for i := range steps {
		id, err := g.AddStep("step"+strconv.Itoa(i)+".ipynb", model.Point{X: float64(i) * 100})
		require.NoError(t, err)
		ids[i] = id
	}

	for _, c := range connections {
		require.NoError(t, g.AddConnection(ids[c[0]], ids[c[1]]))
	}

	return g, ids
}
