package drawer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/pipeline-editor/pkg/editor/drawer"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

func TestRenderConnectionPath(t *testing.T) {
	t.Parallel()

	geo := drawer.RenderConnection(model.Point{X: 0, Y: 10}, model.Point{X: 100, Y: 50}, false)

	assert.Equal(t, "M0 10 C50 10, 50 50, 100 50", geo.Path)
	assert.Equal(t, geo.Path, geo.HitPath)
	assert.Greater(t, geo.HitWidth, geo.StrokeWidth)
	assert.Equal(t, model.Point{X: 50, Y: 10}, geo.Control1)
	assert.Equal(t, model.Point{X: 50, Y: 50}, geo.Control2)
}

func TestRenderConnectionClasses(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		start, end model.Point
		selected   bool
		want       []string
	}{
		"plain":       {start: model.Point{}, end: model.Point{X: 100, Y: 10}, want: []string{"connection"}},
		"short":       {start: model.Point{}, end: model.Point{X: 5, Y: 10}, want: []string{"connection", "flipped-horizontal"}},
		"backwards":   {start: model.Point{X: 100}, end: model.Point{Y: 10}, want: []string{"connection", "flipped-horizontal"}},
		"upwards":     {start: model.Point{Y: 50}, end: model.Point{X: 100}, want: []string{"connection", "flipped"}},
		"both":        {start: model.Point{X: 100, Y: 50}, end: model.Point{}, want: []string{"connection", "flipped-horizontal", "flipped"}},
		"selected":    {end: model.Point{X: 100}, selected: true, want: []string{"connection", "selected"}},
		"flat at gap": {end: model.Point{X: 10}, want: []string{"connection"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			geo := drawer.RenderConnection(tc.start, tc.end, tc.selected)
			assert.Equal(t, tc.want, geo.Classes)
		})
	}
}

func TestRenderConnectionFlipKeepsDirection(t *testing.T) {
	t.Parallel()

	start, end := model.Point{X: 200, Y: 80}, model.Point{X: 10, Y: 0}
	geo := drawer.RenderConnection(start, end, false)

	assert.True(t, geo.HasClass(drawer.ClassFlipped))
	assert.Equal(t, start, geo.At(0))
	assert.Equal(t, end, geo.At(1))
}

func TestSelectedStroke(t *testing.T) {
	t.Parallel()

	plain := drawer.RenderConnection(model.Point{}, model.Point{X: 100}, false)
	selected := drawer.RenderConnection(model.Point{}, model.Point{X: 100}, true)

	assert.NotEqual(t, plain.Stroke, selected.Stroke)
	assert.Equal(t, "connection selected", selected.Class())
}

func TestHit(t *testing.T) {
	t.Parallel()

	geo := drawer.RenderConnection(model.Point{X: 0, Y: 0}, model.Point{X: 200, Y: 100}, false)

	assert.True(t, geo.HitArea(model.Point{X: 100, Y: 50}))
	assert.True(t, geo.HitArea(model.Point{X: 2, Y: 3}))
	assert.False(t, geo.HitArea(model.Point{X: 100, Y: 120}))
	assert.False(t, geo.Hit(model.Point{X: 100, Y: 58}, 1))
	assert.True(t, geo.Hit(model.Point{X: 100, Y: 58}, 10))
}
