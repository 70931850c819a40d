package interaction_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/pipeline-editor/pkg/editor/interaction"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

func TestHitTestPriority(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 400, 200)
	require.NoError(t, f.graph.AddConnection("a", "b"))

	tcs := map[string]struct {
		point model.Point
		want  interaction.Hit
	}{
		"anchor":     {point: pt(190, 52.5), want: interaction.Hit{Kind: interaction.HitOutputAnchor, StepID: "a"}},
		"anchor rim": {point: pt(183, 52.5), want: interaction.Hit{Kind: interaction.HitOutputAnchor, StepID: "a"}},
		"body":       {point: pt(50, 50), want: interaction.Hit{Kind: interaction.HitStep, StepID: "a"}},
		"connection": {point: pt(295, 152.5), want: interaction.Hit{
			Kind: interaction.HitConnection, Connection: model.Connection{Source: "a", Target: "b"},
		}},
		"empty": {point: pt(50, 400), want: interaction.Hit{Kind: interaction.HitNone}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, f.machine.HitTest(tc.point))
		})
	}
}

func TestScenarioConnectTwoSteps(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 100, 100)
	f.addStep(t, "b", 300, 100)

	f.send(t, down(290, 152.5))
	assert.Equal(t, interaction.ModeDraggingConnection, f.machine.State().Mode)

	f.send(t, move(350, 140))
	dangling, ok := f.machine.DanglingConnection()
	require.True(t, ok)
	assert.Equal(t, interaction.Dangling{Source: "a", End: pt(350, 140)}, dangling)

	f.send(t, up(400, 150))
	assert.Equal(t, interaction.ModeIdle, f.machine.State().Mode)
	assert.Equal(t, []model.Connection{{Source: "a", Target: "b"}}, f.graph.Connections())

	var cycleErr *pipeline.CycleError
	assert.ErrorAs(t, f.graph.AddConnection("b", "a"), &cycleErr)
	assert.Empty(t, f.notices)
}

func TestConnectionRejections(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		from, to model.Point
		notice   bool
	}{
		"cycle":        {from: pt(490, 152.5), to: pt(150, 150), notice: true},
		"duplicate":    {from: pt(290, 152.5), to: pt(400, 150), notice: true},
		"self":         {from: pt(290, 152.5), to: pt(150, 150)},
		"empty canvas": {from: pt(290, 152.5), to: pt(900, 900)},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.addStep(t, "a", 100, 100)
			f.addStep(t, "b", 300, 100)
			require.NoError(t, f.graph.AddConnection("a", "b"))

			f.send(t, interaction.PointerDown{Screen: tc.from}, interaction.PointerMove{Screen: tc.to}, interaction.PointerUp{Screen: tc.to})

			assert.Equal(t, interaction.ModeIdle, f.machine.State().Mode)
			assert.Nil(t, f.machine.State().Dangling)
			assert.Equal(t, []model.Connection{{Source: "a", Target: "b"}}, f.graph.Connections())

			if tc.notice {
				require.Len(t, f.notices, 1)
				assert.Equal(t, model.NoticeTransient, f.notices[0].Level)
			} else {
				assert.Empty(t, f.notices)
			}
		})
	}
}

func TestBoxSelection(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		from, to  model.Point
		selection []string
		want      []string
	}{
		"partial overlap":  {from: pt(-10, -10), to: pt(50, 50), want: []string{"a"}},
		"reversed corners": {from: pt(600, 600), to: pt(180, 90), want: []string{"a", "b", "c"}},
		"contains c":       {from: pt(-20, 280), to: pt(700, 700), want: []string{"c"}},
		"empty rectangle":  {from: pt(-50, 500), to: pt(-50, 500), selection: []string{"a"}},
		"zero width":       {from: pt(50, -20), to: pt(50, 200), selection: []string{"a"}},
		"zero height":      {from: pt(-20, 50), to: pt(700, 50), selection: []string{"a"}},
		"nothing inside":   {from: pt(-50, 500), to: pt(-20, 900), selection: []string{"b"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.addStep(t, "a", 0, 0)
			f.addStep(t, "b", 300, 0)
			f.addStep(t, "c", 0, 300)
			require.NoError(t, f.graph.AddConnection("a", "b"))

			if tc.selection != nil {
				f.send(t, interaction.KeyDown{Key: "a", Modifiers: interaction.Modifiers{Ctrl: true}})
			}

			f.send(t, interaction.PointerDown{Screen: tc.from}, interaction.PointerMove{Screen: tc.to})

			rect, ok := f.machine.SelectionRect()
			require.True(t, ok)
			assert.Equal(t, model.RectFromPoints(tc.from, tc.to), rect)

			f.send(t, interaction.PointerUp{Screen: tc.to})

			state := f.machine.State()
			assert.Equal(t, interaction.ModeIdle, state.Mode)
			assert.Equal(t, tc.want, state.Selection)
		})
	}
}

func TestDragSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 300, 0)
	f.addStep(t, "c", 0, 300)

	f.send(t, down(-10, -10), move(400, 50), up(400, 50), click(400, 50))
	require.Equal(t, []string{"a", "b"}, f.machine.State().Selection)

	f.send(t, down(50, 50), move(51, 50))
	preview, _ := f.machine.PreviewPosition("a")
	assert.Equal(t, pt(0, 0), preview, "below the drag threshold")

	f.send(t, move(80, 90))
	preview, _ = f.machine.PreviewPosition("b")
	assert.Equal(t, pt(330, 40), preview)
	assert.Equal(t, pt(0, 0), f.position(t, "a"), "the graph is untouched while dragging")

	f.send(t, up(80, 90), click(80, 90))

	assert.Equal(t, pt(30, 40), f.position(t, "a"))
	assert.Equal(t, pt(330, 40), f.position(t, "b"))
	assert.Equal(t, pt(0, 300), f.position(t, "c"))
	assert.Equal(t, []string{"a", "b"}, f.machine.State().Selection)
}

func TestDragUnselectedStep(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 300, 0)

	f.send(t, interaction.KeyDown{Key: "a", Modifiers: interaction.Modifiers{Meta: true}})
	f.send(t, interaction.Click{Screen: pt(50, 50)})
	require.Equal(t, []string{"a", "b"}, f.machine.State().Selection)

	f.send(t, interaction.Cancel{})
	f.send(t, down(350, 50))
	assert.Equal(t, []string{"a", "b"}, f.machine.State().Selection, "pressing a selected step keeps the selection")
	f.send(t, up(350, 50))

	f.send(t, down(-100, -100), up(-100, -100), click(-100, -100))
	f.send(t, down(350, 50), move(360, 50), up(360, 50))

	assert.Equal(t, []string{"b"}, f.machine.State().Selection)
	assert.Equal(t, pt(310, 0), f.position(t, "b"))
	assert.Equal(t, pt(0, 0), f.position(t, "a"))
}

func TestCancelDiscardsGesture(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		start  model.Point
		cancel interaction.Event
	}{
		"drag with escape":       {start: pt(50, 50), cancel: interaction.KeyDown{Key: "Escape"}},
		"drag on focus loss":     {start: pt(50, 50), cancel: interaction.Cancel{}},
		"connection with escape": {start: pt(190, 52.5), cancel: interaction.KeyDown{Key: "Escape"}},
		"box on focus loss":      {start: pt(-50, -50), cancel: interaction.Cancel{}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.addStep(t, "a", 0, 0)
			f.addStep(t, "b", 300, 0)

			f.send(t, interaction.PointerDown{Screen: tc.start}, move(400, 60), tc.cancel, up(400, 60))

			state := f.machine.State()
			assert.Equal(t, interaction.ModeIdle, state.Mode)
			assert.Nil(t, state.Dangling)
			assert.Equal(t, pt(0, 0), f.position(t, "a"))
			assert.Empty(t, f.graph.Connections())
		})
	}
}

func TestClickOnEmptyCanvas(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)

	f.send(t, down(50, 50), up(50, 50), click(50, 50), interaction.DoubleClick{Screen: pt(50, 50)})
	state := f.machine.State()
	assert.Equal(t, []string{"a"}, state.Selection)
	assert.Equal(t, "a", state.OpenedStep)

	f.send(t, down(600, 600), up(600, 600), click(600, 600))
	state = f.machine.State()
	assert.Empty(t, state.Selection)
	assert.Empty(t, state.OpenedStep)
}

func TestDoubleClickKeepsSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 300, 0)

	f.send(t, down(50, 50), up(50, 50), click(50, 50))
	f.send(t, interaction.DoubleClick{Screen: pt(350, 50)})

	state := f.machine.State()
	assert.Equal(t, []string{"a"}, state.Selection)
	assert.Equal(t, "b", state.OpenedStep)
}

func TestModifierClickToggles(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 300, 0)

	shift := interaction.Modifiers{Shift: true}
	f.send(t,
		interaction.PointerDown{Screen: pt(50, 50), Modifiers: shift}, up(50, 50), click(50, 50),
		interaction.PointerDown{Screen: pt(350, 50), Modifiers: shift}, up(350, 50), click(350, 50),
	)
	assert.Equal(t, []string{"a", "b"}, f.machine.State().Selection)

	f.send(t, interaction.PointerDown{Screen: pt(50, 50), Modifiers: shift}, up(50, 50), click(50, 50))
	assert.Equal(t, []string{"b"}, f.machine.State().Selection)
}

func TestSelectAndDeleteConnection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 400, 200)
	require.NoError(t, f.graph.AddConnection("a", "b"))

	f.send(t, down(295, 152.5), up(295, 152.5), click(295, 152.5))
	state := f.machine.State()
	require.NotNil(t, state.SelectedConnection)
	assert.Equal(t, model.Connection{Source: "a", Target: "b"}, *state.SelectedConnection)

	f.send(t, interaction.KeyDown{Key: "Delete"})
	assert.Empty(t, f.graph.Connections())
	assert.Equal(t, 2, f.graph.Len())
}

func TestDeleteSteps(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.addStep(t, "b", 300, 0)
	f.addStep(t, "c", 600, 0)
	require.NoError(t, f.graph.AddConnection("a", "b"))
	require.NoError(t, f.graph.AddConnection("b", "c"))

	f.send(t, down(350, 50), up(350, 50), click(350, 50), interaction.KeyDown{Key: "Backspace"})

	assert.Equal(t, []string{"a", "c"}, f.graph.StepIDs())
	assert.Empty(t, f.graph.Connections())
	assert.Empty(t, f.machine.State().Selection)
}

func TestPanning(t *testing.T) {
	t.Parallel()

	tcs := map[string]interaction.PointerDown{
		"middle button": {Button: interaction.ButtonMiddle, Screen: pt(50, 50)},
		"space held":    {Screen: pt(50, 50), Modifiers: interaction.Modifiers{Space: true}},
	}

	for name, start := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.addStep(t, "a", 0, 0)

			f.send(t, start)
			assert.Equal(t, interaction.ModePanning, f.machine.State().Mode)

			f.send(t, move(70, 80), move(100, 90))
			assert.Equal(t, pt(50, 40), f.view.State().Pan)

			f.send(t, interaction.PointerUp{Button: start.Button, Screen: pt(100, 90)}, click(100, 90))
			assert.Equal(t, interaction.ModeIdle, f.machine.State().Mode)
			assert.Equal(t, pt(0, 0), f.position(t, "a"))
		})
	}
}

func TestWheel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	f.send(t, interaction.Wheel{DeltaX: 10, DeltaY: 20})
	assert.Equal(t, pt(-10, -20), f.view.State().Pan)

	anchor := pt(300, 200)
	before := f.view.ScreenToCanvas(anchor)
	f.send(t, interaction.Wheel{Screen: anchor, DeltaY: -100, Modifiers: interaction.Modifiers{Ctrl: true}})

	assert.Greater(t, f.view.Scale(), 1.0)
	after := f.view.ScreenToCanvas(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestContextMenu(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)

	f.send(t, interaction.PointerDown{Button: interaction.ButtonSecondary, Screen: pt(50, 50)})
	state := f.machine.State()
	require.NotNil(t, state.ContextMenu)
	assert.Equal(t, "a", state.ContextMenu.StepID)
	assert.Equal(t, interaction.ModeIdle, state.Mode)

	f.send(t, interaction.CloseMenu{})
	assert.Nil(t, f.machine.State().ContextMenu)

	f.send(t, interaction.PointerDown{Button: interaction.ButtonSecondary, Screen: pt(500, 500)})
	require.NotNil(t, f.machine.State().ContextMenu)
	assert.Empty(t, f.machine.State().ContextMenu.StepID)

	f.send(t, down(600, 600))
	state = f.machine.State()
	assert.Nil(t, state.ContextMenu)
	assert.Equal(t, interaction.ModeIdle, state.Mode, "closing the menu does not start a box selection")
}

func TestScaledCanvas(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 100, 100)
	f.view.SetScale(2)

	screen := f.view.CanvasToScreen(pt(150, 150))
	f.send(t, interaction.PointerDown{Screen: screen}, interaction.PointerMove{Screen: screen.Add(pt(20, 0))},
		interaction.PointerUp{Screen: screen.Add(pt(20, 0))})

	assert.Equal(t, pt(110, 100), f.position(t, "a"))
}

func TestUnknownEvent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.Error(t, f.machine.Dispatch(context.Background(), nil))
}

func TestReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addStep(t, "a", 0, 0)
	f.send(t, down(50, 50))
	f.machine.Reset()

	assert.Equal(t, interaction.State{}, f.machine.State())
}
