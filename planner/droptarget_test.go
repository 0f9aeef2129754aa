package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kvit-dev/caleoban/models"
)

func TestResolveDropTarget_Wide(t *testing.T) {
	box := Rect{Left: 100, Top: 50, Width: 900, Height: 600}

	cases := []struct {
		fraction float64
		want     models.Status
	}{
		{0.10, models.StatusTodo},
		{0.50, models.StatusInProgress},
		{0.90, models.StatusDone},
		{0.0, models.StatusTodo},
		{1.0 / 3, models.StatusInProgress}, // boundary belongs to the next column
		{2.0 / 3, models.StatusDone},
	}
	for _, tc := range cases {
		p := Point{X: box.Left + box.Width*tc.fraction, Y: box.Top + 10}
		assert.Equal(t, tc.want, ResolveDropTarget(p, box, LayoutWide), "x fraction %.2f", tc.fraction)
	}
}

func TestResolveDropTarget_WideIgnoresY(t *testing.T) {
	box := Rect{Left: 0, Top: 0, Width: 300, Height: 900}

	assert.Equal(t, models.StatusTodo, ResolveDropTarget(Point{X: 10, Y: 890}, box, LayoutWide))
}

func TestResolveDropTarget_Narrow(t *testing.T) {
	box := Rect{Left: 0, Top: 200, Width: 360, Height: 1200}

	assert.Equal(t, models.StatusTodo, ResolveDropTarget(Point{X: 350, Y: 200 + 120}, box, LayoutNarrow))
	assert.Equal(t, models.StatusInProgress, ResolveDropTarget(Point{X: 5, Y: 200 + 600}, box, LayoutNarrow))
	assert.Equal(t, models.StatusDone, ResolveDropTarget(Point{X: 180, Y: 200 + 1080}, box, LayoutNarrow))
}

func TestResolveDropTarget_OutsideContainerClampsToEnds(t *testing.T) {
	box := Rect{Left: 100, Top: 100, Width: 300, Height: 300}

	assert.Equal(t, models.StatusTodo, ResolveDropTarget(Point{X: 20, Y: 150}, box, LayoutWide))
	assert.Equal(t, models.StatusDone, ResolveDropTarget(Point{X: 900, Y: 150}, box, LayoutWide))
	assert.Equal(t, models.StatusTodo, ResolveDropTarget(Point{X: 150, Y: -40}, box, LayoutNarrow))
	assert.Equal(t, models.StatusDone, ResolveDropTarget(Point{X: 150, Y: 4000}, box, LayoutNarrow))
}

func TestResolveDropTarget_ZeroSizeContainer(t *testing.T) {
	assert.Equal(t, models.StatusTodo, ResolveDropTarget(Point{X: 50, Y: 50}, Rect{}, LayoutWide))
	assert.Equal(t, models.StatusTodo, ResolveDropTarget(Point{X: 50, Y: 50}, Rect{Width: 100}, LayoutNarrow))
}

func TestLayoutForViewport(t *testing.T) {
	assert.Equal(t, LayoutNarrow, LayoutForViewport(375, 768))
	assert.Equal(t, LayoutNarrow, LayoutForViewport(767.5, 768))
	assert.Equal(t, LayoutWide, LayoutForViewport(768, 768))
	assert.Equal(t, LayoutWide, LayoutForViewport(1440, 768))
	assert.Equal(t, LayoutNarrow, LayoutForViewport(700, 0), "falls back to the default breakpoint")
}
