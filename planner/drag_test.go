package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kvit-dev/caleoban/models"
)

func TestDragSession_TracksActiveColumn(t *testing.T) {
	box := Rect{Width: 900, Height: 500}
	s := NewDragSession(models.Task{ID: "t", Status: models.StatusTodo}, box, LayoutWide)

	_, ok := s.Active()
	assert.False(t, ok)

	assert.Equal(t, models.StatusInProgress, s.Move(Point{X: 450, Y: 10}))
	active, ok := s.Active()
	assert.True(t, ok)
	assert.Equal(t, models.StatusInProgress, active)

	s.Move(Point{X: 850, Y: 10})
	active, _ = s.Active()
	assert.Equal(t, models.StatusDone, active)
}

func TestDragSession_EndClearsHighlight(t *testing.T) {
	box := Rect{Width: 900, Height: 500}
	s := NewDragSession(models.Task{ID: "t", Status: models.StatusTodo}, box, LayoutWide)
	s.Move(Point{X: 850})

	target, changed := s.End(Point{X: 850})

	assert.Equal(t, models.StatusDone, target)
	assert.True(t, changed)
	_, ok := s.Active()
	assert.False(t, ok)
}

func TestDragSession_DropOnOwnColumn(t *testing.T) {
	box := Rect{Width: 300, Height: 900}
	s := NewDragSession(models.Task{ID: "t", Status: models.StatusInProgress}, box, LayoutNarrow)
	s.Move(Point{Y: 100})

	target, changed := s.End(Point{Y: 450})

	assert.Equal(t, models.StatusInProgress, target)
	assert.False(t, changed)
	_, ok := s.Active()
	assert.False(t, ok)
}
