package planner

import "github.com/kvit-dev/caleoban/models"

// DragSession holds the transient state of one drag gesture on the board:
// which card is being dragged and which column is currently highlighted.
// It belongs to a single view and is never shared.
type DragSession struct {
	Container Rect
	Layout    Layout

	task   models.Task
	active *models.Status
}

func NewDragSession(task models.Task, container Rect, layout Layout) *DragSession {
	return &DragSession{Container: container, Layout: layout, task: task}
}

// Task returns the card being dragged.
func (s *DragSession) Task() models.Task { return s.task }

// Move updates the highlighted column for the pointer position and returns it.
func (s *DragSession) Move(p Point) models.Status {
	target := ResolveDropTarget(p, s.Container, s.Layout)
	s.active = &target
	return target
}

// Active returns the highlighted column, if a drag is in progress.
func (s *DragSession) Active() (models.Status, bool) {
	if s.active == nil {
		return "", false
	}
	return *s.active, true
}

// End finishes the gesture. The highlight is cleared before anything else,
// whatever happens to the transition afterwards. The returned status is the
// candidate to hand to the Gate; changed is false when the card was dropped
// back on its own column.
func (s *DragSession) End(p Point) (target models.Status, changed bool) {
	s.active = nil
	target = ResolveDropTarget(p, s.Container, s.Layout)
	return target, target != s.task.Status
}
