package planner

import "github.com/kvit-dev/caleoban/models"

// DefaultMobileBreakpoint is the viewport width below which the board stacks
// its columns vertically.
const DefaultMobileBreakpoint = 768

type Layout string

const (
	LayoutNarrow Layout = "narrow" // columns stacked top to bottom
	LayoutWide   Layout = "wide"   // columns side by side
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a bounding box in the same coordinate space as Point.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutForViewport picks the board layout from the viewport width alone.
func LayoutForViewport(width, breakpoint float64) Layout {
	if breakpoint <= 0 {
		breakpoint = DefaultMobileBreakpoint
	}
	if width < breakpoint {
		return LayoutNarrow
	}
	return LayoutWide
}

// ResolveDropTarget maps a pointer position to the status column under it.
// The container is cut into equal segments along one axis, one per status in
// models.Statuses order: vertical segments for the narrow layout, horizontal
// for the wide one. Pointers outside the container fall into the nearest end
// segment; a zero-size container resolves to the first status.
func ResolveDropTarget(p Point, container Rect, layout Layout) models.Status {
	offset, length := p.X-container.Left, container.Width
	if layout == LayoutNarrow {
		offset, length = p.Y-container.Top, container.Height
	}
	if length <= 0 {
		return models.Statuses[0]
	}

	n := len(models.Statuses)
	segment := length / float64(n)
	for i := 0; i < n-1; i++ {
		if offset < segment*float64(i+1) {
			return models.Statuses[i]
		}
	}
	return models.Statuses[n-1]
}
