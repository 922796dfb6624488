package viewer

import "math"

// DragThreshold is the largest per-move normalized delta that rotates the
// object. Larger jumps are treated as stale and ignored.
const DragThreshold = 0.1

// Controller is the pointer drag state machine: idle until a pointer goes
// down, dragging until it goes up or leaves the surface.
type Controller struct {
	dragging     bool
	lastX, lastY float64
}

// Normalize maps client pixel coordinates to [-1, 1] on both axes.
// y grows downward, as in client coordinates.
func Normalize(clientX, clientY float64, width, height int) (x, y float64) {
	return clientX/float64(max(1, width))*2 - 1, clientY/float64(max(1, height))*2 - 1
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Down starts a drag at the normalized position.
func (c *Controller) Down(x, y float64) {
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// Move records the normalized position and returns the delta from the
// previous one. ok is true only while dragging and when both deltas are
// below DragThreshold. The reference position is updated either way.
func (c *Controller) Move(x, y float64) (dx, dy float64, ok bool) {
	dx, dy = x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	ok = c.dragging && math.Abs(dx) < DragThreshold && math.Abs(dy) < DragThreshold
	return dx, dy, ok
}

// Up ends the drag. Leaving the surface does the same.
func (c *Controller) Up() { c.dragging = false }
