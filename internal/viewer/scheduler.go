package viewer

// Scheduler coalesces redraw requests: any number of Request calls within
// one event-handler turn produce a single render when the outermost turn
// ends. Rendering never happens without a pending request.
type Scheduler struct {
	render func() error

	dirty  bool
	depth  int
	frames int
}

// NewScheduler returns a scheduler that calls render once per flush.
func NewScheduler(render func() error) *Scheduler {
	return &Scheduler{render: render}
}

// Request marks the frame dirty.
func (s *Scheduler) Request() { s.dirty = true }

// Dirty reports whether a redraw is pending.
func (s *Scheduler) Dirty() bool { return s.dirty }

// Frames returns how many renders have run.
func (s *Scheduler) Frames() int { return s.frames }

// Flush renders once if a redraw is pending.
func (s *Scheduler) Flush() error {
	if !s.dirty {
		return nil
	}
	s.dirty = false
	s.frames++
	return s.render()
}

// Turn runs fn as one event-handler turn. Nested turns flush only when the
// outermost one returns.
func (s *Scheduler) Turn(fn func()) error {
	s.depth++
	func() {
		defer func() { s.depth-- }()
		fn()
	}()
	if s.depth > 0 {
		return nil
	}
	return s.Flush()
}
