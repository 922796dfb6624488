package scene

// Scene is the world the pipeline renders: an optional background plane and
// at most one object root.
type Scene struct {
	root       *Node
	background *Node
	object     *Node
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{root: NewGroup("scene")}
}

// Root returns the top-level group.
func (s *Scene) Root() *Node { return s.root }

// Background returns the background plane, or nil.
func (s *Scene) Background() *Node { return s.background }

// SetBackground replaces the background plane. The previous plane is disposed.
func (s *Scene) SetBackground(n *Node) {
	if s.background != nil {
		s.background.Dispose()
	}
	s.background = n
	if n != nil {
		s.root.Add(n)
	}
}

// Object returns the current object root, or nil.
func (s *Scene) Object() *Node { return s.object }

// SetObject installs n as the object root. Any previous object root is
// detached and its geometry and materials released first, so at most one
// object root is ever attached.
func (s *Scene) SetObject(n *Node) {
	s.ClearObject()
	if n == nil {
		return
	}
	s.object = n
	s.root.Add(n)
}

// ClearObject disposes the current object root, if any.
func (s *Scene) ClearObject() {
	if s.object == nil {
		return
	}
	s.object.Dispose()
	s.object = nil
}

// Traverse walks every node in the scene.
func (s *Scene) Traverse(fn func(*Node)) {
	s.root.Traverse(fn)
}

// TraverseMeshes walks every mesh node in the scene.
func (s *Scene) TraverseMeshes(fn func(*Node)) {
	s.root.TraverseMeshes(fn)
}

// Dispose releases everything the scene holds.
func (s *Scene) Dispose() {
	s.ClearObject()
	s.SetBackground(nil)
}
