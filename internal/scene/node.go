// Package scene holds the renderable object graph: a tagged node tree of
// groups and meshes, their geometry and materials, and render layers.
package scene

import (
	"glowview/internal/mathutil"
)

// Kind discriminates node variants.
type Kind uint8

const (
	KindGroup Kind = iota
	KindMesh
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	}
	return "unknown"
}

// Transform is a node's local transform: T × Rx·Ry·Rz(Rotation) × R(Orientation) × S.
// When Matrix is set it replaces the composed transform.
type Transform struct {
	Position    mathutil.Vec3
	Rotation    mathutil.Vec3 // Euler XYZ, radians
	Orientation mathutil.Quat
	Scale       mathutil.Vec3
	Matrix      *mathutil.Mat4
}

// IdentityTransform returns a transform with unit scale and no rotation.
func IdentityTransform() Transform {
	return Transform{
		Orientation: mathutil.QuatIdentity,
		Scale:       mathutil.One,
	}
}

// Local returns the local transform matrix.
func (t Transform) Local() mathutil.Mat4 {
	if t.Matrix != nil {
		return *t.Matrix
	}
	r := mathutil.Mat3Mul(mathutil.EulerXYZ(t.Rotation), mathutil.QuatToMat3(t.Orientation))
	return mathutil.Compose(t.Position, r, t.Scale)
}

// Node is one element of the scene graph. Mesh nodes carry Geometry and
// Material; group nodes only carry children.
type Node struct {
	Kind Kind
	Name string
	Transform

	Layers Layers

	// Glow marks the node as bloom-eligible. It is set once at ingestion
	// and says whether the node should glow, not whether it currently does.
	Glow bool

	Geometry *Geometry
	Material *Material

	Children []*Node
	parent   *Node
}

// NewGroup returns an empty group node on the default layer.
func NewGroup(name string) *Node {
	return &Node{
		Kind:      KindGroup,
		Name:      name,
		Transform: IdentityTransform(),
		Layers:    Layers(1 << DefaultLayer),
	}
}

// NewMesh returns a mesh node on the default layer.
func NewMesh(name string, g *Geometry, m *Material) *Node {
	return &Node{
		Kind:      KindMesh,
		Name:      name,
		Transform: IdentityTransform(),
		Layers:    Layers(1 << DefaultLayer),
		Geometry:  g,
		Material:  m,
	}
}

// IsMesh reports whether n is a renderable mesh.
func (n *Node) IsMesh() bool { return n.Kind == KindMesh }

// Parent returns the node n is attached to, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Add attaches children to n, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
}

// Remove detaches c from n. It reports whether c was a child of n.
func (n *Node) Remove(c *Node) bool {
	for i, ch := range n.Children {
		if ch == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Traverse calls fn for n and every descendant, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// TraverseMeshes calls fn for every mesh node in the subtree.
func (n *Node) TraverseMeshes(fn func(*Node)) {
	n.Traverse(func(c *Node) {
		if c.Kind == KindMesh {
			fn(c)
		}
	})
}

// WorldMatrix returns the product of all local transforms from the root down to n.
func (n *Node) WorldMatrix() mathutil.Mat4 {
	m := n.Local()
	for p := n.parent; p != nil; p = p.parent {
		m = mathutil.Mat4Mul(p.Local(), m)
	}
	return m
}

// Bounds returns the bounding box of all mesh geometry under n, expressed in
// n's own coordinate frame (n's transform excluded, descendants' included).
func (n *Node) Bounds() mathutil.Box3 {
	box := mathutil.EmptyBox()
	var walk func(c *Node, m mathutil.Mat4)
	walk = func(c *Node, m mathutil.Mat4) {
		if c.Kind == KindMesh && c.Geometry != nil {
			for _, p := range c.Geometry.Positions {
				box = box.ExpandByPoint(m.MulPoint(p))
			}
		}
		for _, ch := range c.Children {
			walk(ch, mathutil.Mat4Mul(m, ch.Local()))
		}
	}
	walk(n, mathutil.Mat4Identity())
	return box
}

// MeshCount returns the number of mesh nodes in the subtree.
func (n *Node) MeshCount() int {
	count := 0
	n.TraverseMeshes(func(*Node) { count++ })
	return count
}

// Dispose releases geometry and material data of the whole subtree and
// detaches it from its parent. A disposed node must not be rendered again.
func (n *Node) Dispose() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
	n.Traverse(func(c *Node) {
		if c.Geometry != nil {
			c.Geometry.Dispose()
		}
		if c.Material != nil {
			c.Material.Dispose()
		}
	})
}
