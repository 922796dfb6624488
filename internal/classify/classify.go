// Package classify assigns glow-eligible meshes to the bloom render layer.
package classify

import "glowview/internal/scene"

// BloomMask is the layer mask the pipeline tests against.
var BloomMask = scene.Layers(1 << scene.BloomLayer)

// MarkGlow tags every mesh under root as bloom-eligible. This is static
// metadata set once at ingestion.
func MarkGlow(root *scene.Node) {
	root.TraverseMeshes(func(n *scene.Node) {
		n.Glow = true
	})
}

// Apply rewrites layer membership of every bloom-eligible mesh under root:
// enabled puts it on the bloom layer in addition to the default layer,
// disabled demotes it to the default layer only. Non-eligible nodes are left
// alone. It returns the number of nodes whose membership changed.
func Apply(root *scene.Node, enabled bool) int {
	if root == nil {
		return 0
	}
	changed := 0
	root.TraverseMeshes(func(n *scene.Node) {
		if !n.Glow {
			return
		}
		before := n.Layers
		if enabled {
			n.Layers.Enable(scene.BloomLayer)
		} else {
			n.Layers.Set(scene.DefaultLayer)
		}
		if n.Layers != before {
			changed++
		}
	})
	return changed
}

// IsBloom reports whether n is currently visible to the bloom pass.
func IsBloom(n *scene.Node) bool {
	return n.Layers.Test(BloomMask)
}
