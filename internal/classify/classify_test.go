package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glowview/internal/scene"
)

func tree() (root, glow, plain *scene.Node) {
	root = scene.NewGroup("root")
	glow = scene.NewMesh("glow", &scene.Geometry{}, scene.NewMaterial("g", scene.White))
	plain = scene.NewMesh("plain", &scene.Geometry{}, scene.NewMaterial("p", scene.White))
	root.Add(glow)
	MarkGlow(root)
	root.Add(plain)
	return root, glow, plain
}

func TestMarkGlowOnlyMeshes(t *testing.T) {
	root, glow, plain := tree()
	assert.True(t, glow.Glow)
	assert.False(t, plain.Glow)
	assert.False(t, root.Glow)
}

func TestApplyTogglesBloomLayer(t *testing.T) {
	root, glow, plain := tree()

	assert.Equal(t, 1, Apply(root, true))
	assert.True(t, IsBloom(glow))
	assert.True(t, glow.Layers.Has(scene.DefaultLayer))
	assert.False(t, IsBloom(plain))

	// Idempotent.
	assert.Equal(t, 0, Apply(root, true))

	assert.Equal(t, 1, Apply(root, false))
	assert.False(t, IsBloom(glow))
	assert.True(t, glow.Layers.Has(scene.DefaultLayer))
	assert.True(t, glow.Glow)

	assert.Equal(t, 0, Apply(nil, true))
}
