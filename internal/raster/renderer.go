package raster

import (
	"glowview/internal/camera"
	"glowview/internal/mathutil"
	"glowview/internal/scene"
)

// Renderer rasterizes a scene into a FrameBuffer. It keeps per-call scratch
// slices so repeated frames do not allocate per vertex.
type Renderer struct {
	Light LightConfig

	verts []vertex
	world []mathutil.Vec3
	front []bool
}

// NewRenderer returns a renderer with the default light rig.
func NewRenderer() *Renderer {
	return &Renderer{Light: DefaultLightConfig()}
}

// Render draws every mesh of s as seen by cam. The caller clears fb.
// Triangles with a vertex behind the near plane are skipped rather than clipped.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Camera, fb *FrameBuffer) int {
	vp := cam.ViewProjection()
	drawn := 0
	s.TraverseMeshes(func(n *scene.Node) {
		drawn += r.renderMesh(n, vp, cam.Near, fb)
	})
	return drawn
}

func (r *Renderer) renderMesh(n *scene.Node, vp mathutil.Mat4, near float64, fb *FrameBuffer) int {
	g, mat := n.Geometry, n.Material
	if g == nil || mat == nil || len(g.Positions) == 0 {
		return 0
	}

	world := n.WorldMatrix()
	mvp := mathutil.Mat4Mul(vp, world)
	hasUV := mat.Map != nil && len(g.UVs) == len(g.Positions)

	nv := len(g.Positions)
	r.verts = grow(r.verts, nv)
	r.world = grow(r.world, nv)
	r.front = grow(r.front, nv)

	w, h := float64(fb.Width), float64(fb.Height)
	for i, p := range g.Positions {
		r.world[i] = world.MulPoint(p)
		cx, cy, _, cw := mvp.MulVec4(p)
		if cw < near {
			r.front[i] = false
			continue
		}
		r.front[i] = true
		iw := 1 / cw
		v := vertex{
			x:  (cx*iw*0.5 + 0.5) * w,
			y:  (0.5 - cy*iw*0.5) * h,
			iw: iw,
		}
		if hasUV {
			v.uw = g.UVs[i][0] * iw
			v.vw = g.UVs[i][1] * iw
		}
		r.verts[i] = v
	}

	surf := surface{
		base:     mat.Color,
		emissive: mat.EmissiveRadiance(),
		shade:    1,
	}
	if hasUV {
		surf.tex = mat.Map
	}

	drawn := 0
	tris := g.TriangleCount()
	for t := 0; t < tris; t++ {
		a, b, c := g.Triangle(t)
		if a >= nv || b >= nv || c >= nv {
			continue
		}
		if !r.front[a] || !r.front[b] || !r.front[c] {
			continue
		}
		if !mat.Unlit {
			normal := r.world[b].Sub(r.world[a]).Cross(r.world[c].Sub(r.world[a])).Normalize()
			if normal == (mathutil.Vec3{}) {
				continue
			}
			surf.shade = r.Light.ComputeShade(normal)
		}
		rasterizeTriangle(fb, r.verts[a], r.verts[b], r.verts[c], &surf)
		drawn++
	}
	return drawn
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
