// Package gltfmesh converts glTF 2.0 documents (.gltf or .glb) into scene
// graph nodes.
package gltfmesh

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glowview/internal/logx"
	"glowview/internal/mathutil"
	"glowview/internal/scene"
	"glowview/internal/texture"
)

// Decode opens a .gltf or .glb file. Textures referenced by URI are
// resolved relative to the file through textures, which may be nil.
func Decode(path string, textures texture.Resolver) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltfmesh: open %s: %w", path, err)
	}
	return convert(doc, filepath.Dir(path), textures)
}

// DecodeBytes decodes an in-memory document. External buffers and images
// are looked up in dir; an empty dir allows only embedded resources.
func DecodeBytes(data []byte, dir string, textures texture.Resolver) (*scene.Node, error) {
	doc := new(gltf.Document)
	var dec *gltf.Decoder
	if dir != "" {
		dec = gltf.NewDecoderFS(bytes.NewReader(data), os.DirFS(dir))
	} else {
		dec = gltf.NewDecoder(bytes.NewReader(data))
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("gltfmesh: decode: %w", err)
	}
	return convert(doc, dir, textures)
}

type converter struct {
	doc       *gltf.Document
	dir       string
	textures  texture.Resolver
	materials map[int]*scene.Material
	images    map[int]*image.NRGBA
}

func convert(doc *gltf.Document, dir string, textures texture.Resolver) (*scene.Node, error) {
	c := &converter{
		doc:       doc,
		dir:       dir,
		textures:  textures,
		materials: make(map[int]*scene.Material),
		images:    make(map[int]*image.NRGBA),
	}

	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		// No scene: every node without a parent is a root.
		child := make(map[int]bool)
		for _, n := range doc.Nodes {
			for _, ch := range n.Children {
				child[ch] = true
			}
		}
		for i := range doc.Nodes {
			if !child[i] {
				roots = append(roots, i)
			}
		}
	}

	root := scene.NewGroup("gltf")
	visited := make(map[int]bool)
	for _, idx := range roots {
		n, err := c.node(idx, visited)
		if err != nil {
			return nil, err
		}
		if n != nil {
			root.Add(n)
		}
	}
	if root.MeshCount() == 0 {
		return nil, fmt.Errorf("gltfmesh: document has no triangle meshes")
	}
	return root, nil
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func (c *converter) node(idx int, visited map[int]bool) (*scene.Node, error) {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("gltfmesh: node index %d out of range", idx)
	}
	if visited[idx] {
		return nil, fmt.Errorf("gltfmesh: node %d appears twice in the hierarchy", idx)
	}
	visited[idx] = true
	src := c.doc.Nodes[idx]

	out := scene.NewGroup(src.Name)
	if m := src.MatrixOrDefault(); m != identityMatrix {
		mat := mathutil.FromColumnMajor(m)
		out.Matrix = &mat
	} else {
		out.Position = mathutil.Vec3(src.TranslationOrDefault())
		out.Scale = mathutil.Vec3(src.ScaleOrDefault())
		out.Orientation = mathutil.Quat(src.RotationOrDefault())
	}

	if src.Mesh != nil {
		meshes, err := c.mesh(*src.Mesh)
		if err != nil {
			return nil, err
		}
		out.Add(meshes...)
	}
	for _, ch := range src.Children {
		n, err := c.node(ch, visited)
		if err != nil {
			return nil, err
		}
		out.Add(n)
	}
	return out, nil
}

func (c *converter) mesh(idx int) ([]*scene.Node, error) {
	if idx < 0 || idx >= len(c.doc.Meshes) {
		return nil, fmt.Errorf("gltfmesh: mesh index %d out of range", idx)
	}
	src := c.doc.Meshes[idx]
	var out []*scene.Node
	for pi, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			logx.Logger().Warn("gltfmesh: skipping non-triangle primitive",
				"mesh", src.Name, "primitive", pi, "mode", prim.Mode)
			continue
		}
		g, err := c.geometry(prim)
		if err != nil {
			return nil, fmt.Errorf("gltfmesh: mesh %q primitive %d: %w", src.Name, pi, err)
		}
		mat := scene.NewMaterial("default", scene.White)
		if prim.Material != nil {
			mat = c.material(*prim.Material)
		}
		name := src.Name
		if len(src.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", src.Name, pi)
		}
		out = append(out, scene.NewMesh(name, g, mat))
	}
	return out, nil
}

func (c *converter) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	acr, err := c.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(c.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	g := &scene.Geometry{Positions: make([]mathutil.Vec3, len(positions))}
	for i, p := range positions {
		g.Positions[i] = mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
	}

	if uvIdx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		acr, err := c.accessor(uvIdx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(c.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		if len(uvs) == len(positions) {
			g.UVs = make([][2]float64, len(uvs))
			for i, uv := range uvs {
				g.UVs[i] = [2]float64{float64(uv[0]), float64(uv[1])}
			}
		}
	}

	if prim.Indices != nil {
		acr, err := c.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err := modeler.ReadIndices(c.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for _, ix := range indices {
			if int(ix) >= len(positions) {
				return nil, fmt.Errorf("index %d out of range (%d vertices)", ix, len(positions))
			}
		}
		g.Indices = indices[:len(indices)-len(indices)%3]
	} else {
		g.Positions = g.Positions[:len(g.Positions)-len(g.Positions)%3]
		if g.UVs != nil {
			g.UVs = g.UVs[:len(g.Positions)]
		}
	}
	return g, nil
}

func (c *converter) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(c.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return c.doc.Accessors[idx], nil
}

func (c *converter) material(idx int) *scene.Material {
	if m, ok := c.materials[idx]; ok {
		return m
	}
	if idx < 0 || idx >= len(c.doc.Materials) {
		m := scene.NewMaterial("default", scene.White)
		c.materials[idx] = m
		return m
	}
	src := c.doc.Materials[idx]
	m := scene.NewMaterial(src.Name, scene.White)
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		f := pbr.BaseColorFactorOrDefault()
		m.Color = scene.Color{R: f[0], G: f[1], B: f[2]}
		if pbr.BaseColorTexture != nil {
			m.Map = c.texture(pbr.BaseColorTexture.Index)
		}
	}
	e := src.EmissiveFactor
	m.Emissive = scene.Color{R: e[0], G: e[1], B: e[2]}
	if src.Extensions != nil {
		if _, ok := src.Extensions["KHR_materials_unlit"]; ok {
			m.Unlit = true
		}
	}
	c.materials[idx] = m
	return m
}

func (c *converter) texture(idx int) *image.NRGBA {
	if idx < 0 || idx >= len(c.doc.Textures) || c.doc.Textures[idx].Source == nil {
		return nil
	}
	src := *c.doc.Textures[idx].Source
	if img, ok := c.images[src]; ok {
		return img
	}
	img, err := c.image(src)
	if err != nil {
		logx.Logger().Warn("gltfmesh: texture unavailable", "image", src, "err", err)
	}
	c.images[src] = img
	return img
}

func (c *converter) image(idx int) (*image.NRGBA, error) {
	if idx < 0 || idx >= len(c.doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", idx)
	}
	img := c.doc.Images[idx]
	switch {
	case img.BufferView != nil:
		bv := c.doc.BufferViews[*img.BufferView]
		buf := c.doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", *img.BufferView)
		}
		return texture.Decode(buf[bv.ByteOffset:end])
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return nil, err
		}
		return texture.Decode(data)
	case img.URI != "":
		if c.dir == "" {
			return nil, fmt.Errorf("external image %q without a base directory", img.URI)
		}
		path := filepath.Join(c.dir, filepath.FromSlash(strings.ReplaceAll(img.URI, "%20", " ")))
		if c.textures != nil {
			if t := c.textures.Resolve(path); t != nil {
				return t, nil
			}
			return nil, fmt.Errorf("texture %s not loaded", path)
		}
		return texture.LoadTexture(path)
	}
	return nil, fmt.Errorf("image %d has no source", idx)
}
