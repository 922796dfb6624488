package vector

import (
	"bytes"
	"fmt"
	"io"

	"glowview/internal/logx"
	"glowview/internal/scene"
)

// Decode parses an SVG document into one extruded mesh per filled element.
// Each mesh's geometry is centered on its own bounding-box center and the
// mesh is positioned there, so the meshes keep their document layout.
// Coordinates are SVG's (y down); the caller flips y when fitting.
func Decode(r io.Reader) ([]*scene.Node, error) {
	outlines, err := ParseOutlines(r)
	if err != nil {
		return nil, err
	}
	var meshes []*scene.Node
	for i, o := range outlines {
		shapes := Shapes(Contours(o.Path))
		if len(shapes) == 0 {
			logx.Logger().Debug("vector: outline has no area", "index", i)
			continue
		}
		color := scene.ColorFromRGBA(o.Fill)
		for j, s := range shapes {
			g := Extrude(s, ExtrudeDepth)
			if g.TriangleCount() == 0 {
				continue
			}
			mesh := scene.NewMesh(fmt.Sprintf("shape-%d-%d", i, j), g, scene.NewMaterial("fill", color))
			mesh.Position = g.Center()
			meshes = append(meshes, mesh)
		}
	}
	if len(meshes) == 0 {
		return nil, ErrNoShapes
	}
	return meshes, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(data []byte) ([]*scene.Node, error) {
	return Decode(bytes.NewReader(data))
}
