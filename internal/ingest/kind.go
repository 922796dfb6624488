// Package ingest turns an asset locator into a fitted, glow-tagged object
// graph. Loads run off the caller's goroutine; a generation counter makes
// the most recent load the only one whose result may be applied.
package ingest

import (
	"fmt"
	"path"
	"strings"
)

// Kind selects the decoder for an asset.
type Kind int

const (
	// KindAuto picks Vector or Mesh from the locator's extension.
	KindAuto Kind = iota
	// KindMesh is a glTF 2.0 document (.gltf or .glb).
	KindMesh
	// KindVector is SVG artwork extruded into 3D.
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindMesh:
		return "mesh"
	case KindVector:
		return "vector"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts "mesh"/"gltf"/"glb", "vector"/"svg" and "auto" or "".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "mesh", "gltf", "glb":
		return KindMesh, nil
	case "vector", "svg":
		return KindVector, nil
	}
	return KindAuto, fmt.Errorf("ingest: unknown asset kind %q", s)
}

// Resolve returns k, or for KindAuto the kind implied by the locator.
// Anything that is not .svg is treated as a mesh.
func (k Kind) Resolve(locator string) Kind {
	if k != KindAuto {
		return k
	}
	loc := locator
	if i := strings.IndexAny(loc, "?#"); i >= 0 && !strings.HasPrefix(loc, "data:") {
		loc = loc[:i]
	}
	if strings.HasPrefix(loc, "data:image/svg") || strings.EqualFold(path.Ext(loc), ".svg") {
		return KindVector
	}
	return KindMesh
}
