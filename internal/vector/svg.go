// Package vector turns SVG artwork into solid meshes: each filled outline is
// flattened, split into shapes with holes, triangulated and extruded.
package vector

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"cogentcore.org/core/colors"
	"cogentcore.org/core/math32"
	"cogentcore.org/core/paint/ppath"
	"golang.org/x/net/html/charset"
)

// ErrNoShapes is returned when the document has no filled geometry.
var ErrNoShapes = errors.New("vector: no filled shapes")

// defaultFill is used when an element inherits no fill, matching SVG's black default.
var defaultFill = color.RGBA{0, 0, 0, 255}

// Outline is one filled SVG element: its path in document coordinates
// (transforms applied, y pointing down) and its fill color.
type Outline struct {
	Path ppath.Path
	Fill color.RGBA
}

type groupState struct {
	transform math32.Matrix2
	fill      string
}

// ParseOutlines reads an SVG document and returns every filled element as an
// outline. Elements with fill="none" are skipped.
func ParseOutlines(r io.Reader) ([]Outline, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.AutoClose = xml.HTMLAutoClose
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charset.NewReaderLabel

	stack := []groupState{{transform: math32.Identity2()}}
	sawSVG := false
	var outlines []Outline

	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("vector: xml: %w", err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			parent := stack[len(stack)-1]
			attrs := attrMap(se.Attr)
			state, err := childState(parent, attrs)
			if err != nil {
				return nil, err
			}
			stack = append(stack, state)

			nm := se.Name.Local
			if nm == "svg" {
				sawSVG = true
				continue
			}
			p, err := elementPath(nm, attrs)
			if err != nil {
				return nil, err
			}
			if p == nil || p.Empty() {
				continue
			}
			if strings.EqualFold(state.fill, "none") {
				continue
			}
			outlines = append(outlines, Outline{
				Path: p.Transform(state.transform),
				Fill: parseFill(state.fill),
			})
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if !sawSVG {
		return nil, errors.New("vector: not an svg document")
	}
	return outlines, nil
}

// ParseOutlinesBytes is ParseOutlines over a byte slice.
func ParseOutlinesBytes(data []byte) ([]Outline, error) {
	return ParseOutlines(bytes.NewReader(data))
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = a.Value
	}
	// Inline style wins over presentation attributes.
	if style, ok := m["style"]; ok {
		for _, decl := range strings.Split(style, ";") {
			k, v, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			m[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return m
}

func childState(parent groupState, attrs map[string]string) (groupState, error) {
	state := parent
	if tr, ok := attrs["transform"]; ok {
		var m math32.Matrix2
		if err := m.SetString(tr); err != nil {
			return state, fmt.Errorf("vector: transform %q: %w", tr, err)
		}
		state.transform = parent.transform.Mul(m)
	}
	if fill, ok := attrs["fill"]; ok {
		state.fill = fill
	}
	return state, nil
}

// elementPath builds the path for a shape element, or nil for non-shapes.
func elementPath(name string, attrs map[string]string) (*ppath.Path, error) {
	num := func(key string) float32 {
		v, _ := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(attrs[key]), "px"), 32)
		return float32(v)
	}
	p := ppath.New()
	switch name {
	case "path":
		d, ok := attrs["d"]
		if !ok {
			return nil, nil
		}
		parsed, err := ppath.ParseSVGPath(d)
		if err != nil {
			return nil, fmt.Errorf("vector: path data: %w", err)
		}
		return &parsed, nil
	case "polygon":
		pts, err := readPoints(attrs["points"])
		if err != nil {
			return nil, err
		}
		if len(pts) < 3 {
			return nil, nil
		}
		return p.Polygon(pts...), nil
	case "rect":
		w, h := num("width"), num("height")
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		return p.Rectangle(num("x"), num("y"), w, h), nil
	case "circle":
		r := num("r")
		if r <= 0 {
			return nil, nil
		}
		return p.Circle(num("cx"), num("cy"), r), nil
	case "ellipse":
		rx, ry := num("rx"), num("ry")
		if rx <= 0 || ry <= 0 {
			return nil, nil
		}
		return p.Ellipse(num("cx"), num("cy"), rx, ry), nil
	}
	return nil, nil
}

func readPoints(s string) ([]math32.Vector2, error) {
	pts := math32.ReadPoints(s)
	if len(pts)%2 != 0 {
		return nil, fmt.Errorf("vector: polygon has an odd number of coordinates: %d", len(pts))
	}
	vec := make([]math32.Vector2, len(pts)/2)
	for i := range vec {
		vec[i] = math32.Vec2(pts[i*2], pts[i*2+1])
	}
	return vec, nil
}

func parseFill(s string) color.RGBA {
	s = strings.TrimSpace(s)
	if s == "" || !strings.HasPrefix(s, "#") {
		return defaultFill
	}
	c, err := colors.FromHex(s)
	if err != nil {
		return defaultFill
	}
	return c
}
