package ingest

import (
	"context"
	"fmt"

	"glowview/internal/classify"
	"glowview/internal/gltfmesh"
	"glowview/internal/scene"
	"glowview/internal/texture"
	"glowview/internal/vector"
)

// ObjectName names the root of every ingested asset.
const ObjectName = "object3D"

// Options configures how assets are fetched and decorated.
type Options struct {
	Fetcher  Fetcher          // nil means DefaultFetcher
	Textures texture.Resolver // shared texture cache for mesh assets; may be nil

	// Emissive overrides every mesh's emissive color when set.
	Emissive *scene.Color
}

// Asset is a decoded, glow-tagged object graph ready to be attached.
type Asset struct {
	Kind    Kind
	Locator string
	Root    *scene.Node
	Fit     *Fit // vector assets only
}

// Build decodes data as kind and prepares the object root: every mesh is
// marked bloom-eligible, the emissive override is applied, and vector
// assets are fitted to place.
func Build(ctx context.Context, kind Kind, locator string, data []byte, place Placement, opts Options) (*Asset, error) {
	kind = kind.Resolve(locator)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	asset := &Asset{Kind: kind, Locator: locator}

	switch kind {
	case KindMesh:
		root, err := gltfmesh.DecodeBytes(data, BaseDir(locator), opts.Textures)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: %w: %w", locator, ErrDecode, err)
		}
		asset.Root = root
	case KindVector:
		meshes, err := vector.DecodeBytes(data)
		if err != nil {
			return nil, fmt.Errorf("ingest: %s: %w: %w", locator, ErrDecode, err)
		}
		root := scene.NewGroup(ObjectName)
		root.Add(meshes...)
		fit := FitVector(root, place)
		asset.Root = root
		asset.Fit = &fit
	default:
		return nil, fmt.Errorf("ingest: %s: unsupported kind %v", locator, kind)
	}

	asset.Root.Name = ObjectName
	classify.MarkGlow(asset.Root)
	if opts.Emissive != nil {
		OverrideEmissive(asset.Root, *opts.Emissive)
	}
	return asset, nil
}

// OverrideEmissive sets the emissive color of every mesh material under root.
func OverrideEmissive(root *scene.Node, c scene.Color) {
	if root == nil {
		return
	}
	root.TraverseMeshes(func(n *scene.Node) {
		if n.Material != nil {
			n.Material.Emissive = c
		}
	})
}
