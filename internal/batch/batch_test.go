package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glowview/internal/viewer"
)

const rectSVG = `<svg><rect x="0" y="0" width="4" height="2" fill="#ff8800"/></svg>`

func TestDiscoverAndRun(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(in, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.svg"), []byte(rectSVG), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "sub", "b.svg"), []byte(rectSVG), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.svg"), []byte("<svg>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("skip"), 0o644))

	jobs, err := Discover(in)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	out := t.TempDir()
	results := Run(context.Background(), Config{
		Options:   viewer.DefaultOptions(),
		Width:     24,
		Height:    16,
		OutputDir: out,
		Workers:   2,
		Thumbnail: 8,
	}, jobs)
	require.Len(t, results, 3)

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
			assert.FileExists(t, r.Output)
			assert.FileExists(t, r.Thumbnail)
			assert.Equal(t, 1, r.Meshes)
			assert.Equal(t, "vector", r.Kind)
		} else {
			assert.Contains(t, r.Asset, "broken.svg")
			assert.NotEmpty(t, r.Error)
		}
	}
	assert.Equal(t, 2, ok)
	assert.FileExists(t, filepath.Join(out, "sub", "b.webp"))

	manifest := filepath.Join(out, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	var entries []ManifestEntry
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)
	images := 0
	for _, e := range entries {
		if e.Image != "" {
			images++
			assert.False(t, filepath.IsAbs(e.Image))
			assert.Contains(t, e.Thumbnail, ".thumb.webp")
		}
	}
	assert.Equal(t, 2, images)
}

func TestRunEmpty(t *testing.T) {
	assert.Empty(t, Run(context.Background(), Config{Workers: 4}, nil))
}
