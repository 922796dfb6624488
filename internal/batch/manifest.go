package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry represents one rendered asset in the output manifest.
type ManifestEntry struct {
	Asset     string `json:"asset"`
	Kind      string `json:"kind"`
	Image     string `json:"image,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Meshes    int    `json:"meshes,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WriteManifest writes the results as JSON to path. Image paths are made
// relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{Asset: r.Asset, Kind: r.Kind, Meshes: r.Meshes, Error: r.Error}
		if r.Success {
			e.Image = relTo(dir, r.Output)
			if r.Thumbnail != "" {
				e.Thumbnail = relTo(dir, r.Thumbnail)
			}
		}
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func relTo(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
