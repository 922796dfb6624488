// Package surface provides output attachments for a viewer: an in-memory
// target and a WebP file writer.
package surface

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/HugoSmits86/nativewebp"
)

// Memory keeps the last presented frame in memory.
type Memory struct {
	mu       sync.Mutex
	w, h     int
	last     *image.NRGBA
	presents int
}

// NewMemory returns a w×h in-memory surface.
func NewMemory(w, h int) *Memory {
	return &Memory{w: w, h: h}
}

// Size implements viewer.Surface.
func (m *Memory) Size() (int, int) { return m.w, m.h }

// Present implements viewer.Surface.
func (m *Memory) Present(frame *image.NRGBA) error {
	m.mu.Lock()
	m.last = frame
	m.presents++
	m.mu.Unlock()
	return nil
}

// Last returns the most recent frame, or nil.
func (m *Memory) Last() *image.NRGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Presents returns how many frames were presented.
func (m *Memory) Presents() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presents
}

// WebP writes every presented frame to Path, replacing the previous one.
type WebP struct {
	Path string
	w, h int
}

// NewWebP returns a w×h surface writing to path.
func NewWebP(path string, w, h int) *WebP {
	return &WebP{Path: path, w: w, h: h}
}

// Size implements viewer.Surface.
func (s *WebP) Size() (int, int) { return s.w, s.h }

// Present implements viewer.Surface.
func (s *WebP) Present(frame *image.NRGBA) error {
	return WriteWebP(s.Path, frame)
}

// WriteWebP encodes img losslessly to path, creating parent directories.
// The file is written next to its destination and renamed into place.
func WriteWebP(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("surface: mkdir %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("surface: create %s: %w", tmp, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("surface: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("surface: close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("surface: rename %s: %w", path, err)
	}
	return nil
}
