package surface

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory(3, 2)
	w, h := m.Size()
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
	assert.Nil(t, m.Last())

	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	require.NoError(t, m.Present(img))
	assert.Same(t, img, m.Last())
	assert.Equal(t, 1, m.Presents())
}

func TestWebPWritesRIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "frame.webp")
	s := NewWebP(path, 4, 4)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(1, 1, color.NRGBA{255, 0, 0, 255})
	require.NoError(t, s.Present(img))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.True(t, bytes.Equal(data[:4], []byte("RIFF")))
	assert.True(t, bytes.Equal(data[8:12], []byte("WEBP")))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
