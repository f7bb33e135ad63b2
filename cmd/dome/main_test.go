package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/dome"
)

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "notes.txt", "c.webp", "d.tga"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.png", "e.png"), nil, 0o644))

	pool, err := scanImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []dome.Image{
		{Src: filepath.Join(dir, "a.png"), Alt: "a.png"},
		{Src: filepath.Join(dir, "b.JPG"), Alt: "b.JPG"},
		{Src: filepath.Join(dir, "c.webp"), Alt: "c.webp"},
		{Src: filepath.Join(dir, "d.tga"), Alt: "d.tga"},
		{Src: filepath.Join(dir, "sub.png", "e.png"), Alt: filepath.Join("sub.png", "e.png")},
	}, pool)

	_, err = scanImages(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
