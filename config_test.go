package dome

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
fit: 0.6
fitBasis: height
segments: 30
grayscale: false
overlayColor: "#112233"
images:
  - one.png
  - src: two.jpg
    alt: Second
`))
	require.NoError(t, err)

	want := DefaultConfig()
	want.Fit = 0.6
	want.FitBasis = "height"
	want.Segments = 30
	want.Grayscale = false
	want.OverlayColor = "#112233"
	want.Images = []Image{{Src: "one.png"}, {Src: "two.jpg", Alt: "Second"}}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigEmptyKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"too few segments", "segments: 2"},
		{"unknown fit basis", "fitBasis: diagonal"},
		{"zero fit", "fit: 0"},
		{"named overlay color", "overlayColor: red"},
		{"dampening above one", "dragDampening: 1.5"},
		{"pitch limit above 90", "maxVerticalRotationDeg: 120"},
		{"negative tile radius", "tileRadius: -1"},
		{"zero transition", "enlargeTransitionMs: 0"},
		{"max below min radius", "minRadius: 600\nmaxRadius: 300"},
		{"malformed yaml", "segments: [1, 2"},
		{"nested image list", "images:\n  - [a, b]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dome.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mobileSegments: 18\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 18, cfg.MobileSegments)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "missing.yaml")
}

func TestConfigOverlay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OverlayColor = "#ff0000"
	assert.Equal(t, Color{R: 1, G: 0, B: 0, A: 1}, cfg.Overlay())

	cfg.OverlayColor = "#060010"
	c := cfg.Overlay()
	assert.InDelta(t, 6.0/255, c.R, 1e-9)
	assert.InDelta(t, 16.0/255, c.B, 1e-9)

	cfg.OverlayColor = "nope"
	assert.Equal(t, Color{A: 1}, cfg.Overlay())
}
