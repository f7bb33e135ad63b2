package dome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportRadiusByBasis(t *testing.T) {
	tests := []struct {
		name  string
		basis string
		w, h  float64
		want  float64
	}{
		// min radius 0 so the basis shows through
		{"auto wide uses width", "auto", 1600, 1000, 800},
		{"auto narrow uses min", "auto", 1000, 1000, 500},
		{"min", "min", 1600, 1000, 500},
		{"max", "max", 1000, 1600, 800},
		{"width", "width", 1200, 1000, 600},
		{"height", "height", 1000, 900, 450},
		{"height guard", "width", 4000, 400, 540},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.FitBasis = tt.basis
			cfg.MinRadius = 0
			m := NewViewport(cfg).Resize(tt.w, tt.h)
			if m.Radius != tt.want {
				t.Errorf("Radius = %v, want %v", m.Radius, tt.want)
			}
		})
	}
}

func TestViewportRadiusClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinRadius = 300
	cfg.MaxRadius = 400
	v := NewViewport(cfg)

	assert.Equal(t, 300.0, v.Resize(200, 200).Radius, "below MinRadius")
	assert.Equal(t, 400.0, v.Resize(2000, 1000).Radius, "above MaxRadius")
	assert.Equal(t, 350.0, v.Resize(700, 700).Radius, "inside range")

	cfg.MaxRadius = 0
	v.SetConfig(cfg)
	assert.Equal(t, 1000.0, v.Resize(2000, 1000).Radius, "MaxRadius 0 is unbounded")
}

func TestViewportRadiusRounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinRadius = 0
	cfg.FitBasis = "min"
	m := NewViewport(cfg).Resize(1001, 1001)
	assert.Equal(t, 501.0, m.Radius)
}

func TestViewportPad(t *testing.T) {
	cfg := DefaultConfig()
	v := NewViewport(cfg)

	assert.Equal(t, 200.0, v.Resize(1280, 800).ViewerPad)
	assert.Equal(t, 8.0, v.Resize(20, 20).ViewerPad, "floored at 8")

	cfg.PadFactor = 0
	v.SetConfig(cfg)
	assert.Equal(t, 8.0, v.Resize(1280, 800).ViewerPad)
}

func TestViewportSizeClass(t *testing.T) {
	v := NewViewport(DefaultConfig())

	m := v.Resize(1280, 800)
	assert.Equal(t, SizeClassDesktop, m.SizeClass)
	assert.Equal(t, 36, m.Segments)

	m = v.Resize(767, 1000)
	assert.Equal(t, SizeClassMobile, m.SizeClass)
	assert.Equal(t, 24, m.Segments)

	m = v.Resize(768, 1000)
	assert.Equal(t, SizeClassDesktop, m.SizeClass, "breakpoint itself is desktop")
}

func TestViewportFloorsSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinRadius = 0
	v := NewViewport(cfg)
	m := v.Resize(0, -5)
	assert.Equal(t, 1.0, m.Width)
	assert.Equal(t, 1.0, m.Height)
	assert.True(t, v.Sized())
}

func TestViewerFrame(t *testing.T) {
	m := NewViewport(DefaultConfig()).Resize(1280, 800)
	assert.Equal(t, Rect{X: 200, Y: 200, Width: 880, Height: 400}, m.ViewerFrame())
}

func TestSizeClassString(t *testing.T) {
	assert.Equal(t, "desktop", SizeClassDesktop.String())
	assert.Equal(t, "mobile", SizeClassMobile.String())
}
