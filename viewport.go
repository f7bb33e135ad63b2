package dome

import "math"

// SizeClass is the viewport density class.
type SizeClass uint8

const (
	SizeClassDesktop SizeClass = iota
	SizeClassMobile
)

func (c SizeClass) String() string {
	if c == SizeClassMobile {
		return "mobile"
	}
	return "desktop"
}

const (
	wideAspect   = 1.3  // auto basis switches to width at or above this aspect
	heightGuard  = 1.35 // radius never exceeds this multiple of the height
	minViewerPad = 8.0
)

// Metrics is what the scaler derives from one container size.
type Metrics struct {
	Width, Height float64
	Radius        float64
	ViewerPad     float64
	SizeClass     SizeClass
	Segments      int
}

// Viewport derives sphere metrics from the container size.
type Viewport struct {
	cfg     Config
	metrics Metrics
	sized   bool
}

// NewViewport creates a scaler for the given tunables.
func NewViewport(cfg Config) *Viewport {
	return &Viewport{cfg: cfg}
}

// SetConfig replaces the tunables. Call Resize again to apply them.
func (v *Viewport) SetConfig(cfg Config) {
	v.cfg = cfg
}

// Metrics returns the most recent metrics.
func (v *Viewport) Metrics() Metrics {
	return v.metrics
}

// Sized reports whether Resize has been called at least once.
func (v *Viewport) Sized() bool {
	return v.sized
}

// Resize recomputes the metrics for a w×h container.
func (v *Viewport) Resize(w, h float64) Metrics {
	w, h = math.Max(1, w), math.Max(1, h)
	minDim, maxDim := math.Min(w, h), math.Max(w, h)

	var basis float64
	switch v.cfg.FitBasis {
	case "min":
		basis = minDim
	case "max":
		basis = maxDim
	case "width":
		basis = w
	case "height":
		basis = h
	default:
		if w/h >= wideAspect {
			basis = w
		} else {
			basis = minDim
		}
	}

	radius := math.Min(basis*v.cfg.Fit, h*heightGuard)
	radius = math.Max(radius, v.cfg.MinRadius)
	if v.cfg.MaxRadius > 0 {
		radius = math.Min(radius, v.cfg.MaxRadius)
	}

	m := Metrics{
		Width:     w,
		Height:    h,
		Radius:    math.Round(radius),
		ViewerPad: math.Max(minViewerPad, math.Round(minDim*v.cfg.PadFactor)),
		SizeClass: SizeClassDesktop,
		Segments:  v.cfg.Segments,
	}
	if w < v.cfg.MobileBreakpoint {
		m.SizeClass = SizeClassMobile
		m.Segments = v.cfg.MobileSegments
	}
	v.metrics = m
	v.sized = true
	return m
}

// ViewerFrame returns the rectangle a focused tile grows into.
func (m Metrics) ViewerFrame() Rect {
	return Rect{Width: m.Width, Height: m.Height}.Inset(m.ViewerPad)
}
