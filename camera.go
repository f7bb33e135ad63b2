package dome

import "math"

// Camera projects scene space onto the screen with a single-point perspective,
// the way a CSS perspective container does: the eye sits Perspective pixels in
// front of the screen plane (Z = 0), looking at the viewport center.
type Camera struct {
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect
	// Perspective is the eye distance in pixels. Zero disables perspective.
	Perspective float64
}

// newCamera creates a Camera with the given viewport and perspective.
func newCamera(viewport Rect, perspective float64) *Camera {
	return &Camera{Viewport: viewport, Perspective: perspective}
}

// Eye returns the eye position in scene space.
func (c *Camera) Eye() Vec3 {
	return Vec3{Z: c.Perspective}
}

// Project maps a scene-space point to screen coordinates. ok is false when
// the point lies at or behind the eye.
func (c *Camera) Project(p Vec3) (screen Vec2, scale float64, ok bool) {
	scale = 1.0
	if c.Perspective > 0 {
		den := c.Perspective - p.Z
		if den <= 1e-6 {
			return Vec2{}, 0, false
		}
		scale = c.Perspective / den
	}
	center := c.Viewport.Center()
	return Vec2{X: center.X + p.X*scale, Y: center.Y + p.Y*scale}, scale, true
}

// projectQuad projects the four corners of a w×h quad centered on the origin
// of transform t. Corners are returned clockwise from top-left. facing
// reports whether the quad's front side points at the eye.
func (c *Camera) projectQuad(t Transform3D, w, h float64) (quad [4]Vec2, depth float64, facing, ok bool) {
	hw, hh := w/2, h/2
	local := [4]Vec3{{-hw, -hh, 0}, {hw, -hh, 0}, {hw, hh, 0}, {-hw, hh, 0}}
	for i, p := range local {
		s, _, visible := c.Project(t.Apply(p))
		if !visible {
			return quad, 0, false, false
		}
		quad[i] = s
	}
	center := t.Apply(Vec3{})
	normal := t.M.Apply(Vec3{Z: 1})
	eye := c.Eye()
	toEye := Vec3{X: eye.X - center.X, Y: eye.Y - center.Y, Z: eye.Z - center.Z}
	if c.Perspective <= 0 {
		toEye = Vec3{Z: 1}
	}
	facing = normal.X*toEye.X+normal.Y*toEye.Y+normal.Z*toEye.Z > 0
	return quad, center.Z, facing, true
}

// quadBounds returns the axis-aligned bounding rectangle of a projected quad.
func quadBounds(q [4]Vec2) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range q {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// squareToQuad returns the projective map taking the unit square onto q,
// with (0,0) at q[0] and (1,1) at q[2]. It reproduces the perspective
// projection of any point on a planar quad from its four projected corners.
func squareToQuad(q [4]Vec2) func(u, v float64) Vec2 {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y

	var g, h float64
	sx, sy := x0-x1+x2-x3, y0-y1+y2-y3
	if sx != 0 || sy != 0 {
		dx1, dx2 := x1-x2, x3-x2
		dy1, dy2 := y1-y2, y3-y2
		if den := dx1*dy2 - dx2*dy1; den != 0 {
			g = (sx*dy2 - dx2*sy) / den
			h = (dx1*sy - sx*dy1) / den
		}
	}
	a, b, c := x1-x0+g*x1, x3-x0+h*x3, x0
	d, e, f := y1-y0+g*y1, y3-y0+h*y3, y0
	return func(u, v float64) Vec2 {
		w := g*u + h*v + 1
		return Vec2{X: (a*u + b*v + c) / w, Y: (d*u + e*v + f) / w}
	}
}
