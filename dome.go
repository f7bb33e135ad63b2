package dome

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// toRGBA converts to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// Vec2 is a 2D vector used for screen positions and pointer offsets.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector in scene space. X grows right, Y grows down and Z
// grows toward the viewer.
type Vec3 struct {
	X, Y, Z float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Inset shrinks the rectangle by pad on every side. The result never has a
// negative size.
func (r Rect) Inset(pad float64) Rect {
	w := max(0, r.Width-2*pad)
	h := max(0, r.Height-2*pad)
	return Rect{X: r.X + (r.Width-w)/2, Y: r.Y + (r.Height-h)/2, Width: w, Height: h}
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output, carries a 3D transform
	NodeTypeTile                      // flat quad placed in 3D and perspective-projected
	NodeTypeSprite                    // screen-space rectangle (overlay, scrim)
)

// RotationOrder selects how a node's two rotation angles compose.
type RotationOrder uint8

const (
	// RotateYX applies the X rotation first, then Y (matrix Ry·Rx). Used by
	// tile parents: the tile is tilted to its row, then swung to its column.
	RotateYX RotationOrder = iota
	// RotateXY applies the Y rotation first, then X (matrix Rx·Ry). Used by
	// the sphere: yaw about its own axis, then pitch about the camera's X.
	RotateXY
)

// EventType identifies a kind of interaction event.
type EventType uint8

const (
	EventPointerDown EventType = iota // fires when a pointer button is pressed
	EventPointerUp                    // fires when a pointer button is released
	EventPointerMove                  // fires when the pointer moves (hover, no button)
	EventClick                        // fires on press then release over the same node
	EventDragStart                    // fires when movement exceeds the drag dead zone
	EventDrag                         // fires each frame while dragging
	EventDragEnd                      // fires when the pointer is released after dragging
	EventKey                          // fires when a watched key is pressed
	EventResize                       // fires when the scene size changes
	EventWheel                        // fires on wheel/trackpad scroll unless scroll is locked
	EventUpdate                       // fires once per frame after input
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// whitePixel is a lazily created 1x1 white image used for untextured quads.
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}
