package dome

import "math"

// Mat3 is a row-major 3x3 rotation matrix.
//
//	| m0 m1 m2 |
//	| m3 m4 m5 |
//	| m6 m7 m8 |
type Mat3 [9]float64

// identityMat is the identity rotation.
var identityMat = Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Transform3D is a rotation followed by a translation: p' = M·p + T.
type Transform3D struct {
	M Mat3
	T Vec3
}

// identityTransform is the identity 3D transform.
var identityTransform = Transform3D{M: identityMat}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// rotationX returns the rotation of deg degrees about the X axis.
func rotationX(deg float64) Mat3 {
	s, c := math.Sincos(radians(deg))
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// rotationY returns the rotation of deg degrees about the Y axis.
func rotationY(deg float64) Mat3 {
	s, c := math.Sincos(radians(deg))
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// Mul returns m·o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row*3+col] = m[row*3]*o[col] + m[row*3+1]*o[3+col] + m[row*3+2]*o[6+col]
		}
	}
	return r
}

// Apply rotates v by m.
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Apply transforms the point p.
func (t Transform3D) Apply(p Vec3) Vec3 {
	r := t.M.Apply(p)
	return Vec3{X: r.X + t.T.X, Y: r.Y + t.T.Y, Z: r.Z + t.T.Z}
}

// Then returns the transform that applies child first and then t.
func (t Transform3D) Then(child Transform3D) Transform3D {
	return Transform3D{
		M: t.M.Mul(child.M),
		T: t.Apply(child.T),
	}
}

// computeLocalTransform computes a node's transform relative to its parent.
//
// Composition order:
//
//	Translate(0, 0, Depth) -> Rotate (per Order) -> Translate(0, 0, Z)
//
// so a tile parent with Depth = radius sits on the sphere surface, and the
// sphere with Z = -radius is pushed back so its front touches the screen plane.
func computeLocalTransform(n *Node) Transform3D {
	rx := rotationX(n.RotateX + n.DeltaX)
	ry := rotationY(n.RotateY + n.DeltaY)
	var m Mat3
	if n.Order == RotateXY {
		m = rx.Mul(ry)
	} else {
		m = ry.Mul(rx)
	}
	t := m.Apply(Vec3{Z: n.Depth})
	t.Z += n.Z
	return Transform3D{M: m, T: t}
}

// updateWorldTransform recomputes a node's world transform and alpha.
// parentRecomputed forces recomputation of clean children of a dirty parent.
func updateWorldTransform(n *Node, parent Transform3D, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = parent.Then(computeLocalTransform(n))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// worldTransformOf computes a node's world transform by walking its
// ancestors, ignoring any cached state. Used to measure geometry that has
// just been changed inside an input callback.
func worldTransformOf(n *Node) Transform3D {
	if n == nil {
		return identityTransform
	}
	return worldTransformOf(n.Parent).Then(computeLocalTransform(n))
}

// wrapSigned maps deg into [-180, 180).
func wrapSigned(deg float64) float64 {
	a := math.Mod(deg+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}

// --- Transform property setters ---

// SetRotation sets the node's base rotation (degrees) and marks it dirty.
func (n *Node) SetRotation(rx, ry float64) {
	n.RotateX = rx
	n.RotateY = ry
	n.transformDirty = true
}

// SetRotationDelta sets the node's additive counter-rotation (degrees) and
// marks it dirty.
func (n *Node) SetRotationDelta(dx, dy float64) {
	n.DeltaX = dx
	n.DeltaY = dy
	n.transformDirty = true
}

// SetDepth sets the node's Z translations and marks it dirty.
func (n *Node) SetDepth(z, depth float64) {
	n.Z = z
	n.Depth = depth
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}
