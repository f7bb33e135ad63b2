package dome

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMat(t *testing.T, name string, got, want Mat3) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertVec3(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	assertNear(t, name+".X", got.X, want.X)
	assertNear(t, name+".Y", got.Y, want.Y)
	assertNear(t, name+".Z", got.Z, want.Z)
}

// --- computeLocalTransform ---

func TestLocalTransformIdentity(t *testing.T) {
	got := computeLocalTransform(NewContainer("test"))
	assertMat(t, "identity", got.M, identityMat)
	assertVec3(t, "translation", got.T, Vec3{})
}

func TestLocalTransformDepth(t *testing.T) {
	n := NewContainer("test")
	n.SetDepth(-50, 200)
	got := computeLocalTransform(n)
	assertVec3(t, "translation", got.T, Vec3{Z: 150})
}

func TestLocalTransformRotateY90(t *testing.T) {
	n := NewContainer("test")
	n.SetRotation(0, 90)
	n.SetDepth(0, 100)
	got := computeLocalTransform(n)
	// Depth is pushed out along the rotated Z axis.
	assertVec3(t, "translation", got.T, Vec3{X: 100})
	assertVec3(t, "x axis", got.M.Apply(Vec3{X: 1}), Vec3{Z: -1})
}

func TestLocalTransformOrder(t *testing.T) {
	n := NewContainer("test")
	n.SetRotation(30, 40)
	yx := computeLocalTransform(n).M
	assertMat(t, "RotateYX", yx, rotationY(40).Mul(rotationX(30)))

	n.Order = RotateXY
	xy := computeLocalTransform(n).M
	assertMat(t, "RotateXY", xy, rotationX(30).Mul(rotationY(40)))
}

func TestDeltaAddsToRotation(t *testing.T) {
	n := NewContainer("test")
	n.SetRotation(10, 20)
	n.SetRotationDelta(5, -50)
	assertMat(t, "delta", computeLocalTransform(n).M, rotationY(-30).Mul(rotationX(15)))
}

func TestCounterRotationIsIdentity(t *testing.T) {
	tests := []struct {
		name                     string
		pitch, yaw, baseX, baseY float64
	}{
		{"front", 0, 0, 0, 0},
		{"rotated sphere", 3, 20, 0, 0},
		{"back tile", -4, 200, -40, -180},
		{"many turns", 5, -1234.5, 20, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const r = 640
			sphere := NewContainer("sphere")
			sphere.Order = RotateXY
			sphere.SetRotation(tt.pitch, tt.yaw)
			sphere.SetDepth(-r, 0)
			item := NewContainer("item")
			item.SetRotation(tt.baseX, tt.baseY)
			item.SetDepth(0, r)
			item.SetRotationDelta(-(tt.baseX + tt.pitch), wrapSigned(-(tt.baseY + tt.yaw)))
			tile := NewTile("tile", nil, 10, 10)
			sphere.AddChild(item)
			item.AddChild(tile)

			got := worldTransformOf(tile)
			assertMat(t, "rotation", got.M, identityMat)
			assertVec3(t, "translation", got.T, Vec3{})
		})
	}
}

func TestWorldTransformMatchesCache(t *testing.T) {
	root := NewContainer("root")
	a := NewContainer("a")
	a.SetRotation(10, 20)
	a.SetDepth(-5, 30)
	b := NewTile("b", nil, 1, 1)
	b.SetRotation(-7, 3)
	root.AddChild(a)
	a.AddChild(b)

	updateWorldTransform(root, identityTransform, 1, false)
	want := worldTransformOf(b)
	assertMat(t, "cached", b.worldTransform.M, want.M)
	assertVec3(t, "cached", b.worldTransform.T, want.T)

	// A clean child of a dirty parent is recomputed.
	a.SetRotation(50, 0)
	updateWorldTransform(root, identityTransform, 1, false)
	want = worldTransformOf(b)
	assertMat(t, "recomputed", b.worldTransform.M, want.M)
}

func TestWorldAlpha(t *testing.T) {
	root := NewContainer("root")
	a := NewContainer("a")
	a.SetAlpha(0.5)
	b := NewSprite("b", nil, Rect{})
	b.SetAlpha(0.5)
	root.AddChild(a)
	a.AddChild(b)
	updateWorldTransform(root, identityTransform, 1, false)
	assertNear(t, "worldAlpha", b.worldAlpha, 0.25)
}

func TestWrapSigned(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{90, 90},
		{179, 179},
		{180, -180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{360, 0},
		{725, 5},
		{-725, -5},
	}
	for _, tt := range tests {
		assertNear(t, "wrapSigned", wrapSigned(tt.in), tt.want)
	}
}

// --- Camera ---

func TestCameraProject(t *testing.T) {
	c := newCamera(Rect{Width: 800, Height: 600}, 1000)

	p, scale, ok := c.Project(Vec3{})
	if !ok {
		t.Fatal("origin must project")
	}
	assertNear(t, "center.X", p.X, 400)
	assertNear(t, "center.Y", p.Y, 300)
	assertNear(t, "scale", scale, 1)

	p, scale, _ = c.Project(Vec3{X: 100, Z: -1000})
	assertNear(t, "far scale", scale, 0.5)
	assertNear(t, "far.X", p.X, 450)

	if _, _, ok := c.Project(Vec3{Z: 1000}); ok {
		t.Error("a point at the eye must not project")
	}
}

func TestCameraOrthographic(t *testing.T) {
	c := newCamera(Rect{Width: 100, Height: 100}, 0)
	p, scale, ok := c.Project(Vec3{X: 10, Y: 5, Z: -1e6})
	if !ok || scale != 1 {
		t.Fatalf("scale = %v ok = %v", scale, ok)
	}
	assertNear(t, "X", p.X, 60)
	assertNear(t, "Y", p.Y, 55)
}

func TestProjectQuadFacing(t *testing.T) {
	c := newCamera(Rect{Width: 800, Height: 600}, 1000)

	front := Transform3D{M: identityMat}
	quad, depth, facing, ok := c.projectQuad(front, 100, 50)
	if !ok || !facing {
		t.Fatalf("front quad ok=%v facing=%v", ok, facing)
	}
	assertNear(t, "depth", depth, 0)
	assertNear(t, "top-left.X", quad[0].X, 350)
	assertNear(t, "bottom-right.Y", quad[2].Y, 325)

	back := Transform3D{M: rotationY(180), T: Vec3{Z: -200}}
	if _, _, facing, ok := c.projectQuad(back, 100, 50); !ok || facing {
		t.Errorf("back quad ok=%v facing=%v, want culled", ok, facing)
	}

	behind := Transform3D{M: identityMat, T: Vec3{Z: 2000}}
	if _, _, _, ok := c.projectQuad(behind, 100, 50); ok {
		t.Error("quad behind the eye must not project")
	}
}

func TestSquareToQuadFollowsPerspective(t *testing.T) {
	c := newCamera(Rect{Width: 800, Height: 600}, 1000)
	const w, h = 200.0, 100.0
	tilted := Transform3D{M: rotationY(40).Mul(rotationX(-15)), T: Vec3{X: 60, Z: -300}}
	quad, _, _, ok := c.projectQuad(tilted, w, h)
	if !ok {
		t.Fatal("tilted quad must project")
	}
	place := squareToQuad(quad)

	for _, uv := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5}, {0.25, 0.75}, {0.9, 0.1}} {
		want, _, _ := c.Project(tilted.Apply(Vec3{X: (uv[0] - 0.5) * w, Y: (uv[1] - 0.5) * h}))
		got := place(uv[0], uv[1])
		if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 {
			t.Errorf("place(%v) = %v, want %v", uv, got, want)
		}
	}
}

func TestSquareToQuadAffine(t *testing.T) {
	place := squareToQuad([4]Vec2{{10, 20}, {110, 20}, {110, 70}, {10, 70}})
	got := place(0.5, 0.2)
	assertNear(t, "X", got.X, 60)
	assertNear(t, "Y", got.Y, 30)
}

func TestQuadBounds(t *testing.T) {
	q := [4]Vec2{{20, 0}, {80, 5}, {100, 100}, {0, 90}}
	got := quadBounds(q)
	want := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	if got != want {
		t.Errorf("quadBounds = %v, want %v", got, want)
	}
}
