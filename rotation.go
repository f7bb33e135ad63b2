package dome

import "math"

// Inertia tuning. Release velocities arrive in px/ms.
const (
	maxReleaseVelocity = 1.4
	velocityScale      = 80.0
	inertiaDivisor     = 200.0
	steerLerp          = 0.12
)

// RotationState is the live orientation of the sphere in degrees. Pitch is
// kept within ±MaxVerticalRotationDeg; yaw is unbounded.
type RotationState struct {
	Yaw, Pitch float64
}

// RotationSource names which input currently drives the rotation.
type RotationSource uint8

const (
	SourceDrift RotationSource = iota // autonomous drift plus pointer steering
	SourceDrag
	SourceInertia
	SourceSuspended // a focus session is active
)

func (s RotationSource) String() string {
	switch s {
	case SourceDrag:
		return "drag"
	case SourceInertia:
		return "inertia"
	case SourceSuspended:
		return "suspended"
	}
	return "drift"
}

type inertiaState struct {
	active    bool
	vx, vy    float64
	friction  float64
	threshold float64
	frames    int
	maxFrames int
}

// RotationController owns the single RotationState and composes drift,
// steering, drag and inertia into it, one Step per frame.
type RotationController struct {
	cfg   Config
	state RotationState

	dragging  bool
	dragStart RotationState

	inertia inertiaState

	pointer   Vec2 // normalized to [-1, 1]
	hovering  bool
	touchOnly bool
	bias      Vec2

	suspended bool
}

// NewRotationController creates a controller at yaw = pitch = 0.
func NewRotationController(cfg Config) *RotationController {
	return &RotationController{cfg: cfg}
}

// SetConfig replaces the tunables, re-clamping pitch to the new limit.
func (r *RotationController) SetConfig(cfg Config) {
	r.cfg = cfg
	r.state.Pitch = r.clampPitch(r.state.Pitch)
}

// State returns the current orientation.
func (r *RotationController) State() RotationState {
	return r.state
}

// Source returns which input currently drives the rotation.
func (r *RotationController) Source() RotationSource {
	switch {
	case r.suspended:
		return SourceSuspended
	case r.dragging:
		return SourceDrag
	case r.inertia.active:
		return SourceInertia
	}
	return SourceDrift
}

// Dragging reports whether a drag is in progress.
func (r *RotationController) Dragging() bool {
	return r.dragging
}

// InertiaActive reports whether inertial decay is running.
func (r *RotationController) InertiaActive() bool {
	return r.inertia.active
}

// Velocity returns the current inertial velocity.
func (r *RotationController) Velocity() (vx, vy float64) {
	return r.inertia.vx, r.inertia.vy
}

func (r *RotationController) clampPitch(p float64) float64 {
	m := r.cfg.MaxVerticalRotationDeg
	return clamp(p, -m, m)
}

// BeginDrag snapshots the orientation and makes the drag the active source.
// Any running inertia stops.
func (r *RotationController) BeginDrag() RotationState {
	r.StopInertia()
	r.dragging = true
	r.dragStart = r.state
	r.bias = Vec2{}
	return r.dragStart
}

// DragTo sets the orientation from the total pointer displacement since
// BeginDrag. It does nothing while suspended.
func (r *RotationController) DragTo(dx, dy float64) {
	if !r.dragging || r.suspended {
		return
	}
	sens := r.cfg.DragSensitivity
	r.state.Yaw = r.dragStart.Yaw + dx/sens
	r.state.Pitch = r.clampPitch(r.dragStart.Pitch - dy/sens)
}

// EndDrag ends the drag without starting inertia.
func (r *RotationController) EndDrag() {
	r.dragging = false
}

// StartInertia begins frictional decay from a release velocity in px/ms.
func (r *RotationController) StartInertia(vx, vy float64) {
	d := clamp01(r.cfg.DragDampening)
	r.inertia = inertiaState{
		active:    true,
		vx:        clamp(vx, -maxReleaseVelocity, maxReleaseVelocity) * velocityScale,
		vy:        clamp(vy, -maxReleaseVelocity, maxReleaseVelocity) * velocityScale,
		friction:  0.94 + 0.055*d,
		threshold: 0.015 - 0.01*d,
		maxFrames: int(math.Round(90 + 270*d)),
	}
}

// StopInertia cancels inertial decay.
func (r *RotationController) StopInertia() {
	r.inertia = inertiaState{}
}

// SetPointer records the hover position normalized to [-1, 1] on each axis.
func (r *RotationController) SetPointer(nx, ny float64, touch bool) {
	r.pointer = Vec2{X: clamp(nx, -1, 1), Y: clamp(ny, -1, 1)}
	r.hovering = true
	r.touchOnly = touch
}

// ClearPointer forgets the hover position; steering eases back to zero.
func (r *RotationController) ClearPointer() {
	r.hovering = false
}

// Suspend freezes every rotation source while a focus session is active.
func (r *RotationController) Suspend(suspended bool) {
	r.suspended = suspended
	if suspended {
		r.StopInertia()
		r.bias = Vec2{}
	}
}

// Nudge adds a relative rotation, respecting the pitch clamp.
func (r *RotationController) Nudge(dyaw, dpitch float64) {
	if r.suspended || r.dragging {
		return
	}
	r.state.Yaw += dyaw
	r.state.Pitch = r.clampPitch(r.state.Pitch + dpitch)
}

// Step advances one frame of dt seconds.
func (r *RotationController) Step(dt float64) {
	switch r.Source() {
	case SourceSuspended, SourceDrag:
		return
	case SourceInertia:
		r.stepInertia()
	default:
		r.stepDrift(dt)
	}
}

func (r *RotationController) stepInertia() {
	in := &r.inertia
	in.vx *= in.friction
	in.vy *= in.friction
	if math.Abs(in.vx) < in.threshold && math.Abs(in.vy) < in.threshold {
		r.StopInertia()
		return
	}
	in.frames++
	if in.frames > in.maxFrames {
		r.StopInertia()
		return
	}
	r.state.Pitch = r.clampPitch(r.state.Pitch - in.vy/inertiaDivisor)
	r.state.Yaw += in.vx / inertiaDivisor
}

func (r *RotationController) stepDrift(dt float64) {
	var target Vec2
	if r.hovering && !r.touchOnly {
		target = r.pointer
	}
	r.bias.X += (target.X - r.bias.X) * steerLerp
	r.bias.Y += (target.Y - r.bias.Y) * steerLerp

	r.state.Yaw += r.cfg.AutoRotateSpeed*dt + r.bias.X*r.cfg.SteerStrength
	r.state.Pitch = r.clampPitch(r.state.Pitch - r.bias.Y*r.cfg.SteerStrength)
}
