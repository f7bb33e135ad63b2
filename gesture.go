package dome

import (
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	velocityWindow   = 100 * time.Millisecond
	tapSuppression   = 80 * time.Millisecond
	minInertiaSpeed  = 0.005
	fallbackScale    = 0.02
	fallbackVelocity = 1.2
)

type moveSample struct {
	t    time.Duration
	x, y float64
}

// DragSession is the state of one pointer press, from down to up.
type DragSession struct {
	PointerID      int
	StartX, StartY float64
	StartRot       RotationState
	StartTime      time.Duration
	Touch          bool
	// Moved is set once the pointer leaves the drag dead zone.
	Moved bool

	samples []moveSample
}

// releaseVelocity returns the pointer velocity in px/ms measured over the
// trailing window. ok is false when fewer than two samples exist or no time
// elapsed between them.
func (d *DragSession) releaseVelocity(now time.Duration) (vx, vy float64, ok bool) {
	if len(d.samples) < 2 {
		return 0, 0, false
	}
	last := d.samples[len(d.samples)-1]
	anchor := d.samples[0]
	cutoff := now - velocityWindow
	for _, s := range d.samples[:len(d.samples)-1] {
		if s.t <= cutoff {
			anchor = s
		}
	}
	dt := float64(last.t-anchor.t) / float64(time.Millisecond)
	if dt <= 0 {
		return 0, 0, false
	}
	return (last.x - anchor.x) / dt, (last.y - anchor.y) / dt, true
}

// GestureAdapter turns scene pointer events into rotation drags, inertial
// releases and taps.
type GestureAdapter struct {
	scene *Scene
	rot   *RotationController
	log   *zap.Logger

	session     *DragSession
	lastRelease time.Duration
	released    bool

	// Blocked, when set, rejects new presses (a focus session is active).
	Blocked func() bool
	// OnTap receives releases that never left the dead zone.
	OnTap func(ClickContext)

	handles []CallbackHandle
}

// NewGestureAdapter creates an adapter driving rot. Call Attach to start
// receiving events from the scene.
func NewGestureAdapter(scene *Scene, rot *RotationController) *GestureAdapter {
	return &GestureAdapter{scene: scene, rot: rot, log: zap.NewNop()}
}

// SetLogger replaces the adapter logger.
func (g *GestureAdapter) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	g.log = l
}

// Session returns the active drag session, or nil.
func (g *GestureAdapter) Session() *DragSession {
	return g.session
}

// Attach registers the adapter's scene callbacks.
func (g *GestureAdapter) Attach() {
	if len(g.handles) > 0 {
		return
	}
	s := g.scene
	g.handles = append(g.handles,
		s.OnPointerDown(g.pointerDown),
		s.OnDragStart(g.dragStart),
		s.OnDrag(g.drag),
		s.OnClick(g.click),
		s.OnPointerUp(g.pointerUp),
		s.OnPointerMove(g.hover),
	)
}

// Detach removes every callback Attach registered and drops any session.
func (g *GestureAdapter) Detach() {
	for _, h := range g.handles {
		h.Remove()
	}
	g.handles = nil
	g.Cancel()
}

// Cancel ends the active session without starting inertia.
func (g *GestureAdapter) Cancel() {
	if g.session == nil {
		return
	}
	g.session = nil
	g.rot.EndDrag()
}

func (g *GestureAdapter) blocked() bool {
	return g.Blocked != nil && g.Blocked()
}

func (g *GestureAdapter) tracking(id int) bool {
	return g.session != nil && g.session.PointerID == id
}

func (g *GestureAdapter) record(d *DragSession, x, y float64) {
	now := g.scene.Now()
	d.samples = append(d.samples, moveSample{t: now, x: x, y: y})
	// Keep one sample older than the window as the anchor.
	cutoff := now - velocityWindow
	drop := 0
	for i := 0; i+1 < len(d.samples) && d.samples[i+1].t <= cutoff; i++ {
		drop = i + 1
	}
	if drop > 0 {
		d.samples = append(d.samples[:0], d.samples[drop:]...)
	}
}

func (g *GestureAdapter) pointerDown(ctx PointerContext) {
	if g.session != nil || g.blocked() {
		return
	}
	g.session = &DragSession{
		PointerID: ctx.PointerID,
		StartX:    ctx.GlobalX,
		StartY:    ctx.GlobalY,
		StartRot:  g.rot.BeginDrag(),
		StartTime: g.scene.Now(),
		Touch:     ctx.Touch,
	}
	if ctx.Touch {
		g.rot.SetPointer(0, 0, true)
	}
	g.record(g.session, ctx.GlobalX, ctx.GlobalY)
}

func (g *GestureAdapter) dragStart(ctx DragContext) {
	if !g.tracking(ctx.PointerID) {
		return
	}
	g.session.Moved = true
}

func (g *GestureAdapter) drag(ctx DragContext) {
	if !g.tracking(ctx.PointerID) {
		return
	}
	d := g.session
	g.rot.DragTo(ctx.GlobalX-d.StartX, ctx.GlobalY-d.StartY)
	g.record(d, ctx.GlobalX, ctx.GlobalY)
}

func (g *GestureAdapter) click(ctx ClickContext) {
	if !g.tracking(ctx.PointerID) || g.session.Moved {
		return
	}
	if g.released && g.scene.Now()-g.lastRelease < tapSuppression {
		g.log.Debug("tap suppressed after drag release")
		return
	}
	if g.OnTap != nil {
		g.OnTap(ctx)
	}
}

func (g *GestureAdapter) pointerUp(ctx PointerContext) {
	if !g.tracking(ctx.PointerID) {
		return
	}
	d := g.session
	g.session = nil
	g.rot.EndDrag()
	if !d.Moved {
		return
	}
	now := g.scene.Now()
	g.lastRelease = now
	g.released = true
	g.record(d, ctx.GlobalX, ctx.GlobalY)

	vx, vy, ok := d.releaseVelocity(now)
	if !ok {
		sens := g.rot.cfg.DragSensitivity
		vx = clamp((ctx.GlobalX-d.StartX)/sens*fallbackScale, -fallbackVelocity, fallbackVelocity)
		vy = clamp((ctx.GlobalY-d.StartY)/sens*fallbackScale, -fallbackVelocity, fallbackVelocity)
	}
	if math.Abs(vx) > minInertiaSpeed || math.Abs(vy) > minInertiaSpeed {
		g.rot.StartInertia(vx, vy)
	}
	g.log.Debug("drag released",
		zap.Float64("vx", vx), zap.Float64("vy", vy), zap.Bool("measured", ok))
}

func (g *GestureAdapter) hover(ctx PointerContext) {
	if ctx.Touch {
		return
	}
	w, h := g.scene.Size()
	if w <= 0 || h <= 0 {
		return
	}
	g.rot.SetPointer((ctx.GlobalX-w/2)/(w/2), (ctx.GlobalY-h/2)/(h/2), false)
}
