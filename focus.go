package dome

import (
	"github.com/google/uuid"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// FocusPhase is the state of the focus transition.
type FocusPhase uint8

const (
	FocusIdle FocusPhase = iota
	FocusOpening
	FocusFocused
	FocusClosing
)

func (p FocusPhase) String() string {
	switch p {
	case FocusOpening:
		return "opening"
	case FocusFocused:
		return "focused"
	case FocusClosing:
		return "closing"
	}
	return "idle"
}

const (
	// overlayLayer is the render layer transient focus nodes are drawn in.
	overlayLayer = 1
	scrimOpacity = 0.8
)

// focusHost is what the focus manager needs from the widget that owns the
// tiles.
type focusHost interface {
	// focusTarget resolves a tile index to its parent item, its quad node
	// and its base angles. It also brings the sphere node up to date with
	// the live rotation.
	focusTarget(i int) (item, tile *Node, baseX, baseY float64, ok bool)
	rotation() RotationState
	viewerFrame() Rect
	// focusIdle runs once each time a session ends.
	focusIdle()
}

// FocusManager runs the open and close transitions of a single focused tile.
// Only one session exists at a time; calls made while a transition is in
// flight are ignored.
type FocusManager struct {
	scene *Scene
	host  focusHost
	cfg   Config
	log   *zap.Logger

	phase   FocusPhase
	session uuid.UUID
	index   int

	item, tile            *Node
	origin                Rect
	scrim, overlay, clone *Node
	tween, scrimTween     *TweenGroup
	locked                bool
}

func newFocusManager(scene *Scene, host focusHost, cfg Config) *FocusManager {
	return &FocusManager{scene: scene, host: host, cfg: cfg, log: zap.NewNop(), index: -1}
}

// SetLogger replaces the focus logger.
func (f *FocusManager) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	f.log = l
}

// SetConfig replaces the tunables used by the next transition.
func (f *FocusManager) SetConfig(cfg Config) {
	f.cfg = cfg
}

// Phase returns the current phase.
func (f *FocusManager) Phase() FocusPhase {
	return f.phase
}

// Active reports whether a session exists in any phase but idle.
func (f *FocusManager) Active() bool {
	return f.phase != FocusIdle
}

// Focused reports whether the open transition has completed.
func (f *FocusManager) Focused() bool {
	return f.phase == FocusFocused
}

// Index returns the focused tile index, or -1 when idle.
func (f *FocusManager) Index() int {
	return f.index
}

// Origin returns the de-rotated screen rectangle captured when the session
// opened.
func (f *FocusManager) Origin() Rect {
	return f.origin
}

// Overlay returns the enlarged image node while opening or focused.
func (f *FocusManager) Overlay() *Node {
	return f.overlay
}

// Scrim returns the backdrop node while a session is active.
func (f *FocusManager) Scrim() *Node {
	return f.scrim
}

func (f *FocusManager) duration() float32 {
	return float32(f.cfg.EnlargeTransitionMs) / 1000
}

// openedRect returns the rectangle the overlay grows into.
func (f *FocusManager) openedRect() Rect {
	frame := f.host.viewerFrame()
	w, h := frame.Width, frame.Height
	if f.cfg.OpenedWidth > 0 {
		w = min(w, f.cfg.OpenedWidth)
	}
	if f.cfg.OpenedHeight > 0 {
		h = min(h, f.cfg.OpenedHeight)
	}
	c := frame.Center()
	return Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// Open starts focusing tile i. It returns false when a session already
// exists or the tile cannot be resolved or measured.
func (f *FocusManager) Open(i int) bool {
	if f.phase != FocusIdle {
		return false
	}
	item, tile, baseX, baseY, ok := f.host.focusTarget(i)
	if !ok {
		return false
	}

	rot := f.host.rotation()
	item.SetRotationDelta(-(baseX + rot.Pitch), wrapSigned(-(baseY + rot.Yaw)))
	origin, ok := f.scene.ProjectedBounds(tile)
	if !ok {
		item.SetRotationDelta(0, 0)
		return false
	}

	f.session = uuid.New()
	f.index = i
	f.item, f.tile, f.origin = item, tile, origin
	tile.Visible = false

	w, h := f.scene.Size()
	f.scrim = NewSprite("focus-scrim", nil, Rect{Width: w, Height: h})
	f.scrim.Color = f.cfg.Overlay()
	f.scrim.Alpha = 0
	f.scrim.RenderLayer = overlayLayer
	f.scrim.Interactable = true
	f.scrim.OnClick = func(ClickContext) { f.Close() }

	f.overlay = NewSprite("focus-overlay", tile.Image, origin)
	f.overlay.CornerRadius = f.cfg.TileRadius
	f.overlay.RenderLayer = overlayLayer
	f.overlay.ZIndex = 1
	f.overlay.Interactable = true

	root := f.scene.Root()
	root.AddChild(f.scrim)
	root.AddChild(f.overlay)

	d := f.duration()
	f.scrimTween = TweenAlpha(f.scrim, scrimOpacity, d, ease.OutCubic)
	f.tween = TweenBounds(f.overlay, f.openedRect(), d, ease.OutCubic).
		WithCornerRadius(f.cfg.OpenedRadius, d, ease.OutCubic)
	f.tween.OnComplete = func() {
		// The viewer frame may have moved while the tween ran.
		f.overlay.Bounds = f.openedRect()
		f.phase = FocusFocused
		f.log.Debug("focus opened", zap.Stringer("session", f.session))
	}

	f.scene.LockScroll()
	f.locked = true
	f.phase = FocusOpening
	f.log.Debug("focus opening",
		zap.Stringer("session", f.session),
		zap.Int("tile", i),
		zap.Float64("deltaX", item.DeltaX),
		zap.Float64("deltaY", item.DeltaY))
	return true
}

// Close starts the close transition. It only acts in the focused phase.
func (f *FocusManager) Close() bool {
	if f.phase != FocusFocused {
		return false
	}
	f.clone = NewSprite("focus-clone", f.overlay.Image, f.overlay.Bounds)
	f.clone.CornerRadius = f.overlay.CornerRadius
	f.clone.RenderLayer = overlayLayer
	f.clone.ZIndex = 2
	f.overlay.Dispose()
	f.overlay = nil
	f.scene.Root().AddChild(f.clone)

	d := f.duration()
	f.scrimTween = TweenAlpha(f.scrim, 0, d, ease.OutCubic)
	f.tween = TweenBounds(f.clone, f.origin, d, ease.OutCubic).
		WithAlpha(0, d, ease.OutCubic).
		WithCornerRadius(f.cfg.TileRadius, d, ease.OutCubic)
	f.tween.OnComplete = f.finish

	f.phase = FocusClosing
	f.log.Debug("focus closing", zap.Stringer("session", f.session))
	return true
}

// Update advances the running transition by dt seconds.
func (f *FocusManager) Update(dt float64) {
	if f.phase == FocusIdle {
		return
	}
	if f.scrimTween != nil {
		f.scrimTween.Update(float32(dt))
	}
	if f.tween != nil {
		f.tween.Update(float32(dt))
	}
}

// Resize keeps the scrim covering the scene and, once focused, snaps the
// overlay to the new viewer frame.
func (f *FocusManager) Resize(w, h float64) {
	if f.scrim != nil {
		f.scrim.Bounds = Rect{Width: w, Height: h}
	}
	if f.phase == FocusFocused && f.overlay != nil {
		f.overlay.Bounds = f.openedRect()
	}
}

// finish runs exactly once per session, when the close tween completes.
func (f *FocusManager) finish() {
	if f.phase != FocusClosing {
		return
	}
	f.log.Debug("focus closed", zap.Stringer("session", f.session))
	f.teardown()
}

// Reset abandons any session immediately, restoring the tile and releasing
// the scroll lock.
func (f *FocusManager) Reset() {
	if f.phase == FocusIdle {
		return
	}
	f.log.Debug("focus reset", zap.Stringer("session", f.session), zap.Stringer("phase", f.phase))
	f.teardown()
}

func (f *FocusManager) teardown() {
	for _, n := range []*Node{f.clone, f.overlay, f.scrim} {
		if n != nil && !n.IsDisposed() {
			n.Dispose()
		}
	}
	f.clone, f.overlay, f.scrim = nil, nil, nil
	f.tween, f.scrimTween = nil, nil

	if f.tile != nil {
		f.tile.Visible = true
	}
	if f.item != nil {
		f.item.SetRotationDelta(0, 0)
	}
	f.item, f.tile = nil, nil
	f.index = -1

	if f.locked {
		f.scene.UnlockScroll()
		f.locked = false
	}
	f.phase = FocusIdle
	f.host.focusIdle()
}
