package dome

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const defaultCommandCap = 256

// Scene is the top-level object that owns the node tree, the camera, input
// state and the draw list.
type Scene struct {
	root   *Node
	camera *Camera
	log    *zap.Logger
	debug  bool

	// ClearColor fills the screen before drawing when its alpha is non-zero.
	ClearColor Color

	// ScreenshotDir is where queued screenshots are written.
	ScreenshotDir string

	// Size as last applied, and the pending size from the host.
	width, height   float64
	pendingW        float64
	pendingH        float64
	sizePending     bool
	now             time.Duration
	frame           uint64
	scrollLockCount int

	// Render state
	commands []RenderCommand

	// Input state
	handlers     handlerRegistry
	pointers     [maxPointers]pointerState
	dragDeadZone float64
	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
	pollDevices  bool

	// Injection and automation
	injectQueue     []syntheticPointerEvent
	keyQueue        []ebiten.Key
	wheelQueue      []Vec2
	screenshotQueue []string
	testRunner      *TestRunner
}

// NewScene creates a new scene with a pre-created root container.
func NewScene() *Scene {
	root := NewContainer("root")
	root.Interactable = true
	return &Scene{
		root:          root,
		camera:        newCamera(Rect{}, 0),
		log:           zap.NewNop(),
		ScreenshotDir: "screenshots",
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		dragDeadZone:  defaultDragDeadZone,
	}
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Camera returns the scene's perspective camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// SetLogger replaces the scene logger. A nil logger disables logging.
func (s *Scene) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.log = l
	if s.debug {
		debugLogger = l
	}
}

// Logger returns the scene logger.
func (s *Scene) Logger() *zap.Logger {
	return s.log
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics and per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	debugLogger = zap.NewNop()
	if enabled {
		debugLogger = s.log
	}
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. debugLogger
// is the logger of that scene.
var (
	globalDebug bool
	debugLogger = zap.NewNop()
)

// EnableDeviceInput makes the scene poll the real mouse, touch and keyboard
// each frame. Run enables it; tests leave it off and inject input instead.
func (s *Scene) EnableDeviceInput(enabled bool) {
	s.pollDevices = enabled
}

// Size returns the current scene size.
func (s *Scene) Size() (w, h float64) {
	return s.width, s.height
}

// SetSize records a new host size. Resize callbacks fire at the start of the
// next Update, so a resize never interleaves with a callback in progress.
func (s *Scene) SetSize(w, h float64) {
	if w == s.width && h == s.height && !s.sizePending {
		return
	}
	s.pendingW, s.pendingH = w, h
	s.sizePending = true
}

// Now returns the scene clock: the sum of all frame deltas so far.
func (s *Scene) Now() time.Duration {
	return s.now
}

// Frame returns the number of frames stepped so far.
func (s *Scene) Frame() uint64 {
	return s.frame
}

// --- Scroll lock ---

// LockScroll acquires a scroll lock. Wheel events are swallowed while at
// least one lock is held.
func (s *Scene) LockScroll() {
	s.scrollLockCount++
}

// UnlockScroll releases one scroll lock. Extra releases are ignored.
func (s *Scene) UnlockScroll() {
	if s.scrollLockCount > 0 {
		s.scrollLockCount--
	}
}

// ScrollLocked reports whether any scroll lock is held.
func (s *Scene) ScrollLocked() bool {
	return s.scrollLockCount > 0
}

// --- Frame loop ---

// Update processes input and runs the per-frame callbacks.
func (s *Scene) Update() {
	s.step(1.0 / float64(ebiten.TPS()))
}

// step advances the scene by dt seconds.
func (s *Scene) step(dt float64) {
	s.now += time.Duration(dt * float64(time.Second))
	s.frame++

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.applyPendingSize()

	// Refresh world transforms and the draw list first so hit testing sees
	// what was drawn last frame.
	updateWorldTransform(s.root, identityTransform, 1.0, false)
	s.rebuildCommands()

	s.processInput()
	s.fireUpdate(dt)
}

// applyPendingSize applies a size recorded by SetSize and fires resize handlers.
func (s *Scene) applyPendingSize() {
	if !s.sizePending {
		return
	}
	s.sizePending = false
	w, h := max(1, s.pendingW), max(1, s.pendingH)
	if w == s.width && h == s.height {
		return
	}
	s.width, s.height = w, h
	s.camera.Viewport = Rect{Width: w, Height: h}
	s.fireResize(ResizeContext{Width: w, Height: h})
}

// Draw traverses the scene tree, sorts the draw list and submits it to screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	var t0 time.Time
	var stats debugStats
	if s.debug {
		t0 = time.Now()
	}

	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}

	updateWorldTransform(s.root, identityTransform, 1.0, false)
	s.rebuildCommands()

	if s.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.submit(screen)

	if s.debug {
		stats.submitTime = time.Since(t0)
		stats.commandCount = len(s.commands)
		stats.layerCounts = countLayers(s.commands)
		s.debugLog(stats)
	}

	s.flushScreenshots(screen)
}

// ProjectedBounds returns the on-screen bounding rectangle of a tile or
// sprite, computed from its current fields rather than last frame's cache.
// ok is false for containers and for tiles that cannot be projected.
func (s *Scene) ProjectedBounds(n *Node) (Rect, bool) {
	if n == nil || n.disposed {
		return Rect{}, false
	}
	switch n.Type {
	case NodeTypeSprite:
		return n.Bounds, true
	case NodeTypeTile:
		quad, _, _, ok := s.camera.projectQuad(worldTransformOf(n), n.Width, n.Height)
		if !ok {
			return Rect{}, false
		}
		return quadBounds(quad), true
	}
	return Rect{}, false
}
