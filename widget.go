package dome

import (
	"context"
	"fmt"
	"image"
	"maps"
	"math"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// wheelStep is the yaw change in degrees per wheel notch.
const wheelStep = 2.0

// Dome is a sphere of image tiles. It is created detached; Mount attaches it
// to a scene and Unmount detaches it, removing every callback it registered.
type Dome struct {
	cfg      Config
	pool     []Image
	textures map[string]*ebiten.Image
	log      *zap.Logger

	viewport *Viewport
	rot      *RotationController

	scene   *Scene
	sphere  *Node
	items   []*Node
	quads   []*Node
	tiles   []Tile
	gesture *GestureAdapter
	focus   *FocusManager
	handles []CallbackHandle

	segments        int
	rebuildDeferred bool

	// poolFixed is set when the pool was given explicitly; config reloads
	// then leave it alone.
	poolFixed  bool
	imageDir   string
	loadImages bool
	loads      chan map[string]image.Image
	cancelLoad context.CancelFunc
	loadCtx    context.Context
}

// New creates a dome. A nil pool falls back to cfg.Images and follows the
// images of later configs; a non-nil pool is kept across config changes.
func New(cfg Config, pool []Image) (*Dome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fixed := pool != nil
	if pool == nil {
		pool = cfg.Images
	}
	return &Dome{
		cfg:       cfg,
		pool:      pool,
		poolFixed: fixed,
		log:       zap.NewNop(),
		viewport:  NewViewport(cfg),
		rot:       NewRotationController(cfg),
		loads:     make(chan map[string]image.Image, 4),
	}, nil
}

// LoadImagesFrom makes the dome decode, in the background, any pool source
// it has no texture for after a config change. Relative sources resolve
// against dir.
func (d *Dome) LoadImagesFrom(dir string) {
	d.imageDir = dir
	d.loadImages = true
}

// SetLogger replaces the logger of the dome and its components.
func (d *Dome) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	d.log = l
	if d.gesture != nil {
		d.gesture.SetLogger(l)
	}
	if d.focus != nil {
		d.focus.SetLogger(l)
	}
}

// Mount attaches the dome to scene. Mounting an already mounted dome is a
// no-op.
func (d *Dome) Mount(scene *Scene) {
	if d.scene != nil {
		return
	}
	d.scene = scene
	d.loadCtx, d.cancelLoad = context.WithCancel(context.Background())

	d.sphere = NewContainer("sphere")
	d.sphere.Order = RotateXY
	d.sphere.Interactable = true
	scene.Root().AddChild(d.sphere)

	d.gesture = NewGestureAdapter(scene, d.rot)
	d.gesture.SetLogger(d.log)
	d.focus = newFocusManager(scene, d, d.cfg)
	d.focus.SetLogger(d.log)
	d.gesture.Blocked = d.focus.Active
	d.gesture.OnTap = d.tap
	d.gesture.Attach()

	d.handles = append(d.handles,
		scene.OnResize(func(ctx ResizeContext) { d.resize(ctx.Width, ctx.Height, false) }),
		scene.OnUpdate(d.update),
		scene.OnKey(d.key),
		scene.OnWheel(d.wheel),
	)

	if w, h := scene.Size(); w > 0 && h > 0 {
		d.resize(w, h, true)
	}
	d.log.Debug("dome mounted", zap.Int("pool", len(d.pool)))
}

// Unmount detaches the dome from its scene. Any focus session is abandoned.
func (d *Dome) Unmount() {
	if d.scene == nil {
		return
	}
	d.rebuildDeferred = false
	d.cancelLoad()
	d.focus.Reset()
	d.gesture.Detach()
	for _, h := range d.handles {
		h.Remove()
	}
	d.handles = nil
	d.sphere.Dispose()
	d.sphere = nil
	d.items, d.quads, d.tiles = nil, nil, nil
	d.segments = 0
	d.gesture, d.focus = nil, nil
	d.scene = nil
	d.log.Debug("dome unmounted")
}

// Mounted reports whether the dome is attached to a scene.
func (d *Dome) Mounted() bool {
	return d.scene != nil
}

// Config returns the active tunables.
func (d *Dome) Config() Config {
	return d.cfg
}

// ApplyConfig validates and applies new tunables. Rotation state is kept;
// pitch is re-clamped to the new limit.
func (d *Dome) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = cfg
	poolChanged := !d.poolFixed && len(cfg.Images) > 0 && !slices.Equal(cfg.Images, d.pool)
	if poolChanged {
		d.pool = cfg.Images
	}
	d.viewport.SetConfig(cfg)
	d.rot.SetConfig(cfg)
	if d.scene == nil {
		return nil
	}
	d.focus.SetConfig(cfg)
	if poolChanged {
		d.loadMissing()
	}
	if w, h := d.scene.Size(); w > 0 && h > 0 {
		d.resize(w, h, true)
	}
	return nil
}

// SetPool replaces the image pool and rebuilds the layout. The pool is then
// kept across config changes.
func (d *Dome) SetPool(pool []Image) {
	d.pool = pool
	d.poolFixed = true
	if d.scene != nil && d.viewport.Sized() {
		d.requestRebuild()
	}
}

// Pool returns the image pool the layout is built from.
func (d *Dome) Pool() []Image {
	return slices.Clone(d.pool)
}

// SetTextures supplies decoded images keyed by pool source. Tiles whose
// source has no texture are drawn blank.
func (d *Dome) SetTextures(textures map[string]*ebiten.Image) {
	d.textures = maps.Clone(textures)
	d.applyTextures()
}

// AddTextures merges textures into the ones already supplied.
func (d *Dome) AddTextures(textures map[string]*ebiten.Image) {
	if d.textures == nil {
		d.textures = make(map[string]*ebiten.Image, len(textures))
	}
	maps.Copy(d.textures, textures)
	d.applyTextures()
}

func (d *Dome) applyTextures() {
	for i, q := range d.quads {
		q.Image = d.textures[d.tiles[i].Src]
	}
}

// loadMissing decodes the pool sources without a texture on a background
// goroutine. update uploads the result on the game thread.
func (d *Dome) loadMissing() {
	if !d.loadImages || d.scene == nil {
		return
	}
	var missing []Image
	for _, im := range d.pool {
		if _, ok := d.textures[im.Src]; !ok && im.Src != "" {
			missing = append(missing, im)
		}
	}
	if len(missing) == 0 {
		return
	}
	ctx, log, dir, out := d.loadCtx, d.log, d.imageDir, d.loads
	log.Debug("loading new pool images", zap.Int("count", len(missing)))
	go func() {
		imgs, _ := LoadPool(ctx, log, dir, missing)
		if len(imgs) == 0 || ctx.Err() != nil {
			return
		}
		select {
		case out <- imgs:
		case <-ctx.Done():
		}
	}()
}

// Rotation returns the live orientation.
func (d *Dome) Rotation() RotationState {
	return d.rot.State()
}

// Controller returns the rotation controller.
func (d *Dome) Controller() *RotationController {
	return d.rot
}

// Metrics returns the metrics of the last resize.
func (d *Dome) Metrics() Metrics {
	return d.viewport.Metrics()
}

// Segments returns the segment count the current layout was built for.
func (d *Dome) Segments() int {
	return d.segments
}

// Tiles returns a copy of the current layout.
func (d *Dome) Tiles() []Tile {
	out := make([]Tile, len(d.tiles))
	copy(out, d.tiles)
	return out
}

// TileNode returns the quad node of tile i, or nil.
func (d *Dome) TileNode(i int) *Node {
	if i < 0 || i >= len(d.quads) {
		return nil
	}
	return d.quads[i]
}

// Sphere returns the sphere container, or nil when unmounted.
func (d *Dome) Sphere() *Node {
	return d.sphere
}

// Focus returns the focus manager, or nil when unmounted.
func (d *Dome) Focus() *FocusManager {
	return d.focus
}

// FocusPhase returns the focus phase. An unmounted dome is always idle.
func (d *Dome) FocusPhase() FocusPhase {
	if d.focus == nil {
		return FocusIdle
	}
	return d.focus.Phase()
}

// Open focuses tile i.
func (d *Dome) Open(i int) bool {
	if d.focus == nil {
		return false
	}
	return d.openFocus(i)
}

// openFocus starts a focus session and freezes rotation at once, ending any
// drag still in progress so later pointer moves cannot turn the sphere.
func (d *Dome) openFocus(i int) bool {
	if !d.focus.Open(i) {
		return false
	}
	d.gesture.Cancel()
	d.rot.Suspend(true)
	return true
}

// Close closes the focused tile.
func (d *Dome) Close() bool {
	if d.focus == nil {
		return false
	}
	return d.focus.Close()
}

func (d *Dome) resize(w, h float64, force bool) {
	m := d.viewport.Resize(w, h)
	d.scene.Camera().Perspective = 2 * m.Radius
	d.sphere.SetDepth(-m.Radius, 0)
	d.focus.Resize(w, h)

	if force || m.Segments != d.segments {
		d.log.Debug("layout change",
			zap.Stringer("sizeClass", m.SizeClass),
			zap.Int("segments", m.Segments),
			zap.Float64("radius", m.Radius))
		d.requestRebuild()
		return
	}
	d.updateGeometry()
}

// requestRebuild rebuilds the tiles now, or after the focus session ends.
func (d *Dome) requestRebuild() {
	if d.focus.Active() {
		d.rebuildDeferred = true
		return
	}
	d.rebuild()
}

func (d *Dome) rebuild() {
	for _, item := range d.items {
		item.Dispose()
	}
	seg := d.viewport.Metrics().Segments
	d.segments = seg
	d.tiles = BuildLayout(d.pool, seg)
	d.items = make([]*Node, len(d.tiles))
	d.quads = make([]*Node, len(d.tiles))
	for i, t := range d.tiles {
		item := NewContainer(fmt.Sprintf("item-%d", i))
		item.Order = RotateYX
		item.Interactable = true
		item.SetRotation(t.BaseRotateX(seg), t.BaseRotateY(seg))

		quad := NewTile(fmt.Sprintf("tile-%d", i), d.textures[t.Src], 0, 0)
		quad.Interactable = true
		quad.UserData = i

		item.AddChild(quad)
		d.sphere.AddChild(item)
		d.items[i], d.quads[i] = item, quad
	}
	d.updateGeometry()
}

// updateGeometry applies radius-dependent sizes and per-tile styling.
func (d *Dome) updateGeometry() {
	seg := d.segments
	if seg <= 0 {
		return
	}
	r := d.viewport.Metrics().Radius
	for i, t := range d.tiles {
		d.items[i].SetDepth(0, r)
		q := d.quads[i]
		q.Width = r * float64(t.SizeX) * 2 * math.Pi / float64(seg)
		q.Height = r * float64(t.SizeY) * math.Pi / float64(seg)
		q.CornerRadius = d.cfg.TileRadius
		q.Grayscale = d.cfg.Grayscale
		q.MarkDirty()
	}
}

func (d *Dome) syncSphere() {
	st := d.rot.State()
	d.sphere.SetRotation(st.Pitch, st.Yaw)
}

func (d *Dome) update(dt float64) {
	select {
	case imgs := <-d.loads:
		d.AddTextures(Textures(imgs))
		d.log.Debug("pool images added", zap.Int("count", len(imgs)))
	default:
	}
	d.rot.Suspend(d.focus.Active())
	d.rot.Step(dt)
	d.syncSphere()
	d.focus.Update(dt)
}

func (d *Dome) key(ctx KeyContext) {
	if ctx.Key == ebiten.KeyEscape {
		d.focus.Close()
	}
}

func (d *Dome) wheel(ctx WheelContext) {
	if d.focus.Active() {
		return
	}
	d.rot.Nudge(-ctx.DeltaY*wheelStep, 0)
}

func (d *Dome) tap(ctx ClickContext) {
	i, ok := ctx.UserData.(int)
	if !ok {
		return
	}
	d.openFocus(i)
}

// --- focusHost ---

func (d *Dome) focusTarget(i int) (item, tile *Node, baseX, baseY float64, ok bool) {
	if i < 0 || i >= len(d.items) {
		return nil, nil, 0, 0, false
	}
	d.syncSphere()
	t := d.tiles[i]
	return d.items[i], d.quads[i], t.BaseRotateX(d.segments), t.BaseRotateY(d.segments), true
}

func (d *Dome) rotation() RotationState {
	return d.rot.State()
}

func (d *Dome) viewerFrame() Rect {
	return d.viewport.Metrics().ViewerFrame()
}

func (d *Dome) focusIdle() {
	if !d.rebuildDeferred {
		return
	}
	d.rebuildDeferred = false
	d.log.Debug("applying deferred layout rebuild")
	d.rebuild()
}

// Follow applies every config received on updates at the start of a frame.
// Invalid configs are logged and ignored. The subscription ends on Unmount.
func (d *Dome) Follow(updates <-chan Config) {
	if d.scene == nil {
		return
	}
	d.handles = append(d.handles, d.scene.OnUpdate(func(float64) {
		select {
		case cfg := <-updates:
			if err := d.ApplyConfig(cfg); err != nil {
				d.log.Warn("config not applied", zap.Error(err))
				return
			}
			d.log.Info("config applied", zap.Int("segments", d.segments))
		default:
		}
	}))
}
