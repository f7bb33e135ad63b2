package dome

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
)

// watchedKeys are polled from the keyboard each frame when device input is on.
var watchedKeys = []ebiten.Key{ebiten.KeyEscape}

// --- Built-in HitShape types ---

// HitRect is an axis-aligned rectangular hit area in screen coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// HitPolygon is a convex polygon hit area in screen coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	// Check that the point is on the same side of every edge.
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := p.Points[i].X
		y1 := p.Points[i].Y
		j := (i + 1) % n
		x2 := p.Points[j].X
		y2 := p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hitNode  *Node
	dragging bool
	button   MouseButton // button captured at press time
}

// --- Handler registry ---

type handler[T any] struct {
	id uint32
	fn func(T)
}

type handlerRegistry struct {
	pointerDown []handler[PointerContext]
	pointerUp   []handler[PointerContext]
	pointerMove []handler[PointerContext]
	click       []handler[ClickContext]
	dragStart   []handler[DragContext]
	drag        []handler[DragContext]
	dragEnd     []handler[DragContext]
	key         []handler[KeyContext]
	resize      []handler[ResizeContext]
	wheel       []handler[WheelContext]
	update      []handler[float64]
	nextID      uint32
}

// count returns the total number of registered callbacks.
func (r *handlerRegistry) count() int {
	return len(r.pointerDown) + len(r.pointerUp) + len(r.pointerMove) +
		len(r.click) + len(r.dragStart) + len(r.drag) + len(r.dragEnd) +
		len(r.key) + len(r.resize) + len(r.wheel) + len(r.update)
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPointerDown:
		h.reg.pointerDown = removeHandler(h.reg.pointerDown, h.id)
	case EventPointerUp:
		h.reg.pointerUp = removeHandler(h.reg.pointerUp, h.id)
	case EventPointerMove:
		h.reg.pointerMove = removeHandler(h.reg.pointerMove, h.id)
	case EventClick:
		h.reg.click = removeHandler(h.reg.click, h.id)
	case EventDragStart:
		h.reg.dragStart = removeHandler(h.reg.dragStart, h.id)
	case EventDrag:
		h.reg.drag = removeHandler(h.reg.drag, h.id)
	case EventDragEnd:
		h.reg.dragEnd = removeHandler(h.reg.dragEnd, h.id)
	case EventKey:
		h.reg.key = removeHandler(h.reg.key, h.id)
	case EventResize:
		h.reg.resize = removeHandler(h.reg.resize, h.id)
	case EventWheel:
		h.reg.wheel = removeHandler(h.reg.wheel, h.id)
	case EventUpdate:
		h.reg.update = removeHandler(h.reg.update, h.id)
	}
}

func removeHandler[T any](s []handler[T], id uint32) []handler[T] {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = handler[T]{}
			return s[:len(s)-1]
		}
	}
	return s
}

func addHandler[T any](r *handlerRegistry, list *[]handler[T], event EventType, fn func(T)) CallbackHandle {
	r.nextID++
	id := r.nextID
	*list = append(*list, handler[T]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: r, event: event}
}

// fire calls every handler registered at the time of the call. Handlers
// removed during dispatch still see this event; handlers added do not.
func fire[T any](list []handler[T], ctx T) {
	if len(list) == 0 {
		return
	}
	snapshot := make([]handler[T], len(list))
	copy(snapshot, list)
	for _, h := range snapshot {
		h.fn(ctx)
	}
}

// --- Scene-level event registration ---

// OnPointerDown registers a scene-level callback for pointer down events.
func (s *Scene) OnPointerDown(fn func(PointerContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.pointerDown, EventPointerDown, fn)
}

// OnPointerUp registers a scene-level callback for pointer up events.
func (s *Scene) OnPointerUp(fn func(PointerContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.pointerUp, EventPointerUp, fn)
}

// OnPointerMove registers a scene-level callback for hover moves.
func (s *Scene) OnPointerMove(fn func(PointerContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.pointerMove, EventPointerMove, fn)
}

// OnClick registers a scene-level callback for click events.
func (s *Scene) OnClick(fn func(ClickContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.click, EventClick, fn)
}

// OnDragStart registers a scene-level callback for drag start events.
func (s *Scene) OnDragStart(fn func(DragContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.dragStart, EventDragStart, fn)
}

// OnDrag registers a scene-level callback for drag events.
func (s *Scene) OnDrag(fn func(DragContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.drag, EventDrag, fn)
}

// OnDragEnd registers a scene-level callback for drag end events.
func (s *Scene) OnDragEnd(fn func(DragContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.dragEnd, EventDragEnd, fn)
}

// OnKey registers a scene-level callback for key presses.
func (s *Scene) OnKey(fn func(KeyContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.key, EventKey, fn)
}

// OnResize registers a scene-level callback for size changes.
func (s *Scene) OnResize(fn func(ResizeContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.resize, EventResize, fn)
}

// OnWheel registers a scene-level callback for wheel scrolling.
func (s *Scene) OnWheel(fn func(WheelContext)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.wheel, EventWheel, fn)
}

// OnUpdate registers a per-frame callback. It receives the frame delta in
// seconds and runs after input processing.
func (s *Scene) OnUpdate(fn func(dt float64)) CallbackHandle {
	return addHandler(&s.handlers, &s.handlers.update, EventUpdate, fn)
}

// HandlerCount returns the number of registered scene-level callbacks.
func (s *Scene) HandlerCount() int {
	return s.handlers.count()
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// nodeContains tests whether the screen point (x, y) falls inside the area
// the node covered in the draw list.
func nodeContains(cmd *RenderCommand, x, y float64) bool {
	n := cmd.node
	if n.HitShape != nil {
		return n.HitShape.Contains(x, y)
	}
	switch n.Type {
	case NodeTypeTile:
		return HitPolygon{Points: cmd.quad[:]}.Contains(x, y)
	case NodeTypeSprite:
		return n.Bounds.Contains(x, y)
	}
	return false
}

// interactable reports whether n and all its ancestors accept input.
func interactable(n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if !p.Visible || !p.Interactable {
			return false
		}
	}
	return true
}

// hitTest finds the topmost interactable node at (x, y).
// Returns nil if nothing is hit.
func (s *Scene) hitTest(x, y float64) *Node {
	// Iterate backward (reverse painter order): topmost visual node first.
	for i := len(s.commands) - 1; i >= 0; i-- {
		cmd := &s.commands[i]
		if cmd.node.disposed || !interactable(cmd.node) {
			continue
		}
		if nodeContains(cmd, x, y) {
			return cmd.node
		}
	}
	return nil
}

// --- Input processing ---

// processInput is called from the frame step to handle pointer, key and
// wheel input. Injected events take precedence over real devices.
func (s *Scene) processInput() {
	injected := s.processInjectedInput()
	if s.pollDevices && !injected {
		s.processMousePointer()
	}
	if s.pollDevices {
		s.processTouchPointers()
	}
	s.processKeys()
	s.processWheel()
}

// processMousePointer handles mouse input (pointer 0).
func (s *Scene) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	// Detect which button is pressed. If pointer is already down, use the
	// stored button to avoid changing mid-interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	s.processPointer(0, float64(mx), float64(my), pressed, button)
}

// processTouchPointers handles touch input (pointers 1-9).
func (s *Scene) processTouchPointers() {
	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				s.processPointer(i, ps.lastX, ps.lastY, false, MouseButtonLeft)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processKeys fires key handlers for injected keys and, with device input
// on, for watched keys pressed this frame.
func (s *Scene) processKeys() {
	for len(s.keyQueue) > 0 {
		k := s.keyQueue[0]
		s.keyQueue = s.keyQueue[1:]
		fire(s.handlers.key, KeyContext{Key: k})
	}
	if !s.pollDevices {
		return
	}
	for _, k := range watchedKeys {
		if inpututil.IsKeyJustPressed(k) {
			fire(s.handlers.key, KeyContext{Key: k})
		}
	}
}

// processWheel fires wheel handlers unless a scroll lock is held.
func (s *Scene) processWheel() {
	var dx, dy float64
	for _, w := range s.wheelQueue {
		dx += w.X
		dy += w.Y
	}
	s.wheelQueue = s.wheelQueue[:0]
	if s.pollDevices {
		wx, wy := ebiten.Wheel()
		dx += wx
		dy += wy
	}
	if (dx == 0 && dy == 0) || s.ScrollLocked() {
		return
	}
	fire(s.handlers.wheel, WheelContext{DeltaX: dx, DeltaY: dy})
}

// processPointer runs the pointer state machine for a single pointer.
func (s *Scene) processPointer(pointerID int, x, y float64, pressed bool, button MouseButton) {
	ps := &s.pointers[pointerID]
	touch := pointerID > 0

	if pressed && !ps.down {
		// Just pressed: capture the button for the whole interaction.
		target := s.hitTest(x, y)
		ps.down = true
		ps.button = button
		ps.startX = x
		ps.startY = y
		ps.lastX = x
		ps.lastY = y
		ps.hitNode = target
		ps.dragging = false

		s.firePointer(s.handlers.pointerDown, target, pointerID, x, y, ps.button, touch, true)
	} else if !pressed && ps.down {
		target := s.hitTest(x, y)
		if ps.dragging {
			s.fireDrag(s.handlers.dragEnd, ps, pointerID, x, y, x-ps.lastX, y-ps.lastY, touch)
		} else if ps.hitNode != nil && ps.hitNode == target {
			s.fireClick(target, pointerID, x, y, ps.button, touch)
		}

		s.firePointer(s.handlers.pointerUp, target, pointerID, x, y, ps.button, touch, false)

		ps.down = false
		ps.hitNode = nil
		ps.dragging = false
		ps.lastX = x
		ps.lastY = y
	} else if pressed && ps.down {
		// Held down, possibly moved.
		if x != ps.lastX || y != ps.lastY {
			if !ps.dragging {
				dx := x - ps.startX
				dy := y - ps.startY
				if math.Sqrt(dx*dx+dy*dy) > s.dragDeadZone {
					ps.dragging = true
					s.fireDrag(s.handlers.dragStart, ps, pointerID, x, y, x-ps.startX, y-ps.startY, touch)
				}
			}
			if ps.dragging {
				s.fireDrag(s.handlers.drag, ps, pointerID, x, y, x-ps.lastX, y-ps.lastY, touch)
			}
		}
		ps.lastX = x
		ps.lastY = y
	} else if !pressed && !ps.down {
		// Hover move.
		if x != ps.lastX || y != ps.lastY {
			s.firePointer(s.handlers.pointerMove, nil, pointerID, x, y, button, touch, false)
			ps.lastX = x
			ps.lastY = y
		}
	}
}

// --- Event dispatch ---

func (s *Scene) firePointer(list []handler[PointerContext], node *Node, pointerID int, x, y float64, button MouseButton, touch, down bool) {
	ctx := PointerContext{
		Node: node, GlobalX: x, GlobalY: y,
		Button: button, PointerID: pointerID, Touch: touch,
	}
	if node != nil {
		ctx.UserData = node.UserData
	}
	fire(list, ctx)
	if node == nil || node.disposed {
		return
	}
	if down && node.OnPointerDown != nil {
		node.OnPointerDown(ctx)
	} else if !down && node.OnPointerUp != nil {
		node.OnPointerUp(ctx)
	}
}

func (s *Scene) fireClick(node *Node, pointerID int, x, y float64, button MouseButton, touch bool) {
	ctx := ClickContext{
		Node: node, UserData: node.UserData, GlobalX: x, GlobalY: y,
		Button: button, PointerID: pointerID, Touch: touch,
	}
	fire(s.handlers.click, ctx)
	if !node.disposed && node.OnClick != nil {
		node.OnClick(ctx)
	}
}

func (s *Scene) fireDrag(list []handler[DragContext], ps *pointerState, pointerID int, x, y, deltaX, deltaY float64, touch bool) {
	ctx := DragContext{
		Node: ps.hitNode, GlobalX: x, GlobalY: y,
		StartX: ps.startX, StartY: ps.startY, DeltaX: deltaX, DeltaY: deltaY,
		Button: ps.button, PointerID: pointerID, Touch: touch,
	}
	if ps.hitNode != nil {
		ctx.UserData = ps.hitNode.UserData
	}
	fire(list, ctx)
}

func (s *Scene) fireResize(ctx ResizeContext) {
	fire(s.handlers.resize, ctx)
}

func (s *Scene) fireUpdate(dt float64) {
	fire(s.handlers.update, dt)
}
