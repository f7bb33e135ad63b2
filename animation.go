package dome

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const maxTweenFields = 6

// TweenGroup animates up to six float64 fields on a Node simultaneously.
// Create one via the convenience constructors and call Update(dt) each frame.
// The group auto-applies values and marks the node dirty. If the target node
// is disposed, the group stops immediately without firing OnComplete.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [maxTweenFields]*gween.Tween
	count  int
	fields [maxTweenFields]*float64
	target *Node
	Done   bool

	// OnComplete runs once, on the Update call that finishes every tween.
	OnComplete func()
	completed  bool
}

// add appends one field animation to the group.
func (g *TweenGroup) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	if g.count == maxTweenFields {
		panic("dome: tween group is full")
	}
	g.tweens[g.count] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[g.count] = field
	g.count++
}

// Update advances all tweens by dt seconds, writes values to the target fields,
// and marks the node dirty. If the target node has been disposed, Done is set
// to true and no writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
	if g.Done && !g.completed {
		g.completed = true
		if g.OnComplete != nil {
			g.OnComplete()
		}
	}
}

// TweenBounds creates a TweenGroup that animates a sprite's Bounds to the
// target rectangle over the specified duration using the easing function.
func TweenBounds(node *Node, to Rect, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.Bounds.X, to.X, duration, fn)
	g.add(&node.Bounds.Y, to.Y, duration, fn)
	g.add(&node.Bounds.Width, to.Width, duration, fn)
	g.add(&node.Bounds.Height, to.Height, duration, fn)
	return g
}

// TweenAlpha creates a TweenGroup that animates node.Alpha to the target value
// over the specified duration using the easing function.
func TweenAlpha(node *Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{target: node}
	g.add(&node.Alpha, to, duration, fn)
	return g
}

// WithAlpha adds node.Alpha to the group's animated fields.
func (g *TweenGroup) WithAlpha(to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g.add(&g.target.Alpha, to, duration, fn)
	return g
}

// WithCornerRadius adds node.CornerRadius to the group's animated fields.
func (g *TweenGroup) WithCornerRadius(to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g.add(&g.target.CornerRadius, to, duration, fn)
	return g
}
