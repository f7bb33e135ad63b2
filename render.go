package dome

import (
	"cmp"
	"image"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	node        *Node
	quad        [4]Vec2 // projected corners for tiles, bounds corners for sprites
	depth       float64 // scene-space Z of the node center; larger is nearer
	alpha       float64
	renderLayer uint8
	zIndex      int
	treeOrder   int
}

// rebuildCommands walks the tree and refreshes the draw list from the
// current world transforms. Back-facing tiles are skipped.
func (s *Scene) rebuildCommands() {
	s.commands = s.commands[:0]
	order := 0
	s.collect(s.root, &order)
	slices.SortStableFunc(s.commands, func(a, b RenderCommand) int {
		if c := cmp.Compare(a.renderLayer, b.renderLayer); c != 0 {
			return c
		}
		if c := cmp.Compare(a.depth, b.depth); c != 0 {
			return c
		}
		if c := cmp.Compare(a.zIndex, b.zIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.treeOrder, b.treeOrder)
	})
}

func (s *Scene) collect(n *Node, order *int) {
	if !n.Visible {
		return
	}
	*order++
	switch n.Type {
	case NodeTypeTile:
		quad, depth, facing, ok := s.camera.projectQuad(n.worldTransform, n.Width, n.Height)
		if ok && facing {
			s.commands = append(s.commands, RenderCommand{
				node: n, quad: quad, depth: depth, alpha: n.worldAlpha,
				renderLayer: n.RenderLayer, zIndex: n.ZIndex, treeOrder: *order,
			})
		}
	case NodeTypeSprite:
		b := n.Bounds
		s.commands = append(s.commands, RenderCommand{
			node:        n,
			quad:        [4]Vec2{{b.X, b.Y}, {b.X + b.Width, b.Y}, {b.X + b.Width, b.Y + b.Height}, {b.X, b.Y + b.Height}},
			alpha:       n.worldAlpha,
			renderLayer: n.RenderLayer, zIndex: n.ZIndex, treeOrder: *order,
		})
	}
	for _, child := range n.children {
		s.collect(child, order)
	}
}

// submit draws every command in order.
func (s *Scene) submit(target *ebiten.Image) {
	for i := range s.commands {
		cmd := &s.commands[i]
		if cmd.alpha <= 0 {
			continue
		}
		if cmd.node.CornerRadius > 0 {
			drawRounded(target, cmd)
			continue
		}
		drawQuad(target, cmd)
	}
}

// coverSource returns the centered sub-rectangle of an image that fills a
// destination of the given aspect without distortion (CSS object-fit: cover).
func coverSource(bounds image.Rectangle, dstW, dstH float64) image.Rectangle {
	sw, sh := float64(bounds.Dx()), float64(bounds.Dy())
	if sw <= 0 || sh <= 0 || dstW <= 0 || dstH <= 0 {
		return bounds
	}
	dstAspect := dstW / dstH
	if sw/sh > dstAspect {
		w := sh * dstAspect
		x0 := bounds.Min.X + int((sw-w)/2)
		return image.Rect(x0, bounds.Min.Y, x0+int(w), bounds.Max.Y)
	}
	h := sw / dstAspect
	y0 := bounds.Min.Y + int((sh-h)/2)
	return image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+int(h))
}

// sourceFor picks the image and source rectangle to draw for a node.
func sourceFor(n *Node, dstW, dstH float64) (*ebiten.Image, image.Rectangle) {
	if n.Image == nil {
		img := ensureWhitePixel()
		return img, img.Bounds()
	}
	return n.Image, coverSource(n.Image.Bounds(), dstW, dstH)
}

// colorMatrix builds the color transform for a node: its tint and alpha,
// plus desaturation when Grayscale is set.
func colorMatrix(n *Node, alpha float64) colorm.ColorM {
	var cm colorm.ColorM
	if n.Grayscale {
		cm.ChangeHSV(0, 0, 1)
	}
	cm.Scale(n.Color.R, n.Color.G, n.Color.B, n.Color.A*alpha)
	return cm
}

// drawQuad draws a node as two triangles spanning its four corners.
func drawQuad(target *ebiten.Image, cmd *RenderCommand) {
	n := cmd.node
	b := quadBounds(cmd.quad)
	if n.Type == NodeTypeTile {
		b = Rect{Width: n.Width, Height: n.Height}
	}
	img, src := sourceFor(n, b.Width, b.Height)
	sx0, sy0 := float32(src.Min.X), float32(src.Min.Y)
	sx1, sy1 := float32(src.Max.X), float32(src.Max.Y)
	srcCorners := [4][2]float32{{sx0, sy0}, {sx1, sy0}, {sx1, sy1}, {sx0, sy1}}

	var verts [4]ebiten.Vertex
	for i, p := range cmd.quad {
		verts[i] = ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: srcCorners[i][0], SrcY: srcCorners[i][1],
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}
	op := &colorm.DrawTrianglesOptions{Filter: ebiten.FilterLinear}
	colorm.DrawTriangles(target, verts[:], indices, img, colorMatrix(n, cmd.alpha), op)
}

// drawRounded draws a node clipped to a rounded rectangle. The outline is
// built in the node's local space; tiles map it through their projected
// corners so the rounding follows the perspective.
func drawRounded(target *ebiten.Image, cmd *RenderCommand) {
	n := cmd.node
	w, h := n.Bounds.Width, n.Bounds.Height
	origin := Vec2{X: n.Bounds.X, Y: n.Bounds.Y}
	place := func(u, v float64) Vec2 { return Vec2{X: origin.X + u*w, Y: origin.Y + v*h} }
	if n.Type == NodeTypeTile {
		w, h = n.Width, n.Height
		place = squareToQuad(cmd.quad)
	}
	if w <= 0 || h <= 0 {
		return
	}
	r := min(n.CornerRadius, w/2, h/2)
	x1, y1 := float32(w), float32(h)
	rf := float32(r)

	var path vector.Path
	path.MoveTo(rf, 0)
	path.LineTo(x1-rf, 0)
	path.ArcTo(x1, 0, x1, rf, rf)
	path.LineTo(x1, y1-rf)
	path.ArcTo(x1, y1, x1-rf, y1, rf)
	path.LineTo(rf, y1)
	path.ArcTo(0, y1, 0, y1-rf, rf)
	path.LineTo(0, rf)
	path.ArcTo(0, 0, rf, 0, rf)
	path.Close()

	verts, indices := path.AppendVerticesAndIndicesForFilling(nil, nil)
	img, src := sourceFor(n, w, h)
	sw, sh := float64(src.Dx()), float64(src.Dy())
	for i := range verts {
		u := float64(verts[i].DstX) / w
		v := float64(verts[i].DstY) / h
		p := place(u, v)
		verts[i].DstX, verts[i].DstY = float32(p.X), float32(p.Y)
		verts[i].SrcX = float32(float64(src.Min.X) + u*sw)
		verts[i].SrcY = float32(float64(src.Min.Y) + v*sh)
		verts[i].ColorR, verts[i].ColorG, verts[i].ColorB, verts[i].ColorA = 1, 1, 1, 1
	}
	op := &colorm.DrawTrianglesOptions{Filter: ebiten.FilterLinear}
	op.FillRule = ebiten.NonZero
	op.AntiAlias = true
	colorm.DrawTriangles(target, verts, indices, img, colorMatrix(n, cmd.alpha), op)
}
