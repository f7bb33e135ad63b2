// Package dome renders a photo gallery on the surface of a rotating sphere
// for [Ebitengine].
//
// Image tiles are laid out on a staggered grid of latitudes and longitudes,
// projected with a single-point perspective camera and drawn with
// DrawTriangles. The sphere drifts slowly, leans toward the hovering pointer,
// follows drags and keeps spinning with inertia after a fling. Tapping a tile
// straightens it toward the viewer and grows it into an enlarged view over a
// dimmed backdrop; tapping the backdrop or pressing Escape shrinks it back.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	scene := dome.NewScene()
//	d, err := dome.New(dome.DefaultConfig(), dome.ParsePool(srcs))
//	if err != nil {
//		log.Fatal(err)
//	}
//	d.Mount(scene)
//	dome.Run(scene, dome.RunConfig{Title: "Dome", Width: 1280, Height: 800})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly, passing the layout size to
// [Scene.SetSize].
//
// # Scene graph
//
// Every visual element is a [Node]. A [Scene] owns the root node, the
// [Camera], input state and scene-level callbacks. Tiles are nodes placed in
// 3D by their ancestors' rotations; sprites are screen-space rectangles used
// for the focus overlay.
//
// # Configuration
//
// [Config] is loaded from YAML with [LoadConfig], validated with
// go-playground/validator and can be hot-reloaded with [WatchConfig] and
// [Dome.Follow].
//
// # Testing
//
// Input can be injected with [Scene.InjectClick], [Scene.InjectDrag],
// [Scene.InjectKey] and friends, or scripted as JSON with [LoadTestScript].
// Screenshots are written as lossless WebP.
//
// [Ebitengine]: https://ebitengine.org
package dome
