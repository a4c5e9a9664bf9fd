// Package colorbook is a coloring-book drawing surface for [Ebitengine].
//
// A page is two layers: a fixed Background picture and a transparent
// Drawing layer the user paints on with a brush or an eraser. The page is
// shown through a zoomable, pannable [Viewport]; one pointer draws and two
// pointers pinch-zoom. Every finished stroke is committed to an undo
// [History] of encoded snapshots.
//
// # Quick start
//
// [Run] opens a window and runs a [Session] until it is closed:
//
//	s, err := colorbook.NewSession("jungle", colorbook.Options{
//		Store:       myStore,
//		Backgrounds: myScenes,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = colorbook.Run(ctx, s, colorbook.RunConfig{Title: "Coloring Book"})
//
// A Session is an [ebiten.Game], so it can also be driven by your own loop
// after calling [Session.Start].
//
// # Pieces
//
// The surface is built from parts that work without a Session:
//
//   - [Viewport] maps screen pixels to page coordinates with one uniform
//     scale and a pan offset, and keeps the page covering the screen on
//     resize and reset.
//   - [GestureController] turns pointer down, move and up events into
//     strokes or pinch zooms.
//   - [StrokeRenderer] rasterizes round-capped segments into the Drawing
//     [Layer]. The eraser clears to transparent and never touches the
//     Background.
//   - [Compositor] draws the Background and the Drawing layer through the
//     viewport, and flattens them at page resolution for export.
//   - [History] keeps a bounded list of snapshots with a cursor.
//
// # Persistence
//
// Documents are the Drawing layer alone, encoded with a [Codec] (PNG by
// default) and kept in a [DocumentStore]. Backgrounds come from a
// [BackgroundSource]. Both load asynchronously and are applied on the game
// loop.
//
// # Scripted sessions
//
// [LoadTestScript] reads a JSON list of steps (press, drag, pinch, tool,
// undo, screenshot and others) that a [TestRunner] injects frame by frame
// through the same path as real input.
//
// [Ebitengine]: https://ebitengine.org
package colorbook
