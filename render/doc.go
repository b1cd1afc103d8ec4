// Package render composites overlay layers onto a camera frame.
//
// A [Compositor] draws a base frame and then every layer of a snapshot, in
// (ZIndex, Sequence) order, onto a [surface.Surface]. The same code serves
// the live preview and the captured still, so both show identical results
// for identical inputs.
//
// # Layer rendering
//
// [Renderer] draws one layer into its resolved rectangle:
//
//   - Text fills the optional background over the whole rectangle, then
//     draws the text with its top edge at y+padding, anchored at the left
//     edge, the center or the right edge.
//   - Shapes are rectangles, circles (radius min(w, h)/2) or lines from the
//     rectangle origin to its far corner. Rectangles and circles get the
//     optional fill first and the stroke on top of it.
//   - Images are stretched to fill the rectangle.
//
// Opacity and rotation are applied by the compositor around each layer and
// never leak to the next one. A layer that cannot be drawn, for example an
// image that has not finished loading, is reported and skipped.
//
// # Usage
//
//	comp := render.NewCompositor(render.NewRenderer(fonts.New()))
//	s := surface.NewImageSurface(frame.Bounds().Dx(), frame.Bounds().Dy())
//	report := comp.Composite(s, frame, store.Snapshot(), loader)
//	out := s.Snapshot()
package render
