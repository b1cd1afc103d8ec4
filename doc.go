// Package overlaycam is a camera with composited overlays.
//
// A [Camera] owns one camera session, one ordered set of overlay layers, the
// live preview loop and the capture pipeline. Layers are images, text or
// shapes positioned with the same rules on the preview and on captured
// photos, so a capture reproduces what the preview shows.
//
// # Quick Start
//
//	cam := overlaycam.New(driver)
//	defer cam.Close()
//
//	if err := cam.Start(ctx, overlaycam.StartOptions{Facing: camera.FacingBack}); err != nil {
//	    return err
//	}
//	cam.AddLayer(layer.NewImage("~/frames/party.png"))
//	cam.AddLayer(layer.NewText("Hello").At(0.05, 0.95))
//
//	res, err := cam.Capture(ctx, capture.DefaultRequest())
//
// # Geometry
//
// Layer coordinates below 1 are fractions of the output size; values of 1
// and above are pixels. An unset width or height covers the whole output.
// Layers draw in ascending ZIndex, ties broken by insertion order.
//
// # Logging
//
// overlaycam is silent by default. Call [SetLogger] to receive structured
// logs from every sub-package.
package overlaycam
