// Package capture turns one camera still and one layer snapshot into an
// encoded photo.
//
// [Coordinator.Capture] runs the whole pipeline: it takes the snapshot,
// requests a full-resolution still, waits a bounded time for overlay images
// that are still loading, composites at the still's native size, encodes
// the result as JPEG and delivers it as base64, as a file, or both. Output
// files are written atomically; a failed capture leaves nothing behind.
package capture
