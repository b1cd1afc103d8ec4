// Package camera owns the camera device and its frame stream.
//
// A [Session] is a small state machine:
//
//	Idle -> Requesting -> Previewing <-> Capturing
//	Previewing -> Switching -> Previewing
//	any -> Stopped (-> Idle on the next Start)
//
// Devices are reached through the [Driver] and [Device] interfaces; the
// session never holds two devices at once. Frames delivered by a device that
// has since been released are dropped. Flash, zoom and focus are kept in the
// session and re-applied to every device it acquires. A capability the
// device lacks is skipped without failing the caller.
package camera
