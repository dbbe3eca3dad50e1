// Package canvas holds the sparse state of a pixel image and the commands
// that change it.
//
// An Image is three sorted maps: pixels keyed by point in raster order,
// anchors keyed by name, and JSON metadata keyed by name. A missing pixel is
// transparent; it is never stored as a zero color.
//
// # Commands
//
// A Command is exactly one of Patch, Anchor or Put. Apply reports whether
// the image changed, and a command that leaves every map as it was reports
// false. Callers that version the image rely on that to skip no-op edits.
//
// The JSON form is one object per command:
//
//	{"patch":[{"color":[255,0,0],"points":[[0,0],[1,0]]},{"points":[[4,4]]}]}
//	{"anchor":{"name":"origin","point":[3,4]}}
//	{"put":{"name":"tag","value":{"any":"json"}}}
//
// # Diff
//
// Diff walks two images in raster order with one cursor each and returns a
// patch that, applied to the older image, reproduces the newer one.
package canvas
