// Package server exposes a versioned canvas to MCP (Model Context Protocol)
// clients.
//
// The server runs over stdio using the official MCP Go SDK. It owns one
// ledger.VersionedImage; every tool call takes the server lock, so the
// canvas sees one writer at a time. Mutating tools build a canvas command,
// apply it through the ledger and, when it changed something, append it to
// the journal.
//
// # Available Tools
//
// Editing:
//   - canvas_apply: Apply a command in wire form
//   - canvas_draw, canvas_erase: Paint or unset points
//   - canvas_revert: Return pixels to an earlier version
//
// Reading pixels:
//   - canvas_get_pixel: Color at one point
//   - canvas_range_pixels: Set pixels inside a rectangle
//
// History:
//   - canvas_version: Current version and statistics
//   - canvas_applied_commands: Commands after a version
//   - canvas_diff: Minimal patch from a version to now
//
// Anchors:
//   - canvas_anchors, canvas_set_anchor: List and edit named points
//   - canvas_measure, canvas_check_alignment: Geometry between anchors
//
// Metadata:
//   - canvas_metadata: Read values, optionally at a path inside them
//   - canvas_put, canvas_put_path: Store a value or edit part of one
//
// Rendering:
//   - canvas_render: PNG image content, optionally gridded
//   - canvas_export, canvas_import: PNG out, any raster format in
//
// Color analysis:
//   - canvas_palette, canvas_quantize, canvas_regions
//
// # Errors
//
// Bad arguments and failed operations come back as tool results with
// IsError set, so the client sees the message. Protocol errors are left to
// the SDK.
package server
