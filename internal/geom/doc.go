// Package geom provides the value types every other package is keyed on:
// integer points in raster order, 8-bit RGBA colors and rectangular ranges.
//
// # Point Order
//
// Points are ordered row-major: first by Y, then by X. This is the order the
// sparse pixel store iterates in, and range queries and diffs depend on it.
//
// # Saturation
//
// Point arithmetic never wraps. Results are clamped to the int16 bounds.
//
// # Color Wire Form
//
// A fully opaque color serializes as [r, g, b]; any other alpha serializes
// as [r, g, b, a]. Both forms decode to the same Color.
package geom
