// Package imaging turns canvas state into raster images and back.
//
// The canvas is sparse and unbounded within int16 space; a raster is dense
// and starts at (0,0). A Frame carries both the raster and the canvas point
// drawn at its top-left pixel, so coordinates can be mapped either way.
//
// # Coordinate System
//
// Canvas and raster share orientation: X increases rightward and Y increases
// downward. Raster pixel (i, j) of a Frame shows canvas point
// Origin + (i, j).
//
// # Color Representation
//
// Unset canvas points render fully transparent. Tool output describes colors
// in several forms:
//   - Hex: "#RRGGBB", or "#RRGGBBAA" when not opaque
//   - RGBA: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless; callers must not mutate a canvas image while rendering it.
package imaging
