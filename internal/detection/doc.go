// Package detection finds structure in canvas pixels.
//
// A region is a maximal set of same-colored pixels connected through their
// neighbours. Connectivity is either 4 (edges only) or 8 (edges and
// diagonals). Unset points never belong to a region.
//
// Regions are reported in canvas coordinates with inclusive bounds, largest
// first.
package detection
