// Package detection traces the boundaries of binary masks into polygons.
//
// TraceMask follows pixel edges ("crack following") rather than pixel
// centres, so the traced outline encloses exactly the foreground area: a
// single pixel becomes a unit square, a 2x2 block a square of side 2.
//
// # Algorithm Overview
//
//  1. Component labelling: foreground cells are grouped into 8-connected
//     components with an iterative flood fill.
//  2. Edge collection: every side of a foreground cell that borders background
//     or the image border becomes a directed edge with the foreground on its
//     right.
//  3. Ring linking: edges are chained into closed rings. At a vertex shared by
//     two diagonal cells the left turn is taken, keeping the foreground
//     8-connected and the background 4-connected.
//  4. Assembly: the counter-clockwise ring of a component is its exterior;
//     clockwise rings are its holes.
//
// # Coordinate System
//
// Vertices sit on pixel corners:
//   - Origin (0, 0) at the top-left corner of the top-left pixel
//   - X increases rightward
//   - Y increases downward
//
// Orientation follows the planar signed-area convention of orb.Ring, computed
// directly on these coordinates.
//
// # Limitations
//
// Rings of components that touch themselves diagonally are not simple. Run the
// result through geometry.MakeValid before treating it as valid geometry.
package detection
