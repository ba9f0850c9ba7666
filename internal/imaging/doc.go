// Package imaging loads label masks and renders previews of extracted outlines.
//
// A label mask is a single-channel raster where every pixel value identifies a
// class or instance. Value 0 is background. This package decodes mask files,
// converts them into LabelArray grids and isolates individual labels for
// tracing.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: column (0 = leftmost pixel)
//   - Y: row (0 = topmost pixel)
//   - Width is the number of columns, Height the number of rows
//
// Outline polygons drawn by RenderPreview use pixel-corner coordinates: the
// pixel at (x, y) covers the square from (x, y) to (x+1, y+1).
//
// # Supported Masks
//
// Gray and Gray16 images use the gray level as the label. Paletted images use
// the palette index, so indexed PNGs keep their class ids. Other color models
// are accepted when red, green and blue agree at every pixel; anything else is
// rejected with ErrMultiChannel.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. A LabelArray is never
// modified after construction and may be shared between goroutines.
//
// # Performance Considerations
//
// For repeated operations on the same mask, use ImageCache to avoid redundant
// disk reads. Batch runs should Evict() each path once it is processed.
package imaging
