// Package model defines the data structures shared by both conversion
// directions.
//
// # Page units
//
// PDF extraction produces one [PageContentUnit] per extractable piece of a
// page: [TextLine], [ImageUnit] and [TableUnit]. Every unit carries a
// top-down y position used solely to establish reading order.
//
// # Flow nodes
//
// A flow document body is a flat, ordered sequence of [FlowBodyNode] values:
// [Paragraph], [Table] and [ImageRef].
//
// # Geometry
//
//   - [BBox] - rectangle in PDF user space (origin bottom-left)
//   - [Point] - 2D point
//   - [Matrix] - affine transformation used by the graphics state
package model
