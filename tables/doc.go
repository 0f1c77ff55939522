// Package tables detects ruled tables on PDF pages and extracts their cell
// text.
//
// Detection works from the ruling lines collected by graphicsstate: stroked
// segments, rectangle edges and thin filled rules.
//
//	detector := tables.NewDetector()
//	found := detector.Detect(graphics.GetGridLines(), fragments)
//	for _, t := range found {
//	    fmt.Println(t.BBox, t.Rows)
//	}
//
// # Grids
//
// The lines are split into connected components, so several tables on one
// page are found separately. Within a component, rules at the same position
// (within AlignmentTolerance) form one boundary; boundaries that span less
// than MinCoverage of the grid, such as underlines inside a cell, are
// ignored. A grid needs at least two horizontal and two vertical boundaries
// and MinCells cells.
//
// # Cells
//
// Each text fragment goes to the cell containing its centre. Where a row has
// no vertical rule between two columns, the cells are merged and the text
// is kept in the leftmost one, leaving the others empty. The text of a cell
// is read line by line and joined with spaces.
package tables
