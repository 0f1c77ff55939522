package tables

import (
	"github.com/tsawler/reflow/graphicsstate"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/text"
)

// Detector finds ruled tables on a page
type Detector struct {
	// AlignmentTolerance is how far apart (in points) two rules may be and
	// still be treated as the same boundary, or as touching
	AlignmentTolerance float64

	// MinLineLength drops rules shorter than this (in points)
	MinLineLength float64

	// MinCoverage is the fraction of the grid a rule must span to count as
	// a row or column boundary
	MinCoverage float64

	// MinCells is the smallest number of cells a grid needs to be a table
	MinCells int
}

// NewDetector creates a detector with default settings
func NewDetector() *Detector {
	return &Detector{
		AlignmentTolerance: 3.0,
		MinLineLength:      5.0,
		MinCoverage:        0.5,
		MinCells:           2,
	}
}

// Table is a detected table with its cell text. Rows hold one entry per
// grid column; a cell covered by its left neighbour is empty.
type Table struct {
	BBox model.BBox
	Rows [][]string
	Grid *Grid
}

// Detect finds the ruled tables in the page graphics and fills their cells
// with the text fragments that fall inside them
func (d *Detector) Detect(lines graphicsstate.GridLines, fragments []text.TextFragment) []*Table {
	grids := d.DetectGrids(lines)
	tables := make([]*Table, 0, len(grids))
	for _, g := range grids {
		tables = append(tables, &Table{
			BBox: g.BBox,
			Rows: g.CellText(fragments),
			Grid: g,
		})
	}
	return tables
}
