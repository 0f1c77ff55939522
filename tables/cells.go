package tables

import (
	"strings"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/text"
)

// CellText places each fragment into the cell containing its centre and
// returns the text of every cell, row by row. Fragments in one cell are
// joined in reading order; lines within a cell are joined with a space.
func (g *Grid) CellText(fragments []text.TextFragment) [][]string {
	rows, cols := g.NumRows(), g.NumCols()
	cells := make([][][]text.TextFragment, rows)
	for i := range cells {
		cells[i] = make([][]text.TextFragment, cols)
	}

	for _, f := range fragments {
		row, col := g.findCell(fragmentCenter(f))
		if row < 0 || col < 0 {
			continue
		}
		// merged cells keep their text in the leftmost column
		for col > 0 && !g.hasDivider(row, col) {
			col--
		}
		cells[row][col] = append(cells[row][col], f)
	}

	result := make([][]string, rows)
	for i := range cells {
		result[i] = make([]string, cols)
		for j, frags := range cells[i] {
			if len(frags) == 0 {
				continue
			}
			lines := text.BuildLines(frags)
			parts := make([]string, 0, len(lines))
			for _, l := range lines {
				if t := strings.TrimSpace(l.Text()); t != "" {
					parts = append(parts, t)
				}
			}
			result[i][j] = strings.Join(parts, " ")
		}
	}
	return result
}

// fragmentCenter is the middle of the fragment's lowercase body: half way
// along and about a third of the font size above the baseline
func fragmentCenter(f text.TextFragment) model.Point {
	return model.Point{X: f.X + f.Width/2, Y: f.Y + 0.3*f.FontSize}
}

// findCell returns the row and column indices of the cell containing p, or
// -1 for both if p is outside the grid
func (g *Grid) findCell(p model.Point) (row, col int) {
	row, col = -1, -1
	for i := 0; i < g.NumRows(); i++ {
		if p.Y <= g.Rows[i] && p.Y >= g.Rows[i+1] {
			row = i
			break
		}
	}
	for i := 0; i < g.NumCols(); i++ {
		if p.X >= g.Cols[i] && p.X <= g.Cols[i+1] {
			col = i
			break
		}
	}
	if row < 0 || col < 0 {
		return -1, -1
	}
	return row, col
}
