package tables

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/graphicsstate"
	"github.com/tsawler/reflow/model"
)

// Grid is a table skeleton found from ruling lines. Boundaries are in PDF
// user space: Rows runs top to bottom (descending y), Cols left to right.
type Grid struct {
	BBox model.BBox
	Rows []float64
	Cols []float64

	verticals []graphicsstate.ExtractedLine
	tolerance float64
}

// NumRows returns the number of cell rows
func (g *Grid) NumRows() int {
	if len(g.Rows) < 2 {
		return 0
	}
	return len(g.Rows) - 1
}

// NumCols returns the number of cell columns
func (g *Grid) NumCols() int {
	if len(g.Cols) < 2 {
		return 0
	}
	return len(g.Cols) - 1
}

// CellBBox returns the box of cell (row, col)
func (g *Grid) CellBBox(row, col int) model.BBox {
	return model.BBoxFromCorners(
		model.Point{X: g.Cols[col], Y: g.Rows[row+1]},
		model.Point{X: g.Cols[col+1], Y: g.Rows[row]},
	)
}

// hasDivider reports whether a vertical rule separates column col-1 from
// col within the given row. A missing divider means the cells are merged.
func (g *Grid) hasDivider(row, col int) bool {
	if col == 0 || col == len(g.Cols)-1 {
		return true
	}
	x := g.Cols[col]
	mid := (g.Rows[row] + g.Rows[row+1]) / 2
	for _, v := range g.verticals {
		if math.Abs(v.Start.X-x) > g.tolerance {
			continue
		}
		lo := math.Min(v.Start.Y, v.End.Y) - g.tolerance
		hi := math.Max(v.Start.Y, v.End.Y) + g.tolerance
		if mid >= lo && mid <= hi {
			return true
		}
	}
	return false
}

// AlignedLineGroup represents a group of lines aligned on an axis
type AlignedLineGroup struct {
	// Position on the alignment axis (X for vertical lines, Y for horizontal)
	Position float64

	Lines []graphicsstate.ExtractedLine

	// Span of the lines on the perpendicular axis
	MinExtent float64
	MaxExtent float64
}

// DetectGrids finds every ruled grid among the lines. Lines are first split
// into connected components, so separate tables on one page become separate
// grids. Grids are returned top to bottom.
func (d *Detector) DetectGrids(lines graphicsstate.GridLines) []*Grid {
	horizontals := d.filterByLength(lines.Horizontals)
	verticals := d.filterByLength(lines.Verticals)
	if len(horizontals) < 2 || len(verticals) < 2 {
		return nil
	}

	var grids []*Grid
	for _, comp := range d.components(horizontals, verticals) {
		if g := d.buildGrid(comp.horizontals, comp.verticals); g != nil {
			grids = append(grids, g)
		}
	}
	sort.SliceStable(grids, func(i, j int) bool {
		return grids[i].BBox.Top() > grids[j].BBox.Top()
	})
	return grids
}

func (d *Detector) filterByLength(lines []graphicsstate.ExtractedLine) []graphicsstate.ExtractedLine {
	result := make([]graphicsstate.ExtractedLine, 0, len(lines))
	for _, line := range lines {
		if line.Length() >= d.MinLineLength {
			result = append(result, line)
		}
	}
	return result
}

type component struct {
	horizontals []graphicsstate.ExtractedLine
	verticals   []graphicsstate.ExtractedLine
}

// components groups lines that touch or cross each other
func (d *Detector) components(horizontals, verticals []graphicsstate.ExtractedLine) []component {
	all := make([]graphicsstate.ExtractedLine, 0, len(horizontals)+len(verticals))
	all = append(all, horizontals...)
	all = append(all, verticals...)

	parent := make([]int, len(all))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if d.touches(all[i], all[j]) {
				parent[find(i)] = find(j)
			}
		}
	}

	index := make(map[int]int)
	var comps []component
	for i, line := range all {
		root := find(i)
		n, ok := index[root]
		if !ok {
			n = len(comps)
			index[root] = n
			comps = append(comps, component{})
		}
		if i < len(horizontals) {
			comps[n].horizontals = append(comps[n].horizontals, line)
		} else {
			comps[n].verticals = append(comps[n].verticals, line)
		}
	}
	return comps
}

// touches reports whether two ruling lines meet within the tolerance
func (d *Detector) touches(a, b graphicsstate.ExtractedLine) bool {
	tol := d.AlignmentTolerance
	ab, bb := a.BBox().Expand(tol), b.BBox().Expand(tol)
	return ab.X <= bb.Right() && bb.X <= ab.Right() && ab.Y <= bb.Top() && bb.Y <= ab.Top()
}

// buildGrid turns one component into a grid, or nil when it encloses
// fewer than MinCells cells
func (d *Detector) buildGrid(horizontals, verticals []graphicsstate.ExtractedLine) *Grid {
	hGroups := d.groupAlignedLines(horizontals, true)
	vGroups := d.groupAlignedLines(verticals, false)
	if len(hGroups) < 2 || len(vGroups) < 2 {
		return nil
	}

	left, right := vGroups[0].Position, vGroups[len(vGroups)-1].Position
	bottom, top := hGroups[0].Position, hGroups[len(hGroups)-1].Position

	// short stubs such as underlines inside a cell are not row or column
	// boundaries
	hGroups = d.filterGroupsByExtent(hGroups, left, right)
	vGroups = d.filterGroupsByExtent(vGroups, bottom, top)
	if len(hGroups) < 2 || len(vGroups) < 2 {
		return nil
	}

	g := &Grid{verticals: verticals, tolerance: d.AlignmentTolerance}
	for i := len(hGroups) - 1; i >= 0; i-- {
		g.Rows = append(g.Rows, hGroups[i].Position)
	}
	for _, vg := range vGroups {
		g.Cols = append(g.Cols, vg.Position)
	}
	g.BBox = model.BBoxFromCorners(
		model.Point{X: g.Cols[0], Y: g.Rows[len(g.Rows)-1]},
		model.Point{X: g.Cols[len(g.Cols)-1], Y: g.Rows[0]},
	)

	if g.NumRows()*g.NumCols() < d.MinCells {
		return nil
	}
	return g
}

// groupAlignedLines groups lines that share a position on their axis. The
// groups are returned in ascending position order.
func (d *Detector) groupAlignedLines(lines []graphicsstate.ExtractedLine, isHorizontal bool) []AlignedLineGroup {
	if len(lines) == 0 {
		return nil
	}

	position := func(l graphicsstate.ExtractedLine) float64 {
		if isHorizontal {
			return (l.Start.Y + l.End.Y) / 2
		}
		return (l.Start.X + l.End.X) / 2
	}
	sorted := make([]graphicsstate.ExtractedLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return position(sorted[i]) < position(sorted[j]) })

	var groups []AlignedLineGroup
	current := AlignedLineGroup{Position: position(sorted[0]), Lines: sorted[:1:1]}
	for _, line := range sorted[1:] {
		pos := position(line)
		if pos-current.Position <= d.AlignmentTolerance {
			current.Lines = append(current.Lines, line)
			n := float64(len(current.Lines))
			current.Position = (current.Position*(n-1) + pos) / n
			continue
		}
		finalizeGroup(&current, isHorizontal)
		groups = append(groups, current)
		current = AlignedLineGroup{Position: pos, Lines: []graphicsstate.ExtractedLine{line}}
	}
	finalizeGroup(&current, isHorizontal)
	return append(groups, current)
}

func finalizeGroup(group *AlignedLineGroup, isHorizontal bool) {
	group.MinExtent = math.MaxFloat64
	group.MaxExtent = -math.MaxFloat64
	for _, line := range group.Lines {
		var lo, hi float64
		if isHorizontal {
			lo, hi = math.Min(line.Start.X, line.End.X), math.Max(line.Start.X, line.End.X)
		} else {
			lo, hi = math.Min(line.Start.Y, line.End.Y), math.Max(line.Start.Y, line.End.Y)
		}
		group.MinExtent = math.Min(group.MinExtent, lo)
		group.MaxExtent = math.Max(group.MaxExtent, hi)
	}
}

// filterGroupsByExtent keeps groups whose lines cover at least MinCoverage
// of the grid extent on the other axis
func (d *Detector) filterGroupsByExtent(groups []AlignedLineGroup, minExtent, maxExtent float64) []AlignedLineGroup {
	required := (maxExtent - minExtent) * d.MinCoverage
	var result []AlignedLineGroup
	for _, g := range groups {
		overlap := math.Min(g.MaxExtent, maxExtent) - math.Max(g.MinExtent, minExtent)
		if overlap+d.AlignmentTolerance >= required && overlap > 0 {
			result = append(result, g)
		}
	}
	return result
}
