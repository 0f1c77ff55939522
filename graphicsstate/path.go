package graphicsstate

import (
	"math"

	"github.com/tsawler/reflow/model"
)

// PathSegmentType defines the type of path segment
type PathSegmentType int

const (
	PathMoveTo PathSegmentType = iota
	PathLineTo
	// PathCurveTo keeps only the end point; curves never become ruling lines
	PathCurveTo
	PathClosePath
)

// PathSegment is one path construction step, in user space
type PathSegment struct {
	Type  PathSegmentType
	Point model.Point
}

// Path represents a graphics path being constructed
type Path struct {
	Segments []PathSegment

	current    model.Point
	start      model.Point
	hasCurrent bool
}

// MoveTo starts a new subpath (m operator)
func (p *Path) MoveTo(x, y float64) {
	pt := model.Point{X: x, Y: y}
	p.Segments = append(p.Segments, PathSegment{Type: PathMoveTo, Point: pt})
	p.current, p.start, p.hasCurrent = pt, pt, true
}

// LineTo appends a straight segment (l operator). Without a current point it
// acts as a moveto.
func (p *Path) LineTo(x, y float64) {
	if !p.hasCurrent {
		p.MoveTo(x, y)
		return
	}
	pt := model.Point{X: x, Y: y}
	p.Segments = append(p.Segments, PathSegment{Type: PathLineTo, Point: pt})
	p.current = pt
}

// CurveTo appends a curve ending at (x, y) (c, v and y operators)
func (p *Path) CurveTo(x, y float64) {
	if !p.hasCurrent {
		p.MoveTo(x, y)
		return
	}
	pt := model.Point{X: x, Y: y}
	p.Segments = append(p.Segments, PathSegment{Type: PathCurveTo, Point: pt})
	p.current = pt
}

// ClosePath closes the current subpath (h operator)
func (p *Path) ClosePath() {
	if !p.hasCurrent {
		return
	}
	p.Segments = append(p.Segments, PathSegment{Type: PathClosePath, Point: p.start})
	p.current = p.start
}

// Rectangle appends a closed rectangular subpath (re operator)
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.ClosePath()
}

// Clear resets the path
func (p *Path) Clear() {
	p.Segments = p.Segments[:0]
	p.hasCurrent = false
}

// subpaths splits the path at each moveto
func (p *Path) subpaths() [][]PathSegment {
	var out [][]PathSegment
	for i, seg := range p.Segments {
		if seg.Type == PathMoveTo || i == 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], seg)
	}
	return out
}

// ExtractedLine is a straight stroked segment in device space
type ExtractedLine struct {
	Start model.Point
	End   model.Point
	Width float64

	IsHorizontal bool
	IsVertical   bool
}

// Length returns the Euclidean length of the line
func (l ExtractedLine) Length() float64 {
	return math.Hypot(l.End.X-l.Start.X, l.End.Y-l.Start.Y)
}

// BBox returns the line's bounding box
func (l ExtractedLine) BBox() model.BBox {
	return model.BBoxFromCorners(l.Start, l.End)
}

// ExtractedRectangle is an axis-aligned painted rectangle in device space
type ExtractedRectangle struct {
	BBox      model.BBox
	FillColor [3]float64
	IsFilled  bool
	IsStroked bool
}

// PathExtractor collects lines and rectangles from painted paths
type PathExtractor struct {
	Lines      []ExtractedLine
	Rectangles []ExtractedRectangle

	path Path
	gs   *GraphicsState

	// AngleTolerance is the allowed deviation, in points, for a line to count
	// as horizontal or vertical
	AngleTolerance float64
}

// NewPathExtractor creates a path extractor reading CTM and colours from gs
func NewPathExtractor(gs *GraphicsState) *PathExtractor {
	return &PathExtractor{gs: gs, AngleTolerance: 0.5}
}

// Paint finishes the current path. stroked and filled describe the painting
// operator; "n" passes neither and only discards the path.
func (pe *PathExtractor) Paint(stroked, filled bool) {
	if stroked || filled {
		for _, sub := range pe.path.subpaths() {
			if rect, ok := pe.rectangle(sub); ok {
				rect.IsStroked = stroked
				rect.IsFilled = filled
				if filled {
					rect.FillColor = pe.gs.FillColor
				}
				pe.Rectangles = append(pe.Rectangles, rect)
				continue
			}
			if stroked {
				pe.strokeSegments(sub)
			}
		}
	}
	pe.path.Clear()
}

// rectangle reports whether a subpath is an axis-aligned rectangle once
// transformed to device space
func (pe *PathExtractor) rectangle(sub []PathSegment) (ExtractedRectangle, bool) {
	var corners []model.Point
	for _, seg := range sub {
		switch seg.Type {
		case PathMoveTo, PathLineTo:
			corners = append(corners, pe.gs.CTM.Transform(seg.Point))
		case PathClosePath:
		default:
			return ExtractedRectangle{}, false
		}
	}
	if len(corners) == 5 && pointsEqual(corners[0], corners[4], 0.1) {
		corners = corners[:4]
	}
	if len(corners) != 4 {
		return ExtractedRectangle{}, false
	}
	tol := pe.AngleTolerance
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		if math.Abs(a.X-b.X) > tol && math.Abs(a.Y-b.Y) > tol {
			return ExtractedRectangle{}, false
		}
	}
	return ExtractedRectangle{BBox: boundingBox(corners)}, true
}

func (pe *PathExtractor) strokeSegments(sub []PathSegment) {
	var current, start model.Point
	for _, seg := range sub {
		pt := pe.gs.CTM.Transform(seg.Point)
		switch seg.Type {
		case PathMoveTo:
			current, start = pt, pt
		case PathLineTo:
			pe.addLine(current, pt)
			current = pt
		case PathCurveTo:
			current = pt
		case PathClosePath:
			if !pointsEqual(current, start, 0.1) {
				pe.addLine(current, start)
			}
			current = start
		}
	}
}

func (pe *PathExtractor) addLine(a, b model.Point) {
	width := pe.gs.LineWidth * pe.gs.CTM.ScaleX()
	pe.Lines = append(pe.Lines, ExtractedLine{
		Start:        a,
		End:          b,
		Width:        width,
		IsHorizontal: math.Abs(b.Y-a.Y) < pe.AngleTolerance,
		IsVertical:   math.Abs(b.X-a.X) < pe.AngleTolerance,
	})
}

func pointsEqual(a, b model.Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}

func boundingBox(points []model.Point) model.BBox {
	box := model.BBoxFromCorners(points[0], points[0])
	for _, p := range points[1:] {
		box = unionPoint(box, p)
	}
	return box
}

func unionPoint(b model.BBox, p model.Point) model.BBox {
	minX, minY := math.Min(b.X, p.X), math.Min(b.Y, p.Y)
	maxX, maxY := math.Max(b.Right(), p.X), math.Max(b.Top(), p.Y)
	return model.BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
