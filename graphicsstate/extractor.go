package graphicsstate

import (
	"github.com/tsawler/reflow/contentstream"
	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/model"
)

// ImagePlacement records one XObject drawn with Do. BBox is the unit square
// mapped through the CTM at the time of the call.
type ImagePlacement struct {
	Name string
	BBox model.BBox
}

// GraphicsExtractor extracts ruling lines, rectangles and XObject placements
// from content streams
type GraphicsExtractor struct {
	gs            *GraphicsState
	pathExtractor *PathExtractor

	Placements []ImagePlacement

	// MinLineLength drops tick marks and dots from the ruling lines
	MinLineLength float64
	// MaxRuleThickness is the largest filled rectangle height (or width)
	// treated as a drawn rule rather than a box
	MaxRuleThickness float64
}

// NewGraphicsExtractor creates a new graphics extractor
func NewGraphicsExtractor() *GraphicsExtractor {
	gs := NewGraphicsState()
	return &GraphicsExtractor{
		gs:               gs,
		pathExtractor:    NewPathExtractor(gs),
		MinLineLength:    3.0,
		MaxRuleThickness: 2.0,
	}
}

// Extract processes content stream operations. Unbalanced Q operators are
// ignored, as viewers do.
func (ge *GraphicsExtractor) Extract(operations []contentstream.Operation) {
	for _, op := range operations {
		ge.processOperation(op)
	}
}

// ExtractFromBytes parses and extracts graphics from raw content stream
// data. Operations parsed before a syntax error are still processed.
func (ge *GraphicsExtractor) ExtractFromBytes(data []byte) error {
	operations, err := contentstream.NewParser(data).Parse()
	ge.Extract(operations)
	return err
}

func (ge *GraphicsExtractor) processOperation(op contentstream.Operation) {
	if handled, _ := ge.gs.Apply(op); handled {
		return
	}
	pe := ge.pathExtractor
	args := op.Operands
	switch op.Operator {
	case "m":
		if v, ok := floatsOperand(args, 2); ok {
			pe.path.MoveTo(v[0], v[1])
		}
	case "l":
		if v, ok := floatsOperand(args, 2); ok {
			pe.path.LineTo(v[0], v[1])
		}
	case "c":
		if v, ok := floatsOperand(args, 6); ok {
			pe.path.CurveTo(v[4], v[5])
		}
	case "v", "y":
		if v, ok := floatsOperand(args, 4); ok {
			pe.path.CurveTo(v[2], v[3])
		}
	case "h":
		pe.path.ClosePath()
	case "re":
		if v, ok := floatsOperand(args, 4); ok {
			pe.path.Rectangle(v[0], v[1], v[2], v[3])
		}

	case "S":
		pe.Paint(true, false)
	case "s":
		pe.path.ClosePath()
		pe.Paint(true, false)
	case "f", "F", "f*":
		pe.Paint(false, true)
	case "B", "B*":
		pe.Paint(true, true)
	case "b", "b*":
		pe.path.ClosePath()
		pe.Paint(true, true)
	case "n":
		pe.Paint(false, false)

	case "Do":
		if len(args) == 1 {
			if name, ok := args[0].(core.Name); ok {
				unit := model.NewBBox(0, 0, 1, 1)
				ge.Placements = append(ge.Placements, ImagePlacement{
					Name: string(name),
					BBox: ge.gs.CTM.TransformBox(unit),
				})
			}
		}
	}
}

// GetLines returns all stroked lines
func (ge *GraphicsExtractor) GetLines() []ExtractedLine {
	return ge.pathExtractor.Lines
}

// GetRectangles returns all painted rectangles
func (ge *GraphicsExtractor) GetRectangles() []ExtractedRectangle {
	return ge.pathExtractor.Rectangles
}

// GridLines represents horizontal and vertical lines that could form a table grid
type GridLines struct {
	Horizontals []ExtractedLine
	Verticals   []ExtractedLine
}

// GetGridLines returns the horizontal and vertical rules of the page. Stroked
// rectangles contribute their four edges; thin filled rectangles count as a
// single rule; white fills are invisible and ignored.
func (ge *GraphicsExtractor) GetGridLines() GridLines {
	var grid GridLines
	add := func(l ExtractedLine) {
		if l.Length() < ge.MinLineLength {
			return
		}
		switch {
		case l.IsHorizontal:
			grid.Horizontals = append(grid.Horizontals, l)
		case l.IsVertical:
			grid.Verticals = append(grid.Verticals, l)
		}
	}

	for _, l := range ge.pathExtractor.Lines {
		add(l)
	}
	for _, r := range ge.pathExtractor.Rectangles {
		b := r.BBox
		if !r.IsStroked && isWhite(r.FillColor) {
			continue
		}
		switch {
		case b.Height <= ge.MaxRuleThickness && b.Width > b.Height:
			y := b.Y + b.Height/2
			add(horizontal(b.X, b.Right(), y))
		case b.Width <= ge.MaxRuleThickness && b.Height > b.Width:
			x := b.X + b.Width/2
			add(vertical(x, b.Y, b.Top()))
		default:
			add(horizontal(b.X, b.Right(), b.Y))
			add(horizontal(b.X, b.Right(), b.Top()))
			add(vertical(b.X, b.Y, b.Top()))
			add(vertical(b.Right(), b.Y, b.Top()))
		}
	}
	return grid
}

// GetGraphicsState returns the current graphics state
func (ge *GraphicsExtractor) GetGraphicsState() *GraphicsState {
	return ge.gs
}

func horizontal(x0, x1, y float64) ExtractedLine {
	return ExtractedLine{Start: model.Point{X: x0, Y: y}, End: model.Point{X: x1, Y: y}, IsHorizontal: true}
}

func vertical(x, y0, y1 float64) ExtractedLine {
	return ExtractedLine{Start: model.Point{X: x, Y: y0}, End: model.Point{X: x, Y: y1}, IsVertical: true}
}

func isWhite(c [3]float64) bool {
	return c[0] >= 0.95 && c[1] >= 0.95 && c[2] >= 0.95
}
