package text

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/reflow/model"
)

// Tunables for grouping fragments, all relative to the font size
const (
	// baselineTolerance is how far apart two baselines may be and still
	// belong to one line
	baselineTolerance = 0.5
	// spaceGap is the horizontal gap that implies a word break
	spaceGap = 0.15
	// columnGap is the horizontal gap that splits one baseline into two
	// separate lines, such as a left heading and a right-aligned date
	columnGap = 3.0
	// blockGap is the largest vertical gap between the boxes of two lines
	// of the same block
	blockGap = 0.5
	// ascent and descent of the nominal line box
	ascent  = 0.8
	descent = 0.2
)

// Span is a run of line text sharing one font, size and colour
type Span struct {
	Text     string
	FontName string
	Size     float64
	Color    model.RGB
	BBox     model.BBox
}

// Line is a single line of text in reading order
type Line struct {
	Spans     []Span
	BBox      model.BBox
	Baseline  float64
	Direction Direction
}

// Text returns the concatenated span text
func (l Line) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// MaxSize returns the largest span font size
func (l Line) MaxSize() float64 {
	max := 0.0
	for _, s := range l.Spans {
		if s.Size > max {
			max = s.Size
		}
	}
	return max
}

// Block is a group of vertically adjacent lines, roughly a paragraph
type Block struct {
	Lines []Line
	BBox  model.BBox
}

// BuildLines groups fragments into lines ordered top to bottom. Fragments
// are clustered by baseline regardless of the order they were drawn in, so
// text shown column by column still reads row by row.
func BuildLines(fragments []TextFragment) []Line {
	var frags []TextFragment
	for _, f := range fragments {
		if f.Text != "" && f.FontSize > 0 {
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		return nil
	}

	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Y > frags[j].Y })

	var rows [][]TextFragment
	current := []TextFragment{frags[0]}
	for _, f := range frags[1:] {
		anchor := current[0]
		tol := baselineTolerance * math.Min(anchor.FontSize, f.FontSize)
		if math.Abs(anchor.Y-f.Y) <= tol {
			current = append(current, f)
			continue
		}
		rows = append(rows, current)
		current = []TextFragment{f}
	}
	rows = append(rows, current)

	var lines []Line
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		for _, part := range splitColumns(row) {
			lines = append(lines, buildLine(part))
		}
	}
	return lines
}

// splitColumns breaks an x-sorted row wherever the gap is wide enough to
// separate independent pieces of text
func splitColumns(row []TextFragment) [][]TextFragment {
	var parts [][]TextFragment
	start := 0
	right := row[0].Right()
	for i := 1; i < len(row); i++ {
		gap := row[i].X - right
		size := math.Max(row[i].FontSize, row[i-1].FontSize)
		if gap > columnGap*size {
			parts = append(parts, row[start:i])
			start = i
		}
		right = math.Max(right, row[i].Right())
	}
	return append(parts, row[start:])
}

// buildLine merges x-sorted fragments into styled spans
func buildLine(frags []TextFragment) Line {
	dir := detectLineDirection(frags)
	ordered := frags
	if dir == RTL {
		ordered = make([]TextFragment, len(frags))
		for i, f := range frags {
			ordered[len(frags)-1-i] = f
		}
	}

	line := Line{Direction: dir, Baseline: frags[0].Y}
	var prev *TextFragment
	for i := range ordered {
		f := ordered[i]
		text := f.Text
		if prev != nil && needsSpace(*prev, f, dir) {
			text = " " + text
		}
		box := fragmentBox(f)

		n := len(line.Spans)
		if n > 0 && sameStyle(line.Spans[n-1], f) {
			line.Spans[n-1].Text += text
			line.Spans[n-1].BBox = line.Spans[n-1].BBox.Union(box)
		} else {
			line.Spans = append(line.Spans, Span{
				Text:     text,
				FontName: f.FontName,
				Size:     f.FontSize,
				Color:    f.Color,
				BBox:     box,
			})
		}
		line.BBox = line.BBox.Union(box)
		prev = &ordered[i]
	}
	return line
}

// needsSpace reports whether a word break falls between two neighbours
func needsSpace(prev, next TextFragment, dir Direction) bool {
	if endsWithSpace(prev.Text) || startsWithSpace(next.Text) {
		return false
	}
	gap := next.X - prev.Right()
	if dir == RTL {
		gap = prev.X - next.Right()
	}
	return gap > spaceGap*math.Max(prev.FontSize, next.FontSize)
}

func endsWithSpace(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsSpace(r[len(r)-1])
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func sameStyle(s Span, f TextFragment) bool {
	return s.FontName == f.FontName && s.Color == f.Color && math.Abs(s.Size-f.FontSize) < 0.1
}

// fragmentBox returns the nominal box of a fragment: it spans from below
// the baseline by the descent to above it by the ascent
func fragmentBox(f TextFragment) model.BBox {
	width := f.Width
	if width <= 0 {
		width = 0.01
	}
	return model.NewBBox(f.X, f.Y-descent*f.FontSize, width, f.FontSize)
}

// detectLineDirection determines the dominant direction of a line
func detectLineDirection(fragments []TextFragment) Direction {
	ltr, rtl := 0, 0
	for _, f := range fragments {
		switch f.Direction {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	if rtl > ltr {
		return RTL
	}
	return LTR
}

// BuildBlocks groups top-to-bottom lines into blocks of vertically adjacent,
// horizontally overlapping lines
func BuildBlocks(lines []Line) []Block {
	var blocks []Block
	for _, l := range lines {
		if n := len(blocks); n > 0 && continues(blocks[n-1], l) {
			blocks[n-1].Lines = append(blocks[n-1].Lines, l)
			blocks[n-1].BBox = blocks[n-1].BBox.Union(l.BBox)
			continue
		}
		blocks = append(blocks, Block{Lines: []Line{l}, BBox: l.BBox})
	}
	return blocks
}

func continues(b Block, l Line) bool {
	last := b.Lines[len(b.Lines)-1]
	gap := last.BBox.Y - l.BBox.Top()
	if gap > blockGap*math.Max(last.MaxSize(), l.MaxSize()) {
		return false
	}
	if gap < -0.5*l.MaxSize() {
		// lines side by side on one baseline stay separate
		return false
	}
	return l.BBox.X < b.BBox.Right() && b.BBox.X < l.BBox.Right()
}
