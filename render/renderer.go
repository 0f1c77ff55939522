package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/reflow/classify"
	"github.com/tsawler/reflow/model"
)

// Layout constants in points
const (
	lineHeight = 16.0
	// emptyAdvance is the space taken by a blank paragraph, half a line
	// rounded down
	emptyAdvance = 8.0
	// pageBreakSpace is the default room a primitive needs above the page
	// bottom before a new page is started
	pageBreakSpace = 50.0

	listIndent = 20.0
	listBullet = "• "

	tableFontSize   = 9.0
	tableStartSpace = 100.0
	rowHeight       = 20.0
	rowSpace        = rowHeight + 20
	// cellCharWidth is the assumed width of one character when truncating
	// cell text
	cellCharWidth = 5.0
	tableAfter    = 10.0

	imageSpace = 20.0
	imageAfter = 10.0
)

// textStyle is how a block of text is drawn
type textStyle struct {
	size     float64
	bold     bool
	italic   bool
	color    model.RGB
	hasColor bool
	align    model.Alignment
	indent   float64
}

func (s textStyle) fontStyle() string {
	switch {
	case s.bold && s.italic:
		return "BI"
	case s.bold:
		return "B"
	case s.italic:
		return "I"
	default:
		return ""
	}
}

// Renderer lays a flow document out on fixed size pages. The cursor y is
// the baseline of the next line measured up from the bottom of the page. It
// only moves down within a page and returns to the top margin when a new
// page starts.
type Renderer struct {
	c    canvas
	opts Options

	y     float64
	page  int
	drawn bool
	skips []model.Skip
}

// NewRenderer creates a renderer that draws with gofpdf
func NewRenderer(opts Options) *Renderer {
	opts = opts.withDefaults()
	return newRenderer(newPDFCanvas(opts.PageSize), opts)
}

func newRenderer(c canvas, opts Options) *Renderer {
	r := &Renderer{c: c, opts: opts.withDefaults()}
	r.newPage()
	return r
}

func (r *Renderer) top() float64 { return r.opts.PageSize.Height - r.opts.Margin }

func (r *Renderer) left() float64 { return r.opts.Margin }

func (r *Renderer) right() float64 { return r.opts.PageSize.Width - r.opts.Margin }

func (r *Renderer) contentWidth() float64 { return r.right() - r.left() }

func (r *Renderer) newPage() {
	r.c.AddPage()
	r.page++
	r.y = r.top()
}

// checkPage starts a new page when the cursor is below needed
func (r *Renderer) checkPage(needed float64) {
	if r.y < needed {
		r.newPage()
	}
}

// Pages returns the number of pages started so far
func (r *Renderer) Pages() int { return r.page }

// Skips returns the elements left out so far
func (r *Renderer) Skips() []model.Skip { return r.skips }

// Render draws the nodes in order
func (r *Renderer) Render(nodes []model.FlowBodyNode) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *model.Paragraph:
			r.Paragraph(n)
		case *model.Table:
			r.Table(n)
		case *model.ImageRef:
			r.Image(n)
		}
	}
}

// Drawn reports whether any text, cell border or image has been drawn
func (r *Renderer) Drawn() bool { return r.drawn }

// Bytes finishes the document
func (r *Renderer) Bytes() ([]byte, error) {
	data, err := r.c.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return data, nil
}

// Paragraph draws the paragraph's pictures followed by its text. Heading
// and Title styles set the size and weight; other paragraphs use the body
// size with the weight, slant and colour of their runs.
func (r *Renderer) Paragraph(p *model.Paragraph) {
	for i := range p.Images {
		r.Image(&p.Images[i])
	}

	text := p.Text()
	if strings.TrimSpace(text) == "" {
		r.y -= emptyAdvance
		return
	}

	if ps, ok := classify.ParagraphStyle(p.Style); ok {
		r.drawText(text, textStyle{size: ps.Size, bold: ps.Bold, align: p.Alignment})
		r.y -= ps.After
		return
	}

	style := runStyle(p.Runs)
	style.size = classify.BodySize
	style.align = p.Alignment
	if p.IsList {
		text = listBullet + text
		style.indent = listIndent
	}
	r.drawText(text, style)
}

// runStyle collapses run formatting to one style for the paragraph. With
// several runs, bold and italic are set when any run has them and the
// colour is that of the first coloured run.
func runStyle(runs []model.Run) textStyle {
	if len(runs) == 1 {
		run := runs[0]
		return textStyle{bold: run.Bold, italic: run.Italic, color: run.Color, hasColor: run.HasColor}
	}
	var s textStyle
	for _, run := range runs {
		s.bold = s.bold || run.Bold
		s.italic = s.italic || run.Italic
		if run.HasColor && !s.hasColor {
			s.color, s.hasColor = run.Color, true
		}
	}
	return s
}

// drawText word-wraps text to the content width and draws it line by line
func (r *Renderer) drawText(text string, s textStyle) {
	r.c.SetFont(s.fontStyle(), s.size)
	if s.hasColor {
		r.c.SetTextColor(s.color)
	}

	left := r.left() + s.indent
	width := r.contentWidth() - s.indent

	line := ""
	for _, word := range strings.Fields(text) {
		candidate := strings.TrimSpace(line + " " + word)
		if r.c.StringWidth(candidate) < width {
			line = candidate
			continue
		}
		if line != "" {
			r.checkPage(pageBreakSpace)
			r.drawLine(line, s.align, left, width)
			r.y -= lineHeight
			r.checkPage(pageBreakSpace)
		}
		line = word
	}
	if line != "" {
		r.checkPage(pageBreakSpace)
		r.drawLine(line, s.align, left, width)
		r.y -= lineHeight
	}
	r.checkPage(pageBreakSpace)

	if s.hasColor {
		r.c.SetTextColor(model.RGB{})
	}
}

func (r *Renderer) drawLine(line string, align model.Alignment, left, width float64) {
	x := left
	switch align {
	case model.AlignCenter:
		x = left + (width-r.c.StringWidth(line))/2
	case model.AlignRight:
		x = r.right() - r.c.StringWidth(line)
	}
	r.c.Text(x, r.y, line)
	r.drawn = true
}

// Table draws a bordered grid with equal column widths. Every row is drawn
// whole on one page.
func (r *Renderer) Table(t *model.Table) {
	cols := t.ColCount()
	if len(t.Rows) == 0 || cols == 0 {
		return
	}

	r.checkPage(tableStartSpace)
	colWidth := r.contentWidth() / float64(cols)
	maxChars := int(colWidth / cellCharWidth)

	for _, row := range t.Rows {
		r.checkPage(rowSpace)
		r.c.SetFont("", tableFontSize)
		x := r.left()
		for _, cell := range row {
			r.c.Rect(x, r.y-rowHeight+4, colWidth, rowHeight)
			r.c.Text(x+3, r.y-2, truncate(cellText(cell), maxChars))
			x += colWidth
		}
		r.drawn = true
		r.y -= rowHeight
	}
	r.y -= tableAfter
}

// cellText puts a cell on one line
func cellText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate keeps the first n characters of s
func truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Image draws a picture scaled down to fit the image width limit. Pictures
// that cannot be decoded are skipped.
func (r *Renderer) Image(img *model.ImageRef) {
	decoded, err := decodeImage(img.Data)
	if err != nil {
		r.skip("image", "image could not be decoded", err)
		return
	}

	maxWidth := math.Min(r.contentWidth(), r.opts.MaxImageWidth)
	scale := math.Min(maxWidth/float64(decoded.width), 1)
	w := float64(decoded.width) * scale
	h := float64(decoded.height) * scale

	r.checkPage(h + imageSpace)

	x := r.left()
	switch img.Alignment {
	case model.AlignCenter:
		x = r.left() + (r.contentWidth()-w)/2
	case model.AlignRight:
		x = r.right() - w
	}

	if err := r.c.Image(decoded.png, x, r.y-h, w, h); err != nil {
		r.skip("image", "image could not be drawn", err)
		return
	}
	r.drawn = true
	r.y -= h + imageAfter
}

func (r *Renderer) skip(element, reason string, err error) {
	r.skips = append(r.skips, model.Skip{Page: r.page, Element: element, Reason: reason, Err: err})
}

// Fallback draws every paragraph as plain body text, bold if any run is
// bold, and then every table. It recovers documents whose body walk drew
// nothing.
func (r *Renderer) Fallback(paras []*model.Paragraph, tables []*model.Table) {
	for _, p := range paras {
		text := p.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		r.drawText(text, textStyle{size: classify.BodySize, bold: anyBold(p.Runs), align: p.Alignment})
	}
	for _, t := range tables {
		r.Table(t)
	}
}

func anyBold(runs []model.Run) bool {
	for _, run := range runs {
		if run.Bold {
			return true
		}
	}
	return false
}
