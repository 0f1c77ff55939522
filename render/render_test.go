package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tsawler/reflow/docx"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/reader"
)

// drawOp is one recorded canvas call
type drawOp struct {
	kind       string // "text", "rect" or "image"
	page       int
	x, y, w, h float64
	text       string
	style      string
	size       float64
	color      model.RGB
}

// recordCanvas records drawing calls. Every character is half the font
// size wide.
type recordCanvas struct {
	page     int
	style    string
	size     float64
	color    model.RGB
	ops      []drawOp
	imageErr error
}

func (c *recordCanvas) AddPage() { c.page++ }

func (c *recordCanvas) SetFont(style string, size float64) { c.style, c.size = style, size }

func (c *recordCanvas) SetTextColor(rgb model.RGB) { c.color = rgb }

func (c *recordCanvas) StringWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * c.size * 0.5
}

func (c *recordCanvas) Text(x, y float64, s string) {
	c.ops = append(c.ops, drawOp{kind: "text", page: c.page, x: x, y: y, text: s, style: c.style, size: c.size, color: c.color})
}

func (c *recordCanvas) Rect(x, y, w, h float64) {
	c.ops = append(c.ops, drawOp{kind: "rect", page: c.page, x: x, y: y, w: w, h: h})
}

func (c *recordCanvas) Image(data []byte, x, y, w, h float64) error {
	if c.imageErr != nil {
		return c.imageErr
	}
	c.ops = append(c.ops, drawOp{kind: "image", page: c.page, x: x, y: y, w: w, h: h})
	return nil
}

func (c *recordCanvas) Output() ([]byte, error) { return nil, nil }

func (c *recordCanvas) texts() []drawOp {
	var out []drawOp
	for _, op := range c.ops {
		if op.kind == "text" {
			out = append(out, op)
		}
	}
	return out
}

func newTestRenderer() (*Renderer, *recordCanvas) {
	c := &recordCanvas{}
	return newRenderer(c, Options{}), c
}

func para(text string) *model.Paragraph {
	return &model.Paragraph{Runs: []model.Run{{Text: text}}}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// ============================================================================
// Paragraph Tests
// ============================================================================

func TestEmptyParagraphAdvance(t *testing.T) {
	r, c := newTestRenderer()
	r.Paragraph(&model.Paragraph{})
	r.Paragraph(para("  \t "))
	if r.y != 742-16 {
		t.Errorf("y = %v, want %v", r.y, 742-16)
	}
	if len(c.ops) != 0 {
		t.Errorf("blank paragraphs drew %d ops", len(c.ops))
	}
}

func TestParagraphWrap(t *testing.T) {
	r, c := newTestRenderer()
	// each word is 10 characters (55pt at 11pt) plus a space
	words := strings.Repeat("abcdefghij ", 20)
	r.Paragraph(para(words))

	lines := c.texts()
	// 8 words make 87 characters = 478.5pt, 9 words 539pt > 512
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, l := range lines {
		if c.StringWidth(l.text) >= 512 {
			t.Errorf("line %d is %vpt wide", i, c.StringWidth(l.text))
		}
		if want := 742 - 16*float64(i); l.y != want {
			t.Errorf("line %d y = %v, want %v", i, l.y, want)
		}
		if l.x != 50 || l.size != 11 || l.style != "" {
			t.Errorf("line %d = %+v", i, l)
		}
	}
	if got := strings.Count(lines[0].text, " ") + 1; got != 8 {
		t.Errorf("first line has %d words, want 8", got)
	}
	if r.y != 742-48 {
		t.Errorf("y = %v, want %v", r.y, 742-48)
	}
}

func TestParagraphLongWord(t *testing.T) {
	r, c := newTestRenderer()
	long := strings.Repeat("x", 120)
	r.Paragraph(para("a " + long + " b"))

	var got []string
	for _, l := range c.texts() {
		got = append(got, l.text)
	}
	want := []string{"a", long, "b"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestParagraphAlignment(t *testing.T) {
	tests := []struct {
		name  string
		align model.Alignment
		list  bool
		wantX float64
	}{
		// "hello" is 27.5pt wide at 11pt
		{"left", model.AlignLeft, false, 50},
		{"center", model.AlignCenter, false, 50 + (512-27.5)/2},
		{"right", model.AlignRight, false, 562 - 27.5},
		// "• hello" is 38.5pt wide in 492pt
		{"list left", model.AlignLeft, true, 70},
		{"list center", model.AlignCenter, true, 70 + (492-38.5)/2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := newTestRenderer()
			p := para("hello")
			p.Alignment = tt.align
			p.IsList = tt.list
			r.Paragraph(p)

			lines := c.texts()
			if len(lines) != 1 {
				t.Fatalf("got %d lines", len(lines))
			}
			if math.Abs(lines[0].x-tt.wantX) > 1e-9 {
				t.Errorf("x = %v, want %v", lines[0].x, tt.wantX)
			}
			if tt.list && !strings.HasPrefix(lines[0].text, "• ") {
				t.Errorf("list item text = %q", lines[0].text)
			}
		})
	}
}

func TestParagraphStyles(t *testing.T) {
	tests := []struct {
		style    string
		wantSize float64
		wantY    float64
	}{
		{"Heading 1", 16, 742 - 16 - 4},
		{"Heading 2", 14, 742 - 16 - 4},
		{"Heading 3", 12, 742 - 16 - 4},
		{"Heading 7", 12, 742 - 16 - 4},
		{"Title", 20, 742 - 16 - 6},
		{"Normal", 11, 742 - 16},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			r, c := newTestRenderer()
			p := &model.Paragraph{
				Style: tt.style,
				Runs:  []model.Run{{Text: "Text", Size: 30, Italic: true, Color: model.RGB{G: 9}, HasColor: true}},
			}
			r.Paragraph(p)

			line := c.texts()[0]
			if line.size != tt.wantSize {
				t.Errorf("size = %v, want %v", line.size, tt.wantSize)
			}
			heading := tt.style != "Normal"
			if heading && line.style != "B" {
				t.Errorf("style = %q, want bold only", line.style)
			}
			if heading && line.color != (model.RGB{}) {
				t.Errorf("heading drawn in %+v, want black", line.color)
			}
			if !heading && (line.style != "I" || line.color != (model.RGB{G: 9})) {
				t.Errorf("body line = %+v", line)
			}
			if r.y != tt.wantY {
				t.Errorf("y = %v, want %v", r.y, tt.wantY)
			}
		})
	}
}

func TestRunStyle(t *testing.T) {
	red := model.RGB{R: 255}
	blue := model.RGB{B: 255}

	tests := []struct {
		name string
		runs []model.Run
		want textStyle
	}{
		{
			name: "single run",
			runs: []model.Run{{Text: "a", Italic: true, Color: red, HasColor: true}},
			want: textStyle{italic: true, color: red, hasColor: true},
		},
		{
			name: "any bold or italic",
			runs: []model.Run{{Text: "a", Bold: true}, {Text: "b"}, {Text: "c", Italic: true}},
			want: textStyle{bold: true, italic: true},
		},
		{
			name: "first coloured run",
			runs: []model.Run{{Text: "a"}, {Text: "b", Color: blue, HasColor: true}, {Text: "c", Color: red, HasColor: true}},
			want: textStyle{color: blue, hasColor: true},
		},
		{
			name: "no runs",
			want: textStyle{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runStyle(tt.runs); got != tt.want {
				t.Errorf("runStyle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestColourReset(t *testing.T) {
	r, c := newTestRenderer()
	r.Paragraph(&model.Paragraph{Runs: []model.Run{{Text: "red", Color: model.RGB{R: 255}, HasColor: true}}})
	r.Paragraph(para("black"))

	lines := c.texts()
	if lines[0].color != (model.RGB{R: 255}) || lines[1].color != (model.RGB{}) {
		t.Errorf("colours = %+v, %+v", lines[0].color, lines[1].color)
	}
}

// ============================================================================
// Pagination Tests
// ============================================================================

func TestTextPageBreak(t *testing.T) {
	r, c := newTestRenderer()
	// lines at 742, 726, ... ; after the line at 54 the cursor is 38 < 50
	for i := 0; i < 45; i++ {
		r.Paragraph(para("line"))
	}

	lines := c.texts()
	perPage := 0
	for _, l := range lines {
		if l.page == 1 {
			perPage++
		}
	}
	// 742 - 16*n >= 50 holds for n <= 43, so 44 lines fit
	if perPage != 44 {
		t.Errorf("%d lines on page 1, want 44", perPage)
	}
	if next := lines[44]; next.page != 2 || next.y != 742 {
		t.Errorf("first line of page 2 = %+v", next)
	}
	if r.Pages() != 2 {
		t.Errorf("Pages() = %d, want 2", r.Pages())
	}
}

func TestBlankParagraphsThenText(t *testing.T) {
	r, c := newTestRenderer()
	// 100 blank paragraphs take the cursor to 742 - 800 = -58
	for i := 0; i < 100; i++ {
		r.Paragraph(&model.Paragraph{})
	}
	r.Paragraph(para("after blanks"))

	lines := c.texts()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	for _, l := range lines {
		if l.y < 50 {
			t.Errorf("%q drawn at y=%v, below the bottom margin", l.text, l.y)
		}
	}
	if lines[0].page != 2 || lines[0].y != 742 {
		t.Errorf("line = %+v, want the top of page 2", lines[0])
	}
}

func TestTablePaginationAtomicity(t *testing.T) {
	r, c := newTestRenderer()
	rows := make([][]string, 50)
	for i := range rows {
		rows[i] = []string{"left", "right"}
	}
	r.Table(&model.Table{Rows: rows})

	// rows start at 742 and need 40pt: 742 - 20*i >= 40 for i <= 35
	const firstOnNext = 36

	var rects []drawOp
	for _, op := range c.ops {
		if op.kind == "rect" {
			rects = append(rects, op)
		}
	}
	if len(rects) != 100 {
		t.Fatalf("got %d cell rectangles, want 100", len(rects))
	}
	for i := 0; i < len(rects); i += 2 {
		row := i / 2
		a, b := rects[i], rects[i+1]
		if a.page != b.page || a.y != b.y {
			t.Errorf("row %d split: %+v %+v", row, a, b)
		}
		wantPage := 1
		if row >= firstOnNext {
			wantPage = 2
		}
		if a.page != wantPage {
			t.Errorf("row %d on page %d, want %d", row, a.page, wantPage)
		}
	}
	if top := rects[2*firstOnNext]; top.y != 742-20+4 {
		t.Errorf("first row on page 2 at y = %v, want the top of the page", top.y)
	}
	if want := 742 - 14*20 - 10.0; r.y != want {
		t.Errorf("y after table = %v, want %v", r.y, want)
	}
}

func TestTableLayout(t *testing.T) {
	r, c := newTestRenderer()
	r.Table(&model.Table{Rows: [][]string{
		{"a", "b"},
		{"a very long cell value that will not fit in its column at all, no way, not even close, really long", "two\nlines"},
		{"ragged"},
	}})

	var rects, texts []drawOp
	for _, op := range c.ops {
		switch op.kind {
		case "rect":
			rects = append(rects, op)
		case "text":
			texts = append(texts, op)
		}
	}
	if len(rects) != 5 || len(texts) != 5 {
		t.Fatalf("got %d rects and %d texts, want 5 each", len(rects), len(texts))
	}

	if rects[1].x != 50+256 || rects[1].w != 256 || rects[1].h != 20 {
		t.Errorf("second cell = %+v", rects[1])
	}
	if texts[0].x != 53 || texts[0].y != 740 || texts[0].size != 9 {
		t.Errorf("first cell text = %+v", texts[0])
	}
	// 256 / 5 = 51 characters
	if n := utf8.RuneCountInString(texts[2].text); n != 51 {
		t.Errorf("truncated cell has %d characters, want 51", n)
	}
	if texts[3].text != "two lines" {
		t.Errorf("multi-line cell = %q", texts[3].text)
	}
}

func TestTableStartsNewPage(t *testing.T) {
	r, c := newTestRenderer()
	r.y = 99
	r.Table(&model.Table{Rows: [][]string{{"x"}}})
	if c.ops[0].page != 2 {
		t.Errorf("table began on page %d, want 2", c.ops[0].page)
	}
}

func TestEmptyTable(t *testing.T) {
	r, c := newTestRenderer()
	r.Table(&model.Table{})
	r.Table(&model.Table{Rows: [][]string{{}}})
	if len(c.ops) != 0 || r.y != 742 {
		t.Errorf("empty tables drew %d ops, y = %v", len(c.ops), r.y)
	}
}

// ============================================================================
// Image Tests
// ============================================================================

func TestImageScaling(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		align model.Alignment
		want  drawOp
	}{
		// wider than 360pt: halved
		{"wide centered", 720, 100, model.AlignCenter, drawOp{x: 126, y: 692, w: 360, h: 50}},
		// small images are not enlarged
		{"small right", 10, 20, model.AlignRight, drawOp{x: 552, y: 722, w: 10, h: 20}},
		{"small left", 10, 20, model.AlignLeft, drawOp{x: 50, y: 722, w: 10, h: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, c := newTestRenderer()
			r.Image(&model.ImageRef{Data: testPNG(t, tt.w, tt.h), Alignment: tt.align})
			if len(c.ops) != 1 {
				t.Fatalf("got %d ops", len(c.ops))
			}
			got := c.ops[0]
			if got.x != tt.want.x || got.y != tt.want.y || got.w != tt.want.w || got.h != tt.want.h {
				t.Errorf("image at %+v, want %+v", got, tt.want)
			}
			if want := 742 - tt.want.h - 10; r.y != want {
				t.Errorf("y = %v, want %v", r.y, want)
			}
		})
	}
}

func TestImageMaxWidthOption(t *testing.T) {
	c := &recordCanvas{}
	r := newRenderer(c, Options{MaxImageWidth: 100})
	r.Image(&model.ImageRef{Data: testPNG(t, 400, 40)})
	if got := c.ops[0]; got.w != 100 || got.h != 10 {
		t.Errorf("image size = %vx%v, want 100x10", got.w, got.h)
	}
}

func TestImageFailures(t *testing.T) {
	r, c := newTestRenderer()
	r.Image(&model.ImageRef{Data: []byte("not an image")})

	c.imageErr = errors.New("writer refused")
	r.Image(&model.ImageRef{Data: testPNG(t, 4, 4)})

	if len(c.ops) != 0 {
		t.Errorf("failed images drew %d ops", len(c.ops))
	}
	skips := r.Skips()
	if len(skips) != 2 || skips[0].Element != "image" || skips[1].Page != 1 {
		t.Errorf("skips = %v", skips)
	}
	if r.y != 742 {
		t.Errorf("y = %v, failed images should not move the cursor", r.y)
	}
}

func TestParagraphImagesFirst(t *testing.T) {
	r, c := newTestRenderer()
	r.Paragraph(&model.Paragraph{
		Alignment: model.AlignCenter,
		Images:    []model.ImageRef{{Data: testPNG(t, 10, 10), Alignment: model.AlignCenter}},
		Runs:      []model.Run{{Text: "caption"}},
	})
	if len(c.ops) != 2 || c.ops[0].kind != "image" || c.ops[1].kind != "text" {
		t.Fatalf("ops = %+v", c.ops)
	}
	if c.ops[1].y != 742-20 {
		t.Errorf("caption y = %v, want below the image", c.ops[1].y)
	}
}

// ============================================================================
// Document Tests
// ============================================================================

func TestRenderWalksInOrder(t *testing.T) {
	r, c := newTestRenderer()
	r.Render([]model.FlowBodyNode{
		para("first"),
		&model.Table{Rows: [][]string{{"cell"}}},
		para("last"),
	})

	var got []string
	for _, l := range c.texts() {
		got = append(got, l.text)
	}
	if strings.Join(got, ",") != "first,cell,last" {
		t.Errorf("drawn = %q", got)
	}
}

func TestFallbackPass(t *testing.T) {
	r, c := newTestRenderer()
	paras := []*model.Paragraph{
		{Style: "Heading 1", Alignment: model.AlignRight, Runs: []model.Run{{Text: "Head", Bold: true}}},
		{IsList: true, Runs: []model.Run{{Text: "item", Italic: true}}},
		para(" "),
	}
	r.Fallback(paras, []*model.Table{{Rows: [][]string{{"t"}}}})

	texts := c.texts()
	if len(texts) != 3 {
		t.Fatalf("got %d texts, want 3", len(texts))
	}
	// paragraphs come first as plain body text, then tables
	if texts[0].text != "Head" || texts[0].size != 11 || texts[0].style != "B" || texts[0].x != 562-22 {
		t.Errorf("heading = %+v", texts[0])
	}
	if texts[1].text != "item" || texts[1].style != "" || texts[1].x != 50 {
		t.Errorf("list item = %+v", texts[1])
	}
	if texts[2].text != "t" {
		t.Errorf("table cell = %+v", texts[2])
	}
}

func TestRenderNothingDrawable(t *testing.T) {
	r, c := newTestRenderer()
	r.Render([]model.FlowBodyNode{&model.Paragraph{}, &model.Table{}})
	if len(c.ops) != 0 || r.Pages() != 1 || r.Drawn() {
		t.Errorf("ops = %d, pages = %d, drawn = %v", len(c.ops), r.Pages(), r.Drawn())
	}
}

func TestWinAnsi(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"café", "caf\xe9"},
		{"• item", "\x95 item"},
		{"€5", "\x805"},
		{"日本", "??"},
	}
	for _, tt := range tests {
		if got := winAnsi(tt.in); got != tt.want {
			t.Errorf("winAnsi(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// PDF Output Tests
// ============================================================================

func TestRenderPDF(t *testing.T) {
	nodes := []model.FlowBodyNode{
		&model.Paragraph{Style: "Heading 1", Runs: []model.Run{{Text: "Report"}}},
		para("Body text"),
		&model.Table{Rows: [][]string{{"a", "b"}}},
		&model.ImageRef{Data: testPNG(t, 20, 10)},
	}
	res, err := Render(nodes, Options{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", res.Data[:8])
	}
	if res.Pages != 1 || len(res.Skips) != 0 {
		t.Errorf("Pages = %d, Skips = %v", res.Pages, res.Skips)
	}

	pr, err := reader.NewReader(res.Data)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	pages, err := pr.Pages()
	if err != nil || len(pages) != 1 {
		t.Fatalf("Pages() = %d, %v", len(pages), err)
	}
	ops, err := pr.PageOperations(pages[0])
	if err != nil {
		t.Fatalf("PageOperations() error = %v", err)
	}
	frags, err := pr.ExtractTextFragments(pages[0], ops)
	if err != nil {
		t.Fatalf("ExtractTextFragments() error = %v", err)
	}

	found := map[string]string{}
	for _, f := range frags {
		found[f.Text] = f.FontName
	}
	if found["Report"] != "Helvetica-Bold" {
		t.Errorf("heading font = %q, want Helvetica-Bold", found["Report"])
	}
	if found["Body text"] != "Helvetica" {
		t.Errorf("body font = %q, want Helvetica", found["Body text"])
	}
	if _, ok := found["b"]; !ok {
		t.Error("table cell text missing")
	}
	if placements := reader.ExtractGraphics(ops).Placements; len(placements) != 1 {
		t.Errorf("got %d image placements, want 1", len(placements))
	}
}

func TestConvert(t *testing.T) {
	w := docx.NewWriter()
	w.AddParagraph(&model.Paragraph{Style: "Title", Runs: []model.Run{{Text: "Hello"}}})
	w.AddPageBreak()
	w.AddParagraph(para("world"))
	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	res, err := Convert(data, Options{}, nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF-")) || res.Pages != 1 {
		t.Errorf("Pages = %d", res.Pages)
	}

	if _, err := Convert([]byte("%PDF-1.4 not a docx"), Options{}, nil); err == nil {
		t.Error("Convert() should reject non-DOCX input")
	}
}

// textBoxDOCX builds a package whose only text sits in a text box anchored
// to an otherwise empty paragraph
func textBoxDOCX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip.Create: %v", err)
	}
	w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"
  xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"
  xmlns:v="urn:schemas-microsoft-com:vml">
<w:body>
<w:p><w:r><mc:AlternateContent>
<mc:Choice Requires="wps"><w:drawing><wps:wsp><wps:txbx><w:txbxContent>
<w:p><w:r><w:t>Boxed words</w:t></w:r></w:p>
</w:txbxContent></wps:txbx></wps:wsp></w:drawing></mc:Choice>
<mc:Fallback><w:pict><v:shape><v:textbox><w:txbxContent>
<w:p><w:r><w:t>Boxed words</w:t></w:r></w:p>
</w:txbxContent></v:textbox></v:shape></w:pict></mc:Fallback>
</mc:AlternateContent></w:r></w:p>
<w:sectPr/>
</w:body>
</w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

func TestConvertFallback(t *testing.T) {
	res, err := Convert(textBoxDOCX(t), Options{}, nil)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	pr, err := reader.NewReader(res.Data)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	pages, err := pr.Pages()
	if err != nil || len(pages) != 1 {
		t.Fatalf("Pages() = %d, %v", len(pages), err)
	}
	ops, err := pr.PageOperations(pages[0])
	if err != nil {
		t.Fatalf("PageOperations() error = %v", err)
	}
	frags, err := pr.ExtractTextFragments(pages[0], ops)
	if err != nil {
		t.Fatalf("ExtractTextFragments() error = %v", err)
	}

	var drawn []string
	for _, f := range frags {
		drawn = append(drawn, f.Text)
	}
	if strings.Join(drawn, "|") != "Boxed words" {
		t.Errorf("drawn = %q, want the text box content once", drawn)
	}
}
