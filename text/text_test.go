package text

import (
	"math"
	"testing"

	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func standardFont(base string) core.Dict {
	return core.Dict{
		"Type":     core.Name("Font"),
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name(base),
	}
}

func extractWith(t *testing.T, resources core.Dict, content string) []TextFragment {
	t.Helper()
	ex := NewExtractor()
	if err := ex.RegisterFontsFromResources(resources, nil); err != nil {
		t.Fatalf("RegisterFontsFromResources: %v", err)
	}
	frags, err := ex.ExtractFromBytes([]byte(content))
	if err != nil {
		t.Fatalf("ExtractFromBytes: %v", err)
	}
	return frags
}

var helvetica = core.Dict{"Font": core.Dict{"F1": standardFont("Helvetica")}}

// ============================================================================
// Direction
// ============================================================================

func TestDetectDirection(t *testing.T) {
	tests := []struct {
		text string
		want Direction
	}{
		{"Hello", LTR},
		{"שלום", RTL},
		{"مرحبا hi", RTL},
		{"123 - 456", Neutral},
		{"", Neutral},
		{"ab של", LTR},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := DetectDirection(tt.text); got != tt.want {
				t.Errorf("DetectDirection(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Extraction
// ============================================================================

func TestExtractPositionsAndWidths(t *testing.T) {
	frags := extractWith(t, helvetica, "BT /F1 10 Tf 100 700 Td (Hello) Tj ET")
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	f := frags[0]
	if f.Text != "Hello" || f.FontName != "Helvetica" {
		t.Errorf("fragment = %q in %q", f.Text, f.FontName)
	}
	if !approx(f.X, 100) || !approx(f.Y, 700) {
		t.Errorf("origin = (%v, %v), want (100, 700)", f.X, f.Y)
	}
	// H e l l o in Helvetica: 722 + 556 + 222 + 222 + 556
	if !approx(f.Width, 22.78) {
		t.Errorf("Width = %v, want 22.78", f.Width)
	}
	if !approx(f.FontSize, 10) {
		t.Errorf("FontSize = %v, want 10", f.FontSize)
	}
}

func TestExtractKerningMovesText(t *testing.T) {
	frags := extractWith(t, helvetica, "BT /F1 10 Tf 100 700 Td [(Hel) 500 (lo)] TJ ET")
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	// "Hel" advances 15, then 500 thousandths of 10pt move back by 5
	if !approx(frags[1].X, 110) {
		t.Errorf("second fragment X = %v, want 110", frags[1].X)
	}
}

func TestExtractSuccessiveShowsAdvance(t *testing.T) {
	frags := extractWith(t, helvetica, "BT /F1 10 Tf 100 700 Td (ll) Tj (ll) Tj ET")
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	if !approx(frags[1].X, 104.44) {
		t.Errorf("second fragment X = %v, want 104.44", frags[1].X)
	}
}

func TestExtractUsesWidthsArray(t *testing.T) {
	res := core.Dict{"Font": core.Dict{"F1": core.Dict{
		"Subtype":   core.Name("TrueType"),
		"BaseFont":  core.Name("ABCDEF+Arial-BoldMT"),
		"FirstChar": core.Int(65),
		"Widths":    core.Array{core.Int(500), core.Int(600)},
	}}}
	frags := extractWith(t, res, "BT /F1 10 Tf 0 0 Td (AB) Tj ET")
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	if !approx(frags[0].Width, 11) {
		t.Errorf("Width = %v, want 11", frags[0].Width)
	}
	if frags[0].FontName != "Arial-BoldMT" {
		t.Errorf("FontName = %q, want subset tag removed", frags[0].FontName)
	}
}

func TestExtractScaledTextMatrix(t *testing.T) {
	frags := extractWith(t, helvetica, "BT /F1 1 Tf 12 0 0 12 72 720 Tm (Hi) Tj ET")
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	if !approx(frags[0].FontSize, 12) {
		t.Errorf("FontSize = %v, want 12", frags[0].FontSize)
	}
	// H i: 722 + 222 at 12pt
	if !approx(frags[0].Width, 11.328) {
		t.Errorf("Width = %v, want 11.328", frags[0].Width)
	}
}

func TestExtractColorAndLineOperators(t *testing.T) {
	content := "BT /F1 10 Tf 14 TL 1 0 0 rg 50 500 Td (a) Tj (b) ' 0 0 1 rg 2 1 (c) \" ET"
	frags := extractWith(t, helvetica, content)
	if len(frags) != 3 {
		t.Fatalf("got %d fragments, want 3", len(frags))
	}
	want := []struct {
		text  string
		y     float64
		color model.RGB
	}{
		{"a", 500, model.RGB{R: 255}},
		{"b", 486, model.RGB{R: 255}},
		{"c", 472, model.RGB{B: 255}},
	}
	for i, w := range want {
		f := frags[i]
		if f.Text != w.text || !approx(f.Y, w.y) || f.Color != w.color {
			t.Errorf("fragment %d = %q y=%v %v, want %q y=%v %v", i, f.Text, f.Y, f.Color, w.text, w.y, w.color)
		}
	}
}

func TestExtractUnknownFontFallsBack(t *testing.T) {
	frags := extractWith(t, core.Dict{}, "BT /F9 10 Tf 0 0 Td (x) Tj ET")
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	if frags[0].FontName != "Helvetica" || frags[0].Width <= 0 {
		t.Errorf("fragment = %+v, want Helvetica with a width", frags[0])
	}
}

func TestExtractFromDamagedStream(t *testing.T) {
	ex := NewExtractor()
	ex.RegisterFontsFromResources(helvetica, nil)
	frags, err := ex.ExtractFromBytes([]byte("BT /F1 10 Tf (ok) Tj ET ] Q"))
	if err == nil {
		t.Error("expected a parse error")
	}
	if len(frags) != 1 || frags[0].Text != "ok" {
		t.Errorf("fragments before the error were lost: %+v", frags)
	}
}

// ============================================================================
// Lines and spans
// ============================================================================

func frag(text string, x, y, w float64) TextFragment {
	return TextFragment{Text: text, X: x, Y: y, Width: w, Height: 10, FontName: "Helvetica", FontSize: 10, Direction: DetectDirection(text)}
}

func TestBuildLinesSpacesAndSpans(t *testing.T) {
	bold := frag("Bold", 161, 700, 20)
	bold.FontName = "Helvetica-Bold"
	lines := BuildLines([]TextFragment{
		frag("Hello", 100, 700, 25),
		frag("World", 128, 700, 25), // 3pt gap is a word break
		frag("s", 153.5, 700, 5),    // 0.5pt gap is kerning
		bold,
	})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	l := lines[0]
	if got := l.Text(); got != "Hello Worlds Bold" {
		t.Errorf("Text() = %q", got)
	}
	if len(l.Spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(l.Spans))
	}
	if l.Spans[1].FontName != "Helvetica-Bold" {
		t.Errorf("second span font = %q", l.Spans[1].FontName)
	}
	if !approx(l.BBox.X, 100) || !approx(l.BBox.Right(), 181) {
		t.Errorf("line spans x %v..%v, want 100..181", l.BBox.X, l.BBox.Right())
	}
	if !approx(l.BBox.Y, 698) || !approx(l.BBox.Top(), 708) {
		t.Errorf("line spans y %v..%v, want 698..708", l.BBox.Y, l.BBox.Top())
	}
}

func TestBuildLinesExplicitSpaces(t *testing.T) {
	lines := BuildLines([]TextFragment{frag("Hello ", 100, 700, 28), frag("World", 133, 700, 25)})
	if len(lines) != 1 || lines[0].Text() != "Hello World" {
		t.Errorf("lines = %+v", lines)
	}
}

func TestBuildLinesOrdersByBaseline(t *testing.T) {
	// drawn column by column: both cells of column A, then column B
	lines := BuildLines([]TextFragment{
		frag("A1", 100, 700, 12),
		frag("A2", 100, 680, 12),
		frag("B1", 115, 700.5, 12),
		frag("B2", 115, 680, 12),
	})
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text() != "A1 B1" || lines[1].Text() != "A2 B2" {
		t.Errorf("lines = %q, %q", lines[0].Text(), lines[1].Text())
	}
}

func TestBuildLinesSplitsWideGaps(t *testing.T) {
	lines := BuildLines([]TextFragment{frag("Report", 50, 700, 35), frag("2024", 500, 700, 22)})
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text() != "Report" || lines[1].Text() != "2024" {
		t.Errorf("lines = %q, %q", lines[0].Text(), lines[1].Text())
	}
}

func TestBuildLinesRightToLeft(t *testing.T) {
	first := "שלום"
	second := "עולם"
	lines := BuildLines([]TextFragment{frag(second, 100, 700, 95), frag(first, 200, 700, 40)})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Direction != RTL {
		t.Errorf("Direction = %v, want RTL", lines[0].Direction)
	}
	if got, want := lines[0].Text(), first+" "+second; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestBuildLinesSkipsEmpty(t *testing.T) {
	if lines := BuildLines([]TextFragment{{Text: "", FontSize: 10}, {Text: "x", FontSize: 0}}); lines != nil {
		t.Errorf("lines = %+v, want none", lines)
	}
}

// ============================================================================
// Blocks
// ============================================================================

func TestBuildBlocks(t *testing.T) {
	lines := BuildLines([]TextFragment{
		frag("first line", 100, 700, 50),
		frag("second line", 100, 686, 55),
		frag("new paragraph", 100, 650, 60),
		frag("far away", 400, 636, 40),
	})
	blocks := BuildBlocks(lines)
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(blocks))
	}
	if len(blocks[0].Lines) != 2 {
		t.Errorf("first block has %d lines, want 2", len(blocks[0].Lines))
	}
	if !approx(blocks[0].BBox.Y, 684) || !approx(blocks[0].BBox.Top(), 708) {
		t.Errorf("first block spans y %v..%v, want 684..708", blocks[0].BBox.Y, blocks[0].BBox.Top())
	}
}
