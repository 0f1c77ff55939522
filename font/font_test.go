package font

import (
	"math"
	"testing"

	"github.com/tsawler/reflow/core"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

type mapResolver map[int]core.Object

func (m mapResolver) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return m[ref.Number], nil
}

const toUnicodeCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0003> <0020>
<0011> <00660069>
endbfchar
1 beginbfrange
<0024> <0026> <0041>
endbfrange
1 beginbfrange
<0030> <0031> [<00E9> <2022>]
endbfrange
endcmap
end end`

// ============================================================================
// Encoding Tests
// ============================================================================

func TestGetEncoding(t *testing.T) {
	tests := []struct {
		enc  string
		code byte
		want rune
	}{
		{"WinAnsiEncoding", 'A', 'A'},
		{"WinAnsiEncoding", 0x95, '•'},
		{"WinAnsiEncoding", 0x80, '€'},
		{"WinAnsiEncoding", 0xE9, 'é'},
		{"MacRomanEncoding", 0x8E, 'é'},
		{"StandardEncoding", 0x27, '’'},
		{"StandardEncoding", 0xB7, '•'},
		{"PDFDocEncoding", 0x80, '•'},
		{"Bogus", 'z', 'z'},
	}
	for _, tt := range tests {
		if got := GetEncoding(tt.enc).Decode(tt.code); got != tt.want {
			t.Errorf("%s[%#x] = %q, want %q", tt.enc, tt.code, got, tt.want)
		}
	}
}

func TestGlyphToRune(t *testing.T) {
	tests := map[string]rune{
		"A":          'A',
		"space":      ' ',
		"zero":       '0',
		"at":         '@',
		"bullet":     '•',
		"eacute":     'é',
		"Udieresis":  'Ü',
		"ccedilla":   'ç',
		"uni20AC":    '€',
		"u1F600":     '\U0001F600',
		"a.sc":       'a',
		"notaglyph":  0,
		"quoteright": '’',
	}
	for name, want := range tests {
		if got := GlyphToRune(name); got != want {
			t.Errorf("GlyphToRune(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestNormalizeUnicode(t *testing.T) {
	if got := NormalizeUnicode("éﬁne"); got != "éfine" {
		t.Errorf("NormalizeUnicode = %q", got)
	}
	if got := DecodeUTF16BE([]byte{0x00, 0x48, 0xD8, 0x3D, 0xDE, 0x00, 0x01}); got != "H\U0001F600" {
		t.Errorf("DecodeUTF16BE = %q", got)
	}
}

// ============================================================================
// CMap Tests
// ============================================================================

func TestParseCMap(t *testing.T) {
	cm, err := ParseCMap([]byte(toUnicodeCMap))
	if err != nil {
		t.Fatalf("ParseCMap failed: %v", err)
	}
	tests := []struct {
		code uint32
		want string
		ok   bool
	}{
		{0x03, " ", true},
		{0x11, "fi", true},
		{0x24, "A", true},
		{0x26, "C", true},
		{0x30, "é", true},
		{0x31, "•", true},
		{0x99, "", false},
	}
	for _, tt := range tests {
		got, ok := cm.Lookup(tt.code)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%#x) = %q, %v; want %q, %v", tt.code, got, ok, tt.want, tt.ok)
		}
	}

	code, n := cm.NextCode([]byte{0x00, 0x24, 0x00}, 1)
	if code != 0x24 || n != 2 {
		t.Errorf("NextCode = %#x/%d, want 0x24/2", code, n)
	}
}

func TestCMapCIDRanges(t *testing.T) {
	cm, err := ParseCMap([]byte(`1 begincodespacerange <00> <80> <8140> <FFFF> endcodespacerange
1 begincidrange <8140> <8142> 633 endcidrange
1 begincidchar <41> 34 endcidchar`))
	if err != nil {
		t.Fatal(err)
	}
	code, n := cm.NextCode([]byte{0x81, 0x41}, 2)
	if code != 0x8141 || n != 2 {
		t.Errorf("two-byte code = %#x/%d", code, n)
	}
	code, n = cm.NextCode([]byte{0x41, 0x81}, 2)
	if code != 0x41 || n != 1 {
		t.Errorf("one-byte code = %#x/%d", code, n)
	}
	if cm.CID(0x8141) != 634 || cm.CID(0x41) != 34 || cm.CID(0x7) != 7 {
		t.Error("CID mapping wrong")
	}
	var nilMap *CMap
	if nilMap.CID(5) != 5 {
		t.Error("nil CMap should be identity")
	}
}

// ============================================================================
// Font Tests
// ============================================================================

func TestStripSubsetTag(t *testing.T) {
	tests := map[string]string{
		"ABCDEF+Arial-BoldMT": "Arial-BoldMT",
		"Helvetica":           "Helvetica",
		"abcdef+Foo":          "abcdef+Foo",
		"ABC+Foo":             "ABC+Foo",
	}
	for in, want := range tests {
		if got := StripSubsetTag(in); got != want {
			t.Errorf("StripSubsetTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStandardFontWidths(t *testing.T) {
	f := NewStandardFont("Helvetica")
	glyphs := f.Decode([]byte("Hi "))
	if len(glyphs) != 3 {
		t.Fatalf("got %d glyphs", len(glyphs))
	}
	if math.Abs(glyphs[0].Width-0.722) > 1e-9 || math.Abs(glyphs[1].Width-0.222) > 1e-9 {
		t.Errorf("widths = %v, %v", glyphs[0].Width, glyphs[1].Width)
	}
	if !glyphs[2].Space || glyphs[0].Space {
		t.Error("only code 32 should be a space")
	}

	bold := NewStandardFont("Helvetica-Bold")
	if g := bold.Decode([]byte("b")); !approx(g[0].Width, 0.611) {
		t.Errorf("bold b width = %v", g[0].Width)
	}
	if g := NewStandardFont("Courier").Decode([]byte("i")); !approx(g[0].Width, 0.6) {
		t.Errorf("courier width = %v", g[0].Width)
	}
}

func TestSimpleFontWidthsAndDifferences(t *testing.T) {
	dict := core.Dict{
		"Subtype":   core.Name("TrueType"),
		"BaseFont":  core.Name("QWERTY+Calibri-Bold"),
		"FirstChar": core.Int(65),
		"Widths":    core.IndirectRef{Number: 5},
		"Encoding": core.Dict{
			"BaseEncoding": core.Name("WinAnsiEncoding"),
			"Differences":  core.Array{core.Int(66), core.Name("bullet"), core.Name("eacute")},
		},
	}
	r := mapResolver{5: core.Array{core.Int(600), core.Int(700), core.Real(450.5)}}
	f := Load(dict, r)
	if f.Name != "Calibri-Bold" {
		t.Errorf("Name = %q", f.Name)
	}
	glyphs := f.Decode([]byte("ABCD"))
	want := []string{"A", "•", "é", "D"}
	for i, g := range glyphs {
		if g.Text != want[i] {
			t.Errorf("glyph %d text = %q, want %q", i, g.Text, want[i])
		}
	}
	if !approx(glyphs[0].Width, 0.6) || !approx(glyphs[2].Width, 0.4505) {
		t.Errorf("widths = %v, %v", glyphs[0].Width, glyphs[2].Width)
	}
	// D is outside /Widths and there is no MissingWidth
	if !approx(glyphs[3].Width, 0.5) {
		t.Errorf("fallback width = %v", glyphs[3].Width)
	}
}

func TestCompositeFont(t *testing.T) {
	dict := core.Dict{
		"Subtype":   core.Name("Type0"),
		"BaseFont":  core.Name("ABCDEF+NotoSans"),
		"Encoding":  core.Name("Identity-H"),
		"ToUnicode": core.IndirectRef{Number: 2},
		"DescendantFonts": core.Array{core.Dict{
			"Subtype": core.Name("CIDFontType2"),
			"DW":      core.Int(1000),
			"W":       core.Array{core.Int(3), core.Array{core.Int(250)}, core.Int(36), core.Int(38), core.Int(640)},
		}},
	}
	r := mapResolver{2: &core.Stream{Dict: core.Dict{}, Data: []byte(toUnicodeCMap)}}
	f := Load(dict, r)
	if !f.IsComposite() || f.IsVertical() {
		t.Fatal("expected horizontal composite font")
	}

	glyphs := f.Decode([]byte{0x00, 0x24, 0x00, 0x03, 0x00, 0x11, 0x00, 0x50})
	if len(glyphs) != 4 {
		t.Fatalf("got %d glyphs", len(glyphs))
	}
	if glyphs[0].Text != "A" || !approx(glyphs[0].Width, 0.64) {
		t.Errorf("glyph 0 = %+v", glyphs[0])
	}
	if glyphs[1].Text != " " || !approx(glyphs[1].Width, 0.25) || glyphs[1].Space {
		t.Errorf("glyph 1 = %+v", glyphs[1])
	}
	if !approx(glyphs[3].Width, 1.0) {
		t.Errorf("default width = %v", glyphs[3].Width)
	}
	if got := f.DecodeString([]byte{0x00, 0x11, 0x00, 0x25}); got != "fiB" {
		t.Errorf("DecodeString = %q", got)
	}
}

func TestType3FontMatrix(t *testing.T) {
	dict := core.Dict{
		"Subtype":    core.Name("Type3"),
		"FontMatrix": core.Array{core.Real(0.01), core.Int(0), core.Int(0), core.Real(0.01), core.Int(0), core.Int(0)},
		"FirstChar":  core.Int(97),
		"Widths":     core.Array{core.Int(50)},
	}
	f := Load(dict, nil)
	if g := f.Decode([]byte("a")); math.Abs(g[0].Width-0.5) > 1e-9 {
		t.Errorf("Type3 width = %v", g[0].Width)
	}
}

func TestStandardMetrics(t *testing.T) {
	m := StandardMetrics("Helvetica")
	if w := m.StringWidth("AA", 10); math.Abs(w-13.34) > 1e-9 {
		t.Errorf("StringWidth = %v", w)
	}
	if StandardMetrics("Arial-Black").Width('b') != 611 {
		t.Error("black weight should use bold table")
	}
	if StandardMetrics("TimesNewRoman").Width('a') != 444 {
		t.Error("times family should use times table")
	}
}
