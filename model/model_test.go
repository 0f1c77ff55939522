package model

import (
	"math"
	"testing"
)

// ============================================================================
// BBox Tests
// ============================================================================

func TestBBoxFromCorners(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 Point
		want   BBox
	}{
		{"normal", Point{10, 20}, Point{50, 70}, BBox{10, 20, 40, 50}},
		{"reversed", Point{50, 70}, Point{10, 20}, BBox{10, 20, 40, 50}},
		{"negative height", Point{10, 70}, Point{50, 20}, BBox{10, 20, 40, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BBoxFromCorners(tt.p1, tt.p2); got != tt.want {
				t.Errorf("BBoxFromCorners() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxIntersects(t *testing.T) {
	base := BBox{0, 0, 100, 100}
	tests := []struct {
		name  string
		other BBox
		want  bool
	}{
		{"overlap", BBox{50, 50, 100, 100}, true},
		{"inside", BBox{10, 10, 10, 10}, true},
		{"disjoint", BBox{200, 200, 10, 10}, false},
		{"touching edge", BBox{100, 0, 10, 10}, false},
		{"above", BBox{0, 101, 100, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects() not symmetric: %v", got)
			}
		})
	}
}

func TestBBoxContainsBox(t *testing.T) {
	outer := BBox{0, 0, 100, 100}
	if !outer.ContainsBox(BBox{10, 10, 20, 20}, 0) {
		t.Error("expected inner box to be contained")
	}
	if outer.ContainsBox(BBox{90, 90, 20, 20}, 0) {
		t.Error("overhanging box should not be contained")
	}
	if !outer.ContainsBox(BBox{-1, 0, 101, 100}, 2) {
		t.Error("tolerance should absorb a 1pt overhang")
	}
}

func TestBBoxUnion(t *testing.T) {
	var acc BBox
	acc = acc.Union(BBox{10, 10, 10, 10})
	if acc != (BBox{10, 10, 10, 10}) {
		t.Fatalf("union with zero box = %+v", acc)
	}
	acc = acc.Union(BBox{30, 0, 10, 5})
	want := BBox{10, 0, 30, 20}
	if acc != want {
		t.Errorf("Union() = %+v, want %+v", acc, want)
	}
}

// ============================================================================
// Matrix Tests
// ============================================================================

func TestMatrixMultiplyOrder(t *testing.T) {
	// scale by 2, then translate by (10, 0)
	scale := Matrix{2, 0, 0, 2, 0, 0}
	m := scale.Multiply(Translate(10, 0))
	p := m.Transform(Point{1, 1})
	if p.X != 12 || p.Y != 2 {
		t.Errorf("Transform() = %+v, want {12 2}", p)
	}
}

func TestMatrixTransformBox(t *testing.T) {
	// image placement matrix: 100x50 at (20, 30)
	m := Matrix{100, 0, 0, 50, 20, 30}
	got := m.TransformBox(BBox{0, 0, 1, 1})
	want := BBox{20, 30, 100, 50}
	if got != want {
		t.Errorf("TransformBox() = %+v, want %+v", got, want)
	}

	// flipped vertical axis still yields a positive box
	flipped := Matrix{100, 0, 0, -50, 20, 80}
	got = flipped.TransformBox(BBox{0, 0, 1, 1})
	if got != want {
		t.Errorf("flipped TransformBox() = %+v, want %+v", got, want)
	}
}

func TestMatrixScale(t *testing.T) {
	m := Matrix{0, 12, -12, 0, 0, 0}
	if math.Abs(m.ScaleY()-12) > 1e-9 || math.Abs(m.ScaleX()-12) > 1e-9 {
		t.Errorf("rotated scale = %v/%v, want 12", m.ScaleX(), m.ScaleY())
	}
}

// ============================================================================
// Flow Tests
// ============================================================================

func TestParseAlignment(t *testing.T) {
	tests := map[string]Alignment{
		"center": AlignCenter,
		"right":  AlignRight,
		"end":    AlignRight,
		"both":   AlignLeft,
		"start":  AlignLeft,
		"":       AlignLeft,
	}
	for in, want := range tests {
		if got := ParseAlignment(in); got != want {
			t.Errorf("ParseAlignment(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRGB(t *testing.T) {
	if (RGB{}).IsSet() {
		t.Error("black must count as unset")
	}
	if !(RGB{R: 1}).IsSet() {
		t.Error("non-black must count as set")
	}

	c, ok := ParseHexColor("FF8000")
	if !ok || c != (RGB{255, 128, 0}) {
		t.Errorf("ParseHexColor() = %+v, %v", c, ok)
	}
	if c.Hex() != "FF8000" {
		t.Errorf("Hex() = %q", c.Hex())
	}
	if _, ok := ParseHexColor("auto"); ok {
		t.Error("auto must not parse")
	}
}

func TestTableColCount(t *testing.T) {
	tbl := &Table{Rows: [][]string{{"a"}, {"b", "c", "d"}, {"e", "f"}}}
	if tbl.ColCount() != 3 {
		t.Errorf("ColCount() = %d, want 3", tbl.ColCount())
	}
	unit := &TableUnit{Rows: tbl.Rows}
	if unit.ColCount() != 3 {
		t.Errorf("TableUnit.ColCount() = %d, want 3", unit.ColCount())
	}
}

func TestUnitKinds(t *testing.T) {
	units := []PageContentUnit{&TextLine{Y: 1}, &ImageUnit{Y: 2}, &TableUnit{Y: 3}}
	want := []UnitKind{UnitText, UnitImage, UnitTable}
	for i, u := range units {
		if u.Kind() != want[i] {
			t.Errorf("unit %d kind = %v, want %v", i, u.Kind(), want[i])
		}
		if u.YPosition() != float64(i+1) {
			t.Errorf("unit %d YPosition = %v", i, u.YPosition())
		}
	}
}

// ============================================================================
// Image Format Tests
// ============================================================================

func TestDetectImageFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want ImageFormat
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0}, ImageFormatJPEG},
		{"png", []byte("\x89PNG\r\n\x1a\n...."), ImageFormatPNG},
		{"gif", []byte("GIF89a...."), ImageFormatGIF},
		{"bmp", []byte("BM......"), ImageFormatBMP},
		{"tiff little endian", []byte("II*\x00...."), ImageFormatTIFF},
		{"tiff big endian", []byte("MM\x00*...."), ImageFormatTIFF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), ImageFormatWEBP},
		{"riff but not webp", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), ImageFormatUnknown},
		{"garbage", []byte("hello"), ImageFormatUnknown},
		{"empty", nil, ImageFormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectImageFormat(tt.data); got != tt.want {
				t.Errorf("DetectImageFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSkipString(t *testing.T) {
	s := Skip{Page: 2, Element: "image", Reason: "undecodable"}
	if got := s.String(); got != "page 2: image: undecodable" {
		t.Errorf("String() = %q", got)
	}
	s = Skip{Element: "image", Reason: "missing part", Err: errTest}
	if got := s.String(); got != "image: missing part: boom" {
		t.Errorf("String() = %q", got)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
