package docx

import (
	"encoding/xml"
	"testing"

	"github.com/tsawler/reflow/model"
)

func on(name string) boolXML  { return boolXML{XMLName: xml.Name{Local: name}} }
func off(name string) boolXML { return boolXML{XMLName: xml.Name{Local: name}, Val: "false"} }

func TestNewStyleResolver_Nil(t *testing.T) {
	sr := NewStyleResolver(nil)
	if sr == nil {
		t.Fatal("NewStyleResolver(nil) returned nil")
	}

	style := sr.Resolve("")
	if style.FontSize != 11 {
		t.Errorf("default FontSize = %v, want 11", style.FontSize)
	}
	if style.Name != "Normal" {
		t.Errorf("default Name = %q, want Normal", style.Name)
	}
	if style.Alignment != "left" {
		t.Errorf("Alignment = %v, want left", style.Alignment)
	}
}

func TestStyleResolver_BuiltInNames(t *testing.T) {
	sr := NewStyleResolver(nil)

	tests := []struct {
		styleID string
		want    string
	}{
		{"Heading1", "Heading 1"},
		{"heading3", "Heading 3"},
		{"Title", "Title"},
		{"Subtitle", "Subtitle"},
		{"HeadingX", "HeadingX"},
		{"Quote", "Quote"},
	}

	for _, tt := range tests {
		t.Run(tt.styleID, func(t *testing.T) {
			if got := sr.Resolve(tt.styleID).Name; got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStyleResolver_WithStyles(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "CustomHeading",
				Type:    "paragraph",
				Name:    valXML{Val: "My Custom Heading"},
				RPr: runPropsXML{
					Bold:     on("b"),
					FontSize: valXML{Val: "28"}, // 14pt
				},
			},
			{
				StyleID: "CenteredPara",
				Type:    "paragraph",
				Name:    valXML{Val: "Centered Paragraph"},
				PPr: paragraphPropsXML{
					Justification: justificationXML{Val: "center"},
				},
			},
		},
	}

	sr := NewStyleResolver(styles)

	t.Run("custom heading", func(t *testing.T) {
		style := sr.Resolve("CustomHeading")
		if style.Name != "My Custom Heading" {
			t.Errorf("Name = %q", style.Name)
		}
		if !style.Bold {
			t.Error("expected Bold = true")
		}
		if style.FontSize != 14 {
			t.Errorf("FontSize = %v, want 14", style.FontSize)
		}
	})

	t.Run("centered paragraph", func(t *testing.T) {
		style := sr.Resolve("CenteredPara")
		if style.Alignment != "center" {
			t.Errorf("Alignment = %v, want center", style.Alignment)
		}
	})
}

func TestStyleResolver_Inheritance(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "BaseStyle",
				Type:    "paragraph",
				Name:    valXML{Val: "Base"},
				PPr:     paragraphPropsXML{Justification: justificationXML{Val: "right"}},
				RPr:     runPropsXML{Bold: on("b"), Color: valXML{Val: "00FF00"}},
			},
			{
				StyleID: "Derived",
				Type:    "paragraph",
				Name:    valXML{Val: "Derived"},
				BasedOn: valXML{Val: "BaseStyle"},
				RPr:     runPropsXML{Bold: off("b"), Italic: on("i")},
			},
			{
				// cycles must not hang
				StyleID: "LoopA",
				BasedOn: valXML{Val: "LoopB"},
			},
			{
				StyleID: "LoopB",
				BasedOn: valXML{Val: "LoopA"},
			},
		},
	}

	sr := NewStyleResolver(styles)
	style := sr.Resolve("Derived")
	if style.Alignment != "right" {
		t.Errorf("Alignment = %q, want inherited right", style.Alignment)
	}
	if style.Bold {
		t.Error("Bold should be switched off by the derived style")
	}
	if !style.Italic {
		t.Error("Italic should be set")
	}
	if style.Color != "00FF00" {
		t.Errorf("Color = %q, want inherited 00FF00", style.Color)
	}

	if sr.Resolve("LoopA") == nil {
		t.Error("Resolve(LoopA) returned nil")
	}
	if sr.Resolve("Derived") != style {
		t.Error("resolved styles should be cached")
	}
}

func TestStyleResolver_ResolveRun(t *testing.T) {
	styles := &stylesXML{
		Styles: []styleDefXML{
			{
				StyleID: "Strong",
				Type:    "paragraph",
				RPr:     runPropsXML{Bold: on("b"), FontSize: valXML{Val: "32"}, Color: valXML{Val: "0000FF"}},
			},
		},
	}
	sr := NewStyleResolver(styles)

	tests := []struct {
		name  string
		style string
		run   runXML
		want  model.Run
	}{
		{
			name:  "inherits paragraph style",
			style: "Strong",
			run:   runXML{Text: "x"},
			want:  model.Run{Text: "x", Bold: true, Size: 16, Color: model.RGB{B: 255}, HasColor: true},
		},
		{
			name:  "direct formatting wins",
			style: "Strong",
			run:   runXML{Text: "y", Properties: runPropsXML{Bold: off("b"), FontSize: valXML{Val: "20"}, Color: valXML{Val: "auto"}}},
			want:  model.Run{Text: "y", Size: 10},
		},
		{
			name:  "plain",
			style: "",
			run:   runXML{Text: "z", Properties: runPropsXML{Italic: on("i")}},
			want:  model.Run{Text: "z", Italic: true, Size: 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sr.ResolveRun(tt.style, tt.run); got != tt.want {
				t.Errorf("ResolveRun() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseHalfPoints(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"24", 12},
		{"22", 11},
		{"21", 10.5},
		{"", 0},
		{"invalid", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseHalfPoints(tt.input); got != tt.expected {
				t.Errorf("parseHalfPoints(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBoolValue(t *testing.T) {
	tests := []struct {
		name    string
		b       boolXML
		on, set bool
	}{
		{"absent", boolXML{}, false, false},
		{"present", on("b"), true, true},
		{"false", off("b"), false, true},
		{"zero", boolXML{XMLName: xml.Name{Local: "b"}, Val: "0"}, false, true},
		{"one", boolXML{XMLName: xml.Name{Local: "b"}, Val: "1"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOn, gotSet := tt.b.value()
			if gotOn != tt.on || gotSet != tt.set {
				t.Errorf("value() = (%v, %v), want (%v, %v)", gotOn, gotSet, tt.on, tt.set)
			}
		})
	}
}
