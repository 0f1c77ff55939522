package font

import (
	"strings"

	"github.com/tsawler/reflow/core"
)

// Font is a loaded PDF font resource. It decodes shown strings into glyphs
// carrying both Unicode text and advance widths.
type Font struct {
	// Name is the BaseFont with any subset tag ("ABCDEF+") removed
	Name    string
	Subtype string

	composite bool
	vertical  bool
	encoding  *Encoding
	toUnicode *CMap
	codeCMap  *CMap // encoding CMap of a composite font; nil means Identity

	widths       map[int]float64 // by code for simple fonts, by CID for composite fonts
	defaultWidth float64
	scale        float64 // glyph space to text space, 1/1000 except for Type3
	metrics      *Metrics
}

// Glyph is one decoded character code
type Glyph struct {
	Code  uint32
	Text  string
	Width float64 // advance in text space units per point of font size
	// Space is set for the single-byte code 32, which receives word spacing
	Space bool
}

// Load builds a Font from a font dictionary. Problems with optional parts
// such as a broken ToUnicode stream are tolerated; the font then falls back
// to its encoding.
func Load(dict core.Dict, r core.Resolver) *Font {
	f := &Font{
		Name:    StripSubsetTag(nameOf(dict.Get("BaseFont"))),
		Subtype: nameOf(dict.Get("Subtype")),
		widths:  make(map[int]float64),
		scale:   0.001,
	}

	if obj, err := core.Resolve(r, dict.Get("ToUnicode")); err == nil {
		if s, ok := obj.(*core.Stream); ok {
			f.toUnicode, _ = ParseCMapStream(s)
		}
	}

	if f.Subtype == "Type0" {
		f.loadComposite(dict, r)
	} else {
		f.loadSimple(dict, r)
	}
	return f
}

// NewStandardFont creates a font for a standard 14 name with no dictionary
func NewStandardFont(name string) *Font {
	return Load(core.Dict{"Subtype": core.Name("Type1"), "BaseFont": core.Name(name)}, nil)
}

func nameOf(obj core.Object) string {
	switch v := obj.(type) {
	case core.Name:
		return string(v)
	case core.String:
		return string(v)
	}
	return ""
}

// StripSubsetTag removes a six-letter subset prefix such as "ABCDEF+"
func StripSubsetTag(name string) string {
	if len(name) > 7 && name[6] == '+' {
		for i := 0; i < 6; i++ {
			if name[i] < 'A' || name[i] > 'Z' {
				return name
			}
		}
		return name[7:]
	}
	return name
}

func (f *Font) loadSimple(dict core.Dict, r core.Resolver) {
	base := standardEncoding
	if f.Subtype == "TrueType" {
		base = winAnsiEncoding
	}
	encObj, _ := core.Resolve(r, dict.Get("Encoding"))
	switch enc := encObj.(type) {
	case core.Name:
		base = GetEncoding(string(enc))
	case core.Dict:
		if n, ok := enc.GetName("BaseEncoding"); ok {
			base = GetEncoding(string(n))
		}
		if diffs, err := core.Resolve(r, enc.Get("Differences")); err == nil {
			if arr, ok := diffs.(core.Array); ok {
				base = base.withDifferences(arr)
			}
		}
	}
	f.encoding = base

	if f.Subtype == "Type3" {
		if fm, ok := dict.GetArray("FontMatrix"); ok {
			if v, ok := fm.Floats(); ok && len(v) == 6 {
				f.scale = v[0]
			}
		}
	}

	first, _ := dict.GetInt("FirstChar")
	if obj, err := core.Resolve(r, dict.Get("Widths")); err == nil {
		if arr, ok := obj.(core.Array); ok {
			for i, w := range arr {
				if wf, err := core.Resolve(r, w); err == nil {
					if v, ok := core.Float(wf); ok {
						f.widths[int(first)+i] = v
					}
				}
			}
		}
	}

	if desc, err := core.ResolveDict(r, dict.Get("FontDescriptor")); err == nil && desc != nil {
		if mw, ok := desc.GetFloat("MissingWidth"); ok {
			f.defaultWidth = mw
		}
	}
	if len(f.widths) == 0 {
		f.metrics = StandardMetrics(f.Name)
	}
}

func (f *Font) loadComposite(dict core.Dict, r core.Resolver) {
	f.composite = true
	f.defaultWidth = 1000

	encObj, _ := core.Resolve(r, dict.Get("Encoding"))
	switch enc := encObj.(type) {
	case core.Name:
		f.vertical = strings.HasSuffix(string(enc), "-V")
	case *core.Stream:
		f.codeCMap, _ = ParseCMapStream(enc)
		if wm, ok := enc.Dict.GetInt("WMode"); ok && wm == 1 {
			f.vertical = true
		}
	}

	descendants, _ := core.Resolve(r, dict.Get("DescendantFonts"))
	arr, ok := descendants.(core.Array)
	if !ok || len(arr) == 0 {
		return
	}
	cid, err := core.ResolveDict(r, arr[0])
	if err != nil || cid == nil {
		return
	}
	if dw, ok := cid.GetFloat("DW"); ok {
		f.defaultWidth = dw
	}
	wObj, _ := core.Resolve(r, cid.Get("W"))
	if w, ok := wObj.(core.Array); ok {
		f.parseW(w, r)
	}
}

// parseW reads a CIDFont /W array, which mixes "c [w1 w2 ...]" and
// "cfirst clast w" entries.
func (f *Font) parseW(w core.Array, r core.Resolver) {
	for i := 0; i < len(w); {
		start, ok := core.Float(w[i])
		if !ok || i+1 >= len(w) {
			return
		}
		next, _ := core.Resolve(r, w[i+1])
		if list, ok := next.(core.Array); ok {
			for j, v := range list {
				if width, ok := core.Float(v); ok {
					f.widths[int(start)+j] = width
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			return
		}
		end, ok1 := core.Float(next)
		width, ok2 := core.Float(w[i+2])
		if ok1 && ok2 {
			for c := int(start); c <= int(end) && c-int(start) < 65536; c++ {
				f.widths[c] = width
			}
		}
		i += 3
	}
}

// IsComposite reports whether the font is a Type0 font with multi-byte codes
func (f *Font) IsComposite() bool { return f.composite }

// IsVertical reports whether the font uses vertical writing mode
func (f *Font) IsVertical() bool { return f.vertical }

// Decode splits a shown string into glyphs
func (f *Font) Decode(data []byte) []Glyph {
	glyphs := make([]Glyph, 0, len(data))
	for i := 0; i < len(data); {
		var code uint32
		var n int
		if f.composite {
			cm := f.codeCMap
			if cm == nil || !cm.HasCodespace() {
				cm = f.toUnicode
			}
			code, n = cm.NextCode(data[i:], 2)
		} else {
			code, n = uint32(data[i]), 1
		}
		i += n

		text := f.textFor(code)
		glyphs = append(glyphs, Glyph{
			Code:  code,
			Text:  text,
			Width: f.widthFor(code, text) * f.scale,
			Space: !f.composite && code == 32,
		})
	}
	return glyphs
}

// DecodeString returns just the text of a shown string
func (f *Font) DecodeString(data []byte) string {
	var sb strings.Builder
	for _, g := range f.Decode(data) {
		sb.WriteString(g.Text)
	}
	return NormalizeUnicode(sb.String())
}

func (f *Font) textFor(code uint32) string {
	if f.toUnicode != nil {
		if s, ok := f.toUnicode.Lookup(code); ok {
			return s
		}
	}
	if f.composite {
		// without a ToUnicode map, Identity-encoded fonts often use Unicode code points
		if code >= 32 && code != 0xFFFF {
			return string(rune(code))
		}
		return ""
	}
	if r := f.encoding.Decode(byte(code)); r != 0 {
		return string(r)
	}
	return ""
}

func (f *Font) widthFor(code uint32, text string) float64 {
	key := int(code)
	if f.composite {
		key = f.codeCMap.CID(code)
	}
	if w, ok := f.widths[key]; ok {
		return w
	}
	if f.metrics != nil {
		rs := []rune(text)
		if len(rs) == 1 {
			return f.metrics.Width(rs[0])
		}
		return f.metrics.Width(0)
	}
	if f.defaultWidth > 0 {
		return f.defaultWidth
	}
	return 500
}
