package text

import (
	"fmt"
	"strings"

	"github.com/tsawler/reflow/contentstream"
	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/font"
	"github.com/tsawler/reflow/graphicsstate"
	"github.com/tsawler/reflow/model"
)

// TextFragment is one shown string with its device-space position. X and Y
// are the origin of the first glyph on the baseline.
type TextFragment struct {
	Text      string
	X, Y      float64
	Width     float64
	Height    float64 // effective font size
	FontName  string  // BaseFont without subset tag
	FontSize  float64
	Color     model.RGB
	Direction Direction
}

// Right returns the x coordinate where the fragment ends
func (f TextFragment) Right() float64 { return f.X + f.Width }

// Extractor extracts text fragments from content streams
type Extractor struct {
	gs    *graphicsstate.GraphicsState
	fonts map[string]*font.Font

	fallback  *font.Font
	fragments []TextFragment
}

// NewExtractor creates a new text extractor
func NewExtractor() *Extractor {
	return &Extractor{
		gs:       graphicsstate.NewGraphicsState(),
		fonts:    make(map[string]*font.Font),
		fallback: font.NewStandardFont("Helvetica"),
	}
}

// RegisterFont registers a loaded font under its resource name
func (e *Extractor) RegisterFont(name string, f *font.Font) {
	e.fonts[name] = f
}

// RegisterFontsFromResources loads every font of a resources dictionary.
// Fonts that cannot be resolved are skipped; text shown with them falls back
// to Helvetica metrics.
func (e *Extractor) RegisterFontsFromResources(resources core.Dict, r core.Resolver) error {
	fonts, err := core.ResolveDict(r, resources.Get("Font"))
	if err != nil {
		return fmt.Errorf("failed to resolve font dictionary: %w", err)
	}
	for name, obj := range fonts {
		dict, err := core.ResolveDict(r, obj)
		if err != nil || dict == nil {
			continue
		}
		e.RegisterFont(name, font.Load(dict, r))
	}
	return nil
}

// Fonts returns the registered fonts by resource name
func (e *Extractor) Fonts() map[string]*font.Font {
	return e.fonts
}

// Extract runs the operations and returns the fragments in content order
func (e *Extractor) Extract(operations []contentstream.Operation) []TextFragment {
	e.fragments = nil
	for _, op := range operations {
		e.processOperation(op)
	}
	return e.fragments
}

// ExtractFromBytes parses and extracts text from raw content stream data.
// Fragments read before a syntax error are returned with the error.
func (e *Extractor) ExtractFromBytes(data []byte) ([]TextFragment, error) {
	operations, err := contentstream.NewParser(data).Parse()
	frags := e.Extract(operations)
	if err != nil {
		return frags, fmt.Errorf("parse content stream: %w", err)
	}
	return frags, nil
}

func (e *Extractor) processOperation(op contentstream.Operation) {
	if handled, _ := e.gs.Apply(op); handled {
		return
	}
	args := op.Operands
	switch op.Operator {
	case "Tj":
		if len(args) == 1 {
			if s, ok := args[0].(core.String); ok {
				e.show([]byte(s))
			}
		}
	case "TJ":
		if len(args) == 1 {
			if arr, ok := args[0].(core.Array); ok {
				e.showArray(arr)
			}
		}
	case "'":
		e.gs.NextLine()
		if len(args) == 1 {
			if s, ok := args[0].(core.String); ok {
				e.show([]byte(s))
			}
		}
	case "\"":
		if len(args) == 3 {
			if tw, ok := core.Float(args[0]); ok {
				e.gs.Text.WordSpacing = tw
			}
			if tc, ok := core.Float(args[1]); ok {
				e.gs.Text.CharSpacing = tc
			}
			e.gs.NextLine()
			if s, ok := args[2].(core.String); ok {
				e.show([]byte(s))
			}
		}
	}
}

func (e *Extractor) currentFont() *font.Font {
	if f, ok := e.fonts[e.gs.Text.FontName]; ok {
		return f
	}
	return e.fallback
}

// show emits one fragment for a shown string and advances the text matrix
// glyph by glyph
func (e *Extractor) show(data []byte) {
	f := e.currentFont()
	glyphs := f.Decode(data)
	if len(glyphs) == 0 {
		return
	}

	start := e.gs.TextPosition()
	size := e.gs.EffectiveFontSize()

	var sb strings.Builder
	for _, g := range glyphs {
		sb.WriteString(g.Text)
		if f.IsVertical() {
			continue
		}
		e.gs.AdvanceText(e.gs.GlyphAdvance(g.Width, g.Space))
	}
	end := e.gs.TextPosition()

	text := font.NormalizeUnicode(sb.String())
	if text == "" {
		return
	}
	name := f.Name
	if name == "" {
		name = e.gs.Text.FontName
	}

	x, width := start.X, end.X-start.X
	if width < 0 {
		// mirrored text matrices run right to left
		x, width = end.X, -width
	}
	e.fragments = append(e.fragments, TextFragment{
		Text:      text,
		X:         x,
		Y:         start.Y,
		Width:     width,
		Height:    size,
		FontName:  name,
		FontSize:  size,
		Color:     e.gs.FillRGB(),
		Direction: DetectDirection(text),
	})
}

// showArray handles TJ: strings are shown, numbers move the text position
func (e *Extractor) showArray(arr core.Array) {
	for _, item := range arr {
		switch v := item.(type) {
		case core.String:
			e.show([]byte(v))
		case core.Int, core.Real:
			adj, _ := core.Float(v)
			e.gs.AdvanceText(e.gs.AdjustmentAdvance(adj))
		}
	}
}

// GetFragments returns the fragments of the last extraction
func (e *Extractor) GetFragments() []TextFragment {
	return e.fragments
}
