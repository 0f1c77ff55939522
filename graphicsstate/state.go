package graphicsstate

import (
	"fmt"
	"math"

	"github.com/tsawler/reflow/contentstream"
	"github.com/tsawler/reflow/core"
	"github.com/tsawler/reflow/model"
)

// GraphicsState represents the PDF graphics state
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	Text TextState

	// saved states for q/Q
	stack []GraphicsState

	LineWidth float64

	// Colours as device RGB components in 0..1
	StrokeColor [3]float64
	FillColor   [3]float64
}

// TextState represents text-specific state. The text and line matrices are
// only meaningful between BT and ET but are kept here so that q/Q inside a
// text object behaves like a real viewer.
type TextState struct {
	FontName string
	FontSize float64

	CharSpacing float64
	WordSpacing float64

	// Horizontal scaling as a percentage
	HorizontalScaling float64

	Leading       float64
	RenderingMode int
	Rise          float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// NewGraphicsState creates a new graphics state with default values
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:       model.Identity(),
		LineWidth: 1.0,
		Text: TextState{
			FontSize:          12.0,
			HorizontalScaling: 100.0,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Save pushes the current graphics state onto the stack (q operator)
func (gs *GraphicsState) Save() {
	saved := *gs
	saved.stack = nil
	gs.stack = append(gs.stack, saved)
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return fmt.Errorf("graphics state stack underflow")
	}
	saved := gs.stack[len(gs.stack)-1]
	saved.stack = gs.stack[:len(gs.stack)-1]
	*gs = saved
	return nil
}

// Depth returns the number of saved states
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Transform concatenates m onto the CTM (cm operator). The new CTM is m x CTM,
// so the operand matrix is applied before the existing transformation.
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFillGray sets a DeviceGray fill colour (g operator)
func (gs *GraphicsState) SetFillGray(g float64) {
	gs.FillColor = [3]float64{g, g, g}
}

// SetFillRGB sets a DeviceRGB fill colour (rg operator)
func (gs *GraphicsState) SetFillRGB(r, g, b float64) {
	gs.FillColor = [3]float64{r, g, b}
}

// SetFillCMYK sets a DeviceCMYK fill colour (k operator)
func (gs *GraphicsState) SetFillCMYK(c, m, y, k float64) {
	gs.FillColor = cmykToRGB(c, m, y, k)
}

// SetStrokeRGB sets a DeviceRGB stroke colour (RG operator)
func (gs *GraphicsState) SetStrokeRGB(r, g, b float64) {
	gs.StrokeColor = [3]float64{r, g, b}
}

// FillRGB returns the fill colour as 8-bit RGB
func (gs *GraphicsState) FillRGB() model.RGB {
	return model.RGB{
		R: floatToUint8(gs.FillColor[0]),
		G: floatToUint8(gs.FillColor[1]),
		B: floatToUint8(gs.FillColor[2]),
	}
}

// SetFont sets the current font (Tf operator). Tf is legal outside BT.
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
}

// BeginText resets the text matrices (BT operator)
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// SetTextMatrix sets the text and line matrices (Tm operator)
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText starts a new line offset from the start of the current one
// (Td operator): Tlm = T(tx, ty) x Tlm.
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading is TD: it sets the leading to -ty, then behaves like Td
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine moves to the start of the next line (T* operator)
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// AdvanceText moves the text matrix along the baseline by tx unscaled text
// space units, after a glyph has been shown or a TJ adjustment applied.
func (gs *GraphicsState) AdvanceText(tx float64) {
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// GlyphAdvance returns the horizontal displacement for one glyph:
// ((w - adj/1000) * size + Tc + Tw) * Th, where Tw only applies to spaces.
func (gs *GraphicsState) GlyphAdvance(width float64, space bool) float64 {
	tx := width*gs.Text.FontSize + gs.Text.CharSpacing
	if space {
		tx += gs.Text.WordSpacing
	}
	return tx * gs.Text.HorizontalScaling / 100
}

// AdjustmentAdvance returns the displacement for a TJ number, which is given
// in thousandths of text space and moves left for positive values.
func (gs *GraphicsState) AdjustmentAdvance(adj float64) float64 {
	return -adj / 1000 * gs.Text.FontSize * gs.Text.HorizontalScaling / 100
}

// TextRenderingMatrix returns Trm = [size*Th 0 0 size 0 rise] x Tm x CTM,
// which maps glyph space (scaled by the font size) to device space.
func (gs *GraphicsState) TextRenderingMatrix() model.Matrix {
	ts := gs.Text
	params := model.Matrix{ts.FontSize * ts.HorizontalScaling / 100, 0, 0, ts.FontSize, 0, ts.Rise}
	return params.Multiply(ts.TextMatrix).Multiply(gs.CTM)
}

// TextPosition returns the current text origin in device space
func (gs *GraphicsState) TextPosition() model.Point {
	m := model.Matrix{1, 0, 0, 1, 0, gs.Text.Rise}.Multiply(gs.Text.TextMatrix).Multiply(gs.CTM)
	return model.Point{X: m[4], Y: m[5]}
}

// EffectiveFontSize returns the font size after the text matrix and CTM are
// applied. Producers often use "1 Tf" together with a scaled Tm.
func (gs *GraphicsState) EffectiveFontSize() float64 {
	m := gs.Text.TextMatrix.Multiply(gs.CTM)
	return math.Abs(gs.Text.FontSize) * m.ScaleY()
}

// Apply updates the state for the graphics and text state operators it
// understands and reports whether op was one of them. Path, text showing and
// XObject operators are left to the caller.
func (gs *GraphicsState) Apply(op contentstream.Operation) (bool, error) {
	args := op.Operands
	switch op.Operator {
	case "q":
		gs.Save()
	case "Q":
		return true, gs.Restore()
	case "cm":
		if m, ok := matrixOperand(args); ok {
			gs.Transform(m)
		}
	case "w":
		if v, ok := floatsOperand(args, 1); ok {
			gs.LineWidth = v[0]
		}

	case "g":
		if v, ok := floatsOperand(args, 1); ok {
			gs.SetFillGray(v[0])
		}
	case "rg":
		if v, ok := floatsOperand(args, 3); ok {
			gs.SetFillRGB(v[0], v[1], v[2])
		}
	case "k":
		if v, ok := floatsOperand(args, 4); ok {
			gs.SetFillCMYK(v[0], v[1], v[2], v[3])
		}
	case "G":
		if v, ok := floatsOperand(args, 1); ok {
			gs.StrokeColor = [3]float64{v[0], v[0], v[0]}
		}
	case "RG":
		if v, ok := floatsOperand(args, 3); ok {
			gs.SetStrokeRGB(v[0], v[1], v[2])
		}
	case "K":
		if v, ok := floatsOperand(args, 4); ok {
			gs.StrokeColor = cmykToRGB(v[0], v[1], v[2], v[3])
		}
	case "cs":
		// a new colour space resets the fill colour to its initial value
		gs.FillColor = [3]float64{}
	case "CS":
		gs.StrokeColor = [3]float64{}
	case "sc", "scn":
		gs.FillColor = componentsToRGB(args, gs.FillColor)
	case "SC", "SCN":
		gs.StrokeColor = componentsToRGB(args, gs.StrokeColor)

	case "BT":
		gs.BeginText()
	case "ET":
	case "Tf":
		if len(args) == 2 {
			name, _ := args[0].(core.Name)
			size, ok := core.Float(args[1])
			if ok {
				gs.SetFont(string(name), size)
			}
		}
	case "Tc":
		if v, ok := floatsOperand(args, 1); ok {
			gs.Text.CharSpacing = v[0]
		}
	case "Tw":
		if v, ok := floatsOperand(args, 1); ok {
			gs.Text.WordSpacing = v[0]
		}
	case "Tz":
		if v, ok := floatsOperand(args, 1); ok {
			gs.Text.HorizontalScaling = v[0]
		}
	case "TL":
		if v, ok := floatsOperand(args, 1); ok {
			gs.Text.Leading = v[0]
		}
	case "Tr":
		if v, ok := floatsOperand(args, 1); ok {
			gs.Text.RenderingMode = int(v[0])
		}
	case "Ts":
		if v, ok := floatsOperand(args, 1); ok {
			gs.Text.Rise = v[0]
		}
	case "Tm":
		if m, ok := matrixOperand(args); ok {
			gs.SetTextMatrix(m)
		}
	case "Td":
		if v, ok := floatsOperand(args, 2); ok {
			gs.TranslateText(v[0], v[1])
		}
	case "TD":
		if v, ok := floatsOperand(args, 2); ok {
			gs.TranslateTextSetLeading(v[0], v[1])
		}
	case "T*":
		gs.NextLine()
	default:
		return false, nil
	}
	return true, nil
}

// floatsOperand returns the first n operands as numbers
func floatsOperand(args []core.Object, n int) ([]float64, bool) {
	if len(args) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, ok := core.Float(args[i])
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func matrixOperand(args []core.Object) (model.Matrix, bool) {
	v, ok := floatsOperand(args, 6)
	if !ok {
		return model.Matrix{}, false
	}
	return model.Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}, true
}

// componentsToRGB interprets sc/scn operands by their count. Pattern names
// and unknown component counts leave the colour unchanged.
func componentsToRGB(args []core.Object, current [3]float64) [3]float64 {
	var v []float64
	for _, a := range args {
		if f, ok := core.Float(a); ok {
			v = append(v, f)
		}
	}
	switch len(v) {
	case 1:
		return [3]float64{v[0], v[0], v[0]}
	case 3:
		return [3]float64{v[0], v[1], v[2]}
	case 4:
		return cmykToRGB(v[0], v[1], v[2], v[3])
	}
	return current
}

// cmykToRGB converts CMYK to RGB (approximate conversion)
func cmykToRGB(c, m, y, k float64) [3]float64 {
	return [3]float64{(1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)}
}

// floatToUint8 converts a colour component in 0..1 to 0..255
func floatToUint8(f float64) uint8 {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return uint8(math.Round(f * 255))
}
