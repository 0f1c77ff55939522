package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/reflow/model"
)

// ResolvedStyle contains the fully resolved properties for a style.
type ResolvedStyle struct {
	// Identity
	ID   string
	Name string

	// Paragraph properties
	Alignment string // left, center, right, both (justify)
	IsList    bool

	// Run properties
	FontSize float64 // points
	Bold     bool
	Italic   bool
	Color    string // hex color like "FF0000"
}

// StyleResolver resolves styles with inheritance support.
type StyleResolver struct {
	styles       map[string]*styleDefXML
	resolved     map[string]*ResolvedStyle
	defaultID    string
	defaultSize  float64
	defaultProps runPropsXML
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:      make(map[string]*styleDefXML),
		resolved:    make(map[string]*ResolvedStyle),
		defaultSize: 11, // Word default (11pt)
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		sr.styles[style.StyleID] = style
		if style.Default == "1" && style.Type == "paragraph" {
			sr.defaultID = style.StyleID
		}
	}

	sr.defaultProps = styles.DocDefaults.RPrDefault.RPr
	if size := parseHalfPoints(sr.defaultProps.FontSize.Val); size > 0 {
		sr.defaultSize = size
	}

	return sr
}

// Resolve returns the fully resolved style for the given style ID. An empty
// ID resolves the document's default paragraph style. Unknown IDs fall back
// to Word's built-in names, so "Heading2" is still "Heading 2" without a
// styles part.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if styleID == "" {
		styleID = sr.defaultID
	}

	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	resolved := &ResolvedStyle{
		ID:        styleID,
		Name:      builtInStyleName(styleID),
		Alignment: "left",
		FontSize:  sr.defaultSize,
	}
	sr.applyRunProps(resolved, sr.defaultProps)

	if def, ok := sr.styles[styleID]; ok {
		if def.Name.Val != "" {
			resolved.Name = displayName(def.Name.Val)
		}
		for _, sid := range sr.buildInheritanceChain(styleID) {
			if def, ok := sr.styles[sid]; ok {
				sr.applyStyleDef(resolved, def)
			}
		}
	}

	sr.resolved[styleID] = resolved
	return resolved
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		chain = append([]string{current}, chain...) // Prepend

		if def, ok := sr.styles[current]; ok {
			current = def.BasedOn.Val
		} else {
			break
		}
	}

	return chain
}

// applyStyleDef applies a style definition's properties to a resolved style.
func (sr *StyleResolver) applyStyleDef(resolved *ResolvedStyle, def *styleDefXML) {
	if def.PPr.Justification.Val != "" {
		resolved.Alignment = def.PPr.Justification.Val
	}
	if def.PPr.NumPr.XMLName.Local != "" {
		resolved.IsList = def.PPr.NumPr.present()
	}
	sr.applyRunProps(resolved, def.RPr)
}

func (sr *StyleResolver) applyRunProps(resolved *ResolvedStyle, rpr runPropsXML) {
	if size := parseHalfPoints(rpr.FontSize.Val); size > 0 {
		resolved.FontSize = size
	}
	if on, set := rpr.Bold.value(); set {
		resolved.Bold = on
	}
	if on, set := rpr.Italic.value(); set {
		resolved.Italic = on
	}
	if rpr.Color.Val != "" {
		resolved.Color = rpr.Color.Val
	}
}

// ResolveRun resolves run properties, combining the paragraph style with
// direct formatting.
func (sr *StyleResolver) ResolveRun(paragraphStyle string, r runXML) model.Run {
	base := sr.Resolve(paragraphStyle)

	run := model.Run{
		Text:   r.Text,
		Size:   base.FontSize,
		Bold:   base.Bold,
		Italic: base.Italic,
	}
	color := base.Color

	props := r.Properties
	if size := parseHalfPoints(props.FontSize.Val); size > 0 {
		run.Size = size
	}
	if on, set := props.Bold.value(); set {
		run.Bold = on
	}
	if on, set := props.Italic.value(); set {
		run.Italic = on
	}
	if props.Color.Val != "" {
		color = props.Color.Val
	}

	// "auto" and malformed values leave the run uncoloured
	run.Color, run.HasColor = model.ParseHexColor(color)
	return run
}

// builtInStyleName maps Word's built-in style IDs to their display names
func builtInStyleName(styleID string) string {
	id := strings.ToLower(styleID)
	switch {
	case id == "":
		return "Normal"
	case id == "title":
		return "Title"
	case id == "subtitle":
		return "Subtitle"
	case strings.HasPrefix(id, "heading"):
		if n, err := strconv.Atoi(id[len("heading"):]); err == nil {
			return "Heading " + strconv.Itoa(n)
		}
	}
	return styleID
}

// displayName normalises the lower-case names Word writes for built-in
// styles ("heading 1", "title") to the names shown in its UI.
func displayName(name string) string {
	lower := strings.ToLower(name)
	if lower == "title" || lower == "subtitle" || lower == "normal" || strings.HasPrefix(lower, "heading ") {
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

// parseHalfPoints parses a size in half-points to points.
// Word uses half-points for font sizes (e.g., "24" = 12pt).
func parseHalfPoints(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 2
}
