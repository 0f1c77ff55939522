package classify

import (
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/reflow/model"
)

// Margin thresholds as fractions of the page width
const (
	marginTolerance = 0.05
	minCenterMargin = 0.10
)

// Heading size thresholds used when reading a PDF. A line whose largest span
// reaches one of these sizes is treated as a heading of that level.
const (
	heading1Size = 18.0
	heading2Size = 15.0
	heading3Size = 13.0
)

// StyleClass is the semantic style inferred for a span of PDF text
type StyleClass struct {
	Bold   bool
	Italic bool
	// HeadingLevel is 1-3, or 0 for body text
	HeadingLevel int
}

// Classify infers weight and slant from a font name and a heading level
// from a font size
func Classify(fontName string, size float64) StyleClass {
	bold, italic := Font(fontName)
	return StyleClass{Bold: bold, Italic: italic, HeadingLevel: HeadingLevel(size)}
}

// Font reports whether a font name denotes a bold and/or italic face. Only
// substrings of the name are consulted.
func Font(name string) (bold, italic bool) {
	n := strings.ToLower(name)
	bold = strings.Contains(n, "bold") || strings.Contains(n, "heavy") || strings.Contains(n, "black")
	italic = strings.Contains(n, "italic") || strings.Contains(n, "oblique")
	return bold, italic
}

// HeadingLevel maps a font size to a heading level, 0 meaning body text
func HeadingLevel(size float64) int {
	switch {
	case size >= heading1Size:
		return 1
	case size >= heading2Size:
		return 2
	case size >= heading3Size:
		return 3
	default:
		return 0
	}
}

// Alignment classifies a line from its left and right margins on a page of
// the given width. Center is tested before right, so a line that would
// satisfy both is centered.
func Alignment(left, right, pageWidth float64) model.Alignment {
	tol := marginTolerance * pageWidth
	minLeft := minCenterMargin * pageWidth
	switch {
	case math.Abs(left-right) < tol && left > minLeft:
		return model.AlignCenter
	case right < tol && left > minLeft:
		return model.AlignRight
	default:
		return model.AlignLeft
	}
}

// Centered reports whether a box of the given width starting at x sits in
// the middle of the page, within the margin tolerance
func Centered(x, width, pageWidth float64) bool {
	right := pageWidth - (x + width)
	return math.Abs(x-right) < marginTolerance*pageWidth
}

// TextStyle is how a paragraph style is drawn on a page
type TextStyle struct {
	Size float64
	Bold bool
	// After is extra vertical space below the paragraph, in points
	After float64
}

// Render size constants
const (
	BodySize  = 11.0
	TitleSize = 20.0
)

// ParagraphStyle maps a flow document style name to the text style used
// when rendering it. Names containing "Heading" take their level from the
// trailing number (default 1) and shrink 2pt per level down to 12pt; names
// containing "Title" are 20pt. ok is false for every other style.
func ParagraphStyle(styleName string) (style TextStyle, ok bool) {
	switch {
	case strings.Contains(styleName, "Heading"):
		level := headingNumber(styleName)
		size := 11.0
		if level <= 3 {
			size = 18 - 2*float64(level)
		}
		return TextStyle{Size: math.Max(size, 12), Bold: true, After: 4}, true
	case strings.Contains(styleName, "Title"):
		return TextStyle{Size: TitleSize, Bold: true, After: 6}, true
	default:
		return TextStyle{}, false
	}
}

func headingNumber(styleName string) int {
	fields := strings.Fields(styleName)
	if len(fields) == 0 {
		return 1
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 1
	}
	return n
}

// HeadingStyleName returns the flow document style name for a heading level
func HeadingStyleName(level int) string {
	if level <= 0 {
		return ""
	}
	return "Heading " + strconv.Itoa(level)
}
