package text

import "unicode"

// Direction represents the writing direction of text
type Direction int

const (
	// LTR (Left-to-Right) for Latin, Cyrillic, CJK and most other scripts
	LTR Direction = iota
	// RTL (Right-to-Left) for Arabic, Hebrew, Syriac, Thaana and N'Ko
	RTL
	// Neutral for digits, punctuation, whitespace and symbols
	Neutral
)

func (d Direction) String() string {
	switch d {
	case LTR:
		return "LTR"
	case RTL:
		return "RTL"
	case Neutral:
		return "Neutral"
	default:
		return "Unknown"
	}
}

var rtlScripts = []*unicode.RangeTable{
	unicode.Arabic,
	unicode.Hebrew,
	unicode.Syriac,
	unicode.Thaana,
	unicode.Nko,
}

// DetectDirection returns the dominant direction of a string by counting
// strong characters. Ties go to LTR; strings with no strong characters are
// Neutral.
func DetectDirection(s string) Direction {
	ltr, rtl := 0, 0
	for _, r := range s {
		switch CharDirection(r) {
		case LTR:
			ltr++
		case RTL:
			rtl++
		}
	}
	switch {
	case ltr == 0 && rtl == 0:
		return Neutral
	case rtl > ltr:
		return RTL
	default:
		return LTR
	}
}

// CharDirection returns the inherent direction of a single character
func CharDirection(r rune) Direction {
	if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
		return Neutral
	}
	if unicode.In(r, rtlScripts...) {
		return RTL
	}
	return LTR
}
