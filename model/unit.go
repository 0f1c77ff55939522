package model

import "strings"

// UnitKind identifies the variant of a PageContentUnit
type UnitKind int

const (
	UnitText UnitKind = iota
	UnitImage
	UnitTable
)

func (k UnitKind) String() string {
	switch k {
	case UnitText:
		return "Text"
	case UnitImage:
		return "Image"
	case UnitTable:
		return "Table"
	default:
		return "Unknown"
	}
}

// PageContentUnit is one extractable piece of a PDF page. Units live only for
// the duration of a single page conversion.
type PageContentUnit interface {
	Kind() UnitKind
	// YPosition is the top edge measured downwards from the top of the page.
	// It is used only for ordering.
	YPosition() float64
}

// StyledSpan is a run of text sharing one font, size and colour
type StyledSpan struct {
	Text   string
	Size   float64
	Bold   bool
	Italic bool
	Color  RGB
}

// TextLine is one line of page text. HeadingLevel is 1-3 when the largest
// span is heading sized, 0 for body text.
type TextLine struct {
	Spans        []StyledSpan
	Alignment    Alignment
	DominantSize float64
	HeadingLevel int
	BBox         BBox
	Y            float64
}

func (l *TextLine) Kind() UnitKind     { return UnitText }
func (l *TextLine) YPosition() float64 { return l.Y }

// Text returns the concatenated span text
func (l *TextLine) Text() string {
	var sb strings.Builder
	for _, s := range l.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// ImageUnit is a raster image placed on the page
type ImageUnit struct {
	Data      []byte
	Format    ImageFormat
	BBox      BBox
	PageWidth float64
	Y         float64
}

func (i *ImageUnit) Kind() UnitKind     { return UnitImage }
func (i *ImageUnit) YPosition() float64 { return i.Y }

// TableUnit is a detected table. Rows may be ragged; each row keeps its own
// length and fully blank rows have already been dropped.
type TableUnit struct {
	Rows [][]string
	BBox BBox
	Y    float64
}

func (t *TableUnit) Kind() UnitKind     { return UnitTable }
func (t *TableUnit) YPosition() float64 { return t.Y }

// ColCount returns the maximum row length
func (t *TableUnit) ColCount() int {
	n := 0
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}
